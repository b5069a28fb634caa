package output

import (
	"fmt"
	"io"
	"sort"

	"github.com/veraclabs/anonygo/internal/engine"
)

// MarkdownRenderer produces a Markdown report, suitable for pasting into
// an issue or a review comment.
type MarkdownRenderer struct {
	w io.Writer
}

func (r *MarkdownRenderer) Render(s Summary) {
	fmt.Fprintf(r.w, "# anonygo — %s\n\n", s.Model)

	fmt.Fprintf(r.w, "| Parameter | Value |\n|---|---|\n")
	for _, p := range s.Params {
		fmt.Fprintf(r.w, "| %s | %s |\n", p.Label, p.Value)
	}
	fmt.Fprintf(r.w, "| Quasi-identifiers | %v |\n", s.QuasiIdentifiers)
	if s.SensitiveAttribute != "" {
		fmt.Fprintf(r.w, "| Sensitive attribute | %s |\n", s.SensitiveAttribute)
	}
	fmt.Fprintln(r.w)

	if s.Result.FinalState == engine.StateDoneEmpty {
		fmt.Fprintln(r.w, "> **Infeasible** — no generalization/suppression plan within the suppression budget satisfies this model.")
		return
	}

	fmt.Fprintf(r.w, "## Outcome\n\n")
	fmt.Fprintf(r.w, "- Original rows: %d\n", s.OriginalRows)
	fmt.Fprintf(r.w, "- Output rows: %d\n", outputRowCount(s))
	fmt.Fprintf(r.w, "- Suppressed: %d (%.1f%%)\n\n", s.Result.SuppressedCount, suppressionPct(s))

	qis := make([]string, 0, len(s.Result.GenLevel))
	for qi := range s.Result.GenLevel {
		qis = append(qis, qi)
	}
	sort.Strings(qis)
	if len(qis) > 0 {
		fmt.Fprintf(r.w, "## Generalization levels\n\n")
		fmt.Fprintf(r.w, "| QI | Level |\n|---|---|\n")
		for _, qi := range qis {
			fmt.Fprintf(r.w, "| %s | %d |\n", qi, s.Result.GenLevel[qi])
		}
	}
}
