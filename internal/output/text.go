package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/veraclabs/anonygo/internal/engine"
)

// TextRenderer produces Lip Gloss styled terminal output.
type TextRenderer struct {
	w io.Writer
}

func (r *TextRenderer) Render(s Summary) {
	width := 60
	fmt.Fprintln(r.w)

	header := TitleStyle.Render(fmt.Sprintf("anonygo — %s", s.Model))
	var paramLines []string
	for _, p := range s.Params {
		paramLines = append(paramLines, r.labelValue(p.Label+":", p.Value))
	}
	paramLines = append(paramLines,
		r.labelValue("Quasi-identifiers:", strings.Join(s.QuasiIdentifiers, ", ")),
	)
	if s.SensitiveAttribute != "" {
		paramLines = append(paramLines, r.labelValue("Sensitive attribute:", s.SensitiveAttribute))
	}
	paramBox := BoxStyle.Width(width).Render(header + "\n" + strings.Join(paramLines, "\n"))
	fmt.Fprintln(r.w, paramBox)

	if s.Result.FinalState == engine.StateDoneEmpty {
		failBox := DangerBoxStyle.Width(width).Render(
			DangerText.Render(IconDanger+" Infeasible") + "\n" +
				"No generalization/suppression plan within the suppression budget satisfies this model.",
		)
		fmt.Fprintln(r.w, failBox)
		fmt.Fprintln(r.w)
		return
	}

	outRows := outputRowCount(s)
	resultLines := []string{
		r.labelValue("Original rows:", formatNumber(s.OriginalRows)),
		r.labelValue("Output rows:", formatNumber(outRows)),
		r.labelValue("Suppressed:", fmt.Sprintf("%d (%.1f%%)", s.Result.SuppressedCount, suppressionPct(s))),
	}
	resBox := SafeBoxStyle.Width(width).Render(TitleStyle.Render("Outcome") + "\n" + strings.Join(resultLines, "\n"))
	fmt.Fprintln(r.w, resBox)

	genLines := r.sortedGenLevels(s.Result.GenLevel)
	if len(genLines) > 0 {
		genBox := BoxStyle.Width(width).Render(TitleStyle.Render("Generalization levels") + "\n" + strings.Join(genLines, "\n"))
		fmt.Fprintln(r.w, genBox)
	}

	fmt.Fprintln(r.w)
}

func (r *TextRenderer) sortedGenLevels(levels map[string]int) []string {
	qis := make([]string, 0, len(levels))
	for qi := range levels {
		qis = append(qis, qi)
	}
	sort.Strings(qis)
	out := make([]string, 0, len(qis))
	for _, qi := range qis {
		out = append(out, r.labelValue(qi+":", fmt.Sprintf("level %d", levels[qi])))
	}
	return out
}

func (r *TextRenderer) labelValue(label, value string) string {
	return LabelStyle.Render(label) + " " + ValueStyle.Render(value)
}
