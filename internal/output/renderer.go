// Package output renders an anonymization run's outcome in the formats
// the CLI supports: styled terminal text, plain text, Markdown, and
// JSON.
package output

import (
	"io"

	"github.com/veraclabs/anonygo/internal/engine"
)

// Summary bundles everything a renderer needs to describe one
// anonymization run, independent of which privacy model produced it.
type Summary struct {
	Model              string
	Params             []ParamValue
	QuasiIdentifiers   []string
	SensitiveAttribute string
	OriginalRows       int
	Result             *engine.Result
}

// ParamValue is one model parameter rendered as a label/value pair, in
// declaration order (e.g. "k" = "5", "suppression" = "20%").
type ParamValue struct {
	Label string
	Value string
}

// Renderer defines the output interface.
type Renderer interface {
	Render(s Summary)
}

// NewRenderer creates a renderer for the given format.
func NewRenderer(format string, w io.Writer) Renderer {
	switch format {
	case "json":
		return &JSONRenderer{w: w}
	case "markdown":
		return &MarkdownRenderer{w: w}
	case "plain":
		return &PlainRenderer{w: w}
	default:
		return &TextRenderer{w: w}
	}
}

func outputRowCount(s Summary) int {
	if s.Result == nil || s.Result.Table == nil {
		return 0
	}
	return len(s.Result.Table.Records)
}

func suppressionPct(s Summary) float64 {
	if s.OriginalRows == 0 {
		return 0
	}
	return float64(s.Result.SuppressedCount) * 100 / float64(s.OriginalRows)
}

func formatNumber(n int) string {
	str := []byte{}
	digits := []byte{}
	for n > 0 {
		digits = append(digits, byte('0'+n%10))
		n /= 10
	}
	if len(digits) == 0 {
		return "0"
	}
	for i := len(digits) - 1; i >= 0; i-- {
		str = append(str, digits[i])
		if i%3 == 0 && i != 0 {
			str = append(str, ',')
		}
	}
	return string(str)
}
