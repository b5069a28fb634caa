package output

import (
	"encoding/json"
	"io"

	"github.com/veraclabs/anonygo/internal/engine"
)

// JSONRenderer produces machine-readable JSON output.
type JSONRenderer struct {
	w io.Writer
}

type jsonParam struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type jsonReport struct {
	Model              string            `json:"model"`
	Params             []jsonParam       `json:"params"`
	QuasiIdentifiers   []string          `json:"quasi_identifiers"`
	SensitiveAttribute string            `json:"sensitive_attribute,omitempty"`
	Feasible           bool              `json:"feasible"`
	OriginalRows       int               `json:"original_rows,omitempty"`
	OutputRows         int               `json:"output_rows,omitempty"`
	SuppressedRows     int               `json:"suppressed_rows,omitempty"`
	SuppressedPct      float64           `json:"suppressed_pct,omitempty"`
	GeneralizationLvl  map[string]int    `json:"generalization_levels,omitempty"`
}

func (r *JSONRenderer) Render(s Summary) {
	out := jsonReport{
		Model:              s.Model,
		QuasiIdentifiers:   s.QuasiIdentifiers,
		SensitiveAttribute: s.SensitiveAttribute,
		Feasible:           s.Result.FinalState != engine.StateDoneEmpty,
	}
	for _, p := range s.Params {
		out.Params = append(out.Params, jsonParam{Label: p.Label, Value: p.Value})
	}
	if out.Feasible {
		out.OriginalRows = s.OriginalRows
		out.OutputRows = outputRowCount(s)
		out.SuppressedRows = s.Result.SuppressedCount
		out.SuppressedPct = suppressionPct(s)
		out.GeneralizationLvl = s.Result.GenLevel
	}

	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(out)
}
