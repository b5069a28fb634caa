// Package hierarchy implements the per-QI generalization ladders of
// spec §4.1: a read-only, position-indexed map from a column's current
// values to a coarser level's labels.
package hierarchy

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/veraclabs/anonygo/internal/anonerr"
)

// Ladder is one quasi-identifier's generalization hierarchy: Levels[0]
// is the identity level, Levels[i] the label at level i for the row
// that, at level 0, held Levels[0][row].
type Ladder struct {
	// Levels[level][row] is the label for the distinct original value
	// at Levels[0][row], at the given level. All slices share length.
	Levels [][]string
}

// MaxLevel returns the ladder's top level index.
func (h *Ladder) MaxLevel() int {
	if h == nil {
		return 0
	}
	return len(h.Levels) - 1
}

// Load reads a CSV hierarchy file: column 0 holds the original values,
// column i the level-i labels, one row per distinct original value
// (spec §6). Rows need not be sorted; position alignment across
// columns is all that matters.
func Load(path string) (*Ladder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("hierarchy: opening %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a hierarchy from an arbitrary CSV reader, so callers that
// already hold the bytes (embedded fixtures, test data) don't need a
// filesystem round-trip.
func Parse(r io.Reader) (*Ladder, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("hierarchy: parsing CSV: %w", err)
	}
	if len(rows) == 0 {
		return &Ladder{Levels: [][]string{{}}}, nil
	}
	numLevels := len(rows[0])
	levels := make([][]string, numLevels)
	for lvl := 0; lvl < numLevels; lvl++ {
		levels[lvl] = make([]string, 0, len(rows))
	}
	for _, row := range rows {
		for lvl := 0; lvl < numLevels; lvl++ {
			var v string
			if lvl < len(row) {
				v = row[lvl]
			}
			levels[lvl] = append(levels[lvl], v)
		}
	}
	return &Ladder{Levels: levels}, nil
}

// Lift maps each of values (read at level `from`) to its label at level
// `to`, by position lookup in the `from` level column (spec §4.1).
func (h *Ladder) Lift(values []string, from, to int) ([]string, error) {
	if to > h.MaxLevel() {
		return nil, fmt.Errorf("hierarchy: level %d exceeds ladder top %d: %w", to, h.MaxLevel(), anonerr.InvalidLevel)
	}
	if from < 0 || from > h.MaxLevel() {
		return nil, fmt.Errorf("hierarchy: level %d exceeds ladder top %d: %w", from, h.MaxLevel(), anonerr.InvalidLevel)
	}
	fromCol := h.Levels[from]
	pos := make(map[string]int, len(fromCol))
	for i, v := range fromCol {
		if _, exists := pos[v]; !exists {
			pos[v] = i
		}
	}
	toCol := h.Levels[to]
	out := make([]string, len(values))
	for i, v := range values {
		p, ok := pos[v]
		if !ok {
			return nil, fmt.Errorf("hierarchy: value %q has no image at level %d: %w", v, from, anonerr.UnknownValue)
		}
		out[i] = toCol[p]
	}
	return out, nil
}

// InferLevel returns the highest level whose label set still covers
// every value observed in `values` — i.e. the coarsest classification
// consistent with the data, which is what "the current generalization
// level of an already-generalized column" means. ok is false when no
// level (including 0) covers the values, meaning the QI is
// un-classified against this ladder; callers then default to level 0
// per spec §4.1.
func (h *Ladder) InferLevel(values []string) (level int, ok bool) {
	best, found := 0, false
	for lvl, labels := range h.Levels {
		set := make(map[string]struct{}, len(labels))
		for _, l := range labels {
			set[l] = struct{}{}
		}
		covers := true
		for _, v := range values {
			if _, in := set[v]; !in {
				covers = false
				break
			}
		}
		if covers {
			best = lvl
			found = true
		}
	}
	return best, found
}

// Store is the read-only collection of ladders for every QI that has
// one. A QI absent from the store is treated by callers as having only
// level 0, per spec §3.
type Store map[string]*Ladder

// LadderFor returns the ladder for a QI, or nil if it has none.
func (s Store) LadderFor(qi string) *Ladder {
	return s[qi]
}
