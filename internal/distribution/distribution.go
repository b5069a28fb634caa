// Package distribution computes the table-wide sensitive-attribute
// distribution that t-closeness, beta-likeness and delta-disclosure
// compare each equivalence class against. It is adapted from the
// teacher's topology detector: a single scan over the data followed by
// a cascade of classification steps, except here the "topology" being
// classified is the shape of one column's value distribution rather
// than a MySQL cluster.
package distribution

import (
	"fmt"
	"log"
	"sort"

	"github.com/veraclabs/anonygo/internal/table"
)

// Shape classifies how a sensitive attribute's overall distribution
// looks. It is reported in Info and in the verbose log trail; the
// metric oracles use only the per-value proportions, not Shape.
type Shape string

const (
	ShapeUniform    Shape = "uniform"     // every value roughly equally likely
	ShapeSkewed     Shape = "skewed"      // a dominant value with a long tail
	ShapeDegenerate Shape = "degenerate"  // a single sensitive value overall
)

// Info holds the full table-wide distribution state for one sensitive
// attribute.
type Info struct {
	SensAtt string

	Total  int
	Counts map[string]int
	Props  map[string]float64

	Shape        Shape
	DominantVal  string
	DominantProp float64
	DistinctVals int
}

// Compute scans the sensitive-attribute column once and classifies its
// overall distribution. Set verbose to log the classification steps,
// mirroring the teacher's verbose topology-detection trail.
func Compute(t *table.Table, sensAtt string, verbose bool) (*Info, error) {
	values, err := t.Column(sensAtt)
	if err != nil {
		return nil, fmt.Errorf("distribution: %w", err)
	}

	info := &Info{
		SensAtt: sensAtt,
		Total:   len(values),
		Counts:  make(map[string]int),
		Props:   make(map[string]float64),
	}
	for _, v := range values {
		info.Counts[v]++
	}
	info.DistinctVals = len(info.Counts)
	if info.Total > 0 {
		for v, c := range info.Counts {
			info.Props[v] = float64(c) / float64(info.Total)
		}
	}
	if verbose {
		log.Printf("[DEBUG] distribution: %d rows, %d distinct values of %q", info.Total, info.DistinctVals, sensAtt)
	}

	classifyShape(info, verbose)
	return info, nil
}

func classifyShape(info *Info, verbose bool) {
	if info.DistinctVals <= 1 {
		info.Shape = ShapeDegenerate
		for v, p := range info.Props {
			info.DominantVal, info.DominantProp = v, p
		}
		if verbose {
			log.Printf("[DEBUG] distribution: degenerate, single value %q", info.DominantVal)
		}
		return
	}

	keys := make([]string, 0, len(info.Props))
	for v := range info.Props {
		keys = append(keys, v)
	}
	sort.Slice(keys, func(i, j int) bool { return info.Props[keys[i]] > info.Props[keys[j]] })
	info.DominantVal = keys[0]
	info.DominantProp = info.Props[keys[0]]

	expected := 1.0 / float64(info.DistinctVals)
	if info.DominantProp > 2*expected {
		info.Shape = ShapeSkewed
	} else {
		info.Shape = ShapeUniform
	}
	if verbose {
		log.Printf("[DEBUG] distribution: shape=%s dominant=%q (%.4f), expected uniform share %.4f",
			info.Shape, info.DominantVal, info.DominantProp, expected)
	}
}

// Proportion returns the overall share of a sensitive value, 0 if it
// never occurs in the table.
func (info *Info) Proportion(value string) float64 {
	return info.Props[value]
}

// SortedValues returns every sensitive value observed overall, in a
// stable (alphabetical) order — used by oracles that need deterministic
// iteration when comparing class vs. overall distributions.
func (info *Info) SortedValues() []string {
	out := make([]string, 0, len(info.Props))
	for v := range info.Props {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
