package engine

import (
	"errors"

	"github.com/veraclabs/anonygo/internal/anonerr"
	"github.com/veraclabs/anonygo/internal/equivclass"
	"github.com/veraclabs/anonygo/internal/hierarchy"
	"github.com/veraclabs/anonygo/internal/table"
	"github.com/veraclabs/anonygo/internal/transform"
)

// prepare validates the columns named in p against data, erases
// identifiers on an owned clone, and infers the starting generalization
// level vector (spec §4.5 step 2).
func prepare(data *table.Table, p *Params) (*table.Table, map[string]int, error) {
	for _, id := range p.Identifiers {
		if !data.HasColumn(id) {
			return nil, nil, newUnknownColumn(id)
		}
	}
	for _, qi := range p.QuasiIdentifiers {
		if !data.HasColumn(qi) {
			return nil, nil, newUnknownColumn(qi)
		}
	}
	if p.SensitiveAttribute != "" && !data.HasColumn(p.SensitiveAttribute) {
		return nil, nil, newUnknownColumn(p.SensitiveAttribute)
	}

	t := data.Clone()
	if err := transform.SuppressIdentifiers(t, p.Identifiers); err != nil {
		return nil, nil, err
	}
	genLevel, err := transform.GetTransformation(t, p.QuasiIdentifiers, p.Hierarchies)
	if err != nil {
		return nil, nil, err
	}
	return t, genLevel, nil
}

// distinctCount returns the number of distinct values currently held by
// column qi, used by the argmax tie-break rule (spec §4.3, §4.5).
func distinctCount(t *table.Table, qi string) int {
	values, err := t.Column(qi)
	if err != nil {
		return 0
	}
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}
	return len(seen)
}

// pickArgmaxQI returns the QI in candidates (a subset of declared, in
// declared order) with the largest current distinct-value count, ties
// broken by first-declared-wins (spec §4.3, §4.5).
func pickArgmaxQI(t *table.Table, declared []string, candidates map[string]bool) string {
	best := ""
	bestCount := -1
	for _, qi := range declared {
		if !candidates[qi] {
			continue
		}
		c := distinctCount(t, qi)
		if c > bestCount {
			bestCount = c
			best = qi
		}
	}
	return best
}

// generalizeStep raises the argmax QI by one level. If its ladder is
// exhausted (InvalidLevel), the QI is dropped from candidates and the
// step reports noop=true so the driver retries with a new argmax pick
// in the same iteration without having changed the table (spec §4.5
// step 3, second bullet).
func generalizeStep(t *table.Table, store hierarchy.Store, declared []string, candidates map[string]bool, genLevel map[string]int) (noop bool, err error) {
	qi := pickArgmaxQI(t, declared, candidates)
	if qi == "" {
		return true, nil
	}
	newLevel, err := transform.LiftOne(t, qi, store, genLevel[qi])
	if err != nil {
		if errors.Is(err, anonerr.InvalidLevel) {
			delete(candidates, qi)
			return true, nil
		}
		return false, err
	}
	genLevel[qi] = newLevel
	return false, nil
}

// kResult bundles the outcome of the k-anonymity phase (spec §4.5 step
// 3-4): the table after any generalization/suppression, the cumulative
// suppressed-row count, the gen-level vector, the surviving candidate
// QI set, and whether k was actually satisfied.
type kResult struct {
	table      *table.Table
	suppressed int
	genLevel   map[string]int
	candidates map[string]bool
	satisfied  bool
	err        error
}

// runKPhase implements spec §4.5 steps 3-4 exactly, mirroring the
// reference implementation's k_anonymity_inner: try suppression only
// when at least one class already meets k, otherwise generalize the
// highest-cardinality candidate QI; repeat until k holds or candidates
// are exhausted.
func runKPhase(t *table.Table, genLevel map[string]int, p *Params, k int, n int) kResult {
	oracle := p.oracle()
	qis := p.QuasiIdentifiers
	candidates := make(map[string]bool, len(qis))
	for _, qi := range qis {
		candidates[qi] = true
	}

	kReal := oracle.K(t, qis)
	if kReal >= k {
		return kResult{table: t, suppressed: 0, genLevel: genLevel, candidates: candidates, satisfied: true}
	}

	for kReal < k {
		kReal = oracle.K(t, qis)
		if kReal >= k {
			return kResult{table: t, suppressed: 0, genLevel: genLevel, candidates: candidates, satisfied: true}
		}

		idx := equivclass.Build(t, qis)
		classes := idx.Classes()
		maxSize := 0
		for _, c := range classes {
			if c.Size() > maxSize {
				maxSize = c.Size()
			}
		}
		if k <= maxSize {
			var keep []int
			suppressedNow := 0
			for _, c := range classes {
				if c.Size() < k {
					suppressedNow += c.Size()
					continue
				}
				keep = append(keep, c.Rows...)
			}
			if float64(suppressedNow)*100/float64(n) <= p.SuppLevel {
				candidate := t.SelectRows(sortedInts(keep))
				if oracle.K(candidate, qis) >= k {
					return kResult{table: candidate, suppressed: n - len(candidate.Records), genLevel: genLevel, candidates: candidates, satisfied: true}
				}
			}
		}

		if len(candidates) == 0 {
			p.logger().Printf("k-anonymity cannot be achieved for k=%d", k)
			return kResult{table: t, suppressed: n - len(t.Records), genLevel: genLevel, candidates: candidates, satisfied: false}
		}

		noop, err := generalizeStep(t, p.Hierarchies, qis, candidates, genLevel)
		if err != nil {
			// InvalidLevel never escapes generalizeStep; anything else is
			// a data/hierarchy mismatch the search cannot repair.
			p.logger().Printf("generalization failed: %v", err)
			return kResult{table: t, suppressed: n - len(t.Records), genLevel: genLevel, candidates: candidates, satisfied: false, err: err}
		}
		_ = noop
	}

	return kResult{table: t, suppressed: n - len(t.Records), genLevel: genLevel, candidates: candidates, satisfied: true}
}

func sortedInts(xs []int) []int {
	// keep rows in ascending original order so SelectRows preserves the
	// table's row ordering invariant.
	out := append([]int(nil), xs...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
