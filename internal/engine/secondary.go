package engine

import (
	"github.com/veraclabs/anonygo/internal/equivclass"
	"github.com/veraclabs/anonygo/internal/hierarchy"
	"github.com/veraclabs/anonygo/internal/metrics"
	"github.com/veraclabs/anonygo/internal/table"
)

// ladderMax reports a QI's top hierarchy level, 0 if it has none.
func ladderMax(store hierarchy.Store, qi string) int {
	return store.LadderFor(qi).MaxLevel()
}

// remainingCandidates rebuilds the generalization candidate set from a
// gen-level vector: a QI can still be lifted if it hasn't reached the
// top of its ladder.
func remainingCandidates(qis []string, store hierarchy.Store, genLevel map[string]int) map[string]bool {
	out := make(map[string]bool, len(qis))
	for _, qi := range qis {
		if genLevel[qi] < ladderMax(store, qi) {
			out[qi] = true
		}
	}
	return out
}

// generalizeUntil repeatedly generalizes the table until metric(t)
// satisfies cmp against target, or the candidate QIs are exhausted.
// This is the secondary-phase shape for divergence-bounded models
// (t-closeness, beta-likeness, delta-disclosure), none of which suppress
// past the initial k-anonymity phase in the reference implementation.
func generalizeUntil(t *table.Table, genLevel map[string]int, p *Params, candidates map[string]bool, metric func(*table.Table) float64, target float64, cmp func(val, target float64) bool, label string) (*table.Table, bool, error) {
	val := metric(t)
	for !cmp(val, target) {
		if len(candidates) == 0 {
			p.logger().Printf("%s cannot be achieved for bound %v", label, target)
			return t, false, nil
		}
		noop, err := generalizeStep(t, p.Hierarchies, p.QuasiIdentifiers, candidates, genLevel)
		if err != nil {
			return t, false, err
		}
		_ = noop
		val = metric(t)
	}
	return t, true, nil
}

func lessOrEqual(val, target float64) bool { return val <= target }

// generalizeOnlySecondary runs the k-anonymity phase, then generalizes
// only (no further suppression) until metric(t) <= bound.
func generalizeOnlySecondary(data *table.Table, p Params, k int, metric func(*table.Table) float64, bound float64, cmp func(val, target float64) bool, label string) (*Result, error) {
	if err := validateK(k); err != nil {
		return nil, err
	}
	if err := validateSuppLevel(p.SuppLevel); err != nil {
		return nil, err
	}
	if p.SensitiveAttribute == "" {
		return nil, newUnknownColumn("")
	}
	t, genLevel, err := prepare(data, &p)
	if err != nil {
		return nil, err
	}

	kr := runKPhase(t, genLevel, &p, k, len(t.Records))
	if kr.err != nil {
		return nil, kr.err
	}
	if !kr.satisfied {
		return emptyResult(data), nil
	}

	final, ok, err := generalizeUntil(kr.table, kr.genLevel, &p, kr.candidates, metric, bound, cmp, label)
	if err != nil {
		return nil, err
	}
	if !ok {
		return emptyResult(data), nil
	}
	return &Result{Table: final, SuppressedCount: kr.suppressed, GenLevel: kr.genLevel, FinalState: StateDoneOK}, nil
}

// suppressDeficientClasses attempts one transactional suppression round:
// classes for which deficient(c) holds are dropped, and the result is
// committed only if it stays within the suppression budget and
// satisfied(candidate) then holds. It mirrors the k-phase's
// suppress-then-check pattern (spec §4.5 step 3) for every model whose
// secondary phase may also suppress.
func suppressDeficientClasses(t *table.Table, qis []string, n, suppressedSoFar int, suppLevel float64, deficient func(c *equivclass.Class) bool, satisfied func(*table.Table) bool) (*table.Table, int, bool) {
	idx := equivclass.Build(t, qis)
	classes := idx.Classes()
	anyHealthy := false
	for _, c := range classes {
		if !deficient(c) {
			anyHealthy = true
			break
		}
	}
	if !anyHealthy {
		return t, suppressedSoFar, false
	}

	var keep []int
	removedNow := 0
	for _, c := range classes {
		if deficient(c) {
			removedNow += c.Size()
			continue
		}
		keep = append(keep, c.Rows...)
	}
	if float64(suppressedSoFar+removedNow)*100/float64(n) > suppLevel {
		return t, suppressedSoFar, false
	}
	candidate := t.SelectRows(sortedInts(keep))
	if !satisfied(candidate) {
		return t, suppressedSoFar, false
	}
	return candidate, suppressedSoFar + removedNow, true
}

// runLDiversityPhase implements l-diversity's secondary phase (spec §4.5
// step 5; original source's l_diversity/_l_diversity_inner): generalize
// the most identifying QI, or suppress equivalence classes with fewer
// than L distinct sensitive values, whichever the transactional check
// allows, until every class has at least L.
func runLDiversityPhase(t *table.Table, genLevel map[string]int, p *Params, l int, suppressedSoFar, n int, candidates map[string]bool) (*table.Table, int, map[string]bool, State, bool, error) {
	oracle := p.oracle()
	qis := p.QuasiIdentifiers
	sensAtt := p.SensitiveAttribute

	deficient := func(c *equivclass.Class) bool {
		return len(c.SensCounts(t, sensAtt)) < l
	}
	satisfied := func(candidate *table.Table) bool {
		return oracle.LDiversity(candidate, qis, sensAtt) >= l
	}

	lReal := oracle.LDiversity(t, qis, sensAtt)
	for lReal < l {
		lReal = oracle.LDiversity(t, qis, sensAtt)
		if lReal >= l {
			break
		}

		if candidate, suppressed, ok := suppressDeficientClasses(t, qis, n, suppressedSoFar, p.SuppLevel, deficient, satisfied); ok {
			return candidate, suppressed, candidates, StateDoneOK, true, nil
		}

		if len(candidates) == 0 {
			p.logger().Printf("l-diversity cannot be achieved for l=%d", l)
			return t, suppressedSoFar, candidates, StateDoneEmpty, false, nil
		}
		noop, err := generalizeStep(t, p.Hierarchies, qis, candidates, genLevel)
		if err != nil {
			return t, suppressedSoFar, candidates, StateDoneEmpty, false, err
		}
		_ = noop
		lReal = oracle.LDiversity(t, qis, sensAtt)
	}

	return t, suppressedSoFar, candidates, StateDoneOK, true, nil
}

// suppressRecursiveViolators drops every class whose l or c_ec falls
// short of the recursive-(c,l) targets, returning the candidate table
// and the row count removed. ok is false if no class currently
// satisfies both bounds, meaning suppression cannot help this round.
func suppressRecursiveViolators(t *table.Table, qis []string, sensAtt string, l, c int) (*table.Table, int, bool) {
	idx := equivclass.Build(t, qis)
	classes := idx.Classes()
	deficient := func(cl *equivclass.Class) bool {
		counts := cl.SensCounts(t, sensAtt)
		return len(counts) < l || metrics.RecursiveCEc(counts, l) < float64(c)
	}
	anyHealthy := false
	for _, cl := range classes {
		if !deficient(cl) {
			anyHealthy = true
			break
		}
	}
	if !anyHealthy {
		return t, 0, false
	}
	var keep []int
	removed := 0
	for _, cl := range classes {
		if deficient(cl) {
			removed += cl.Size()
			continue
		}
		keep = append(keep, cl.Rows...)
	}
	return t.SelectRows(sortedInts(keep)), removed, true
}

// maybeSuppressAlpha drops equivalence classes whose largest sensitive
// frequency exceeds alpha, committing only if it stays within budget and
// the resulting table's alpha is actually within bound; *cur is updated
// on commit. Returns the (possibly unchanged) cumulative suppressed
// count.
func maybeSuppressAlpha(t *table.Table, qis []string, sensAtt string, alpha, suppLevel float64, suppressedSoFar, n int, oracle interface {
	AlphaK(t *table.Table, qis []string, sensAtt string) (float64, int)
}, cur **table.Table) int {
	idx := equivclass.Build(t, qis)
	classes := idx.Classes()
	deficient := func(c *equivclass.Class) bool {
		counts := c.SensCounts(t, sensAtt)
		n := float64(c.Size())
		if n == 0 {
			return false
		}
		for _, cnt := range counts {
			if float64(cnt)/n > alpha {
				return true
			}
		}
		return false
	}
	anyHealthy := false
	for _, c := range classes {
		if !deficient(c) {
			anyHealthy = true
			break
		}
	}
	if !anyHealthy {
		return suppressedSoFar
	}
	var keep []int
	removed := 0
	for _, c := range classes {
		if deficient(c) {
			removed += c.Size()
			continue
		}
		keep = append(keep, c.Rows...)
	}
	if float64(suppressedSoFar+removed)*100/float64(n) > suppLevel {
		return suppressedSoFar
	}
	candidate := t.SelectRows(sortedInts(keep))
	a, _ := oracle.AlphaK(candidate, qis, sensAtt)
	if a > alpha {
		return suppressedSoFar
	}
	*cur = candidate
	return suppressedSoFar + removed
}
