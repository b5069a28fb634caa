// Package metrics implements the privacy-metric oracles of spec §4.4 as
// pure functions over a table and its equivalence-class partition. The
// engine never reimplements this math; it only calls through the Oracle
// capability set.
package metrics

import (
	"github.com/veraclabs/anonygo/internal/distribution"
	"github.com/veraclabs/anonygo/internal/equivclass"
	"github.com/veraclabs/anonygo/internal/table"
)

// Oracle is the pluggable capability set of spec §6: one method per
// privacy model, each pure (no I/O, no retained state).
type Oracle interface {
	K(t *table.Table, qis []string) int
	AlphaK(t *table.Table, qis []string, sensAtt string) (alpha float64, k int)
	LDiversity(t *table.Table, qis []string, sensAtt string) int
	EntropyLDiversity(t *table.Table, qis []string, sensAtt string) float64
	RecursiveCL(t *table.Table, qis []string, sensAtt string, lTarget int) (c float64, l int)
	TCloseness(t *table.Table, qis []string, sensAtt string) float64
	BasicBetaLikeness(t *table.Table, qis []string, sensAtt string) float64
	EnhancedBetaLikeness(t *table.Table, qis []string, sensAtt string, p0 float64) float64
	DeltaDisclosure(t *table.Table, qis []string, sensAtt string) float64
}

// Default is the standard Oracle implementation, stateless by
// construction — it is safe to share a single Default across
// concurrent, independent engine invocations (spec §5).
type Default struct{}

// buildIndex is the shared first step of every oracle: partition by QI
// tuple. Nothing is cached across calls, per spec §4.3.
func buildIndex(t *table.Table, qis []string) *equivclass.Index {
	return equivclass.Build(t, qis)
}

// K returns the smallest equivalence-class size, 0 for an empty table.
func (Default) K(t *table.Table, qis []string) int {
	idx := buildIndex(t, qis)
	min, ok := idx.MinSize()
	if !ok {
		return 0
	}
	return min
}

// AlphaK returns the largest per-class maximum sensitive-value
// frequency (alpha) and the smallest class size (k), per spec §4.4.
func (Default) AlphaK(t *table.Table, qis []string, sensAtt string) (float64, int) {
	idx := buildIndex(t, qis)
	classes := idx.Classes()
	if len(classes) == 0 {
		return 0, 0
	}
	maxAlpha := 0.0
	minK := classes[0].Size()
	for _, c := range classes {
		if c.Size() < minK {
			minK = c.Size()
		}
		counts := c.SensCounts(t, sensAtt)
		for _, n := range counts {
			a := float64(n) / float64(c.Size())
			if a > maxAlpha {
				maxAlpha = a
			}
		}
	}
	return maxAlpha, minK
}

// LDiversity returns the smallest per-class count of distinct sensitive
// values.
func (Default) LDiversity(t *table.Table, qis []string, sensAtt string) int {
	idx := buildIndex(t, qis)
	classes := idx.Classes()
	if len(classes) == 0 {
		return 0
	}
	min := -1
	for _, c := range classes {
		distinct := len(c.SensCounts(t, sensAtt))
		if min == -1 || distinct < min {
			min = distinct
		}
	}
	if min == -1 {
		return 0
	}
	return min
}

// EntropyLDiversity returns the smallest per-class "entropy-exp",
// exp(Shannon entropy in nats of the class's sensitive distribution) —
// the standard entropy l-diversity parameter (Machanavajjhala et al.).
func (Default) EntropyLDiversity(t *table.Table, qis []string, sensAtt string) float64 {
	idx := buildIndex(t, qis)
	classes := idx.Classes()
	if len(classes) == 0 {
		return 0
	}
	min := -1.0
	for _, c := range classes {
		e := classEntropyExp(c, t, sensAtt)
		if min < 0 || e < min {
			min = e
		}
	}
	if min < 0 {
		return 0
	}
	return min
}

func classEntropyExp(c *equivclass.Class, t *table.Table, sensAtt string) float64 {
	counts := c.SensCounts(t, sensAtt)
	n := float64(c.Size())
	if n == 0 {
		return 0
	}
	h := shannonEntropy(counts, n)
	return expf(h)
}

// RecursiveCL returns the smallest per-class l (distinct sensitive
// count) and the smallest per-class c_ec, computed exactly as spec §9
// instructs (literal source formula, not the canonical Machanavajjhala
// ratio): sorted-ascending per-class frequencies r, c_ec =
// floor(r[0]/sum(r[lTarget-1:]) + 1). lTarget is a parameter, not a
// table-only quantity, because the formula itself depends on it.
func (Default) RecursiveCL(t *table.Table, qis []string, sensAtt string, lTarget int) (float64, int) {
	idx := buildIndex(t, qis)
	classes := idx.Classes()
	if len(classes) == 0 {
		return 0, 0
	}
	minL := -1
	minC := -1.0
	for _, c := range classes {
		counts := c.SensCounts(t, sensAtt)
		l := len(counts)
		if minL == -1 || l < minL {
			minL = l
		}
		cEc := recursiveCEc(counts, lTarget)
		if minC < 0 || cEc < minC {
			minC = cEc
		}
	}
	if minL == -1 {
		minL = 0
	}
	if minC < 0 {
		minC = 0
	}
	return minC, minL
}

// TCloseness returns the largest per-class Earth Mover's Distance
// between a class's sensitive distribution and the table-wide one (Li,
// Li & Venkatasubramanian's ordered-domain formulation over the
// lexicographically sorted distinct sensitive values).
func (Default) TCloseness(t *table.Table, qis []string, sensAtt string) float64 {
	overall, err := distribution.Compute(t, sensAtt, false)
	if err != nil {
		return 0
	}
	idx := buildIndex(t, qis)
	domain := overall.SortedValues()
	max := 0.0
	for _, c := range idx.Classes() {
		emd := classEMD(c, t, sensAtt, domain, overall)
		if emd > max {
			max = emd
		}
	}
	return max
}

// BasicBetaLikeness returns the largest per-class, per-value
// log-ratio divergence |ln(p_class(s)/p_overall(s))| (Cao & Karras'
// basic beta-likeness), with no floor on rare overall values.
func (Default) BasicBetaLikeness(t *table.Table, qis []string, sensAtt string) float64 {
	return maxLogRatio(t, qis, sensAtt, 0)
}

// EnhancedBetaLikeness is basic beta-likeness except sensitive values
// whose overall proportion is at or below p0 are excluded from the
// divergence check — Cao & Karras' floor for values too rare to pose a
// meaningful disclosure risk regardless of how concentrated they are in
// one class.
func (Default) EnhancedBetaLikeness(t *table.Table, qis []string, sensAtt string, p0 float64) float64 {
	return maxLogRatio(t, qis, sensAtt, p0)
}

// DeltaDisclosure returns the largest per-class, per-value log-ratio
// divergence (Brickell & Shmatikov's delta-disclosure) — the same
// multiplicative-ratio shape as basic beta-likeness; the two metrics
// come from different papers but share this formula.
func (Default) DeltaDisclosure(t *table.Table, qis []string, sensAtt string) float64 {
	return maxLogRatio(t, qis, sensAtt, 0)
}

func maxLogRatio(t *table.Table, qis []string, sensAtt string, floor float64) float64 {
	overall, err := distribution.Compute(t, sensAtt, false)
	if err != nil {
		return 0
	}
	idx := buildIndex(t, qis)
	max := 0.0
	for _, c := range idx.Classes() {
		counts := c.SensCounts(t, sensAtt)
		n := float64(c.Size())
		if n == 0 {
			continue
		}
		for s, cnt := range counts {
			pOverall := overall.Proportion(s)
			if pOverall <= floor || pOverall == 0 {
				continue
			}
			pClass := float64(cnt) / n
			ratio := absLog(pClass / pOverall)
			if ratio > max {
				max = ratio
			}
		}
	}
	return max
}
