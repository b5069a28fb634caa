package metrics

import (
	"math"
	"sort"

	"github.com/veraclabs/anonygo/internal/distribution"
	"github.com/veraclabs/anonygo/internal/equivclass"
	"github.com/veraclabs/anonygo/internal/table"
)

// shannonEntropy computes -sum p*ln(p) in nats over a count map, given
// the total n.
func shannonEntropy(counts map[string]int, n float64) float64 {
	h := 0.0
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / n
		h -= p * math.Log(p)
	}
	return h
}

func expf(x float64) float64 { return math.Exp(x) }

func absLog(ratio float64) float64 {
	if ratio <= 0 {
		return math.Inf(1)
	}
	return math.Abs(math.Log(ratio))
}

// RecursiveCEc exposes the single-class c_ec computation for callers
// outside this package that need to probe a candidate suppression
// before committing to it (the engine's recursive-(c,l) secondary
// phase).
func RecursiveCEc(counts map[string]int, lTarget int) float64 {
	return recursiveCEc(counts, lTarget)
}

// recursiveCEc implements the literal source formula from spec §9:
// sort per-class sensitive-value frequencies ascending into r, then
// c_ec = floor(r[0] / sum(r[lTarget-1:]) + 1). When lTarget-1 is out of
// range (fewer distinct values than lTarget), the class can never
// satisfy the target and c_ec is reported as 0.
func recursiveCEc(counts map[string]int, lTarget int) float64 {
	r := make([]int, 0, len(counts))
	for _, c := range counts {
		r = append(r, c)
	}
	sort.Ints(r)

	idx := lTarget - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(r) || len(r) == 0 {
		return 0
	}
	tailSum := 0
	for _, v := range r[idx:] {
		tailSum += v
	}
	if tailSum == 0 {
		return 0
	}
	return math.Floor(float64(r[0])/float64(tailSum) + 1)
}

// classEMD computes the ordered-domain Earth Mover's Distance (Li, Li &
// Venkatasubramanian 2007) between one class's sensitive distribution
// and the table-wide distribution, over `domain`, the sorted set of
// every sensitive value observed in the whole table.
func classEMD(c *equivclass.Class, t *table.Table, sensAtt string, domain []string, overall *distribution.Info) float64 {
	n := float64(c.Size())
	if n == 0 || len(domain) <= 1 {
		return 0
	}
	counts := c.SensCounts(t, sensAtt)

	cumClass, cumOverall := 0.0, 0.0
	sumAbs := 0.0
	for _, v := range domain {
		pClass := float64(counts[v]) / n
		pOverall := overall.Proportion(v)
		cumClass += pClass
		cumOverall += pOverall
		sumAbs += math.Abs(cumClass - cumOverall)
	}
	return sumAbs / float64(len(domain)-1)
}
