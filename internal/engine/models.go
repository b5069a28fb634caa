package engine

import (
	"github.com/veraclabs/anonygo/internal/hierarchy"
	"github.com/veraclabs/anonygo/internal/table"
	"github.com/veraclabs/anonygo/internal/transform"
)

// KRequest is the parameter set for plain k-anonymity (spec §6).
type KRequest struct {
	Params
	K int
}

// KAnonymity anonymizes data so that every equivalence class over the
// declared quasi-identifiers has at least K rows, generalizing and
// suppressing as needed within SuppLevel (spec §4.5, state machine
// INIT -> K_LOOP -> DONE_OK/DONE_EMPTY for a k-only request).
func KAnonymity(data *table.Table, req KRequest) (*Result, error) {
	if err := validateK(req.K); err != nil {
		return nil, err
	}
	if err := validateSuppLevel(req.SuppLevel); err != nil {
		return nil, err
	}
	t, genLevel, err := prepare(data, &req.Params)
	if err != nil {
		return nil, err
	}
	n := len(t.Records)

	kr := runKPhase(t, genLevel, &req.Params, req.K, n)
	if kr.err != nil {
		return nil, kr.err
	}
	if !kr.satisfied {
		return emptyResult(data), nil
	}
	return &Result{Table: kr.table, SuppressedCount: kr.suppressed, GenLevel: kr.genLevel, FinalState: StateDoneOK}, nil
}

// AlphaKRequest is the parameter set for (alpha,k)-anonymity.
type AlphaKRequest struct {
	Params
	K     int
	Alpha float64
}

// AlphaKAnonymity anonymizes data for k-anonymity first, then
// generalizes and opportunistically suppresses until every class's
// maximum sensitive-value frequency is at most Alpha (spec §4.5 step 5;
// original source's alpha_k_anonymity).
func AlphaKAnonymity(data *table.Table, req AlphaKRequest) (*Result, error) {
	if err := validateK(req.K); err != nil {
		return nil, err
	}
	if req.Alpha < 0 || req.Alpha > 1 {
		return nil, newInvalidParameter("alpha must be within [0,1], got %v", req.Alpha)
	}
	if err := validateSuppLevel(req.SuppLevel); err != nil {
		return nil, err
	}
	if req.SensitiveAttribute == "" {
		return nil, newUnknownColumn("")
	}
	t, genLevel, err := prepare(data, &req.Params)
	if err != nil {
		return nil, err
	}
	n := len(t.Records)

	kr := runKPhase(t, genLevel, &req.Params, req.K, n)
	if kr.err != nil {
		return nil, kr.err
	}
	if !kr.satisfied {
		return emptyResult(data), nil
	}

	oracle := req.oracle()
	cur := kr.table
	candidates := kr.candidates
	suppressed := kr.suppressed

	alphaReal, _ := oracle.AlphaK(cur, req.QuasiIdentifiers, req.SensitiveAttribute)
	for alphaReal > req.Alpha {
		suppressed = maybeSuppressAlpha(cur, req.QuasiIdentifiers, req.SensitiveAttribute, req.Alpha, req.SuppLevel, suppressed, n, oracle, &cur)
		alphaReal, _ = oracle.AlphaK(cur, req.QuasiIdentifiers, req.SensitiveAttribute)
		if alphaReal <= req.Alpha {
			break
		}

		if len(candidates) == 0 {
			req.logger().Printf("(alpha,k)-anonymity cannot be achieved for alpha=%v", req.Alpha)
			return emptyResult(data), nil
		}
		noop, gerr := generalizeStep(cur, req.Hierarchies, req.QuasiIdentifiers, candidates, kr.genLevel)
		if gerr != nil {
			return nil, gerr
		}
		_ = noop
		alphaReal, _ = oracle.AlphaK(cur, req.QuasiIdentifiers, req.SensitiveAttribute)
	}

	return &Result{Table: cur, SuppressedCount: suppressed, GenLevel: kr.genLevel, FinalState: StateDoneOK}, nil
}

// LDiversityRequest is the parameter set for plain l-diversity.
type LDiversityRequest struct {
	Params
	K int
	L int
}

// LDiversity anonymizes for k-anonymity, then generalizes/suppresses
// further until every class has at least L distinct sensitive values
// (spec §4.5 step 5; the suppression budget accounting here sums class
// sizes per spec §9, never distinct-value counts).
func LDiversity(data *table.Table, req LDiversityRequest) (*Result, error) {
	if err := validateK(req.K); err != nil {
		return nil, err
	}
	if req.L < 1 {
		return nil, newInvalidParameter("l must be >= 1, got %d", req.L)
	}
	if err := validateSuppLevel(req.SuppLevel); err != nil {
		return nil, err
	}
	if req.SensitiveAttribute == "" {
		return nil, newUnknownColumn("")
	}
	t, genLevel, err := prepare(data, &req.Params)
	if err != nil {
		return nil, err
	}
	n := len(t.Records)

	kr := runKPhase(t, genLevel, &req.Params, req.K, n)
	if kr.err != nil {
		return nil, kr.err
	}
	if !kr.satisfied {
		return emptyResult(data), nil
	}

	cur, suppressed, _, final, ok, err := runLDiversityPhase(kr.table, kr.genLevel, &req.Params, req.L, kr.suppressed, n, kr.candidates)
	if err != nil {
		return nil, err
	}
	if !ok {
		return emptyResult(data), nil
	}
	return &Result{Table: cur, SuppressedCount: suppressed, GenLevel: kr.genLevel, FinalState: final}, nil
}

// EntropyLRequest is the parameter set for entropy l-diversity.
type EntropyLRequest struct {
	Params
	K int
	L int
}

// EntropyLDiversity runs plain l-diversity first, then keeps
// generalizing (no further suppression — entropy l-diversity's
// secondary phase is generalization-only in the reference
// implementation) until the entropy-exp of every class is at least L.
func EntropyLDiversity(data *table.Table, req EntropyLRequest) (*Result, error) {
	base, err := LDiversity(data, LDiversityRequest{Params: req.Params, K: req.K, L: req.L})
	if err != nil {
		return nil, err
	}
	if base.FinalState != StateDoneOK {
		return base, nil
	}

	oracle := req.oracle()
	candidates := remainingCandidates(req.QuasiIdentifiers, req.Hierarchies, base.GenLevel)
	final, ok, err := generalizeUntil(base.Table, base.GenLevel, &req.Params, candidates, func(t *table.Table) float64 {
		return oracle.EntropyLDiversity(t, req.QuasiIdentifiers, req.SensitiveAttribute)
	}, float64(req.L), func(val, target float64) bool { return val >= target }, "entropy l-diversity")
	if err != nil {
		return nil, err
	}
	if !ok {
		return emptyResult(data), nil
	}
	return &Result{Table: final, SuppressedCount: base.SuppressedCount, GenLevel: base.GenLevel, FinalState: StateDoneOK}, nil
}

// RecursiveCLRequest is the parameter set for recursive (c,l)-diversity.
type RecursiveCLRequest struct {
	Params
	K int
	C int
	L int
}

// RecursiveCLDiversity runs plain l-diversity, then generalizes and
// opportunistically suppresses until every class has l >= L and
// c_ec >= C (c_ec per the literal spec §9 formula).
func RecursiveCLDiversity(data *table.Table, req RecursiveCLRequest) (*Result, error) {
	if req.C < 1 {
		return nil, newInvalidParameter("c must be >= 1, got %d", req.C)
	}
	base, err := LDiversity(data, LDiversityRequest{Params: req.Params, K: req.K, L: req.L})
	if err != nil {
		return nil, err
	}
	if base.FinalState != StateDoneOK {
		return base, nil
	}

	oracle := req.oracle()
	cur := base.Table
	genLevel := base.GenLevel
	suppressed := base.SuppressedCount
	n := suppressed + len(cur.Records)
	candidates := remainingCandidates(req.QuasiIdentifiers, req.Hierarchies, genLevel)

	cReal, lReal := oracle.RecursiveCL(cur, req.QuasiIdentifiers, req.SensitiveAttribute, req.L)
	for lReal < req.L || cReal < float64(req.C) {
		if cReal < float64(req.C) {
			if candidate, removed, ok := suppressRecursiveViolators(cur, req.QuasiIdentifiers, req.SensitiveAttribute, req.L, req.C); ok {
				if float64(suppressed+removed)*100/float64(n) <= req.SuppLevel {
					cSupp, lSupp := oracle.RecursiveCL(candidate, req.QuasiIdentifiers, req.SensitiveAttribute, req.L)
					if lSupp >= req.L && cSupp >= float64(req.C) {
						return &Result{Table: candidate, SuppressedCount: suppressed + removed, GenLevel: genLevel, FinalState: StateDoneOK}, nil
					}
				}
			}
		}

		if len(candidates) == 0 {
			req.logger().Printf("recursive (c,l)-diversity cannot be achieved for l=%d, c=%d", req.L, req.C)
			return emptyResult(data), nil
		}
		noop, gerr := generalizeStep(cur, req.Hierarchies, req.QuasiIdentifiers, candidates, genLevel)
		if gerr != nil {
			return nil, gerr
		}
		_ = noop
		cReal, lReal = oracle.RecursiveCL(cur, req.QuasiIdentifiers, req.SensitiveAttribute, req.L)
	}

	return &Result{Table: cur, SuppressedCount: suppressed, GenLevel: genLevel, FinalState: StateDoneOK}, nil
}

// TClosenessRequest is the parameter set for t-closeness.
type TClosenessRequest struct {
	Params
	K int
	T float64
}

// TCloseness runs k-anonymity, then generalizes (no suppression — this
// is a divergence bound, which generalization alone shrinks) until the
// largest per-class EMD against the overall distribution is <= T.
func TCloseness(data *table.Table, req TClosenessRequest) (*Result, error) {
	if req.T < 0 || req.T > 1 {
		return nil, newInvalidParameter("t must be within [0,1], got %v", req.T)
	}
	oracle := req.oracle()
	return generalizeOnlySecondary(data, req.Params, req.K, func(t *table.Table) float64 {
		return oracle.TCloseness(t, req.QuasiIdentifiers, req.SensitiveAttribute)
	}, req.T, lessOrEqual, "t-closeness")
}

// BetaRequest is the parameter set for both basic and enhanced
// beta-likeness; P0 is only consulted by EnhancedBetaLikeness.
type BetaRequest struct {
	Params
	K    int
	Beta float64
	P0   float64
}

// BasicBetaLikeness runs k-anonymity, then generalizes until the
// largest per-class log-ratio divergence is <= Beta.
func BasicBetaLikeness(data *table.Table, req BetaRequest) (*Result, error) {
	if req.Beta < 0 {
		return nil, newInvalidParameter("beta must be >= 0, got %v", req.Beta)
	}
	oracle := req.oracle()
	return generalizeOnlySecondary(data, req.Params, req.K, func(t *table.Table) float64 {
		return oracle.BasicBetaLikeness(t, req.QuasiIdentifiers, req.SensitiveAttribute)
	}, req.Beta, lessOrEqual, "basic beta-likeness")
}

// EnhancedBetaLikeness is BasicBetaLikeness with the P0 rare-value
// floor applied before computing the divergence.
func EnhancedBetaLikeness(data *table.Table, req BetaRequest) (*Result, error) {
	if req.Beta < 0 {
		return nil, newInvalidParameter("beta must be >= 0, got %v", req.Beta)
	}
	oracle := req.oracle()
	return generalizeOnlySecondary(data, req.Params, req.K, func(t *table.Table) float64 {
		return oracle.EnhancedBetaLikeness(t, req.QuasiIdentifiers, req.SensitiveAttribute, req.P0)
	}, req.Beta, lessOrEqual, "enhanced beta-likeness")
}

// DeltaRequest is the parameter set for delta-disclosure privacy.
type DeltaRequest struct {
	Params
	K     int
	Delta float64
}

// DeltaDisclosure runs k-anonymity, then generalizes until the largest
// per-class log-ratio divergence is <= Delta.
func DeltaDisclosure(data *table.Table, req DeltaRequest) (*Result, error) {
	if req.Delta < 0 {
		return nil, newInvalidParameter("delta must be >= 0, got %v", req.Delta)
	}
	oracle := req.oracle()
	return generalizeOnlySecondary(data, req.Params, req.K, func(t *table.Table) float64 {
		return oracle.DeltaDisclosure(t, req.QuasiIdentifiers, req.SensitiveAttribute)
	}, req.Delta, lessOrEqual, "delta-disclosure")
}

// GetTransformation reports the generalization level currently applied
// to each declared QI (spec §4.2).
func GetTransformation(data *table.Table, qis []string, store hierarchy.Store) (map[string]int, error) {
	return transform.GetTransformation(data, qis, store)
}
