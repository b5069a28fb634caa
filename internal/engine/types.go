// Package engine implements the generalization-and-suppression search
// driver of spec §4.5: the finite state machine that interleaves
// per-QI generalization steps with equivalence-class suppression
// rounds until a privacy predicate holds or the search is exhausted.
package engine

import (
	"github.com/veraclabs/anonygo/internal/anonerr"
	"github.com/veraclabs/anonygo/internal/hierarchy"
	"github.com/veraclabs/anonygo/internal/metrics"
	"github.com/veraclabs/anonygo/internal/table"
)

// State names the driver's finite state machine positions (spec §4.5).
type State string

const (
	StateInit          State = "INIT"
	StateKLoop         State = "K_LOOP"
	StateSecondaryLoop State = "SECONDARY_LOOP"
	StateDoneOK        State = "DONE_OK"
	StateDoneEmpty     State = "DONE_EMPTY"
)

// Params holds the inputs shared by every privacy model, matching
// spec §6's library API parameter list.
type Params struct {
	Identifiers        []string
	QuasiIdentifiers   []string
	SensitiveAttribute string // empty when the model doesn't use one
	SuppLevel          float64
	Hierarchies        hierarchy.Store
	Oracle             metrics.Oracle // nil uses metrics.Default{}
	Logger             anonerr.Logger // nil discards diagnostics
}

func (p *Params) oracle() metrics.Oracle {
	if p.Oracle != nil {
		return p.Oracle
	}
	return metrics.Default{}
}

func (p *Params) logger() anonerr.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return anonerr.NopLogger{}
}

// Result is the outcome of a search, spec §4.5 step 6. Table has zero
// records when the search could not satisfy the predicate (spec §7
// Infeasible); that is not signaled as an error.
type Result struct {
	Table           *table.Table
	SuppressedCount int
	GenLevel        map[string]int
	FinalState      State
}

func emptyResult(original *table.Table) *Result {
	return &Result{
		Table:      table.New(original.Columns),
		FinalState: StateDoneEmpty,
	}
}

func validateSuppLevel(supp float64) error {
	if supp < 0 || supp > 100 {
		return newInvalidParameter("suppression level %v must be within [0,100]", supp)
	}
	return nil
}

func validateK(k int) error {
	if k < 1 {
		return newInvalidParameter("k must be >= 1, got %d", k)
	}
	return nil
}
