// Package transform implements the generalization/suppression
// operations of spec §4.2: erasing identifiers and moving quasi-
// identifier columns up their hierarchy ladders.
package transform

import (
	"fmt"

	"github.com/veraclabs/anonygo/internal/anonerr"
	"github.com/veraclabs/anonygo/internal/hierarchy"
	"github.com/veraclabs/anonygo/internal/table"
)

const suppressedValue = "*"

// SuppressIdentifiers overwrites every cell in each identifier column
// with the sentinel "*", in place. Fails if a named identifier isn't a
// column of t.
func SuppressIdentifiers(t *table.Table, identifiers []string) error {
	for _, id := range identifiers {
		if !t.HasColumn(id) {
			return fmt.Errorf("transform: identifier %q: %w", id, anonerr.UnknownColumn)
		}
		values := make([]string, len(t.Records))
		for i := range values {
			values[i] = suppressedValue
		}
		if err := t.SetColumn(id, values); err != nil {
			return err
		}
	}
	return nil
}

// GetTransformation returns the inferred per-QI current level, 0 for
// any QI absent from the hierarchy store (spec §4.2).
func GetTransformation(t *table.Table, qis []string, store hierarchy.Store) (map[string]int, error) {
	out := make(map[string]int, len(qis))
	for _, qi := range qis {
		ladder := store.LadderFor(qi)
		if ladder == nil {
			out[qi] = 0
			continue
		}
		values, err := t.Column(qi)
		if err != nil {
			return nil, fmt.Errorf("transform: %w", anonerr.UnknownColumn)
		}
		if lvl, ok := ladder.InferLevel(values); ok {
			out[qi] = lvl
		} else {
			out[qi] = 0
		}
	}
	return out, nil
}

// ApplyTransformation lifts each QI whose current level differs from
// target[qi] up to that level, in place on t. current must hold every
// QI's present level (typically from GetTransformation).
func ApplyTransformation(t *table.Table, qis []string, store hierarchy.Store, current, target map[string]int) error {
	for _, qi := range qis {
		from, to := current[qi], target[qi]
		if from == to {
			continue
		}
		ladder := store.LadderFor(qi)
		if ladder == nil {
			if to != 0 {
				return fmt.Errorf("transform: QI %q has no hierarchy, level %d: %w", qi, to, anonerr.InvalidLevel)
			}
			continue
		}
		values, err := t.Column(qi)
		if err != nil {
			return fmt.Errorf("transform: %w", anonerr.UnknownColumn)
		}
		lifted, err := ladder.Lift(values, from, to)
		if err != nil {
			return err
		}
		if err := t.SetColumn(qi, lifted); err != nil {
			return err
		}
	}
	return nil
}

// LiftOne raises a single QI by exactly one level from its current
// level, returning the new level. This is the primitive the search
// driver calls once per generalization step (spec §4.5 step 3).
func LiftOne(t *table.Table, qi string, store hierarchy.Store, currentLevel int) (newLevel int, err error) {
	ladder := store.LadderFor(qi)
	if ladder == nil {
		return currentLevel, fmt.Errorf("transform: QI %q has no hierarchy: %w", qi, anonerr.InvalidLevel)
	}
	values, err := t.Column(qi)
	if err != nil {
		return currentLevel, fmt.Errorf("transform: %w", anonerr.UnknownColumn)
	}
	lifted, err := ladder.Lift(values, currentLevel, currentLevel+1)
	if err != nil {
		return currentLevel, err
	}
	if err := t.SetColumn(qi, lifted); err != nil {
		return currentLevel, err
	}
	return currentLevel + 1, nil
}
