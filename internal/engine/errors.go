package engine

import (
	"fmt"

	"github.com/veraclabs/anonygo/internal/anonerr"
)

func newInvalidParameter(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, anonerr.InvalidParameter)...)
}

func newUnknownColumn(column string) error {
	return fmt.Errorf("column %q: %w", column, anonerr.UnknownColumn)
}
