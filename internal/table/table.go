// Package table holds the in-memory data model anonygo operates on: a
// small tagged-variant cell type and an ordered table of records with a
// stable row index, per the Design Notes on dynamic cell types.
package table

import (
	"fmt"
	"strconv"
)

// Kind tags the dynamic type carried by a Cell.
type Kind int

const (
	KindStr Kind = iota
	KindInt
	KindFloat
)

// Cell is a single value in a row. Only one of the fields is
// meaningful, selected by Kind.
type Cell struct {
	Kind  Kind
	Str   string
	Int   int64
	Float float64
}

// String returns the cell's value rendered as a string, which is the only
// representation the generalization hierarchies and equivalence-class
// index need to compare against.
func (c Cell) String() string {
	switch c.Kind {
	case KindInt:
		return strconv.FormatInt(c.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(c.Float, 'g', -1, 64)
	default:
		return c.Str
	}
}

// StrCell builds a string-kind cell.
func StrCell(s string) Cell { return Cell{Kind: KindStr, Str: s} }

// InferCell parses a raw string into the narrowest Kind it fits:
// integer, then float, falling back to string. This mirrors the way a
// dataframe infers a column's dtype from its values.
func InferCell(raw string) Cell {
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return Cell{Kind: KindInt, Int: i, Str: raw}
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return Cell{Kind: KindFloat, Float: f, Str: raw}
	}
	return Cell{Kind: KindStr, Str: raw}
}

// Record is one row: an ordered set of cells aligned with Table.Columns,
// plus the stable index assigned at load time.
type Record struct {
	RowIndex int
	Cells    []Cell
}

// Table is an ordered sequence of records over named, unique columns.
type Table struct {
	Columns []string
	Records []Record

	colPos map[string]int
}

// New builds an empty table over the given columns.
func New(columns []string) *Table {
	t := &Table{Columns: append([]string(nil), columns...)}
	t.indexColumns()
	return t
}

func (t *Table) indexColumns() {
	t.colPos = make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		t.colPos[c] = i
	}
}

// HasColumn reports whether name is a column of t.
func (t *Table) HasColumn(name string) bool {
	if t.colPos == nil {
		t.indexColumns()
	}
	_, ok := t.colPos[name]
	return ok
}

// ColumnIndex returns the position of name among t.Columns.
func (t *Table) ColumnIndex(name string) (int, bool) {
	if t.colPos == nil {
		t.indexColumns()
	}
	i, ok := t.colPos[name]
	return i, ok
}

// AddRecord appends a row, assigning it the next stable row index.
func (t *Table) AddRecord(cells []Cell) {
	t.Records = append(t.Records, Record{RowIndex: len(t.Records), Cells: cells})
}

// Column returns the string values of a column across all remaining
// rows, in row order. Used by hierarchy inference and the
// equivalence-class index, which both operate on string labels.
func (t *Table) Column(name string) ([]string, error) {
	pos, ok := t.ColumnIndex(name)
	if !ok {
		return nil, fmt.Errorf("column %q not found: %w", name, ErrUnknownColumn)
	}
	out := make([]string, len(t.Records))
	for i, r := range t.Records {
		out[i] = r.Cells[pos].String()
	}
	return out, nil
}

// SetColumn overwrites a column's values in place. Each new cell's Kind
// is inferred from its new value with InferCell; the previous Kind is
// not consulted (a generalized label such as "0213*" becomes a string
// cell, a numeric one an int or float cell).
func (t *Table) SetColumn(name string, values []string) error {
	pos, ok := t.ColumnIndex(name)
	if !ok {
		return fmt.Errorf("column %q not found: %w", name, ErrUnknownColumn)
	}
	if len(values) != len(t.Records) {
		return fmt.Errorf("table: column %q length %d does not match row count %d", name, len(values), len(t.Records))
	}
	for i := range t.Records {
		t.Records[i].Cells[pos] = InferCell(values[i])
	}
	return nil
}

// Clone makes a deep, independent copy so the engine can mutate freely
// without touching the caller's table (spec §5 memory policy).
func (t *Table) Clone() *Table {
	clone := &Table{Columns: append([]string(nil), t.Columns...)}
	clone.Records = make([]Record, len(t.Records))
	for i, r := range t.Records {
		clone.Records[i] = Record{RowIndex: r.RowIndex, Cells: append([]Cell(nil), r.Cells...)}
	}
	clone.indexColumns()
	return clone
}

// SelectRows returns a new table keeping only the given row indices
// (positions into t.Records, not RowIndex values), preserving order and
// RowIndex identity for debuggability (spec §3 lifecycle note).
func (t *Table) SelectRows(keep []int) *Table {
	out := &Table{Columns: append([]string(nil), t.Columns...)}
	out.Records = make([]Record, len(keep))
	for i, pos := range keep {
		out.Records[i] = t.Records[pos]
	}
	out.indexColumns()
	return out
}

// ErrUnknownColumn is wrapped by Column/SetColumn when a column name
// isn't present in the table; engine-level callers translate it into
// anonerr.UnknownColumn.
var ErrUnknownColumn = fmt.Errorf("unknown column")
