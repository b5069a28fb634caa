// Package csvsource loads a table.Table from a CSV file: the header row
// names the columns, every following row becomes a record.
package csvsource

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/veraclabs/anonygo/internal/table"
)

// Load reads a CSV file from path into a table.Table.
func Load(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csvsource: opening %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a CSV table from an arbitrary reader, so callers already
// holding the bytes (embedded fixtures, HTTP bodies) don't need a
// filesystem round-trip.
func Parse(r io.Reader) (*table.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("csvsource: empty input, expected a header row")
	}
	if err != nil {
		return nil, fmt.Errorf("csvsource: reading header: %w", err)
	}

	t := table.New(header)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csvsource: reading row: %w", err)
		}
		cells := make([]table.Cell, len(header))
		for i := range header {
			var raw string
			if i < len(row) {
				raw = row[i]
			}
			cells[i] = table.InferCell(raw)
		}
		t.AddRecord(cells)
	}
	return t, nil
}

// Write renders t back to CSV, headers first, in column and row order —
// the inverse of Load, used to hand an anonymized table to a caller that
// wants a plain file rather than the in-memory type.
func Write(w io.Writer, t *table.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("csvsource: writing header: %w", err)
	}
	row := make([]string, len(t.Columns))
	for _, rec := range t.Records {
		for i, cell := range rec.Cells {
			row[i] = cell.String()
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("csvsource: writing row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
