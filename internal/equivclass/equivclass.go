// Package equivclass partitions a table's rows into equivalence
// classes by their quasi-identifier tuple, per spec §4.3. The index is
// always built fresh against the current table; nothing here survives
// a structural change to the table it was built from.
package equivclass

import (
	"strings"

	"github.com/veraclabs/anonygo/internal/table"
)

// Class is one equivalence class: the positions (into Table.Records,
// not RowIndex) of every row sharing one QI tuple.
type Class struct {
	Rows []int
}

// Size is the class's cardinality.
func (c *Class) Size() int { return len(c.Rows) }

// SensCounts returns the multiset of sensitive-attribute values across
// the class's rows, keyed by their string representation.
func (c *Class) SensCounts(t *table.Table, sensAtt string) map[string]int {
	counts := make(map[string]int)
	pos, ok := t.ColumnIndex(sensAtt)
	if !ok {
		return counts
	}
	for _, row := range c.Rows {
		v := t.Records[row].Cells[pos].String()
		counts[v]++
	}
	return counts
}

// Index is the partition of a table's rows by QI tuple.
type Index struct {
	classes []*Class
}

// Classes returns every equivalence class in the index. Iteration
// order is stable across calls for the same Build input but carries no
// guarantee beyond that — spec §4.3 only requires determinism where the
// driver's behavior depends on it, which is handled by the driver's own
// tie-break rule, not by class order.
func (idx *Index) Classes() []*Class { return idx.classes }

// Build groups t's rows by the tuple of their QI columns' string
// values, in a single pass.
func Build(t *table.Table, qis []string) *Index {
	positions := make([]int, 0, len(qis))
	for _, qi := range qis {
		if pos, ok := t.ColumnIndex(qi); ok {
			positions = append(positions, pos)
		}
	}

	order := make([]string, 0, len(t.Records))
	buckets := make(map[string][]int)
	for i, rec := range t.Records {
		key := tupleKey(rec.Cells, positions)
		if _, seen := buckets[key]; !seen {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], i)
	}

	classes := make([]*Class, 0, len(order))
	for _, key := range order {
		classes = append(classes, &Class{Rows: buckets[key]})
	}
	return &Index{classes: classes}
}

func tupleKey(cells []table.Cell, positions []int) string {
	var sb strings.Builder
	for _, p := range positions {
		sb.WriteString(cells[p].String())
		sb.WriteByte(0x1f) // unit separator, unlikely in QI data
	}
	return sb.String()
}

// MinSize returns the smallest class size in the index, and whether the
// index has any class at all.
func (idx *Index) MinSize() (int, bool) {
	if len(idx.classes) == 0 {
		return 0, false
	}
	min := idx.classes[0].Size()
	for _, c := range idx.classes[1:] {
		if c.Size() < min {
			min = c.Size()
		}
	}
	return min, true
}

// MaxSize returns the largest class size in the index, and whether the
// index has any class at all.
func (idx *Index) MaxSize() (int, bool) {
	if len(idx.classes) == 0 {
		return 0, false
	}
	max := idx.classes[0].Size()
	for _, c := range idx.classes[1:] {
		if c.Size() > max {
			max = c.Size()
		}
	}
	return max, true
}
