package equivclass

import (
	"testing"

	"github.com/veraclabs/anonygo/internal/table"
)

func buildSample() *table.Table {
	tbl := table.New([]string{"zip", "age", "disease"})
	rows := [][3]string{
		{"0213*", "2*", "flu"},
		{"0213*", "2*", "cold"},
		{"0213*", "2*", "flu"},
		{"0214*", "3*", "cancer"},
	}
	for _, r := range rows {
		tbl.AddRecord([]table.Cell{table.StrCell(r[0]), table.StrCell(r[1]), table.StrCell(r[2])})
	}
	return tbl
}

func TestBuild_PartitionsByQITuple(t *testing.T) {
	tbl := buildSample()
	idx := Build(tbl, []string{"zip", "age"})
	classes := idx.Classes()
	if len(classes) != 2 {
		t.Fatalf("expected 2 equivalence classes, got %d", len(classes))
	}

	sizes := map[int]bool{}
	for _, c := range classes {
		sizes[c.Size()] = true
	}
	if !sizes[3] || !sizes[1] {
		t.Errorf("expected class sizes {3,1}, got sizes present: %v", sizes)
	}
}

func TestClass_SensCounts(t *testing.T) {
	tbl := buildSample()
	idx := Build(tbl, []string{"zip", "age"})
	for _, c := range idx.Classes() {
		if c.Size() == 3 {
			counts := c.SensCounts(tbl, "disease")
			if counts["flu"] != 2 || counts["cold"] != 1 {
				t.Errorf("SensCounts = %v, want flu:2 cold:1", counts)
			}
		}
	}
}

func TestIndex_MinMaxSize(t *testing.T) {
	tbl := buildSample()
	idx := Build(tbl, []string{"zip", "age"})

	min, ok := idx.MinSize()
	if !ok || min != 1 {
		t.Errorf("MinSize() = (%d, %v), want (1, true)", min, ok)
	}
	max, ok := idx.MaxSize()
	if !ok || max != 3 {
		t.Errorf("MaxSize() = (%d, %v), want (3, true)", max, ok)
	}
}

func TestIndex_EmptyTable(t *testing.T) {
	tbl := table.New([]string{"zip"})
	idx := Build(tbl, []string{"zip"})
	if _, ok := idx.MinSize(); ok {
		t.Error("expected MinSize to report false for an empty table")
	}
}

func TestClass_SensCounts_UnknownColumn(t *testing.T) {
	tbl := buildSample()
	idx := Build(tbl, []string{"zip"})
	counts := idx.Classes()[0].SensCounts(tbl, "missing")
	if len(counts) != 0 {
		t.Errorf("expected empty counts for an unknown sensitive column, got %v", counts)
	}
}
