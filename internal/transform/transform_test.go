package transform

import (
	"errors"
	"strings"
	"testing"

	"github.com/veraclabs/anonygo/internal/anonerr"
	"github.com/veraclabs/anonygo/internal/hierarchy"
	"github.com/veraclabs/anonygo/internal/table"
)

func sampleTable() *table.Table {
	tbl := table.New([]string{"name", "zip"})
	tbl.AddRecord([]table.Cell{table.StrCell("alice"), table.StrCell("02138")})
	tbl.AddRecord([]table.Cell{table.StrCell("bob"), table.StrCell("02139")})
	return tbl
}

func sampleStore(t *testing.T) hierarchy.Store {
	ladder, err := hierarchy.Parse(strings.NewReader("value,level1,level2\n02138,0213*,021**\n02139,0213*,021**\n"))
	if err != nil {
		t.Fatalf("parsing fixture hierarchy: %v", err)
	}
	return hierarchy.Store{"zip": ladder}
}

func TestSuppressIdentifiers(t *testing.T) {
	tbl := sampleTable()
	if err := SuppressIdentifiers(tbl, []string{"name"}); err != nil {
		t.Fatalf("SuppressIdentifiers error: %v", err)
	}
	names, _ := tbl.Column("name")
	for _, n := range names {
		if n != "*" {
			t.Errorf("expected every identifier cell to be suppressed, got %q", n)
		}
	}
}

func TestSuppressIdentifiers_UnknownColumn(t *testing.T) {
	tbl := sampleTable()
	if err := SuppressIdentifiers(tbl, []string{"ssn"}); !errors.Is(err, anonerr.UnknownColumn) {
		t.Errorf("expected anonerr.UnknownColumn, got %v", err)
	}
}

func TestGetTransformation_NoHierarchy(t *testing.T) {
	tbl := sampleTable()
	lvls, err := GetTransformation(tbl, []string{"zip"}, hierarchy.Store{})
	if err != nil {
		t.Fatalf("GetTransformation error: %v", err)
	}
	if lvls["zip"] != 0 {
		t.Errorf("expected level 0 for a QI with no hierarchy, got %d", lvls["zip"])
	}
}

func TestGetTransformation_InfersLevel(t *testing.T) {
	tbl := sampleTable()
	store := sampleStore(t)
	tbl.SetColumn("zip", []string{"0213*", "0213*"})

	lvls, err := GetTransformation(tbl, []string{"zip"}, store)
	if err != nil {
		t.Fatalf("GetTransformation error: %v", err)
	}
	if lvls["zip"] != 1 {
		t.Errorf("GetTransformation = %d, want 1", lvls["zip"])
	}
}

func TestLiftOne(t *testing.T) {
	tbl := sampleTable()
	store := sampleStore(t)

	newLevel, err := LiftOne(tbl, "zip", store, 0)
	if err != nil {
		t.Fatalf("LiftOne error: %v", err)
	}
	if newLevel != 1 {
		t.Errorf("LiftOne returned level %d, want 1", newLevel)
	}
	values, _ := tbl.Column("zip")
	for _, v := range values {
		if v != "0213*" {
			t.Errorf("expected zip to be lifted to 0213*, got %q", v)
		}
	}
}

func TestLiftOne_LadderExhausted(t *testing.T) {
	tbl := sampleTable()
	store := sampleStore(t)
	tbl.SetColumn("zip", []string{"021**", "021**"})

	if _, err := LiftOne(tbl, "zip", store, 2); !errors.Is(err, anonerr.InvalidLevel) {
		t.Errorf("expected anonerr.InvalidLevel past the ladder top, got %v", err)
	}
}

func TestLiftOne_NoHierarchy(t *testing.T) {
	tbl := sampleTable()
	if _, err := LiftOne(tbl, "zip", hierarchy.Store{}, 0); !errors.Is(err, anonerr.InvalidLevel) {
		t.Errorf("expected anonerr.InvalidLevel for a QI with no hierarchy, got %v", err)
	}
}

func TestApplyTransformation(t *testing.T) {
	tbl := sampleTable()
	store := sampleStore(t)

	err := ApplyTransformation(tbl, []string{"zip"}, store, map[string]int{"zip": 0}, map[string]int{"zip": 2})
	if err != nil {
		t.Fatalf("ApplyTransformation error: %v", err)
	}
	values, _ := tbl.Column("zip")
	for _, v := range values {
		if v != "021**" {
			t.Errorf("expected zip generalized straight to 021**, got %q", v)
		}
	}
}
