package engine

import (
	"strings"
	"testing"

	"github.com/veraclabs/anonygo/internal/hierarchy"
	"github.com/veraclabs/anonygo/internal/table"
)

// hospitalTable is a 13-row patient table with a direct identifier
// (name), three quasi-identifiers (age, gender, city) and a sensitive
// disease column. Ages sit in two decades so the 3-level age ladder
// (raw, 5-year bands, 10-year bands) reaches k=2 without touching
// gender or city.
func hospitalTable() *table.Table {
	tbl := table.New([]string{"name", "age", "gender", "city", "disease"})
	rows := [][5]string{
		{"ada", "13", "m", "boston", "flu"},
		{"ben", "14", "m", "boston", "cold"},
		{"cara", "16", "f", "cambridge", "flu"},
		{"dan", "18", "f", "cambridge", "flu"},
		{"eve", "24", "m", "boston", "cancer"},
		{"finn", "26", "m", "boston", "cancer"},
		{"gail", "22", "f", "cambridge", "cold"},
		{"hugo", "29", "f", "cambridge", "cancer"},
		{"iris", "21", "m", "somerville", "flu"},
		{"jack", "22", "m", "somerville", "cold"},
		{"kate", "27", "m", "somerville", "flu"},
		{"liam", "17", "f", "somerville", "cold"},
		{"mia", "19", "f", "somerville", "cold"},
	}
	for _, r := range rows {
		tbl.AddRecord([]table.Cell{
			table.StrCell(r[0]), table.InferCell(r[1]), table.StrCell(r[2]),
			table.StrCell(r[3]), table.StrCell(r[4]),
		})
	}
	return tbl
}

func hospitalHierarchies(t *testing.T) hierarchy.Store {
	age, err := hierarchy.Parse(strings.NewReader(
		`13,"[10,15[","[10,20["
14,"[10,15[","[10,20["
16,"[15,20[","[10,20["
17,"[15,20[","[10,20["
18,"[15,20[","[10,20["
19,"[15,20[","[10,20["
21,"[20,25[","[20,30["
22,"[20,25[","[20,30["
24,"[20,25[","[20,30["
26,"[25,30[","[20,30["
27,"[25,30[","[20,30["
29,"[25,30[","[20,30["
`))
	if err != nil {
		t.Fatalf("parsing age hierarchy: %v", err)
	}
	gender, err := hierarchy.Parse(strings.NewReader("m,*\nf,*\n"))
	if err != nil {
		t.Fatalf("parsing gender hierarchy: %v", err)
	}
	city, err := hierarchy.Parse(strings.NewReader("boston,*\ncambridge,*\nsomerville,*\n"))
	if err != nil {
		t.Fatalf("parsing city hierarchy: %v", err)
	}
	return hierarchy.Store{"age": age, "gender": gender, "city": city}
}

func hospitalParams(store hierarchy.Store) Params {
	return Params{
		Identifiers:        []string{"name"},
		QuasiIdentifiers:   []string{"age", "gender", "city"},
		SensitiveAttribute: "disease",
		SuppLevel:          0,
		Hierarchies:        store,
	}
}

func assertColumn(t *testing.T, tbl *table.Table, name string, allowed map[string]bool) {
	t.Helper()
	values, err := tbl.Column(name)
	if err != nil {
		t.Fatalf("Column(%s): %v", name, err)
	}
	for i, v := range values {
		if !allowed[v] {
			t.Errorf("row %d: column %q holds %q, not among %v", i, name, v, allowed)
		}
	}
}

// TestHospital_KAnonymity generalizes only the age column: with k=2 and
// no suppression allowed, the driver lifts age to 10-year bands and the
// partition over (age, gender, city) then has no class smaller than 2,
// so gender and city keep their raw values and no rows are dropped.
func TestHospital_KAnonymity(t *testing.T) {
	data := hospitalTable()
	store := hospitalHierarchies(t)

	result, err := KAnonymity(data, KRequest{Params: hospitalParams(store), K: 2})
	if err != nil {
		t.Fatalf("KAnonymity: %v", err)
	}
	if result.FinalState != StateDoneOK {
		t.Fatalf("FinalState = %v, want StateDoneOK", result.FinalState)
	}
	if len(result.Table.Records) != 13 {
		t.Fatalf("expected all 13 rows retained, got %d", len(result.Table.Records))
	}
	if result.SuppressedCount != 0 {
		t.Errorf("SuppressedCount = %d, want 0", result.SuppressedCount)
	}

	assertColumn(t, result.Table, "name", map[string]bool{"*": true})
	assertColumn(t, result.Table, "age", map[string]bool{"[10,20[": true, "[20,30[": true})
	assertColumn(t, result.Table, "gender", map[string]bool{"m": true, "f": true})
	assertColumn(t, result.Table, "city", map[string]bool{"boston": true, "cambridge": true, "somerville": true})

	want := map[string]int{"age": 2, "gender": 0, "city": 0}
	for qi, lvl := range want {
		if result.GenLevel[qi] != lvl {
			t.Errorf("GenLevel[%s] = %d, want %d", qi, result.GenLevel[qi], lvl)
		}
	}
}

// TestHospital_LDiversity starts from the k-anonymous state above and
// continues: with supp_level=0 the violating classes can't be dropped,
// so the driver collapses city (the highest-cardinality remaining QI)
// to "*", after which every class holds at least 2 distinct diseases.
func TestHospital_LDiversity(t *testing.T) {
	data := hospitalTable()
	store := hospitalHierarchies(t)

	result, err := LDiversity(data, LDiversityRequest{Params: hospitalParams(store), K: 2, L: 2})
	if err != nil {
		t.Fatalf("LDiversity: %v", err)
	}
	if result.FinalState != StateDoneOK {
		t.Fatalf("FinalState = %v, want StateDoneOK", result.FinalState)
	}
	if len(result.Table.Records) != 13 {
		t.Fatalf("expected all 13 rows retained, got %d", len(result.Table.Records))
	}

	assertColumn(t, result.Table, "age", map[string]bool{"[10,20[": true, "[20,30[": true})
	assertColumn(t, result.Table, "gender", map[string]bool{"m": true, "f": true})
	assertColumn(t, result.Table, "city", map[string]bool{"*": true})

	want := map[string]int{"age": 2, "gender": 0, "city": 1}
	for qi, lvl := range want {
		if result.GenLevel[qi] != lvl {
			t.Errorf("GenLevel[%s] = %d, want %d", qi, result.GenLevel[qi], lvl)
		}
	}
}

// TestHospital_Determinism runs the same request twice against fresh
// copies of the same input and compares the outputs cell for cell.
func TestHospital_Determinism(t *testing.T) {
	store := hospitalHierarchies(t)

	first, err := LDiversity(hospitalTable(), LDiversityRequest{Params: hospitalParams(store), K: 2, L: 2})
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := LDiversity(hospitalTable(), LDiversityRequest{Params: hospitalParams(store), K: 2, L: 2})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if len(first.Table.Records) != len(second.Table.Records) {
		t.Fatalf("row counts differ: %d vs %d", len(first.Table.Records), len(second.Table.Records))
	}
	for i := range first.Table.Records {
		for j := range first.Table.Records[i].Cells {
			a := first.Table.Records[i].Cells[j].String()
			b := second.Table.Records[i].Cells[j].String()
			if a != b {
				t.Errorf("row %d column %s differs between runs: %q vs %q", i, first.Table.Columns[j], a, b)
			}
		}
	}
}

// TestHospital_CallerTableUntouched checks the engine works on an owned
// copy: after a full run, the caller's table still holds raw names,
// ages and cities.
func TestHospital_CallerTableUntouched(t *testing.T) {
	data := hospitalTable()
	store := hospitalHierarchies(t)

	if _, err := KAnonymity(data, KRequest{Params: hospitalParams(store), K: 2}); err != nil {
		t.Fatalf("KAnonymity: %v", err)
	}

	names, _ := data.Column("name")
	if names[0] != "ada" {
		t.Errorf("caller's identifier column was mutated: %v", names[0])
	}
	ages, _ := data.Column("age")
	if ages[0] != "13" {
		t.Errorf("caller's age column was mutated: %v", ages[0])
	}
}
