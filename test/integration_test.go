//go:build integration

package test

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/veraclabs/anonygo/internal/engine"
	"github.com/veraclabs/anonygo/internal/source/mysqlsource"
)

/*
Integration tests for anonygo against a real MySQL instance.

To run these tests:
1. Start a test database: docker-compose -f docker-compose.test.yml up -d
2. Wait for healthy: docker-compose -f docker-compose.test.yml ps
3. Run tests: go test -tags=integration ./test
4. Cleanup: docker-compose -f docker-compose.test.yml down -v

Environment variables:
- ANONYGO_TEST_DSN: DSN for the test MySQL instance (default below)
- ANONYGO_TEST_DATABASE/ANONYGO_TEST_TABLE: the patients-shaped fixture
  table to anonymize (zip, age, disease columns, seeded by the compose
  file's init SQL)
*/

func getTestDSN() string {
	if dsn := os.Getenv("ANONYGO_TEST_DSN"); dsn != "" {
		return dsn
	}
	return "anonygo:test_password@tcp(localhost:13306)/anonygo_test"
}

func waitForMySQL(dsn string, maxAttempts int) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		db, err := sql.Open("mysql", dsn)
		if err != nil {
			lastErr = err
			time.Sleep(time.Second)
			continue
		}
		err = db.Ping()
		db.Close()
		if err == nil {
			return nil
		}
		lastErr = err
		time.Sleep(time.Second)
	}
	return lastErr
}

func testDatabase() string {
	if db := os.Getenv("ANONYGO_TEST_DATABASE"); db != "" {
		return db
	}
	return "anonygo_test"
}

func testTable() string {
	if tbl := os.Getenv("ANONYGO_TEST_TABLE"); tbl != "" {
		return tbl
	}
	return "patients"
}

func TestIntegration_KAnonymityAgainstLiveMySQL(t *testing.T) {
	dsn := getTestDSN()
	if err := waitForMySQL(dsn, 10); err != nil {
		t.Skipf("no reachable MySQL test instance at %s: %v", dsn, err)
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	defer db.Close()

	data, err := mysqlsource.LoadTable(context.Background(), db, testDatabase(), testTable())
	if err != nil {
		t.Fatalf("LoadTable: %v", err)
	}
	if len(data.Records) == 0 {
		t.Skip("fixture table is empty; seed it via the test compose file's init SQL")
	}

	result, err := engine.KAnonymity(data, engine.KRequest{
		Params: engine.Params{
			QuasiIdentifiers: []string{"zip", "age"},
			SuppLevel:        20,
		},
		K: 2,
	})
	if err != nil {
		t.Fatalf("KAnonymity: %v", err)
	}
	if result.FinalState == engine.StateDoneOK {
		for qi, lvl := range result.GenLevel {
			if lvl < 0 {
				t.Errorf("unexpected negative generalization level for %q: %d", qi, lvl)
			}
		}
	}
}

func TestIntegration_LoadQuery_ArbitrarySelect(t *testing.T) {
	dsn := getTestDSN()
	if err := waitForMySQL(dsn, 10); err != nil {
		t.Skipf("no reachable MySQL test instance at %s: %v", dsn, err)
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	defer db.Close()

	data, err := mysqlsource.LoadQuery(context.Background(), db, "SELECT zip, age, disease FROM "+testTable()+" LIMIT 50")
	if err != nil {
		t.Fatalf("LoadQuery: %v", err)
	}
	if !data.HasColumn("zip") || !data.HasColumn("age") || !data.HasColumn("disease") {
		t.Errorf("expected zip/age/disease columns, got %v", data.Columns)
	}
}
