// Package mysqlsource loads a table.Table from a live MySQL query,
// adapted from the connection-handling idiom of the project's other
// MySQL tooling: build a DSN, open and ping a pooled *sql.DB, then scan
// an arbitrary result set into the table model.
package mysqlsource

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"database/sql"
	"fmt"
	"os"
	"syscall"

	mysqldriver "github.com/go-sql-driver/mysql"
	"golang.org/x/term"

	"github.com/veraclabs/anonygo/internal/table"
)

// ConnectionConfig holds MySQL connection parameters.
type ConnectionConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	Socket   string
	TLSMode  string // "", "disabled", "preferred", "required", "skip-verify", "custom"
	TLSCA    string // path to CA certificate file (required when TLSMode == "custom")
}

// Connect establishes a MySQL connection sized for a short-lived CLI
// invocation: one query, one anonymization run, then exit.
func Connect(cfg ConnectionConfig) (*sql.DB, error) {
	if cfg.TLSMode == "custom" {
		if cfg.TLSCA == "" {
			return nil, fmt.Errorf("a CA certificate path (TLSCA) is required when TLSMode is custom")
		}
		if err := registerCustomTLS(cfg.TLSCA); err != nil {
			return nil, fmt.Errorf("TLS setup failed: %w", err)
		}
	}

	dsn, err := buildDSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open connection: %w", err)
	}

	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping: %w", err)
	}

	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)

	return db, nil
}

func registerCustomTLS(caPath string) error {
	pem, err := os.ReadFile(caPath)
	if err != nil {
		return fmt.Errorf("reading CA certificate %q: %w", caPath, err)
	}

	rootCAs := x509.NewCertPool()
	if !rootCAs.AppendCertsFromPEM(pem) {
		return fmt.Errorf("no valid certificates found in %q", caPath)
	}

	return mysqldriver.RegisterTLSConfig("anonygo-custom", &tls.Config{
		RootCAs: rootCAs,
	})
}

func buildDSN(cfg ConnectionConfig) (string, error) {
	switch cfg.TLSMode {
	case "", "disabled", "preferred", "required", "skip-verify", "custom":
	default:
		return "", fmt.Errorf("invalid TLS mode %q: valid values are disabled, preferred, required, skip-verify, custom", cfg.TLSMode)
	}

	var addr string
	if cfg.Socket != "" {
		addr = fmt.Sprintf("unix(%s)", cfg.Socket)
	} else {
		addr = fmt.Sprintf("tcp(%s:%d)", cfg.Host, cfg.Port)
	}

	db := cfg.Database
	if db == "" {
		return "", fmt.Errorf("database name is required")
	}

	dsn := fmt.Sprintf("%s:%s@%s/%s?parseTime=true&interpolateParams=true",
		cfg.User, cfg.Password, addr, db)

	switch cfg.TLSMode {
	case "preferred":
		dsn += "&tls=preferred"
	case "required":
		dsn += "&tls=true"
	case "skip-verify":
		dsn += "&tls=skip-verify"
	case "custom":
		dsn += "&tls=anonygo-custom"
	}

	return dsn, nil
}

// PromptPassword reads a password from the terminal without echoing it.
func PromptPassword() string {
	fmt.Print("Enter password: ")
	password, err := term.ReadPassword(syscall.Stdin)
	fmt.Println()
	if err != nil {
		return ""
	}
	return string(password)
}

// escapeIdentifier wraps a database/table identifier in backticks,
// escaping any backtick within it, to guard LoadTable's generated
// SELECT against injection through a caller-supplied table name.
func escapeIdentifier(identifier string) string {
	escaped := ""
	for _, r := range identifier {
		if r == '`' {
			escaped += "``"
			continue
		}
		escaped += string(r)
	}
	return "`" + escaped + "`"
}

// LoadQuery runs an arbitrary read-only query and scans every row into a
// table.Table. Every column is scanned as text and each cell's kind is
// inferred from that text with table.InferCell; NULL becomes an empty
// string cell.
func LoadQuery(ctx context.Context, db *sql.DB, query string, args ...any) (*table.Table, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("mysqlsource: query failed: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("mysqlsource: reading columns: %w", err)
	}

	t := table.New(cols)
	scanTargets := make([]any, len(cols))
	scanBufs := make([]sql.NullString, len(cols))
	for i := range scanBufs {
		scanTargets[i] = &scanBufs[i]
	}

	for rows.Next() {
		if err := rows.Scan(scanTargets...); err != nil {
			return nil, fmt.Errorf("mysqlsource: scanning row: %w", err)
		}
		cells := make([]table.Cell, len(cols))
		for i, buf := range scanBufs {
			if !buf.Valid {
				cells[i] = table.StrCell("")
				continue
			}
			cells[i] = table.InferCell(buf.String)
		}
		t.AddRecord(cells)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("mysqlsource: iterating rows: %w", err)
	}
	return t, nil
}

// LoadTable loads every row and column of one table via a plain SELECT *.
func LoadTable(ctx context.Context, db *sql.DB, database, tableName string) (*table.Table, error) {
	query := fmt.Sprintf("SELECT * FROM %s.%s", escapeIdentifier(database), escapeIdentifier(tableName))
	return LoadQuery(ctx, db, query)
}
