package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver
)

// SQL drivers supported by SQLSource
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var kvPasswordPattern = regexp.MustCompile(`(?i)(password\s*=\s*)('[^']*'|\S+)`)

// SQLSource streams the rows of a query from a managed database.
// Each row becomes a record keyed by column name.
type SQLSource struct {
	Driver  string `json:"driver"`            // postgres or sqlite
	DSN     string `json:"dsn"`               // connection string or sqlite file path
	Query   string `json:"query"`
	Version string `json:"version,omitempty"` // optional version pin of the underlying table/snapshot
}

// SourceType returns "sql"
func (s *SQLSource) SourceType() string {
	return TypeSQL
}

// ToDict returns the identity-bearing configuration with credentials removed
func (s *SQLSource) ToDict() map[string]any {
	d := map[string]any{
		"driver": s.Driver,
		"dsn":    RedactDSN(s.DSN),
		"query":  strings.TrimSpace(s.Query),
	}
	if s.Version != "" {
		d["version"] = s.Version
	}
	return d
}

// Load connects and starts the query; rows are pulled as the handle is advanced.
func (s *SQLSource) Load(ctx context.Context) (Handle, error) {
	if s.Query == "" {
		return nil, fmt.Errorf("sql source query is empty")
	}

	switch s.Driver {
	case DriverPostgres:
		return s.loadPostgres(ctx)
	case DriverSQLite:
		return s.loadSQLite(ctx)
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", s.Driver)
	}
}

func (s *SQLSource) loadPostgres(ctx context.Context) (Handle, error) {
	conn, err := pgx.Connect(ctx, s.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	rows, err := conn.Query(ctx, s.Query)
	if err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("failed to run query: %w", err)
	}

	return &pgxHandle{conn: conn, rows: rows}, nil
}

func (s *SQLSource) loadSQLite(ctx context.Context) (Handle, error) {
	db, err := sql.Open("sqlite", s.DSN)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	rows, err := db.QueryContext(ctx, s.Query)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run query: %w", err)
	}

	columns, err := rows.Columns()
	if err != nil {
		_ = rows.Close()
		_ = db.Close()
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	return &sqlHandle{db: db, rows: rows, columns: columns}, nil
}

// RedactDSN removes passwords from URL-style and key=value connection strings
func RedactDSN(dsn string) string {
	if u, err := url.Parse(dsn); err == nil && u.Scheme != "" && u.User != nil {
		if _, hasPassword := u.User.Password(); hasPassword {
			return u.Redacted()
		}
		return dsn
	}
	return kvPasswordPattern.ReplaceAllString(dsn, "${1}xxxxx")
}

type pgxHandle struct {
	conn   *pgx.Conn
	rows   pgx.Rows
	closed bool
}

func (h *pgxHandle) Next(ctx context.Context) (Record, error) {
	if h.closed {
		return nil, io.EOF
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !h.rows.Next() {
		if err := h.rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		return nil, io.EOF
	}

	values, err := h.rows.Values()
	if err != nil {
		return nil, fmt.Errorf("failed to decode row: %w", err)
	}

	fields := h.rows.FieldDescriptions()
	rec := make(Record, len(values))
	for i, v := range values {
		rec[fields[i].Name] = v
	}
	return rec, nil
}

func (h *pgxHandle) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true
	h.rows.Close()
	return h.conn.Close(context.Background())
}

type sqlHandle struct {
	db      *sql.DB
	rows    *sql.Rows
	columns []string
	closed  bool
}

func (h *sqlHandle) Next(ctx context.Context) (Record, error) {
	if h.closed {
		return nil, io.EOF
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !h.rows.Next() {
		if err := h.rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		return nil, io.EOF
	}

	values := make([]any, len(h.columns))
	ptrs := make([]any, len(h.columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := h.rows.Scan(ptrs...); err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}

	rec := make(Record, len(values))
	for i, v := range values {
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		rec[h.columns[i]] = v
	}
	return rec, nil
}

func (h *sqlHandle) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true
	_ = h.rows.Close()
	return h.db.Close()
}
