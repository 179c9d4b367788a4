// Package sqlite implements the import engine's database boundary on the
// pure-Go modernc.org/sqlite driver.
//
// SQLite declares column types freely, so catalog types are normalised to
// the names the converter dispatches on (integer, timestamp without time
// zone, ...) before they reach the engine.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/JonMunkholm/csv2db/internal/config"
	"github.com/JonMunkholm/csv2db/internal/core"
)

const driverName = "sqlite"

// columnsQuery lists a table's columns in declaration order.
const columnsQuery = `SELECT name, "notnull", type FROM pragma_table_info(?) ORDER BY cid`

// connPragmas are applied to every pooled connection.
var connPragmas = []string{
	"foreign_keys(1)",
	"busy_timeout(5000)",
}

var _ core.Database = (*DB)(nil)

// DB is a database/sql pool over one SQLite file.
type DB struct {
	db *sql.DB
}

// Open opens the database named by cfg.URL: a file path or a file: URI.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	db, err := sql.Open(driverName, DSN(cfg.URL))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConns)
	db.SetMaxIdleConns(max(cfg.MinConns, 1))
	db.SetConnMaxLifetime(cfg.MaxConnLifetime)
	db.SetConnMaxIdleTime(cfg.MaxConnIdleTime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{db: db}, nil
}

// DSN appends the per-connection pragmas to url, keeping any query it has.
func DSN(url string) string {
	url = strings.TrimPrefix(url, "sqlite://")

	params := make([]string, len(connPragmas))
	for i, p := range connPragmas {
		params[i] = "_pragma=" + p
	}

	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + strings.Join(params, "&")
}

// SQL exposes the underlying pool.
func (d *DB) SQL() *sql.DB { return d.db }

func (d *DB) Acquire(ctx context.Context) (core.Conn, error) {
	c, err := d.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	return &conn{c: c}, nil
}

func (d *DB) Dialect() core.Dialect { return Dialect{} }

// Classify reports UNIQUE and PRIMARY KEY failures as constraint violations.
// Other constraint kinds (NOT NULL, CHECK, FOREIGN KEY) stay fatal.
func (d *DB) Classify(err error) core.ErrorClass {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return core.ClassOther
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return core.ClassConstraintViolation
	case sqlite3.SQLITE_CONSTRAINT:
		// Primary code only: fall back to the message.
		if strings.Contains(se.Error(), "UNIQUE constraint failed") {
			return core.ClassConstraintViolation
		}
	}
	return core.ClassOther
}

func (d *DB) Close() { d.db.Close() }

// Dialect renders SQLite identifiers and positional parameters.
type Dialect struct{}

func (Dialect) QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (Dialect) Placeholder(int) string { return "?" }

type conn struct {
	c *sql.Conn
}

func (c *conn) Columns(ctx context.Context, table string) ([]core.ColumnDescriptor, error) {
	rows, err := c.c.QueryContext(ctx, columnsQuery, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []core.ColumnDescriptor
	for rows.Next() {
		var (
			name     string
			notNull  int
			declared string
		)
		if err := rows.Scan(&name, &notNull, &declared); err != nil {
			return nil, err
		}
		dataType, maxLen := NormalizeType(declared)
		cols = append(cols, core.ColumnDescriptor{
			Name:      name,
			Nullable:  notNull == 0,
			DataType:  dataType,
			MaxLength: maxLen,
		})
	}
	return cols, rows.Err()
}

func (c *conn) Prepare(ctx context.Context, query string) (core.Statement, error) {
	st, err := c.c.PrepareContext(ctx, query)
	if err != nil {
		return nil, err
	}
	return &statement{st: st}, nil
}

func (c *conn) Close() error { return c.c.Close() }

type statement struct {
	st *sql.Stmt
}

func (s *statement) Exec(ctx context.Context, args []core.Value) error {
	_, err := s.st.ExecContext(ctx, bindAll(args)...)
	return err
}

func (s *statement) Close(context.Context) error { return s.st.Close() }
