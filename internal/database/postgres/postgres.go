// Package postgres implements the import engine's database boundary on pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/csv2db/internal/config"
	"github.com/JonMunkholm/csv2db/internal/core"
)

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// columnsQuery lists a table's columns in the session's current schema.
// Casts keep the information_schema domain types scannable into Go scalars.
const columnsQuery = `
	SELECT
		column_name::text,
		is_nullable::text = 'YES',
		data_type::text,
		character_maximum_length::int
	FROM information_schema.columns
	WHERE table_schema = current_schema()
	  AND table_name = $1
	ORDER BY ordinal_position`

var _ core.Database = (*DB)(nil)

// DB is a pgx connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// Open creates a pool from cfg and verifies it with a ping.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MaxConns = int32(cfg.MaxConns)
	poolCfg.MinConns = int32(cfg.MinConns)
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	if cfg.Schema != "" {
		poolCfg.ConnConfig.RuntimeParams["search_path"] = cfg.Schema
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return New(pool), nil
}

// New wraps an existing pool.
func New(pool *pgxpool.Pool) *DB {
	return &DB{pool: pool}
}

// Pool exposes the underlying pool for health checks.
func (db *DB) Pool() *pgxpool.Pool { return db.pool }

func (db *DB) Acquire(ctx context.Context) (core.Conn, error) {
	c, err := db.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return &conn{c: c}, nil
}

func (db *DB) Dialect() core.Dialect { return Dialect{} }

// Classify reports unique and primary key violations as constraint violations.
func (db *DB) Classify(err error) core.ErrorClass {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return core.ClassConstraintViolation
	}
	return core.ClassOther
}

func (db *DB) Close() { db.pool.Close() }

// Dialect renders PostgreSQL identifiers and positional parameters.
type Dialect struct{}

func (Dialect) QuoteIdent(name string) string { return pgx.Identifier{name}.Sanitize() }
func (Dialect) Placeholder(n int) string      { return "$" + strconv.Itoa(n) }

type conn struct {
	c *pgxpool.Conn
}

func (c *conn) Columns(ctx context.Context, table string) ([]core.ColumnDescriptor, error) {
	rows, err := c.c.Query(ctx, columnsQuery, table)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.ColumnDescriptor, error) {
		var (
			col    core.ColumnDescriptor
			maxLen *int
		)
		if err := row.Scan(&col.Name, &col.Nullable, &col.DataType, &maxLen); err != nil {
			return core.ColumnDescriptor{}, err
		}
		col.MaxLength = maxLen
		return col, nil
	})
}

// stmtSeq names prepared statements uniquely per process.
var stmtSeq atomic.Uint64

func (c *conn) Prepare(ctx context.Context, query string) (core.Statement, error) {
	name := "csv2db_insert_" + strconv.FormatUint(stmtSeq.Add(1), 10)
	if _, err := c.c.Conn().Prepare(ctx, name, query); err != nil {
		return nil, err
	}
	return &statement{conn: c.c.Conn(), name: name}, nil
}

func (c *conn) Close() error {
	c.c.Release()
	return nil
}

type statement struct {
	conn *pgx.Conn
	name string
}

func (s *statement) Exec(ctx context.Context, args []core.Value) error {
	_, err := s.conn.Exec(ctx, s.name, bindAll(args)...)
	return err
}

func (s *statement) Close(ctx context.Context) error {
	return s.conn.Deallocate(ctx, s.name)
}
