package core

import (
	"context"
	"strings"
)

// ColumnDescriptor describes one column as reported by the database catalog.
type ColumnDescriptor struct {
	Name      string `json:"name"`
	Nullable  bool   `json:"nullable"`
	DataType  string `json:"dataType"`
	MaxLength *int   `json:"maxLength,omitempty"`
}

// TableSchema identifies a table and its columns in catalog order.
// A schema with zero columns is never returned; lookups fail with TableNotFoundError.
type TableSchema struct {
	Name    string             `json:"name"`
	Columns []ColumnDescriptor `json:"columns"`
}

// ColumnType is the conversion-relevant view of a catalog column.
type ColumnType struct {
	Column   string // Column name as stored in the catalog (used for quoting)
	DataType string // Lower-cased declared type
}

// ColumnTypeIndex maps lower-cased column names to their declared types.
type ColumnTypeIndex map[string]ColumnType

// TypeIndex builds the ColumnTypeIndex for the schema.
func (s TableSchema) TypeIndex() ColumnTypeIndex {
	idx := make(ColumnTypeIndex, len(s.Columns))
	for _, c := range s.Columns {
		idx[strings.ToLower(c.Name)] = ColumnType{
			Column:   c.Name,
			DataType: strings.ToLower(c.DataType),
		}
	}
	return idx
}

// Lookup resolves a CSV header against the index, ignoring case.
func (idx ColumnTypeIndex) Lookup(header string) (ColumnType, bool) {
	ct, ok := idx[strings.ToLower(header)]
	return ct, ok
}

// SkippedRecord is a data row rejected by a constraint violation.
type SkippedRecord struct {
	RecordIndex int    `json:"recordIndex"` // 1-based, data rows only
	Message     string `json:"message"`
}

// LoadResult summarises the load of one input file.
type LoadResult struct {
	FileName        string          `json:"fileName"`
	TotalRecords    int             `json:"totalRecords"`
	InsertedRecords int             `json:"insertedRecords"`
	SkippedRecords  []SkippedRecord `json:"skippedRecords"`
}

// ErrorClass is the outcome of classifying a failed insert.
type ErrorClass int

const (
	ClassOther ErrorClass = iota
	ClassConstraintViolation
)

func (c ErrorClass) String() string {
	if c == ClassConstraintViolation {
		return "constraint_violation"
	}
	return "other"
}

// Dialect renders vendor-specific SQL fragments.
type Dialect interface {
	QuoteIdent(name string) string
	Placeholder(n int) string // n is 1-based
}

// Database is the connection provider the engine loads through.
// Implementations live under internal/database.
type Database interface {
	// Acquire returns a dedicated connection scoped to the current schema.
	Acquire(ctx context.Context) (Conn, error)
	Dialect() Dialect
	// Classify reports whether an insert error is a recoverable constraint violation.
	Classify(err error) ErrorClass
	Close()
}

// Conn is a single dedicated database connection.
type Conn interface {
	// Columns returns the catalog columns of table in the current schema.
	// An unknown table yields an empty slice, not an error.
	Columns(ctx context.Context, table string) ([]ColumnDescriptor, error)
	Prepare(ctx context.Context, query string) (Statement, error)
	Close() error
}

// Statement is a prepared INSERT reused for every row of a file.
type Statement interface {
	Exec(ctx context.Context, args []Value) error
	Close(ctx context.Context) error
}
