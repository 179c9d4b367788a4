package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

var errDuplicate = errors.New("duplicate key value violates unique constraint")

// fakeDB is an in-memory Database. The first column of every table is its
// unique key; inserting a repeated key fails with errDuplicate.
type fakeDB struct {
	mu       sync.Mutex
	tables   map[string][]ColumnDescriptor
	rows     map[string][][]Value
	queries  []string
	acquired int
	open     int

	// execErr, when set, is consulted before every insert.
	execErr func(table string, args []Value) error
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		tables: make(map[string][]ColumnDescriptor),
		rows:   make(map[string][][]Value),
	}
}

func (db *fakeDB) addTable(name string, cols ...ColumnDescriptor) {
	db.tables[name] = cols
}

func (db *fakeDB) Acquire(context.Context) (Conn, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.acquired++
	db.open++
	return &fakeConn{db: db}, nil
}

func (db *fakeDB) Dialect() Dialect { return fakeDialect{} }

func (db *fakeDB) Classify(err error) ErrorClass {
	if errors.Is(err, errDuplicate) {
		return ClassConstraintViolation
	}
	return ClassOther
}

func (db *fakeDB) Close() {}

func (db *fakeDB) rowCount(table string) int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.rows[table])
}

type fakeDialect struct{}

func (fakeDialect) QuoteIdent(s string) string { return `"` + s + `"` }
func (fakeDialect) Placeholder(int) string     { return "?" }

type fakeConn struct {
	db     *fakeDB
	closed bool
}

func (c *fakeConn) Columns(_ context.Context, table string) ([]ColumnDescriptor, error) {
	return c.db.tables[table], nil
}

func (c *fakeConn) Prepare(_ context.Context, query string) (Statement, error) {
	c.db.mu.Lock()
	c.db.queries = append(c.db.queries, query)
	c.db.mu.Unlock()

	rest, ok := strings.CutPrefix(query, `INSERT INTO "`)
	if !ok {
		return nil, fmt.Errorf("unexpected statement %q", query)
	}
	table, _, _ := strings.Cut(rest, `"`)
	return &fakeStmt{db: c.db, table: table}, nil
}

func (c *fakeConn) Close() error {
	if !c.closed {
		c.closed = true
		c.db.mu.Lock()
		c.db.open--
		c.db.mu.Unlock()
	}
	return nil
}

type fakeStmt struct {
	db    *fakeDB
	table string
}

func (s *fakeStmt) Exec(_ context.Context, args []Value) error {
	if s.db.execErr != nil {
		if err := s.db.execErr(s.table, args); err != nil {
			return err
		}
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, row := range s.db.rows[s.table] {
		if row[0] == args[0] {
			return fmt.Errorf("%w: key (%s) already exists", errDuplicate, args[0])
		}
	}
	s.db.rows[s.table] = append(s.db.rows[s.table], append([]Value(nil), args...))
	return nil
}

func (s *fakeStmt) Close(context.Context) error { return nil }

// usersTable registers a two-column table keyed on id.
func usersTable(db *fakeDB, name string) {
	db.addTable(name,
		ColumnDescriptor{Name: "id", DataType: "integer"},
		ColumnDescriptor{Name: "name", Nullable: true, DataType: "character varying"},
	)
}

// writeFile creates name under dir with content and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// recordingObserver captures notifications in order.
type recordingObserver struct {
	events []string
}

func (o *recordingObserver) FileStarted(fileName, table string) {
	o.events = append(o.events, "start "+fileName+" "+table)
}

func (o *recordingObserver) RecordSkipped(fileName string, rec SkippedRecord) {
	o.events = append(o.events, fmt.Sprintf("skip %s %d", fileName, rec.RecordIndex))
}

func (o *recordingObserver) FileFinished(result LoadResult) {
	o.events = append(o.events, fmt.Sprintf("finish %s %d/%d", result.FileName, result.InsertedRecords, result.TotalRecords))
}
