package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DefaultDelimiter separates fields in seed files.
const DefaultDelimiter = ';'

// Loader inserts the rows of one delimited file into its table.
//
// Each row runs as its own statement on a dedicated connection; there is no
// transaction spanning rows, so rows inserted before a fatal error stay
// committed. Rows rejected by a constraint violation are recorded and skipped.
type Loader struct {
	DB        Database
	Delimiter rune
	Observer  Observer
}

// insertPlan maps header columns to record fields and catalog columns.
type insertPlan struct {
	headers []string // distinct header names, first-occurrence order
	fields  []int    // record field per header; a repeated header reads its last occurrence
	columns []string // catalog column name per header
}

// planInsert resolves the header row against the table's type index.
// Every header must name a column of the table.
func planInsert(header []string, idx ColumnTypeIndex) (insertPlan, error) {
	var plan insertPlan
	pos := make(map[string]int, len(header))

	for i, h := range header {
		if p, seen := pos[h]; seen {
			plan.fields[p] = i
			continue
		}
		ct, ok := idx.Lookup(h)
		if !ok {
			return insertPlan{}, &ColumnError{Header: h}
		}
		pos[h] = len(plan.headers)
		plan.headers = append(plan.headers, h)
		plan.fields = append(plan.fields, i)
		plan.columns = append(plan.columns, ct.Column)
	}

	return plan, nil
}

// BuildInsert renders a parameterised INSERT for columns, in order.
func BuildInsert(d Dialect, table string, columns []string) string {
	quoted := make([]string, len(columns))
	params := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = d.QuoteIdent(c)
		params[i] = d.Placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		d.QuoteIdent(table),
		strings.Join(quoted, ", "),
		strings.Join(params, ", "),
	)
}

// LoadFile loads the file at path into the table named after it.
// Any error other than a constraint violation aborts the file and is
// returned as a *LoadError; no result is produced in that case.
func (l *Loader) LoadFile(ctx context.Context, path string) (LoadResult, error) {
	fileName := filepath.Base(path)
	table := TableNameFromFile(fileName)

	fail := func(record int, err error) (LoadResult, error) {
		return LoadResult{}, &LoadError{FileName: fileName, Record: record, Err: err}
	}

	obs := l.Observer
	if obs == nil {
		obs = NopObserver{}
	}
	obs.FileStarted(fileName, table)

	conn, err := l.DB.Acquire(ctx)
	if err != nil {
		return fail(0, fmt.Errorf("acquire connection: %w", err))
	}
	defer conn.Close()

	schema, err := Inspector{}.Lookup(ctx, conn, table)
	if err != nil {
		return fail(0, err)
	}
	typeIdx := schema.TypeIndex()

	f, err := os.Open(path)
	if err != nil {
		return fail(0, err)
	}
	defer f.Close()

	delim := l.Delimiter
	if delim == 0 {
		delim = DefaultDelimiter
	}
	reader := NewRecordReader(f, delim)

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return fail(0, fmt.Errorf("%w: missing header row", ErrMalformedFile))
	}
	if err != nil {
		return fail(0, fmt.Errorf("%w: header: %w", ErrMalformedFile, err))
	}

	plan, err := planInsert(header, typeIdx)
	if err != nil {
		return fail(0, err)
	}

	stmt, err := conn.Prepare(ctx, BuildInsert(l.DB.Dialect(), schema.Name, plan.columns))
	if err != nil {
		return fail(0, fmt.Errorf("%w: prepare: %w", ErrExecution, err))
	}
	defer stmt.Close(ctx)

	results := newResultBuilder(fileName)
	args := make([]Value, len(plan.headers))

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fail(results.total+1, fmt.Errorf("%w: %w", ErrMalformedFile, err))
		}
		index := results.next()

		for i, h := range plan.headers {
			v, err := Convert(h, record[plan.fields[i]], typeIdx)
			if err != nil {
				return fail(index, err)
			}
			args[i] = v
		}

		if err := stmt.Exec(ctx, args); err != nil {
			if l.DB.Classify(err) != ClassConstraintViolation {
				return fail(index, fmt.Errorf("%w: %w", ErrExecution, err))
			}
			obs.RecordSkipped(fileName, results.skip(index, err.Error()))
			continue
		}
		results.insert()
	}

	result := results.result()
	obs.FileFinished(result)
	return result, nil
}
