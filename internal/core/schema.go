package core

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// TableNameFromFile derives the target table from an input file name.
//
// The extension is stripped; if the base name contains '-', the table is the
// second '-'-separated segment ("1-orders.csv" -> "orders"). Names with more
// than one '-' lose everything after the second one ("1-order-items.csv" ->
// "order"), which is how existing seed bundles are named.
func TableNameFromFile(fileName string) string {
	base := filepath.Base(fileName)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if strings.Contains(base, "-") {
		return strings.Split(base, "-")[1]
	}
	return base
}

// Inspector reads table structure from the database catalog.
type Inspector struct{}

// Lookup returns the schema of table in the connection's current schema.
// The name is matched in lower case. A table with no catalog columns fails
// with TableNotFoundError.
func (Inspector) Lookup(ctx context.Context, conn Conn, table string) (TableSchema, error) {
	name := strings.ToLower(table)

	cols, err := conn.Columns(ctx, name)
	if err != nil {
		return TableSchema{}, fmt.Errorf("query columns of %s: %w", name, err)
	}
	if len(cols) == 0 {
		return TableSchema{}, &TableNotFoundError{Table: name}
	}

	return TableSchema{Name: name, Columns: cols}, nil
}
