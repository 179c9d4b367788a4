// Package core provides the import engine for loading delimited seed files
// into relational tables.
//
// This package has no transport or driver dependencies. It can be driven by
// the CLI, the HTTP service or tests; database access goes through the
// [Database] interface, implemented per vendor under internal/database.
//
// # Inputs
//
// [Importer.Load] accepts a single .csv file or a .zip bundle of them. A
// bundle is expanded into a staging directory and its entries are loaded in
// ascending file-name order, so a numeric prefix sequences dependent tables:
//
//	seed.zip
//	├── 1-customers.csv   -> customers
//	├── 2-orders.csv      -> orders
//	└── 3-order_items.csv -> order_items
//
// # Rows
//
// The first row is a header naming table columns (case-insensitive). Each
// cell is converted by [Convert] according to the column's catalog type and
// inserted as a single parameterised statement. A row rejected by a unique
// or primary key constraint is recorded in [LoadResult.SkippedRecords] and
// the load continues; every other failure aborts the import with a
// [*LoadError]. Rows inserted before the failure stay committed.
//
// # Errors
//
// Fatal errors wrap the sentinels in errors.go and can be mapped to
// user-facing messages with [MapError].
package core
