package core

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Recognised input extensions.
const (
	ExtCSV = ".csv"
	ExtZip = ".zip"
)

// Options configures an Importer.
type Options struct {
	Delimiter   rune     // field delimiter, DefaultDelimiter when zero
	StagingDir  string   // parent of bundle staging directories, os.TempDir when empty
	KeepStaging bool     // leave expanded bundles on disk after the load
	Observer    Observer // progress notifications, NopObserver when nil
}

// Importer is the entry point for loading a CSV file or a zip bundle of them.
type Importer struct {
	db     Database
	opts   Options
	loader *Loader
}

// NewImporter creates an Importer loading through db.
func NewImporter(db Database, opts Options) *Importer {
	if opts.Delimiter == 0 {
		opts.Delimiter = DefaultDelimiter
	}
	if opts.Observer == nil {
		opts.Observer = NopObserver{}
	}
	return &Importer{
		db:   db,
		opts: opts,
		loader: &Loader{
			DB:        db,
			Delimiter: opts.Delimiter,
			Observer:  opts.Observer,
		},
	}
}

// Load imports path and returns one result per loaded file, in load order.
//
// A .csv path is loaded directly. A .zip path is expanded and its files are
// loaded in ascending filename order, so prefixes like "1-" and "2-" control
// sequencing. The first fatal error stops the load and is returned without
// results; rows committed before it are not rolled back.
func (im *Importer) Load(ctx context.Context, path string) ([]LoadResult, error) {
	var files []string

	switch strings.ToLower(filepath.Ext(path)) {
	case ExtCSV:
		files = []string{path}

	case ExtZip:
		dir, expanded, err := ExpandBundle(path, im.opts.StagingDir)
		if err != nil {
			return nil, err
		}
		if !im.opts.KeepStaging {
			defer os.RemoveAll(dir)
		}
		files = expanded
		sortByFileName(files)

	default:
		return nil, fmt.Errorf("%w: %s (only csv and zip)", ErrUnsupportedFormat, filepath.Base(path))
	}

	results := make([]LoadResult, 0, len(files))
	for _, file := range files {
		result, err := im.loader.LoadFile(ctx, file)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}

	return results, nil
}

// TableInfo returns the catalog structure of table.
func (im *Importer) TableInfo(ctx context.Context, table string) (TableSchema, error) {
	conn, err := im.db.Acquire(ctx)
	if err != nil {
		return TableSchema{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	return Inspector{}.Lookup(ctx, conn, table)
}

// sortByFileName orders paths by base name; the full path breaks ties so
// equal names in different bundle directories load deterministically.
func sortByFileName(paths []string) {
	slices.SortStableFunc(paths, func(a, b string) int {
		return cmp.Or(
			cmp.Compare(filepath.Base(a), filepath.Base(b)),
			cmp.Compare(a, b),
		)
	})
}
