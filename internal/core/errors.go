package core

import (
	"errors"
	"fmt"
)

// Sentinel errors for the fatal error kinds. Typed errors below match them via errors.Is.
var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrTableNotFound     = errors.New("table not found")
	ErrMissingColumn     = errors.New("no database column found by csv header")
	ErrConversion        = errors.New("invalid value")
	ErrExecution         = errors.New("insert failed")
	ErrExtraction        = errors.New("bundle extraction failed")
	ErrUnsafeEntry       = errors.New("bundle entry escapes staging directory")
	ErrMalformedFile     = errors.New("invalid csv")
)

// TableNotFoundError is returned when the catalog has no columns for a table.
type TableNotFoundError struct {
	Table string
}

func (e *TableNotFoundError) Error() string {
	return fmt.Sprintf("table with name [%s] not found", e.Table)
}

func (e *TableNotFoundError) Is(target error) bool { return target == ErrTableNotFound }

// ColumnError is returned when a CSV header does not resolve to a table column.
type ColumnError struct {
	Header string
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("%s: header=%q", ErrMissingColumn, e.Header)
}

func (e *ColumnError) Is(target error) bool { return target == ErrMissingColumn }

// ConversionError is returned when a cell does not parse under its column's type rule.
type ConversionError struct {
	Column   string
	DataType string
	Value    string
	Err      error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("invalid %s value %q for column %q: %v", e.DataType, e.Value, e.Column, e.Err)
}

func (e *ConversionError) Is(target error) bool { return target == ErrConversion }

func (e *ConversionError) Unwrap() error { return e.Err }

// LoadError carries the file (and row, when known) a fatal error occurred in.
type LoadError struct {
	FileName string
	Record   int // 0 when the failure is not tied to a data row
	Err      error
}

func (e *LoadError) Error() string {
	if e.Record > 0 {
		return fmt.Sprintf("load %s: record %d: %v", e.FileName, e.Record, e.Err)
	}
	return fmt.Sprintf("load %s: %v", e.FileName, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
