package core

// convert.go maps raw CSV cell text to typed values using the column's
// declared SQL type, as reported by the catalog.
//
// A value that does not parse under its column's rule fails the whole file.
// Three literals apply to every column type:
//   - blank or whitespace-only cells become NULL
//   - "null" (any case) becomes NULL
//   - "now()" (any case) becomes the current timestamp

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Layouts accepted for date and timestamp columns.
const (
	DateLayout      = "2006-01-02"
	TimestampLayout = "2006-01-02 15:04:05"
)

const (
	nullLiteral = "null"
	nowLiteral  = "now()"
)

// canonicalUUIDLen is the length of the 8-4-4-4-12 text form.
const canonicalUUIDLen = 36

var errNotCanonicalUUID = errors.New("not in canonical 8-4-4-4-12 form")

// now is replaced in tests.
var now = time.Now

// Convert converts one cell for the column named by header.
// A header with no entry in idx fails with ColumnError; a value that does
// not parse fails with ConversionError. Both are fatal for the file.
func Convert(header, raw string, idx ColumnTypeIndex) (Value, error) {
	ct, ok := idx.Lookup(header)
	if !ok {
		return Value{}, &ColumnError{Header: header}
	}

	if strings.TrimSpace(raw) == "" || strings.EqualFold(raw, nullLiteral) {
		return Null(), nil
	}
	if strings.EqualFold(raw, nowLiteral) {
		return Timestamp(now()), nil
	}

	v, err := convertTyped(ct.DataType, raw)
	if err != nil {
		return Value{}, &ConversionError{
			Column:   header,
			DataType: ct.DataType,
			Value:    raw,
			Err:      err,
		}
	}
	return v, nil
}

// convertTyped dispatches on the lower-cased declared type.
func convertTyped(dataType, raw string) (Value, error) {
	switch dataType {
	case "date":
		t, err := time.Parse(DateLayout, raw)
		if err != nil {
			return Value{}, err
		}
		return Date(t), nil

	case "timestamp with time zone", "timestamp without time zone":
		// Parsing accepts an optional fractional second after the seconds field.
		t, err := time.ParseInLocation(TimestampLayout, raw, time.Local)
		if err != nil {
			return Value{}, err
		}
		return Timestamp(t), nil

	case "uuid":
		if len(raw) != canonicalUUIDLen {
			return Value{}, errNotCanonicalUUID
		}
		u, err := uuid.Parse(raw)
		if err != nil {
			return Value{}, err
		}
		return UUID(u), nil

	case "boolean":
		return Bool(strings.EqualFold(raw, "true")), nil

	case "smallint", "integer":
		i, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return Value{}, err
		}
		return Int32(int32(i)), nil

	case "bigint":
		i, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Value{}, err
		}
		return Int64(i), nil

	case "numeric", "double precision":
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return Value{}, err
		}
		return Float64(f), nil

	default:
		return Text(raw), nil
	}
}
