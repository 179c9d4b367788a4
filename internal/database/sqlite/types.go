package sqlite

import (
	"strconv"
	"strings"

	"github.com/JonMunkholm/csv2db/internal/core"
)

// timestampLayout keeps sub-second precision when it is present.
const timestampLayout = "2006-01-02 15:04:05.999999999"

// declaredTypes maps SQLite declared type names to catalog type names.
var declaredTypes = map[string]string{
	"int":       "integer",
	"integer":   "integer",
	"int4":      "integer",
	"mediumint": "integer",
	"tinyint":   "smallint",
	"smallint":  "smallint",
	"int2":      "smallint",
	"bigint":    "bigint",
	"int8":      "bigint",

	"real":             "double precision",
	"double":           "double precision",
	"double precision": "double precision",
	"float":            "double precision",
	"numeric":          "numeric",
	"decimal":          "numeric",

	"bool":    "boolean",
	"boolean": "boolean",

	"date":                        "date",
	"datetime":                    "timestamp without time zone",
	"timestamp":                   "timestamp without time zone",
	"timestamp without time zone": "timestamp without time zone",
	"timestamptz":                 "timestamp with time zone",
	"timestamp with time zone":    "timestamp with time zone",

	"uuid": "uuid",

	"varchar":           "character varying",
	"character varying": "character varying",
	"nvarchar":          "character varying",
	"char":              "character",
	"character":         "character",
	"nchar":             "character",
	"text":              "text",
	"clob":              "text",
	"":                  "text",
}

// NormalizeType maps a declared column type such as "VARCHAR(20)" to its
// catalog name and length. Unrecognised types are returned lower-cased, so
// the converter passes their values through as text.
func NormalizeType(declared string) (string, *int) {
	base := strings.ToLower(strings.TrimSpace(declared))

	var args string
	if open := strings.IndexByte(base, '('); open >= 0 {
		args = strings.TrimSuffix(strings.TrimSpace(base[open+1:]), ")")
		base = strings.TrimSpace(base[:open])
	}
	base = strings.Join(strings.Fields(base), " ")

	name, ok := declaredTypes[base]
	if !ok {
		return base, nil
	}

	if name == "character varying" || name == "character" {
		if n, err := strconv.Atoi(strings.TrimSpace(args)); err == nil {
			return name, &n
		}
	}
	return name, nil
}

// bind maps a converted value to a driver argument. Dates and timestamps are
// stored as ISO-8601 text so SQLite's date functions can read them.
func bind(v core.Value) any {
	switch v.Kind {
	case core.KindText:
		return v.Text
	case core.KindInt32, core.KindInt64:
		return v.Int
	case core.KindFloat64:
		return v.Float
	case core.KindBool:
		return v.Bool
	case core.KindDate:
		return v.Time.Format(core.DateLayout)
	case core.KindTimestamp:
		return v.Time.Format(timestampLayout)
	case core.KindUUID:
		return v.UUID.String()
	default:
		return nil
	}
}

func bindAll(values []core.Value) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = bind(v)
	}
	return args
}
