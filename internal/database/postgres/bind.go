package postgres

import (
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/csv2db/internal/core"
)

// bind maps a converted value to the Go type pgx encodes for its column.
func bind(v core.Value) any {
	switch v.Kind {
	case core.KindText:
		return v.Text
	case core.KindInt32:
		return int32(v.Int)
	case core.KindInt64:
		return v.Int
	case core.KindFloat64:
		return v.Float
	case core.KindBool:
		return v.Bool
	case core.KindDate:
		return pgtype.Date{Time: v.Time, Valid: true}
	case core.KindTimestamp:
		return v.Time
	case core.KindUUID:
		return pgtype.UUID{Bytes: v.UUID, Valid: true}
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
