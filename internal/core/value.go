package core

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindText
	KindInt32
	KindInt64
	KindFloat64
	KindBool
	KindDate
	KindTimestamp
	KindUUID
)

var kindNames = [...]string{
	KindNull:      "null",
	KindText:      "text",
	KindInt32:     "int32",
	KindInt64:     "int64",
	KindFloat64:   "float64",
	KindBool:      "bool",
	KindDate:      "date",
	KindTimestamp: "timestamp",
	KindUUID:      "uuid",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is a converted cell ready to be bound to a statement parameter.
// Only the field matching Kind is meaningful.
type Value struct {
	Kind  Kind
	Text  string
	Int   int64 // KindInt32 and KindInt64
	Float float64
	Bool  bool
	Time  time.Time // KindDate and KindTimestamp
	UUID  uuid.UUID
}

func Null() Value                 { return Value{Kind: KindNull} }
func Text(s string) Value         { return Value{Kind: KindText, Text: s} }
func Int32(i int32) Value         { return Value{Kind: KindInt32, Int: int64(i)} }
func Int64(i int64) Value         { return Value{Kind: KindInt64, Int: i} }
func Float64(f float64) Value     { return Value{Kind: KindFloat64, Float: f} }
func Bool(b bool) Value           { return Value{Kind: KindBool, Bool: b} }
func Date(t time.Time) Value      { return Value{Kind: KindDate, Time: t} }
func Timestamp(t time.Time) Value { return Value{Kind: KindTimestamp, Time: t} }
func UUID(u uuid.UUID) Value      { return Value{Kind: KindUUID, UUID: u} }

// IsNull reports whether v is SQL NULL.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// String renders the value for logs and error messages.
func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return "NULL"
	case KindText:
		return v.Text
	case KindInt32, KindInt64:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat64:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindDate:
		return v.Time.Format(DateLayout)
	case KindTimestamp:
		return v.Time.Format(TimestampLayout)
	case KindUUID:
		return v.UUID.String()
	default:
		return fmt.Sprintf("<%s>", v.Kind)
	}
}
