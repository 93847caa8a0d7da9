// Package types defines the scalar value model and row/column shapes the
// rest of the engine builds on: a closed Value sum type, Row (identity +
// payload), and Column (schema metadata a predicate or projection resolves
// against).
package types

import (
	"fmt"
	"time"
)

// Kind tags which variant of Value is populated.
type Kind int

const (
	KindAbsent Kind = iota
	KindInt
	KindFloat
	KindText
	KindBool
	KindTimestamp
	KindBlob
)

func (k Kind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	case KindBool:
		return "bool"
	case KindTimestamp:
		return "timestamp"
	case KindBlob:
		return "blob"
	default:
		return "unknown"
	}
}

// Value is a closed sum type over the scalar kinds a row payload may hold.
// The zero Value is Absent: a column can legitimately carry "no value"
// while still being present in the payload map, distinct from a missing key.
type Value struct {
	kind  Kind
	i     int64
	f     float64
	s     string
	b     bool
	t     time.Time
	blob  []byte
}

// Absent is the explicit absence marker.
var Absent = Value{kind: KindAbsent}

func Int(v int64) Value               { return Value{kind: KindInt, i: v} }
func Float(v float64) Value           { return Value{kind: KindFloat, f: v} }
func Text(v string) Value             { return Value{kind: KindText, s: v} }
func Bool(v bool) Value               { return Value{kind: KindBool, b: v} }
func Timestamp(v time.Time) Value     { return Value{kind: KindTimestamp, t: v} }
func Blob(v []byte) Value             { return Value{kind: KindBlob, blob: v} }

func (v Value) Kind() Kind     { return v.kind }
func (v Value) IsAbsent() bool { return v.kind == KindAbsent }

func (v Value) AsInt() (int64, bool)         { return v.i, v.kind == KindInt }
func (v Value) AsFloat() (float64, bool)     { return v.f, v.kind == KindFloat }
func (v Value) AsText() (string, bool)       { return v.s, v.kind == KindText }
func (v Value) AsBool() (bool, bool)         { return v.b, v.kind == KindBool }
func (v Value) AsTimestamp() (time.Time, bool) { return v.t, v.kind == KindTimestamp }
func (v Value) AsBlob() ([]byte, bool)       { return v.blob, v.kind == KindBlob }

// Numeric reports whether the value is Int or Float and returns it widened
// to float64; used by aggregators and numeric comparisons.
func (v Value) Numeric() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	default:
		return 0, false
	}
}

// Equal reports value equality, comparing across Int/Float numerically.
func (v Value) Equal(other Value) bool {
	if v.kind == KindAbsent || other.kind == KindAbsent {
		return v.kind == other.kind
	}
	if vf, ok := v.Numeric(); ok {
		if of, ok := other.Numeric(); ok {
			return vf == of
		}
	}
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindText:
		return v.s == other.s
	case KindBool:
		return v.b == other.b
	case KindTimestamp:
		return v.t.Equal(other.t)
	case KindBlob:
		return string(v.blob) == string(other.blob)
	}
	return false
}

// Compare orders two values for ORDER BY purposes. Absent sorts below every
// other kind, per spec's "NULL < any value in ASC" rule; ties across
// comparable kinds fall back to numeric/lexicographic/chronological order.
// Compare panics if asked to order two genuinely incomparable non-absent
// kinds; query.Validate rejects such comparisons with a ValidationError
// before execution.
func (v Value) Compare(other Value) int {
	if v.kind == KindAbsent && other.kind == KindAbsent {
		return 0
	}
	if v.kind == KindAbsent {
		return -1
	}
	if other.kind == KindAbsent {
		return 1
	}
	if vf, ok := v.Numeric(); ok {
		if of, ok := other.Numeric(); ok {
			switch {
			case vf < of:
				return -1
			case vf > of:
				return 1
			default:
				return 0
			}
		}
	}
	switch v.kind {
	case KindText:
		switch {
		case v.s < other.s:
			return -1
		case v.s > other.s:
			return 1
		default:
			return 0
		}
	case KindBool:
		switch {
		case v.b == other.b:
			return 0
		case !v.b:
			return -1
		default:
			return 1
		}
	case KindTimestamp:
		switch {
		case v.t.Before(other.t):
			return -1
		case v.t.After(other.t):
			return 1
		default:
			return 0
		}
	case KindBlob:
		a, b := string(v.blob), string(other.blob)
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		default:
			return 0
		}
	}
	panic(fmt.Sprintf("types: values of kind %s and %s are not comparable", v.kind, other.kind))
}

func (v Value) String() string {
	switch v.kind {
	case KindAbsent:
		return "<absent>"
	case KindInt:
		return fmt.Sprintf("%d", v.i)
	case KindFloat:
		return fmt.Sprintf("%g", v.f)
	case KindText:
		return v.s
	case KindBool:
		return fmt.Sprintf("%t", v.b)
	case KindTimestamp:
		return v.t.Format(time.RFC3339)
	case KindBlob:
		return fmt.Sprintf("<blob %d bytes>", len(v.blob))
	default:
		return "<unknown>"
	}
}
