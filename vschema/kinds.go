package vschema

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"github.com/google/uuid"
)

// Kind performs type coercion between raw input values and object-world
// values. Load coerces on the way in, Dump renders on the way out; both
// see only present, non-null values (the engine handles null and absence
// first). Failures are reported as *Violation, or as Issues with relative
// paths when a composite kind recurses.
type Kind interface {
	Name() string
	Load(ctx context.Context, v any) (any, error)
	Dump(ctx context.Context, v any) (any, error)
}

func typeViolation(template string, got any) *Violation {
	return &Violation{
		Code:     CodeInvalidType,
		Template: template,
		Params:   map[string]any{"got": got},
	}
}

// StringKind coerces strings.
type StringKind struct{}

func (StringKind) Name() string { return "string" }

func (StringKind) Load(_ context.Context, v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, typeViolation("Not a valid string.", v)
	}
	return s, nil
}

func (k StringKind) Dump(ctx context.Context, v any) (any, error) { return k.Load(ctx, v) }

// IntegerKind coerces integers to int64. json.Number and integral floats
// are accepted on load; fractional input is a type error.
type IntegerKind struct{}

func (IntegerKind) Name() string { return "integer" }

func (IntegerKind) Load(_ context.Context, v any) (any, error) {
	n, ok := asInt64(v)
	if !ok {
		return nil, typeViolation("Not a valid integer.", v)
	}
	return n, nil
}

func (k IntegerKind) Dump(ctx context.Context, v any) (any, error) { return k.Load(ctx, v) }

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint:
		return int64(x), true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		if x > math.MaxInt64 {
			return 0, false
		}
		return int64(x), true
	case float64:
		if x != math.Trunc(x) || math.IsInf(x, 0) || math.IsNaN(x) {
			return 0, false
		}
		return int64(x), true
	case json.Number:
		n, err := x.Int64()
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// ToInt64 coerces integer-valued input (Go integers, json.Number,
// integral floats) to int64.
func ToInt64(v any) (int64, bool) { return asInt64(v) }

// ToFloat64 coerces numeric input to float64.
func ToFloat64(v any) (float64, bool) { return asFloat64(v) }

// FloatKind coerces numbers to float64.
type FloatKind struct{}

func (FloatKind) Name() string { return "float" }

func (FloatKind) Load(_ context.Context, v any) (any, error) {
	f, ok := asFloat64(v)
	if !ok {
		return nil, typeViolation("Not a valid number.", v)
	}
	return f, nil
}

func (k FloatKind) Dump(ctx context.Context, v any) (any, error) { return k.Load(ctx, v) }

func asFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float32:
		return float64(x), true
	case float64:
		return x, true
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		if n, ok := asInt64(v); ok {
			return float64(n), true
		}
		return 0, false
	}
}

// BooleanKind coerces booleans.
type BooleanKind struct{}

func (BooleanKind) Name() string { return "boolean" }

func (BooleanKind) Load(_ context.Context, v any) (any, error) {
	b, ok := v.(bool)
	if !ok {
		return nil, typeViolation("Not a valid boolean.", v)
	}
	return b, nil
}

func (k BooleanKind) Dump(ctx context.Context, v any) (any, error) { return k.Load(ctx, v) }

// AnyKind passes values through untouched.
type AnyKind struct{}

func (AnyKind) Name() string { return "any" }

func (AnyKind) Load(_ context.Context, v any) (any, error) { return v, nil }

func (AnyKind) Dump(_ context.Context, v any) (any, error) { return v, nil }

// DateTimeKind coerces datetimes to time.Time. RFC 3339 strings (with or
// without fractional seconds) are accepted on load; Dump renders the
// canonical UTC RFC 3339 form.
type DateTimeKind struct{}

func (DateTimeKind) Name() string { return "datetime" }

func (DateTimeKind) Load(_ context.Context, v any) (any, error) {
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case string:
		t, err := ParseRFC3339(x)
		if err != nil {
			return nil, &Violation{
				Code:     CodeInvalidType,
				Template: "Not a valid datetime.",
				Params:   map[string]any{"got": x},
				Cause:    err,
			}
		}
		return t, nil
	default:
		return nil, typeViolation("Not a valid datetime.", v)
	}
}

func (DateTimeKind) Dump(_ context.Context, v any) (any, error) {
	t, ok := v.(time.Time)
	if !ok {
		return nil, typeViolation("Not a valid datetime.", v)
	}
	return FormatRFC3339(t), nil
}

// ParseRFC3339 parses an RFC 3339 timestamp, accepting optional fractional
// seconds.
func ParseRFC3339(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, err
	}
	return t, nil
}

// FormatRFC3339 renders the canonical form: UTC, RFC3339Nano (Go trims
// trailing zeros).
func FormatRFC3339(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// UUIDKind coerces UUIDs. Strings are parsed on load; Dump renders the
// canonical string form.
type UUIDKind struct{}

func (UUIDKind) Name() string { return "uuid" }

func (UUIDKind) Load(_ context.Context, v any) (any, error) {
	switch x := v.(type) {
	case uuid.UUID:
		return x, nil
	case string:
		id, err := uuid.Parse(x)
		if err != nil {
			return nil, &Violation{
				Code:     CodeInvalidType,
				Template: "Not a valid UUID.",
				Params:   map[string]any{"got": x},
				Cause:    err,
			}
		}
		return id, nil
	default:
		return nil, typeViolation("Not a valid UUID.", v)
	}
}

func (UUIDKind) Dump(_ context.Context, v any) (any, error) {
	switch x := v.(type) {
	case uuid.UUID:
		return x.String(), nil
	case string:
		id, err := uuid.Parse(x)
		if err != nil {
			return nil, typeViolation("Not a valid UUID.", v)
		}
		return id.String(), nil
	default:
		return nil, typeViolation("Not a valid UUID.", v)
	}
}
