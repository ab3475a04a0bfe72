package param

import (
	"reflect"
	"time"
)

// DType is an explicit cast-type override for a Value or XBuffer. It
// survives Dict.Replace (spec.md §3) and short-circuits type detection
// during SQL projection.
type DType int

const (
	// DTypeNone means "detect the canonical type from the Go value."
	DTypeNone DType = iota
	DTypeBool
	DTypeInt
	DTypeFloat
	DTypeStr
	DTypeDatetime
)

// dtypeTag is grounded line-for-line on
// _examples/original_source/src/jmaps/journey/jmalc.py's get_sql_type.
func dtypeTag(d DType) string {
	switch d {
	case DTypeBool:
		return "bool"
	case DTypeInt:
		return "int"
	case DTypeFloat:
		return "float"
	case DTypeStr:
		return "str"
	case DTypeDatetime:
		return "float" // datetimes are cast to POSIX seconds (a float column)
	default:
		return ""
	}
}

// detectType mirrors jmalc.py's get_sql_type: bool before numeric (Go's
// bool is not numeric, but the ordering documents the original's intent),
// then floating-kind, then integer-kind, then string, then time.Time.
func detectType(v any) (DType, bool) {
	switch v.(type) {
	case bool:
		return DTypeBool, true
	case float32, float64:
		return DTypeFloat, true
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return DTypeInt, true
	case string:
		return DTypeStr, true
	case time.Time:
		return DTypeDatetime, true
	default:
		return DTypeNone, false
	}
}

// castSQLValue casts v to its canonical SQL representation, using dtype when
// it is not DTypeNone and detecting otherwise. Grounded on jmalc.py's
// cast_sql_type: bool -> bool, integer-kind -> int, floating-kind -> float,
// str -> str, datetime -> POSIX seconds (float). Anything else is
// ErrUnsupportedValueType.
func castSQLValue(v any, dtype DType) (any, error) {
	d := dtype
	if d == DTypeNone {
		detected, ok := detectType(v)
		if !ok {
			return nil, ErrUnsupportedValueType
		}
		d = detected
	}

	switch d {
	case DTypeBool:
		b, ok := v.(bool)
		if !ok {
			return nil, ErrUnsupportedValueType
		}
		return b, nil
	case DTypeInt:
		i, ok := toInt64(v)
		if !ok {
			return nil, ErrUnsupportedValueType
		}
		return i, nil
	case DTypeFloat:
		f, ok := toFloat64(v)
		if !ok {
			return nil, ErrUnsupportedValueType
		}
		return f, nil
	case DTypeStr:
		s, ok := v.(string)
		if !ok {
			return nil, ErrUnsupportedValueType
		}
		return s, nil
	case DTypeDatetime:
		t, ok := v.(time.Time)
		if !ok {
			return nil, ErrUnsupportedValueType
		}
		return float64(t.UnixNano()) / 1e9, nil
	default:
		return nil, ErrUnsupportedValueType
	}
}

// schemaTag returns the canonical type tag for v under dtype, used when
// SQLOptions.ReturnSchema is set.
func schemaTag(v any, dtype DType) (string, error) {
	d := dtype
	if d == DTypeNone {
		detected, ok := detectType(v)
		if !ok {
			return "", ErrUnsupportedValueType
		}
		d = detected
	}
	return dtypeTag(d), nil
}

func toInt64(v any) (int64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint()), true
	default:
		return 0, false
	}
}

func toFloat64(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}
