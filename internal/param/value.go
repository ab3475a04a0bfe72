package param

import "time"

// Value is a terminal node carrying an optional casting DType.
type Value struct {
	value any
	dtype DType
	used  bool
}

var _ Node = (*Value)(nil)

// NewValue wraps an arbitrary value with type detection deferred to
// projection time.
func NewValue(v any) *Value { return &Value{value: v, dtype: DTypeNone} }

// NewTypedValue wraps v with an explicit dtype, short-circuiting detection.
func NewTypedValue(v any, dtype DType) *Value { return &Value{value: v, dtype: dtype} }

func NewBool(v bool) *Value          { return NewTypedValue(v, DTypeBool) }
func NewInt(v int64) *Value          { return NewTypedValue(v, DTypeInt) }
func NewFloat(v float64) *Value      { return NewTypedValue(v, DTypeFloat) }
func NewString(v string) *Value      { return NewTypedValue(v, DTypeStr) }
func NewTime(v time.Time) *Value     { return NewTypedValue(v, DTypeDatetime) }

// GetValue is the only public read accessor on Value; it sets used=true on
// this node (and only this node, per spec.md §3) and returns the raw value.
func (v *Value) GetValue() any {
	v.used = true
	return v.value
}

// Raw returns the underlying value without marking it used, for callers
// that must not trip usage tracking themselves.
func (v *Value) Raw() any { return v.value }

// DType returns the node's explicit cast type, or DTypeNone if undetected.
func (v *Value) DType() DType { return v.dtype }

// SetDType overrides the cast type. Dict.Replace's dtype propagation rule
// sets the field directly rather than through this method.
func (v *Value) SetDType(d DType) { v.dtype = d }

func (v *Value) Lock()   {}
func (v *Value) Unlock() {}

func (v *Value) ResetUsage()     { v.used = false }
func (v *Value) SetUsage(u bool) { v.used = u }
func (v *Value) Used() bool      { return v.used }

func (v *Value) InitRun(isRoot bool, root Node) error { return nil }

func (v *Value) MergeUsage(other Node) error {
	o, ok := other.(*Value)
	if !ok {
		return ErrShapeMismatch
	}
	v.used = v.used || o.used
	return nil
}

func (v *Value) SQLData(opts SQLOptions) (any, error) {
	if opts.ReturnSchema {
		return schemaTag(v.value, v.dtype)
	}
	return castSQLValue(v.value, v.dtype)
}

func (v *Value) clone() Node {
	return &Value{value: v.value, dtype: v.dtype, used: v.used}
}
