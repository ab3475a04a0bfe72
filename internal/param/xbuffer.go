package param

// XBuffer is a Buffer collapsed to a single cast scalar for projection
// purposes: unlike Buffer/YBuffer, its args never appear in SQL data —
// only its evaluated, cast output does. This is for derived features that
// should fingerprint like a plain Value even though they're computed.
type XBuffer struct {
	Buffer
	dtype DType
}

var _ Node = (*XBuffer)(nil)

func NewXBuffer(name string, fn func(args *Dict) (any, error)) *XBuffer {
	return &XBuffer{Buffer: *NewBuffer(name, fn)}
}

// NewTypedXBuffer additionally pins the cast dtype, bypassing detection.
func NewTypedXBuffer(name string, fn func(args *Dict) (any, error), dtype DType) *XBuffer {
	return &XBuffer{Buffer: *NewBuffer(name, fn), dtype: dtype}
}

func (x *XBuffer) DType() DType      { return x.dtype }
func (x *XBuffer) SetDType(d DType)  { x.dtype = d }

// SQLData ignores args entirely; only the cast evaluated output appears.
func (x *XBuffer) SQLData(opts SQLOptions) (any, error) {
	v, err := x.Evaluate()
	if err != nil {
		return nil, err
	}
	if opts.ReturnSchema {
		return schemaTag(v, x.dtype)
	}
	return castSQLValue(v, x.dtype)
}

func (x *XBuffer) clone() Node {
	return &XBuffer{Buffer: *x.Buffer.cloneBuffer(), dtype: x.dtype}
}
