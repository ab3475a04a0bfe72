package param

// YBuffer is a Buffer tagged as a journey output/target variable. It
// projects to SQL exactly like a plain Buffer (name + flattened args);
// the distinction only matters to callers (journey/batch) that need to
// tell target buffers apart from feature ones when assembling results.
type YBuffer struct {
	Buffer
}

var _ Node = (*YBuffer)(nil)

func NewYBuffer(name string, fn func(args *Dict) (any, error)) *YBuffer {
	return &YBuffer{Buffer: *NewBuffer(name, fn)}
}

// IsTarget distinguishes YBuffer from Buffer/XBuffer for callers that
// branch on role rather than type-switch.
func (y *YBuffer) IsTarget() bool { return true }

func (y *YBuffer) clone() Node {
	return &YBuffer{Buffer: *y.Buffer.cloneBuffer()}
}
