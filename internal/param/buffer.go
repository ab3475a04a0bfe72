package param

// ResetCondition controls when InitRun clears a Buffer's memo (spec.md
// §3's reset_condition).
type ResetCondition int

const (
	// ResetOnRun clears the memo on every InitRun, root or not.
	ResetOnRun ResetCondition = iota
	// ResetOnRunIfRoot clears the memo only when InitRun runs with
	// isRoot=true — a nested subpath invocation leaves it intact.
	ResetOnRunIfRoot
	// ResetNever never clears the memo via InitRun; only a fresh Buffer
	// (no prior Evaluate) or an explicit re-construction recomputes it.
	ResetNever
)

// Buffer is a lazily-evaluated, memoized node: its value is computed from
// args (its own Dict of inputs) by fn, and cached until InitRun decides to
// invalidate it (per Reset). Name identifies the buffer in SQL projection
// in place of a function name — Go gives us no stable, human-readable name
// for an arbitrary closure, so callers supply one explicitly, the way the
// teacher keys its hook table by a handler name string rather than the
// func value itself (internal/core/modules.go's ModuleManager.hooks).
type Buffer struct {
	Name    string
	Reset   ResetCondition
	args    *Dict
	fn      func(args *Dict) (any, error)
	memo    any
	hasMemo bool
	used    bool
}

var _ Node = (*Buffer)(nil)

// NewBuffer builds a Buffer that recomputes on every run (ResetOnRun).
func NewBuffer(name string, fn func(args *Dict) (any, error)) *Buffer {
	return &Buffer{Name: name, args: NewDict(), fn: fn, Reset: ResetOnRun}
}

// NewPersistentBuffer builds a Buffer whose memo survives non-root
// InitRun calls, only clearing when InitRun is invoked with isRoot=true —
// for buffers expensive enough that a subpath shouldn't recompute them
// on every nested run. Equivalent to NewBufferWithReset(name, fn,
// ResetOnRunIfRoot).
func NewPersistentBuffer(name string, fn func(args *Dict) (any, error)) *Buffer {
	return &Buffer{Name: name, args: NewDict(), fn: fn, Reset: ResetOnRunIfRoot}
}

// NewBufferWithReset builds a Buffer with an explicit reset condition,
// for callers that need ResetNever — a memo that never re-evaluates once
// computed, not even across root runs (spec.md §3's third
// reset_condition, which neither NewBuffer nor NewPersistentBuffer can
// express).
func NewBufferWithReset(name string, fn func(args *Dict) (any, error), reset ResetCondition) *Buffer {
	return &Buffer{Name: name, args: NewDict(), fn: fn, Reset: reset}
}

// Args returns the buffer's input Dict for configuration (SetArg) or
// structural traversal.
func (b *Buffer) Args() *Dict { return b.args }

// SetArg assigns one of the buffer's inputs, subject to the args Dict's
// own lock.
func (b *Buffer) SetArg(key string, n Node) error { return b.args.Set(key, n) }

// Evaluate returns the memoized value, computing and caching it via fn on
// first access (or after InitRun has cleared the memo). used is set on
// every read, not just the computing one, so a ResetNever buffer serving
// its memo back on a later run still counts as read for that run's
// fingerprint projection.
func (b *Buffer) Evaluate() (any, error) {
	if b.hasMemo {
		b.used = true
		return b.memo, nil
	}
	v, err := b.fn(b.args)
	if err != nil {
		return nil, err
	}
	b.memo = v
	b.hasMemo = true
	b.used = true
	return v, nil
}

func (b *Buffer) Lock()   { b.args.Lock() }
func (b *Buffer) Unlock() { b.args.Unlock() }

func (b *Buffer) ResetUsage() {
	b.used = false
	b.args.ResetUsage()
}

func (b *Buffer) SetUsage(u bool) { b.used = u }
func (b *Buffer) Used() bool      { return b.used }

// InitRun clears the memo per Reset, then recurses into args so nested
// Buffers/Refers re-init too.
func (b *Buffer) InitRun(isRoot bool, root Node) error {
	switch b.Reset {
	case ResetOnRun:
		b.hasMemo = false
		b.memo = nil
	case ResetOnRunIfRoot:
		if isRoot {
			b.hasMemo = false
			b.memo = nil
		}
	case ResetNever:
		// memo, once computed, is never cleared by InitRun.
	}
	return b.args.InitRun(isRoot, root)
}

// bufferHolder exposes the embedded *Buffer for structural comparison.
// XBuffer and YBuffer embed Buffer by value, so Go promotes asBuffer (a
// *Buffer method) onto *XBuffer/*YBuffer automatically, returning a
// pointer to their own embedded Buffer field — neither type needs to
// declare it. Asserting on this interface instead of the concrete *Buffer
// type lets MergeUsage work across all three buffer variants, the way
// they already share Lock/Unlock/ResetUsage/InitRun through plain
// embedding.
type bufferHolder interface {
	asBuffer() *Buffer
}

func (b *Buffer) asBuffer() *Buffer { return b }

var (
	_ bufferHolder = (*Buffer)(nil)
	_ bufferHolder = (*XBuffer)(nil)
	_ bufferHolder = (*YBuffer)(nil)
)

func (b *Buffer) MergeUsage(other Node) error {
	oh, ok := other.(bufferHolder)
	if !ok {
		return ErrShapeMismatch
	}
	o := oh.asBuffer()
	b.used = b.used || o.used
	return b.args.MergeUsage(o.args)
}

// SQLData projects a buffer as its name tag ("var") plus its args
// flattened in — the buffer's computed output never appears, only the
// inputs that determine it and the identity of the computation itself.
func (b *Buffer) SQLData(opts SQLOptions) (any, error) {
	argsData, err := b.args.SQLData(opts)
	if err != nil {
		return nil, err
	}
	out, ok := argsData.(map[string]any)
	if !ok {
		out = make(map[string]any)
	}
	if opts.ReturnSchema {
		out["var"] = "str"
	} else {
		out["var"] = b.Name
	}
	return out, nil
}

// cloneBuffer deep-copies the embeddable Buffer fields, preserving memo
// state — clone() is a snapshot of current state, not a reset (reset
// happens later via explicit ResetUsage/InitRun calls in the run lifecycle).
func (b *Buffer) cloneBuffer() *Buffer {
	return &Buffer{
		Name:    b.Name,
		Reset:   b.Reset,
		args:    b.args.clone().(*Dict),
		fn:      b.fn,
		memo:    b.memo,
		hasMemo: b.hasMemo,
		used:    b.used,
	}
}

func (b *Buffer) clone() Node { return b.cloneBuffer() }
