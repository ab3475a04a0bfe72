package param

// Invisible wraps a node so it is excluded from SQL/fingerprint projection
// by default, regardless of its used flag, unless SQLOptions.ShowInvisible
// is set — spec.md §3's "hidden from fingerprinting" variant. The wrapped
// node still participates fully in lock/usage/init-run traversal; only
// SQLData (and the parent Dict's projection decision) special-case it.
type Invisible struct {
	inner Node
}

var _ Node = (*Invisible)(nil)

// NewInvisible wraps n so it is skipped during projection by default.
func NewInvisible(n Node) *Invisible { return &Invisible{inner: n} }

// Inner returns the wrapped node for structural navigation.
func (i *Invisible) Inner() Node { return i.inner }

func (i *Invisible) Lock()   { i.inner.Lock() }
func (i *Invisible) Unlock() { i.inner.Unlock() }

func (i *Invisible) ResetUsage()     { i.inner.ResetUsage() }
func (i *Invisible) SetUsage(u bool) { i.inner.SetUsage(u) }
func (i *Invisible) Used() bool      { return i.inner.Used() }

func (i *Invisible) InitRun(isRoot bool, root Node) error {
	return i.inner.InitRun(isRoot, root)
}

func (i *Invisible) MergeUsage(other Node) error {
	o, ok := other.(*Invisible)
	if !ok {
		return ErrShapeMismatch
	}
	return i.inner.MergeUsage(o.inner)
}

// SQLData only returns data when ShowInvisible is set; a plain Dict.SQLData
// loop never reaches this (it unwraps *Invisible before deciding whether to
// recurse), but top-level callers projecting a bare Invisible node directly
// must still respect the flag.
func (i *Invisible) SQLData(opts SQLOptions) (any, error) {
	if !opts.ShowInvisible {
		return nil, nil
	}
	return i.inner.SQLData(opts)
}

func (i *Invisible) clone() Node {
	return &Invisible{inner: i.inner.clone()}
}
