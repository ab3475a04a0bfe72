package param

// Refer is a late-bound pointer to another node in the same environment,
// identified by a dotted path resolved at InitRun time against root. It
// exists so a Dict can reference a sibling (or ancestor's) value without
// duplicating it — the resolved target is re-fetched and re-cloned on
// every InitRun, since each run may hand Refer a structurally distinct
// root (a fresh deep copy, per the run lifecycle in journey.Run).
type Refer struct {
	path     []string
	resolved Node
}

var _ Node = (*Refer)(nil)

// NewRefer builds an unresolved reference to root's dotted path.
func NewRefer(path ...string) *Refer { return &Refer{path: path} }

// Resolved returns the node this Refer last resolved to, or nil if
// InitRun has not yet run against it.
func (r *Refer) Resolved() Node { return r.resolved }

// InitRun walks root by r.path, cloning and initializing the node found
// there. Intermediate Invisible wrappers are transparent to path
// traversal. Returns ErrKeyNotFound if any segment is missing or an
// intermediate segment does not resolve to a Dict.
func (r *Refer) InitRun(isRoot bool, root Node) error {
	cur := root
	for _, seg := range r.path {
		if inv, ok := cur.(*Invisible); ok {
			cur = inv.inner
		}
		d, ok := cur.(*Dict)
		if !ok {
			return ErrKeyNotFound
		}
		child, ok := d.Child(seg)
		if !ok {
			return ErrKeyNotFound
		}
		cur = child
	}
	resolved := cur.clone()
	if err := resolved.InitRun(isRoot, root); err != nil {
		return err
	}
	r.resolved = resolved
	return nil
}

func (r *Refer) Lock() {
	if r.resolved != nil {
		r.resolved.Lock()
	}
}

func (r *Refer) Unlock() {
	if r.resolved != nil {
		r.resolved.Unlock()
	}
}

func (r *Refer) ResetUsage() {
	if r.resolved != nil {
		r.resolved.ResetUsage()
	}
}

func (r *Refer) SetUsage(u bool) {
	if r.resolved != nil {
		r.resolved.SetUsage(u)
	}
}

func (r *Refer) Used() bool {
	if r.resolved == nil {
		return false
	}
	return r.resolved.Used()
}

func (r *Refer) MergeUsage(other Node) error {
	o, ok := other.(*Refer)
	if !ok {
		return ErrShapeMismatch
	}
	if r.resolved == nil || o.resolved == nil {
		return nil
	}
	return r.resolved.MergeUsage(o.resolved)
}

func (r *Refer) SQLData(opts SQLOptions) (any, error) {
	if r.resolved == nil {
		return nil, ErrKeyNotFound
	}
	return r.resolved.SQLData(opts)
}

// clone copies the path but deliberately drops resolved: a clone is about
// to be slotted into a different environment instance and must wait for
// its own InitRun to (re-)resolve against that instance's root.
func (r *Refer) clone() Node {
	return &Refer{path: append([]string(nil), r.path...)}
}
