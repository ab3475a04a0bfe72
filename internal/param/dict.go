package param

import "sort"

// Dict is an ordered name -> Node mapping (spec.md §3). Insertion order is
// preserved explicitly via keyOrder, mirroring the teacher's habit of
// keeping priority-ordered slices alongside maps (internal/core/modules.go's
// ModuleManager.hooks) rather than relying on Go's unordered map iteration.
type Dict struct {
	children map[string]Node
	keyOrder []string
	locked   bool
	used     bool
}

var _ Node = (*Dict)(nil)

// NewDict returns an empty, unlocked Dict.
func NewDict() *Dict {
	return &Dict{children: make(map[string]Node)}
}

// Set assigns key to n, appending key to the insertion order if new. Fails
// with ErrLockedMutation if the Dict is locked — this is the only user-
// facing mutation entry point; InitRun/Replace use setInternal to bypass
// the lock for runtime (not user) mutation, per spec.md §4.2.
func (d *Dict) Set(key string, n Node) error {
	if d.locked {
		return ErrLockedMutation
	}
	d.setInternal(key, n)
	return nil
}

func (d *Dict) setInternal(key string, n Node) {
	if _, exists := d.children[key]; !exists {
		d.keyOrder = append(d.keyOrder, key)
	}
	d.children[key] = n
}

// Child returns the raw node at key without affecting usage tracking —
// for structural navigation (Refer resolution, Replace, the journey
// engine's fingerprint-time leaf walk).
func (d *Dict) Child(key string) (Node, bool) {
	n, ok := d.children[key]
	return n, ok
}

// Keys returns the dict's keys in insertion order.
func (d *Dict) Keys() []string {
	out := make([]string, len(d.keyOrder))
	copy(out, d.keyOrder)
	return out
}

// Get evaluates the child at key: Values/Buffers/XBuffers return their
// evaluated scalar and mark themselves used; a nested Dict/Invisible/Refer
// is unwrapped/delegated. Traversing through this Dict to reach key also
// marks the Dict itself used (spec.md is silent on how a composite node's
// own `used` becomes true; this is the documented interpretation — see
// DESIGN.md). SQL projection does not depend on a nested Dict's own flag:
// SQLData always recurses into nested Dicts and keeps their used leaves.
func (d *Dict) Get(key string) (any, error) {
	n, ok := d.children[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	d.used = true
	return evaluate(n)
}

// evaluate returns the "read" value of a node: Value/Buffer/XBuffer return
// their scalar, a nested Dict is returned as-is for further navigation,
// Invisible/Refer delegate to what they wrap.
func evaluate(n Node) (any, error) {
	switch t := n.(type) {
	case *Value:
		return t.GetValue(), nil
	case *Buffer:
		return t.Evaluate()
	case *YBuffer:
		return t.Evaluate()
	case *XBuffer:
		return t.Evaluate()
	case *Invisible:
		return evaluate(t.inner)
	case *Refer:
		if t.resolved == nil {
			return nil, ErrKeyNotFound
		}
		return evaluate(t.resolved)
	case *Dict:
		return t, nil
	default:
		return nil, ErrUnsupportedValueType
	}
}

// Replace merges other's keys into d, overwriting matching slots (used to
// apply a batch overlay onto a subpath's deep-copied environment, spec.md
// §4.7.2). Dtypes survive replace: if the existing slot and the incoming
// slot are both *Value and the incoming one has no explicit dtype, the
// existing dtype propagates onto it (spec.md §3). Replace bypasses the
// lock — it is runtime wiring (performed by the journey engine before a
// subpath run), not user mutation.
func (d *Dict) Replace(other *Dict) {
	for _, key := range other.keyOrder {
		incoming := other.children[key]
		if existing, ok := d.children[key]; ok {
			if ev, ok := existing.(*Value); ok {
				if iv, ok := incoming.(*Value); ok && iv.dtype == DTypeNone && ev.dtype != DTypeNone {
					iv.dtype = ev.dtype
				}
			}
		}
		d.setInternal(key, incoming)
	}
}

func (d *Dict) Lock() {
	d.locked = true
	for _, key := range d.keyOrder {
		d.children[key].Lock()
	}
}

func (d *Dict) Unlock() {
	d.locked = false
	for _, key := range d.keyOrder {
		d.children[key].Unlock()
	}
}

func (d *Dict) ResetUsage() {
	d.used = false
	for _, key := range d.keyOrder {
		d.children[key].ResetUsage()
	}
}

func (d *Dict) SetUsage(u bool) { d.used = u }
func (d *Dict) Used() bool      { return d.used }

func (d *Dict) InitRun(isRoot bool, root Node) error {
	for _, key := range d.keyOrder {
		if err := d.children[key].InitRun(isRoot, root); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dict) MergeUsage(other Node) error {
	o, ok := other.(*Dict)
	if !ok {
		return ErrShapeMismatch
	}
	d.used = d.used || o.used
	for _, key := range d.keyOrder {
		oc, ok := o.children[key]
		if !ok {
			continue // key only on this side: nothing to merge
		}
		if err := d.children[key].MergeUsage(oc); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dict) SQLData(opts SQLOptions) (any, error) {
	out := make(map[string]any)
	for _, key := range d.keyOrder {
		child := d.children[key]
		if inv, ok := child.(*Invisible); ok {
			if !opts.ShowInvisible {
				continue
			}
			child = inv.inner
		}
		// A nested Dict is always recursed into: it prunes its own unused
		// children, so a used descendant is projected even when the
		// intermediate Dict itself was never read through Get.
		if _, isDict := child.(*Dict); !isDict && !(child.Used() || opts.ShowUnused) {
			continue
		}
		val, err := child.SQLData(opts)
		if err != nil {
			return nil, err
		}
		if sub, ok := val.(map[string]any); ok {
			for sk, sv := range sub {
				out[key+"."+sk] = sv
			}
		} else {
			out[key] = val
		}
	}
	return out, nil
}

func (d *Dict) clone() Node {
	nd := &Dict{
		children: make(map[string]Node, len(d.children)),
		keyOrder: append([]string(nil), d.keyOrder...),
		locked:   d.locked,
		used:     d.used,
	}
	for k, v := range d.children {
		nd.children[k] = v.clone()
	}
	return nd
}

// SortedKeys returns the dict's keys in lexicographic order, for callers
// that need determinism rather than insertion order.
func (d *Dict) SortedKeys() []string {
	out := d.Keys()
	sort.Strings(out)
	return out
}
