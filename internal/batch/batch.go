// Package batch implements named multi-run environment overlays with
// schema validation across inserts (spec.md §4.5).
package batch

import (
	"github.com/google/uuid"

	"github.com/sephiram591/journeymaps/internal/param"
)

type entry struct {
	id      string
	overlay *param.Dict
}

// Batch is an ordered batch_id -> overlay mapping. The first Insert pins
// the expected param schema; every later Insert is deep-diffed against it.
type Batch struct {
	entries []entry
	byID    map[string]int
	schema  param.SQLSchema
}

// New returns an empty Batch.
func New() *Batch {
	return &Batch{byID: make(map[string]int)}
}

// Insert adds overlay under id, generating a uuid when id is empty (for
// programmatically-built batches, e.g. a parameter sweep, that have no
// natural name). The first Insert's projected schema (ShowUnused,
// ShowInvisible, ReturnSchema all true) becomes the batch's pinned schema;
// subsequent inserts whose overlay schema differs fail with
// *SchemaMismatchError naming the differing keys.
func (b *Batch) Insert(id string, overlay *param.Dict) error {
	if id == "" {
		id = uuid.New().String()
	}

	projected, err := overlay.SQLData(param.SQLOptions{ShowUnused: true, ShowInvisible: true, ReturnSchema: true})
	if err != nil {
		return err
	}
	schema, err := toSQLSchema(projected)
	if err != nil {
		return err
	}

	if b.schema == nil {
		b.schema = schema
	} else if diff := diffSchema(b.schema, schema); len(diff) > 0 {
		return &SchemaMismatchError{Keys: diff}
	}

	if idx, exists := b.byID[id]; exists {
		b.entries[idx] = entry{id: id, overlay: overlay}
		return nil
	}
	b.byID[id] = len(b.entries)
	b.entries = append(b.entries, entry{id: id, overlay: overlay})
	return nil
}

// Entries returns batch IDs in insertion order.
func (b *Batch) Entries() []string {
	out := make([]string, len(b.entries))
	for i, e := range b.entries {
		out[i] = e.id
	}
	return out
}

// Overlay returns the overlay registered under id.
func (b *Batch) Overlay(id string) (*param.Dict, bool) {
	idx, ok := b.byID[id]
	if !ok {
		return nil, false
	}
	return b.entries[idx].overlay, true
}

// Len reports the number of entries in the batch.
func (b *Batch) Len() int { return len(b.entries) }

func toSQLSchema(projected any) (param.SQLSchema, error) {
	m, ok := projected.(map[string]any)
	if !ok {
		return param.SQLSchema{}, nil
	}
	out := make(param.SQLSchema, len(m))
	for k, v := range m {
		tag, ok := v.(string)
		if !ok {
			return nil, param.ErrUnsupportedValueType
		}
		out[k] = tag
	}
	return out, nil
}

// diffSchema returns the keys where a and b disagree, either by presence
// or by type tag.
func diffSchema(a, b param.SQLSchema) []string {
	var diff []string
	seen := make(map[string]bool)
	for k, av := range a {
		seen[k] = true
		if bv, ok := b[k]; !ok || bv != av {
			diff = append(diff, k)
		}
	}
	for k := range b {
		if seen[k] {
			continue
		}
		diff = append(diff, k)
	}
	return diff
}
