// Package jpath defines the Path contract paths implement, plus the split
// SQL/file result type a path run produces.
package jpath

import (
	"sort"

	"github.com/dustin/go-humanize"

	"github.com/sephiram591/journeymaps/internal/ioregistry"
)

// FileSchema records, for each file-backed result key, the registered
// type name it was written under (ioregistry.Registry.Write's resolved
// reflect.Type, stringified) — the JSON-storable stand-in for a type
// reference, since a reflect.Type itself can't survive a round trip
// through the cache store.
type FileSchema map[string]string

// Result is a path's output: a split payload of small structured SQL
// values and larger opaque file-backed values (spec.md §4.4).
type Result struct {
	SQL  map[string]any
	File map[string]any
}

// NewResult returns an empty Result ready for Set calls.
func NewResult() *Result {
	return &Result{SQL: make(map[string]any), File: make(map[string]any)}
}

// Get indexes SQL first, falling back to File, per spec.md §4.4.
func (r *Result) Get(key string) (any, bool) {
	if v, ok := r.SQL[key]; ok {
		return v, true
	}
	v, ok := r.File[key]
	return v, ok
}

// ToFile writes every File entry through reg to basePath+"_"+key, in
// sorted key order for determinism, logging the written size in verbose
// mode the way the teacher's progress logging reports byte counts
// (humanize.Bytes). Returns nil (no file_schema) if File is empty.
func (r *Result) ToFile(reg *ioregistry.Registry, basePath string, verbose bool, logf func(string, ...any)) (FileSchema, error) {
	if len(r.File) == 0 {
		return nil, nil
	}

	keys := make([]string, 0, len(r.File))
	for k := range r.File {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	schema := make(FileSchema, len(keys))
	for _, key := range keys {
		path := basePath + "_" + key
		resolvedType, err := reg.Write(r.File[key], path)
		if err != nil {
			return nil, err
		}
		schema[key] = resolvedType.String()
		if verbose && logf != nil {
			if sz, ok := fileSize(path); ok {
				logf("wrote %s (%s)", path, humanize.Bytes(sz))
			}
		}
	}
	return schema, nil
}

// FromFile reconstructs File from schema, reading each entry back through
// reg using the type name recorded at save time. A nil schema leaves File
// untouched (spec.md §4.4: from_file with file_schema=None leaves file
// empty). An unrecognized type name falls back to the registry's generic
// JSON reader (ioregistry.AnyType) rather than failing outright.
func (r *Result) FromFile(reg *ioregistry.Registry, basePath string, schema FileSchema) error {
	if schema == nil {
		return nil
	}
	if r.File == nil {
		r.File = make(map[string]any)
	}
	for key, typeName := range schema {
		cls, ok := reg.TypeByName(typeName)
		if !ok {
			cls = ioregistry.AnyType
		}
		v, err := reg.Read(cls, basePath+"_"+key)
		if err != nil {
			return err
		}
		r.File[key] = v
	}
	return nil
}

func fileSize(path string) (uint64, bool) {
	info, err := statSize(path)
	if err != nil {
		return 0, false
	}
	return info, true
}
