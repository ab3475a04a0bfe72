package batch

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrEmptyID is unused today (Insert fills blank IDs with a uuid) but documents the
// sentinel a caller-supplied ID-generation hook could return to request
// auto-generation explicitly.
var ErrEmptyID = errors.New("batch: empty id")

// SchemaMismatchError is returned by Insert when an overlay's projected
// schema disagrees with the schema pinned by the batch's first insert
// (spec.md §4.5, ErrBatchSchemaMismatch).
type SchemaMismatchError struct {
	Keys []string // keys present in one schema, absent or differently-typed in the other
}

func (e *SchemaMismatchError) Error() string {
	sorted := append([]string(nil), e.Keys...)
	sort.Strings(sorted)
	return fmt.Sprintf("batch: schema mismatch on keys [%s]", strings.Join(sorted, ", "))
}
