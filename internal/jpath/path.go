package jpath

import (
	"github.com/sephiram591/journeymaps/internal/batch"
	"github.com/sephiram591/journeymaps/internal/param"
)

// SubpathResult wraps a completed subpath's output: a single Result when
// the subpath ran once, or a map of batch-id -> Result when the journey
// engine iterated a Batch for it.
type SubpathResult struct {
	Batched bool
	Single  *Result
	ByBatch map[string]*Result
}

// Path is a runnable step in a Journey's graph (spec.md §4.3): a name,
// optional changelog, a save_datetime flag, ordered dependencies on other
// paths (subpaths), which of those are batched, and the run/plot/batch
// hooks.
type Path interface {
	Name() string
	Changelog() string
	SaveDatetime() bool
	Subpaths() []string
	BatchedSubpaths() map[string]bool

	// Run is the path's own computation, given its (already locked, by the
	// journey engine) environment and its subpaths' already-computed
	// results.
	Run(env *param.Dict, subResults map[string]*SubpathResult, verbose bool) (*Result, error)

	// GetBatches returns the Batch to iterate for subpathName, or
	// (nil, nil) to run it singly (spec.md's None).
	GetBatches(subpathName string, env *param.Dict, previous map[string]*SubpathResult) (*batch.Batch, error)
}

// PlottablePath is an optional fire-and-forget hook invoked after a
// successful run when PathOptions.Plot is set.
type PlottablePath interface {
	Plot(result *Result, subResults map[string]*SubpathResult) error
}

// PathOptions controls a single Run invocation (spec.md §6). There is no
// dynamic option bag — every field the engine reads is declared here, so
// "unknown options fail validation" is satisfied structurally: a caller
// has no way to express one.
type PathOptions struct {
	ForceRunToDepth         int
	DisableSavingAndLoading bool
	Plot                    bool
	Verbose                 bool
	BatchTqdm               bool
}

// DefaultPathOptions matches spec.md §6's stated defaults.
func DefaultPathOptions() PathOptions {
	return PathOptions{Plot: true}
}
