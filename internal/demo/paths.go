// Package demo provides a handful of trivial Path implementations the CLI
// registers by default so `journeymaps run <path>` has something runnable
// out of the box. Concrete path implementations are explicitly out of
// scope for the engine itself (spec.md §1); these exist only to exercise
// the CLI/REPL end to end, the way a library ships a toy example rather
// than a real plugin.
package demo

import (
	"fmt"

	"github.com/sephiram591/journeymaps/internal/batch"
	"github.com/sephiram591/journeymaps/internal/jpath"
	"github.com/sephiram591/journeymaps/internal/param"
)

// doublePath reads env.x and returns 2x, matching spec.md §8 Scenario A
// exactly (the cache round-trip the testable properties describe).
type doublePath struct {
	jpath.BasePath
}

// NewDouble returns the "double" demo path.
func NewDouble() jpath.Path {
	return &doublePath{BasePath: jpath.NewBasePath("double", "initial", false, nil, nil)}
}

func (p *doublePath) Run(env *param.Dict, _ map[string]*jpath.SubpathResult, verbose bool) (*jpath.Result, error) {
	xv, err := env.Get("x")
	if err != nil {
		return nil, fmt.Errorf("demo double: %w", err)
	}
	x, ok := asInt64(xv)
	if !ok {
		return nil, fmt.Errorf("demo double: x is not numeric (%T)", xv)
	}
	return &jpath.Result{SQL: map[string]any{"y": x * 2}}, nil
}

// sumSquares depends on double and additionally reads its own env.z,
// demonstrating subpath result consumption (spec.md §4.7.2) without
// batching.
type sumSquares struct {
	jpath.BasePath
}

// NewSumSquares returns the "sum_squares" demo path, which depends on
// "double".
func NewSumSquares() jpath.Path {
	return &sumSquares{BasePath: jpath.NewBasePath("sum_squares", "initial", false, []string{"double"}, nil)}
}

func (p *sumSquares) Run(env *param.Dict, subResults map[string]*jpath.SubpathResult, verbose bool) (*jpath.Result, error) {
	zv, err := env.Get("z")
	if err != nil {
		return nil, fmt.Errorf("demo sum_squares: %w", err)
	}
	z, ok := asInt64(zv)
	if !ok {
		return nil, fmt.Errorf("demo sum_squares: z is not numeric (%T)", zv)
	}

	sub, ok := subResults["double"]
	if !ok || sub.Single == nil {
		return nil, fmt.Errorf("demo sum_squares: missing double result")
	}
	y, ok := asInt64(sub.Single.SQL["y"])
	if !ok {
		return nil, fmt.Errorf("demo sum_squares: double.y is not numeric")
	}

	return &jpath.Result{SQL: map[string]any{"total": z*z + y*y}}, nil
}

// sweep batches "double" over a small fixed set of x overlays, to
// demonstrate Batch (spec.md §4.5/§4.7.2 Scenario C) from the CLI.
type sweep struct {
	jpath.BasePath
}

// NewSweep returns the "sweep" demo path, which batches "double" over
// x in {1, 2, 3}.
func NewSweep() jpath.Path {
	return &sweep{BasePath: jpath.NewBasePath("sweep", "initial", false, []string{"double"}, map[string]bool{"double": true})}
}

func (p *sweep) GetBatches(subpathName string, env *param.Dict, previous map[string]*jpath.SubpathResult) (*batch.Batch, error) {
	if subpathName != "double" {
		return nil, nil
	}
	b := batch.New()
	for _, x := range []int64{1, 2, 3} {
		overlay := param.NewDict()
		if err := overlay.Set("x", param.NewInt(x)); err != nil {
			return nil, err
		}
		if err := b.Insert(fmt.Sprintf("x=%d", x), overlay); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (p *sweep) Run(env *param.Dict, subResults map[string]*jpath.SubpathResult, verbose bool) (*jpath.Result, error) {
	sub, ok := subResults["double"]
	if !ok || !sub.Batched {
		return nil, fmt.Errorf("demo sweep: missing batched double results")
	}
	var total int64
	for _, r := range sub.ByBatch {
		y, ok := asInt64(r.SQL["y"])
		if !ok {
			return nil, fmt.Errorf("demo sweep: double.y is not numeric")
		}
		total += y
	}
	return &jpath.Result{SQL: map[string]any{"total": total}}, nil
}

func asInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case int64:
		return t, true
	case int:
		return int64(t), true
	case float64:
		return int64(t), true
	default:
		return 0, false
	}
}

// All returns every demo path, ready to register with a Journey via
// AddPaths.
func All() []jpath.Path {
	return []jpath.Path{NewDouble(), NewSumSquares(), NewSweep()}
}
