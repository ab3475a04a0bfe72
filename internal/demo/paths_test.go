package demo

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/sephiram591/journeymaps/internal/cachestore"
	"github.com/sephiram591/journeymaps/internal/ioregistry"
	"github.com/sephiram591/journeymaps/internal/journey"
	"github.com/sephiram591/journeymaps/internal/jpath"
	"github.com/sephiram591/journeymaps/internal/param"
)

func newTestJourney(t *testing.T) *journey.Journey {
	t.Helper()
	dir := t.TempDir()
	store, err := cachestore.Open(filepath.Join(dir, "cache.db"), 16)
	if err != nil {
		t.Fatalf("cachestore.Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	root := param.NewDict()
	if err := root.Set("x", param.NewInt(3)); err != nil {
		t.Fatal(err)
	}
	if err := root.Set("z", param.NewInt(4)); err != nil {
		t.Fatal(err)
	}

	j := journey.New("demo", root, store, filepath.Join(dir, "results"), ioregistry.New(), nil)
	if err := j.AddPaths(All()...); err != nil {
		t.Fatalf("AddPaths: %v", err)
	}
	return j
}

func TestDoubleRun(t *testing.T) {
	env := param.NewDict()
	env.Set("x", param.NewInt(5))

	p := NewDouble()
	result, err := p.Run(env, nil, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.SQL["y"] != int64(10) {
		t.Errorf("y = %v, want 10", result.SQL["y"])
	}
}

func TestJourneySumSquaresMissThenHit(t *testing.T) {
	j := newTestJourney(t)
	ctx := context.Background()

	result, err := j.Run(ctx, "sum_squares", jpath.DefaultPathOptions())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// x=3 -> double.y=6 -> y^2=36; z=4 -> z^2=16; total=52
	if result.SQL["total"] != int64(52) {
		t.Fatalf("total = %v, want 52", result.SQL["total"])
	}

	result2, err := j.Run(ctx, "sum_squares", jpath.DefaultPathOptions())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if result2.SQL["total"] != int64(52) {
		t.Fatalf("cached total = %v, want 52", result2.SQL["total"])
	}
}

func TestJourneySweepBatchesDouble(t *testing.T) {
	j := newTestJourney(t)
	ctx := context.Background()

	result, err := j.Run(ctx, "sweep", jpath.DefaultPathOptions())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// double(1)+double(2)+double(3) = 2+4+6 = 12
	if result.SQL["total"] != int64(12) {
		t.Fatalf("total = %v, want 12", result.SQL["total"])
	}
}

func TestAllReturnsThreePaths(t *testing.T) {
	paths := All()
	if len(paths) != 3 {
		t.Fatalf("All() returned %d paths, want 3", len(paths))
	}
}
