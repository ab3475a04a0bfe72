package journey

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/sephiram591/journeymaps/internal/cachestore"
	"github.com/sephiram591/journeymaps/internal/ioregistry"
	"github.com/sephiram591/journeymaps/internal/jpath"
	"github.com/sephiram591/journeymaps/internal/param"
)

type doublesPath struct {
	jpath.BasePath
}

func (p *doublesPath) Run(env *param.Dict, _ map[string]*jpath.SubpathResult, _ bool) (*jpath.Result, error) {
	xv, err := env.Get("x")
	if err != nil {
		return nil, err
	}
	x, ok := xv.(int64)
	if !ok {
		return nil, fmt.Errorf("x is not an int64: %T", xv)
	}
	return &jpath.Result{SQL: map[string]any{"y": x * 2}}, nil
}

// TestLoadIgnoresUnusedUncastableSiblings reproduces a regression: an env
// carrying an unused, non-SQL-castable top-level param (a raw slice, as
// internal/config/config.go's buildNode produces for a JSON array) must
// not turn a second run's load probe into a hard error. Only env.x is ever
// read by doublesPath, so "tags" must never be projected.
func TestLoadIgnoresUnusedUncastableSiblings(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := cachestore.Open(filepath.Join(dir, "cache.db"), 16)
	if err != nil {
		t.Fatalf("cachestore.Open: %v", err)
	}
	defer store.Close()

	root := param.NewDict()
	root.Set("x", param.NewInt(3))
	root.Set("tags", param.NewValue([]any{1, 2, 3}))

	j := New("regress", root, store, filepath.Join(dir, "results"), ioregistry.New(), nil)
	p := &doublesPath{BasePath: jpath.NewBasePath("double", "", false, nil, nil)}
	if err := j.AddPath(p); err != nil {
		t.Fatalf("AddPath: %v", err)
	}

	result, err := j.Run(ctx, "double", jpath.DefaultPathOptions())
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if result.SQL["y"] != int64(6) {
		t.Fatalf("y = %v, want 6", result.SQL["y"])
	}

	// the second run exercises load()'s cache probe against the same root
	// environment, which still carries the unused "tags" slice.
	result2, err := j.Run(ctx, "double", jpath.DefaultPathOptions())
	if err != nil {
		t.Fatalf("second Run (cache probe): %v", err)
	}
	if result2.SQL["y"] != int64(6) {
		t.Fatalf("cached y = %v, want 6", result2.SQL["y"])
	}
}
