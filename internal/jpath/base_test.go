package jpath

import (
	"testing"

	"github.com/sephiram591/journeymaps/internal/param"
)

type doublePath struct {
	BasePath
}

func newDoublePath() *doublePath {
	return &doublePath{BasePath: NewBasePath("double", "", false, nil, nil)}
}

func (p *doublePath) Run(env *param.Dict, subResults map[string]*SubpathResult, verbose bool) (*Result, error) {
	x, _ := env.Get("x")
	xi := x.(int64)
	return &Result{SQL: map[string]any{"y": xi * 2}}, nil
}

func TestBasePathDefaultsAndEmbedding(t *testing.T) {
	var p Path = newDoublePath()

	if p.Name() != "double" {
		t.Errorf("Name: got %q", p.Name())
	}
	if p.SaveDatetime() {
		t.Error("expected default SaveDatetime=false")
	}
	if len(p.Subpaths()) != 0 {
		t.Errorf("expected no subpaths, got %v", p.Subpaths())
	}

	batch, err := p.GetBatches("anything", nil, nil)
	if err != nil || batch != nil {
		t.Fatalf("expected default GetBatches to report (nil, nil), got %v, %v", batch, err)
	}

	env := param.NewDict()
	env.Set("x", param.NewInt(3))
	result, err := p.Run(env, nil, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.SQL["y"] != int64(6) {
		t.Errorf("Run: got %v, want y=6", result.SQL)
	}
}
