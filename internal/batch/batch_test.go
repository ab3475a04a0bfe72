package batch

import "testing"

import "github.com/sephiram591/journeymaps/internal/param"

func overlayWith(k string, v *param.Value) *param.Dict {
	d := param.NewDict()
	d.Set(k, v)
	return d
}

func TestInsertGeneratesIDWhenEmpty(t *testing.T) {
	b := New()
	if err := b.Insert("", overlayWith("k", param.NewInt(1))); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	ids := b.Entries()
	if len(ids) != 1 || ids[0] == "" {
		t.Fatalf("expected one generated id, got %v", ids)
	}
}

func TestInsertPreservesOrderAndLookup(t *testing.T) {
	b := New()
	b.Insert("a", overlayWith("k", param.NewInt(1)))
	b.Insert("b", overlayWith("k", param.NewInt(2)))
	b.Insert("c", overlayWith("k", param.NewInt(3)))

	if got := b.Entries(); got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("expected insertion order, got %v", got)
	}

	overlay, ok := b.Overlay("b")
	if !ok {
		t.Fatal("expected to find overlay b")
	}
	v, _ := overlay.Get("k")
	if v != int64(2) {
		t.Errorf("overlay b: got %v, want 2", v)
	}
}

func TestInsertSchemaMismatchRejected(t *testing.T) {
	b := New()
	if err := b.Insert("a", overlayWith("k", param.NewInt(1))); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	err := b.Insert("b", overlayWith("k", param.NewString("oops")))
	if err == nil {
		t.Fatal("expected a schema mismatch error")
	}
	if _, ok := err.(*SchemaMismatchError); !ok {
		t.Fatalf("expected *SchemaMismatchError, got %T: %v", err, err)
	}
}

func TestInsertDifferentKeySetRejected(t *testing.T) {
	b := New()
	if err := b.Insert("a", overlayWith("k", param.NewInt(1))); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	err := b.Insert("b", overlayWith("other", param.NewInt(1)))
	if err == nil {
		t.Fatal("expected a schema mismatch error for a differing key set")
	}
}
