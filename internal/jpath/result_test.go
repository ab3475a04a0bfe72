package jpath

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/sephiram591/journeymaps/internal/ioregistry"
)

func TestResultGetFallsBackFromSQLToFile(t *testing.T) {
	r := &Result{
		SQL:  map[string]any{"y": 6},
		File: map[string]any{"blob": []byte("data")},
	}

	if v, ok := r.Get("y"); !ok || v != 6 {
		t.Fatalf("expected SQL hit, got %v, %v", v, ok)
	}
	if v, ok := r.Get("blob"); !ok {
		t.Fatalf("expected File fallback, got %v, %v", v, ok)
	}
	if _, ok := r.Get("missing"); ok {
		t.Fatal("expected a miss for an unknown key")
	}
}

func TestResultToFileEmptyReturnsNilSchema(t *testing.T) {
	r := NewResult()
	reg := ioregistry.New()
	schema, err := r.ToFile(reg, filepath.Join(t.TempDir(), "base"), false, nil)
	if err != nil {
		t.Fatalf("ToFile: %v", err)
	}
	if schema != nil {
		t.Errorf("expected nil schema for empty File, got %v", schema)
	}
}

func TestResultToFileFromFileRoundtrip(t *testing.T) {
	tmpDir := t.TempDir()
	reg := ioregistry.New()

	r := NewResult()
	r.File["payload"] = []byte("hello world")

	schema, err := r.ToFile(reg, filepath.Join(tmpDir, "result"), false, nil)
	if err != nil {
		t.Fatalf("ToFile: %v", err)
	}
	if schema["payload"] != reflect.TypeOf([]byte(nil)).String() {
		t.Errorf("unexpected schema entry: %v", schema)
	}

	loaded := NewResult()
	if err := loaded.FromFile(reg, filepath.Join(tmpDir, "result"), schema); err != nil {
		t.Fatalf("FromFile: %v", err)
	}
	if string(loaded.File["payload"].([]byte)) != "hello world" {
		t.Errorf("roundtrip mismatch: %v", loaded.File["payload"])
	}
}

func TestResultFromFileNilSchemaLeavesFileUntouched(t *testing.T) {
	r := NewResult()
	reg := ioregistry.New()
	if err := r.FromFile(reg, "/irrelevant", nil); err != nil {
		t.Fatalf("FromFile: %v", err)
	}
	if len(r.File) != 0 {
		t.Errorf("expected File to remain empty, got %v", r.File)
	}
}
