package param

import "testing"

func TestValueGetValueMarksOnlyItself(t *testing.T) {
	root := NewDict()
	root.Set("a", NewInt(1))
	root.Set("b", NewInt(2))

	a, _ := root.Child("a")
	if a.Used() {
		t.Fatal("a should start unused")
	}

	av := a.(*Value)
	if got := av.GetValue(); got != int64(1) {
		t.Errorf("GetValue: got %v, want 1", got)
	}
	if !av.Used() {
		t.Error("a should be used after GetValue")
	}

	b, _ := root.Child("b")
	if b.Used() {
		t.Error("sibling b should remain unused")
	}
}

func TestResetUsageIsRecursiveAndIdempotent(t *testing.T) {
	inner := NewDict()
	inner.Set("x", NewInt(1))
	root := NewDict()
	root.Set("inner", inner)

	innerVal, _ := inner.Child("x")
	innerVal.(*Value).GetValue()
	root.Get("inner")

	root.ResetUsage()
	if innerVal.Used() || inner.Used() || root.Used() {
		t.Fatal("ResetUsage should zero usage at every depth")
	}

	// idempotent: resetting an already-reset tree changes nothing
	root.ResetUsage()
	if innerVal.Used() || inner.Used() || root.Used() {
		t.Fatal("ResetUsage should be idempotent")
	}
}

func TestMergeUsageIsOrMonotoneAndTolerant(t *testing.T) {
	a := NewDict()
	a.Set("x", NewInt(1))
	a.Set("y", NewInt(2))

	b := a.clone().(*Dict)

	xa, _ := a.Child("x")
	xa.(*Value).GetValue()

	yb, _ := b.Child("y")
	yb.(*Value).GetValue()

	if err := a.MergeUsage(b); err != nil {
		t.Fatalf("MergeUsage: %v", err)
	}
	xr, _ := a.Child("x")
	yr, _ := a.Child("y")
	if !xr.Used() || !yr.Used() {
		t.Fatal("MergeUsage should OR usage across matching keys")
	}

	// merging again must not change anything (monotone, idempotent)
	if err := a.MergeUsage(b); err != nil {
		t.Fatalf("second MergeUsage: %v", err)
	}
	if !xr.Used() || !yr.Used() {
		t.Fatal("MergeUsage should stay true once set")
	}
}

func TestMergeUsageToleratesExtraKeys(t *testing.T) {
	a := NewDict()
	a.Set("x", NewInt(1))

	b := NewDict()
	b.Set("x", NewInt(1))
	b.Set("extra", NewInt(9))
	extra, _ := b.Child("extra")
	extra.(*Value).GetValue()

	if err := a.MergeUsage(b); err != nil {
		t.Fatalf("MergeUsage with extra key on other side: %v", err)
	}
	if _, ok := a.Child("extra"); ok {
		t.Fatal("MergeUsage must not introduce keys missing on the receiver")
	}
}

func TestLockPropagatesToDescendants(t *testing.T) {
	leafArgs := NewDict()
	buf := NewBuffer("total", func(args *Dict) (any, error) { return int64(1), nil })
	leafArgs.Set("buf", buf)

	root := NewDict()
	root.Set("child", leafArgs)
	root.Lock()

	if err := leafArgs.Set("new", NewInt(1)); err != ErrLockedMutation {
		t.Fatalf("nested dict should be locked, got err=%v", err)
	}
	if err := buf.SetArg("feature", NewInt(1)); err != ErrLockedMutation {
		t.Fatalf("buffer args should be locked via propagation, got err=%v", err)
	}

	root.Unlock()
	if err := leafArgs.Set("new", NewInt(1)); err != nil {
		t.Fatalf("dict should accept mutation after Unlock: %v", err)
	}
}

func TestCloneIsIndependentDeepCopy(t *testing.T) {
	root := NewDict()
	root.Set("x", NewInt(1))

	clone := root.clone().(*Dict)
	xv, _ := clone.Child("x")
	xv.(*Value).GetValue()

	orig, _ := root.Child("x")
	if orig.Used() {
		t.Fatal("mutating the clone must not affect the original")
	}
}

func TestDictSQLDataFlattensDottedKeysAndPrunesUnused(t *testing.T) {
	inner := NewDict()
	inner.Set("a", NewInt(1))
	inner.Set("b", NewInt(2))

	root := NewDict()
	root.Set("inner", inner)
	root.Set("top", NewInt(3))

	// only touch inner.a and top
	ia, _ := inner.Child("a")
	ia.(*Value).GetValue()
	root.Get("top")

	data, err := root.SQLData(SQLOptions{})
	if err != nil {
		t.Fatalf("SQLData: %v", err)
	}
	m := data.(map[string]any)
	if _, ok := m["inner.a"]; !ok {
		t.Error("expected inner.a to be projected")
	}
	if _, ok := m["inner.b"]; ok {
		t.Error("inner.b was never used, should be pruned")
	}
	if _, ok := m["top"]; !ok {
		t.Error("expected top to be projected")
	}
}

func TestDictSQLDataShowUnusedIncludesEverything(t *testing.T) {
	root := NewDict()
	root.Set("a", NewInt(1))
	root.Set("b", NewInt(2))

	data, err := root.SQLData(SQLOptions{ShowUnused: true})
	if err != nil {
		t.Fatalf("SQLData: %v", err)
	}
	m := data.(map[string]any)
	if len(m) != 2 {
		t.Errorf("expected both keys with ShowUnused, got %v", m)
	}
}

func TestInvisibleHiddenUnlessShown(t *testing.T) {
	root := NewDict()
	root.Set("secret", NewInvisible(NewInt(1)))
	s, _ := root.Child("secret")
	s.(*Invisible).Inner().(*Value).GetValue()

	data, err := root.SQLData(SQLOptions{})
	if err != nil {
		t.Fatalf("SQLData: %v", err)
	}
	m := data.(map[string]any)
	if _, ok := m["secret"]; ok {
		t.Error("invisible node should be hidden by default")
	}

	data, err = root.SQLData(SQLOptions{ShowInvisible: true})
	if err != nil {
		t.Fatalf("SQLData with ShowInvisible: %v", err)
	}
	m = data.(map[string]any)
	if _, ok := m["secret"]; !ok {
		t.Error("invisible node should appear when ShowInvisible is set")
	}
}

func TestBufferMemoizesUntilInitRun(t *testing.T) {
	calls := 0
	buf := NewBuffer("total", func(args *Dict) (any, error) {
		calls++
		v, _ := args.Get("n")
		return v, nil
	})
	buf.SetArg("n", NewInt(5))

	v1, err := buf.Evaluate()
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	v2, err := buf.Evaluate()
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if v1 != v2 || calls != 1 {
		t.Fatalf("expected a single memoized computation, got %d calls", calls)
	}

	if err := buf.InitRun(true, buf); err != nil {
		t.Fatalf("InitRun: %v", err)
	}
	if _, err := buf.Evaluate(); err != nil {
		t.Fatalf("Evaluate after InitRun: %v", err)
	}
	if calls != 2 {
		t.Fatalf("InitRun should clear the memo, want 2 calls got %d", calls)
	}
}

func TestPersistentBufferSurvivesNonRootInitRun(t *testing.T) {
	calls := 0
	buf := NewPersistentBuffer("expensive", func(args *Dict) (any, error) {
		calls++
		return int64(1), nil
	})
	buf.Evaluate()
	buf.InitRun(false, buf)
	buf.Evaluate()
	if calls != 1 {
		t.Fatalf("persistent buffer should not recompute on non-root InitRun, got %d calls", calls)
	}

	buf.InitRun(true, buf)
	buf.Evaluate()
	if calls != 2 {
		t.Fatalf("persistent buffer should recompute on root InitRun, got %d calls", calls)
	}
}

func TestNeverResetBufferIgnoresRootInitRun(t *testing.T) {
	calls := 0
	buf := NewBufferWithReset("fixed", func(args *Dict) (any, error) {
		calls++
		return int64(1), nil
	}, ResetNever)
	buf.Evaluate()
	buf.InitRun(true, buf)
	buf.Evaluate()
	buf.InitRun(false, buf)
	buf.Evaluate()
	if calls != 1 {
		t.Fatalf("ResetNever buffer should never recompute after InitRun, got %d calls", calls)
	}
}

func TestXBufferProjectsOnlyCastOutput(t *testing.T) {
	xb := NewTypedXBuffer("scaled", func(args *Dict) (any, error) {
		return float64(2), nil
	}, DTypeFloat)
	xb.SetArg("ignored", NewInt(99))
	xb.SetUsage(true)

	data, err := xb.SQLData(SQLOptions{})
	if err != nil {
		t.Fatalf("SQLData: %v", err)
	}
	if data != float64(2) {
		t.Errorf("expected bare cast output, got %v", data)
	}

	schema, err := xb.SQLData(SQLOptions{ReturnSchema: true})
	if err != nil {
		t.Fatalf("SQLData schema: %v", err)
	}
	if schema != "float" {
		t.Errorf("expected float schema tag, got %v", schema)
	}
}

func TestReferResolvesDottedPathAndClonesTarget(t *testing.T) {
	root := NewDict()
	inner := NewDict()
	inner.Set("value", NewInt(42))
	root.Set("inner", inner)
	root.Set("ref", NewRefer("inner", "value"))

	if err := root.InitRun(true, root); err != nil {
		t.Fatalf("InitRun: %v", err)
	}

	refNode, _ := root.Child("ref")
	ref := refNode.(*Refer)
	resolved, ok := ref.Resolved().(*Value)
	if !ok {
		t.Fatal("expected Refer to resolve to a *Value")
	}
	if got := resolved.GetValue(); got != int64(42) {
		t.Errorf("resolved value: got %v, want 42", got)
	}

	// the resolved node must be an independent clone, not the original
	innerValue, _ := inner.Child("value")
	if innerValue.Used() {
		t.Error("resolving a Refer must not mark the referent used")
	}
}

func TestDictMergeUsageAcrossXBufferAndYBufferChildren(t *testing.T) {
	root := NewDict()
	root.Set("scaled", NewTypedXBuffer("scaled", func(args *Dict) (any, error) {
		return float64(2), nil
	}, DTypeFloat))
	root.Set("target", NewYBuffer("target", func(args *Dict) (any, error) {
		return int64(1), nil
	}))

	other := root.clone().(*Dict)
	otherScaled, _ := other.Child("scaled")
	otherScaled.(*XBuffer).SetUsage(true)
	otherTarget, _ := other.Child("target")
	otherTarget.(*YBuffer).SetUsage(true)

	if err := root.MergeUsage(other); err != nil {
		t.Fatalf("MergeUsage across XBuffer/YBuffer: %v", err)
	}
	scaled, _ := root.Child("scaled")
	if !scaled.Used() {
		t.Error("expected XBuffer usage to merge in, not fail with a shape mismatch")
	}
	target, _ := root.Child("target")
	if !target.Used() {
		t.Error("expected YBuffer usage to merge in, not fail with a shape mismatch")
	}
}

func TestBufferEvaluateMarksUsedOnMemoReplay(t *testing.T) {
	buf := NewBufferWithReset("fixed", func(args *Dict) (any, error) {
		return int64(1), nil
	}, ResetNever)

	if _, err := buf.Evaluate(); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	buf.ResetUsage()
	if buf.Used() {
		t.Fatal("ResetUsage should clear used")
	}

	if _, err := buf.Evaluate(); err != nil {
		t.Fatalf("Evaluate from memo: %v", err)
	}
	if !buf.Used() {
		t.Error("replaying a memoized value should still mark the buffer used")
	}
}

func TestReferMissingPathFailsInitRun(t *testing.T) {
	root := NewDict()
	root.Set("ref", NewRefer("missing", "value"))
	if err := root.InitRun(true, root); err == nil {
		t.Fatal("expected InitRun to fail on an unresolvable Refer path")
	}
}
