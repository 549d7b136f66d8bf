package forest

import (
	"testing"
)

func TestTreeStartsAsRootLeaf(t *testing.T) {
	tr := NewTree()
	if !tr.IsLeaf(tr.Root()) {
		t.Fatal("fresh tree root should be a leaf")
	}
	if got := tr.NumLeaves(); got != 1 {
		t.Fatalf("expected 1 leaf, got %d", got)
	}
	if got := tr.Predict([]float64{1, 2, 3}); got != 0 {
		t.Fatalf("fresh tree should predict 0, got %g", got)
	}
}

func TestSplitAndRouting(t *testing.T) {
	tr := NewTree()
	left, right := tr.Split(tr.Root(), 0, 0.5)
	tr.SetLeafValue(left, -1)
	tr.SetLeafValue(right, 2)

	if got := tr.Predict([]float64{0.3}); got != -1 {
		t.Errorf("row below threshold should route left, got %g", got)
	}
	if got := tr.Predict([]float64{0.5}); got != -1 {
		t.Errorf("row at threshold should route left, got %g", got)
	}
	if got := tr.Predict([]float64{0.7}); got != 2 {
		t.Errorf("row above threshold should route right, got %g", got)
	}
	if tr.Depth(left) != 1 || tr.Depth(right) != 1 {
		t.Error("children of the root should sit at depth 1")
	}
}

func TestPruneRecyclesAndZeroes(t *testing.T) {
	tr := NewTree()
	left, right := tr.Split(tr.Root(), 0, 0.5)
	tr.SetLeafValue(left, 3)
	tr.SetLeafValue(right, 4)

	tr.Prune(tr.Root())
	if !tr.IsLeaf(tr.Root()) {
		t.Fatal("pruned root should be a leaf again")
	}
	if got := tr.Predict([]float64{0.1}); got != 0 {
		t.Fatalf("pruned leaf value should reset to 0, got %g", got)
	}

	// Recycled slots must be reused, not appended
	l2, r2 := tr.Split(tr.Root(), 1, 0.25)
	if (l2 != left && l2 != right) || (r2 != left && r2 != right) {
		t.Errorf("expected recycled indices %d/%d, got %d/%d", left, right, l2, r2)
	}
}

func TestPrunableNodes(t *testing.T) {
	tr := NewTree()
	left, _ := tr.Split(tr.Root(), 0, 0.5)
	tr.Split(left, 1, 0.3)

	prunable := tr.PrunableNodes(nil)
	if len(prunable) != 1 || prunable[0] != left {
		t.Fatalf("only the lower split should be prunable, got %v", prunable)
	}
	if got := tr.NumLeaves(); got != 3 {
		t.Fatalf("expected 3 leaves, got %d", got)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	tr := NewTree()
	left, right := tr.Split(tr.Root(), 0, 0.5)
	tr.SetLeafValue(left, 1)
	tr.SetLeafValue(right, 2)

	c := tr.Clone()
	tr.Prune(tr.Root())
	tr.SetLeafValue(tr.Root(), 99)

	if got := c.Predict([]float64{0.1}); got != 1 {
		t.Errorf("clone should keep the original structure, got %g", got)
	}
	if got := c.Predict([]float64{0.9}); got != 2 {
		t.Errorf("clone right leaf changed, got %g", got)
	}
}

func TestForestPredictSumsTrees(t *testing.T) {
	f := NewForest(3)
	for i, tr := range f.Trees {
		tr.SetLeafValue(tr.Root(), float64(i+1))
	}
	if got := f.Predict([]float64{0}); got != 6 {
		t.Fatalf("forest prediction should sum leaf values, got %g", got)
	}

	out := make([]float64, 2)
	f.PredictAll([][]float64{{0}, {1}}, out)
	if out[0] != 6 || out[1] != 6 {
		t.Fatalf("PredictAll mismatch: %v", out)
	}
}

func TestSnapshotContainerIsolation(t *testing.T) {
	c := NewSnapshotContainer()
	f := NewForest(1)
	f.Trees[0].SetLeafValue(f.Trees[0].Root(), 5)
	c.Append(f)

	// Mutations after the append must not leak into the stored snapshot
	f.Trees[0].SetLeafValue(f.Trees[0].Root(), -5)
	if got := c.Snapshot(0).Predict([]float64{0}); got != 5 {
		t.Fatalf("snapshot should be immutable, got %g", got)
	}

	m, err := c.PredictMatrix([][]float64{{0}, {1}})
	if err != nil {
		t.Fatal(err)
	}
	if len(m) != 2 || len(m[0]) != 1 || m[0][0] != 5 {
		t.Fatalf("unexpected prediction matrix %v", m)
	}
}

func TestPredictMatrixEmptyContainer(t *testing.T) {
	c := NewSnapshotContainer()
	if _, err := c.PredictMatrix([][]float64{{0}}); err == nil {
		t.Fatal("empty container should refuse to predict")
	}
}
