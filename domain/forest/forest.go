package forest

// Forest is an ordered collection of regression trees. Its prediction for a
// row is the sum of the scalars returned by routing the row through every
// tree.
type Forest struct {
	Trees []*Tree
}

// NewForest creates a forest of n single-leaf trees with zero root values
func NewForest(n int) *Forest {
	trees := make([]*Tree, n)
	for i := range trees {
		trees[i] = NewTree()
	}
	return &Forest{Trees: trees}
}

// NumTrees returns the ensemble size
func (f *Forest) NumTrees() int { return len(f.Trees) }

// Predict sums the per-tree predictions for one covariate row
func (f *Forest) Predict(row []float64) float64 {
	sum := 0.0
	for _, t := range f.Trees {
		sum += t.Predict(row)
	}
	return sum
}

// PredictAll writes the forest prediction of each row into out
func (f *Forest) PredictAll(rows [][]float64, out []float64) {
	for i, row := range rows {
		out[i] = f.Predict(row)
	}
}

// Clone returns an independent deep copy of the forest
func (f *Forest) Clone() *Forest {
	trees := make([]*Tree, len(f.Trees))
	for i, t := range f.Trees {
		trees[i] = t.Clone()
	}
	return &Forest{Trees: trees}
}
