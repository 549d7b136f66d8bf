package sampler

import (
	"context"
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"

	"gobart/domain/chain"
	"gobart/domain/dataset"
	"gobart/domain/forest"
)

// Structural move mix in standard Metropolis-Hastings mode
const (
	probGrow  = 0.25
	probPrune = 0.25
	// change takes the remainder
)

// EnsembleSampler maintains the active forest and mutates it toward higher
// posterior density given the current working regression target and the
// tree-structure prior. Each call backfits every tree in turn: partial
// residual, a structural update (grow-from-root in warm-start mode,
// grow/prune/change Metropolis-Hastings otherwise), then a conjugate redraw
// of all leaf values.
type EnsembleSampler struct {
	cfg       chain.Config
	rows      [][]float64
	ftypes    []dataset.FeatureType
	weights   []float64
	wTotal    float64
	outcome   []int
	numLevels int
	aux       *chain.AuxState
	forest    *forest.Forest
	container *forest.SnapshotContainer
	rng       *rand.Rand

	treePred  [][]float64 // cached per-tree predictions
	sumPred   []float64   // running forest prediction over all trees
	target    []float64   // working regression target, fixed per call
	obsWeight []float64   // per-observation curvature weight, fixed per call
	resid     []float64   // partial residual for the tree being updated
	assign   []int32     // leaf assignment of every observation
	leafBuf  []int32
	nodeBuf  []int32
}

// NewEnsembleSampler wires the tree sampler to the shared state. The forest
// must start as all single-leaf zero trees so the cached predictions are
// consistent.
func NewEnsembleSampler(
	cfg chain.Config,
	bundle *dataset.CovariateBundle,
	outcome *dataset.OrdinalOutcome,
	aux *chain.AuxState,
	active *forest.Forest,
	container *forest.SnapshotContainer,
	rng *rand.Rand,
) *EnsembleSampler {
	n := bundle.NumRows()
	treePred := make([][]float64, cfg.NumTrees)
	for t := range treePred {
		treePred[t] = make([]float64, n)
	}
	wTotal := 0.0
	for _, w := range bundle.VariableWeights {
		wTotal += w
	}
	return &EnsembleSampler{
		cfg:       cfg,
		rows:      bundle.Rows,
		ftypes:    bundle.FeatureTypes,
		weights:   bundle.VariableWeights,
		wTotal:    wTotal,
		outcome:   outcome.Values,
		numLevels: outcome.NumLevels,
		aux:       aux,
		forest:    active,
		container: container,
		rng:       rng,
		treePred:  treePred,
		sumPred:   make([]float64, n),
		target:    make([]float64, n),
		obsWeight: make([]float64, n),
		resid:     make([]float64, n),
		assign:    make([]int32, n),
	}
}

// CurrentPredictions returns the cached forest prediction for every training
// observation, consistent with the trees after the latest update.
func (s *EnsembleSampler) CurrentPredictions() []float64 {
	return s.sumPred
}

// SampleIteration runs one full pass over the ensemble. In warm-start mode
// each tree is rebuilt from its root by greedy grid search; otherwise each
// tree receives one Metropolis-Hastings structural proposal. Leaf values are
// redrawn from their conjugate posterior either way. When persist is set an
// immutable copy of the forest is appended to the snapshot sequence.
func (s *EnsembleSampler) SampleIteration(ctx context.Context, warmStart, persist bool) error {
	s.computeTarget()
	for t := range s.forest.Trees {
		if err := s.partialResidual(ctx, t); err != nil {
			return err
		}
		if warmStart {
			s.growFromRoot(t)
		} else {
			s.metropolisStep(t)
		}
		s.drawLeafValues(t)
		if err := s.refreshTreePred(ctx, t); err != nil {
			return err
		}
	}
	if persist {
		s.container.Append(s.forest)
	}
	return nil
}

// computeTarget derives the regression target and observation weights from
// the auxiliary store. One Newton step of the augmented log-likelihood
// delta_i*lambda - (z_i e^{-lambda_i}) e^{lambda} at the current prediction
// gives working response r_i = lambda_i + delta_i/z_i - 1 with curvature
// weight z_i, where delta_i indicates a non-terminal category. A small
// latent inflates the response and shrinks the weight by the same factor,
// so the weighted leaf statistics stay bounded.
func (s *EnsembleSampler) computeTarget() {
	top := s.numLevels - 1
	for i := range s.target {
		d := 0.0
		if s.outcome[i] < top {
			d = 1.0
		}
		z := s.aux.Latent[i]
		s.target[i] = s.sumPred[i] + d/z - 1.0
		s.obsWeight[i] = z
	}
}

// partialResidual computes target minus the predictions of every tree other
// than tree t.
func (s *EnsembleSampler) partialResidual(ctx context.Context, t int) error {
	tp := s.treePred[t]
	return forEachChunk(ctx, len(s.resid), s.cfg.NumWorkers, func(a, b int) error {
		for i := a; i < b; i++ {
			s.resid[i] = s.target[i] - s.sumPred[i] + tp[i]
		}
		return nil
	})
}

// refreshTreePred recomputes tree t's predictions and folds the delta into
// the running forest total.
func (s *EnsembleSampler) refreshTreePred(ctx context.Context, t int) error {
	tr := s.forest.Trees[t]
	tp := s.treePred[t]
	return forEachChunk(ctx, len(tp), s.cfg.NumWorkers, func(a, b int) error {
		for i := a; i < b; i++ {
			p := tr.Predict(s.rows[i])
			s.sumPred[i] += p - tp[i]
			tp[i] = p
		}
		return nil
	})
}

// leafStat accumulates the weighted sufficient statistics of a leaf's
// residuals: raw count, total weight, and weighted residual sum.
type leafStat struct {
	n   float64
	w   float64
	sum float64
}

func (st *leafStat) add(r, w float64) {
	st.n++
	st.w += w
	st.sum += w * r
}

// logMarginal integrates the leaf value out under the Gaussian conjugate
// prior N(0, LeafScale^2) for the weighted leaf model, keeping only the
// terms that differ between competing structures over the same observations.
func (s *EnsembleSampler) logMarginal(st leafStat) float64 {
	tau2 := s.cfg.LeafScale * s.cfg.LeafScale
	denom := 1.0 + st.w*tau2
	return -0.5*math.Log(denom) + 0.5*tau2*st.sum*st.sum/denom
}

// splitProb is the prior probability that a node at the given depth splits:
// alpha * (1+depth)^-beta, truncated to zero at the depth bound.
func (s *EnsembleSampler) splitProb(depth int) float64 {
	if depth >= s.cfg.MaxDepth {
		return 0
	}
	return s.cfg.TreeAlpha * math.Pow(1+float64(depth), -s.cfg.TreeBeta)
}

func (s *EnsembleSampler) computeAssignments(tr *forest.Tree) {
	for i, row := range s.rows {
		s.assign[i] = tr.LeafFor(row)
	}
}

func (s *EnsembleSampler) leafCounts() map[int32]int {
	counts := make(map[int32]int)
	for _, a := range s.assign {
		counts[a]++
	}
	return counts
}

// drawFeature samples a split feature proportionally to the variable weights
func (s *EnsembleSampler) drawFeature() int {
	u := s.rng.Float64() * s.wTotal
	acc := 0.0
	for j, w := range s.weights {
		acc += w
		if u < acc {
			return j
		}
	}
	return len(s.weights) - 1
}

// drawThreshold picks a split threshold uniformly among the distinct values
// the feature takes inside the node, excluding the maximum (which would send
// every observation left).
func (s *EnsembleSampler) drawThreshold(values []float64) (float64, bool) {
	uniq := distinctSorted(values)
	if len(uniq) < 2 {
		return 0, false
	}
	uniq = uniq[:len(uniq)-1]
	return uniq[s.rng.IntN(len(uniq))], true
}

func distinctSorted(values []float64) []float64 {
	sort.Float64s(values)
	uniq := values[:0]
	for i, v := range values {
		if i == 0 || v != uniq[len(uniq)-1] {
			uniq = append(uniq, v)
		}
	}
	return uniq
}

// metropolisStep proposes one structural edit of tree t and accepts or
// rejects it by the marginal-likelihood Metropolis-Hastings ratio. Proposals
// that cannot be formed (no growable leaf, nothing to prune) count as
// rejections.
func (s *EnsembleSampler) metropolisStep(t int) {
	tr := s.forest.Trees[t]
	s.computeAssignments(tr)
	u := s.rng.Float64()
	switch {
	case u < probGrow:
		s.proposeGrow(tr)
	case u < probGrow+probPrune:
		s.proposePrune(tr)
	default:
		s.proposeChange(tr)
	}
}

// growableLeaves filters leaves that could legally be split: below the depth
// bound and holding enough observations for two minimum-size children.
func (s *EnsembleSampler) growableLeaves(tr *forest.Tree, leaves []int32, counts map[int32]int) []int32 {
	growable := leaves[:0]
	for _, l := range leaves {
		if tr.Depth(l) < s.cfg.MaxDepth && counts[l] >= 2*s.cfg.MinSamplesLeaf {
			growable = append(growable, l)
		}
	}
	return growable
}

func (s *EnsembleSampler) proposeGrow(tr *forest.Tree) {
	counts := s.leafCounts()
	s.leafBuf = tr.Leaves(s.leafBuf)
	growable := s.growableLeaves(tr, s.leafBuf, counts)
	if len(growable) == 0 {
		return
	}
	leaf := growable[s.rng.IntN(len(growable))]
	feat := s.drawFeature()

	vals := make([]float64, 0, counts[leaf])
	for i, a := range s.assign {
		if a == leaf {
			vals = append(vals, s.rows[i][feat])
		}
	}
	thr, ok := s.drawThreshold(vals)
	if !ok {
		return
	}

	var stP, stL, stR leafStat
	for i, a := range s.assign {
		if a != leaf {
			continue
		}
		r, w := s.resid[i], s.obsWeight[i]
		stP.add(r, w)
		if s.rows[i][feat] <= thr {
			stL.add(r, w)
		} else {
			stR.add(r, w)
		}
	}
	minLeaf := float64(s.cfg.MinSamplesLeaf)
	if stL.n < minLeaf || stR.n < minLeaf {
		return
	}

	depth := tr.Depth(leaf)
	ps := s.splitProb(depth)
	psChild := s.splitProb(depth + 1)
	logPrior := math.Log(ps) + 2*math.Log(1-psChild) - math.Log(1-ps)
	logLik := s.logMarginal(stL) + s.logMarginal(stR) - s.logMarginal(stP)

	// Reverse move: prune would have to select this node among the prunable
	// nodes of the proposed tree. Splitting the leaf adds one prunable node;
	// its parent stops being prunable if the sibling is a leaf.
	s.nodeBuf = tr.PrunableNodes(s.nodeBuf)
	prunableAfter := len(s.nodeBuf) + 1
	if parent := tr.Node(leaf).Parent; parent >= 0 {
		pn := tr.Node(parent)
		sibling := pn.Left
		if sibling == leaf {
			sibling = pn.Right
		}
		if tr.IsLeaf(sibling) {
			prunableAfter--
		}
	}
	logTrans := math.Log(probPrune/probGrow) +
		math.Log(float64(len(growable))/float64(prunableAfter))

	if math.Log(s.rng.Float64()) < logPrior+logLik+logTrans {
		tr.Split(leaf, feat, thr)
	}
}

func (s *EnsembleSampler) proposePrune(tr *forest.Tree) {
	s.nodeBuf = tr.PrunableNodes(s.nodeBuf)
	if len(s.nodeBuf) == 0 {
		return
	}
	node := s.nodeBuf[s.rng.IntN(len(s.nodeBuf))]
	numPrunable := len(s.nodeBuf)
	n := tr.Node(node)

	var stL, stR leafStat
	for i, a := range s.assign {
		if a == n.Left {
			stL.add(s.resid[i], s.obsWeight[i])
		} else if a == n.Right {
			stR.add(s.resid[i], s.obsWeight[i])
		}
	}
	stP := leafStat{n: stL.n + stR.n, w: stL.w + stR.w, sum: stL.sum + stR.sum}

	depth := tr.Depth(node)
	ps := s.splitProb(depth)
	psChild := s.splitProb(depth + 1)
	logPrior := math.Log(1-ps) - math.Log(ps) - 2*math.Log(1-psChild)
	logLik := s.logMarginal(stP) - s.logMarginal(stL) - s.logMarginal(stR)

	// Reverse move: grow would have to select the collapsed node among the
	// growable leaves of the pruned tree.
	counts := s.leafCounts()
	s.leafBuf = tr.Leaves(s.leafBuf)
	growableAfter := 0
	for _, l := range s.leafBuf {
		if l == n.Left || l == n.Right {
			continue
		}
		if tr.Depth(l) < s.cfg.MaxDepth && counts[l] >= 2*s.cfg.MinSamplesLeaf {
			growableAfter++
		}
	}
	if depth < s.cfg.MaxDepth && int(stP.n) >= 2*s.cfg.MinSamplesLeaf {
		growableAfter++
	}
	if growableAfter == 0 {
		// The reverse grow would be impossible; the proposal is irreversible
		// and must be rejected to keep the chain in balance
		return
	}
	logTrans := math.Log(probGrow/probPrune) +
		math.Log(float64(numPrunable)/float64(growableAfter))

	if math.Log(s.rng.Float64()) < logPrior+logLik+logTrans {
		tr.Prune(node)
	}
}

func (s *EnsembleSampler) proposeChange(tr *forest.Tree) {
	s.nodeBuf = tr.PrunableNodes(s.nodeBuf)
	if len(s.nodeBuf) == 0 {
		return
	}
	node := s.nodeBuf[s.rng.IntN(len(s.nodeBuf))]
	n := tr.Node(node)
	feat := s.drawFeature()

	vals := make([]float64, 0, 64)
	for i, a := range s.assign {
		if a == n.Left || a == n.Right {
			vals = append(vals, s.rows[i][feat])
		}
	}
	thr, ok := s.drawThreshold(vals)
	if !ok {
		return
	}

	var stLOld, stROld, stLNew, stRNew leafStat
	for i, a := range s.assign {
		if a != n.Left && a != n.Right {
			continue
		}
		r, w := s.resid[i], s.obsWeight[i]
		if a == n.Left {
			stLOld.add(r, w)
		} else {
			stROld.add(r, w)
		}
		if s.rows[i][feat] <= thr {
			stLNew.add(r, w)
		} else {
			stRNew.add(r, w)
		}
	}
	minLeaf := float64(s.cfg.MinSamplesLeaf)
	if stLNew.n < minLeaf || stRNew.n < minLeaf {
		return
	}

	logLik := s.logMarginal(stLNew) + s.logMarginal(stRNew) -
		s.logMarginal(stLOld) - s.logMarginal(stROld)
	if math.Log(s.rng.Float64()) < logLik {
		tr.ChangeSplit(node, feat, thr)
	}
}

// growFromRoot rebuilds tree t from an empty root by greedily choosing, at
// every node, the split over the cutpoint grid that maximizes the marginal
// likelihood plus the structure-prior terms, against the no-split
// alternative.
func (s *EnsembleSampler) growFromRoot(t int) {
	tr := s.forest.Trees[t]
	tr.Reset()
	obs := make([]int, len(s.rows))
	for i := range obs {
		obs[i] = i
	}
	s.growNode(tr, tr.Root(), obs, 0)
}

func (s *EnsembleSampler) growNode(tr *forest.Tree, node int32, obs []int, depth int) {
	if depth >= s.cfg.MaxDepth || len(obs) < 2*s.cfg.MinSamplesLeaf {
		return
	}
	var stAll leafStat
	for _, i := range obs {
		stAll.add(s.resid[i], s.obsWeight[i])
	}
	ps := s.splitProb(depth)
	psChild := s.splitProb(depth + 1)
	bestScore := s.logMarginal(stAll) + math.Log(1-ps)
	splitBonus := math.Log(ps) + 2*math.Log(1-psChild)
	bestFeat := -1
	bestThr := 0.0
	minLeaf := float64(s.cfg.MinSamplesLeaf)

	for feat, w := range s.weights {
		if w <= 0 {
			continue
		}
		for _, thr := range s.candidateThresholds(obs, feat) {
			var stL, stR leafStat
			for _, i := range obs {
				if s.rows[i][feat] <= thr {
					stL.add(s.resid[i], s.obsWeight[i])
				} else {
					stR.add(s.resid[i], s.obsWeight[i])
				}
			}
			if stL.n < minLeaf || stR.n < minLeaf {
				continue
			}
			score := splitBonus + s.logMarginal(stL) + s.logMarginal(stR)
			if score > bestScore {
				bestScore, bestFeat, bestThr = score, feat, thr
			}
		}
	}
	if bestFeat < 0 {
		return
	}

	left, right := tr.Split(node, bestFeat, bestThr)
	var lobs, robs []int
	for _, i := range obs {
		if s.rows[i][bestFeat] <= bestThr {
			lobs = append(lobs, i)
		} else {
			robs = append(robs, i)
		}
	}
	s.growNode(tr, left, lobs, depth+1)
	s.growNode(tr, right, robs, depth+1)
}

// candidateThresholds returns the split grid for a feature within a node:
// every distinct value for categorical columns, a quantile-strided grid of
// at most CutpointGrid values for continuous ones. The maximum is excluded.
func (s *EnsembleSampler) candidateThresholds(obs []int, feat int) []float64 {
	vals := make([]float64, len(obs))
	for k, i := range obs {
		vals[k] = s.rows[i][feat]
	}
	uniq := distinctSorted(vals)
	if len(uniq) < 2 {
		return nil
	}
	uniq = uniq[:len(uniq)-1]
	if s.ftypes[feat] == dataset.FeatureContinuous && len(uniq) > s.cfg.CutpointGrid {
		grid := make([]float64, s.cfg.CutpointGrid)
		step := float64(len(uniq)) / float64(s.cfg.CutpointGrid)
		for g := range grid {
			grid[g] = uniq[int(float64(g)*step)]
		}
		return grid
	}
	return uniq
}

// drawLeafValues redraws every leaf of tree t from its conjugate posterior
// given the weighted partial residuals: mean tau^2 * S / (1 + W tau^2),
// variance tau^2 / (1 + W tau^2), with S the weighted residual sum and W the
// total weight of the leaf.
func (s *EnsembleSampler) drawLeafValues(t int) {
	tr := s.forest.Trees[t]
	s.computeAssignments(tr)
	s.leafBuf = tr.Leaves(s.leafBuf)

	stats := make(map[int32]*leafStat, len(s.leafBuf))
	for _, l := range s.leafBuf {
		stats[l] = &leafStat{}
	}
	for i, a := range s.assign {
		stats[a].add(s.resid[i], s.obsWeight[i])
	}

	tau2 := s.cfg.LeafScale * s.cfg.LeafScale
	for _, l := range s.leafBuf {
		st := stats[l]
		denom := 1.0 + st.w*tau2
		normal := distuv.Normal{
			Mu:    tau2 * st.sum / denom,
			Sigma: math.Sqrt(tau2 / denom),
			Src:   s.rng,
		}
		tr.SetLeafValue(l, normal.Rand())
	}
}
