// Package forest implements the additive tree ensemble: binary regression
// trees over the covariate space, the active forest mutated by the sampler,
// and the append-only snapshot container of retained forests.
package forest

const noChild = int32(-1)

// Node is one cell of a tree's node arena. Internal nodes carry a
// (feature, threshold) split; leaves carry a scalar value. Children are
// addressed by arena index so a tree snapshot is a plain slice copy.
type Node struct {
	Feature   int
	Threshold float64
	Left      int32
	Right     int32
	Parent    int32
	Depth     int32
	LeafValue float64
}

// Tree is a binary partition of covariate space backed by a node arena.
// Index 0 is always the root. Pruned subtrees are recycled via a free list.
type Tree struct {
	nodes []Node
	free  []int32
}

// NewTree creates a tree consisting of a single root leaf with value 0.
func NewTree() *Tree {
	t := &Tree{}
	t.Reset()
	return t
}

// Reset restores the tree to a single root leaf with value 0
func (t *Tree) Reset() {
	t.nodes = t.nodes[:0]
	t.free = t.free[:0]
	t.nodes = append(t.nodes, Node{Left: noChild, Right: noChild, Parent: noChild})
}

// Root returns the arena index of the root node
func (t *Tree) Root() int32 { return 0 }

// IsLeaf reports whether node i is a leaf
func (t *Tree) IsLeaf(i int32) bool {
	return t.nodes[i].Left == noChild
}

// Node returns a copy of node i
func (t *Tree) Node(i int32) Node { return t.nodes[i] }

// Depth returns the depth of node i (root is depth 0)
func (t *Tree) Depth(i int32) int { return int(t.nodes[i].Depth) }

// LeafValue returns the scalar held by leaf i
func (t *Tree) LeafValue(i int32) float64 { return t.nodes[i].LeafValue }

// SetLeafValue overwrites the scalar held by leaf i
func (t *Tree) SetLeafValue(i int32, v float64) { t.nodes[i].LeafValue = v }

// Leaves appends the arena indices of all live leaves to dst
func (t *Tree) Leaves(dst []int32) []int32 {
	return t.collect(dst, func(i int32) bool { return t.IsLeaf(i) })
}

// PrunableNodes appends the indices of internal nodes whose children are
// both leaves, the only nodes a prune or change proposal may target.
func (t *Tree) PrunableNodes(dst []int32) []int32 {
	return t.collect(dst, func(i int32) bool {
		n := t.nodes[i]
		return n.Left != noChild && t.IsLeaf(n.Left) && t.IsLeaf(n.Right)
	})
}

func (t *Tree) collect(dst []int32, keep func(int32) bool) []int32 {
	dst = dst[:0]
	stack := []int32{0}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if keep(i) {
			dst = append(dst, i)
		}
		if n := t.nodes[i]; n.Left != noChild {
			stack = append(stack, n.Right, n.Left)
		}
	}
	return dst
}

// NumLeaves counts live leaves
func (t *Tree) NumLeaves() int {
	count := 0
	stack := []int32{0}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n := t.nodes[i]; n.Left == noChild {
			count++
		} else {
			stack = append(stack, n.Right, n.Left)
		}
	}
	return count
}

// Split turns leaf i into an internal node with the given split and two
// fresh zero-valued child leaves, returning their indices.
func (t *Tree) Split(i int32, feature int, threshold float64) (left, right int32) {
	depth := t.nodes[i].Depth + 1
	left = t.alloc(Node{Left: noChild, Right: noChild, Parent: i, Depth: depth})
	right = t.alloc(Node{Left: noChild, Right: noChild, Parent: i, Depth: depth})
	t.nodes[i].Feature = feature
	t.nodes[i].Threshold = threshold
	t.nodes[i].Left = left
	t.nodes[i].Right = right
	return left, right
}

func (t *Tree) alloc(n Node) int32 {
	if k := len(t.free); k > 0 {
		i := t.free[k-1]
		t.free = t.free[:k-1]
		t.nodes[i] = n
		return i
	}
	t.nodes = append(t.nodes, n)
	return int32(len(t.nodes) - 1)
}

// Prune collapses internal node i, whose children must both be leaves,
// back into a leaf. The child slots are recycled.
func (t *Tree) Prune(i int32) {
	n := &t.nodes[i]
	t.free = append(t.free, n.Left, n.Right)
	n.Left = noChild
	n.Right = noChild
	n.LeafValue = 0
}

// ChangeSplit replaces the split rule of internal node i in place
func (t *Tree) ChangeSplit(i int32, feature int, threshold float64) {
	t.nodes[i].Feature = feature
	t.nodes[i].Threshold = threshold
}

// LeafFor routes a covariate row to its leaf and returns the arena index.
// Routing is O(depth): rows with feature value <= threshold go left.
func (t *Tree) LeafFor(row []float64) int32 {
	i := int32(0)
	for t.nodes[i].Left != noChild {
		n := t.nodes[i]
		if row[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
	return i
}

// Predict returns the leaf value reached by routing row through the tree
func (t *Tree) Predict(row []float64) float64 {
	return t.nodes[t.LeafFor(row)].LeafValue
}

// Clone returns an independent deep copy of the tree
func (t *Tree) Clone() *Tree {
	c := &Tree{
		nodes: make([]Node, len(t.nodes)),
		free:  make([]int32, len(t.free)),
	}
	copy(c.nodes, t.nodes)
	copy(c.free, t.free)
	return c
}
