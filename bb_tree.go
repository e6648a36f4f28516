package impulse

const pooledBufferSize = 64

// TreeBroadPhase is a bounding box tree rebuilt from the shapes at every
// step. A leaf goes down the child whose area grows least when merged with
// it. It beats SweepBroadPhase when shapes spread over both axes.
type TreeBroadPhase struct {
	root        *treeNode
	leaves      []*treeNode
	pooledNodes *treeNode
}

type treeNode struct {
	shape  *Shape
	bb     BB
	parent *treeNode
	a, b   *treeNode
	// insertion index of a leaf, pairs are reported from the lower one
	index int
}

// Pairs implements BroadPhase.
func (tree *TreeBroadPhase) Pairs(shapes []*Shape, yield func(a, b *Shape)) {
	tree.reset()
	for i, shape := range shapes {
		leaf := tree.nodeFromPool()
		leaf.shape = shape
		leaf.bb = shape.bb
		leaf.index = i
		tree.leaves = append(tree.leaves, leaf)
		tree.root = tree.subtreeInsert(tree.root, leaf)
	}
	if tree.root == nil {
		return
	}
	for _, leaf := range tree.leaves {
		tree.root.markLeafQuery(leaf, yield)
	}
}

// Query calls f for every shape of the last Pairs call whose bounding box
// intersects bb.
func (tree *TreeBroadPhase) Query(bb BB, f func(*Shape)) {
	if tree.root != nil {
		tree.root.subtreeQuery(bb, f)
	}
}

// Count returns the number of leaves of the last Pairs call.
func (tree *TreeBroadPhase) Count() int {
	return len(tree.leaves)
}

func (tree *TreeBroadPhase) reset() {
	if tree.root != nil {
		tree.recycleSubtree(tree.root)
		tree.root = nil
	}
	clear(tree.leaves)
	tree.leaves = tree.leaves[:0]
}

func (tree *TreeBroadPhase) subtreeInsert(subtree, leaf *treeNode) *treeNode {
	if subtree == nil {
		return leaf
	}
	if subtree.isLeaf() {
		return tree.newNode(leaf, subtree)
	}

	costA := subtree.b.bb.Area() + subtree.a.bb.MergedArea(leaf.bb)
	costB := subtree.a.bb.Area() + subtree.b.bb.MergedArea(leaf.bb)

	if costA == costB {
		costA = subtree.a.bb.Proximity(leaf.bb)
		costB = subtree.b.bb.Proximity(leaf.bb)
	}

	if costB < costA {
		subtree.setB(tree.subtreeInsert(subtree.b, leaf))
	} else {
		subtree.setA(tree.subtreeInsert(subtree.a, leaf))
	}

	subtree.bb = subtree.bb.Merge(leaf.bb)
	return subtree
}

func (tree *TreeBroadPhase) newNode(a, b *treeNode) *treeNode {
	node := tree.nodeFromPool()
	node.bb = a.bb.Merge(b.bb)
	node.setA(a)
	node.setB(b)
	return node
}

func (tree *TreeBroadPhase) nodeFromPool() *treeNode {
	node := tree.pooledNodes
	if node != nil {
		tree.pooledNodes = node.parent
		node.parent = nil
		return node
	}

	// Pool is exhausted make more
	for range pooledBufferSize {
		tree.recycleNode(&treeNode{})
	}
	return &treeNode{}
}

func (tree *TreeBroadPhase) recycleNode(node *treeNode) {
	*node = treeNode{parent: tree.pooledNodes}
	tree.pooledNodes = node
}

func (tree *TreeBroadPhase) recycleSubtree(node *treeNode) {
	if !node.isLeaf() {
		tree.recycleSubtree(node.a)
		tree.recycleSubtree(node.b)
	}
	tree.recycleNode(node)
}

func (node *treeNode) setA(value *treeNode) {
	node.a = value
	value.parent = node
}

func (node *treeNode) setB(value *treeNode) {
	node.b = value
	value.parent = node
}

func (node *treeNode) isLeaf() bool {
	return node.shape != nil
}

// markLeafQuery reports leaf against every later leaf of the subtree it overlaps.
func (subtree *treeNode) markLeafQuery(leaf *treeNode, yield func(a, b *Shape)) {
	if !leaf.bb.Intersects(subtree.bb) {
		return
	}
	if subtree.isLeaf() {
		if subtree.index > leaf.index {
			yield(leaf.shape, subtree.shape)
		}
		return
	}
	subtree.a.markLeafQuery(leaf, yield)
	subtree.b.markLeafQuery(leaf, yield)
}

func (subtree *treeNode) subtreeQuery(bb BB, f func(*Shape)) {
	if !subtree.bb.Intersects(bb) {
		return
	}
	if subtree.isLeaf() {
		f(subtree.shape)
		return
	}
	subtree.a.subtreeQuery(bb, f)
	subtree.b.subtreeQuery(bb, f)
}
