package bsp

// Optimize merges sibling leaves with equal payloads into their parent,
// bottom-up, so chains of identical cells collapse in one pass. The parent
// keeps the left child's payload. The arena is compacted in pre-order when
// anything merged, which makes a second call a no-op.
func (t *Tree[T]) Optimize(equal func(a, b *T) bool) int {
	merged := t.optimizeNode(t.Root(), equal)
	if merged > 0 {
		t.compact()
	}
	return merged
}

func (t *Tree[T]) optimizeNode(id NodeID, equal func(a, b *T) bool) int {
	n := &t.nodes[id]
	if n.IsLeaf() {
		return 0
	}

	left, right := n.Left, n.Right
	merged := t.optimizeNode(left, equal) + t.optimizeNode(right, equal)

	l, r := &t.nodes[left], &t.nodes[right]
	if !l.IsLeaf() || !r.IsLeaf() || !equal(&l.Data, &r.Data) {
		return merged
	}

	n = &t.nodes[id]
	n.Data = l.Data
	n.Left = NoNode
	n.Right = NoNode
	return merged + 1
}

func (t *Tree[T]) compact() {
	nodes := make([]Node[T], 0, len(t.nodes))
	var copyNode func(id NodeID) NodeID
	copyNode = func(id NodeID) NodeID {
		newID := NodeID(len(nodes))
		nodes = append(nodes, t.nodes[id])
		if t.nodes[id].IsLeaf() {
			return newID
		}
		left := copyNode(t.nodes[id].Left)
		right := copyNode(t.nodes[id].Right)
		nodes[newID].Left = left
		nodes[newID].Right = right
		return newID
	}
	copyNode(t.Root())
	t.nodes = nodes
}
