// Package bsp implements an index-addressed binary space partitioning tree.
//
// A Tree is built offline in a single pass (Insert or Subdivide), optionally
// compacted with Optimize, sealed with Apply and then only read. Nodes live in
// one contiguous arena and reference their children by NodeID.
package bsp

import (
	"culling3d/internal/physics"

	"github.com/aukilabs/go-tooling/pkg/errors"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// NodeID addresses a node in the tree arena.
type NodeID int32

// NoNode marks an absent child.
const NoNode NodeID = -1

type SplitMode int

const (
	// SplitLongestAxis bisects every node along its longest axis.
	SplitLongestAxis SplitMode = iota
	// SplitCycle bisects along X, Y, Z by depth, falling back to the
	// longest axis once the scheduled axis reached the cell size.
	SplitCycle
)

// sizeEpsilon absorbs float drift when comparing halved sizes with the cell size.
const sizeEpsilon = 1e-4

type Options struct {
	MinCellSize float32
	MaxDepth    int
	Split       SplitMode
}

type Node[T any] struct {
	Bounds physics.Bounds
	Left   NodeID
	Right  NodeID
	Axis   physics.Axis
	Depth  int
	Data   T
}

func (n *Node[T]) IsLeaf() bool {
	return n.Left == NoNode
}

type Tree[T any] struct {
	nodes   []Node[T]
	opts    Options
	applied bool
}

// New creates a tree holding a single leaf that covers bounds.
func New[T any](bounds physics.Bounds, opts Options) *Tree[T] {
	if opts.MinCellSize <= 0 {
		opts.MinCellSize = 1
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = 32
	}
	return &Tree[T]{
		nodes: []Node[T]{{Bounds: bounds, Left: NoNode, Right: NoNode}},
		opts:  opts,
	}
}

// FromNodes rebuilds an applied tree from a node arena, typically read back
// from a bake file. Children must follow their parent in the arena.
func FromNodes[T any](nodes []Node[T], opts Options) (*Tree[T], error) {
	if len(nodes) == 0 {
		return nil, errors.New("empty node arena").WithType(ErrTypeInvalidNodes)
	}
	for i := range nodes {
		n := &nodes[i]
		if (n.Left == NoNode) != (n.Right == NoNode) {
			return nil, errors.New("node has a single child").
				WithType(ErrTypeInvalidNodes).
				WithTag("node", i)
		}
		if n.IsLeaf() {
			continue
		}
		for _, child := range []NodeID{n.Left, n.Right} {
			if int(child) <= i || int(child) >= len(nodes) {
				return nil, errors.New("child index out of order").
					WithType(ErrTypeInvalidNodes).
					WithTag("node", i).
					WithTag("child", child)
			}
		}
	}

	t := New[T](nodes[0].Bounds, opts)
	t.nodes = nodes
	t.applied = true
	return t, nil
}

func (t *Tree[T]) Root() NodeID {
	return 0
}

// Node returns the node with the given id. The pointer is invalidated by
// Insert, Subdivide and Optimize.
func (t *Tree[T]) Node(id NodeID) *Node[T] {
	return &t.nodes[id]
}

// Nodes exposes the arena in storage order.
func (t *Tree[T]) Nodes() []Node[T] {
	return t.nodes
}

func (t *Tree[T]) Len() int {
	return len(t.nodes)
}

func (t *Tree[T]) Bounds() physics.Bounds {
	return t.nodes[0].Bounds
}

func (t *Tree[T]) Options() Options {
	return t.opts
}

// Applied reports whether Apply sealed the tree.
func (t *Tree[T]) Applied() bool {
	return t.applied
}

func (t *Tree[T]) LeafCount() int {
	count := 0
	t.Walk(func(_ NodeID, n *Node[T]) bool {
		if n.IsLeaf() {
			count++
		}
		return true
	})
	return count
}

// Depth returns the depth of the deepest node, the root being 0.
func (t *Tree[T]) Depth() int {
	depth := 0
	t.Walk(func(_ NodeID, n *Node[T]) bool {
		if n.Depth > depth {
			depth = n.Depth
		}
		return true
	})
	return depth
}

// splitAxis returns the axis n should be bisected on, or false when n is at cell size.
func (t *Tree[T]) splitAxis(n *Node[T]) (physics.Axis, bool) {
	if n.Depth >= t.opts.MaxDepth {
		return 0, false
	}

	limit := t.opts.MinCellSize * (1 + sizeEpsilon)
	longest := n.Bounds.LongestAxis()
	if physics.Component(n.Bounds.Size, longest) <= limit {
		return 0, false
	}

	if t.opts.Split == SplitCycle {
		axis := physics.Axis(n.Depth % 3)
		if physics.Component(n.Bounds.Size, axis) > limit {
			return axis, true
		}
	}
	return longest, true
}

func (t *Tree[T]) split(id NodeID, axis physics.Axis) {
	n := &t.nodes[id]
	lower, upper := n.Bounds.Split(axis)
	depth := n.Depth + 1

	left := NodeID(len(t.nodes))
	right := left + 1
	n.Left = left
	n.Right = right
	n.Axis = axis

	// append may move the arena, n is not used past this point
	t.nodes = append(t.nodes,
		Node[T]{Bounds: lower, Left: NoNode, Right: NoNode, Depth: depth},
		Node[T]{Bounds: upper, Left: NoNode, Right: NoNode, Depth: depth},
	)
}

// child picks the half holding p. Points on the split plane go to the upper half.
func (t *Tree[T]) child(n *Node[T], p rl.Vector3) NodeID {
	if physics.Component(p, n.Axis) < physics.Component(n.Bounds.Center, n.Axis) {
		return n.Left
	}
	return n.Right
}

// Insert descends towards p, splitting every oversized node on the way, and
// returns the cell-sized leaf holding p.
func (t *Tree[T]) Insert(p rl.Vector3) (NodeID, error) {
	if t.applied {
		return NoNode, errTreeSealed()
	}
	if !t.nodes[0].Bounds.Contains(p) {
		return NoNode, errors.New("point outside tree bounds").
			WithType(ErrTypeBoundsExceeded).
			WithTag("x", p.X).
			WithTag("y", p.Y).
			WithTag("z", p.Z)
	}

	id := t.Root()
	for {
		n := &t.nodes[id]
		if n.IsLeaf() {
			axis, ok := t.splitAxis(n)
			if !ok {
				return id, nil
			}
			t.split(id, axis)
			n = &t.nodes[id]
		}
		id = t.child(n, p)
	}
}

// Subdivide splits every leaf down to the cell size.
func (t *Tree[T]) Subdivide() error {
	if t.applied {
		return errTreeSealed()
	}
	for i := 0; i < len(t.nodes); i++ {
		n := &t.nodes[i]
		if !n.IsLeaf() {
			continue
		}
		if axis, ok := t.splitAxis(n); ok {
			t.split(NodeID(i), axis)
		}
	}
	return nil
}

// Leaf finds the existing leaf holding p without modifying the tree.
func (t *Tree[T]) Leaf(p rl.Vector3) (NodeID, bool) {
	if !t.nodes[0].Bounds.Contains(p) {
		return NoNode, false
	}
	id := t.Root()
	for {
		n := &t.nodes[id]
		if n.IsLeaf() {
			return id, true
		}
		id = t.child(n, p)
	}
}

// Walk visits nodes in pre-order. Returning false from fn skips the node's children.
func (t *Tree[T]) Walk(fn func(id NodeID, n *Node[T]) bool) {
	var buf [128]NodeID
	stack := append(buf[:0], t.Root())
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := &t.nodes[id]
		if !fn(id, n) || n.IsLeaf() {
			continue
		}
		stack = append(stack, n.Right, n.Left)
	}
}

// Query walks the applied tree, skipping every node for which prune returns
// true together with its descendants, and calls visit for the others.
func (t *Tree[T]) Query(prune func(n *Node[T]) bool, visit func(id NodeID, n *Node[T])) error {
	if !t.applied {
		return errTreeNotBuilt()
	}
	t.Walk(func(id NodeID, n *Node[T]) bool {
		if prune(n) {
			return false
		}
		visit(id, n)
		return true
	})
	return nil
}

// Apply calls commit for every node and seals the tree against further construction.
func (t *Tree[T]) Apply(commit func(id NodeID, data *T)) {
	if commit != nil {
		for i := range t.nodes {
			commit(NodeID(i), &t.nodes[i].Data)
		}
	}
	t.applied = true
}
