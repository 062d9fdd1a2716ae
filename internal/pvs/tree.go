// Package pvs precomputes which culling targets are visible from each region
// of a scene and answers radius queries against that data at runtime.
package pvs

import (
	"slices"
	"time"

	"culling3d/internal/bsp"
	"culling3d/internal/config"
	"culling3d/internal/culling"
	"culling3d/internal/physics"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Cell is the payload of a tree node. Targets are staged as a set while the
// tree is built and frozen into a sorted slice by Apply.
type Cell struct {
	staged  map[int32]struct{}
	Targets []int32
}

func (c *Cell) stage(targets ...int32) {
	if c.staged == nil {
		c.staged = make(map[int32]struct{}, len(targets))
	}
	for _, t := range targets {
		c.staged[t] = struct{}{}
	}
}

// ids returns the sorted target indices whether or not the cell was frozen.
func (c *Cell) ids() []int32 {
	if c.staged == nil {
		return c.Targets
	}
	ids := make([]int32, 0, len(c.staged))
	for t := range c.staged {
		ids = append(ids, t)
	}
	slices.Sort(ids)
	return ids
}

func (c *Cell) freeze() {
	c.Targets = c.ids()
	c.staged = nil
}

func cellsEqual(a, b *Cell) bool {
	return slices.Equal(a.ids(), b.ids())
}

// Tree is a static visibility tree. Leaves reference targets by index into
// the tree's target table, so one target can be visible from many cells.
type Tree struct {
	cfg     config.Static
	tree    *bsp.Tree[Cell]
	targets []culling.Target
}

// New creates an empty tree covering bounds.
func New(bounds physics.Bounds, cfg config.Static) *Tree {
	return &Tree{
		cfg:  cfg,
		tree: bsp.New[Cell](bounds, bspOptions(cfg)),
	}
}

func bspOptions(cfg config.Static) bsp.Options {
	opts := bsp.Options{
		MinCellSize: cfg.MinCellSize,
		MaxDepth:    cfg.MaxDepth,
		Split:       bsp.SplitLongestAxis,
	}
	if cfg.Split == config.SplitCycle {
		opts.Split = bsp.SplitCycle
	}
	return opts
}

func (t *Tree) Config() config.Static {
	return t.cfg
}

func (t *Tree) Bounds() physics.Bounds {
	return t.tree.Bounds()
}

// AddTarget registers a target and returns its index.
func (t *Tree) AddTarget(target culling.Target) int32 {
	t.targets = append(t.targets, target)
	return int32(len(t.targets) - 1)
}

func (t *Tree) Targets() []culling.Target {
	return t.targets
}

func (t *Tree) Target(i int32) culling.Target {
	if i < 0 || int(i) >= len(t.targets) {
		return nil
	}
	return t.targets[i]
}

// MarkVisible records that targets are visible from point, splitting the
// tree down to the cell holding point.
func (t *Tree) MarkVisible(point rl.Vector3, targets ...int32) error {
	for _, i := range targets {
		if i < 0 || int(i) >= len(t.targets) {
			return errors.New("target index out of range").
				WithType(ErrTypeUnknownTarget).
				WithTag("target", i)
		}
	}

	id, err := t.tree.Insert(point)
	if err != nil {
		return err
	}
	t.tree.Node(id).Data.stage(targets...)
	return nil
}

// Build subdivides the whole tree and asks sampler which targets each leaf sees.
func (t *Tree) Build(sampler Sampler) error {
	if err := t.tree.Subdivide(); err != nil {
		return err
	}

	t.tree.Walk(func(_ bsp.NodeID, n *bsp.Node[Cell]) bool {
		if n.IsLeaf() {
			n.Data.stage(sampler.VisibleTargets(n.Bounds, t.targets)...)
		}
		return true
	})
	return nil
}

// Optimize merges sibling cells that see the same targets and returns the
// number of merges.
func (t *Tree) Optimize() int {
	before := t.tree.LeafCount()
	merged := t.tree.Optimize(cellsEqual)

	logs.WithTag("merged", merged).
		WithTag("leaves_before", before).
		WithTag("leaves_after", t.tree.LeafCount()).
		Debug("static visibility tree optimized")
	return merged
}

// Apply freezes the staged cells. The tree only answers queries afterwards.
func (t *Tree) Apply() {
	t.tree.Apply(func(_ bsp.NodeID, c *Cell) {
		c.freeze()
	})
}

func (t *Tree) Applied() bool {
	return t.tree.Applied()
}

// radius converts a radius in cells to world units.
func (t *Tree) radius(cellRadius float32) float32 {
	r := cellRadius*t.tree.Options().MinCellSize + t.cfg.Tolerance
	if r < 0 {
		return 0
	}
	return r
}

// SetVisible marks every node whose bounds are within cellRadius cells of
// point, and the targets of every such leaf. The boundary is inclusive.
// The set is only added to; reset it between frames to get the visible
// set of a single point.
func (t *Tree) SetVisible(point rl.Vector3, cellRadius float32, set *VisibleSet) error {
	start := time.Now()
	r := t.radius(cellRadius)
	r2 := r * r

	err := t.tree.Query(
		func(n *bsp.Node[Cell]) bool {
			return n.Bounds.SqrDistance(point) > r2
		},
		func(id bsp.NodeID, n *bsp.Node[Cell]) {
			set.markNode(id)
			if !n.IsLeaf() {
				return
			}
			for _, target := range n.Data.Targets {
				set.markTarget(target)
			}
		},
	)
	if err != nil {
		instrumentQueryError(err)
		logs.Warn(errors.New("static visibility query failed").
			WithType(errors.Type(err)).
			Wrap(err))
		return err
	}

	instrumentQuery(start, set)
	return nil
}

// DrawCellsGizmo calls draw with the bounds of every leaf SetVisible would
// reach, without touching any visibility state. An unbuilt tree draws
// nothing.
func (t *Tree) DrawCellsGizmo(point rl.Vector3, cellRadius float32, draw func(physics.Bounds)) {
	r := t.radius(cellRadius)
	r2 := r * r

	_ = t.tree.Query(
		func(n *bsp.Node[Cell]) bool {
			return n.Bounds.SqrDistance(point) > r2
		},
		func(_ bsp.NodeID, n *bsp.Node[Cell]) {
			if n.IsLeaf() {
				draw(n.Bounds)
			}
		},
	)
}

// Leaf returns the bounds and targets of the cell holding point.
func (t *Tree) Leaf(point rl.Vector3) (physics.Bounds, []int32, bool) {
	id, ok := t.tree.Leaf(point)
	if !ok {
		return physics.Bounds{}, nil, false
	}
	n := t.tree.Node(id)
	return n.Bounds, n.Data.ids(), true
}

func (t *Tree) LeafCount() int {
	return t.tree.LeafCount()
}

type Stats struct {
	Nodes   int
	Leaves  int
	Depth   int
	Targets int

	// References is the total number of target indices held by leaves.
	References int
}

func (t *Tree) Stats() Stats {
	s := Stats{
		Nodes:   t.tree.Len(),
		Depth:   t.tree.Depth(),
		Targets: len(t.targets),
	}
	t.tree.Walk(func(_ bsp.NodeID, n *bsp.Node[Cell]) bool {
		if n.IsLeaf() {
			s.Leaves++
			s.References += len(n.Data.ids())
		}
		return true
	})
	return s
}

// Nodes exposes the arena, mainly for gizmos and tests.
func (t *Tree) Nodes() []bsp.Node[Cell] {
	return t.tree.Nodes()
}
