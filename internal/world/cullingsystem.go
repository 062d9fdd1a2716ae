package world

import (
	"culling3d/internal/config"
	"culling3d/internal/pvs"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// CullingSystem drives static culling from a moving point. It keeps the
// visible sets of the last two evaluations and only transitions targets
// whose state changed between them.
type CullingSystem struct {
	Tree          *pvs.Tree
	CellRadius    float32
	MoveThreshold float32

	current   *pvs.VisibleSet
	previous  *pvs.VisibleSet
	last      rl.Vector3
	evaluated bool
	dirty     bool
}

func NewCullingSystem(tree *pvs.Tree, cfg config.Static) *CullingSystem {
	return &CullingSystem{
		Tree:          tree,
		CellRadius:    cfg.CellRadius,
		MoveThreshold: cfg.MoveThreshold,
		current:       pvs.NewVisibleSet(),
		previous:      pvs.NewVisibleSet(),
	}
}

// SetCellRadius changes the query radius. It takes effect on the next Update.
func (c *CullingSystem) SetCellRadius(r float32) {
	if r == c.CellRadius {
		return
	}
	c.CellRadius = r
	c.dirty = true
}

// Update re-evaluates visibility when position moved further than the move
// threshold since the last evaluation. It reports whether it evaluated.
func (c *CullingSystem) Update(position rl.Vector3) bool {
	if c.Tree == nil {
		return false
	}

	limit := c.MoveThreshold * c.MoveThreshold
	if c.evaluated && !c.dirty && rl.Vector3DistanceSqr(position, c.last) <= limit {
		return false
	}

	c.previous, c.current = c.current, c.previous
	c.current.Reset()

	if err := c.Tree.SetVisible(position, c.CellRadius, c.current); err != nil {
		c.showAll()
		return false
	}

	if !c.evaluated {
		c.applyAll()
	} else {
		c.applyChanges()
	}

	c.last = position
	c.evaluated = true
	c.dirty = false
	return true
}

func (c *CullingSystem) applyAll() {
	for i, t := range c.Tree.Targets() {
		if c.current.TargetActive(int32(i)) {
			t.Show()
		} else {
			t.Hide()
		}
	}
}

func (c *CullingSystem) applyChanges() {
	shown, hidden := c.current.Changes(c.previous)
	for i := range shown {
		c.Tree.Target(i).Show()
	}
	for i := range hidden {
		c.Tree.Target(i).Hide()
	}
}

// showAll falls back to everything visible and forces a full evaluation next time.
func (c *CullingSystem) showAll() {
	for _, t := range c.Tree.Targets() {
		t.Show()
	}
	c.current.Reset()
	c.evaluated = false
}

// Visible returns the visible set of the last evaluation.
func (c *CullingSystem) Visible() *pvs.VisibleSet {
	return c.current
}

// ActiveTargets is the number of targets shown by the last evaluation.
func (c *CullingSystem) ActiveTargets() int {
	return int(c.current.TargetCount())
}
