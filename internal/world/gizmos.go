package world

import (
	"culling3d/internal/culling"
	"culling3d/internal/physics"
	"culling3d/internal/pvs"

	rl "github.com/gen2brain/raylib-go/raylib"
)

var (
	CellColor         = rl.NewColor(0, 228, 48, 120)
	VisibleProxyColor = rl.Lime
	HiddenProxyColor  = rl.Maroon
)

func DrawBounds(b physics.Bounds, color rl.Color) {
	rl.DrawCubeWiresV(b.Center, b.Size, color)
}

// DrawCells outlines the static cells within cellRadius of point.
func DrawCells(tree *pvs.Tree, point rl.Vector3, cellRadius float32) {
	if tree == nil {
		return
	}
	tree.DrawCellsGizmo(point, cellRadius, func(b physics.Bounds) {
		DrawBounds(b, CellColor)
	})
}

// DrawProxies outlines every dynamic proxy, colored by its target state.
func DrawProxies(c *culling.Controller) {
	for col := range c.Colliders() {
		color := HiddenProxyColor
		if t, ok := c.TargetFor(col); ok && t.Visible() {
			color = VisibleProxyColor
		}
		DrawBounds(col.WorldBounds(), color)
	}
}
