package components

import (
	"culling3d/internal/engine"
	"culling3d/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Collider is a shape that rays can be tested against.
type Collider interface {
	engine.Component
	WorldBounds() physics.Bounds
	Raycast(origin, direction rl.Vector3, maxDistance float32) (physics.RaycastHit, bool)
}

var (
	_ Collider = (*BoxCollider)(nil)
	_ Collider = (*MeshCollider)(nil)
)
