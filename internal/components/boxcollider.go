package components

import (
	"culling3d/internal/engine"
	"culling3d/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
)

type BoxCollider struct {
	engine.BaseComponent
	Size      rl.Vector3
	Offset    rl.Vector3
	IsTrigger bool
}

func NewBoxCollider(size rl.Vector3) *BoxCollider {
	return &BoxCollider{
		Size:   size,
		Offset: rl.Vector3{},
	}
}

// GetCenter returns the world-space center including the scaled offset.
func (b *BoxCollider) GetCenter() rl.Vector3 {
	g := b.GetGameObject()
	if g == nil {
		return b.Offset
	}
	return rl.Vector3Add(g.WorldPosition(), rl.Vector3Multiply(b.Offset, g.WorldScale()))
}

// GetWorldSize returns the collider size scaled by the object's world scale.
func (b *BoxCollider) GetWorldSize() rl.Vector3 {
	g := b.GetGameObject()
	if g == nil {
		return b.Size
	}
	return rl.Vector3Multiply(b.Size, g.WorldScale())
}

func (b *BoxCollider) WorldBounds() physics.Bounds {
	return physics.NewBounds(b.GetCenter(), b.GetWorldSize())
}

func (b *BoxCollider) Raycast(origin, direction rl.Vector3, maxDistance float32) (physics.RaycastHit, bool) {
	return physics.RaycastBounds(origin, direction, b.WorldBounds(), maxDistance)
}
