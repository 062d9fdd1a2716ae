package culling

import (
	"culling3d/internal/components"
	"culling3d/internal/engine"
	"culling3d/internal/physics"
)

// CustomBoundsStrategy culls an object through a designer-supplied box and
// reports visibility changes on events instead of touching renderers.
type CustomBoundsStrategy struct {
	// LocalBounds is relative to the owner position and scaled by it.
	LocalBounds physics.Bounds

	OnVisible   engine.Event
	OnInvisible engine.Event
	// OnVisibilityChanged fires after OnVisible or OnInvisible with the new
	// state.
	OnVisibilityChanged engine.EventWithArg[bool]

	proxy    *engine.GameObject
	collider components.Collider
}

func NewCustomBoundsStrategy(localBounds physics.Bounds) *CustomBoundsStrategy {
	return &CustomBoundsStrategy{LocalBounds: localBounds}
}

func (s *CustomBoundsStrategy) Name() string {
	return "custom"
}

func (s *CustomBoundsStrategy) CheckCompatibilityAndGetComponents(owner *engine.GameObject) error {
	if owner == nil {
		return validationFailure("source has no owner", nil)
	}

	size := s.LocalBounds.Size
	if size.X < 0 || size.Y < 0 || size.Z < 0 {
		return validationFailure("custom bounds have a negative size", owner)
	}
	return nil
}

// PrepareForCulling returns the existing proxy until ClearData.
func (s *CustomBoundsStrategy) PrepareForCulling(owner *engine.GameObject) ([]components.Collider, error) {
	if s.proxy != nil {
		return []components.Collider{s.collider}, nil
	}

	if err := s.CheckCompatibilityAndGetComponents(owner); err != nil {
		return nil, err
	}

	s.proxy = newProxy(owner)
	bc := components.NewBoxCollider(s.LocalBounds.Size)
	bc.Offset = s.LocalBounds.Center
	bc.IsTrigger = true
	s.proxy.AddComponent(bc)
	s.collider = bc
	return []components.Collider{bc}, nil
}

// TryGetBounds never fails for a valid owner. Zero bounds collapse to the
// owner position.
func (s *CustomBoundsStrategy) TryGetBounds(owner *engine.GameObject) (physics.Bounds, error) {
	if owner == nil {
		return physics.Bounds{}, boundsUnavailable("source has no owner", nil)
	}
	return s.LocalBounds.Transformed(owner.WorldPosition(), owner.WorldScale()), nil
}

func (s *CustomBoundsStrategy) CreateCullingTarget(owner *engine.GameObject) (Target, error) {
	bounds, err := s.TryGetBounds(owner)
	if err != nil {
		return nil, err
	}
	return NewCustomTarget(owner, bounds, &s.OnVisible, &s.OnInvisible).
		WithVisibilityChanged(&s.OnVisibilityChanged), nil
}

func (s *CustomBoundsStrategy) ClearData() {
	if s.proxy != nil {
		s.proxy.Destroy()
		s.proxy = nil
		s.collider = nil
	}
}
