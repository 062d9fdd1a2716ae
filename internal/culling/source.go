package culling

import (
	"iter"

	"culling3d/internal/components"
	"culling3d/internal/engine"
	"culling3d/internal/physics"
)

// Source marks a GameObject for dynamic culling. The strategy decides how
// the object's geometry is found and how it is hidden.
type Source struct {
	engine.BaseComponent
	Strategy SourceStrategy

	ready     bool
	colliders []components.Collider
}

func NewSource(strategy SourceStrategy) *Source {
	return &Source{Strategy: strategy}
}

func (s *Source) CheckCompatibility() error {
	return s.Strategy.CheckCompatibilityAndGetComponents(s.GetGameObject())
}

// PrepareForCulling builds the proxy colliders once. Later calls are no-ops
// until ClearData.
func (s *Source) PrepareForCulling() error {
	if s.ready {
		return nil
	}

	colliders, err := s.Strategy.PrepareForCulling(s.GetGameObject())
	if err != nil {
		s.Strategy.ClearData()
		return err
	}

	s.colliders = colliders
	s.ready = true
	instrumentProxies(len(colliders))
	return nil
}

func (s *Source) ReadyForCulling() bool {
	return s.ready
}

func (s *Source) TryGetBounds() (physics.Bounds, error) {
	return s.Strategy.TryGetBounds(s.GetGameObject())
}

func (s *Source) CreateCullingTarget() (Target, error) {
	return s.Strategy.CreateCullingTarget(s.GetGameObject())
}

// Colliders iterates the live proxies. The list is read when iteration
// starts, so a cleared source yields nothing.
func (s *Source) Colliders() iter.Seq[components.Collider] {
	return func(yield func(components.Collider) bool) {
		for _, c := range s.colliders {
			if !yield(c) {
				return
			}
		}
	}
}

func (s *Source) ColliderCount() int {
	return len(s.colliders)
}

// ClearData destroys the proxies and resets the source.
func (s *Source) ClearData() {
	if s.ready {
		instrumentProxies(-len(s.colliders))
	}
	s.Strategy.ClearData()
	s.colliders = nil
	s.ready = false
}

func (s *Source) OnDestroy() {
	s.ClearData()
}
