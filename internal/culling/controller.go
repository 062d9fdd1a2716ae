package culling

import (
	"iter"
	"slices"

	"culling3d/internal/components"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
)

// Controller shows and hides dynamic culling targets from the proxy hits of
// an occlusion pass. A target that no hit reached for ObjectsLifetime ticks
// is hidden.
type Controller struct {
	ObjectsLifetime int

	entries    []*controllerEntry
	bySource   map[*Source]*controllerEntry
	byCollider map[components.Collider]*controllerEntry
	hit        map[*controllerEntry]struct{}
}

type controllerEntry struct {
	source    *Source
	target    Target
	colliders []components.Collider
	unseen    int
}

func NewController(objectsLifetime int) *Controller {
	if objectsLifetime < 1 {
		objectsLifetime = 1
	}
	return &Controller{
		ObjectsLifetime: objectsLifetime,
		bySource:        make(map[*Source]*controllerEntry),
		byCollider:      make(map[components.Collider]*controllerEntry),
		hit:             make(map[*controllerEntry]struct{}),
	}
}

// Register validates and prepares a source. Incompatible sources are
// counted, logged and left out.
func (c *Controller) Register(s *Source) error {
	if _, ok := c.bySource[s]; ok {
		return nil
	}

	if s.GetGameObject() == nil {
		err := validationFailure("source is not attached to an object", nil)
		instrumentIncompatibleSource(s.Strategy.Name(), err)
		return err
	}

	if err := s.CheckCompatibility(); err != nil {
		instrumentIncompatibleSource(s.Strategy.Name(), err)
		logs.Warn(errors.New("source excluded from dynamic culling").
			WithType(errors.Type(err)).
			WithTag("strategy", s.Strategy.Name()).
			Wrap(err))
		return err
	}

	if err := s.PrepareForCulling(); err != nil {
		instrumentIncompatibleSource(s.Strategy.Name(), err)
		return err
	}

	target, err := s.CreateCullingTarget()
	if err != nil {
		s.ClearData()
		instrumentIncompatibleSource(s.Strategy.Name(), err)
		return err
	}

	e := &controllerEntry{source: s, target: target, colliders: slices.Collect(s.Colliders())}
	c.entries = append(c.entries, e)
	c.bySource[s] = e
	for _, col := range e.colliders {
		c.byCollider[col] = e
	}
	instrumentSourceRegistered(s.Strategy.Name(), 1)

	logs.WithTag("object", s.GetGameObject().Name).
		WithTag("strategy", s.Strategy.Name()).
		WithTag("proxies", s.ColliderCount()).
		Debug("dynamic culling source registered")
	return nil
}

// Unregister shows the target again and destroys the source proxies.
func (c *Controller) Unregister(s *Source) {
	e, ok := c.bySource[s]
	if !ok {
		return
	}
	c.remove(e)

	e.target.Show()
	s.ClearData()
	instrumentSourceRegistered(s.Strategy.Name(), -1)
}

func (c *Controller) remove(e *controllerEntry) {
	for _, col := range e.colliders {
		delete(c.byCollider, col)
	}
	delete(c.bySource, e.source)
	c.entries = slices.DeleteFunc(c.entries, func(entry *controllerEntry) bool {
		return entry == e
	})
}

// Prune drops the sources whose object was destroyed. Their proxies are
// already gone, so the targets are left as they are.
func (c *Controller) Prune() int {
	var stale []*controllerEntry
	for _, e := range c.entries {
		if g := e.source.GetGameObject(); g == nil || g.Destroyed() || !e.source.ReadyForCulling() {
			stale = append(stale, e)
		}
	}
	for _, e := range stale {
		c.remove(e)
		instrumentSourceRegistered(e.source.Strategy.Name(), -1)
	}
	return len(stale)
}

func (c *Controller) TargetFor(col components.Collider) (Target, bool) {
	e, ok := c.byCollider[col]
	if !ok {
		return nil, false
	}
	return e.target, true
}

// Colliders iterates every registered proxy collider.
func (c *Controller) Colliders() iter.Seq[components.Collider] {
	return func(yield func(components.Collider) bool) {
		for _, e := range c.entries {
			for col := range e.source.Colliders() {
				if !yield(col) {
					return
				}
			}
		}
	}
}

func (c *Controller) Len() int {
	return len(c.entries)
}

// Tick applies one occlusion pass. Hit targets are shown and their timer
// reset. Unknown colliders are ignored. Sources cleared since the last tick
// are dropped first.
func (c *Controller) Tick(hits []components.Collider) {
	c.Prune()

	clear(c.hit)
	for _, col := range hits {
		if e, ok := c.byCollider[col]; ok {
			c.hit[e] = struct{}{}
		}
	}

	for _, e := range c.entries {
		if _, ok := c.hit[e]; ok {
			e.unseen = 0
			e.target.Show()
			continue
		}

		e.unseen++
		if e.unseen >= c.ObjectsLifetime {
			e.target.Hide()
		}
	}
}
