package culling

import (
	"culling3d/internal/components"
	"culling3d/internal/engine"
	"culling3d/internal/physics"
)

// ProxyName is the name of the child objects carrying proxy colliders.
const ProxyName = "DC_Collider"

// SourceStrategy decides how a culling source finds its geometry, builds
// proxy colliders and produces the target that the controller toggles.
//
// A strategy instance belongs to a single Source and keeps the proxies it
// created until ClearData.
type SourceStrategy interface {
	// Name identifies the strategy in logs, metrics and scene files.
	Name() string

	// CheckCompatibilityAndGetComponents reports whether owner carries what
	// the strategy needs. It returns a validation_failure error with a
	// readable reason and has no side effects.
	CheckCompatibilityAndGetComponents(owner *engine.GameObject) error

	// PrepareForCulling builds the proxy colliders.
	PrepareForCulling(owner *engine.GameObject) ([]components.Collider, error)

	// TryGetBounds returns the world-space bounds of the culled geometry.
	TryGetBounds(owner *engine.GameObject) (physics.Bounds, error)

	CreateCullingTarget(owner *engine.GameObject) (Target, error)

	// ClearData destroys every proxy. It is safe to call when nothing was
	// prepared.
	ClearData()
}

var (
	_ SourceStrategy = (*LODGroupStrategy)(nil)
	_ SourceStrategy = (*CustomBoundsStrategy)(nil)
)

// newProxy creates a DC_Collider child of parent.
func newProxy(parent *engine.GameObject) *engine.GameObject {
	proxy := engine.NewGameObject(ProxyName)
	proxy.Tags = append(proxy.Tags, ProxyName)
	parent.AddChild(proxy)
	return proxy
}

func destroyProxies(proxies []*engine.GameObject) {
	for _, p := range proxies {
		p.Destroy()
	}
}
