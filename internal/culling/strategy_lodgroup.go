package culling

import (
	"slices"

	"culling3d/internal/components"
	"culling3d/internal/engine"
	"culling3d/internal/physics"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
)

// LODGroupStrategy culls an object through its LOD group. Proxies are built
// from the highest detail level only.
type LODGroupStrategy struct {
	// KeepShadows keeps hidden renderers in the shadow pass.
	KeepShadows bool

	proxies   []*engine.GameObject
	colliders []components.Collider
	renderers []*components.MeshRenderer
}

func NewLODGroupStrategy(keepShadows bool) *LODGroupStrategy {
	return &LODGroupStrategy{KeepShadows: keepShadows}
}

func (s *LODGroupStrategy) Name() string {
	return "lodgroup"
}

func (s *LODGroupStrategy) CheckCompatibilityAndGetComponents(owner *engine.GameObject) error {
	_, err := lodGroupOf(owner)
	return err
}

func lodGroupOf(owner *engine.GameObject) (*components.LODGroup, error) {
	if owner == nil {
		return nil, validationFailure("source has no owner", nil)
	}

	group := engine.GetComponent[*components.LODGroup](owner)
	if group == nil {
		return nil, validationFailure("object has no LOD group", owner)
	}

	if len(group.LODs) == 0 {
		return nil, validationFailure("LOD group has no levels", owner)
	}

	for _, r := range group.LODs[0].Renderers {
		if r != nil && r.HasGeometry() {
			return group, nil
		}
	}
	return nil, validationFailure("LOD 0 has no renderer with a mesh", owner)
}

// PrepareForCulling returns the existing proxies until ClearData.
func (s *LODGroupStrategy) PrepareForCulling(owner *engine.GameObject) ([]components.Collider, error) {
	if len(s.proxies) > 0 {
		return slices.Clone(s.colliders), nil
	}

	group, err := lodGroupOf(owner)
	if err != nil {
		return nil, err
	}

	var colliders []components.Collider
	for i, r := range group.LODs[0].Renderers {
		if r == nil || !r.HasGeometry() {
			logs.WithTag("object", owner.Name).
				WithTag("renderer", i).
				Warn("renderer without mesh skipped")
			continue
		}

		parent := r.GetGameObject()
		if parent == nil {
			logs.WithTag("object", owner.Name).
				WithTag("renderer", i).
				Warn("renderer not attached to an object skipped")
			continue
		}

		proxy := newProxy(parent)
		colliders = append(colliders, proxyCollider(proxy, r.Mesh))
		s.proxies = append(s.proxies, proxy)
		s.renderers = append(s.renderers, r)
	}

	if len(colliders) == 0 {
		return nil, validationFailure("no proxy could be built", owner)
	}
	s.colliders = colliders
	return slices.Clone(colliders), nil
}

// proxyCollider uses the triangles when the mesh has them and falls back to
// a box sized to the mesh bounds.
func proxyCollider(proxy *engine.GameObject, mesh *components.Mesh) components.Collider {
	if mesh.HasTriangles() {
		mc := components.NewMeshCollider()
		proxy.AddComponent(mc)
		mc.BuildFromMesh(mesh)
		return mc
	}

	bc := components.NewBoxCollider(mesh.Bounds.Size)
	bc.Offset = mesh.Bounds.Center
	bc.IsTrigger = true
	proxy.AddComponent(bc)
	return bc
}

func (s *LODGroupStrategy) TryGetBounds(owner *engine.GameObject) (physics.Bounds, error) {
	var bounds physics.Bounds
	found := false
	for _, r := range s.renderers {
		b, ok := r.WorldBounds()
		if !ok {
			continue
		}
		if !found {
			bounds, found = b, true
			continue
		}
		bounds = bounds.Encapsulate(b)
	}

	if !found {
		return physics.Bounds{}, boundsUnavailable("LOD group bounds requested before prepare", owner)
	}
	return bounds, nil
}

func (s *LODGroupStrategy) CreateCullingTarget(owner *engine.GameObject) (Target, error) {
	group, err := lodGroupOf(owner)
	if err != nil {
		return nil, err
	}

	bounds, err := s.TryGetBounds(owner)
	if err != nil {
		return nil, errors.New("creating LOD group target failed").
			WithType(errors.Type(err)).
			Wrap(err)
	}

	if s.KeepShadows {
		return NewLODGroupWithShadowsTarget(group, bounds), nil
	}
	return NewLODGroupTarget(group, bounds), nil
}

func (s *LODGroupStrategy) ClearData() {
	destroyProxies(s.proxies)
	s.proxies = nil
	s.colliders = nil
	s.renderers = nil
}
