package culling

import (
	"slices"
	"testing"

	"culling3d/internal/components"
	"culling3d/internal/engine"
	"culling3d/internal/physics"

	"github.com/aukilabs/go-tooling/pkg/errors"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/require"
)

func cube(size float32) *components.Mesh {
	return components.NewPrimitiveMesh("cube", components.MeshCube, rl.Vector3{X: size, Y: size, Z: size})
}

func triangleMesh() *components.Mesh {
	return components.NewMesh("tri", []rl.Vector3{
		{X: -1, Y: -1}, {X: 1, Y: -1}, {X: 0, Y: 1},
	}, nil)
}

// lodObject builds an object with one child renderer per mesh, each in its
// own LOD level.
func lodObject(name string, meshes ...*components.Mesh) (*engine.GameObject, *components.LODGroup) {
	owner := engine.NewGameObject(name)
	var lods []components.LOD
	for _, m := range meshes {
		child := engine.NewGameObject(name + "_LOD")
		r := components.NewMeshRenderer(m, rl.Gray)
		child.AddComponent(r)
		owner.AddChild(child)
		lods = append(lods, components.LOD{Renderers: []*components.MeshRenderer{r}})
	}
	group := components.NewLODGroup(lods...)
	owner.AddComponent(group)
	return owner, group
}

func TestTargetShowHideIdempotent(t *testing.T) {
	newTargets := func() map[string]Target {
		g := engine.NewGameObject("Simple")
		r := components.NewMeshRenderer(cube(1), rl.Gray)
		g.AddComponent(r)

		_, group := lodObject("Tree", cube(1), cube(1))
		_, shadowGroup := lodObject("Rock", cube(1))

		return map[string]Target{
			"simple":           NewSimpleTarget(r),
			"lodgroup":         NewLODGroupTarget(group, physics.Bounds{}),
			"lodgroup_shadows": NewLODGroupWithShadowsTarget(shadowGroup, physics.Bounds{}),
			"custom":           NewCustomTarget(engine.NewGameObject("Custom"), physics.Bounds{}, nil, nil),
		}
	}

	for name, target := range newTargets() {
		t.Run(name, func(t *testing.T) {
			require.True(t, target.Visible())

			target.Show()
			require.True(t, target.Visible())

			target.Hide()
			target.Hide()
			require.False(t, target.Visible())

			target.Show()
			target.Show()
			require.True(t, target.Visible())
		})
	}
}

func TestSimpleTargetTogglesRenderer(t *testing.T) {
	g := engine.NewGameObject("Simple")
	r := components.NewMeshRenderer(cube(1), rl.Gray)
	g.AddComponent(r)

	target := NewSimpleTarget(r)
	target.Hide()
	require.False(t, r.Enabled)
	target.Show()
	require.True(t, r.Enabled)
	require.Equal(t, g, target.Owner())
}

func TestLODGroupTargetTogglesAllLevels(t *testing.T) {
	owner, group := lodObject("Tree", cube(1), cube(1), nil)
	target := NewLODGroupTarget(group, physics.Bounds{})
	require.Equal(t, owner, target.Owner())

	target.Hide()
	for _, r := range group.Renderers() {
		require.False(t, r.Enabled)
	}

	target.Show()
	for _, r := range group.Renderers() {
		require.True(t, r.Enabled)
	}
}

func TestLODGroupWithShadowsTargetKeepsShadows(t *testing.T) {
	_, group := lodObject("Tree", cube(1), cube(1))
	renderers := group.Renderers()
	renderers[1].ShadowMode = components.ShadowsOff

	target := NewLODGroupWithShadowsTarget(group, physics.Bounds{})
	target.Hide()

	require.True(t, renderers[0].Enabled)
	require.Equal(t, components.ShadowsOnly, renderers[0].ShadowMode)
	require.False(t, renderers[0].Visible())
	require.True(t, renderers[0].CastsShadows())
	require.False(t, renderers[1].Enabled)

	target.Show()
	require.Equal(t, components.ShadowsOn, renderers[0].ShadowMode)
	require.Equal(t, components.ShadowsOff, renderers[1].ShadowMode)
	require.True(t, renderers[1].Enabled)
}

func TestCustomTargetFiresOncePerTransition(t *testing.T) {
	var visible, invisible engine.Event
	shown, hidden := 0, 0
	visible.AddListener(func() { shown++ })
	invisible.AddListener(func() { hidden++ })

	target := NewCustomTarget(engine.NewGameObject("Door"), physics.Bounds{}, &visible, &invisible)
	target.Show()
	require.Zero(t, shown)

	target.Hide()
	target.Hide()
	require.Equal(t, 1, hidden)

	target.Show()
	target.Show()
	require.Equal(t, 1, shown)
}

func TestLODGroupStrategyOnlyLevelZeroHasMesh(t *testing.T) {
	owner, group := lodObject("Tree", cube(2), nil, nil)
	owner.Transform.Position = rl.Vector3{X: 10}

	s := NewLODGroupStrategy(false)
	require.NoError(t, s.CheckCompatibilityAndGetComponents(owner))

	colliders, err := s.PrepareForCulling(owner)
	require.NoError(t, err)
	require.Len(t, colliders, 1)

	box, ok := colliders[0].(*components.BoxCollider)
	require.True(t, ok)
	require.True(t, box.IsTrigger)

	proxy := box.GetGameObject()
	require.Equal(t, ProxyName, proxy.Name)
	require.Equal(t, group.LODs[0].Renderers[0].GetGameObject(), proxy.Parent)

	bounds, err := s.TryGetBounds(owner)
	require.NoError(t, err)
	require.Equal(t, rl.Vector3{X: 10}, bounds.Center)
	require.Equal(t, rl.Vector3{X: 2, Y: 2, Z: 2}, bounds.Size)
	require.True(t, bounds.ApproxEqual(box.WorldBounds(), 1e-5))

	target, err := s.CreateCullingTarget(owner)
	require.NoError(t, err)
	require.IsType(t, &LODGroupTarget{}, target)
	require.Equal(t, bounds, target.Bounds())
}

func TestLODGroupStrategyMeshProxy(t *testing.T) {
	owner, _ := lodObject("Statue", triangleMesh())

	s := NewLODGroupStrategy(true)
	colliders, err := s.PrepareForCulling(owner)
	require.NoError(t, err)
	require.Len(t, colliders, 1)

	mc, ok := colliders[0].(*components.MeshCollider)
	require.True(t, ok)
	require.True(t, mc.IsBuilt())
	require.Equal(t, 1, mc.TriangleCount())

	target, err := s.CreateCullingTarget(owner)
	require.NoError(t, err)
	require.IsType(t, &LODGroupWithShadowsTarget{}, target)
}

func TestLODGroupStrategyIncompatible(t *testing.T) {
	withoutLevels := engine.NewGameObject("Empty")
	withoutLevels.AddComponent(components.NewLODGroup())

	meshless, _ := lodObject("Meshless", nil, cube(1))

	tests := []struct {
		name  string
		owner *engine.GameObject
	}{
		{name: "nil owner"},
		{name: "no lod group", owner: engine.NewGameObject("Plain")},
		{name: "no levels", owner: withoutLevels},
		{name: "level zero without mesh", owner: meshless},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s := NewLODGroupStrategy(false)

			err := s.CheckCompatibilityAndGetComponents(test.owner)
			require.Error(t, err)
			require.Equal(t, ErrTypeValidationFailure, errors.Type(err))

			_, err = s.PrepareForCulling(test.owner)
			require.Error(t, err)
		})
	}
}

func TestLODGroupStrategyBoundsBeforePrepare(t *testing.T) {
	owner, _ := lodObject("Tree", cube(1))

	s := NewLODGroupStrategy(false)
	_, err := s.TryGetBounds(owner)
	require.Error(t, err)
	require.Equal(t, ErrTypeBoundsUnavailable, errors.Type(err))

	_, err = s.CreateCullingTarget(owner)
	require.Error(t, err)
	require.Equal(t, ErrTypeBoundsUnavailable, errors.Type(err))
}

func TestCustomBoundsStrategyZeroBounds(t *testing.T) {
	owner := engine.NewGameObject("Marker")
	owner.Transform.Position = rl.Vector3{X: 3, Y: 4, Z: 5}

	s := NewCustomBoundsStrategy(physics.Bounds{})
	require.NoError(t, s.CheckCompatibilityAndGetComponents(owner))

	bounds, err := s.TryGetBounds(owner)
	require.NoError(t, err)
	require.Equal(t, rl.Vector3{X: 3, Y: 4, Z: 5}, bounds.Center)
	require.Equal(t, rl.Vector3{}, bounds.Size)
}

func TestCustomBoundsStrategyScaledBounds(t *testing.T) {
	owner := engine.NewGameObject("Door")
	owner.Transform.Position = rl.Vector3{X: 1}
	owner.Transform.Scale = rl.Vector3{X: 2, Y: 2, Z: 2}

	s := NewCustomBoundsStrategy(physics.NewBounds(rl.Vector3{Y: 1}, rl.Vector3{X: 1, Y: 2, Z: 1}))
	colliders, err := s.PrepareForCulling(owner)
	require.NoError(t, err)
	require.Len(t, colliders, 1)

	bounds, err := s.TryGetBounds(owner)
	require.NoError(t, err)
	require.Equal(t, rl.Vector3{X: 1, Y: 2}, bounds.Center)
	require.Equal(t, rl.Vector3{X: 2, Y: 4, Z: 2}, bounds.Size)
	require.True(t, bounds.ApproxEqual(colliders[0].WorldBounds(), 1e-5))
}

func TestCustomBoundsStrategyIncompatible(t *testing.T) {
	s := NewCustomBoundsStrategy(physics.Bounds{Size: rl.Vector3{X: -1, Y: 1, Z: 1}})

	err := s.CheckCompatibilityAndGetComponents(engine.NewGameObject("Broken"))
	require.Equal(t, ErrTypeValidationFailure, errors.Type(err))

	err = s.CheckCompatibilityAndGetComponents(nil)
	require.Equal(t, ErrTypeValidationFailure, errors.Type(err))
}

func TestCustomBoundsStrategyEvents(t *testing.T) {
	owner := engine.NewGameObject("Door")
	s := NewCustomBoundsStrategy(physics.Bounds{})

	hidden := false
	s.OnInvisible.AddListener(func() { hidden = true })

	target, err := s.CreateCullingTarget(owner)
	require.NoError(t, err)
	target.Hide()
	require.True(t, hidden)
}

func TestSourcePrepareIsIdempotent(t *testing.T) {
	owner, _ := lodObject("Tree", cube(1))
	lod0 := owner.Children[0]

	source := NewSource(NewLODGroupStrategy(false))
	owner.AddComponent(source)
	require.False(t, source.ReadyForCulling())

	require.NoError(t, source.PrepareForCulling())
	require.NoError(t, source.PrepareForCulling())
	require.True(t, source.ReadyForCulling())
	require.Equal(t, 1, source.ColliderCount())
	require.Len(t, lod0.Children, 1)

	count := 0
	for range source.Colliders() {
		count++
	}
	require.Equal(t, 1, count)

	source.ClearData()
	source.ClearData()
	require.False(t, source.ReadyForCulling())
	require.Empty(t, lod0.Children)
	for range source.Colliders() {
		t.Fatal("cleared source yielded a collider")
	}
}

func TestSourceCollidersReadLiveList(t *testing.T) {
	owner := engine.NewGameObject("Marker")
	source := NewSource(NewCustomBoundsStrategy(physics.NewBounds(rl.Vector3{}, rl.Vector3{X: 1, Y: 1, Z: 1})))
	owner.AddComponent(source)

	seq := source.Colliders()
	require.NoError(t, source.PrepareForCulling())

	count := 0
	for range seq {
		count++
	}
	require.Equal(t, 1, count)
}

func TestSourceClearedOnDestroy(t *testing.T) {
	owner := engine.NewGameObject("Marker")
	source := NewSource(NewCustomBoundsStrategy(physics.Bounds{}))
	owner.AddComponent(source)
	require.NoError(t, source.PrepareForCulling())
	require.Len(t, owner.Children, 1)

	owner.Destroy()
	require.False(t, source.ReadyForCulling())
	require.Zero(t, source.ColliderCount())
}

func TestControllerHidesAfterLifetime(t *testing.T) {
	owner, group := lodObject("Tree", cube(1))
	source := NewSource(NewLODGroupStrategy(false))
	owner.AddComponent(source)

	c := NewController(2)
	require.NoError(t, c.Register(source))
	require.NoError(t, c.Register(source))
	require.Equal(t, 1, c.Len())

	var proxy components.Collider
	for col := range c.Colliders() {
		proxy = col
	}
	require.NotNil(t, proxy)

	target, ok := c.TargetFor(proxy)
	require.True(t, ok)

	c.Tick(nil)
	require.True(t, target.Visible())

	c.Tick(nil)
	require.False(t, target.Visible())
	require.False(t, group.LODs[0].Renderers[0].Enabled)

	c.Tick([]components.Collider{proxy})
	require.True(t, target.Visible())
	require.True(t, group.LODs[0].Renderers[0].Enabled)

	c.Tick([]components.Collider{components.NewBoxCollider(rl.Vector3{})})
	require.True(t, target.Visible())
}

func TestControllerRejectsIncompatibleSource(t *testing.T) {
	owner := engine.NewGameObject("Plain")
	source := NewSource(NewLODGroupStrategy(false))
	owner.AddComponent(source)

	c := NewController(1)
	err := c.Register(source)
	require.Equal(t, ErrTypeValidationFailure, errors.Type(err))
	require.Zero(t, c.Len())
	require.False(t, source.ReadyForCulling())

	detached := NewSource(NewCustomBoundsStrategy(physics.Bounds{}))
	err = c.Register(detached)
	require.Equal(t, ErrTypeValidationFailure, errors.Type(err))
}

func TestControllerUnregisterShowsTarget(t *testing.T) {
	owner := engine.NewGameObject("Door")
	strategy := NewCustomBoundsStrategy(physics.Bounds{})
	source := NewSource(strategy)
	owner.AddComponent(source)

	shown := 0
	strategy.OnVisible.AddListener(func() { shown++ })

	c := NewController(1)
	require.NoError(t, c.Register(source))
	c.Tick(nil)

	c.Unregister(source)
	require.Equal(t, 1, shown)
	require.Zero(t, c.Len())
	require.False(t, source.ReadyForCulling())
	require.Empty(t, owner.Children)

	c.Unregister(source)
}

func proxyChildren(g *engine.GameObject) int {
	n := 0
	for _, child := range g.Children {
		if child.Name == ProxyName {
			n++
		}
		n += proxyChildren(child)
	}
	return n
}

func TestStrategyPrepareIsIdempotent(t *testing.T) {
	t.Run("custom", func(t *testing.T) {
		owner := engine.NewGameObject("Marker")
		s := NewCustomBoundsStrategy(physics.NewBounds(rl.Vector3{}, rl.Vector3{X: 1, Y: 1, Z: 1}))

		first, err := s.PrepareForCulling(owner)
		require.NoError(t, err)
		second, err := s.PrepareForCulling(owner)
		require.NoError(t, err)
		require.Equal(t, first, second)
		require.Equal(t, 1, proxyChildren(owner))

		s.ClearData()
		require.Zero(t, proxyChildren(owner))
	})

	t.Run("lodgroup", func(t *testing.T) {
		owner, _ := lodObject("Tree", cube(1), cube(0.5))
		s := NewLODGroupStrategy(false)

		first, err := s.PrepareForCulling(owner)
		require.NoError(t, err)
		second, err := s.PrepareForCulling(owner)
		require.NoError(t, err)
		require.Len(t, second, 1)
		require.Equal(t, first, second)
		require.Equal(t, 1, proxyChildren(owner))

		bounds, err := s.TryGetBounds(owner)
		require.NoError(t, err)
		require.Equal(t, rl.Vector3{X: 1, Y: 1, Z: 1}, bounds.Size)

		s.ClearData()
		require.Zero(t, proxyChildren(owner))
	})
}

func TestCustomBoundsStrategyVisibilityChanged(t *testing.T) {
	owner := engine.NewGameObject("Door")
	s := NewCustomBoundsStrategy(physics.Bounds{})

	var changes []bool
	s.OnVisibilityChanged.AddListener(func(visible bool) { changes = append(changes, visible) })

	target, err := s.CreateCullingTarget(owner)
	require.NoError(t, err)
	target.Show()
	target.Hide()
	target.Hide()
	target.Show()
	require.Equal(t, []bool{false, true}, changes)
}

func TestControllerDropsDestroyedSource(t *testing.T) {
	owner := engine.NewGameObject("Door")
	source := NewSource(NewCustomBoundsStrategy(physics.Bounds{}))
	owner.AddComponent(source)

	c := NewController(1)
	require.NoError(t, c.Register(source))
	proxy := slices.Collect(c.Colliders())
	require.Len(t, proxy, 1)

	owner.Destroy()
	require.False(t, source.ReadyForCulling())

	c.Tick(proxy)
	require.Zero(t, c.Len())
	_, ok := c.TargetFor(proxy[0])
	require.False(t, ok)

	c.Unregister(source)
	require.Zero(t, c.Len())
}

func TestControllerUnregisterAfterDestroy(t *testing.T) {
	owner := engine.NewGameObject("Door")
	source := NewSource(NewCustomBoundsStrategy(physics.Bounds{}))
	owner.AddComponent(source)

	c := NewController(1)
	require.NoError(t, c.Register(source))
	proxy := slices.Collect(c.Colliders())

	owner.Destroy()
	c.Unregister(source)
	require.Zero(t, c.Len())
	_, ok := c.TargetFor(proxy[0])
	require.False(t, ok)
}
