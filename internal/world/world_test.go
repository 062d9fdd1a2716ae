package world

import (
	"bytes"
	"strings"
	"testing"

	"culling3d/internal/components"
	"culling3d/internal/config"
	"culling3d/internal/culling"
	"culling3d/internal/engine"
	"culling3d/internal/physics"
	"culling3d/internal/pvs"

	"github.com/aukilabs/go-tooling/pkg/errors"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/require"
)

const (
	nearID = "11111111-1111-1111-1111-111111111111"
	farID  = "22222222-2222-2222-2222-222222222222"
)

const testScene = `{
  "bounds": {"center": [0, 0, 0], "size": [32, 8, 32]},
  "objects": [
    {
      "id": "11111111-1111-1111-1111-111111111111",
      "name": "Near",
      "static": true,
      "position": [2, 0, 2],
      "components": [
        {"type": "MeshRenderer", "mesh": "cube", "meshSize": [1], "color": "Red"},
        {"type": "BoxCollider", "size": [1, 1, 1]}
      ]
    },
    {
      "id": "22222222-2222-2222-2222-222222222222",
      "name": "Far",
      "static": true,
      "position": [14, 0, 14],
      "components": [
        {"type": "MeshRenderer", "mesh": "cube", "meshSize": [1], "color": "Blue", "shadows": "off"}
      ]
    },
    {
      "name": "Tree",
      "position": [0, 0, 10],
      "children": [
        {"name": "LOD0", "components": [{"type": "MeshRenderer", "mesh": "cube", "meshSize": [1, 3, 1], "color": "Green"}]},
        {"name": "LOD1", "components": [{"type": "MeshRenderer", "color": "Green"}]}
      ],
      "components": [
        {"type": "LODGroup", "levels": [
          {"height": 0.6, "renderers": ["LOD0"]},
          {"height": 0.2, "renderers": ["LOD1"]}
        ]},
        {"type": "DynamicCullingSource", "strategy": "lodgroup", "keepShadows": false}
      ]
    },
    {
      "name": "Door",
      "position": [0, 0, -10],
      "components": [
        {"type": "DynamicCullingSource", "strategy": "custom", "localBounds": {"center": [0, 1, 0], "size": [2, 2, 0.2]}},
        {"type": "Sparkles"}
      ]
    }
  ]
}`

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Dynamic.ObjectsLifetime = 1
	return cfg
}

func loadTestWorld(t *testing.T) *World {
	w := New(testConfig())
	generated, err := w.DecodeScene(strings.NewReader(testScene))
	require.NoError(t, err)
	require.Equal(t, 4, generated)
	w.Initialize()
	return w
}

func findObject(w *World, name string) *engine.GameObject {
	if g := w.Scene.FindByName(name); g != nil {
		return g
	}
	for _, root := range w.Scene.GameObjects {
		if g := findDescendant(root, name); g != nil {
			return g
		}
	}
	return nil
}

func rendererOf(t *testing.T, w *World, name string) *components.MeshRenderer {
	g := findObject(w, name)
	require.NotNil(t, g, name)
	r := engine.GetComponent[*components.MeshRenderer](g)
	require.NotNil(t, r, name)
	return r
}

func TestDecodeScene(t *testing.T) {
	w := loadTestWorld(t)

	require.Len(t, w.Scene.GameObjects, 4)
	require.Equal(t, rl.Vector3{X: 32, Y: 8, Z: 32}, w.Bounds.Size)

	near := w.Scene.FindByName("Near")
	require.Equal(t, nearID, near.ID.String())
	require.True(t, near.HasTag(StaticTag))
	require.Equal(t, components.ShadowsOff, rendererOf(t, w, "Far").ShadowMode)

	tree := w.Scene.FindByName("Tree")
	group := engine.GetComponent[*components.LODGroup](tree)
	require.NotNil(t, group)
	require.Len(t, group.LODs, 2)
	require.Equal(t, "LOD0", group.LODs[0].Renderers[0].GetGameObject().Name)
	require.Nil(t, group.LODs[1].Renderers[0].Mesh)

	source := engine.GetComponent[*culling.Source](tree)
	require.NotNil(t, source)
	require.True(t, source.ReadyForCulling())
	require.Equal(t, 1, source.ColliderCount())

	door := engine.GetComponent[*culling.Source](w.Scene.FindByName("Door"))
	require.IsType(t, &culling.CustomBoundsStrategy{}, door.Strategy)

	require.Len(t, w.StaticTargets(), 2)
	require.Equal(t, 2, w.Controller.Len())
}

func TestDecodeSceneErrors(t *testing.T) {
	tests := []struct {
		name  string
		scene string
	}{
		{name: "malformed", scene: `{"objects": [`},
		{name: "bad id", scene: `{"objects": [{"id": "nope", "name": "A"}]}`},
		{name: "unknown strategy", scene: `{"objects": [{"name": "A", "components": [{"type": "DynamicCullingSource", "strategy": "magic"}]}]}`},
		{name: "missing lod renderer", scene: `{"objects": [{"name": "A", "components": [{"type": "LODGroup", "levels": [{"renderers": ["B"]}]}]}]}`},
		{name: "unknown mesh", scene: `{"objects": [{"name": "A", "components": [{"type": "MeshRenderer", "mesh": "torus"}]}]}`},
		{name: "unknown shadows", scene: `{"objects": [{"name": "A", "components": [{"type": "MeshRenderer", "mesh": "cube", "shadows": "maybe"}]}]}`},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			w := New(testConfig())
			_, err := w.DecodeScene(strings.NewReader(test.scene))
			require.Error(t, err)
			require.Equal(t, ErrTypeInvalidScene, errors.Type(err))
		})
	}
}

func TestDecodeSceneComputesBounds(t *testing.T) {
	w := New(testConfig())
	_, err := w.DecodeScene(strings.NewReader(`{"objects": [
		{"name": "A", "position": [-3, 0, 0], "components": [{"type": "MeshRenderer", "mesh": "cube"}]},
		{"name": "B", "position": [3, 0, 0], "components": [{"type": "MeshRenderer", "mesh": "cube"}]}
	]}`))
	require.NoError(t, err)
	require.Equal(t, rl.Vector3{}, w.Bounds.Center)
	require.Equal(t, rl.Vector3{X: 9, Y: 3, Z: 3}, w.Bounds.Size)
}

func TestEncodeSceneRoundTrip(t *testing.T) {
	w := loadTestWorld(t)

	var buf bytes.Buffer
	require.NoError(t, w.EncodeScene(&buf))
	require.NotContains(t, buf.String(), culling.ProxyName)

	reloaded := New(testConfig())
	generated, err := reloaded.DecodeScene(&buf)
	require.NoError(t, err)
	require.Zero(t, generated)
	require.Equal(t, w.Bounds, reloaded.Bounds)

	for _, name := range []string{"Near", "Far", "Tree", "Door"} {
		a, b := w.Scene.FindByName(name), reloaded.Scene.FindByName(name)
		require.Equal(t, a.ID, b.ID, name)
		require.Equal(t, a.Transform, b.Transform, name)
		require.Len(t, b.Components(), len(a.Components()), name)
	}

	strategy := engine.GetComponent[*culling.Source](reloaded.Scene.FindByName("Door")).Strategy.(*culling.CustomBoundsStrategy)
	require.Equal(t, rl.Vector3{X: 2, Y: 2, Z: 0.2}, strategy.LocalBounds.Size)

	reloaded.Initialize()
	require.Equal(t, 2, reloaded.Controller.Len())
}

func TestBakeAndStaticCulling(t *testing.T) {
	baker := loadTestWorld(t)
	tree, err := baker.Bake(pvs.DistanceSampler{ViewDistance: 6})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tree.Save(&buf))

	w := loadTestWorld(t)
	require.NoError(t, w.LoadBake(&buf))
	require.Len(t, w.Static.Tree.Targets(), 2)

	near, far := rendererOf(t, w, "Near"), rendererOf(t, w, "Far")

	require.True(t, w.Static.Update(rl.Vector3{}))
	require.True(t, near.Enabled)
	require.False(t, far.Enabled)

	require.False(t, w.Static.Update(rl.Vector3{X: 0.1}), "below move threshold")

	require.True(t, w.Static.Update(rl.Vector3{X: 14, Z: 14}))
	require.False(t, near.Enabled)
	require.True(t, far.Enabled)
	require.Equal(t, 1, w.Static.ActiveTargets())

	w.Static.SetCellRadius(30)
	require.True(t, w.Static.Update(rl.Vector3{X: 14, Z: 14}))
	require.True(t, near.Enabled)
	require.True(t, far.Enabled)
}

func TestCullingSystemFallbacks(t *testing.T) {
	var none CullingSystem
	require.False(t, none.Update(rl.Vector3{}))

	target := culling.NewCustomTarget(engine.NewGameObject("A"), physics.Bounds{}, nil, nil)
	tree := pvs.New(physics.NewBounds(rl.Vector3{}, rl.Vector3{X: 4, Y: 4, Z: 4}), config.Default().Static)
	tree.AddTarget(target)
	target.Hide()

	system := NewCullingSystem(tree, config.Default().Static)
	require.False(t, system.Update(rl.Vector3{}))
	require.True(t, target.Visible(), "unbuilt tree shows everything")
}

func TestWorldUpdateDrivesDynamicCulling(t *testing.T) {
	w := loadTestWorld(t)

	cam := rl.Camera3D{
		Position:   rl.Vector3{Y: 1},
		Target:     rl.Vector3{Y: 1, Z: 10},
		Up:         rl.Vector3{Y: 1},
		Fovy:       45,
		Projection: rl.CameraPerspective,
	}
	w.Update(0.016, cam)

	states := map[string]bool{}
	for col := range w.Controller.Colliders() {
		target, ok := w.Controller.TargetFor(col)
		require.True(t, ok)
		states[target.Owner().Name] = target.Visible()
	}
	require.Equal(t, map[string]bool{"Tree": true, "Door": false}, states)

	lod0 := rendererOf(t, w, "LOD0")
	require.True(t, lod0.Enabled)

	cam.Target = rl.Vector3{Y: 1, Z: -10}
	w.Update(0.016, cam)
	require.False(t, lod0.Enabled)
}

func TestRayFan(t *testing.T) {
	cam := rl.Camera3D{
		Position: rl.Vector3{},
		Target:   rl.Vector3{Z: 1},
		Up:       rl.Vector3{Y: 1},
		Fovy:     45,
	}

	box := func(z float32) components.Collider {
		g := engine.NewGameObject("Box")
		g.Transform.Position = rl.Vector3{Z: z}
		c := components.NewBoxCollider(rl.Vector3{X: 2, Y: 2, Z: 0.5})
		g.AddComponent(c)
		return c
	}
	seq := func(cs ...components.Collider) func(func(components.Collider) bool) {
		return func(yield func(components.Collider) bool) {
			for _, c := range cs {
				if !yield(c) {
					return
				}
			}
		}
	}

	front, behind := box(10), box(-10)
	fan := NewRayFan(8)

	hits := fan.Cast(cam, seq(front, behind), nil)
	require.Equal(t, []components.Collider{front}, hits)

	hits = fan.Cast(cam, seq(front), []components.Collider{box(5)})
	require.Empty(t, hits, "occluded")

	hits = fan.Cast(cam, seq(front), []components.Collider{box(20)})
	require.Len(t, hits, 1, "occluder behind the proxy")

	require.Empty(t, fan.Cast(cam, seq(), nil))
}

func TestRendererCollect(t *testing.T) {
	w := loadTestWorld(t)
	near := rendererOf(t, w, "Near")
	near.ShadowMode = components.ShadowsOnly

	visible, casters := w.Renderer.Collect(w.Scene.GameObjects)
	require.NotContains(t, visible, near)
	require.Contains(t, casters, near)
	require.NotContains(t, casters, rendererOf(t, w, "Far"))

	require.Equal(t, RenderStats{Drawn: 2, Shadows: 2, Culled: 1}, w.Renderer.Stats)
}
