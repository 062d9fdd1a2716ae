// Package world wires a scene to static and dynamic culling.
package world

import (
	"io"

	"culling3d/internal/components"
	"culling3d/internal/config"
	"culling3d/internal/culling"
	"culling3d/internal/engine"
	"culling3d/internal/physics"
	"culling3d/internal/pvs"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// boundsMargin pads scene bounds computed from renderers so that objects
// on the edge still fall inside the static tree.
const boundsMargin = 1

type World struct {
	Config     config.Config
	Scene      *engine.Scene
	Bounds     physics.Bounds
	Static     *CullingSystem
	Controller *culling.Controller
	RayFan     *RayFan
	Renderer   *Renderer

	staticTargets map[string]culling.Target
	staticOrder   []culling.Target
	occluders     []components.Collider
}

func New(cfg config.Config) *World {
	return &World{
		Config:        cfg,
		Scene:         engine.NewScene("Main"),
		Controller:    culling.NewController(cfg.Dynamic.ObjectsLifetime),
		RayFan:        NewRayFan(cfg.Dynamic.RayFan),
		Renderer:      NewRenderer(),
		staticTargets: make(map[string]culling.Target),
	}
}

// Initialize starts the scene, collects static targets and occluders and
// registers every dynamic culling source. Incompatible sources stay
// visible and are only logged.
func (w *World) Initialize() {
	w.Scene.Start()

	for _, g := range w.Scene.GameObjects {
		w.collect(g)
	}

	registered := 0
	for _, g := range w.Scene.GameObjects {
		for _, s := range engine.GetComponentsInChildren[*culling.Source](g) {
			if err := w.Controller.Register(s); err != nil {
				continue
			}
			registered++
		}
	}

	logs.WithTag("objects", len(w.Scene.GameObjects)).
		WithTag("static_targets", len(w.staticOrder)).
		WithTag("dynamic_sources", registered).
		WithTag("occluders", len(w.occluders)).
		Info("world initialized")
}

func (w *World) collect(g *engine.GameObject) {
	if g.HasTag(StaticTag) {
		if r := engine.GetComponent[*components.MeshRenderer](g); r != nil && r.Mesh != nil {
			t := culling.NewSimpleTarget(r)
			w.staticTargets[g.ID.String()] = t
			w.staticOrder = append(w.staticOrder, t)
		}
	}
	if c := engine.GetComponent[*components.BoxCollider](g); c != nil {
		w.occluders = append(w.occluders, c)
	}
	for _, child := range g.Children {
		w.collect(child)
	}
}

// StaticTargets returns the static targets in scene order.
func (w *World) StaticTargets() []culling.Target {
	return w.staticOrder
}

// StaticTarget resolves a bake target id.
func (w *World) StaticTarget(id string) (culling.Target, bool) {
	t, ok := w.staticTargets[id]
	return t, ok
}

// Bake builds, optimizes and applies a static tree for the scene.
func (w *World) Bake(sampler pvs.Sampler) (*pvs.Tree, error) {
	tree := pvs.New(w.Bounds, w.Config.Static)
	for _, t := range w.staticOrder {
		tree.AddTarget(t)
	}

	if err := tree.Build(sampler); err != nil {
		return nil, errors.New("building static tree failed").Wrap(err)
	}
	tree.Optimize()
	tree.Apply()
	return tree, nil
}

// LoadBake reads a bake file and hands it to the static culling system.
func (w *World) LoadBake(r io.Reader) error {
	tree, err := pvs.Load(r, w.Config.Static, w.StaticTarget)
	if err != nil {
		return err
	}
	w.UseTree(tree)
	return nil
}

func (w *World) UseTree(tree *pvs.Tree) {
	w.Static = NewCullingSystem(tree, w.Config.Static)
}

// Update advances the scene and both culling passes from the camera.
func (w *World) Update(deltaTime float32, cam rl.Camera3D) {
	w.Scene.Update(deltaTime)

	if w.Static != nil {
		w.Static.Update(cam.Position)
	}
	w.Controller.Tick(w.RayFan.Cast(cam, w.Controller.Colliders(), w.occluders))
}

// sceneBounds encloses every renderer of the scene.
func (w *World) sceneBounds() physics.Bounds {
	var bounds physics.Bounds
	found := false
	for _, g := range w.Scene.GameObjects {
		for _, r := range engine.GetComponentsInChildren[*components.MeshRenderer](g) {
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
	}
	margin := rl.Vector3{X: 2 * boundsMargin, Y: 2 * boundsMargin, Z: 2 * boundsMargin}
	return physics.NewBounds(bounds.Center, rl.Vector3Add(bounds.Size, margin))
}

func (w *World) Draw() {
	w.Renderer.Draw(w.Scene.GameObjects)
}
