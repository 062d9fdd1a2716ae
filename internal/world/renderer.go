package world

import (
	"culling3d/internal/components"
	"culling3d/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// shadowLift keeps planar shadows above the ground to avoid z-fighting.
const shadowLift = 0.01

// Renderer draws mesh renderers with flat planar shadows on the ground
// plane. Hidden renderers left in the shadow pass still cast.
type Renderer struct {
	LightDir    rl.Vector3
	ShadowColor rl.Color
	Stats       RenderStats

	visible []*components.MeshRenderer
	casters []*components.MeshRenderer
}

type RenderStats struct {
	Drawn   int
	Shadows int
	Culled  int
}

func NewRenderer() *Renderer {
	return &Renderer{
		LightDir:    rl.Vector3Normalize(rl.Vector3{X: 0.35, Y: -1.0, Z: -0.35}),
		ShadowColor: rl.NewColor(0, 0, 0, 90),
	}
}

func (r *Renderer) MoveLightDir(dx, dy, dz float32) {
	r.LightDir.X += dx
	r.LightDir.Y += dy
	r.LightDir.Z += dz
	r.LightDir = rl.Vector3Normalize(r.LightDir)
}

// Collect sorts the scene renderers into the color and shadow passes and
// updates Stats.
func (r *Renderer) Collect(gameObjects []*engine.GameObject) (visible, casters []*components.MeshRenderer) {
	r.visible = r.visible[:0]
	r.casters = r.casters[:0]
	r.Stats = RenderStats{}

	for _, g := range gameObjects {
		for _, mr := range engine.GetComponentsInChildren[*components.MeshRenderer](g) {
			if mr.Mesh == nil {
				continue
			}
			if mr.CastsShadows() {
				r.casters = append(r.casters, mr)
			}
			if mr.Visible() {
				r.visible = append(r.visible, mr)
			} else {
				r.Stats.Culled++
			}
		}
	}

	r.Stats.Drawn = len(r.visible)
	r.Stats.Shadows = len(r.casters)
	return r.visible, r.casters
}

func (r *Renderer) Draw(gameObjects []*engine.GameObject) {
	visible, casters := r.Collect(gameObjects)
	for _, mr := range casters {
		r.drawShadow(mr)
	}
	for _, mr := range visible {
		mr.Draw()
	}
}

// drawShadow projects the renderer bounds along the light onto y = 0.
func (r *Renderer) drawShadow(mr *components.MeshRenderer) {
	b, ok := mr.WorldBounds()
	if !ok || r.LightDir.Y >= 0 || b.Min().Y < 0 {
		return
	}
	t := b.Center.Y / -r.LightDir.Y
	center := rl.Vector3Add(b.Center, rl.Vector3Scale(r.LightDir, t))
	center.Y = shadowLift
	rl.DrawCubeV(center, rl.Vector3{X: b.Size.X, Y: 0, Z: b.Size.Z}, r.ShadowColor)
}
