package components

import (
	"culling3d/internal/engine"
	"culling3d/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// ShadowMode mirrors the usual renderer shadow casting options.
type ShadowMode int

const (
	ShadowsOn ShadowMode = iota
	ShadowsOff
	// ShadowsOnly draws into the shadow pass but not the color pass.
	ShadowsOnly
)

type MeshRenderer struct {
	engine.BaseComponent
	Mesh       *Mesh
	Color      rl.Color
	Enabled    bool
	ShadowMode ShadowMode
}

func NewMeshRenderer(mesh *Mesh, color rl.Color) *MeshRenderer {
	return &MeshRenderer{
		Mesh:    mesh,
		Color:   color,
		Enabled: true,
	}
}

// HasGeometry reports whether the renderer has a mesh worth proxying.
func (m *MeshRenderer) HasGeometry() bool {
	return m.Mesh != nil && (m.Mesh.HasTriangles() || !m.Mesh.Bounds.IsZero())
}

// WorldBounds returns the mesh bounds in world space, or false without a mesh.
func (m *MeshRenderer) WorldBounds() (physics.Bounds, bool) {
	g := m.GetGameObject()
	if g == nil || m.Mesh == nil {
		return physics.Bounds{}, false
	}
	return m.Mesh.Bounds.Transformed(g.WorldPosition(), g.WorldScale()), true
}

// Visible reports whether the color pass draws this renderer.
func (m *MeshRenderer) Visible() bool {
	g := m.GetGameObject()
	return m.Enabled && m.ShadowMode != ShadowsOnly && g != nil && g.Active
}

// CastsShadows reports whether the shadow pass draws this renderer.
func (m *MeshRenderer) CastsShadows() bool {
	g := m.GetGameObject()
	return m.Enabled && m.ShadowMode != ShadowsOff && g != nil && g.Active
}

func (m *MeshRenderer) Draw() {
	if !m.Visible() {
		return
	}
	m.draw(m.Color)
}

// DrawShadow draws the renderer as a flat caster for the shadow pass.
func (m *MeshRenderer) DrawShadow(color rl.Color) {
	if !m.CastsShadows() {
		return
	}
	m.draw(color)
}

func (m *MeshRenderer) draw(color rl.Color) {
	b, ok := m.WorldBounds()
	if !ok {
		return
	}

	switch m.Mesh.Type {
	case MeshCube:
		rl.DrawCubeV(b.Center, b.Size, color)
	case MeshSphere:
		rl.DrawSphere(b.Center, b.Size.X/2, color)
	case MeshPlane:
		rl.DrawPlane(b.Center, rl.Vector2{X: b.Size.X, Y: b.Size.Z}, color)
	default:
		m.drawTriangles(color)
	}
}

func (m *MeshRenderer) drawTriangles(color rl.Color) {
	g := m.GetGameObject()
	pos := g.WorldPosition()
	scale := g.WorldScale()
	for i := 0; i < m.Mesh.TriangleCount(); i++ {
		v0, v1, v2 := m.Mesh.Triangle(i)
		rl.DrawTriangle3D(
			rl.Vector3Add(pos, rl.Vector3Multiply(v0, scale)),
			rl.Vector3Add(pos, rl.Vector3Multiply(v1, scale)),
			rl.Vector3Add(pos, rl.Vector3Multiply(v2, scale)),
			color,
		)
	}
}
