package components

import (
	"culling3d/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
)

type MeshType int

const (
	MeshCube MeshType = iota
	MeshSphere
	MeshPlane
	MeshCustom
)

// Mesh is renderable geometry in local space. Primitive meshes carry only
// bounds; custom meshes also carry triangles.
type Mesh struct {
	Name     string
	Type     MeshType
	Bounds   physics.Bounds
	Vertices []rl.Vector3
	Indices  []uint16
}

// NewPrimitiveMesh creates a cube, sphere or plane of the given size, centered on the origin.
// Sphere size is a diameter on every axis and planes are flat on Y.
func NewPrimitiveMesh(name string, meshType MeshType, size rl.Vector3) *Mesh {
	switch meshType {
	case MeshSphere:
		size = rl.Vector3{X: size.X, Y: size.X, Z: size.X}
	case MeshPlane:
		size.Y = 0
	}
	return &Mesh{
		Name:   name,
		Type:   meshType,
		Bounds: physics.NewBounds(rl.Vector3{}, size),
	}
}

// NewMesh creates a custom mesh. Without indices every three vertices form a triangle.
func NewMesh(name string, vertices []rl.Vector3, indices []uint16) *Mesh {
	m := &Mesh{Name: name, Type: MeshCustom, Vertices: vertices, Indices: indices}
	if len(vertices) > 0 {
		b := physics.NewBounds(vertices[0], rl.Vector3{})
		for _, v := range vertices[1:] {
			b = b.EncapsulatePoint(v)
		}
		m.Bounds = b
	}
	return m
}

func (m *Mesh) HasTriangles() bool {
	if m == nil {
		return false
	}
	if len(m.Indices) > 0 {
		return len(m.Indices) >= 3
	}
	return len(m.Vertices) >= 3
}

// TriangleCount returns the number of complete triangles.
func (m *Mesh) TriangleCount() int {
	if m == nil {
		return 0
	}
	if len(m.Indices) > 0 {
		return len(m.Indices) / 3
	}
	return len(m.Vertices) / 3
}

// Triangle returns the corners of triangle i in local space.
func (m *Mesh) Triangle(i int) (v0, v1, v2 rl.Vector3) {
	if len(m.Indices) > 0 {
		return m.Vertices[m.Indices[i*3]], m.Vertices[m.Indices[i*3+1]], m.Vertices[m.Indices[i*3+2]]
	}
	return m.Vertices[i*3], m.Vertices[i*3+1], m.Vertices[i*3+2]
}
