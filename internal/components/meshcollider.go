package components

import (
	"math"

	"culling3d/internal/engine"
	"culling3d/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Triangle represents a single world-space triangle with precomputed normal
type Triangle struct {
	V0, V1, V2 rl.Vector3
	Normal     rl.Vector3
}

// BVHNode is a node in the bounding volume hierarchy
type BVHNode struct {
	Bounds    physics.Bounds
	Left      *BVHNode
	Right     *BVHNode
	Triangles []int // indices into the triangle array (only for leaf nodes)
}

// MeshCollider tests rays against mesh triangles through a BVH.
// It is baked in world space, so moving the object requires a rebuild.
type MeshCollider struct {
	engine.BaseComponent
	Triangles []Triangle
	Root      *BVHNode
	built     bool
}

func NewMeshCollider() *MeshCollider {
	return &MeshCollider{}
}

// BuildFromMesh extracts triangles from mesh in the owner's world space and builds the BVH.
func (m *MeshCollider) BuildFromMesh(mesh *Mesh) {
	g := m.GetGameObject()
	if g == nil || !mesh.HasTriangles() {
		return
	}

	worldPos := g.WorldPosition()
	worldRot := g.WorldRotation()
	worldScale := g.WorldScale()

	scaleMatrix := rl.MatrixScale(worldScale.X, worldScale.Y, worldScale.Z)
	rotX := rl.MatrixRotateX(worldRot.X * rl.Deg2rad)
	rotY := rl.MatrixRotateY(worldRot.Y * rl.Deg2rad)
	rotZ := rl.MatrixRotateZ(worldRot.Z * rl.Deg2rad)
	rotMatrix := rl.MatrixMultiply(rl.MatrixMultiply(rotX, rotY), rotZ)
	transMatrix := rl.MatrixTranslate(worldPos.X, worldPos.Y, worldPos.Z)
	transform := rl.MatrixMultiply(rl.MatrixMultiply(scaleMatrix, rotMatrix), transMatrix)

	m.Triangles = make([]Triangle, 0, mesh.TriangleCount())
	for i := 0; i < mesh.TriangleCount(); i++ {
		v0, v1, v2 := mesh.Triangle(i)
		v0 = rl.Vector3Transform(v0, transform)
		v1 = rl.Vector3Transform(v1, transform)
		v2 = rl.Vector3Transform(v2, transform)

		normal := rl.Vector3Normalize(rl.Vector3CrossProduct(rl.Vector3Subtract(v1, v0), rl.Vector3Subtract(v2, v0)))
		m.Triangles = append(m.Triangles, Triangle{V0: v0, V1: v1, V2: v2, Normal: normal})
	}

	m.buildBVH()
	m.built = true
}

func (m *MeshCollider) buildBVH() {
	if len(m.Triangles) == 0 {
		return
	}

	indices := make([]int, len(m.Triangles))
	for i := range indices {
		indices[i] = i
	}

	m.Root = m.buildBVHNode(indices, 0)
}

func (m *MeshCollider) buildBVHNode(indices []int, depth int) *BVHNode {
	node := &BVHNode{Bounds: m.computeBounds(indices)}

	if len(indices) <= 4 || depth > 20 {
		node.Triangles = indices
		return node
	}

	mid := m.partitionTriangles(indices, node.Bounds.LongestAxis())
	if mid == 0 || mid == len(indices) {
		node.Triangles = indices
		return node
	}

	node.Left = m.buildBVHNode(indices[:mid], depth+1)
	node.Right = m.buildBVHNode(indices[mid:], depth+1)
	return node
}

func (m *MeshCollider) computeBounds(indices []int) physics.Bounds {
	first := &m.Triangles[indices[0]]
	bounds := physics.NewBounds(first.V0, rl.Vector3{})
	for _, idx := range indices {
		tri := &m.Triangles[idx]
		bounds = bounds.EncapsulatePoint(tri.V0)
		bounds = bounds.EncapsulatePoint(tri.V1)
		bounds = bounds.EncapsulatePoint(tri.V2)
	}
	return bounds
}

// partitionTriangles splits indices around the mean centroid on axis.
func (m *MeshCollider) partitionTriangles(indices []int, axis physics.Axis) int {
	center := float32(0)
	for _, idx := range indices {
		center += physics.Component(m.centroid(idx), axis)
	}
	center /= float32(len(indices))

	left := 0
	right := len(indices) - 1
	for left <= right {
		if physics.Component(m.centroid(indices[left]), axis) < center {
			left++
		} else {
			indices[left], indices[right] = indices[right], indices[left]
			right--
		}
	}
	return left
}

func (m *MeshCollider) centroid(idx int) rl.Vector3 {
	tri := &m.Triangles[idx]
	return rl.Vector3Scale(rl.Vector3Add(rl.Vector3Add(tri.V0, tri.V1), tri.V2), 1.0/3.0)
}

// Raycast returns the closest triangle hit within maxDistance.
func (m *MeshCollider) Raycast(origin, direction rl.Vector3, maxDistance float32) (physics.RaycastHit, bool) {
	if !m.built || m.Root == nil {
		return physics.RaycastHit{}, false
	}
	direction = rl.Vector3Normalize(direction)

	best := physics.RaycastHit{Distance: maxDistance}
	hit := false
	m.raycastNode(m.Root, origin, direction, &best, &hit)
	return best, hit
}

func (m *MeshCollider) raycastNode(node *BVHNode, origin, direction rl.Vector3, best *physics.RaycastHit, hit *bool) {
	if node == nil {
		return
	}
	if _, ok := physics.RaycastBounds(origin, direction, node.Bounds, best.Distance); !ok {
		return
	}

	if node.Triangles != nil {
		for _, idx := range node.Triangles {
			tri := &m.Triangles[idx]
			if t, ok := rayTriangle(origin, direction, tri); ok && t <= best.Distance {
				*best = physics.RaycastHit{
					Point:    rl.Vector3Add(origin, rl.Vector3Scale(direction, t)),
					Normal:   tri.Normal,
					Distance: t,
				}
				*hit = true
			}
		}
		return
	}

	m.raycastNode(node.Left, origin, direction, best, hit)
	m.raycastNode(node.Right, origin, direction, best, hit)
}

// rayTriangle is the Moller-Trumbore intersection test. Both faces count.
func rayTriangle(origin, direction rl.Vector3, tri *Triangle) (float32, bool) {
	const epsilon = 1e-7

	edge1 := rl.Vector3Subtract(tri.V1, tri.V0)
	edge2 := rl.Vector3Subtract(tri.V2, tri.V0)
	p := rl.Vector3CrossProduct(direction, edge2)
	det := rl.Vector3DotProduct(edge1, p)
	if math.Abs(float64(det)) < epsilon {
		return 0, false
	}
	inv := 1 / det

	s := rl.Vector3Subtract(origin, tri.V0)
	u := rl.Vector3DotProduct(s, p) * inv
	if u < 0 || u > 1 {
		return 0, false
	}

	q := rl.Vector3CrossProduct(s, edge1)
	v := rl.Vector3DotProduct(direction, q) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}

	t := rl.Vector3DotProduct(edge2, q) * inv
	if t < 0 {
		return 0, false
	}
	return t, true
}

// IsBuilt returns true if the BVH has been built
func (m *MeshCollider) IsBuilt() bool {
	return m.built
}

// TriangleCount returns the number of triangles in the collider
func (m *MeshCollider) TriangleCount() int {
	return len(m.Triangles)
}

// WorldBounds returns the bounds of the whole collider, zero before BuildFromMesh.
func (m *MeshCollider) WorldBounds() physics.Bounds {
	if m.Root == nil {
		return physics.Bounds{}
	}
	return m.Root.Bounds
}
