package physics

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Axis selects one component of a vector.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	default:
		return "z"
	}
}

// Component returns the coordinate of v along a.
func Component(v rl.Vector3, a Axis) float32 {
	switch a {
	case AxisX:
		return v.X
	case AxisY:
		return v.Y
	default:
		return v.Z
	}
}

func setComponent(v *rl.Vector3, a Axis, value float32) {
	switch a {
	case AxisX:
		v.X = value
	case AxisY:
		v.Y = value
	default:
		v.Z = value
	}
}

// Bounds is an axis-aligned box stored as center and full size.
// Size components are never negative.
type Bounds struct {
	Center rl.Vector3
	Size   rl.Vector3
}

// NewBounds creates bounds from a center point and full size dimensions.
func NewBounds(center, size rl.Vector3) Bounds {
	return Bounds{
		Center: center,
		Size:   rl.Vector3{X: abs(size.X), Y: abs(size.Y), Z: abs(size.Z)},
	}
}

// NewBoundsMinMax creates bounds spanning two corners in any order.
func NewBoundsMinMax(a, b rl.Vector3) Bounds {
	min := rl.Vector3Min(a, b)
	max := rl.Vector3Max(a, b)
	return Bounds{
		Center: rl.Vector3Scale(rl.Vector3Add(min, max), 0.5),
		Size:   rl.Vector3Subtract(max, min),
	}
}

func (b Bounds) Extents() rl.Vector3 {
	return rl.Vector3Scale(b.Size, 0.5)
}

func (b Bounds) Min() rl.Vector3 {
	return rl.Vector3Subtract(b.Center, b.Extents())
}

func (b Bounds) Max() rl.Vector3 {
	return rl.Vector3Add(b.Center, b.Extents())
}

// Contains reports whether p lies inside b or on its surface.
func (b Bounds) Contains(p rl.Vector3) bool {
	min, max := b.Min(), b.Max()
	return p.X >= min.X && p.X <= max.X &&
		p.Y >= min.Y && p.Y <= max.Y &&
		p.Z >= min.Z && p.Z <= max.Z
}

// SqrDistance is the squared distance from p to the closest point of b, zero inside.
func (b Bounds) SqrDistance(p rl.Vector3) float32 {
	min, max := b.Min(), b.Max()
	dx := axisGap(p.X, min.X, max.X)
	dy := axisGap(p.Y, min.Y, max.Y)
	dz := axisGap(p.Z, min.Z, max.Z)
	return dx*dx + dy*dy + dz*dz
}

func axisGap(v, min, max float32) float32 {
	if v < min {
		return min - v
	}
	if v > max {
		return v - max
	}
	return 0
}

// SqrDistanceBounds is the squared gap between b and o, zero when they touch.
func (b Bounds) SqrDistanceBounds(o Bounds) float32 {
	bmin, bmax := b.Min(), b.Max()
	omin, omax := o.Min(), o.Max()
	dx := intervalGap(bmin.X, bmax.X, omin.X, omax.X)
	dy := intervalGap(bmin.Y, bmax.Y, omin.Y, omax.Y)
	dz := intervalGap(bmin.Z, bmax.Z, omin.Z, omax.Z)
	return dx*dx + dy*dy + dz*dz
}

func intervalGap(amin, amax, bmin, bmax float32) float32 {
	if bmin > amax {
		return bmin - amax
	}
	if amin > bmax {
		return amin - bmax
	}
	return 0
}

// ClosestPoint clamps p into b.
func (b Bounds) ClosestPoint(p rl.Vector3) rl.Vector3 {
	return rl.Vector3Clamp(p, b.Min(), b.Max())
}

// Encapsulate returns the smallest bounds holding both b and o.
func (b Bounds) Encapsulate(o Bounds) Bounds {
	return NewBoundsMinMax(rl.Vector3Min(b.Min(), o.Min()), rl.Vector3Max(b.Max(), o.Max()))
}

// EncapsulatePoint grows b to hold p.
func (b Bounds) EncapsulatePoint(p rl.Vector3) Bounds {
	return NewBoundsMinMax(rl.Vector3Min(b.Min(), p), rl.Vector3Max(b.Max(), p))
}

func (b Bounds) Intersects(o Bounds) bool {
	aMin, aMax := b.Min(), b.Max()
	bMin, bMax := o.Min(), o.Max()
	return aMin.X <= bMax.X && aMax.X >= bMin.X &&
		aMin.Y <= bMax.Y && aMax.Y >= bMin.Y &&
		aMin.Z <= bMax.Z && aMax.Z >= bMin.Z
}

// Split halves b along axis. The halves share the split plane.
func (b Bounds) Split(axis Axis) (lower, upper Bounds) {
	half := b.Size
	setComponent(&half, axis, Component(b.Size, axis)/2)
	offset := Component(half, axis) / 2

	lower = Bounds{Center: b.Center, Size: half}
	upper = Bounds{Center: b.Center, Size: half}
	setComponent(&lower.Center, axis, Component(b.Center, axis)-offset)
	setComponent(&upper.Center, axis, Component(b.Center, axis)+offset)
	return lower, upper
}

// LongestAxis prefers X, then Y, then Z on ties.
func (b Bounds) LongestAxis() Axis {
	axis := AxisX
	if b.Size.Y > Component(b.Size, axis) {
		axis = AxisY
	}
	if b.Size.Z > Component(b.Size, axis) {
		axis = AxisZ
	}
	return axis
}

// IsZero reports a point-like box with no extent on any axis.
func (b Bounds) IsZero() bool {
	return b.Size.X == 0 && b.Size.Y == 0 && b.Size.Z == 0
}

// Transformed maps local bounds through a translation and scale. Rotation is ignored.
func (b Bounds) Transformed(position, scale rl.Vector3) Bounds {
	return NewBounds(
		rl.Vector3Add(position, rl.Vector3Multiply(b.Center, scale)),
		rl.Vector3Multiply(b.Size, scale),
	)
}

// ApproxEqual compares centers and sizes within eps on every component.
func (b Bounds) ApproxEqual(o Bounds, eps float32) bool {
	return vecApprox(b.Center, o.Center, eps) && vecApprox(b.Size, o.Size, eps)
}

func (b Bounds) BoundingBox() rl.BoundingBox {
	return rl.NewBoundingBox(b.Min(), b.Max())
}

func vecApprox(a, b rl.Vector3, eps float32) bool {
	return abs(a.X-b.X) <= eps && abs(a.Y-b.Y) <= eps && abs(a.Z-b.Z) <= eps
}

func abs(x float32) float32 {
	return float32(math.Abs(float64(x)))
}
