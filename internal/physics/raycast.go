package physics

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

type RaycastHit struct {
	Point    rl.Vector3
	Normal   rl.Vector3
	Distance float32
}

// RaycastBounds intersects a ray with b using the slab method.
// direction does not need to be normalized.
func RaycastBounds(origin, direction rl.Vector3, b Bounds, maxDistance float32) (RaycastHit, bool) {
	direction = rl.Vector3Normalize(direction)
	min, max := b.Min(), b.Max()

	tmin := float32(-1e30)
	tmax := float32(1e30)

	for _, axis := range []Axis{AxisX, AxisY, AxisZ} {
		o := Component(origin, axis)
		d := Component(direction, axis)
		lo := Component(min, axis)
		hi := Component(max, axis)

		if d == 0 {
			if o < lo || o > hi {
				return RaycastHit{}, false
			}
			continue
		}

		t1 := (lo - o) / d
		t2 := (hi - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
		if tmin > tmax {
			return RaycastHit{}, false
		}
	}

	if tmax < 0 || tmin > maxDistance {
		return RaycastHit{}, false
	}

	t := tmin
	if t < 0 {
		// origin inside the box
		t = 0
	}

	point := rl.Vector3Add(origin, rl.Vector3Scale(direction, t))
	return RaycastHit{Point: point, Normal: faceNormal(point, min, max), Distance: t}, true
}

func faceNormal(point, min, max rl.Vector3) rl.Vector3 {
	epsilon := float32(0.001)
	switch {
	case abs(point.X-min.X) < epsilon:
		return rl.Vector3{X: -1}
	case abs(point.X-max.X) < epsilon:
		return rl.Vector3{X: 1}
	case abs(point.Y-min.Y) < epsilon:
		return rl.Vector3{Y: -1}
	case abs(point.Y-max.Y) < epsilon:
		return rl.Vector3{Y: 1}
	case abs(point.Z-min.Z) < epsilon:
		return rl.Vector3{Z: -1}
	default:
		return rl.Vector3{Z: 1}
	}
}
