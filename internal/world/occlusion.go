package world

import (
	"iter"
	"math"

	"culling3d/internal/components"
	"culling3d/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const defaultRayDistance = 500

// RayFan is a coarse occlusion pass: it casts a grid of rays through the
// camera frustum and reports the proxies that are the closest hit of at
// least one ray. Occluders block rays without being reported.
type RayFan struct {
	// Rays is the number of rays along each side of the grid.
	Rays        int
	Aspect      float32
	MaxDistance float32

	proxies []components.Collider
	hits    []components.Collider
	seen    map[components.Collider]struct{}
}

func NewRayFan(rays int) *RayFan {
	if rays < 1 {
		rays = 1
	}
	return &RayFan{
		Rays:        rays,
		Aspect:      16.0 / 9.0,
		MaxDistance: defaultRayDistance,
		seen:        make(map[components.Collider]struct{}),
	}
}

// Cast returns the proxies hit this frame. The returned slice is reused by
// the next call.
func (f *RayFan) Cast(cam rl.Camera3D, proxies iter.Seq[components.Collider], occluders []components.Collider) []components.Collider {
	f.proxies = f.proxies[:0]
	for c := range proxies {
		f.proxies = append(f.proxies, c)
	}
	f.hits = f.hits[:0]
	clear(f.seen)
	if len(f.proxies) == 0 {
		return f.hits
	}

	for _, dir := range f.directions(cam) {
		hit, ok := f.closest(cam.Position, dir, occluders)
		if !ok {
			continue
		}
		if _, dup := f.seen[hit]; dup {
			continue
		}
		f.seen[hit] = struct{}{}
		f.hits = append(f.hits, hit)
	}
	return f.hits
}

// closest returns the proxy nearest along the ray, or false when nothing
// or an occluder is hit first.
func (f *RayFan) closest(origin, dir rl.Vector3, occluders []components.Collider) (components.Collider, bool) {
	best := f.MaxDistance
	var hit components.Collider
	for _, c := range f.proxies {
		if d, ok := castCollider(c, origin, dir, best); ok {
			best, hit = d, c
		}
	}
	if hit == nil {
		return nil, false
	}

	for _, c := range occluders {
		if _, ok := castCollider(c, origin, dir, best); ok {
			return nil, false
		}
	}
	return hit, true
}

// castCollider rejects rays against the collider bounds before running the
// exact collider test.
func castCollider(c components.Collider, origin, dir rl.Vector3, maxDistance float32) (float32, bool) {
	if _, ok := physics.RaycastBounds(origin, dir, c.WorldBounds(), maxDistance); !ok {
		return 0, false
	}
	hit, ok := c.Raycast(origin, dir, maxDistance)
	if !ok || hit.Distance >= maxDistance {
		return 0, false
	}
	return hit.Distance, true
}

// directions spreads Rays x Rays unit vectors over the camera frustum.
func (f *RayFan) directions(cam rl.Camera3D) []rl.Vector3 {
	forward := rl.Vector3Normalize(rl.Vector3Subtract(cam.Target, cam.Position))
	right := rl.Vector3Normalize(rl.Vector3CrossProduct(forward, cam.Up))
	up := rl.Vector3CrossProduct(right, forward)

	tanY := float32(math.Tan(float64(cam.Fovy) * math.Pi / 360))
	tanX := tanY * f.Aspect

	dirs := make([]rl.Vector3, 0, f.Rays*f.Rays)
	for i := 0; i < f.Rays; i++ {
		u := ((float32(i)+0.5)/float32(f.Rays)*2 - 1) * tanX
		for j := 0; j < f.Rays; j++ {
			v := ((float32(j)+0.5)/float32(f.Rays)*2 - 1) * tanY
			d := rl.Vector3Add(forward, rl.Vector3Add(rl.Vector3Scale(right, u), rl.Vector3Scale(up, v)))
			dirs = append(dirs, rl.Vector3Normalize(d))
		}
	}
	return dirs
}
