package pvs

import (
	"culling3d/internal/culling"
	"culling3d/internal/physics"
)

// Sampler decides which targets are visible from a cell. Real samplers
// render or ray cast the scene offline. The tree only stores the answer.
type Sampler interface {
	VisibleTargets(cell physics.Bounds, targets []culling.Target) []int32
}

// SamplerFunc adapts a function to the Sampler interface.
type SamplerFunc func(cell physics.Bounds, targets []culling.Target) []int32

func (f SamplerFunc) VisibleTargets(cell physics.Bounds, targets []culling.Target) []int32 {
	return f(cell, targets)
}

// DistanceSampler treats every target within ViewDistance of a cell as
// visible from it. It ignores occlusion.
type DistanceSampler struct {
	ViewDistance float32
}

func (s DistanceSampler) VisibleTargets(cell physics.Bounds, targets []culling.Target) []int32 {
	d2 := s.ViewDistance * s.ViewDistance
	var visible []int32
	for i, t := range targets {
		if t == nil {
			continue
		}
		if cell.SqrDistanceBounds(t.Bounds()) <= d2 {
			visible = append(visible, int32(i))
		}
	}
	return visible
}
