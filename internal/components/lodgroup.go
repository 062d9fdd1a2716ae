package components

import "culling3d/internal/engine"

// LOD is one detail level. Level 0 is the highest detail.
type LOD struct {
	ScreenRelativeHeight float32
	Renderers            []*MeshRenderer
}

type LODGroup struct {
	engine.BaseComponent
	LODs []LOD
}

func NewLODGroup(lods ...LOD) *LODGroup {
	return &LODGroup{LODs: lods}
}

// Renderers returns every distinct renderer across all levels, in level order.
func (l *LODGroup) Renderers() []*MeshRenderer {
	seen := make(map[*MeshRenderer]struct{})
	var result []*MeshRenderer
	for _, lod := range l.LODs {
		for _, r := range lod.Renderers {
			if r == nil {
				continue
			}
			if _, ok := seen[r]; ok {
				continue
			}
			seen[r] = struct{}{}
			result = append(result, r)
		}
	}
	return result
}
