package pvs

import (
	"iter"

	"culling3d/internal/bsp"

	"github.com/bits-and-blooms/bitset"
)

// VisibleSet holds the result of visibility queries: the tree nodes that
// were in range and the targets their leaves reference. It is owned by the
// caller, so several cameras can query one tree with their own sets.
type VisibleSet struct {
	nodes   *bitset.BitSet
	targets *bitset.BitSet
}

func NewVisibleSet() *VisibleSet {
	return &VisibleSet{
		nodes:   bitset.New(0),
		targets: bitset.New(0),
	}
}

// Reset clears the set while keeping its storage.
func (s *VisibleSet) Reset() {
	s.nodes.ClearAll()
	s.targets.ClearAll()
}

func (s *VisibleSet) markNode(id bsp.NodeID) {
	s.nodes.Set(uint(id))
}

func (s *VisibleSet) markTarget(i int32) {
	s.targets.Set(uint(i))
}

func (s *VisibleSet) NodeVisible(id bsp.NodeID) bool {
	return id >= 0 && s.nodes.Test(uint(id))
}

func (s *VisibleSet) TargetActive(i int32) bool {
	return i >= 0 && s.targets.Test(uint(i))
}

func (s *VisibleSet) NodeCount() uint {
	return s.nodes.Count()
}

func (s *VisibleSet) TargetCount() uint {
	return s.targets.Count()
}

// Targets iterates the active target indices in ascending order.
func (s *VisibleSet) Targets() iter.Seq[int32] {
	return each(s.targets)
}

// Changes lists the targets activated and deactivated since prev.
func (s *VisibleSet) Changes(prev *VisibleSet) (shown, hidden iter.Seq[int32]) {
	return each(s.targets.Difference(prev.targets)), each(prev.targets.Difference(s.targets))
}

func each(b *bitset.BitSet) iter.Seq[int32] {
	return func(yield func(int32) bool) {
		for i, ok := b.NextSet(0); ok; i, ok = b.NextSet(i + 1) {
			if !yield(int32(i)) {
				return
			}
		}
	}
}
