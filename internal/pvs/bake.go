package pvs

import (
	"io"

	"culling3d/internal/bsp"
	"culling3d/internal/config"
	"culling3d/internal/culling"
	"culling3d/internal/physics"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/klauspost/compress/zstd"
	"github.com/segmentio/encoding/json"
)

const blobVersion = 1

type blob struct {
	Version     int        `json:"version"`
	MinCellSize float32    `json:"min_cell_size"`
	MaxDepth    int        `json:"max_depth"`
	Split       string     `json:"split"`
	Targets     []string   `json:"targets"`
	Nodes       []blobNode `json:"nodes"`
}

type blobNode struct {
	Center  [3]float32 `json:"center"`
	Size    [3]float32 `json:"size"`
	Left    int32      `json:"left"`
	Right   int32      `json:"right"`
	Axis    uint8      `json:"axis"`
	Depth   int        `json:"depth"`
	Targets []int32    `json:"targets,omitempty"`
}

func toArray(v rl.Vector3) [3]float32 {
	return [3]float32{v.X, v.Y, v.Z}
}

func fromArray(a [3]float32) rl.Vector3 {
	return rl.Vector3{X: a[0], Y: a[1], Z: a[2]}
}

// TargetID is the key a target is stored under in a bake file: the id of
// the object owning it.
func TargetID(t culling.Target) string {
	if t == nil || t.Owner() == nil {
		return ""
	}
	return t.Owner().ID.String()
}

// Save writes the applied tree as a zstd compressed JSON document.
func (t *Tree) Save(w io.Writer) error {
	if !t.Applied() {
		return errors.New("saving a tree before apply").WithType(bsp.ErrTypeTreeNotBuilt)
	}

	opts := t.tree.Options()
	b := blob{
		Version:     blobVersion,
		MinCellSize: opts.MinCellSize,
		MaxDepth:    opts.MaxDepth,
		Split:       t.cfg.Split,
		Targets:     make([]string, len(t.targets)),
		Nodes:       make([]blobNode, 0, t.tree.Len()),
	}
	for i, target := range t.targets {
		b.Targets[i] = TargetID(target)
	}
	for _, n := range t.tree.Nodes() {
		b.Nodes = append(b.Nodes, blobNode{
			Center:  toArray(n.Bounds.Center),
			Size:    toArray(n.Bounds.Size),
			Left:    int32(n.Left),
			Right:   int32(n.Right),
			Axis:    uint8(n.Axis),
			Depth:   n.Depth,
			Targets: n.Data.Targets,
		})
	}

	enc, err := zstd.NewWriter(w)
	if err != nil {
		return errors.New("creating zstd writer failed").Wrap(err)
	}
	if err := json.NewEncoder(enc).Encode(b); err != nil {
		enc.Close()
		return errors.New("encoding bake failed").Wrap(err)
	}
	if err := enc.Close(); err != nil {
		return errors.New("flushing bake failed").Wrap(err)
	}
	return nil
}

// Load reads a tree written by Save. resolve maps stored target ids back
// to live targets. Targets it cannot resolve are logged and dropped from
// every cell. Geometry settings come from the file, query settings from cfg.
func Load(r io.Reader, cfg config.Static, resolve func(id string) (culling.Target, bool)) (*Tree, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, badBlob(err)
	}
	defer dec.Close()

	var b blob
	if err := json.NewDecoder(dec).Decode(&b); err != nil {
		return nil, badBlob(err)
	}
	if b.Version != blobVersion {
		return nil, errors.New("unsupported bake version").
			WithType(ErrTypeBadBlob).
			WithTag("version", b.Version)
	}

	t := &Tree{cfg: cfg}
	t.cfg.MinCellSize = b.MinCellSize
	t.cfg.MaxDepth = b.MaxDepth
	t.cfg.Split = b.Split

	remap := make([]int32, len(b.Targets))
	for i, id := range b.Targets {
		target, ok := resolve(id)
		if !ok || target == nil {
			logs.WithTag("target", id).Warn("unresolved bake target skipped")
			remap[i] = -1
			continue
		}
		remap[i] = t.AddTarget(target)
	}

	nodes := make([]bsp.Node[Cell], len(b.Nodes))
	for i, bn := range b.Nodes {
		n := bsp.Node[Cell]{
			Bounds: physics.NewBounds(fromArray(bn.Center), fromArray(bn.Size)),
			Left:   bsp.NodeID(bn.Left),
			Right:  bsp.NodeID(bn.Right),
			Axis:   physics.Axis(bn.Axis),
			Depth:  bn.Depth,
		}
		if bn.Axis > uint8(physics.AxisZ) {
			return nil, errors.New("invalid split axis").
				WithType(ErrTypeBadBlob).
				WithTag("node", i)
		}
		for _, ti := range bn.Targets {
			if ti < 0 || int(ti) >= len(remap) {
				return nil, errors.New("cell references an unknown target").
					WithType(ErrTypeBadBlob).
					WithTag("node", i).
					WithTag("target", ti)
			}
			if mapped := remap[ti]; mapped >= 0 {
				n.Data.Targets = append(n.Data.Targets, mapped)
			}
		}
		nodes[i] = n
	}

	tree, err := bsp.FromNodes(nodes, bspOptions(t.cfg))
	if err != nil {
		return nil, errors.New("invalid bake tree").
			WithType(ErrTypeBadBlob).
			Wrap(err)
	}
	t.tree = tree
	return t, nil
}

func badBlob(err error) error {
	return errors.New("decoding bake failed").
		WithType(ErrTypeBadBlob).
		Wrap(err)
}
