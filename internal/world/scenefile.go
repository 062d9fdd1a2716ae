package world

import (
	"fmt"
	"io"
	"os"

	"culling3d/internal/components"
	"culling3d/internal/culling"
	"culling3d/internal/engine"
	"culling3d/internal/physics"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/google/uuid"
	"github.com/segmentio/encoding/json"
)

const ErrTypeInvalidScene = "invalid_scene"

// StaticTag marks objects whose renderers are culled by the static tree.
const StaticTag = "static"

// --- JSON types ---

type SceneFile struct {
	Bounds  *boundsDef  `json:"bounds,omitempty"`
	Objects []ObjectDef `json:"objects"`
}

type ObjectDef struct {
	ID         string            `json:"id,omitempty"`
	Name       string            `json:"name"`
	Tags       []string          `json:"tags,omitempty"`
	Static     bool              `json:"static,omitempty"`
	Position   [3]float32        `json:"position"`
	Rotation   [3]float32        `json:"rotation"`
	Scale      [3]float32        `json:"scale"`
	Components []json.RawMessage `json:"components,omitempty"`
	Children   []ObjectDef       `json:"children,omitempty"`
}

type boundsDef struct {
	Center [3]float32 `json:"center"`
	Size   [3]float32 `json:"size"`
}

type componentHeader struct {
	Type string `json:"type"`
}

type meshRendererDef struct {
	Type     string       `json:"type"`
	Mesh     string       `json:"mesh,omitempty"`
	MeshSize []float32    `json:"meshSize,omitempty"`
	Vertices [][3]float32 `json:"vertices,omitempty"`
	Indices  []uint16     `json:"indices,omitempty"`
	Color    string       `json:"color"`
	Shadows  string       `json:"shadows,omitempty"`
}

type boxColliderDef struct {
	Type   string     `json:"type"`
	Size   [3]float32 `json:"size"`
	Offset [3]float32 `json:"offset,omitempty"`
}

type lodDef struct {
	Height    float32  `json:"height"`
	Renderers []string `json:"renderers"`
}

type lodGroupDef struct {
	Type   string   `json:"type"`
	Levels []lodDef `json:"levels"`
}

type cullingSourceDef struct {
	Type        string     `json:"type"`
	Strategy    string     `json:"strategy"`
	KeepShadows *bool      `json:"keepShadows,omitempty"`
	LocalBounds *boundsDef `json:"localBounds,omitempty"`
}

// --- Color mapping ---

var colorByName = map[string]rl.Color{
	"Red":       rl.Red,
	"Blue":      rl.Blue,
	"Green":     rl.Green,
	"Purple":    rl.Purple,
	"Orange":    rl.Orange,
	"Yellow":    rl.Yellow,
	"Pink":      rl.Pink,
	"SkyBlue":   rl.SkyBlue,
	"Lime":      rl.Lime,
	"Magenta":   rl.Magenta,
	"White":     rl.White,
	"LightGray": rl.LightGray,
	"Gray":      rl.Gray,
	"DarkGray":  rl.DarkGray,
	"Black":     rl.Black,
	"Brown":     rl.Brown,
	"Beige":     rl.Beige,
	"Maroon":    rl.Maroon,
	"Gold":      rl.Gold,
}

var nameByColor map[rl.Color]string

func init() {
	nameByColor = make(map[rl.Color]string, len(colorByName))
	for name, c := range colorByName {
		nameByColor[c] = name
	}
}

func lookupColor(name string) rl.Color {
	if c, ok := colorByName[name]; ok {
		return c
	}
	return rl.White
}

func lookupColorName(c rl.Color) string {
	if name, ok := nameByColor[c]; ok {
		return name
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

var shadowModeByName = map[string]components.ShadowMode{
	"":     components.ShadowsOn,
	"on":   components.ShadowsOn,
	"off":  components.ShadowsOff,
	"only": components.ShadowsOnly,
}

func shadowModeName(m components.ShadowMode) string {
	switch m {
	case components.ShadowsOff:
		return "off"
	case components.ShadowsOnly:
		return "only"
	default:
		return ""
	}
}

var meshTypeByName = map[string]components.MeshType{
	"cube":   components.MeshCube,
	"sphere": components.MeshSphere,
	"plane":  components.MeshPlane,
	"custom": components.MeshCustom,
}

func meshTypeName(t components.MeshType) string {
	for name, mt := range meshTypeByName {
		if mt == t {
			return name
		}
	}
	return ""
}

func vec(a [3]float32) rl.Vector3 {
	return rl.Vector3{X: a[0], Y: a[1], Z: a[2]}
}

func arr(v rl.Vector3) [3]float32 {
	return [3]float32{v.X, v.Y, v.Z}
}

// --- Loading ---

// LoadScene reads a scene file into the world scene. Objects without an id
// get a fresh one, reported by the returned count so callers can persist it.
func (w *World) LoadScene(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, errors.New("reading scene failed").
			WithType(ErrTypeInvalidScene).
			WithTag("path", path).
			Wrap(err)
	}
	defer f.Close()
	return w.DecodeScene(f)
}

func (w *World) DecodeScene(r io.Reader) (int, error) {
	var sf SceneFile
	if err := json.NewDecoder(r).Decode(&sf); err != nil {
		return 0, errors.New("parsing scene failed").
			WithType(ErrTypeInvalidScene).
			Wrap(err)
	}

	if sf.Bounds != nil {
		w.Bounds = physics.NewBounds(vec(sf.Bounds.Center), vec(sf.Bounds.Size))
	}

	generated := 0
	for _, def := range sf.Objects {
		g, n, err := w.loadObject(def)
		if err != nil {
			return 0, err
		}
		generated += n
		w.Scene.AddGameObject(g)
	}

	if sf.Bounds == nil {
		w.Bounds = w.sceneBounds()
	}
	return generated, nil
}

func (w *World) loadObject(def ObjectDef) (*engine.GameObject, int, error) {
	g := engine.NewGameObject(def.Name)
	generated := 0
	if def.ID != "" {
		id, err := uuid.Parse(def.ID)
		if err != nil {
			return nil, 0, errors.New("invalid object id").
				WithType(ErrTypeInvalidScene).
				WithTag("object", def.Name).
				Wrap(err)
		}
		g.ID = id
	} else {
		generated++
	}

	g.Tags = def.Tags
	if def.Static && !g.HasTag(StaticTag) {
		g.Tags = append(g.Tags, StaticTag)
	}
	g.Transform.Position = vec(def.Position)
	g.Transform.Rotation = vec(def.Rotation)

	// Default scale to 1 if zero
	if def.Scale == [3]float32{} {
		g.Transform.Scale = rl.Vector3{X: 1, Y: 1, Z: 1}
	} else {
		g.Transform.Scale = vec(def.Scale)
	}

	// children first, LOD groups reference their renderers by name
	for _, childDef := range def.Children {
		child, n, err := w.loadObject(childDef)
		if err != nil {
			return nil, 0, err
		}
		generated += n
		g.AddChild(child)
	}

	for _, raw := range def.Components {
		var header componentHeader
		if err := json.Unmarshal(raw, &header); err != nil {
			logs.Warn(errors.New("skipping malformed component").
				WithTag("object", def.Name).
				Wrap(err))
			continue
		}

		var err error
		switch header.Type {
		case "MeshRenderer":
			err = loadMeshRenderer(g, raw)
		case "BoxCollider":
			err = loadBoxCollider(g, raw)
		case "LODGroup":
			err = loadLODGroup(g, raw)
		case "DynamicCullingSource":
			err = w.loadCullingSource(g, raw)
		default:
			logs.WithTag("object", def.Name).
				WithTag("type", header.Type).
				Warn("skipping unknown component")
			continue
		}
		if err != nil {
			return nil, 0, errors.New("loading component failed").
				WithType(ErrTypeInvalidScene).
				WithTag("object", def.Name).
				WithTag("type", header.Type).
				Wrap(err)
		}
	}

	return g, generated, nil
}

func loadMeshRenderer(g *engine.GameObject, raw json.RawMessage) error {
	var def meshRendererDef
	if err := json.Unmarshal(raw, &def); err != nil {
		return err
	}

	mode, ok := shadowModeByName[def.Shadows]
	if !ok {
		return errors.New("unknown shadow mode").WithTag("shadows", def.Shadows)
	}

	var mesh *components.Mesh
	switch def.Mesh {
	case "":
		// renderer without geometry
	case "custom":
		vertices := make([]rl.Vector3, len(def.Vertices))
		for i, v := range def.Vertices {
			vertices[i] = vec(v)
		}
		mesh = components.NewMesh(g.Name, vertices, def.Indices)
	default:
		meshType, ok := meshTypeByName[def.Mesh]
		if !ok {
			return errors.New("unknown mesh").WithTag("mesh", def.Mesh)
		}
		var size rl.Vector3
		switch len(def.MeshSize) {
		case 0:
			size = rl.Vector3{X: 1, Y: 1, Z: 1}
		case 1:
			size = rl.Vector3{X: def.MeshSize[0], Y: def.MeshSize[0], Z: def.MeshSize[0]}
		case 2:
			size = rl.Vector3{X: def.MeshSize[0], Z: def.MeshSize[1]}
		default:
			size = rl.Vector3{X: def.MeshSize[0], Y: def.MeshSize[1], Z: def.MeshSize[2]}
		}
		mesh = components.NewPrimitiveMesh(def.Mesh, meshType, size)
	}

	renderer := components.NewMeshRenderer(mesh, lookupColor(def.Color))
	renderer.ShadowMode = mode
	g.AddComponent(renderer)
	return nil
}

func loadBoxCollider(g *engine.GameObject, raw json.RawMessage) error {
	var def boxColliderDef
	if err := json.Unmarshal(raw, &def); err != nil {
		return err
	}
	col := components.NewBoxCollider(vec(def.Size))
	col.Offset = vec(def.Offset)
	g.AddComponent(col)
	return nil
}

// loadLODGroup resolves renderer names against the object and its
// descendants. An empty name is the object itself.
func loadLODGroup(g *engine.GameObject, raw json.RawMessage) error {
	var def lodGroupDef
	if err := json.Unmarshal(raw, &def); err != nil {
		return err
	}

	lods := make([]components.LOD, 0, len(def.Levels))
	for level, l := range def.Levels {
		lod := components.LOD{ScreenRelativeHeight: l.Height}
		for _, name := range l.Renderers {
			holder := g
			if name != "" {
				holder = findDescendant(g, name)
			}
			if holder == nil {
				return errors.New("LOD renderer not found").
					WithTag("level", level).
					WithTag("renderer", name)
			}
			r := engine.GetComponent[*components.MeshRenderer](holder)
			if r == nil {
				return errors.New("LOD object has no mesh renderer").
					WithTag("level", level).
					WithTag("renderer", name)
			}
			lod.Renderers = append(lod.Renderers, r)
		}
		lods = append(lods, lod)
	}

	g.AddComponent(components.NewLODGroup(lods...))
	return nil
}

func findDescendant(g *engine.GameObject, name string) *engine.GameObject {
	for _, c := range g.Children {
		if c.Name == name {
			return c
		}
		if found := findDescendant(c, name); found != nil {
			return found
		}
	}
	return nil
}

func (w *World) loadCullingSource(g *engine.GameObject, raw json.RawMessage) error {
	var def cullingSourceDef
	if err := json.Unmarshal(raw, &def); err != nil {
		return err
	}

	var strategy culling.SourceStrategy
	switch def.Strategy {
	case "lodgroup":
		keepShadows := w.Config.Dynamic.KeepShadows
		if def.KeepShadows != nil {
			keepShadows = *def.KeepShadows
		}
		strategy = culling.NewLODGroupStrategy(keepShadows)
	case "custom":
		var local physics.Bounds
		if def.LocalBounds != nil {
			local = physics.Bounds{Center: vec(def.LocalBounds.Center), Size: vec(def.LocalBounds.Size)}
		}
		strategy = culling.NewCustomBoundsStrategy(local)
	default:
		return errors.New("unknown culling strategy").WithTag("strategy", def.Strategy)
	}

	g.AddComponent(culling.NewSource(strategy))
	return nil
}

// --- Saving ---

func (w *World) SaveScene(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.New("creating scene file failed").
			WithTag("path", path).
			Wrap(err)
	}
	defer f.Close()

	if err := w.EncodeScene(f); err != nil {
		return err
	}
	return f.Close()
}

func (w *World) EncodeScene(out io.Writer) error {
	sf := SceneFile{
		Bounds: &boundsDef{Center: arr(w.Bounds.Center), Size: arr(w.Bounds.Size)},
	}
	for _, g := range w.Scene.GameObjects {
		sf.Objects = append(sf.Objects, serializeObject(g))
	}

	data, err := json.MarshalIndent(sf, "", "  ")
	if err != nil {
		return errors.New("marshaling scene failed").Wrap(err)
	}
	if _, err := out.Write(data); err != nil {
		return errors.New("writing scene failed").Wrap(err)
	}
	return nil
}

func serializeObject(g *engine.GameObject) ObjectDef {
	def := ObjectDef{
		ID:       g.ID.String(),
		Name:     g.Name,
		Position: arr(g.Transform.Position),
		Rotation: arr(g.Transform.Rotation),
		Scale:    arr(g.Transform.Scale),
	}
	for _, tag := range g.Tags {
		if tag == StaticTag {
			def.Static = true
			continue
		}
		def.Tags = append(def.Tags, tag)
	}

	for _, c := range g.Components() {
		if raw := serializeComponent(g, c); raw != nil {
			def.Components = append(def.Components, raw)
		}
	}

	for _, child := range g.Children {
		// proxies are rebuilt at runtime
		if child.HasTag(culling.ProxyName) {
			continue
		}
		def.Children = append(def.Children, serializeObject(child))
	}
	return def
}

func serializeComponent(g *engine.GameObject, c engine.Component) json.RawMessage {
	var def any

	switch comp := c.(type) {
	case *components.MeshRenderer:
		d := meshRendererDef{
			Type:    "MeshRenderer",
			Color:   lookupColorName(comp.Color),
			Shadows: shadowModeName(comp.ShadowMode),
		}
		if m := comp.Mesh; m != nil {
			d.Mesh = meshTypeName(m.Type)
			if m.Type == components.MeshCustom {
				for _, v := range m.Vertices {
					d.Vertices = append(d.Vertices, arr(v))
				}
				d.Indices = m.Indices
			} else {
				d.MeshSize = []float32{m.Bounds.Size.X, m.Bounds.Size.Y, m.Bounds.Size.Z}
			}
		}
		def = d

	case *components.BoxCollider:
		def = boxColliderDef{
			Type:   "BoxCollider",
			Size:   arr(comp.Size),
			Offset: arr(comp.Offset),
		}

	case *components.LODGroup:
		d := lodGroupDef{Type: "LODGroup"}
		for _, lod := range comp.LODs {
			l := lodDef{Height: lod.ScreenRelativeHeight, Renderers: []string{}}
			for _, r := range lod.Renderers {
				name := ""
				if r != nil && r.GetGameObject() != nil && r.GetGameObject() != g {
					name = r.GetGameObject().Name
				}
				l.Renderers = append(l.Renderers, name)
			}
			d.Levels = append(d.Levels, l)
		}
		def = d

	case *culling.Source:
		d := cullingSourceDef{
			Type:     "DynamicCullingSource",
			Strategy: comp.Strategy.Name(),
		}
		switch s := comp.Strategy.(type) {
		case *culling.LODGroupStrategy:
			keepShadows := s.KeepShadows
			d.KeepShadows = &keepShadows
		case *culling.CustomBoundsStrategy:
			d.LocalBounds = &boundsDef{Center: arr(s.LocalBounds.Center), Size: arr(s.LocalBounds.Size)}
		}
		def = d

	default:
		return nil
	}

	data, err := json.Marshal(def)
	if err != nil {
		return nil
	}
	return data
}
