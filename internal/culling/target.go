package culling

import (
	"culling3d/internal/components"
	"culling3d/internal/engine"
	"culling3d/internal/physics"
)

// Target is something that can be shown or hidden. Show and Hide are
// idempotent: several tree leaves may reference the same target and all of
// them may transition it in the same frame.
type Target interface {
	Show()
	Hide()
	Visible() bool
	Bounds() physics.Bounds
	Owner() *engine.GameObject
}

var (
	_ Target = (*SimpleTarget)(nil)
	_ Target = (*LODGroupTarget)(nil)
	_ Target = (*LODGroupWithShadowsTarget)(nil)
	_ Target = (*CustomTarget)(nil)
)

// SimpleTarget toggles a single renderer.
type SimpleTarget struct {
	renderer *components.MeshRenderer
	visible  bool
}

func NewSimpleTarget(renderer *components.MeshRenderer) *SimpleTarget {
	return &SimpleTarget{renderer: renderer, visible: renderer.Enabled}
}

func (t *SimpleTarget) Show() {
	if t.visible {
		return
	}
	t.visible = true
	t.renderer.Enabled = true
	instrumentTransition("simple", true)
}

func (t *SimpleTarget) Hide() {
	if !t.visible {
		return
	}
	t.visible = false
	t.renderer.Enabled = false
	instrumentTransition("simple", false)
}

func (t *SimpleTarget) Visible() bool { return t.visible }

func (t *SimpleTarget) Bounds() physics.Bounds {
	b, _ := t.renderer.WorldBounds()
	return b
}

func (t *SimpleTarget) Owner() *engine.GameObject { return t.renderer.GetGameObject() }

func (t *SimpleTarget) Renderer() *components.MeshRenderer { return t.renderer }

// LODGroupTarget toggles the renderers of every LOD level together.
type LODGroupTarget struct {
	group     *components.LODGroup
	renderers []*components.MeshRenderer
	bounds    physics.Bounds
	visible   bool
}

func NewLODGroupTarget(group *components.LODGroup, bounds physics.Bounds) *LODGroupTarget {
	return &LODGroupTarget{
		group:     group,
		renderers: group.Renderers(),
		bounds:    bounds,
		visible:   true,
	}
}

func (t *LODGroupTarget) Show() {
	if t.visible {
		return
	}
	t.visible = true
	for _, r := range t.renderers {
		r.Enabled = true
	}
	instrumentTransition("lodgroup", true)
}

func (t *LODGroupTarget) Hide() {
	if !t.visible {
		return
	}
	t.visible = false
	for _, r := range t.renderers {
		r.Enabled = false
	}
	instrumentTransition("lodgroup", false)
}

func (t *LODGroupTarget) Visible() bool            { return t.visible }
func (t *LODGroupTarget) Bounds() physics.Bounds    { return t.bounds }
func (t *LODGroupTarget) Owner() *engine.GameObject { return t.group.GetGameObject() }

// LODGroupWithShadowsTarget hides the geometry of an LOD group but keeps its
// shadows, so hidden objects do not pop their shadows in and out.
type LODGroupWithShadowsTarget struct {
	group     *components.LODGroup
	renderers []*components.MeshRenderer
	saved     []rendererState
	bounds    physics.Bounds
	visible   bool
}

type rendererState struct {
	enabled bool
	mode    components.ShadowMode
}

func NewLODGroupWithShadowsTarget(group *components.LODGroup, bounds physics.Bounds) *LODGroupWithShadowsTarget {
	renderers := group.Renderers()
	return &LODGroupWithShadowsTarget{
		group:     group,
		renderers: renderers,
		saved:     make([]rendererState, len(renderers)),
		bounds:    bounds,
		visible:   true,
	}
}

func (t *LODGroupWithShadowsTarget) Show() {
	if t.visible {
		return
	}
	t.visible = true
	for i, r := range t.renderers {
		r.Enabled = t.saved[i].enabled
		r.ShadowMode = t.saved[i].mode
	}
	instrumentTransition("lodgroup_shadows", true)
}

func (t *LODGroupWithShadowsTarget) Hide() {
	if !t.visible {
		return
	}
	t.visible = false
	for i, r := range t.renderers {
		t.saved[i] = rendererState{enabled: r.Enabled, mode: r.ShadowMode}
		if r.ShadowMode == components.ShadowsOff {
			// nothing to preserve
			r.Enabled = false
			continue
		}
		r.ShadowMode = components.ShadowsOnly
	}
	instrumentTransition("lodgroup_shadows", false)
}

func (t *LODGroupWithShadowsTarget) Visible() bool            { return t.visible }
func (t *LODGroupWithShadowsTarget) Bounds() physics.Bounds    { return t.bounds }
func (t *LODGroupWithShadowsTarget) Owner() *engine.GameObject { return t.group.GetGameObject() }

// CustomTarget forwards visibility transitions to designer callbacks.
type CustomTarget struct {
	owner       *engine.GameObject
	bounds      physics.Bounds
	onVisible   *engine.Event
	onInvisible *engine.Event
	onChanged   *engine.EventWithArg[bool]
	visible     bool
}

// NewCustomTarget starts visible. Nil events are allowed.
func NewCustomTarget(owner *engine.GameObject, bounds physics.Bounds, onVisible, onInvisible *engine.Event) *CustomTarget {
	return &CustomTarget{
		owner:       owner,
		bounds:      bounds,
		onVisible:   onVisible,
		onInvisible: onInvisible,
		visible:     true,
	}
}

// WithVisibilityChanged adds an event that receives every transition.
func (t *CustomTarget) WithVisibilityChanged(e *engine.EventWithArg[bool]) *CustomTarget {
	t.onChanged = e
	return t
}

func (t *CustomTarget) Show() {
	if t.visible {
		return
	}
	t.visible = true
	if t.onVisible != nil {
		t.onVisible.Invoke()
	}
	if t.onChanged != nil {
		t.onChanged.Invoke(true)
	}
	instrumentTransition("custom", true)
}

func (t *CustomTarget) Hide() {
	if !t.visible {
		return
	}
	t.visible = false
	if t.onInvisible != nil {
		t.onInvisible.Invoke()
	}
	if t.onChanged != nil {
		t.onChanged.Invoke(false)
	}
	instrumentTransition("custom", false)
}

func (t *CustomTarget) Visible() bool            { return t.visible }
func (t *CustomTarget) Bounds() physics.Bounds    { return t.bounds }
func (t *CustomTarget) Owner() *engine.GameObject { return t.owner }
