package main

import (
	"context"
	"fmt"

	"culling3d/internal/camera"
	"culling3d/internal/world"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	maxCellRadius = 10
	panelWidth    = 260
)

type viewer struct {
	World  *world.World
	Camera *camera.FlyCamera

	cellRadius  float32
	showCells   bool
	showProxies bool
	frozen      bool
}

func newViewer(w *world.World) *viewer {
	return &viewer{
		World:       w,
		Camera:      camera.New(rl.Vector3{X: 10, Y: 6, Z: 10}),
		cellRadius:  w.Config.Static.CellRadius,
		showCells:   true,
		showProxies: true,
	}
}

func (v *viewer) Run(ctx context.Context) {
	rl.SetConfigFlags(rl.FlagWindowHighdpi | rl.FlagWindowResizable)
	rl.InitWindow(1280, 720, "culling3d")
	defer rl.CloseWindow()

	rl.SetTargetFPS(120)

	for !rl.WindowShouldClose() && ctx.Err() == nil {
		v.Update()
		v.Draw()
	}
}

func (v *viewer) Update() {
	deltaTime := rl.GetFrameTime()
	v.Camera.Update(deltaTime)

	if rl.IsKeyPressed(rl.KeyF) {
		v.frozen = !v.frozen
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		v.World.Renderer.MoveLightDir(-deltaTime, 0, 0)
	}
	if rl.IsKeyDown(rl.KeyRight) {
		v.World.Renderer.MoveLightDir(deltaTime, 0, 0)
	}

	if v.World.Static != nil {
		v.World.Static.SetCellRadius(v.cellRadius)
	}

	// a frozen view keeps culling from the last position while the camera flies around
	if v.frozen {
		v.World.Scene.Update(deltaTime)
		return
	}

	cam := v.Camera.GetRaylibCamera()
	v.World.RayFan.Aspect = float32(rl.GetScreenWidth()) / float32(max(rl.GetScreenHeight(), 1))
	v.World.Update(deltaTime, cam)
}

func (v *viewer) Draw() {
	cam := v.Camera.GetRaylibCamera()

	rl.BeginDrawing()
	rl.ClearBackground(rl.RayWhite)

	rl.BeginMode3D(cam)
	rl.DrawGrid(64, 1)
	v.World.Draw()
	if v.showCells && v.World.Static != nil {
		world.DrawCells(v.World.Static.Tree, cam.Position, v.cellRadius)
	}
	if v.showProxies {
		world.DrawProxies(v.World.Controller)
	}
	rl.EndMode3D()

	v.drawPanel()
	rl.EndDrawing()
}

func (v *viewer) drawPanel() {
	rl.DrawRectangle(0, 0, panelWidth, 170, rl.Fade(rl.LightGray, 0.85))

	v.cellRadius = gui.Slider(
		rl.Rectangle{X: 90, Y: 10, Width: 120, Height: 18},
		"Cell radius",
		fmt.Sprintf("%.1f", v.cellRadius),
		v.cellRadius, 0, maxCellRadius,
	)
	v.showCells = gui.CheckBox(rl.Rectangle{X: 10, Y: 36, Width: 16, Height: 16}, "Cells", v.showCells)
	v.showProxies = gui.CheckBox(rl.Rectangle{X: 90, Y: 36, Width: 16, Height: 16}, "Proxies", v.showProxies)
	v.frozen = gui.CheckBox(rl.Rectangle{X: 180, Y: 36, Width: 16, Height: 16}, "Freeze", v.frozen)

	stats := v.World.Renderer.Stats
	active := "off"
	if v.World.Static != nil {
		active = fmt.Sprint(v.World.Static.ActiveTargets())
	}
	lines := []string{
		fmt.Sprintf("FPS %d", rl.GetFPS()),
		fmt.Sprintf("drawn %d  culled %d  shadows %d", stats.Drawn, stats.Culled, stats.Shadows),
		fmt.Sprintf("static active %s", active),
		fmt.Sprintf("dynamic sources %d", v.World.Controller.Len()),
		"WASD/QE move, RMB look, F freeze",
	}
	for i, line := range lines {
		rl.DrawText(line, 10, int32(64+i*20), 16, rl.DarkGray)
	}
}
