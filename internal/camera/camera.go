package camera

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// FlyCamera is a free-flying first person camera for inspecting culling.
type FlyCamera struct {
	Position  rl.Vector3
	Yaw       float32
	Pitch     float32
	Fovy      float32
	MoveSpeed float32
	LookSpeed float32

	// BoostFactor multiplies MoveSpeed while shift is held.
	BoostFactor float32
}

func New(pos rl.Vector3) *FlyCamera {
	return &FlyCamera{
		Position:    pos,
		Yaw:         -135.0,
		Pitch:       -30.0,
		Fovy:        45,
		MoveSpeed:   8.0, // Units per second
		LookSpeed:   0.1,
		BoostFactor: 4,
	}
}

// Input is one frame of movement intent. Axes are in [-1, 1].
type Input struct {
	Forward float32
	Right   float32
	Up      float32
	Boost   bool
	Look    rl.Vector2
}

// ReadInput polls the keyboard and mouse. The mouse only steers while the
// right button is held so the GUI stays usable.
func ReadInput() Input {
	var in Input
	if rl.IsKeyDown(rl.KeyW) {
		in.Forward++
	}
	if rl.IsKeyDown(rl.KeyS) {
		in.Forward--
	}
	if rl.IsKeyDown(rl.KeyD) {
		in.Right++
	}
	if rl.IsKeyDown(rl.KeyA) {
		in.Right--
	}
	if rl.IsKeyDown(rl.KeyE) {
		in.Up++
	}
	if rl.IsKeyDown(rl.KeyQ) {
		in.Up--
	}
	in.Boost = rl.IsKeyDown(rl.KeyLeftShift)
	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		in.Look = rl.GetMouseDelta()
	}
	return in
}

func (c *FlyCamera) Update(deltaTime float32) {
	c.Apply(ReadInput(), deltaTime)
}

// Apply moves the camera for one frame of input.
func (c *FlyCamera) Apply(in Input, deltaTime float32) {
	c.Yaw += in.Look.X * c.LookSpeed
	c.Pitch -= in.Look.Y * c.LookSpeed

	// Clamp pitch
	if c.Pitch > 89 {
		c.Pitch = 89
	}
	if c.Pitch < -89 {
		c.Pitch = -89
	}

	forward, right := c.getDirections()

	var moveDir rl.Vector3
	moveDir = rl.Vector3Add(moveDir, rl.Vector3Scale(forward, in.Forward))
	moveDir = rl.Vector3Add(moveDir, rl.Vector3Scale(right, in.Right))
	moveDir.Y += in.Up

	// Normalize diagonal movement so you don't go faster diagonally
	if rl.Vector3LengthSqr(moveDir) > 0 {
		moveDir = rl.Vector3Normalize(moveDir)
	}

	speed := c.MoveSpeed
	if in.Boost {
		speed *= c.BoostFactor
	}
	c.Position = rl.Vector3Add(c.Position, rl.Vector3Scale(moveDir, speed*deltaTime))
}

// getDirections returns the view direction and its horizontal right vector.
func (c *FlyCamera) getDirections() (forward, right rl.Vector3) {
	yawRad := float64(c.Yaw) * math.Pi / 180
	pitchRad := float64(c.Pitch) * math.Pi / 180
	forward = rl.Vector3{
		X: float32(math.Cos(yawRad) * math.Cos(pitchRad)),
		Y: float32(math.Sin(pitchRad)),
		Z: float32(math.Sin(yawRad) * math.Cos(pitchRad)),
	}
	right = rl.Vector3{
		X: float32(-math.Sin(yawRad)),
		Y: 0,
		Z: float32(math.Cos(yawRad)),
	}
	return
}

func (c *FlyCamera) GetRaylibCamera() rl.Camera3D {
	forward, _ := c.getDirections()
	return rl.Camera3D{
		Position:   c.Position,
		Target:     rl.Vector3Add(c.Position, forward),
		Up:         rl.Vector3{X: 0, Y: 1, Z: 0},
		Fovy:       c.Fovy,
		Projection: rl.CameraPerspective,
	}
}
