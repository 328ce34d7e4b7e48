// Package player implements the first-person player: pointer-lock state,
// keyboard and mouse driven movement, the player camera and block editing.
package player

import (
	"log"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/decker502/blockworld/pkg/scene"
)

// World is the terrain the player looks at and edits.
type World interface {
	HeightAt(x, z float64) float64
	Dig(x, z int) bool
	Place(x, z int) bool
}

// Config 玩家参数
type Config struct {
	WalkSpeed float64
	RunSpeed  float64
	JumpSpeed float64

	Height    float64
	EyeHeight float64

	// MouseSensitivity is radians of rotation per pixel of mouse movement.
	MouseSensitivity float64

	Spawn mgl64.Vec3

	FOV  float64
	Near float64
	Far  float64

	// Reach is how far away a column can be selected for editing.
	Reach float64
}

// DefaultConfig returns the movement settings the game ships with.
func DefaultConfig() Config {
	return Config{
		WalkSpeed:        5,
		RunSpeed:         10,
		JumpSpeed:        10,
		Height:           1.75,
		EyeHeight:        1.6,
		MouseSensitivity: 0.002,
		Spawn:            mgl64.Vec3{0, 40, 0},
		FOV:              75,
		Near:             0.1,
		Far:              1000,
		Reach:            5,
	}
}

const (
	maxPitch     = math.Pi/2 - 0.01
	raycastStep  = 0.05
	toolDistance = 0.5
)

// Player 第一人称玩家，Position 位于脚底
type Player struct {
	cfg   Config
	input Input

	position mgl64.Vec3
	velocity mgl64.Vec3
	onGround bool

	// move is the requested local velocity: X right, Z forward.
	move mgl64.Vec3

	yaw, pitch float64
	locked     bool

	camera *scene.Camera
	tool   *scene.Node

	pending  InputState
	selected [2]int
	hasSel   bool
}

// New creates a player at cfg.Spawn reading from input.
func New(cfg Config, input Input) *Player {
	if cfg.Reach <= 0 {
		cfg.Reach = DefaultConfig().Reach
	}
	p := &Player{
		cfg:      cfg,
		input:    input,
		position: cfg.Spawn,
		camera:   scene.NewPerspectiveCamera(cfg.FOV, 16.0/9.0, cfg.Near, cfg.Far),
	}
	p.updateCamera()
	log.Printf("[Player] spawned at (%.1f, %.1f, %.1f)", p.position.X(), p.position.Y(), p.position.Z())
	return p
}

// HandleInput polls the input device and applies pointer-lock changes and
// looking. It runs every tick, locked or not.
func (p *Player) HandleInput() {
	if p.input == nil {
		return
	}
	s := p.input.Poll()

	if !p.locked {
		if s.Capture {
			p.Lock()
		}
		p.move = mgl64.Vec3{}
		return
	}
	if s.Release {
		p.Unlock()
		p.move = mgl64.Vec3{}
		return
	}

	p.yaw -= s.LookDX * p.cfg.MouseSensitivity
	p.pitch -= s.LookDY * p.cfg.MouseSensitivity
	p.pitch = mgl64.Clamp(p.pitch, -maxPitch, maxPitch)

	speed := p.cfg.WalkSpeed
	if s.Run {
		speed = p.cfg.RunSpeed
	}
	var move mgl64.Vec3
	if s.Forward {
		move[2] += speed
	}
	if s.Back {
		move[2] -= speed
	}
	if s.Right {
		move[0] += speed
	}
	if s.Left {
		move[0] -= speed
	}
	p.move = move

	if s.Jump && p.onGround {
		p.velocity[1] += p.cfg.JumpSpeed
		p.onGround = false
	}
	if s.Reset {
		p.position = p.cfg.Spawn
		p.velocity = mgl64.Vec3{}
		log.Printf("[Player] reset to spawn")
	}

	p.pending.Dig = p.pending.Dig || s.Dig
	p.pending.Place = p.pending.Place || s.Place
}

// Lock captures the pointer and enables controls.
func (p *Player) Lock() {
	if p.locked {
		return
	}
	p.locked = true
	if p.input != nil {
		p.input.SetCaptured(true)
	}
	log.Printf("[Player] controls locked")
}

// Unlock releases the pointer and disables controls.
func (p *Player) Unlock() {
	if !p.locked {
		return
	}
	p.locked = false
	p.pending = InputState{}
	if p.input != nil {
		p.input.SetCaptured(false)
	}
	log.Printf("[Player] controls unlocked")
}

// ControlsLocked reports whether the pointer is captured.
func (p *Player) ControlsLocked() bool { return p.locked }

// ApplyInputs moves the player by its input velocity for one physics step.
func (p *Player) ApplyInputs(dt float64) {
	if !p.locked {
		p.velocity[0], p.velocity[2] = 0, 0
		p.position[1] += p.velocity.Y() * dt
		return
	}
	forward, right := p.flatAxes()
	horizontal := forward.Mul(p.move.Z()).Add(right.Mul(p.move.X()))
	p.velocity[0], p.velocity[2] = horizontal.X(), horizontal.Z()
	p.position = p.position.Add(p.velocity.Mul(dt))
}

// Update refreshes the camera, picks the column under the crosshair and
// applies pending edits to world.
func (p *Player) Update(world World) {
	p.updateCamera()
	p.updateSelection(world)

	if p.hasSel && world != nil {
		x, z := p.selected[0], p.selected[1]
		if p.pending.Dig && world.Dig(x, z) {
			log.Printf("[Player] dug column (%d, %d)", x, z)
		}
		if p.pending.Place && !p.standsOn(x, z) && world.Place(x, z) {
			log.Printf("[Player] placed block on column (%d, %d)", x, z)
		}
	}
	p.pending = InputState{}
	p.updateTool()
}

func (p *Player) standsOn(x, z int) bool {
	return int(math.Floor(p.position.X())) == x && int(math.Floor(p.position.Z())) == z
}

func (p *Player) updateSelection(world World) {
	p.hasSel = false
	if world == nil {
		return
	}
	origin := p.Eye()
	dir := p.Look()
	for t := 0.0; t <= p.cfg.Reach; t += raycastStep {
		q := origin.Add(dir.Mul(t))
		if q.Y() <= world.HeightAt(q.X(), q.Z()) {
			p.selected = [2]int{int(math.Floor(q.X())), int(math.Floor(q.Z()))}
			p.hasSel = true
			return
		}
	}
}

func (p *Player) updateCamera() {
	eye := p.Eye()
	p.camera.Position = eye
	p.camera.Target = eye.Add(p.Look())
}

func (p *Player) updateTool() {
	if p.tool == nil {
		return
	}
	eye := p.Eye()
	look := p.Look()
	_, right := p.flatAxes()
	p.tool.Position = eye.Add(look.Mul(toolDistance)).Add(right.Mul(0.3)).Sub(mgl64.Vec3{0, 0.3, 0})
	p.tool.LookAt(p.tool.Position.Add(look))
}

// flatAxes returns the horizontal forward and right unit vectors.
func (p *Player) flatAxes() (forward, right mgl64.Vec3) {
	sin, cos := math.Sincos(p.yaw)
	return mgl64.Vec3{-sin, 0, -cos}, mgl64.Vec3{cos, 0, -sin}
}

// Look returns the unit view direction. Yaw 0 looks down -Z.
func (p *Player) Look() mgl64.Vec3 {
	sy, cy := math.Sincos(p.yaw)
	sp, cp := math.Sincos(p.pitch)
	return mgl64.Vec3{-sy * cp, sp, -cy * cp}
}

// Eye returns the camera position.
func (p *Player) Eye() mgl64.Vec3 {
	return p.position.Add(mgl64.Vec3{0, p.cfg.EyeHeight, 0})
}

// Camera returns the first-person camera.
func (p *Player) Camera() *scene.Camera { return p.camera }

// SetTool attaches a held-item node that follows the view.
func (p *Player) SetTool(n *scene.Node) {
	p.tool = n
	p.updateTool()
}

// Tool returns the held-item node, or nil.
func (p *Player) Tool() *scene.Node { return p.tool }

// Selected returns the column under the crosshair.
func (p *Player) Selected() (x, z int, ok bool) {
	return p.selected[0], p.selected[1], p.hasSel
}

// SetMouseSensitivity changes the look speed.
func (p *Player) SetMouseSensitivity(s float64) {
	if s > 0 {
		p.cfg.MouseSensitivity = s
	}
}

// SetFOV changes the camera's vertical field of view in degrees.
func (p *Player) SetFOV(fov float64) {
	if fov > 0 && fov < 180 {
		p.camera.FovY = fov
	}
}

// SetYawPitch sets the view angles in radians.
func (p *Player) SetYawPitch(yaw, pitch float64) {
	p.yaw = yaw
	p.pitch = mgl64.Clamp(pitch, -maxPitch, maxPitch)
	p.updateCamera()
}

// Orientation returns the view angles in radians.
func (p *Player) Orientation() (yaw, pitch float64) { return p.yaw, p.pitch }

// Position implements physics.Body and world.Tracker.
func (p *Player) Position() mgl64.Vec3 { return p.position }

// SetPosition implements physics.Body.
func (p *Player) SetPosition(v mgl64.Vec3) { p.position = v }

// Velocity implements physics.Body.
func (p *Player) Velocity() mgl64.Vec3 { return p.velocity }

// SetVelocity implements physics.Body.
func (p *Player) SetVelocity(v mgl64.Vec3) { p.velocity = v }

// SetOnGround implements physics.Body.
func (p *Player) SetOnGround(onGround bool) { p.onGround = onGround }

// OnGround reports whether the player stood on terrain after the last step.
func (p *Player) OnGround() bool { return p.onGround }
