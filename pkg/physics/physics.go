// Package physics steps player movement at a fixed rate: gravity, input
// driven motion and contact with the terrain heightmap.
package physics

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Defaults used by New when a value is not positive.
const (
	DefaultGravity        = 32.0
	DefaultSimulationRate = 200.0

	// maxStepsPerUpdate bounds catch-up work after a long frame.
	maxStepsPerUpdate = 50
)

// Body is a moving object the simulation can push around.
type Body interface {
	Position() mgl64.Vec3
	SetPosition(p mgl64.Vec3)
	Velocity() mgl64.Vec3
	SetVelocity(v mgl64.Vec3)

	// ApplyInputs moves the body by its own input velocity for one step.
	ApplyInputs(dt float64)
	SetOnGround(onGround bool)
}

// Terrain answers ground height for a horizontal position.
type Terrain interface {
	HeightAt(x, z float64) float64
}

// Physics 固定步长物理模拟
// 不足一步的剩余时间累积到下一次 Update
type Physics struct {
	Gravity        float64
	SimulationRate float64

	// MaxStep is the highest ledge a body walks up without being blocked.
	MaxStep float64

	accumulator float64
}

// New creates a simulation. Non-positive values fall back to the defaults.
func New(gravity, simulationRate float64) *Physics {
	if gravity <= 0 {
		gravity = DefaultGravity
	}
	if simulationRate <= 0 {
		simulationRate = DefaultSimulationRate
	}
	return &Physics{
		Gravity:        gravity,
		SimulationRate: simulationRate,
		MaxStep:        1,
	}
}

// Timestep returns the length of one simulation step in seconds.
func (p *Physics) Timestep() float64 {
	return 1 / p.SimulationRate
}

// Update advances body by dt seconds in whole steps and returns how many
// steps ran.
func (p *Physics) Update(dt float64, body Body, terrain Terrain) int {
	if body == nil || dt <= 0 {
		return 0
	}
	step := p.Timestep()
	p.accumulator += dt

	steps := 0
	for p.accumulator >= step {
		if steps == maxStepsPerUpdate {
			// 丢弃积压的时间，避免死亡螺旋
			p.accumulator = 0
			break
		}
		p.step(step, body, terrain)
		p.accumulator -= step
		steps++
	}
	return steps
}

func (p *Physics) step(dt float64, body Body, terrain Terrain) {
	v := body.Velocity()
	v[1] -= p.Gravity * dt
	body.SetVelocity(v)

	before := body.Position()
	body.ApplyInputs(dt)
	p.resolve(before, body, terrain)
}

// resolve blocks horizontal moves into ledges taller than MaxStep and keeps
// the body's feet on or above the terrain.
func (p *Physics) resolve(before mgl64.Vec3, body Body, terrain Terrain) {
	if terrain == nil {
		body.SetOnGround(false)
		return
	}
	pos := body.Position()

	ground := terrain.HeightAt(pos.X(), pos.Z())
	if ground-before.Y() > p.MaxStep {
		pos[0], pos[2] = before.X(), before.Z()
		v := body.Velocity()
		v[0], v[2] = 0, 0
		body.SetVelocity(v)
		ground = terrain.HeightAt(pos.X(), pos.Z())
	}

	if pos.Y() <= ground {
		pos[1] = ground
		v := body.Velocity()
		if v.Y() < 0 {
			v[1] = 0
		}
		body.SetVelocity(v)
		body.SetPosition(pos)
		body.SetOnGround(true)
		return
	}
	body.SetPosition(pos)
	body.SetOnGround(false)
}
