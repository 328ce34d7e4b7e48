package npc

import (
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"
)

// Animation names the policy requests.
const (
	AnimIdle = "idle"
	AnimWalk = "walk"
)

// Random is the source of randomness for AI decisions.
type Random interface {
	Float64() float64
}

// globalRandom falls back to the process-wide generator.
type globalRandom struct{}

func (globalRandom) Float64() float64 { return rand.Float64() }

// NewSeededRandom returns a deterministic source for the given seed.
func NewSeededRandom(seed uint64) Random {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Body is the part of an actor a policy may steer.
type Body interface {
	Velocity() mgl64.Vec3
	SetVelocity(v mgl64.Vec3)
	PlayAnimation(name string)
}

// Policy NPC 行为策略接口，每个 tick 决定一次移动
type Policy interface {
	Think(dt float64, body Body)
}

// Wanderer picks a random horizontal heading now and then and stops now and
// then.
//
// Both checks run every tick in a fixed order (walk, then idle) and may both
// fire; the idle check runs last and wins. Random draws happen in the order
// walk-check, vx, vz, idle-check, with vx and vz drawn only when the walk
// check fires.
type Wanderer struct {
	Rand Random

	// WalkChance and IdleChance are per-tick probabilities.
	WalkChance float64
	IdleChance float64

	// Speed bounds each horizontal velocity component to [-Speed, Speed).
	Speed float64

	// PerSecond rescales the chances by dt so behaviour no longer depends on
	// the frame rate. ReferenceRate is the tick rate the chances were tuned
	// for.
	PerSecond     bool
	ReferenceRate float64
}

// NewWanderer returns the default policy: 2% walk and 1% idle per tick.
// A nil r uses the global generator.
func NewWanderer(r Random) *Wanderer {
	if r == nil {
		r = globalRandom{}
	}
	return &Wanderer{
		Rand:          r,
		WalkChance:    0.02,
		IdleChance:    0.01,
		Speed:         1,
		ReferenceRate: 60,
	}
}

// Think implements Policy.
func (w *Wanderer) Think(dt float64, body Body) {
	walk, idle := w.WalkChance, w.IdleChance
	if w.PerSecond {
		walk = w.perTick(walk, dt)
		idle = w.perTick(idle, dt)
	}

	if w.Rand.Float64() < walk {
		vx := (w.Rand.Float64() - 0.5) * 2 * w.Speed
		vz := (w.Rand.Float64() - 0.5) * 2 * w.Speed
		body.SetVelocity(mgl64.Vec3{vx, 0, vz})
		body.PlayAnimation(AnimWalk)
	}

	if w.Rand.Float64() < idle {
		body.SetVelocity(mgl64.Vec3{})
		body.PlayAnimation(AnimIdle)
	}
}

// perTick converts a chance tuned for ReferenceRate ticks per second into
// the chance for a tick of length dt.
func (w *Wanderer) perTick(p, dt float64) float64 {
	if dt <= 0 {
		return 0
	}
	rate := w.ReferenceRate
	if rate <= 0 {
		rate = 60
	}
	return 1 - math.Pow(1-p, dt*rate)
}
