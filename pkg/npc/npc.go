// Package npc implements non-player actors: asynchronous model attachment,
// animation switching, wandering AI and terrain collision.
package npc

import (
	"log"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/decker502/blockworld/pkg/anim"
	"github.com/decker502/blockworld/pkg/assets"
	"github.com/decker502/blockworld/pkg/scene"
)

// Defaults used when no option overrides them.
const (
	DefaultModelPath = "data/models/llama.yaml"
	DefaultScale     = 3.0
)

// Scene receives model nodes once they are loaded.
type Scene interface {
	Add(n *scene.Node)
	Remove(n *scene.Node)
}

// Option NPC 构造选项
type Option func(*NPC)

// WithLoader sets the model loader. Without one the NPC never gets a model
// and is simulated position-only.
func WithLoader(l assets.ModelLoader) Option {
	return func(n *NPC) { n.loader = l }
}

// WithModelPath overrides the model asset path.
func WithModelPath(path string) Option {
	return func(n *NPC) { n.modelPath = path }
}

// WithScale overrides the model scale factor.
func WithScale(s float64) Option {
	return func(n *NPC) { n.scale = s }
}

// WithPolicy replaces the default wandering policy.
func WithPolicy(p Policy) Option {
	return func(n *NPC) { n.policy = p }
}

// WithRandom gives the default wandering policy a specific random source.
// It has no effect when WithPolicy is also used.
func WithRandom(r Random) Option {
	return func(n *NPC) { n.random = r }
}

type loadResult struct {
	asset *assets.Asset
	err   error
}

// NPC 一个模拟的角色
// 所有方法都必须在模拟 goroutine 中调用，加载器只通过 inbox 与它通信
type NPC struct {
	scene  Scene
	world  TerrainQuery
	loader assets.ModelLoader
	policy Policy
	random Random

	position mgl64.Vec3
	velocity mgl64.Vec3

	model *scene.Node
	mixer *anim.Mixer

	scale     float64
	modelPath string

	// requested is the last animation asked for, even if it could not play.
	requested string

	inbox    chan loadResult
	loadErr  error
	disposed bool
}

// New creates an NPC at position and starts loading its model. It returns
// immediately; the model attaches on a later Update.
func New(sc Scene, world TerrainQuery, position mgl64.Vec3, opts ...Option) *NPC {
	n := &NPC{
		scene:     sc,
		world:     world,
		position:  position,
		scale:     DefaultScale,
		modelPath: DefaultModelPath,
		inbox:     make(chan loadResult, 1),
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.policy == nil {
		n.policy = NewWanderer(n.random)
	}

	log.Printf("[NPC] created at (%.2f, %.2f, %.2f)", position.X(), position.Y(), position.Z())
	n.loadModel()
	return n
}

func (n *NPC) loadModel() {
	if n.loader == nil {
		return
	}
	n.loader.Load(n.modelPath,
		func(a *assets.Asset) { n.post(loadResult{asset: a}) },
		func(err error) { n.post(loadResult{err: err}) },
	)
}

// post hands a load result to the simulation goroutine. The inbox holds one
// result and a load completes once, so this never blocks.
func (n *NPC) post(r loadResult) {
	select {
	case n.inbox <- r:
	default:
	}
}

// drainInbox applies a pending load result, if any.
func (n *NPC) drainInbox() {
	select {
	case r := <-n.inbox:
		if r.err != nil {
			n.loadErr = r.err
			log.Printf("[NPC] model %s failed to load, continuing without it: %v", n.modelPath, r.err)
			return
		}
		n.attach(r.asset)
	default:
	}
}

func (n *NPC) attach(a *assets.Asset) {
	if n.disposed || a == nil || a.Root == nil {
		return
	}

	n.model = a.Root
	n.model.SetScale(n.scale)
	n.model.Position = n.position
	if n.scene != nil {
		n.scene.Add(n.model)
	}

	n.mixer = anim.NewMixer(a.Clips)
	if _, ok := n.mixer.Action(AnimIdle); ok {
		n.PlayAnimation(AnimIdle)
	} else if n.mixer.Len() > 0 {
		n.PlayAnimation(n.mixer.Names()[0])
	}
	log.Printf("[NPC] model %s attached at (%.2f, %.2f, %.2f) with %d clips",
		n.modelPath, n.position.X(), n.position.Y(), n.position.Z(), n.mixer.Len())
}

// Update advances the NPC by dt seconds: animation, AI, movement, facing,
// then terrain collision.
func (n *NPC) Update(dt float64) {
	if n.disposed {
		return
	}
	n.drainInbox()

	if n.mixer != nil {
		n.mixer.Update(dt)
	}

	n.policy.Think(dt, n)

	n.position = n.position.Add(n.velocity.Mul(dt))
	if n.model != nil {
		n.model.Position = n.position
		if n.velocity.Len() > 0 {
			n.model.LookAt(n.model.Position.Add(n.velocity))
		}
		n.model.Bob = n.bob()
	}

	ResolveTerrain(n.world, &n.position, &n.velocity)
}

// bob is a small vertical hop while the walk clip is playing.
func (n *NPC) bob() float64 {
	if n.mixer == nil {
		return 0
	}
	walk, ok := n.mixer.Action(AnimWalk)
	if !ok || !walk.Running {
		return 0
	}
	return 0.08 * n.scale * math.Abs(math.Sin(2*math.Pi*walk.Phase())) * walk.Weight
}

// PlayAnimation switches the current animation. It is a no-op until the
// model has loaded; unknown names leave nothing playing.
func (n *NPC) PlayAnimation(name string) {
	n.requested = name
	if n.mixer == nil {
		return
	}
	n.mixer.Play(name)
}

// Dispose detaches the model from the scene and stops the NPC. A load that
// completes afterwards is discarded.
func (n *NPC) Dispose() {
	if n.disposed {
		return
	}
	n.disposed = true
	if n.model != nil && n.scene != nil {
		n.scene.Remove(n.model)
	}
	n.model = nil
	n.mixer = nil
	log.Printf("[NPC] disposed at (%.2f, %.2f, %.2f)", n.position.X(), n.position.Y(), n.position.Z())
}

// Position returns the current world position.
func (n *NPC) Position() mgl64.Vec3 { return n.position }

// Velocity implements Body.
func (n *NPC) Velocity() mgl64.Vec3 { return n.velocity }

// SetVelocity implements Body.
func (n *NPC) SetVelocity(v mgl64.Vec3) { n.velocity = v }

// Model returns the attached model node, or nil before load.
func (n *NPC) Model() *scene.Node { return n.model }

// Loaded reports whether the model has been attached.
func (n *NPC) Loaded() bool { return n.model != nil }

// LoadError returns the error of a failed model load.
func (n *NPC) LoadError() error { return n.loadErr }

// Disposed reports whether Dispose has been called.
func (n *NPC) Disposed() bool { return n.disposed }

// Mixer returns the animation mixer, or nil before load.
func (n *NPC) Mixer() *anim.Mixer { return n.mixer }

// CurrentAction returns the playing action, or nil.
func (n *NPC) CurrentAction() *anim.Action {
	if n.mixer == nil {
		return nil
	}
	return n.mixer.Current()
}

// RequestedAnimation returns the last animation name asked for.
func (n *NPC) RequestedAnimation() string { return n.requested }
