package npc

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decker502/blockworld/pkg/anim"
	"github.com/decker502/blockworld/pkg/assets"
	"github.com/decker502/blockworld/pkg/scene"
)

// flatTerrain has the same height everywhere.
type flatTerrain float64

func (f flatTerrain) HeightAt(x, z float64) float64 { return float64(f) }

// scriptedRandom replays values, then returns 0.999 so nothing fires.
type scriptedRandom struct {
	values []float64
	calls  int
}

func (s *scriptedRandom) Float64() float64 {
	s.calls++
	if len(s.values) == 0 {
		return 0.999
	}
	v := s.values[0]
	s.values = s.values[1:]
	return v
}

func never() *scriptedRandom { return &scriptedRandom{} }

// stillPolicy never touches the body.
type stillPolicy struct{ thinks int }

func (p *stillPolicy) Think(float64, Body) { p.thinks++ }

// manualLoader records requests and lets the test decide when they finish.
type manualLoader struct {
	paths      []string
	onComplete func(*assets.Asset)
	onError    func(error)
}

func (m *manualLoader) Load(path string, onComplete func(*assets.Asset), onError func(error)) {
	m.paths = append(m.paths, path)
	m.onComplete = onComplete
	m.onError = onError
}

func (m *manualLoader) complete(clips ...anim.Clip) {
	root := scene.NewNode("llama")
	m.onComplete(&assets.Asset{Root: root, Clips: clips})
}

func defaultClips() []anim.Clip {
	return []anim.Clip{
		{Name: "walk", Duration: 0.8, Loop: true},
		{Name: "idle", Duration: 2, Loop: true},
	}
}

func loadedNPC(t *testing.T, g *scene.Graph, terrain TerrainQuery, pos mgl64.Vec3, opts ...Option) *NPC {
	t.Helper()
	l := &manualLoader{}
	n := New(g, terrain, pos, append([]Option{WithLoader(l)}, opts...)...)
	l.complete(defaultClips()...)
	n.drainInbox()
	require.True(t, n.Loaded())
	return n
}

func TestUpdate_BeforeLoadIntegratesPosition(t *testing.T) {
	n := New(scene.NewGraph(), flatTerrain(0), mgl64.Vec3{0, 5, 0}, WithPolicy(&stillPolicy{}))
	n.SetVelocity(mgl64.Vec3{1, 0, -2})

	require.NotPanics(t, func() { n.Update(0.5) })

	assert.False(t, n.Loaded())
	assert.Nil(t, n.Model())
	assert.Nil(t, n.CurrentAction())
	assert.Equal(t, mgl64.Vec3{0.5, 5, -1}, n.Position())
}

func TestUpdate_PendingLoadNeverResolves(t *testing.T) {
	l := &manualLoader{}
	n := New(scene.NewGraph(), flatTerrain(0), mgl64.Vec3{}, WithLoader(l), WithRandom(&scriptedRandom{
		values: []float64{0.0, 1.0, 0.5},
	}))
	require.Equal(t, []string{DefaultModelPath}, l.paths, "load starts during construction")

	for i := 0; i < 10; i++ {
		require.NotPanics(t, func() { n.Update(0.1) })
	}
	assert.False(t, n.Loaded())
	assert.Equal(t, AnimWalk, n.RequestedAnimation())
	assert.InDelta(t, 1.0, n.Position().X(), 1e-9)
}

func TestUpdate_ClampsBelowTerrain(t *testing.T) {
	starts := []mgl64.Vec3{{0, -5, 0}, {3, 1.99, -4}, {-7, -100, 2}}
	for _, dt := range []float64{0, 0.016, 0.1, 1} {
		for _, start := range starts {
			n := New(nil, flatTerrain(2), start, WithPolicy(&stillPolicy{}))
			n.SetVelocity(mgl64.Vec3{0, -3, 0})
			n.Update(dt)

			assert.Equal(t, 2.0, n.Position().Y(), "dt=%v start=%v", dt, start)
			assert.Equal(t, 0.0, n.Velocity().Y(), "dt=%v start=%v", dt, start)
		}
	}
}

func TestUpdate_NoClampAboveTerrain(t *testing.T) {
	n := New(scene.NewGraph(), flatTerrain(2), mgl64.Vec3{0, 5, 0}, WithRandom(never()))
	n.Update(0.1)

	assert.Equal(t, 5.0, n.Position().Y())
	assert.Equal(t, 0.0, n.Velocity().Y())
}

func TestUpdate_ForcedWalk(t *testing.T) {
	rnd := &scriptedRandom{values: []float64{0.0, 0.75, 0.25, 0.5}}
	g := scene.NewGraph()
	n := loadedNPC(t, g, flatTerrain(0), mgl64.Vec3{0, 1, 0}, WithRandom(rnd))

	n.Update(0.1)

	v := n.Velocity()
	assert.InDelta(t, 0.5, v.X(), 1e-9)
	assert.Equal(t, 0.0, v.Y())
	assert.InDelta(t, -0.5, v.Z(), 1e-9)
	assert.Equal(t, 4, rnd.calls)

	assert.Equal(t, AnimWalk, n.RequestedAnimation())
	require.NotNil(t, n.CurrentAction())
	assert.Equal(t, AnimWalk, n.CurrentAction().Name())

	facing := n.Model().Forward()
	want := v.Normalize()
	for i := 0; i < 3; i++ {
		assert.InDelta(t, want[i], facing[i], 1e-6)
	}
	assert.Equal(t, n.Position(), n.Model().Position)
}

func TestUpdate_WalkThenIdleSameTick(t *testing.T) {
	rnd := &scriptedRandom{values: []float64{0.0, 0.9, 0.9, 0.0}}
	n := loadedNPC(t, scene.NewGraph(), flatTerrain(0), mgl64.Vec3{}, WithRandom(rnd))

	n.Update(0.1)

	assert.Equal(t, mgl64.Vec3{}, n.Velocity(), "idle check runs last and wins")
	assert.Equal(t, AnimIdle, n.RequestedAnimation())
	assert.Equal(t, AnimIdle, n.CurrentAction().Name())
	walk, _ := n.Mixer().Action(AnimWalk)
	assert.True(t, walk.FadingOut())
}

func TestUpdate_IdleKeepsFacing(t *testing.T) {
	rnd := &scriptedRandom{values: []float64{0.0, 1.0, 0.5, 0.5}}
	n := loadedNPC(t, scene.NewGraph(), flatTerrain(0), mgl64.Vec3{}, WithRandom(rnd))
	n.Update(0.1)
	before := n.Model().Rotation

	rnd.values = []float64{0.5, 0.0}
	n.Update(0.1)
	assert.Equal(t, mgl64.Vec3{}, n.Velocity())
	assert.Equal(t, before, n.Model().Rotation, "facing only changes while moving")
}

func TestLoad_AttachesOnNextUpdate(t *testing.T) {
	l := &manualLoader{}
	g := scene.NewGraph()
	n := New(g, flatTerrain(0), mgl64.Vec3{1, 2, 3}, WithLoader(l), WithRandom(never()))

	l.complete(defaultClips()...)
	assert.False(t, n.Loaded(), "completion is applied by Update, not by the loader goroutine")
	assert.Equal(t, 0, g.Len())

	n.Update(0)
	require.True(t, n.Loaded())
	assert.True(t, g.Contains(n.Model()))
	assert.Equal(t, mgl64.Vec3{DefaultScale, DefaultScale, DefaultScale}, n.Model().Scale)
	assert.Equal(t, mgl64.Vec3{1, 2, 3}, n.Model().Position)
	require.NotNil(t, n.CurrentAction())
	assert.Equal(t, AnimIdle, n.CurrentAction().Name(), "idle is preferred")
}

func TestLoad_CustomScaleAndPath(t *testing.T) {
	l := &manualLoader{}
	n := New(scene.NewGraph(), nil, mgl64.Vec3{}, WithLoader(l), WithScale(1.5),
		WithModelPath("data/models/sheep.yaml"), WithRandom(never()))
	l.complete(defaultClips()...)
	n.Update(0)

	assert.Equal(t, []string{"data/models/sheep.yaml"}, l.paths)
	assert.Equal(t, 1.5, n.Model().Scale.X())
}

func TestLoad_FallsBackToFirstClip(t *testing.T) {
	l := &manualLoader{}
	n := New(scene.NewGraph(), flatTerrain(0), mgl64.Vec3{}, WithLoader(l), WithRandom(never()))
	l.complete(anim.Clip{Name: "graze", Duration: 1}, anim.Clip{Name: "run", Duration: 1})
	n.Update(0)

	require.NotNil(t, n.CurrentAction())
	assert.Equal(t, "graze", n.CurrentAction().Name())
}

func TestLoad_NoClips(t *testing.T) {
	l := &manualLoader{}
	n := New(scene.NewGraph(), flatTerrain(0), mgl64.Vec3{}, WithLoader(l), WithRandom(never()))
	l.complete()
	n.Update(0.1)

	assert.True(t, n.Loaded())
	assert.Nil(t, n.CurrentAction())
}

func TestLoad_FailureKeepsSimulating(t *testing.T) {
	l := &manualLoader{}
	g := scene.NewGraph()
	n := New(g, flatTerrain(0), mgl64.Vec3{0, 1, 0}, WithLoader(l), WithPolicy(&stillPolicy{}))
	n.SetVelocity(mgl64.Vec3{2, 0, 0})

	l.onError(errors.New("boom"))
	require.NotPanics(t, func() { n.Update(0.5) })

	assert.False(t, n.Loaded())
	assert.EqualError(t, n.LoadError(), "boom")
	assert.Equal(t, 0, g.Len())
	assert.Equal(t, 1.0, n.Position().X())
}

func TestPlayAnimation_UnknownName(t *testing.T) {
	n := loadedNPC(t, scene.NewGraph(), flatTerrain(0), mgl64.Vec3{}, WithRandom(never()))
	idle := n.CurrentAction()

	require.NotPanics(t, func() { n.PlayAnimation("backflip") })
	assert.Nil(t, n.CurrentAction())
	assert.True(t, idle.FadingOut())
}

func TestPlayAnimation_SwitchLeavesOneCurrent(t *testing.T) {
	n := loadedNPC(t, scene.NewGraph(), flatTerrain(0), mgl64.Vec3{}, WithRandom(never()))
	idle := n.CurrentAction()
	n.Update(0.3)

	n.PlayAnimation(AnimWalk)
	walk := n.CurrentAction()
	require.NotNil(t, walk)
	assert.NotSame(t, idle, walk)
	assert.True(t, idle.FadingOut())
}

func TestDispose_BeforeLoadDropsModel(t *testing.T) {
	l := &manualLoader{}
	g := scene.NewGraph()
	n := New(g, flatTerrain(0), mgl64.Vec3{}, WithLoader(l), WithRandom(never()))

	n.Dispose()
	l.complete(defaultClips()...)
	n.Update(0.1)
	n.drainInbox()

	assert.True(t, n.Disposed())
	assert.False(t, n.Loaded())
	assert.Equal(t, 0, g.Len())
}

func TestDispose_RemovesModel(t *testing.T) {
	g := scene.NewGraph()
	n := loadedNPC(t, g, flatTerrain(0), mgl64.Vec3{}, WithRandom(never()))
	require.Equal(t, 1, g.Len())

	n.Dispose()
	n.Dispose()
	assert.Equal(t, 0, g.Len())
	assert.Nil(t, n.Model())
	assert.Nil(t, n.CurrentAction())
}

func TestResolveTerrain(t *testing.T) {
	pos := mgl64.Vec3{0, 1, 0}
	vel := mgl64.Vec3{1, -4, 1}
	assert.True(t, ResolveTerrain(flatTerrain(2), &pos, &vel))
	assert.Equal(t, mgl64.Vec3{0, 2, 0}, pos)
	assert.Equal(t, mgl64.Vec3{1, 0, 1}, vel)

	pos = mgl64.Vec3{0, 2, 0}
	vel = mgl64.Vec3{0, -1, 0}
	assert.False(t, ResolveTerrain(flatTerrain(2), &pos, &vel), "exactly on the surface is not below it")
	assert.Equal(t, -1.0, vel.Y())

	assert.False(t, ResolveTerrain(nil, &pos, &vel))
}
