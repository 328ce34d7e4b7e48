package scenes

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/decker502/blockworld/pkg/game"
	"github.com/decker502/blockworld/pkg/observe"
	"github.com/decker502/blockworld/pkg/physics"
	"github.com/decker502/blockworld/pkg/player"
	"github.com/decker502/blockworld/pkg/scene"
	"github.com/decker502/blockworld/pkg/world"
)

// State is the orchestrator's top-level mode.
type State int

const (
	// FreeLook: controls are not locked, the simulation is paused and the
	// orbit camera is drawn and can be rotated and zoomed.
	FreeLook State = iota
	// Engaged: controls are locked and the whole simulation runs.
	Engaged
)

func (s State) String() string {
	switch s {
	case FreeLook:
		return "free_look"
	case Engaged:
		return "engaged"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Clock is a monotonic time source.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Simulator steps player physics.
type Simulator interface {
	Update(dt float64, body physics.Body, terrain physics.Terrain) int
}

// PlayerController is the player as the orchestrator drives it.
type PlayerController interface {
	physics.Body

	HandleInput()
	ControlsLocked() bool
	Update(w player.World)
	Camera() *scene.Camera
}

// Terrain is the world as the orchestrator drives it.
type Terrain interface {
	player.World
	Update(t world.Tracker)
}

// Population is the set of NPCs.
type Population interface {
	Update(dt float64)
}

var (
	_ game.Scene    = (*WorldScene)(nil)
	_ game.Saveable = (*WorldScene)(nil)
)

// DefaultMaxDelta caps a single frame's dt in seconds.
const DefaultMaxDelta = 0.1

// WorldSceneConfig holds the optional parts of a WorldScene.
type WorldSceneConfig struct {
	Clock    Clock
	MaxDelta float64

	SunOffset    mgl64.Vec3
	SunIntensity float64

	OrbitStart  mgl64.Vec3
	OrbitOffset mgl64.Vec3
	OrbitFOV    float64

	// OrbitInput drives the free-look camera; defaults to the mouse.
	OrbitInput    OrbitInput
	OrbitControls OrbitControls

	Graph    *scene.Graph
	Renderer *scene.Renderer

	// RenderRadius is the terrain radius drawn around the viewer, in blocks.
	RenderRadius int

	Metrics  *observe.Metrics
	Settings *game.SettingsManager

	// Persist is called by SaveOnExit after the settings are saved.
	Persist func() error
}

// DefaultWorldSceneConfig returns the lighting and camera layout the game
// ships with.
func DefaultWorldSceneConfig() WorldSceneConfig {
	return WorldSceneConfig{
		MaxDelta:      DefaultMaxDelta,
		SunOffset:     mgl64.Vec3{50, 50, 50},
		SunIntensity:  1.5,
		OrbitStart:    mgl64.Vec3{24, 24, 24},
		OrbitOffset:   mgl64.Vec3{16, 16, 16},
		OrbitFOV:      75,
		OrbitControls: DefaultOrbitControls(),
		RenderRadius:  40,
	}
}

// WorldScene runs one frame of the game: it derives the state from the
// player's pointer lock, updates the simulation in a fixed order while
// Engaged, lets the mouse orbit the free-look camera otherwise and draws
// with the camera matching the state.
type WorldScene struct {
	clock    Clock
	last     time.Time
	maxDelta float64

	physics Simulator
	player  PlayerController
	world   Terrain
	npcs    Population

	sun           *scene.DirectionalLight
	sunOffset     mgl64.Vec3
	orbit         *scene.Camera
	orbitOffset   mgl64.Vec3
	orbitInput    OrbitInput
	orbitControls OrbitControls

	graph        *scene.Graph
	renderer     *scene.Renderer
	renderRadius int

	state    State
	lastDt   float64
	metrics  *observe.Metrics
	settings *game.SettingsManager
	persist  func() error
}

// NewWorldScene wires the simulation parts together. npcs may be nil.
func NewWorldScene(sim Simulator, p PlayerController, w Terrain, npcs Population, cfg WorldSceneConfig) *WorldScene {
	def := DefaultWorldSceneConfig()
	if cfg.Clock == nil {
		cfg.Clock = systemClock{}
	}
	if cfg.MaxDelta <= 0 {
		cfg.MaxDelta = def.MaxDelta
	}
	if cfg.OrbitFOV <= 0 {
		cfg.OrbitFOV = def.OrbitFOV
	}
	if cfg.OrbitInput == nil {
		cfg.OrbitInput = NewEbitenOrbitInput()
	}
	if cfg.OrbitControls == (OrbitControls{}) {
		cfg.OrbitControls = def.OrbitControls
	}
	if cfg.RenderRadius <= 0 {
		cfg.RenderRadius = def.RenderRadius
	}
	if cfg.Graph == nil {
		cfg.Graph = scene.NewGraph()
	}
	if cfg.Renderer == nil {
		cfg.Renderer = scene.NewRenderer()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observe.DefaultMetrics()
	}

	orbit := scene.NewPerspectiveCamera(cfg.OrbitFOV, 16.0/9.0, 0.1, 1000)
	orbit.Position = cfg.OrbitStart
	orbit.Target = mgl64.Vec3{}

	s := &WorldScene{
		clock:         cfg.Clock,
		maxDelta:      cfg.MaxDelta,
		physics:       sim,
		player:        p,
		world:         w,
		npcs:          npcs,
		sun:           &scene.DirectionalLight{Position: cfg.SunOffset, Intensity: cfg.SunIntensity},
		sunOffset:     cfg.SunOffset,
		orbit:         orbit,
		orbitOffset:   cfg.OrbitOffset,
		orbitInput:    cfg.OrbitInput,
		orbitControls: cfg.OrbitControls,
		graph:         cfg.Graph,
		renderer:      cfg.Renderer,
		renderRadius:  cfg.RenderRadius,
		state:         FreeLook,
		metrics:       cfg.Metrics,
		settings:      cfg.Settings,
		persist:       cfg.Persist,
	}
	s.last = s.clock.Now()
	return s
}

// Update advances one frame. The dt passed in by the scene manager is
// ignored in favour of the time measured by the scene's clock.
func (s *WorldScene) Update(_ float64) {
	dt := s.tick()
	ctx := context.Background()
	s.metrics.FrameDuration.Record(ctx, dt)

	s.player.HandleInput()
	s.setState(ctx, s.deriveState())

	if s.state != Engaged {
		// 暂停时只有自由视角相机可以移动
		s.orbitControls.Apply(s.orbit, s.orbitInput.Poll())
		return
	}

	if s.physics != nil {
		s.physics.Update(dt, s.player, s.world)
	}
	s.player.Update(s.world)
	s.world.Update(s.player)
	if s.npcs != nil {
		s.npcs.Update(dt)
	}

	// 太阳随玩家移动，保持相同的光照角度
	eye := s.player.Camera().Position
	s.sun.Position = eye.Add(s.sunOffset)
	s.sun.Target = eye

	pos := s.player.Position()
	s.orbit.Position = pos.Add(s.orbitOffset)
	s.orbit.Target = pos
}

// tick returns the clamped time since the previous tick.
func (s *WorldScene) tick() float64 {
	now := s.clock.Now()
	dt := now.Sub(s.last).Seconds()
	s.last = now
	if dt < 0 {
		dt = 0
	}
	if dt > s.maxDelta {
		dt = s.maxDelta
	}
	s.lastDt = dt
	return dt
}

func (s *WorldScene) deriveState() State {
	if s.player.ControlsLocked() {
		return Engaged
	}
	return FreeLook
}

func (s *WorldScene) setState(ctx context.Context, next State) {
	if next == s.state {
		return
	}
	log.Printf("[WorldScene] state %s -> %s", s.state, next)
	s.state = next
	s.metrics.RecordTransition(ctx, next.String())
}

// ActiveCamera returns the player camera while Engaged and the orbit camera
// otherwise.
func (s *WorldScene) ActiveCamera() *scene.Camera {
	if s.state == Engaged {
		return s.player.Camera()
	}
	return s.orbit
}

// Draw renders the world from the active camera. It runs every frame in
// both states.
func (s *WorldScene) Draw(screen *ebiten.Image) {
	cam := s.ActiveCamera()
	b := screen.Bounds()
	cam.SetAspect(b.Dx(), b.Dy())

	s.renderer.Draw(screen, scene.Frame{
		Camera:  cam,
		Light:   s.sun,
		Graph:   s.graph,
		Terrain: s.world,
		Center:  cam.Position,
		Radius:  s.renderRadius,
	})

	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("FPS: %.1f", ebiten.ActualFPS()), 10, 10)
	if s.state == FreeLook {
		ebitenutil.DebugPrintAt(screen, "Click to play, Esc to release, right-drag to look around", 10, 26)
	}
}

// SaveOnExit implements game.Saveable by persisting player settings and
// then the world save.
func (s *WorldScene) SaveOnExit() bool {
	ok := true
	if s.settings != nil {
		if err := s.settings.Save(); err != nil {
			log.Printf("[WorldScene] failed to save settings: %v", err)
			ok = false
		}
	}
	if s.persist != nil {
		if err := s.persist(); err != nil {
			log.Printf("[WorldScene] failed to save world: %v", err)
			ok = false
		}
	}
	return ok
}

// State returns the state derived on the last Update.
func (s *WorldScene) State() State { return s.state }

// LastDelta returns the dt used by the last Update.
func (s *WorldScene) LastDelta() float64 { return s.lastDt }

// Sun returns the directional light.
func (s *WorldScene) Sun() *scene.DirectionalLight { return s.sun }

// OrbitCamera returns the free-look camera.
func (s *WorldScene) OrbitCamera() *scene.Camera { return s.orbit }

// Graph returns the scene graph drawn every frame.
func (s *WorldScene) Graph() *scene.Graph { return s.graph }
