package app

import (
	"context"
	"image/color"
	"log"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/decker502/blockworld/pkg/assets"
	"github.com/decker502/blockworld/pkg/config"
	"github.com/decker502/blockworld/pkg/game"
	"github.com/decker502/blockworld/pkg/npc"
	"github.com/decker502/blockworld/pkg/observe"
	"github.com/decker502/blockworld/pkg/physics"
	"github.com/decker502/blockworld/pkg/player"
	"github.com/decker502/blockworld/pkg/scene"
	"github.com/decker502/blockworld/pkg/scenes"
	"github.com/decker502/blockworld/pkg/world"
)

// ToolModelPath is the model held by the player.
const ToolModelPath = "data/models/pickaxe.yaml"

// WorldDeps is everything BuildWorldScene needs.
type WorldDeps struct {
	Config   *config.GameConfig
	Settings *game.SettingsManager
	Loader   *assets.Loader
	Metrics  *observe.Metrics

	// Saves restores and persists the player and edited columns per seed.
	Saves *game.SaveManager

	// Input defaults to the keyboard and mouse.
	Input player.Input

	// Seeded makes NPC placement and AI follow the world seed.
	Seeded bool
}

// World bundles the parts of a built world, for callers that need more
// than the scene.
type World struct {
	Scene   *scenes.WorldScene
	Terrain *world.World
	Player  *player.Player
	Crowd   *npc.Crowd
	Graph   *scene.Graph
}

// BuildWorldScene generates the terrain, spawns the player and NPCs and
// wires them into a WorldScene.
func BuildWorldScene(d WorldDeps) *scenes.WorldScene {
	return BuildWorld(d).Scene
}

// BuildWorld is BuildWorldScene returning all parts.
func BuildWorld(d WorldDeps) *World {
	cfg := d.Config
	if cfg == nil {
		cfg = config.DefaultGameConfig()
	}
	settings := d.Settings
	if settings == nil {
		settings, _ = game.NewSettingsManager(nil)
	}
	prefs := settings.GetSettings()
	if d.Input == nil {
		d.Input = player.NewEbitenInput()
	}

	terrain := world.New(worldParams(cfg.World, prefs.RenderDistance))
	terrain.Generate()

	p := player.New(playerConfig(cfg, prefs), d.Input)
	restore(d.Saves, cfg.World.Seed, terrain, p)
	graph := scene.NewGraph()
	if d.Loader != nil {
		// 预加载之后命中缓存，同步加载不会阻塞
		if tool, err := d.Loader.LoadSync(context.Background(), ToolModelPath); err == nil {
			graph.Add(tool.Root)
			p.SetTool(tool.Root)
		} else {
			log.Printf("[App] tool model unavailable: %v", err)
		}
	}

	var rnd npc.Random
	if d.Seeded {
		rnd = npc.NewSeededRandom(uint64(cfg.World.Seed))
	}
	wanderer := npc.NewWanderer(rnd)
	wanderer.WalkChance = cfg.NPC.WalkChance
	wanderer.IdleChance = cfg.NPC.IdleChance
	wanderer.Speed = cfg.NPC.Speed
	wanderer.PerSecond = cfg.NPC.AIPerSecond

	opts := []npc.Option{
		npc.WithModelPath(cfg.NPC.ModelPath),
		npc.WithScale(cfg.NPC.Scale),
		npc.WithPolicy(wanderer),
	}
	if d.Loader != nil {
		opts = append(opts, npc.WithLoader(d.Loader))
	}
	crowd := npc.NewCrowd(graph, terrain, d.Metrics, opts...)
	crowd.SpawnAround(cfg.NPC.Count, cfg.NPC.SpawnExtent, rnd)

	renderer := scene.NewRenderer()
	renderer.ClearColor = rgb(cfg.Render.ClearColor)
	renderer.FogNear = cfg.Render.FogNear
	renderer.FogFar = cfg.Render.FogFar
	renderer.Ambient = cfg.Light.Ambient

	sc := scenes.DefaultWorldSceneConfig()
	sc.MaxDelta = cfg.Frame.MaxDelta
	sc.SunOffset = vec(cfg.Light.SunOffset)
	sc.SunIntensity = cfg.Light.Intensity
	sc.OrbitStart = vec(cfg.Camera.OrbitStart)
	sc.OrbitOffset = vec(cfg.Camera.OrbitOffset)
	sc.OrbitFOV = cfg.Camera.FOV
	sc.Graph = graph
	sc.Renderer = renderer
	sc.RenderRadius = prefs.RenderDistance * cfg.World.ChunkSize
	sc.Metrics = d.Metrics
	sc.Settings = settings
	if d.Saves.Enabled() {
		seed := cfg.World.Seed
		sc.Persist = func() error { return d.Saves.Save(snapshot(seed, terrain, p)) }
	}

	phys := physics.New(cfg.Physics.Gravity, cfg.Physics.SimulationRate)
	log.Printf("[App] world built: seed=%d npcs=%d", cfg.World.Seed, crowd.Len())

	return &World{
		Scene:   scenes.NewWorldScene(phys, p, terrain, crowd, sc),
		Terrain: terrain,
		Player:  p,
		Crowd:   crowd,
		Graph:   graph,
	}
}

func restore(saves *game.SaveManager, seed uint32, terrain *world.World, p *player.Player) {
	save, err := saves.Load(seed)
	if err != nil {
		log.Printf("[App] Warning: ignoring save: %v", err)
		return
	}
	if save == nil {
		return
	}
	terrain.ApplyEdits(save.Edits)
	p.SetPosition(vec(save.Position))
	p.SetYawPitch(save.Yaw, save.Pitch)
	log.Printf("[App] restored save from %s (%d edits)", save.SavedAt.Format("2006-01-02 15:04"), len(save.Edits))
}

func snapshot(seed uint32, terrain *world.World, p *player.Player) *game.WorldSave {
	pos := p.Position()
	yaw, pitch := p.Orientation()
	return &game.WorldSave{
		Seed:     seed,
		Position: [3]float64{pos.X(), pos.Y(), pos.Z()},
		Yaw:      yaw,
		Pitch:    pitch,
		Edits:    terrain.Edits(),
	}
}

func worldParams(c config.WorldConfig, renderDistance int) world.Params {
	p := world.Params{
		Seed:           c.Seed,
		Scale:          c.Scale,
		Magnitude:      c.Magnitude,
		Offset:         c.Offset,
		MaxHeight:      c.MaxHeight,
		Octaves:        c.Octaves,
		ChunkSize:      c.ChunkSize,
		RenderDistance: c.RenderDistance,
	}
	if renderDistance > 0 {
		p.RenderDistance = renderDistance
	}
	return p
}

func playerConfig(c *config.GameConfig, prefs *game.GameSettings) player.Config {
	pc := player.DefaultConfig()
	pc.WalkSpeed = c.Player.WalkSpeed
	pc.RunSpeed = c.Player.RunSpeed
	pc.JumpSpeed = c.Player.JumpSpeed
	pc.Height = c.Player.Height
	pc.EyeHeight = c.Player.EyeHeight
	pc.MouseSensitivity = c.Player.MouseSensitivity
	pc.Spawn = vec(c.Player.Spawn)
	pc.FOV = c.Camera.FOV
	pc.Near = c.Camera.Near
	pc.Far = c.Camera.Far

	// 玩家偏好覆盖配置文件
	if prefs.MouseSensitivity > 0 {
		pc.MouseSensitivity = prefs.MouseSensitivity
	}
	if prefs.FOV > 0 {
		pc.FOV = prefs.FOV
	}
	return pc
}

func vec(a [3]float64) mgl64.Vec3 {
	return mgl64.Vec3{a[0], a[1], a[2]}
}

func rgb(c uint32) color.RGBA {
	return color.RGBA{R: uint8(c >> 16), G: uint8(c >> 8), B: uint8(c), A: 0xff}
}
