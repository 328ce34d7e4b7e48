package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/decker502/blockworld/pkg/embedded"
)

// DefaultGameConfigPath 内置默认配置的位置
const DefaultGameConfigPath = "data/config/game.yaml"

// Default window size when the config leaves it empty.
const (
	GameWindowWidth  = 1280
	GameWindowHeight = 720
)

// GameConfig 游戏全局配置
//
// 配置文件位置: data/config/game.yaml
// 未出现在文件中的字段保留 DefaultGameConfig 的值。
type GameConfig struct {
	Window  WindowConfig  `yaml:"window"`
	World   WorldConfig   `yaml:"world"`
	Player  PlayerConfig  `yaml:"player"`
	Physics PhysicsConfig `yaml:"physics"`
	NPC     NPCConfig     `yaml:"npc"`
	Camera  CameraConfig  `yaml:"camera"`
	Light   LightConfig   `yaml:"light"`
	Render  RenderConfig  `yaml:"render"`
	Frame   FrameConfig   `yaml:"frame"`
}

// WindowConfig 窗口设置
type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// WorldConfig 地形生成参数
type WorldConfig struct {
	Seed      uint32  `yaml:"seed"`
	Scale     float64 `yaml:"scale"`
	Magnitude float64 `yaml:"magnitude"`
	Offset    float64 `yaml:"offset"`
	MaxHeight int     `yaml:"maxHeight"`
	Octaves   int     `yaml:"octaves"`
	ChunkSize int     `yaml:"chunkSize"`

	// RenderDistance 以区块为单位，玩家周围加载的半径
	RenderDistance int `yaml:"renderDistance"`
}

// PlayerConfig 玩家移动参数
type PlayerConfig struct {
	WalkSpeed        float64    `yaml:"walkSpeed"`
	RunSpeed         float64    `yaml:"runSpeed"`
	JumpSpeed        float64    `yaml:"jumpSpeed"`
	Height           float64    `yaml:"height"`
	EyeHeight        float64    `yaml:"eyeHeight"`
	MouseSensitivity float64    `yaml:"mouseSensitivity"`
	Spawn            [3]float64 `yaml:"spawn"`
}

// PhysicsConfig 物理模拟参数
type PhysicsConfig struct {
	Gravity float64 `yaml:"gravity"`

	// SimulationRate 固定步长频率（每秒步数）
	SimulationRate float64 `yaml:"simulationRate"`
}

// NPCConfig NPC 生成与 AI 参数
type NPCConfig struct {
	Count       int     `yaml:"count"`
	ModelPath   string  `yaml:"modelPath"`
	Scale       float64 `yaml:"scale"`
	SpawnExtent float64 `yaml:"spawnExtent"`
	WalkChance  float64 `yaml:"walkChance"`
	IdleChance  float64 `yaml:"idleChance"`
	Speed       float64 `yaml:"speed"`

	// AIPerSecond 按 dt 缩放概率，使行为与帧率无关
	AIPerSecond bool `yaml:"aiPerSecond"`
}

// CameraConfig 相机参数
type CameraConfig struct {
	FOV         float64    `yaml:"fov"`
	Near        float64    `yaml:"near"`
	Far         float64    `yaml:"far"`
	OrbitStart  [3]float64 `yaml:"orbitStart"`
	OrbitOffset [3]float64 `yaml:"orbitOffset"`
}

// LightConfig 光照参数
type LightConfig struct {
	SunOffset [3]float64 `yaml:"sunOffset"`
	Intensity float64    `yaml:"intensity"`
	Ambient   float64    `yaml:"ambient"`
}

// RenderConfig 背景色与雾
type RenderConfig struct {
	ClearColor uint32  `yaml:"clearColor"`
	FogNear    float64 `yaml:"fogNear"`
	FogFar     float64 `yaml:"fogFar"`
}

// FrameConfig 帧循环参数
type FrameConfig struct {
	// MaxDelta 单帧 dt 上限（秒），防止拖动窗口后出现巨大步长
	MaxDelta float64 `yaml:"maxDelta"`
}

// DefaultGameConfig 返回默认配置
func DefaultGameConfig() *GameConfig {
	return &GameConfig{
		Window: WindowConfig{Title: "blockworld", Width: GameWindowWidth, Height: GameWindowHeight},
		World: WorldConfig{
			Scale:          30,
			Magnitude:      0.5,
			Offset:         0.2,
			MaxHeight:      32,
			Octaves:        2,
			ChunkSize:      16,
			RenderDistance: 2,
		},
		Player: PlayerConfig{
			WalkSpeed:        5,
			RunSpeed:         10,
			JumpSpeed:        10,
			Height:           1.75,
			EyeHeight:        1.6,
			MouseSensitivity: 0.002,
			Spawn:            [3]float64{0, 40, 0},
		},
		Physics: PhysicsConfig{Gravity: 32, SimulationRate: 200},
		NPC: NPCConfig{
			Count:       1,
			ModelPath:   "data/models/llama.yaml",
			Scale:       3,
			SpawnExtent: 10,
			WalkChance:  0.02,
			IdleChance:  0.01,
			Speed:       1,
		},
		Camera: CameraConfig{
			FOV:         75,
			Near:        0.1,
			Far:         1000,
			OrbitStart:  [3]float64{24, 24, 24},
			OrbitOffset: [3]float64{16, 16, 16},
		},
		Light:  LightConfig{SunOffset: [3]float64{50, 50, 50}, Intensity: 1.5, Ambient: 0.2},
		Render: RenderConfig{ClearColor: 0x80a0e0, FogNear: 50, FogFar: 75},
		Frame:  FrameConfig{MaxDelta: 0.1},
	}
}

// LoadGameConfig 加载游戏配置
//
// path 优先从磁盘读取，不存在时回退到嵌入资源。
func LoadGameConfig(path string) (*GameConfig, error) {
	data, err := embedded.ReadFileOrDisk(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read game config: %w", err)
	}
	return ParseGameConfig(data)
}

// ParseGameConfig 解析 YAML 配置并校验
func ParseGameConfig(data []byte) (*GameConfig, error) {
	cfg := DefaultGameConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse game config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid game config: %w", err)
	}
	return cfg, nil
}

// Validate 验证配置有效性
func (c *GameConfig) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}

	if c.World.Scale <= 0 {
		return fmt.Errorf("world scale must be positive, got %.2f", c.World.Scale)
	}
	if c.World.MaxHeight < 1 {
		return fmt.Errorf("world maxHeight must be >= 1, got %d", c.World.MaxHeight)
	}
	if c.World.Octaves < 1 {
		return fmt.Errorf("world octaves must be >= 1, got %d", c.World.Octaves)
	}
	if c.World.ChunkSize < 1 {
		return fmt.Errorf("world chunkSize must be >= 1, got %d", c.World.ChunkSize)
	}
	if c.World.RenderDistance < 0 {
		return fmt.Errorf("world renderDistance must be >= 0, got %d", c.World.RenderDistance)
	}

	if c.Player.WalkSpeed < 0 || c.Player.RunSpeed < 0 || c.Player.JumpSpeed < 0 {
		return fmt.Errorf("player speeds must be >= 0")
	}
	if c.Player.Height <= 0 || c.Player.EyeHeight <= 0 || c.Player.EyeHeight > c.Player.Height {
		return fmt.Errorf("player eyeHeight(%.2f) must be in (0, height(%.2f)]", c.Player.EyeHeight, c.Player.Height)
	}

	if c.Physics.SimulationRate <= 0 {
		return fmt.Errorf("physics simulationRate must be positive, got %.1f", c.Physics.SimulationRate)
	}
	if c.Physics.Gravity < 0 {
		return fmt.Errorf("physics gravity must be >= 0, got %.2f", c.Physics.Gravity)
	}

	if c.NPC.Count < 0 {
		return fmt.Errorf("npc count must be >= 0, got %d", c.NPC.Count)
	}
	if c.NPC.Count > 0 && c.NPC.ModelPath == "" {
		return fmt.Errorf("npc modelPath is required when count > 0")
	}
	if c.NPC.Scale <= 0 {
		return fmt.Errorf("npc scale must be positive, got %.2f", c.NPC.Scale)
	}
	if !isProbability(c.NPC.WalkChance) || !isProbability(c.NPC.IdleChance) {
		return fmt.Errorf("npc walkChance(%.3f) and idleChance(%.3f) must be in [0, 1]",
			c.NPC.WalkChance, c.NPC.IdleChance)
	}

	if c.Camera.FOV <= 0 || c.Camera.FOV >= 180 {
		return fmt.Errorf("camera fov must be in (0, 180), got %.1f", c.Camera.FOV)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		return fmt.Errorf("camera clip planes invalid: near(%.2f) far(%.2f)", c.Camera.Near, c.Camera.Far)
	}

	if c.Render.FogFar < c.Render.FogNear {
		return fmt.Errorf("render fog range invalid: near(%.1f) > far(%.1f)", c.Render.FogNear, c.Render.FogFar)
	}

	if c.Frame.MaxDelta <= 0 {
		return fmt.Errorf("frame maxDelta must be positive, got %.3f", c.Frame.MaxDelta)
	}
	return nil
}

func isProbability(p float64) bool {
	return p >= 0 && p <= 1
}
