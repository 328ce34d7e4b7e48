// Package app 提供游戏应用的核心包装器
//
// 该包将游戏初始化逻辑从 main 包提取出来：读取配置、打开设置存储、
// 创建资源加载器并注册场景，然后作为 ebiten.Game 运行。
package app

import (
	"context"
	"fmt"
	"image/color"
	"io"
	"log"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/quasilyte/gdata/v2"

	"github.com/decker502/blockworld/pkg/assets"
	"github.com/decker502/blockworld/pkg/config"
	"github.com/decker502/blockworld/pkg/embedded"
	"github.com/decker502/blockworld/pkg/game"
	"github.com/decker502/blockworld/pkg/observe"
	"github.com/decker502/blockworld/pkg/scenes"
)

// Scene names registered with the scene manager.
const (
	SceneWorld = "world"
)

// Config 定义应用启动配置
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool

	// ConfigPath 游戏配置文件路径，为空时使用内置默认配置
	ConfigPath string

	// Seed overrides the world seed when non-negative and must fit in 32
	// bits. It also makes NPC placement and AI deterministic.
	Seed int64

	// NPCs overrides the NPC count when non-negative.
	NPCs int

	// SkipLoadingScene 跳过加载场景，直接进入世界
	SkipLoadingScene bool

	// SaveDir holds world saves. Empty uses game.DefaultSaveDir; "-"
	// disables saving.
	SaveDir string

	// Metrics defaults to observe.DefaultMetrics.
	Metrics *observe.Metrics
}

// App 是游戏应用的核心包装器，实现 ebiten.Game 接口
type App struct {
	sceneManager    *game.SceneManager
	settingsManager *game.SettingsManager
	gameConfig      *config.GameConfig
	loader          *assets.Loader
	verbose         bool

	pendingWindowSizeReset   bool // 延迟设置窗口大小标志
	windowSizeResetCountdown int  // 延迟帧数
}

// NewApp 创建并初始化游戏应用
//
// 调用此函数前，必须先调用 embedded.Init() 初始化嵌入资源。
func NewApp(cfg Config) (*App, error) {
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observe.DefaultMetrics()
	}

	path := cfg.ConfigPath
	if path == "" {
		path = config.DefaultGameConfigPath
	}
	gameConfig, err := config.LoadGameConfig(path)
	if err != nil {
		return nil, fmt.Errorf("游戏配置加载失败: %w", err)
	}
	if err := applyOverrides(gameConfig, cfg); err != nil {
		return nil, fmt.Errorf("启动参数无效: %w", err)
	}
	log.Printf("[Config] loaded %s (seed=%d, npcs=%d)", path, gameConfig.World.Seed, gameConfig.NPC.Count)

	settingsManager, err := game.NewSettingsManager(openStorage())
	if err != nil {
		return nil, fmt.Errorf("设置加载失败: %w", err)
	}

	saves, err := game.NewSaveManager(saveDir(cfg.SaveDir))
	if err != nil {
		log.Printf("[App] Warning: %v (world will not be saved)", err)
		saves, _ = game.NewSaveManager("")
	}

	loader := assets.NewLoader(embedded.ReadFileOrDisk, assets.WithMetrics(cfg.Metrics))

	sceneManager := game.NewSceneManager()
	deps := WorldDeps{
		Config:   gameConfig,
		Settings: settingsManager,
		Loader:   loader,
		Metrics:  cfg.Metrics,
		Saves:    saves,
		Seeded:   cfg.Seed >= 0,
	}
	sceneManager.SetSceneFactory(func(name string) game.Scene {
		if name != SceneWorld {
			return nil
		}
		return BuildWorldScene(deps)
	})

	if cfg.SkipLoadingScene {
		log.Printf("[App] SkipLoadingScene enabled, entering the world directly")
		sceneManager.Load(SceneWorld)
	} else {
		paths := []string{gameConfig.NPC.ModelPath, ToolModelPath}
		sceneManager.SwitchTo(scenes.NewLoadingScene(context.Background(), loader, paths, sceneManager, SceneWorld))
	}

	if settingsManager.GetSettings().Fullscreen {
		ebiten.SetFullscreen(true)
	}

	return &App{
		sceneManager:    sceneManager,
		settingsManager: settingsManager,
		gameConfig:      gameConfig,
		loader:          loader,
		verbose:         cfg.Verbose,
	}, nil
}

// applyOverrides 将命令行参数覆盖到配置，负值表示沿用配置文件
func applyOverrides(c *config.GameConfig, cfg Config) error {
	if cfg.Seed > math.MaxUint32 {
		return fmt.Errorf("seed %d out of range [0, %d]", cfg.Seed, uint32(math.MaxUint32))
	}
	if cfg.Seed >= 0 {
		c.World.Seed = uint32(cfg.Seed)
	}
	if cfg.NPCs >= 0 {
		c.NPC.Count = cfg.NPCs
	}
	return nil
}

func saveDir(dir string) string {
	switch dir {
	case "-":
		return ""
	case "":
		d, err := game.DefaultSaveDir()
		if err != nil {
			log.Printf("[App] Warning: %v (world will not be saved)", err)
			return ""
		}
		return d
	}
	return dir
}

// openStorage opens the per-user settings store. Failure degrades to
// in-memory settings.
func openStorage() *gdata.Manager {
	m, err := gdata.Open(gdata.Config{AppName: "blockworld"})
	if err != nil {
		log.Printf("[App] Warning: settings storage unavailable: %v (settings will not persist)", err)
		return nil
	}
	return m
}

// Update 更新游戏逻辑
// 每个 tick 调用一次（通常每秒 60 次）
func (a *App) Update() error {
	// 延迟设置窗口大小（退出全屏后需要等待几帧才能正确设置）
	if a.pendingWindowSizeReset {
		a.windowSizeResetCountdown--
		if a.windowSizeResetCountdown <= 0 {
			ebiten.SetWindowSize(a.gameConfig.Window.Width, a.gameConfig.Window.Height)
			log.Printf("[App] Delayed SetWindowSize(%d, %d)", a.gameConfig.Window.Width, a.gameConfig.Window.Height)
			a.pendingWindowSizeReset = false
		}
	}

	// F11 切换全屏
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		if ebiten.IsFullscreen() {
			ebiten.SetFullscreen(false)
			if ebiten.IsWindowMaximized() || ebiten.IsWindowMinimized() {
				ebiten.RestoreWindow()
			}
			a.pendingWindowSizeReset = true
			a.windowSizeResetCountdown = 3
			log.Printf("[App] Exit fullscreen, will reset window size in 3 frames")
		} else {
			ebiten.SetFullscreen(true)
		}
		a.settingsManager.SetFullscreen(ebiten.IsFullscreen())
	}

	deltaTime := 1.0 / float64(ebiten.TPS())
	a.sceneManager.Update(deltaTime)
	return nil
}

// Draw 绘制游戏画面
// 每帧调用一次
func (a *App) Draw(screen *ebiten.Image) {
	a.sceneManager.Draw(screen)
}

// DrawFinalScreen 实现 FinalScreenDrawer 接口
// 用于控制全屏时的缩放和 letterbox 颜色
func (a *App) DrawFinalScreen(screen ebiten.FinalScreen, offscreen *ebiten.Image, geoM ebiten.GeoM) {
	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	op.GeoM = geoM
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(offscreen, op)
}

// Layout 返回游戏的逻辑屏幕尺寸
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return a.gameConfig.Window.Width, a.gameConfig.Window.Height
}

// Close persists state of the current scene and waits for in-flight
// asset loads. Call it after ebiten.RunGame returns.
func (a *App) Close() {
	if !a.sceneManager.SaveOnExit() {
		log.Printf("[App] Warning: current scene failed to save on exit")
	}
	if err := a.settingsManager.Save(); err != nil {
		log.Printf("[App] Warning: failed to save settings: %v", err)
	}
	a.loader.Wait()
}

// GetSceneManager 返回场景管理器
func (a *App) GetSceneManager() *game.SceneManager {
	return a.sceneManager
}

// GameConfig returns the effective configuration after flag overrides.
func (a *App) GameConfig() *config.GameConfig {
	return a.gameConfig
}

// IsVerbose 返回是否启用了详细日志
func (a *App) IsVerbose() bool {
	return a.verbose
}
