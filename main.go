package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/decker502/blockworld/pkg/app"
	"github.com/decker502/blockworld/pkg/embedded"
	"github.com/decker502/blockworld/pkg/observe"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	verbose := flag.Bool("verbose", false, "启用详细日志输出")
	configPath := flag.String("config", "", "游戏配置文件路径（默认使用内置配置）")
	seed := flag.Int64("seed", -1, "world seed in [0, 4294967295]; also makes NPC placement deterministic (-1 = from config)")
	npcs := flag.Int("npcs", -1, "number of NPCs to spawn (-1 = from config)")
	metricsAddr := flag.String("metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	saveDir := flag.String("save-dir", "", "world save directory (\"-\" disables saving)")
	skipLoading := flag.Bool("skip-loading", false, "跳过加载场景")
	flag.Parse()

	embedded.Init(dataFS)

	shutdown, err := observe.InitProvider(context.Background(), observe.ProviderConfig{ServiceVersion: version})
	if err != nil {
		log.Fatalf("初始化遥测失败: %v", err)
	}
	var metricsSrv *http.Server
	if *metricsAddr != "" {
		metricsSrv = observe.ServeMetrics(*metricsAddr)
	}

	a, err := app.NewApp(app.Config{
		Verbose:          *verbose,
		ConfigPath:       *configPath,
		Seed:             *seed,
		NPCs:             *npcs,
		SaveDir:          *saveDir,
		SkipLoadingScene: *skipLoading,
	})
	if err != nil {
		log.Fatalf("创建游戏失败: %v", err)
	}

	win := a.GameConfig().Window
	ebiten.SetWindowSize(win.Width, win.Height)
	ebiten.SetWindowTitle(win.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	runErr := ebiten.RunGame(a)
	a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(ctx); err != nil {
			log.Printf("[Main] metrics server shutdown: %v", err)
		}
	}
	if err := shutdown(ctx); err != nil {
		log.Printf("[Main] telemetry shutdown: %v", err)
	}
	if runErr != nil {
		log.Fatal(runErr)
	}
}
