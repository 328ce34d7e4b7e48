// cmd/check_data/main.go
// 校验 data/ 目录下的配置与模型文件
//
// 用法：
//   go run ./cmd/check_data --root=.

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/decker502/blockworld/pkg/assets"
	"github.com/decker502/blockworld/pkg/config"
	"github.com/decker502/blockworld/pkg/embedded"
)

func main() {
	root := flag.String("root", ".", "项目根目录（包含 data/）")
	flag.Parse()

	// 以磁盘目录代替嵌入资源，校验的是即将被嵌入的文件
	embedded.Init(os.DirFS(*root))

	failed := 0
	cfg, err := config.LoadGameConfig(config.DefaultGameConfigPath)
	if err != nil {
		fmt.Printf("FAIL %s: %v\n", config.DefaultGameConfigPath, err)
		failed++
	} else {
		fmt.Printf("ok   %s (npcs=%d, seed=%d)\n", config.DefaultGameConfigPath, cfg.NPC.Count, cfg.World.Seed)
	}

	models, err := embedded.Glob("data/models/*.yaml")
	if err != nil {
		fmt.Printf("FAIL glob models: %v\n", err)
		os.Exit(1)
	}
	for _, path := range models {
		data, err := embedded.ReadFile(path)
		if err != nil {
			fmt.Printf("FAIL %s: %v\n", path, err)
			failed++
			continue
		}
		def, err := assets.ParseModel(data)
		if err != nil {
			fmt.Printf("FAIL %s: %v\n", path, err)
			failed++
			continue
		}
		fmt.Printf("ok   %s (%s, %d clips)\n", path, def.Name, len(def.Clips))
	}

	if cfg != nil && !embedded.Exists(cfg.NPC.ModelPath) {
		fmt.Printf("FAIL npc.modelPath %s does not exist\n", cfg.NPC.ModelPath)
		failed++
	}

	if failed > 0 {
		fmt.Printf("%d file(s) failed\n", failed)
		os.Exit(1)
	}
}
