package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseGameConfig(t *testing.T) {
	tests := []struct {
		name        string
		yamlContent string
		wantErr     bool
		errContains string
		validate    func(*testing.T, *GameConfig)
	}{
		{
			name: "partial config keeps defaults",
			yamlContent: `
world:
  seed: 42
npc:
  count: 5
  aiPerSecond: true
`,
			validate: func(t *testing.T, cfg *GameConfig) {
				if cfg.World.Seed != 42 {
					t.Errorf("expected seed = 42, got %d", cfg.World.Seed)
				}
				if cfg.World.Scale != 30 {
					t.Errorf("expected default scale = 30, got %f", cfg.World.Scale)
				}
				if cfg.NPC.Count != 5 || !cfg.NPC.AIPerSecond {
					t.Errorf("expected npc count 5 with aiPerSecond, got %d/%v", cfg.NPC.Count, cfg.NPC.AIPerSecond)
				}
				if cfg.NPC.WalkChance != 0.02 {
					t.Errorf("expected default walkChance = 0.02, got %f", cfg.NPC.WalkChance)
				}
				if cfg.Frame.MaxDelta != 0.1 {
					t.Errorf("expected default maxDelta = 0.1, got %f", cfg.Frame.MaxDelta)
				}
			},
		},
		{
			name: "arrays and hex color",
			yamlContent: `
camera:
  orbitOffset: [8, 12, 8]
render:
  clearColor: 0x102030
`,
			validate: func(t *testing.T, cfg *GameConfig) {
				if cfg.Camera.OrbitOffset != [3]float64{8, 12, 8} {
					t.Errorf("expected orbitOffset [8 12 8], got %v", cfg.Camera.OrbitOffset)
				}
				if cfg.Render.ClearColor != 0x102030 {
					t.Errorf("expected clearColor 0x102030, got %#x", cfg.Render.ClearColor)
				}
			},
		},
		{
			name:        "probability out of range",
			yamlContent: "npc:\n  walkChance: 1.5\n",
			wantErr:     true,
			errContains: "walkChance",
		},
		{
			name:        "zero simulation rate",
			yamlContent: "physics:\n  simulationRate: 0\n",
			wantErr:     true,
			errContains: "simulationRate",
		},
		{
			name:        "eye above head",
			yamlContent: "player:\n  height: 1\n  eyeHeight: 2\n",
			wantErr:     true,
			errContains: "eyeHeight",
		},
		{
			name:        "inverted fog",
			yamlContent: "render:\n  fogNear: 80\n  fogFar: 10\n",
			wantErr:     true,
			errContains: "fog",
		},
		{
			name:        "missing model path",
			yamlContent: "npc:\n  count: 3\n  modelPath: \"\"\n",
			wantErr:     true,
			errContains: "modelPath",
		},
		{
			name:        "malformed yaml",
			yamlContent: "world: [",
			wantErr:     true,
			errContains: "failed to parse",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseGameConfig([]byte(tt.yamlContent))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("expected error containing %q, got %q", tt.errContains, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.validate != nil {
				tt.validate(t, cfg)
			}
		})
	}
}

func TestDefaultGameConfigIsValid(t *testing.T) {
	if err := DefaultGameConfig().Validate(); err != nil {
		t.Errorf("default config should be valid, got %v", err)
	}
}

func TestLoadGameConfigFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.yaml")
	if err := os.WriteFile(path, []byte("npc:\n  count: 7\n"), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := LoadGameConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.NPC.Count != 7 {
		t.Errorf("expected npc count = 7, got %d", cfg.NPC.Count)
	}
}

func TestLoadGameConfigMissing(t *testing.T) {
	if _, err := LoadGameConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoadRepositoryConfig(t *testing.T) {
	cfg, err := LoadGameConfig(filepath.Join("..", "..", DefaultGameConfigPath))
	if err != nil {
		t.Fatalf("repository config should load, got %v", err)
	}
	if cfg.Render.ClearColor != 0x80a0e0 {
		t.Errorf("expected clearColor 0x80a0e0, got %#x", cfg.Render.ClearColor)
	}
	if cfg.Light.SunOffset != [3]float64{50, 50, 50} {
		t.Errorf("expected sunOffset [50 50 50], got %v", cfg.Light.SunOffset)
	}
}
