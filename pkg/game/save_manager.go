package game

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/decker502/blockworld/pkg/world"
)

// WorldSave 一个世界的存档
//
// 世界地形由种子决定，因此只需保存玩家状态和编辑过的方块列。
type WorldSave struct {
	Seed     uint32             `yaml:"seed"`
	Position [3]float64         `yaml:"position"`
	Yaw      float64            `yaml:"yaw"`
	Pitch    float64            `yaml:"pitch"`
	Edits    []world.ColumnEdit `yaml:"edits,omitempty"`
	SavedAt  time.Time          `yaml:"savedAt"`
}

// SaveManager 存档管理器
//
// 职责：
//   - 按种子读写世界存档（每个种子一个 YAML 文件）
//   - 存档目录不存在时自动创建
//
// 空的 saveDir 表示不持久化，Load 总是返回 (nil, nil)，Save 不做任何事。
type SaveManager struct {
	saveDir string
}

// NewSaveManager 创建存档管理器
//
// 参数：
//   - saveDir: 存档目录路径，为空时禁用存档
func NewSaveManager(saveDir string) (*SaveManager, error) {
	if saveDir != "" {
		if err := os.MkdirAll(saveDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create save directory: %w", err)
		}
	}
	return &SaveManager{saveDir: saveDir}, nil
}

// DefaultSaveDir 返回用户配置目录下的存档目录
func DefaultSaveDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config dir: %w", err)
	}
	return filepath.Join(dir, "blockworld", "saves"), nil
}

// Enabled 是否会写入磁盘
func (sm *SaveManager) Enabled() bool {
	return sm != nil && sm.saveDir != ""
}

func (sm *SaveManager) path(seed uint32) string {
	return filepath.Join(sm.saveDir, fmt.Sprintf("world-%d.yaml", seed))
}

// Load 读取指定种子的存档
//
// 返回：
//   - *WorldSave: 没有存档时为 nil
//   - error: 文件损坏或读取失败
func (sm *SaveManager) Load(seed uint32) (*WorldSave, error) {
	if !sm.Enabled() {
		return nil, nil
	}
	data, err := os.ReadFile(sm.path(seed))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read save file: %w", err)
	}

	var save WorldSave
	if err := yaml.Unmarshal(data, &save); err != nil {
		return nil, fmt.Errorf("failed to parse save data: %w", err)
	}
	if save.Seed != seed {
		return nil, fmt.Errorf("save file %s belongs to seed %d", sm.path(seed), save.Seed)
	}
	return &save, nil
}

// Save 写入存档，按 save.Seed 选择文件
func (sm *SaveManager) Save(save *WorldSave) error {
	if !sm.Enabled() || save == nil {
		return nil
	}
	if save.SavedAt.IsZero() {
		save.SavedAt = time.Now()
	}

	// 格式化输出，便于人工阅读和调试
	data, err := yaml.Marshal(save)
	if err != nil {
		return fmt.Errorf("failed to marshal save data: %w", err)
	}
	if err := os.WriteFile(sm.path(save.Seed), data, 0644); err != nil {
		return fmt.Errorf("failed to write save file: %w", err)
	}
	return nil
}

// Delete 删除指定种子的存档，不存在时不报错
func (sm *SaveManager) Delete(seed uint32) error {
	if !sm.Enabled() {
		return nil
	}
	if err := os.Remove(sm.path(seed)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete save file: %w", err)
	}
	return nil
}
