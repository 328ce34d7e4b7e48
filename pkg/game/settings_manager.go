package game

import (
	"fmt"
	"log"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// GameSettings 玩家设置
// 只保存偏好设置；世界存档由 SaveManager 负责
type GameSettings struct {
	// 操作设置
	MouseSensitivity float64 `yaml:"mouseSensitivity"` // 每像素旋转弧度

	// 显示设置
	RenderDistance int     `yaml:"renderDistance"` // 以区块为单位
	FOV            float64 `yaml:"fov"`            // 垂直视角（度）
	Fullscreen     bool    `yaml:"fullscreen"`     // 启动时是否全屏
}

// Setting limits.
const (
	MinMouseSensitivity = 0.0002
	MaxMouseSensitivity = 0.02
	MinRenderDistance   = 1
	MaxRenderDistance   = 8
	MinFOV              = 30.0
	MaxFOV              = 120.0
)

// DefaultSettings 返回默认设置
func DefaultSettings() *GameSettings {
	return &GameSettings{
		MouseSensitivity: 0.002,
		RenderDistance:   2,
		FOV:              75,
		Fullscreen:       false,
	}
}

// SettingsManager 设置管理器
// 负责游戏设置的加载、保存和内存管理
type SettingsManager struct {
	gdataManager *gdata.Manager // gdata 跨平台存储管理器，可为 nil（降级模式）
	settings     *GameSettings  // 当前设置
}

// 存储路径常量
const (
	settingsObject   = "settings"
	settingsProperty = "player"
)

// NewSettingsManager 创建新的设置管理器实例
//
// gdataManager 可为 nil（降级模式，仅内存设置）。加载失败不是致命错误，
// 会记录日志并使用默认设置。
func NewSettingsManager(gdataManager *gdata.Manager) (*SettingsManager, error) {
	sm := &SettingsManager{
		gdataManager: gdataManager,
		settings:     DefaultSettings(),
	}

	if err := sm.Load(); err != nil {
		log.Printf("[SettingsManager] Warning: Failed to load settings: %v (using defaults)", err)
	}

	return sm, nil
}

// Load 从 gdata 加载设置
//
// 如果 gdataManager 为 nil 或文件不存在，使用默认设置。
// 读到的值会被限制在合法范围内。
func (sm *SettingsManager) Load() error {
	// 降级模式：无法持久化，使用默认设置
	if sm.gdataManager == nil {
		sm.settings = DefaultSettings()
		return nil
	}

	if !sm.gdataManager.ObjectPropExists(settingsObject, settingsProperty) {
		sm.settings = DefaultSettings()
		return nil
	}

	data, err := sm.gdataManager.LoadObjectProp(settingsObject, settingsProperty)
	if err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to load settings: %w", err)
	}

	loaded := DefaultSettings()
	if err := yaml.Unmarshal(data, loaded); err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	sm.settings = loaded
	sm.SetMouseSensitivity(loaded.MouseSensitivity)
	sm.SetRenderDistance(loaded.RenderDistance)
	sm.SetFOV(loaded.FOV)
	log.Printf("[SettingsManager] Settings loaded successfully")
	return nil
}

// Save 保存设置到 gdata
//
// 如果 gdataManager 为 nil，返回 nil（降级模式，不报错）
func (sm *SettingsManager) Save() error {
	if sm.gdataManager == nil {
		return nil
	}

	data, err := yaml.Marshal(sm.settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := sm.gdataManager.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	log.Printf("[SettingsManager] Settings saved successfully")
	return nil
}

// GetSettings 获取当前设置
func (sm *SettingsManager) GetSettings() *GameSettings {
	return sm.settings
}

// SetMouseSensitivity 设置鼠标灵敏度
// 注意：仅修改内存中的设置，需调用 Save() 方法持久化
func (sm *SettingsManager) SetMouseSensitivity(s float64) {
	sm.settings.MouseSensitivity = clampFloat(s, MinMouseSensitivity, MaxMouseSensitivity)
}

// SetRenderDistance 设置渲染距离（区块）
func (sm *SettingsManager) SetRenderDistance(d int) {
	if d < MinRenderDistance {
		d = MinRenderDistance
	}
	if d > MaxRenderDistance {
		d = MaxRenderDistance
	}
	sm.settings.RenderDistance = d
}

// SetFOV 设置垂直视角
func (sm *SettingsManager) SetFOV(fov float64) {
	sm.settings.FOV = clampFloat(fov, MinFOV, MaxFOV)
}

// SetFullscreen 设置全屏模式
func (sm *SettingsManager) SetFullscreen(enabled bool) {
	sm.settings.Fullscreen = enabled
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
