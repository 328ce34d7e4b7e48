package game

import (
	"testing"

	"github.com/quasilyte/gdata/v2"
)

func openTestGdata(t *testing.T, app string) *gdata.Manager {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", "")

	m, err := gdata.Open(gdata.Config{AppName: app})
	if err != nil {
		t.Fatalf("Failed to create gdata manager: %v", err)
	}
	return m
}

// TestDefaultSettings 测试 DefaultSettings() 返回正确的默认值
func TestDefaultSettings(t *testing.T) {
	settings := DefaultSettings()

	if settings.MouseSensitivity != 0.002 {
		t.Errorf("MouseSensitivity: got %v, want 0.002", settings.MouseSensitivity)
	}
	if settings.RenderDistance != 2 {
		t.Errorf("RenderDistance: got %v, want 2", settings.RenderDistance)
	}
	if settings.FOV != 75 {
		t.Errorf("FOV: got %v, want 75", settings.FOV)
	}
	if settings.Fullscreen {
		t.Error("Fullscreen: got true, want false")
	}
}

// TestNewSettingsManagerNilGdata 测试 gdataManager 为 nil 时的降级场景
func TestNewSettingsManagerNilGdata(t *testing.T) {
	sm, err := NewSettingsManager(nil)
	if err != nil {
		t.Fatalf("NewSettingsManager(nil) error: %v", err)
	}

	sm.SetFOV(90)
	if err := sm.Save(); err != nil {
		t.Errorf("Save() in degraded mode should not fail, got %v", err)
	}
	if sm.GetSettings().FOV != 90 {
		t.Errorf("FOV: got %v, want 90", sm.GetSettings().FOV)
	}
}

// TestSettingsLoadSave 测试 Load() 和 Save() 功能
func TestSettingsLoadSave(t *testing.T) {
	m := openTestGdata(t, "blockworld_test_settings")

	sm1, err := NewSettingsManager(m)
	if err != nil {
		t.Fatalf("NewSettingsManager() error: %v", err)
	}
	if sm1.GetSettings().FOV != 75 {
		t.Errorf("Initial FOV: got %v, want 75", sm1.GetSettings().FOV)
	}

	sm1.SetMouseSensitivity(0.004)
	sm1.SetRenderDistance(4)
	sm1.SetFOV(90)
	sm1.SetFullscreen(true)
	if err := sm1.Save(); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	sm2, err := NewSettingsManager(m)
	if err != nil {
		t.Fatalf("NewSettingsManager() error on reload: %v", err)
	}
	settings := sm2.GetSettings()

	if settings.MouseSensitivity != 0.004 {
		t.Errorf("Loaded MouseSensitivity: got %v, want 0.004", settings.MouseSensitivity)
	}
	if settings.RenderDistance != 4 {
		t.Errorf("Loaded RenderDistance: got %v, want 4", settings.RenderDistance)
	}
	if settings.FOV != 90 {
		t.Errorf("Loaded FOV: got %v, want 90", settings.FOV)
	}
	if !settings.Fullscreen {
		t.Error("Loaded Fullscreen: got false, want true")
	}
}

// TestSettingsLoadClampsStoredValues 测试读取越界的存档值
func TestSettingsLoadClampsStoredValues(t *testing.T) {
	m := openTestGdata(t, "blockworld_test_settings_clamp")
	if err := m.SaveObjectProp(settingsObject, settingsProperty, []byte("fov: 500\nrenderDistance: -3\n")); err != nil {
		t.Fatalf("SaveObjectProp() error: %v", err)
	}

	sm, _ := NewSettingsManager(m)
	settings := sm.GetSettings()
	if settings.FOV != MaxFOV {
		t.Errorf("FOV: got %v, want %v", settings.FOV, MaxFOV)
	}
	if settings.RenderDistance != MinRenderDistance {
		t.Errorf("RenderDistance: got %v, want %v", settings.RenderDistance, MinRenderDistance)
	}
	if settings.MouseSensitivity != 0.002 {
		t.Errorf("missing fields keep defaults, got MouseSensitivity %v", settings.MouseSensitivity)
	}
}

// TestSettingsLoadCorrupt 测试存档损坏时回退默认值
func TestSettingsLoadCorrupt(t *testing.T) {
	m := openTestGdata(t, "blockworld_test_settings_corrupt")
	if err := m.SaveObjectProp(settingsObject, settingsProperty, []byte("fov: [")); err != nil {
		t.Fatalf("SaveObjectProp() error: %v", err)
	}

	sm, err := NewSettingsManager(m)
	if err != nil {
		t.Fatalf("NewSettingsManager() should not fail on corrupt data, got %v", err)
	}
	if sm.GetSettings().FOV != 75 {
		t.Errorf("FOV: got %v, want default 75", sm.GetSettings().FOV)
	}
	if err := sm.Load(); err == nil {
		t.Error("Load() should report corrupt data")
	}
}

// TestSettingsClamp 测试 setter 范围校验
func TestSettingsClamp(t *testing.T) {
	sm, _ := NewSettingsManager(nil)

	tests := []struct {
		name  string
		apply func()
		got   func() float64
		want  float64
	}{
		{"sensitivity normal", func() { sm.SetMouseSensitivity(0.005) }, func() float64 { return sm.GetSettings().MouseSensitivity }, 0.005},
		{"sensitivity low", func() { sm.SetMouseSensitivity(0) }, func() float64 { return sm.GetSettings().MouseSensitivity }, MinMouseSensitivity},
		{"sensitivity high", func() { sm.SetMouseSensitivity(1) }, func() float64 { return sm.GetSettings().MouseSensitivity }, MaxMouseSensitivity},
		{"distance high", func() { sm.SetRenderDistance(100) }, func() float64 { return float64(sm.GetSettings().RenderDistance) }, MaxRenderDistance},
		{"distance low", func() { sm.SetRenderDistance(0) }, func() float64 { return float64(sm.GetSettings().RenderDistance) }, MinRenderDistance},
		{"fov low", func() { sm.SetFOV(10) }, func() float64 { return sm.GetSettings().FOV }, MinFOV},
		{"fov high", func() { sm.SetFOV(170) }, func() float64 { return sm.GetSettings().FOV }, MaxFOV},
	}

	for _, tt := range tests {
		tt.apply()
		if got := tt.got(); got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}
