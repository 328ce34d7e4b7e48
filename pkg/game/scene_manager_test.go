package game

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

// MockScene is a mock implementation of the Scene interface for testing.
type MockScene struct {
	updateCalled bool
	drawCalled   bool
	deltaTime    float64
}

// Update records that Update was called and stores the deltaTime.
func (m *MockScene) Update(deltaTime float64) {
	m.updateCalled = true
	m.deltaTime = deltaTime
}

// Draw records that Draw was called.
func (m *MockScene) Draw(screen *ebiten.Image) {
	m.drawCalled = true
}

// savingScene also implements Saveable.
type savingScene struct {
	MockScene
	saved bool
}

func (s *savingScene) SaveOnExit() bool {
	s.saved = true
	return true
}

// TestNewSceneManager verifies that NewSceneManager creates a valid instance.
func TestNewSceneManager(t *testing.T) {
	sm := NewSceneManager()
	if sm == nil {
		t.Fatal("NewSceneManager() returned nil")
	}
	if sm.GetCurrentScene() != nil {
		t.Error("Expected currentScene to be nil initially")
	}
}

// TestSceneManagerUpdate verifies that Update calls the current scene's Update method.
func TestSceneManagerUpdate(t *testing.T) {
	sm := NewSceneManager()
	mockScene := &MockScene{}
	sm.SwitchTo(mockScene)

	deltaTime := 0.016 // ~60 FPS
	sm.Update(deltaTime)

	if !mockScene.updateCalled {
		t.Error("Scene's Update method was not called")
	}
	if mockScene.deltaTime != deltaTime {
		t.Errorf("Expected deltaTime %.3f, got %.3f", deltaTime, mockScene.deltaTime)
	}
}

// TestSceneManagerNoScene verifies that Update and Draw handle a nil scene gracefully.
func TestSceneManagerNoScene(t *testing.T) {
	sm := NewSceneManager()
	sm.Update(0.016)
	sm.Draw(nil)
	if !sm.SaveOnExit() {
		t.Error("SaveOnExit with no scene should succeed")
	}
}

// TestSceneManagerDraw verifies that Draw calls the current scene's Draw method.
func TestSceneManagerDraw(t *testing.T) {
	sm := NewSceneManager()
	mockScene := &MockScene{}
	sm.SwitchTo(mockScene)

	sm.Draw(nil)

	if !mockScene.drawCalled {
		t.Error("Scene's Draw method was not called")
	}
}

// TestSceneManagerSwitchBetweenScenes verifies switching between multiple scenes.
func TestSceneManagerSwitchBetweenScenes(t *testing.T) {
	sm := NewSceneManager()
	scene1 := &MockScene{}
	scene2 := &MockScene{}

	sm.SwitchTo(scene1)
	sm.Update(0.016)

	if !scene1.updateCalled {
		t.Error("Scene1's Update was not called")
	}
	if scene2.updateCalled {
		t.Error("Scene2's Update should not have been called yet")
	}

	sm.SwitchTo(scene2)
	sm.Update(0.016)

	if !scene2.updateCalled {
		t.Error("Scene2's Update was not called after switching")
	}
}

// TestSceneManagerLoad verifies factory-based scene creation.
func TestSceneManagerLoad(t *testing.T) {
	sm := NewSceneManager()
	if sm.Load("world") {
		t.Error("Load without a factory should fail")
	}

	world := &MockScene{}
	var requested string
	sm.SetSceneFactory(func(name string) Scene {
		requested = name
		if name == "world" {
			return world
		}
		return nil
	})

	if !sm.Load("world") {
		t.Fatal("Load(world) should succeed")
	}
	if requested != "world" || sm.GetCurrentScene() != world {
		t.Errorf("Expected world scene to be current, got %v", sm.GetCurrentScene())
	}

	if sm.Load("missing") {
		t.Error("Load(missing) should fail")
	}
	if sm.GetCurrentScene() != world {
		t.Error("A failed Load must keep the current scene")
	}
}

// TestSceneManagerSaveOnExit verifies Saveable scenes are asked to save.
func TestSceneManagerSaveOnExit(t *testing.T) {
	sm := NewSceneManager()
	s := &savingScene{}
	sm.SwitchTo(s)

	if !sm.SaveOnExit() || !s.saved {
		t.Error("Expected SaveOnExit to reach the current scene")
	}
}
