package embedded

import (
	"errors"
	"testing"
	"testing/fstest"
)

func resetEmbedded(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		dataFS = nil
		initialized = false
	})
}

func TestNotInitialized(t *testing.T) {
	resetEmbedded(t)
	initialized = false

	if IsInitialized() {
		t.Error("Expected IsInitialized() to return false before Init()")
	}
	if _, err := ReadFile("data/config/game.yaml"); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Expected ErrNotInitialized, got %v", err)
	}
	if _, err := Glob("data/models/*.yaml"); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Expected ErrNotInitialized, got %v", err)
	}
	if Exists("data/config/game.yaml") {
		t.Error("Expected Exists() to be false before Init()")
	}
}

func TestReadFileAndGlob(t *testing.T) {
	resetEmbedded(t)
	Init(fstest.MapFS{
		"data/models/llama.yaml": {Data: []byte("name: llama")},
		"data/models/sheep.yaml": {Data: []byte("name: sheep")},
	})

	data, err := ReadFile("./data/models/llama.yaml")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "name: llama" {
		t.Errorf("Unexpected content %q", data)
	}

	matches, err := Glob("data/models/*.yaml")
	if err != nil {
		t.Fatalf("Glob failed: %v", err)
	}
	if len(matches) != 2 {
		t.Errorf("Expected 2 matches, got %v", matches)
	}

	if !Exists("data/models/sheep.yaml") {
		t.Error("Expected sheep.yaml to exist")
	}
	if Exists("data/models/cow.yaml") {
		t.Error("Expected cow.yaml to be missing")
	}
}

func TestUnknownPrefix(t *testing.T) {
	resetEmbedded(t)
	Init(fstest.MapFS{})

	if _, err := ReadFile("assets/images/sky.png"); err == nil {
		t.Error("Expected error for a path outside data/")
	}
}

func TestReadFileOrDiskFallsBackToEmbedded(t *testing.T) {
	resetEmbedded(t)
	Init(fstest.MapFS{
		"data/only-embedded.yaml": {Data: []byte("embedded")},
	})

	data, err := ReadFileOrDisk("data/only-embedded.yaml")
	if err != nil {
		t.Fatalf("ReadFileOrDisk failed: %v", err)
	}
	if string(data) != "embedded" {
		t.Errorf("Expected embedded content, got %q", data)
	}
}
