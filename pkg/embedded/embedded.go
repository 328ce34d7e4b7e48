// Package embedded gives other packages access to the data files embedded at
// the module root.
//
// The //go:embed directive only reaches files under the declaring package,
// so the embed.FS lives in the root embed.go and is handed over through Init.
// Init must run before any asset or config is read.
package embedded

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var (
	dataFS      fs.FS
	initialized bool
)

// ErrNotInitialized is returned by every accessor before Init.
var ErrNotInitialized = errors.New("embedded package not initialized, call Init() first")

// Init installs the embedded data filesystem.
func Init(data fs.FS) {
	dataFS = data
	initialized = data != nil
}

// IsInitialized reports whether Init has been called.
func IsInitialized() bool {
	return initialized
}

func normalize(path string) (string, error) {
	path = strings.TrimPrefix(filepath.ToSlash(path), "./")
	if !strings.HasPrefix(path, "data/") {
		return "", fmt.Errorf("unknown resource path prefix: %s (must start with 'data/')", path)
	}
	return path, nil
}

// ReadFile reads an embedded file. Paths must start with "data/".
func ReadFile(path string) ([]byte, error) {
	if !initialized {
		return nil, ErrNotInitialized
	}
	p, err := normalize(path)
	if err != nil {
		return nil, err
	}
	return fs.ReadFile(dataFS, p)
}

// Exists reports whether an embedded file exists.
func Exists(path string) bool {
	if !initialized {
		return false
	}
	p, err := normalize(path)
	if err != nil {
		return false
	}
	_, err = fs.Stat(dataFS, p)
	return err == nil
}

// Glob matches embedded files. Patterns must start with "data/".
func Glob(pattern string) ([]string, error) {
	if !initialized {
		return nil, ErrNotInitialized
	}
	p, err := normalize(pattern)
	if err != nil {
		return nil, err
	}
	return fs.Glob(dataFS, p)
}

// ReadFileOrDisk prefers a file on disk at path and falls back to the
// embedded copy. This lets a player drop modified models or configs next to
// the binary.
func ReadFileOrDisk(path string) ([]byte, error) {
	if data, err := os.ReadFile(path); err == nil {
		return data, nil
	}
	return ReadFile(path)
}
