package scenes

import (
	"context"
	"fmt"
	"image/color"
	"log"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/decker502/blockworld/pkg/game"
)

// Preloader fetches assets ahead of time.
type Preloader interface {
	Preload(ctx context.Context, paths []string) error
}

var _ game.Scene = (*LoadingScene)(nil)

// DefaultLoadingDuration is the shortest time the loading screen stays up.
const DefaultLoadingDuration = 0.5

// LoadingScene preloads model assets in the background and switches to the
// next scene once they are in the loader's cache and the minimum display
// time has passed. A failed preload is logged and does not block the game;
// the affected entities simply stay invisible.
type LoadingScene struct {
	sceneManager *game.SceneManager
	next         string

	done     chan error
	finished bool
	switched bool
	err      error

	elapsedTime float64
	MinDuration float64

	background color.RGBA
}

// NewLoadingScene starts preloading paths and returns immediately.
func NewLoadingScene(ctx context.Context, p Preloader, paths []string, sm *game.SceneManager, next string) *LoadingScene {
	s := &LoadingScene{
		sceneManager: sm,
		next:         next,
		done:         make(chan error, 1),
		MinDuration:  DefaultLoadingDuration,
		background:   color.RGBA{R: 0x80, G: 0xa0, B: 0xe0, A: 0xff},
	}

	log.Printf("[LoadingScene] preloading %d assets", len(paths))
	go func() {
		if p == nil {
			s.done <- nil
			return
		}
		s.done <- p.Preload(ctx, paths)
	}()
	return s
}

// Update polls the preload and switches scenes when ready.
func (s *LoadingScene) Update(deltaTime float64) {
	s.elapsedTime += deltaTime

	if !s.finished {
		select {
		case err := <-s.done:
			s.finished = true
			s.err = err
			if err != nil {
				log.Printf("[LoadingScene] preload failed, continuing: %v", err)
			} else {
				log.Printf("[LoadingScene] preload complete in %.2fs", s.elapsedTime)
			}
		default:
		}
	}

	if s.finished && !s.switched && s.elapsedTime >= s.MinDuration && s.sceneManager != nil {
		s.switched = s.sceneManager.Load(s.next)
	}
}

// Draw shows a simple animated loading message.
func (s *LoadingScene) Draw(screen *ebiten.Image) {
	screen.Fill(s.background)
	dots := strings.Repeat(".", int(s.elapsedTime*3)%4)
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Loading%s", dots), 10, 10)
}

// Finished reports whether the preload has returned.
func (s *LoadingScene) Finished() bool { return s.finished }

// Err returns the preload error, if any.
func (s *LoadingScene) Err() error { return s.err }
