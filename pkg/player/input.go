package player

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// InputState 一帧的输入快照
type InputState struct {
	Forward, Back, Left, Right bool
	Jump, Run, Reset           bool

	// LookDX and LookDY are the mouse movement in pixels since the last poll.
	LookDX, LookDY float64

	// Capture asks to lock the pointer, Release asks to free it.
	Capture, Release bool

	Dig, Place bool
}

// Input 玩家输入接口
// 用于依赖注入，支持测试时 mock
type Input interface {
	Poll() InputState

	// SetCaptured hides and locks the cursor (true) or restores it (false).
	SetCaptured(captured bool)
}

// ebitenInput Ebitengine 默认实现
type ebitenInput struct {
	captured     bool
	lastX, lastY int
	primed       bool
}

// NewEbitenInput returns the keyboard and mouse input used by the game.
func NewEbitenInput() Input {
	return &ebitenInput{}
}

func (e *ebitenInput) Poll() InputState {
	s := InputState{
		Forward: ebiten.IsKeyPressed(ebiten.KeyW),
		Back:    ebiten.IsKeyPressed(ebiten.KeyS),
		Left:    ebiten.IsKeyPressed(ebiten.KeyA),
		Right:   ebiten.IsKeyPressed(ebiten.KeyD),
		Jump:    ebiten.IsKeyPressed(ebiten.KeySpace),
		Run:     ebiten.IsKeyPressed(ebiten.KeyShift),
		Reset:   inpututil.IsKeyJustPressed(ebiten.KeyR),
		Release: inpututil.IsKeyJustPressed(ebiten.KeyEscape),
	}

	left := inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft)
	right := inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight)
	if e.captured {
		s.Dig = left
		s.Place = right
	} else {
		s.Capture = left
	}

	// 捕获模式下 CursorPosition 返回相对移动累计值
	x, y := ebiten.CursorPosition()
	if e.primed && e.captured {
		s.LookDX = float64(x - e.lastX)
		s.LookDY = float64(y - e.lastY)
	}
	e.lastX, e.lastY = x, y
	e.primed = true
	return s
}

func (e *ebitenInput) SetCaptured(captured bool) {
	e.captured = captured
	e.primed = false
	if captured {
		ebiten.SetCursorMode(ebiten.CursorModeCaptured)
	} else {
		ebiten.SetCursorMode(ebiten.CursorModeVisible)
	}
}
