package scenes

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/decker502/blockworld/pkg/scene"
)

// OrbitState 一帧的自由视角鼠标输入
type OrbitState struct {
	// DragDX and DragDY are the cursor movement in pixels while dragging.
	DragDX, DragDY float64
	// Wheel is the vertical scroll; positive zooms in.
	Wheel float64
}

// OrbitInput 自由视角输入接口
// 用于依赖注入，支持测试时 mock
type OrbitInput interface {
	Poll() OrbitState
}

// ebitenOrbitInput 右键拖动旋转，滚轮缩放
// 左键留给锁定鼠标进入游戏
type ebitenOrbitInput struct {
	dragging     bool
	lastX, lastY int
}

// NewEbitenOrbitInput returns the mouse input used by the free-look camera.
func NewEbitenOrbitInput() OrbitInput {
	return &ebitenOrbitInput{}
}

func (e *ebitenOrbitInput) Poll() OrbitState {
	var s OrbitState
	x, y := ebiten.CursorPosition()
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight) {
		if e.dragging {
			s.DragDX = float64(x - e.lastX)
			s.DragDY = float64(y - e.lastY)
		}
		e.dragging = true
	} else {
		e.dragging = false
	}
	e.lastX, e.lastY = x, y

	_, s.Wheel = ebiten.Wheel()
	return s
}

// OrbitControls 自由视角相机控制参数
// 绕 Target 旋转和缩放相机
type OrbitControls struct {
	// RotateSpeed is radians per dragged pixel.
	RotateSpeed float64
	// ZoomScale is the distance factor per wheel step, in (0, 1).
	ZoomScale float64

	MinDistance float64
	MaxDistance float64
}

// minPolar keeps the camera off the poles where the up vector degenerates.
const minPolar = 0.01

// DefaultOrbitControls returns the free-look camera feel the game ships with.
func DefaultOrbitControls() OrbitControls {
	return OrbitControls{
		RotateSpeed: 0.005,
		ZoomScale:   0.95,
		MinDistance: 2,
		MaxDistance: 200,
	}
}

// Apply moves cam on a sphere around cam.Target. It reports whether the
// camera changed.
func (c OrbitControls) Apply(cam *scene.Camera, s OrbitState) bool {
	if cam == nil || (s.DragDX == 0 && s.DragDY == 0 && s.Wheel == 0) {
		return false
	}
	offset := cam.Position.Sub(cam.Target)
	r := offset.Len()
	if r == 0 {
		return false
	}

	theta := math.Atan2(offset.X(), offset.Z())
	phi := math.Acos(mgl64.Clamp(offset.Y()/r, -1, 1))

	theta -= s.DragDX * c.RotateSpeed
	phi -= s.DragDY * c.RotateSpeed
	phi = mgl64.Clamp(phi, minPolar, math.Pi-minPolar)

	if s.Wheel != 0 && c.ZoomScale > 0 {
		r *= math.Pow(c.ZoomScale, s.Wheel)
	}
	if c.MinDistance > 0 && r < c.MinDistance {
		r = c.MinDistance
	}
	if c.MaxDistance > 0 && r > c.MaxDistance {
		r = c.MaxDistance
	}

	sinPhi, cosPhi := math.Sincos(phi)
	sinTheta, cosTheta := math.Sincos(theta)
	cam.Position = cam.Target.Add(mgl64.Vec3{r * sinPhi * sinTheta, r * cosPhi, r * sinPhi * cosTheta})
	return true
}
