package scene

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Camera 透视相机，从 Position 看向 Target
type Camera struct {
	Position mgl64.Vec3
	Target   mgl64.Vec3
	Up       mgl64.Vec3

	// FovY is the vertical field of view in degrees.
	FovY   float64
	Aspect float64
	Near   float64
	Far    float64
}

// NewPerspectiveCamera creates a camera at the origin looking down -Z.
func NewPerspectiveCamera(fovY, aspect, near, far float64) *Camera {
	return &Camera{
		Target: mgl64.Vec3{0, 0, -1},
		Up:     mgl64.Vec3{0, 1, 0},
		FovY:   fovY,
		Aspect: aspect,
		Near:   near,
		Far:    far,
	}
}

// SetAspect updates the aspect ratio after a window resize.
func (c *Camera) SetAspect(width, height int) {
	if height <= 0 {
		return
	}
	c.Aspect = float64(width) / float64(height)
}

// View returns the world-to-camera matrix.
func (c *Camera) View() mgl64.Mat4 {
	return mgl64.LookAtV(c.Position, c.Target, c.Up)
}

// Projection returns the camera-to-clip matrix.
func (c *Camera) Projection() mgl64.Mat4 {
	return mgl64.Perspective(mgl64.DegToRad(c.FovY), c.Aspect, c.Near, c.Far)
}

// ViewProjection returns Projection * View.
func (c *Camera) ViewProjection() mgl64.Mat4 {
	return c.Projection().Mul4(c.View())
}

// Project maps a world point to screen pixels for a width x height target.
// depth is the view-space distance along the viewing axis. ok is false for
// points behind the near plane or beyond the far plane.
func (c *Camera) Project(p mgl64.Vec3, width, height float64) (sx, sy, depth float64, ok bool) {
	return project(c.ViewProjection(), c.View(), p, width, height, c.Near, c.Far)
}

func project(vp, view mgl64.Mat4, p mgl64.Vec3, width, height, near, far float64) (sx, sy, depth float64, ok bool) {
	eye := view.Mul4x1(p.Vec4(1))
	depth = -eye.Z()
	if depth < near || depth > far {
		return 0, 0, depth, false
	}
	clip := vp.Mul4x1(p.Vec4(1))
	if clip.W() == 0 {
		return 0, 0, depth, false
	}
	ndcX := clip.X() / clip.W()
	ndcY := clip.Y() / clip.W()
	sx = (ndcX + 1) * 0.5 * width
	sy = (1 - ndcY) * 0.5 * height
	return sx, sy, depth, true
}

// DirectionalLight 平行光（太阳），从 Position 照向 Target
type DirectionalLight struct {
	Position  mgl64.Vec3
	Target    mgl64.Vec3
	Intensity float64
}

// Direction returns the normalized direction the light travels.
func (l *DirectionalLight) Direction() mgl64.Vec3 {
	d := l.Target.Sub(l.Position)
	if d.Len() == 0 {
		return mgl64.Vec3{0, -1, 0}
	}
	return d.Normalize()
}

// Shade returns a brightness factor for a surface with the given normal,
// combining the directional term with the ambient term.
func (l *DirectionalLight) Shade(normal mgl64.Vec3, ambient float64) float64 {
	lambert := -normal.Dot(l.Direction())
	if lambert < 0 {
		lambert = 0
	}
	s := ambient + lambert*l.Intensity
	if s > 1 {
		s = 1
	}
	return s
}
