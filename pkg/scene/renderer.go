package scene

import (
	"image/color"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Heightfield is the terrain surface the renderer samples.
type Heightfield interface {
	HeightAt(x, z float64) float64
}

// Frame bundles everything needed to draw one frame.
type Frame struct {
	Camera  *Camera
	Light   *DirectionalLight
	Graph   *Graph
	Terrain Heightfield

	// Center and Radius bound the terrain area that gets sampled.
	Center mgl64.Vec3
	Radius int
}

// Renderer 渲染器
// 在 ebiten 2D API 之上做软件投影，把 Frame 画成按深度排序的色块
type Renderer struct {
	ClearColor color.RGBA
	FogNear    float64
	FogFar     float64
	Ambient    float64

	// SplatScale converts world size to pixels at depth 1.
	SplatScale float64

	splats []splat
}

type splat struct {
	x, y, w, h float64
	depth      float64
	clr        color.RGBA
}

// NewRenderer creates a renderer with the sky color and fog range used by
// the game.
func NewRenderer() *Renderer {
	return &Renderer{
		ClearColor: color.RGBA{R: 0x80, G: 0xa0, B: 0xe0, A: 0xff},
		FogNear:    50,
		FogFar:     75,
		Ambient:    0.2,
		SplatScale: 600,
		splats:     make([]splat, 0, 4096),
	}
}

// Draw renders f onto screen.
func (r *Renderer) Draw(screen *ebiten.Image, f Frame) {
	screen.Fill(r.ClearColor)
	if f.Camera == nil {
		return
	}

	b := screen.Bounds()
	width, height := float64(b.Dx()), float64(b.Dy())
	view := f.Camera.View()
	vp := f.Camera.Projection().Mul4(view)

	r.splats = r.splats[:0]
	if f.Terrain != nil {
		r.collectTerrain(f, vp, view, width, height)
	}
	if f.Graph != nil {
		r.collectNodes(f, vp, view, width, height)
	}

	sort.Slice(r.splats, func(i, j int) bool {
		return r.splats[i].depth > r.splats[j].depth
	})
	for _, s := range r.splats {
		vector.DrawFilledRect(screen,
			float32(s.x-s.w/2), float32(s.y-s.h/2), float32(s.w), float32(s.h),
			s.clr, false)
	}
}

func (r *Renderer) collectTerrain(f Frame, vp, view mgl64.Mat4, width, height float64) {
	cx, cz := math.Floor(f.Center.X()), math.Floor(f.Center.Z())
	for dx := -f.Radius; dx <= f.Radius; dx++ {
		for dz := -f.Radius; dz <= f.Radius; dz++ {
			x, z := cx+float64(dx), cz+float64(dz)
			y := f.Terrain.HeightAt(x, z)
			sx, sy, depth, ok := project(vp, view, mgl64.Vec3{x, y, z}, width, height, f.Camera.Near, f.Camera.Far)
			if !ok || depth > r.FogFar {
				continue
			}
			size := r.SplatScale / depth
			clr := terrainColor(y)
			if f.Light != nil {
				clr = shade(clr, f.Light.Shade(terrainNormal(f.Terrain, x, z), r.Ambient))
			}
			r.splats = append(r.splats, splat{
				x: sx, y: sy, w: size, h: size, depth: depth,
				clr: r.fog(clr, depth),
			})
		}
	}
}

func (r *Renderer) collectNodes(f Frame, vp, view mgl64.Mat4, width, height float64) {
	for _, n := range f.Graph.Nodes() {
		ext := n.Extents()
		center := n.Position.Add(mgl64.Vec3{0, ext.Y()/2 + n.Bob, 0})
		sx, sy, depth, ok := project(vp, view, center, width, height, f.Camera.Near, f.Camera.Far)
		if !ok {
			continue
		}
		r.splats = append(r.splats, splat{
			x: sx, y: sy,
			w:     math.Max(ext.X(), ext.Z()) * r.SplatScale / depth,
			h:     ext.Y() * r.SplatScale / depth,
			depth: depth - 0.01,
			clr:   r.fog(n.Color, depth),
		})
	}
}

func (r *Renderer) fog(c color.RGBA, depth float64) color.RGBA {
	if depth <= r.FogNear || r.FogFar <= r.FogNear {
		return c
	}
	t := (depth - r.FogNear) / (r.FogFar - r.FogNear)
	if t > 1 {
		t = 1
	}
	mix := func(a, b uint8) uint8 {
		return uint8(float64(a) + (float64(b)-float64(a))*t)
	}
	return color.RGBA{R: mix(c.R, r.ClearColor.R), G: mix(c.G, r.ClearColor.G), B: mix(c.B, r.ClearColor.B), A: 0xff}
}

func terrainNormal(t Heightfield, x, z float64) mgl64.Vec3 {
	hx := t.HeightAt(x+1, z) - t.HeightAt(x-1, z)
	hz := t.HeightAt(x, z+1) - t.HeightAt(x, z-1)
	return mgl64.Vec3{-hx, 2, -hz}.Normalize()
}

func terrainColor(y float64) color.RGBA {
	switch {
	case y < 4:
		return color.RGBA{R: 0xd9, G: 0xc8, B: 0x8c, A: 0xff}
	case y < 14:
		return color.RGBA{R: 0x55, G: 0x9b, B: 0x3c, A: 0xff}
	case y < 20:
		return color.RGBA{R: 0x80, G: 0x64, B: 0x46, A: 0xff}
	default:
		return color.RGBA{R: 0x8a, G: 0x8a, B: 0x8a, A: 0xff}
	}
}

func shade(c color.RGBA, s float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * s),
		G: uint8(float64(c.G) * s),
		B: uint8(float64(c.B) * s),
		A: c.A,
	}
}
