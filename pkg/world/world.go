// Package world owns the terrain: a seeded heightmap generated in chunk
// columns around the player, plus player edits layered on top.
package world

import (
	"log"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// Params 地形生成参数
type Params struct {
	Seed uint32

	// Scale is the horizontal feature size in blocks.
	Scale float64
	// Magnitude scales noise into the height range (0..1).
	Magnitude float64
	// Offset is the base height as a fraction of MaxHeight (0..1).
	Offset float64
	// MaxHeight is the tallest column in blocks.
	MaxHeight int
	// Octaves of value noise summed per sample.
	Octaves int

	// ChunkSize is the chunk edge in blocks.
	ChunkSize int
	// RenderDistance is the chunk radius kept loaded around the player.
	RenderDistance int
}

// DefaultParams returns the generation settings the game ships with.
func DefaultParams() Params {
	return Params{
		Seed:           0,
		Scale:          30,
		Magnitude:      0.5,
		Offset:         0.2,
		MaxHeight:      32,
		Octaves:        2,
		ChunkSize:      16,
		RenderDistance: 2,
	}
}

// ChunkCoord 区块坐标（以区块为单位）
type ChunkCoord struct{ X, Z int32 }

// Chunk 区块缓存，保存生成的方块列高度
type Chunk struct {
	Coord  ChunkCoord
	size   int
	Height []int
}

func (c *Chunk) at(lx, lz int) int {
	return c.Height[lz*c.size+lx]
}

// Tracker is anything the world follows when deciding which chunks to keep.
type Tracker interface {
	Position() mgl64.Vec3
}

// World 世界地形的查询与修改入口
// 非并发安全，只在模拟 goroutine 中使用
type World struct {
	params Params
	chunks map[ChunkCoord]*Chunk
	edits  map[[2]int]int
}

// New creates an empty world. Call Generate to populate it.
func New(p Params) *World {
	if p.ChunkSize <= 0 {
		p.ChunkSize = 16
	}
	if p.MaxHeight <= 0 {
		p.MaxHeight = 32
	}
	if p.Octaves <= 0 {
		p.Octaves = 1
	}
	return &World{
		params: p,
		chunks: make(map[ChunkCoord]*Chunk, 64),
		edits:  make(map[[2]int]int),
	}
}

// Params returns the generation settings.
func (w *World) Params() Params {
	return w.params
}

// Generate discards all chunks and edits and loads the chunks around the
// origin.
func (w *World) Generate() {
	w.chunks = make(map[ChunkCoord]*Chunk, 64)
	w.edits = make(map[[2]int]int)
	w.loadAround(0, 0)
	log.Printf("[World] generated seed=%d chunks=%d", w.params.Seed, len(w.chunks))
}

// Regenerate applies new params and generates again.
func (w *World) Regenerate(p Params) {
	w.params = New(p).params
	w.Generate()
}

// HeightAt returns the terrain surface height at a world position: the top
// face of the highest solid block in that column.
func (w *World) HeightAt(x, z float64) float64 {
	return float64(w.ColumnHeight(int(math.Floor(x)), int(math.Floor(z))))
}

// ColumnHeight returns the number of solid blocks in the column at (x, z).
func (w *World) ColumnHeight(x, z int) int {
	if h, ok := w.edits[[2]int{x, z}]; ok {
		return h
	}
	if c, ok := w.chunks[w.chunkOf(x, z)]; ok {
		lx, lz := w.local(x), w.local(z)
		return c.at(lx, lz)
	}
	return w.generated(x, z)
}

// Dig removes the top block of a column. It returns false for empty columns.
func (w *World) Dig(x, z int) bool {
	h := w.ColumnHeight(x, z)
	if h <= 0 {
		return false
	}
	w.edits[[2]int{x, z}] = h - 1
	return true
}

// Place stacks a block on a column. It returns false at MaxHeight.
func (w *World) Place(x, z int) bool {
	h := w.ColumnHeight(x, z)
	if h >= w.params.MaxHeight {
		return false
	}
	w.edits[[2]int{x, z}] = h + 1
	return true
}

// ColumnEdit 玩家编辑过的方块列
// 高度与生成的地形不同，存档时保存
type ColumnEdit struct {
	X      int `yaml:"x"`
	Z      int `yaml:"z"`
	Height int `yaml:"height"`
}

// Edits returns every edited column, ordered by X then Z.
func (w *World) Edits() []ColumnEdit {
	out := make([]ColumnEdit, 0, len(w.edits))
	for k, h := range w.edits {
		out = append(out, ColumnEdit{X: k[0], Z: k[1], Height: h})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].X != out[j].X {
			return out[i].X < out[j].X
		}
		return out[i].Z < out[j].Z
	})
	return out
}

// ApplyEdits restores saved column heights, clamped to [0, MaxHeight].
func (w *World) ApplyEdits(edits []ColumnEdit) {
	for _, e := range edits {
		h := e.Height
		if h < 0 {
			h = 0
		}
		if h > w.params.MaxHeight {
			h = w.params.MaxHeight
		}
		w.edits[[2]int{e.X, e.Z}] = h
	}
}

// Update loads chunks within RenderDistance of the tracker and unloads the
// rest.
func (w *World) Update(t Tracker) {
	if t == nil {
		return
	}
	p := t.Position()
	w.loadAround(int(math.Floor(p.X())), int(math.Floor(p.Z())))
}

// LoadedChunks returns the number of cached chunks.
func (w *World) LoadedChunks() int {
	return len(w.chunks)
}

// ChunkLoaded reports whether the chunk containing (x, z) is cached.
func (w *World) ChunkLoaded(x, z int) bool {
	_, ok := w.chunks[w.chunkOf(x, z)]
	return ok
}

func (w *World) loadAround(x, z int) {
	center := w.chunkOf(x, z)
	r := int32(w.params.RenderDistance)

	for coord := range w.chunks {
		if abs32(coord.X-center.X) > r || abs32(coord.Z-center.Z) > r {
			delete(w.chunks, coord)
		}
	}
	for cx := center.X - r; cx <= center.X+r; cx++ {
		for cz := center.Z - r; cz <= center.Z+r; cz++ {
			coord := ChunkCoord{X: cx, Z: cz}
			if _, ok := w.chunks[coord]; !ok {
				w.chunks[coord] = w.generateChunk(coord)
			}
		}
	}
}

func (w *World) generateChunk(coord ChunkCoord) *Chunk {
	s := w.params.ChunkSize
	c := &Chunk{Coord: coord, size: s, Height: make([]int, s*s)}
	baseX, baseZ := int(coord.X)*s, int(coord.Z)*s
	for lz := 0; lz < s; lz++ {
		for lx := 0; lx < s; lx++ {
			c.Height[lz*s+lx] = w.generated(baseX+lx, baseZ+lz)
		}
	}
	return c
}

// generated computes the unedited column height from noise.
func (w *World) generated(x, z int) int {
	scale := w.params.Scale
	if scale <= 0 {
		scale = 1
	}
	n := fractalNoise(w.params.Seed, float64(x)/scale, float64(z)/scale, w.params.Octaves)
	frac := w.params.Offset + w.params.Magnitude*n
	h := int(math.Floor(frac * float64(w.params.MaxHeight)))
	if h < 1 {
		h = 1
	}
	if h > w.params.MaxHeight {
		h = w.params.MaxHeight
	}
	return h
}

func (w *World) chunkOf(x, z int) ChunkCoord {
	s := w.params.ChunkSize
	return ChunkCoord{X: int32(floorDiv(x, s)), Z: int32(floorDiv(z, s))}
}

func (w *World) local(v int) int {
	s := w.params.ChunkSize
	return v - floorDiv(v, s)*s
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
