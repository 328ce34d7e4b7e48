// Package scene holds the render-side scene graph: nodes, cameras, lights and
// the ebiten renderer that draws them.
package scene

import (
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Node 场景节点，放置在世界中的可渲染对象
type Node struct {
	Name     string
	Position mgl64.Vec3
	Scale    mgl64.Vec3
	Rotation mgl64.Quat

	// Size is the unscaled bounding box of the node.
	Size  mgl64.Vec3
	Color color.RGBA

	// Bob is a vertical offset applied at draw time by animated nodes.
	Bob float64
}

// NewNode creates a unit-sized node at the origin.
func NewNode(name string) *Node {
	return &Node{
		Name:     name,
		Scale:    mgl64.Vec3{1, 1, 1},
		Rotation: mgl64.QuatIdent(),
		Size:     mgl64.Vec3{1, 1, 1},
		Color:    color.RGBA{R: 200, G: 200, B: 200, A: 255},
	}
}

// SetScale applies a uniform scale factor.
func (n *Node) SetScale(s float64) {
	n.Scale = mgl64.Vec3{s, s, s}
}

// Extents returns the scaled bounding box.
func (n *Node) Extents() mgl64.Vec3 {
	return mgl64.Vec3{n.Size[0] * n.Scale[0], n.Size[1] * n.Scale[1], n.Size[2] * n.Scale[2]}
}

// Forward returns the node's local +Z axis in world space.
func (n *Node) Forward() mgl64.Vec3 {
	return n.Rotation.Rotate(mgl64.Vec3{0, 0, 1})
}

// LookAt rotates the node so its +Z axis points at target. A target equal
// to the node position leaves the rotation unchanged.
func (n *Node) LookAt(target mgl64.Vec3) {
	dir := target.Sub(n.Position)
	if dir.Len() == 0 {
		return
	}
	z := dir.Normalize()

	up := mgl64.Vec3{0, 1, 0}
	if math.Abs(z.Dot(up)) > 1-1e-9 {
		up = mgl64.Vec3{0, 0, 1}
	}
	x := up.Cross(z).Normalize()
	y := z.Cross(x)

	n.Rotation = mgl64.Mat4ToQuat(mgl64.Mat3FromCols(x, y, z).Mat4()).Normalize()
}

// Graph 场景图，每帧绘制的节点列表
type Graph struct {
	nodes []*Node
}

// NewGraph creates an empty scene graph.
func NewGraph() *Graph {
	return &Graph{nodes: make([]*Node, 0)}
}

// Add attaches a node. Adding a node twice is a no-op.
func (g *Graph) Add(n *Node) {
	if n == nil || g.Contains(n) {
		return
	}
	g.nodes = append(g.nodes, n)
}

// Remove detaches a node if present.
func (g *Graph) Remove(n *Node) {
	for i, existing := range g.nodes {
		if existing == n {
			g.nodes = append(g.nodes[:i], g.nodes[i+1:]...)
			return
		}
	}
}

// Contains reports whether n is attached.
func (g *Graph) Contains(n *Node) bool {
	for _, existing := range g.nodes {
		if existing == n {
			return true
		}
	}
	return false
}

// Nodes returns the attached nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	return g.nodes
}

// Len returns the number of attached nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}
