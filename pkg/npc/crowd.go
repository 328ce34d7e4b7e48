package npc

import (
	"context"
	"log"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/decker502/blockworld/pkg/ecs"
	"github.com/decker502/blockworld/pkg/observe"
)

// Crowd NPC 管理器
// 持有世界中所有 NPC，按生成顺序更新
type Crowd struct {
	scene    Scene
	world    TerrainQuery
	metrics  *observe.Metrics
	opts     []Option
	registry *ecs.Registry[*NPC]
}

// NewCrowd creates an empty crowd. opts are applied to every spawned NPC.
func NewCrowd(sc Scene, world TerrainQuery, metrics *observe.Metrics, opts ...Option) *Crowd {
	if metrics == nil {
		metrics = observe.DefaultMetrics()
	}
	c := &Crowd{
		scene:    sc,
		world:    world,
		metrics:  metrics,
		opts:     opts,
		registry: ecs.NewRegistry[*NPC](),
	}
	c.registry.OnRemove(func(id ecs.EntityID, n *NPC) {
		n.Dispose()
		c.metrics.ActiveNPCs.Add(context.Background(), -1)
		log.Printf("[Crowd] removed NPC %d", id)
	})
	return c
}

// Spawn creates an NPC at position. extra options follow the crowd's own.
func (c *Crowd) Spawn(position mgl64.Vec3, extra ...Option) ecs.EntityID {
	opts := make([]Option, 0, len(c.opts)+len(extra))
	opts = append(opts, c.opts...)
	opts = append(opts, extra...)

	id := c.registry.CreateEntity(New(c.scene, c.world, position, opts...))
	c.metrics.ActiveNPCs.Add(context.Background(), 1)
	return id
}

// SpawnAround places count NPCs uniformly in the square [-halfExtent,
// halfExtent) around the origin, one block above the terrain.
func (c *Crowd) SpawnAround(count int, halfExtent float64, r Random, extra ...Option) []ecs.EntityID {
	if r == nil {
		r = globalRandom{}
	}
	ids := make([]ecs.EntityID, 0, count)
	for i := 0; i < count; i++ {
		x := r.Float64()*2*halfExtent - halfExtent
		z := r.Float64()*2*halfExtent - halfExtent
		y := 1.0
		if c.world != nil {
			y += c.world.HeightAt(x, z)
		}
		ids = append(ids, c.Spawn(mgl64.Vec3{x, y, z}, extra...))
		log.Printf("[Crowd] NPC %d spawned at (%.2f, %.2f, %.2f)", i+1, x, y, z)
	}
	return ids
}

// Despawn schedules an NPC for removal at the start of the next Update.
func (c *Crowd) Despawn(id ecs.EntityID) {
	c.registry.DestroyEntity(id)
}

// Update sweeps despawned NPCs, then updates each remaining one.
func (c *Crowd) Update(dt float64) {
	c.registry.RemoveMarkedEntities()
	c.registry.Each(func(_ ecs.EntityID, n *NPC) {
		n.Update(dt)
	})
}

// Get returns the NPC with id.
func (c *Crowd) Get(id ecs.EntityID) (*NPC, bool) {
	return c.registry.Get(id)
}

// Each visits every NPC in spawn order.
func (c *Crowd) Each(fn func(ecs.EntityID, *NPC)) {
	c.registry.Each(fn)
}

// Len returns the number of NPCs.
func (c *Crowd) Len() int {
	return c.registry.Len()
}
