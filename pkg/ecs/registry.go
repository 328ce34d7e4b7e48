// Package ecs provides the entity registry that owns simulated actors.
package ecs

// EntityID 是实体的唯一标识符
type EntityID uint64

// Registry owns a set of entities keyed by EntityID. Iteration follows
// creation order, so every tick visits entities in the same sequence.
type Registry[T any] struct {
	nextID   uint64
	entities map[EntityID]T
	order    []EntityID
	// 待删除的实体ID列表
	entitiesToDestroy []EntityID
	onRemove          func(EntityID, T)
}

// NewRegistry 创建一个新的 Registry 实例
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{
		nextID:            1, // ID从1开始,0保留为无效ID
		entities:          make(map[EntityID]T),
		order:             make([]EntityID, 0),
		entitiesToDestroy: make([]EntityID, 0),
	}
}

// OnRemove installs a hook called for each entity swept by
// RemoveMarkedEntities.
func (r *Registry[T]) OnRemove(fn func(EntityID, T)) {
	r.onRemove = fn
}

// CreateEntity registers e and returns its new ID.
func (r *Registry[T]) CreateEntity(e T) EntityID {
	id := EntityID(r.nextID)
	r.nextID++
	r.entities[id] = e
	r.order = append(r.order, id)
	return id
}

// Get returns the entity with id.
func (r *Registry[T]) Get(id EntityID) (T, bool) {
	e, ok := r.entities[id]
	return e, ok
}

// Has reports whether id is registered (marked entities count until swept).
func (r *Registry[T]) Has(id EntityID) bool {
	_, ok := r.entities[id]
	return ok
}

// DestroyEntity 标记实体待删除(不立即删除)
func (r *Registry[T]) DestroyEntity(id EntityID) {
	if !r.Has(id) {
		return
	}
	for _, marked := range r.entitiesToDestroy {
		if marked == id {
			return
		}
	}
	r.entitiesToDestroy = append(r.entitiesToDestroy, id)
}

// RemoveMarkedEntities 清理所有标记删除的实体
// It returns the number of entities removed.
func (r *Registry[T]) RemoveMarkedEntities() int {
	if len(r.entitiesToDestroy) == 0 {
		return 0
	}
	removed := 0
	for _, id := range r.entitiesToDestroy {
		e, ok := r.entities[id]
		if !ok {
			continue
		}
		delete(r.entities, id)
		removed++
		if r.onRemove != nil {
			r.onRemove(id, e)
		}
	}
	r.entitiesToDestroy = r.entitiesToDestroy[:0]

	kept := r.order[:0]
	for _, id := range r.order {
		if _, ok := r.entities[id]; ok {
			kept = append(kept, id)
		}
	}
	r.order = kept
	return removed
}

// Each calls fn for every registered entity in creation order.
func (r *Registry[T]) Each(fn func(EntityID, T)) {
	for _, id := range r.order {
		if e, ok := r.entities[id]; ok {
			fn(id, e)
		}
	}
}

// IDs returns the registered IDs in creation order.
func (r *Registry[T]) IDs() []EntityID {
	out := make([]EntityID, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered entities.
func (r *Registry[T]) Len() int {
	return len(r.entities)
}
