package ecs

import (
	"testing"
)

type testActor struct {
	Name    string
	Updates int
}

func TestCreateEntity(t *testing.T) {
	r := NewRegistry[*testActor]()
	id1 := r.CreateEntity(&testActor{Name: "a"})
	id2 := r.CreateEntity(&testActor{Name: "b"})

	// 测试实体ID唯一性
	if id1 == id2 {
		t.Error("Entity IDs should be unique")
	}

	// 测试ID从1开始
	if id1 != 1 {
		t.Errorf("First entity ID should be 1, got %d", id1)
	}
	if id2 != 2 {
		t.Errorf("Second entity ID should be 2, got %d", id2)
	}
	if r.Len() != 2 {
		t.Errorf("Expected 2 entities, got %d", r.Len())
	}
}

func TestGetEntity(t *testing.T) {
	r := NewRegistry[*testActor]()
	id := r.CreateEntity(&testActor{Name: "llama"})

	e, found := r.Get(id)
	if !found {
		t.Fatal("Entity should be found")
	}
	if e.Name != "llama" {
		t.Errorf("Expected name llama, got %s", e.Name)
	}

	if _, found := r.Get(id + 1); found {
		t.Error("Unknown ID should not be found")
	}
}

func TestDestroyEntity(t *testing.T) {
	r := NewRegistry[*testActor]()
	id := r.CreateEntity(&testActor{})

	// 标记删除
	r.DestroyEntity(id)
	r.DestroyEntity(id)

	// 清理前实体仍存在
	if !r.Has(id) {
		t.Error("Entity should still exist before cleanup")
	}

	// 清理后实体消失
	if n := r.RemoveMarkedEntities(); n != 1 {
		t.Errorf("Expected 1 removed entity, got %d", n)
	}
	if r.Has(id) {
		t.Error("Entity should be removed after cleanup")
	}
	if n := r.RemoveMarkedEntities(); n != 0 {
		t.Errorf("Expected nothing to remove, got %d", n)
	}
}

func TestDestroyUnknownEntity(t *testing.T) {
	r := NewRegistry[*testActor]()
	r.DestroyEntity(42)
	if n := r.RemoveMarkedEntities(); n != 0 {
		t.Errorf("Expected nothing to remove, got %d", n)
	}
}

func TestEachFollowsCreationOrder(t *testing.T) {
	r := NewRegistry[*testActor]()
	names := []string{"a", "b", "c", "d", "e"}
	ids := make([]EntityID, 0, len(names))
	for _, n := range names {
		ids = append(ids, r.CreateEntity(&testActor{Name: n}))
	}

	r.DestroyEntity(ids[1])
	r.DestroyEntity(ids[3])
	r.RemoveMarkedEntities()

	var visited []string
	r.Each(func(_ EntityID, a *testActor) {
		a.Updates++
		visited = append(visited, a.Name)
	})

	want := []string{"a", "c", "e"}
	if len(visited) != len(want) {
		t.Fatalf("Expected %v, got %v", want, visited)
	}
	for i := range want {
		if visited[i] != want[i] {
			t.Errorf("Expected %v, got %v", want, visited)
			break
		}
	}

	got := r.IDs()
	if len(got) != 3 || got[0] != ids[0] || got[1] != ids[2] || got[2] != ids[4] {
		t.Errorf("Unexpected IDs %v", got)
	}
}

func TestOnRemoveHook(t *testing.T) {
	r := NewRegistry[*testActor]()
	var removed []string
	r.OnRemove(func(_ EntityID, a *testActor) {
		removed = append(removed, a.Name)
	})

	id := r.CreateEntity(&testActor{Name: "gone"})
	r.CreateEntity(&testActor{Name: "kept"})
	r.DestroyEntity(id)
	r.RemoveMarkedEntities()

	if len(removed) != 1 || removed[0] != "gone" {
		t.Errorf("Expected hook for 'gone', got %v", removed)
	}
}

func BenchmarkEach(b *testing.B) {
	r := NewRegistry[*testActor]()
	for i := 0; i < 1000; i++ {
		r.CreateEntity(&testActor{})
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.Each(func(_ EntityID, a *testActor) {
			a.Updates++
		})
	}
}
