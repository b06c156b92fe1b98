package ecs

// World owns the entity pool, the registered component stores, and a
// deferred destruction queue flushed at the end of each tick. Accessed
// only from the loop goroutine — no locks.
type World struct {
	pool         *EntityPool
	stores       []Removable
	destroyQueue []EntityID
}

func NewWorld() *World {
	return &World{
		pool:         NewEntityPool(),
		stores:       make([]Removable, 0, 4),
		destroyQueue: make([]EntityID, 0, 32),
	}
}

func (w *World) Pool() *EntityPool { return w.pool }

// RegisterStore adds a component store to be cleared on entity destroy.
func (w *World) RegisterStore(s Removable) {
	w.stores = append(w.stores, s)
}

func (w *World) CreateEntity() EntityID {
	return w.pool.Create()
}

func (w *World) Alive(id EntityID) bool {
	return w.pool.Alive(id)
}

// MarkForDestruction queues an entity for end-of-tick cleanup. Queuing a
// stale handle is harmless; the flush destroys through the pool, which
// ignores it.
func (w *World) MarkForDestruction(id EntityID) {
	w.destroyQueue = append(w.destroyQueue, id)
}

// FlushDestroyQueue destroys all queued entities and clears their
// components. Called by CleanupSystem at the end of each tick.
func (w *World) FlushDestroyQueue() {
	for _, id := range w.destroyQueue {
		for _, s := range w.stores {
			s.Remove(id)
		}
		w.pool.Destroy(id)
	}
	w.destroyQueue = w.destroyQueue[:0]
}
