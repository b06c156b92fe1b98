package ecs

// EntityID packs a 32-bit slot index in the lower bits and a 32-bit
// generation in the upper bits. Destroying an entity bumps the slot's
// generation, so any handle held across the destroy stops matching —
// this is how stale dropped-weapon references are detected without the
// holder being notified.
type EntityID uint64

func NewEntityID(index, generation uint32) EntityID {
	return EntityID(uint64(generation)<<32 | uint64(index))
}

func (id EntityID) Index() uint32      { return uint32(id) }
func (id EntityID) Generation() uint32 { return uint32(id >> 32) }
func (id EntityID) IsZero() bool       { return id == 0 }

// EntityPool allocates entity slots with generational indices. Freed slots
// are recycled from a free list; recycling reuses the index under a new
// generation, never the same EntityID.
type EntityPool struct {
	generations []uint32
	freeList    []uint32
	nextIndex   uint32
}

func NewEntityPool() *EntityPool {
	return &EntityPool{
		generations: make([]uint32, 0, 256),
		freeList:    make([]uint32, 0, 64),
	}
}

func (p *EntityPool) Create() EntityID {
	if n := len(p.freeList); n > 0 {
		idx := p.freeList[n-1]
		p.freeList = p.freeList[:n-1]
		return NewEntityID(idx, p.generations[idx])
	}
	idx := p.nextIndex
	p.nextIndex++
	if int(idx) >= len(p.generations) {
		p.generations = append(p.generations, 0)
	}
	return NewEntityID(idx, p.generations[idx])
}

// Alive reports whether the handle still denotes a live entity. A handle
// whose slot was destroyed (or destroyed and recycled) fails the
// generation check.
func (p *EntityPool) Alive(id EntityID) bool {
	idx := id.Index()
	return idx < p.nextIndex && p.generations[idx] == id.Generation()
}

// Destroy releases the entity's slot. Destroying through a stale handle is
// a no-op.
func (p *EntityPool) Destroy(id EntityID) {
	idx := id.Index()
	if idx >= p.nextIndex || p.generations[idx] != id.Generation() {
		return
	}
	p.generations[idx]++
	p.freeList = append(p.freeList, idx)
}

// Live returns the number of live entities.
func (p *EntityPool) Live() int {
	return int(p.nextIndex) - len(p.freeList)
}
