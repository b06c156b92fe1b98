package world

import "github.com/arenad/server/internal/core/ecs"

// DroppedWeapon represents a weapon lying in the arena that players can see
// and pick up. Not persisted — exists only in memory for the round.
type DroppedWeapon struct {
	Entity     ecs.EntityID
	TemplateID int32   // weapon template ID
	Name       string  // display name
	X, Y, Z    float32 // world position
	DroppedBy  int32   // player ID of the dropper (0 = map-placed)
}

// State holds the in-memory simulation world. Accessed only from the loop
// goroutine — no locks needed.
type State struct {
	ecs     *ecs.World
	weapons *ecs.Store[DroppedWeapon]
}

func NewState(w *ecs.World) *State {
	s := &State{
		ecs:     w,
		weapons: ecs.NewStore[DroppedWeapon](),
	}
	w.RegisterStore(s.weapons)
	return s
}

// SpawnWeapon creates the entity backing a dropped weapon and registers its
// record.
func (s *State) SpawnWeapon(w DroppedWeapon) ecs.EntityID {
	id := s.ecs.CreateEntity()
	w.Entity = id
	s.weapons.Set(id, &w)
	return id
}

// Weapon returns a dropped weapon's record, or false when the handle is
// stale or unknown.
func (s *State) Weapon(id ecs.EntityID) (*DroppedWeapon, bool) {
	if !s.ecs.Alive(id) {
		return nil, false
	}
	return s.weapons.Get(id)
}

// Alive reports whether the handle still denotes a live weapon entity.
func (s *State) Alive(id ecs.EntityID) bool {
	return s.ecs.Alive(id)
}

// DestroyWeapon releases a dropped weapon's entity. Safe no-op on a stale
// handle; returns whether anything was destroyed. The entity itself is
// reclaimed by the end-of-tick flush.
func (s *State) DestroyWeapon(id ecs.EntityID) bool {
	if !s.ecs.Alive(id) {
		return false
	}
	s.weapons.Remove(id)
	s.ecs.MarkForDestruction(id)
	return true
}

// PickUp removes a dropped weapon because a player took it. Same teardown
// as DestroyWeapon; kept separate so call sites read as what happened.
func (s *State) PickUp(id ecs.EntityID) bool {
	return s.DestroyWeapon(id)
}

// WeaponCount returns the number of dropped weapons currently in the world.
func (s *State) WeaponCount() int {
	return s.weapons.Len()
}

// EachWeapon visits every dropped weapon record.
func (s *State) EachWeapon(fn func(ecs.EntityID, *DroppedWeapon)) {
	s.weapons.Each(fn)
}
