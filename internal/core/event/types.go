package event

import "github.com/arenad/server/internal/core/ecs"

// WeaponDropped is emitted when the simulation spawns a dropped weapon.
// Emitting the same live entity twice without an intervening pickup or
// destroy is a bug in the emitter.
type WeaponDropped struct {
	Entity     ecs.EntityID
	TemplateID int32
}

// WeaponPickedUp is emitted when a player picks a dropped weapon back up.
// The simulation owns the entity's teardown; the janitor only forgets it.
type WeaponPickedUp struct {
	Entity   ecs.EntityID
	ByPlayer int32
}

// RoundStarted is emitted at round boundaries. The map is rebuilt around
// this event, so all dropped-weapon bookkeeping is discarded.
type RoundStarted struct {
	Number int32
}

// CleanupConfigChanged carries operator reconfiguration of the janitor.
// Values are validated at the config boundary before being emitted.
type CleanupConfigChanged struct {
	MaxDropped int
	Lifetime   float64
}
