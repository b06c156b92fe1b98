package system

// spawn.go — synthetic event source for cmd/dropsim. Plays the role the
// game's combat code plays in production: drops weapons, picks them up,
// and starts rounds, all by emitting the same bus events.

import (
	"math/rand"
	"time"

	"github.com/arenad/server/internal/config"
	"github.com/arenad/server/internal/core/ecs"
	"github.com/arenad/server/internal/core/event"
	coresys "github.com/arenad/server/internal/core/system"
	"github.com/arenad/server/internal/data"
	"github.com/arenad/server/internal/world"
	"go.uber.org/zap"
)

const simPlayers = 10

// SpawnSystem randomly drops and picks up weapons at configured per-tick
// chances, and fires round boundaries. Phase 1 (Simulate).
type SpawnSystem struct {
	state   *world.State
	bus     *event.Bus
	weapons *data.WeaponTable
	cfg     config.SimulationConfig
	rng     *rand.Rand
	log     *zap.Logger

	roundElapsed time.Duration
	round        int32
}

func NewSpawnSystem(
	state *world.State,
	bus *event.Bus,
	weapons *data.WeaponTable,
	cfg config.SimulationConfig,
	rng *rand.Rand,
	log *zap.Logger,
) *SpawnSystem {
	return &SpawnSystem{
		state:   state,
		bus:     bus,
		weapons: weapons,
		cfg:     cfg,
		rng:     rng,
		log:     log,
		round:   1,
	}
}

func (s *SpawnSystem) Phase() coresys.Phase { return coresys.PhaseSimulate }

func (s *SpawnSystem) Update(dt time.Duration) {
	if s.cfg.RoundLength.Duration > 0 {
		s.roundElapsed += dt
		if s.roundElapsed >= s.cfg.RoundLength.Duration {
			s.roundElapsed = 0
			s.startRound()
			return
		}
	}

	if s.rng.Float64() < s.cfg.DropChance {
		s.dropRandomWeapon()
	}

	s.pickupPass()
}

// dropRandomWeapon spawns a weapon entity and reports the drop. Persistent
// (map-placed) templates are spawned but never reported — the janitor must
// not hear about them, matching the production event source.
func (s *SpawnSystem) dropRandomWeapon() {
	ids := s.weapons.IDs()
	if len(ids) == 0 {
		return
	}
	tmpl := s.weapons.Get(ids[s.rng.Intn(len(ids))])

	dropper := int32(0)
	if !tmpl.Persistent {
		dropper = int32(s.rng.Intn(simPlayers) + 1)
	}

	id := s.state.SpawnWeapon(world.DroppedWeapon{
		TemplateID: tmpl.TemplateID,
		Name:       tmpl.Name,
		X:          s.rng.Float32() * 512,
		Y:          s.rng.Float32() * 512,
		DroppedBy:  dropper,
	})

	if tmpl.Persistent {
		return
	}
	event.Emit(s.bus, event.WeaponDropped{Entity: id, TemplateID: tmpl.TemplateID})
}

// pickupPass gives every weapon on the ground a chance of being grabbed.
func (s *SpawnSystem) pickupPass() {
	if s.cfg.PickupChance <= 0 {
		return
	}
	var grabbed []ecs.EntityID
	s.state.EachWeapon(func(id ecs.EntityID, _ *world.DroppedWeapon) {
		if s.rng.Float64() < s.cfg.PickupChance {
			grabbed = append(grabbed, id)
		}
	})
	for _, id := range grabbed {
		player := int32(s.rng.Intn(simPlayers) + 1)
		if s.state.PickUp(id) {
			event.Emit(s.bus, event.WeaponPickedUp{Entity: id, ByPlayer: player})
		}
	}
}

// startRound tears down all ground weapons the way a map rebuild does,
// then announces the boundary.
func (s *SpawnSystem) startRound() {
	var all []ecs.EntityID
	s.state.EachWeapon(func(id ecs.EntityID, _ *world.DroppedWeapon) {
		all = append(all, id)
	})
	for _, id := range all {
		s.state.DestroyWeapon(id)
	}

	s.round++
	event.Emit(s.bus, event.RoundStarted{Number: s.round})
	s.log.Info("round starting",
		zap.Int32("round", s.round),
		zap.Int("weapons_cleared", len(all)),
	)
}
