package system

// drops.go — routes dropped-weapon lifecycle events from the bus into the
// tracker. This is the only place the tracker's mutating operations are
// invoked from events; the sweep system is the only other caller.

import (
	"time"

	"github.com/arenad/server/internal/core/event"
	coresys "github.com/arenad/server/internal/core/system"
	"github.com/arenad/server/internal/data"
	"github.com/arenad/server/internal/scripting"
	"github.com/arenad/server/internal/world"
	"go.uber.org/zap"
)

// DropHandlerSystem swaps the event buffers at tick start and dispatches
// last tick's events to the tracker. Phase 0 (Events).
type DropHandlerSystem struct {
	bus     *event.Bus
	tracker *world.Tracker
	state   *world.State
	weapons *data.WeaponTable
	scripts *scripting.Engine // nil = no hooks
	log     *zap.Logger
}

func NewDropHandlerSystem(
	bus *event.Bus,
	tracker *world.Tracker,
	state *world.State,
	weapons *data.WeaponTable,
	scripts *scripting.Engine,
	log *zap.Logger,
) *DropHandlerSystem {
	s := &DropHandlerSystem{
		bus:     bus,
		tracker: tracker,
		state:   state,
		weapons: weapons,
		scripts: scripts,
		log:     log,
	}

	event.Subscribe(bus, s.onWeaponDropped)
	event.Subscribe(bus, s.onWeaponPickedUp)
	event.Subscribe(bus, s.onRoundStarted)
	event.Subscribe(bus, s.onConfigChanged)

	return s
}

func (s *DropHandlerSystem) Phase() coresys.Phase { return coresys.PhaseEvents }

func (s *DropHandlerSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}

func (s *DropHandlerSystem) onWeaponDropped(ev event.WeaponDropped) {
	// The weapon may already be gone by dispatch time (double-buffered bus,
	// one tick of lag). Never track a handle that is already stale.
	rec, ok := s.state.Weapon(ev.Entity)
	if !ok {
		return
	}

	tmpl := s.weapons.Get(ev.TemplateID)
	if tmpl != nil && tmpl.Persistent {
		// Map-placed weapons are the simulation's business.
		return
	}

	if s.scripts != nil {
		ctx := scripting.WeaponContext{
			TemplateID: ev.TemplateID,
			Name:       rec.Name,
			DroppedBy:  rec.DroppedBy,
		}
		if tmpl != nil {
			ctx.Class = tmpl.Class
		}
		if !s.scripts.ShouldTrack(ctx) {
			s.log.Debug("script exempted weapon from tracking",
				zap.Int32("template_id", ev.TemplateID),
			)
			return
		}
	}

	if s.tracker.Insert(ev.Entity) {
		s.log.Debug("tracking dropped weapon",
			zap.Int32("template_id", ev.TemplateID),
			zap.Int("tracked", s.tracker.Len()),
		)
	}
}

func (s *DropHandlerSystem) onWeaponPickedUp(ev event.WeaponPickedUp) {
	// Removal of an untracked weapon (map-placed, exempted, or already
	// evicted) is expected and silent.
	if s.tracker.Remove(ev.Entity) {
		s.log.Debug("weapon picked up, no longer tracked",
			zap.Int32("player", ev.ByPlayer),
			zap.Int("tracked", s.tracker.Len()),
		)
	}
}

func (s *DropHandlerSystem) onRoundStarted(ev event.RoundStarted) {
	// The map rebuild clears the weapons itself; just forget the records.
	s.tracker.Reset()
	s.log.Info("round started, dropped-weapon tracking reset",
		zap.Int32("round", ev.Number),
	)
}

func (s *DropHandlerSystem) onConfigChanged(ev event.CleanupConfigChanged) {
	s.tracker.UpdateConfig(ev.MaxDropped, ev.Lifetime)
	s.log.Info("cleanup config applied",
		zap.Int("max_dropped", ev.MaxDropped),
		zap.Float64("lifetime_seconds", ev.Lifetime),
	)
}
