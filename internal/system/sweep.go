package system

import (
	"time"

	coresys "github.com/arenad/server/internal/core/system"
	"github.com/arenad/server/internal/persist"
	"github.com/arenad/server/internal/scripting"
	"github.com/arenad/server/internal/world"
	"go.uber.org/zap"
)

// SweepSystem drives Tracker.Sweep on a fixed interval and fans evictions
// out to the Lua hook and the audit buffer. Phase 2 (Sweep).
//
// It installs itself as the tracker's evict hook, so capacity evictions
// fired during event handling land in the same audit buffer as sweep
// evictions.
type SweepSystem struct {
	tracker  *world.Tracker
	state    *world.State
	now      func() float64
	interval time.Duration
	elapsed  time.Duration
	scripts  *scripting.Engine // nil = no hooks
	log      *zap.Logger

	pending []persist.EvictionRecord
}

func NewSweepSystem(
	tracker *world.Tracker,
	state *world.State,
	now func() float64,
	interval time.Duration,
	scripts *scripting.Engine,
	log *zap.Logger,
) *SweepSystem {
	s := &SweepSystem{
		tracker:  tracker,
		state:    state,
		now:      now,
		interval: interval,
		scripts:  scripts,
		log:      log,
	}
	tracker.SetEvictFunc(s.onEvict)
	return s
}

func (s *SweepSystem) Phase() coresys.Phase { return coresys.PhaseSweep }

func (s *SweepSystem) Update(dt time.Duration) {
	s.elapsed += dt
	if s.elapsed < s.interval {
		return
	}
	s.elapsed -= s.interval
	if s.elapsed >= s.interval {
		// Don't try to catch up after a stall; one sweep covers it.
		s.elapsed = 0
	}

	evicted := s.tracker.Sweep(s.now())
	if evicted > 0 {
		s.log.Debug("dropped-weapon sweep",
			zap.Int("evicted", evicted),
			zap.Int("tracked", s.tracker.Len()),
		)
	}
}

// onEvict receives every tracker eviction. The record may already be gone
// for stale drops; audit whatever is still known.
func (s *SweepSystem) onEvict(e world.EvictedWeapon) {
	age := s.now() - e.DroppedAt

	rec := persist.EvictionRecord{
		Reason:     e.Reason.String(),
		AgeSeconds: age,
	}
	ctx := scripting.WeaponContext{
		AgeSeconds: age,
		Reason:     e.Reason.String(),
	}

	if w, ok := s.state.Weapon(e.Ref); ok {
		rec.TemplateID = w.TemplateID
		rec.WeaponName = w.Name
		rec.DroppedBy = w.DroppedBy
		ctx.TemplateID = w.TemplateID
		ctx.Name = w.Name
		ctx.DroppedBy = w.DroppedBy
	}

	s.pending = append(s.pending, rec)

	if s.scripts != nil {
		s.scripts.OnWeaponEvicted(ctx)
	}
}

// DrainPending hands the buffered audit records to the caller and clears
// the buffer. The harness flushes these to the eviction log periodically.
func (s *SweepSystem) DrainPending() []persist.EvictionRecord {
	if len(s.pending) == 0 {
		return nil
	}
	out := s.pending
	s.pending = nil
	return out
}
