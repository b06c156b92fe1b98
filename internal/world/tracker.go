package world

import (
	"github.com/arenad/server/internal/core/ecs"
	"go.uber.org/zap"
)

// Liveness re-validates an externally owned handle. The tracker never
// assumes a stored handle still denotes a live object.
type Liveness interface {
	Alive(id ecs.EntityID) bool
}

// Destroyer releases a simulation-owned dropped weapon. Implementations
// must treat a stale handle as a safe no-op.
type Destroyer interface {
	DestroyWeapon(id ecs.EntityID) bool
}

// EvictReason says why the tracker let go of a weapon.
type EvictReason int

const (
	ReasonCapacity EvictReason = iota // oldest pushed out by a new drop
	ReasonAge                         // exceeded the configured lifetime
	ReasonStale                       // backing object already gone
)

func (r EvictReason) String() string {
	switch r {
	case ReasonCapacity:
		return "capacity"
	case ReasonAge:
		return "age"
	case ReasonStale:
		return "stale"
	}
	return "unknown"
}

// EvictedWeapon describes a single eviction, for logging, scripting hooks,
// and the audit sink.
type EvictedWeapon struct {
	Ref       ecs.EntityID
	DroppedAt float64
	Reason    EvictReason
}

// TrackerStats are running totals since construction or the last stats
// reset.
type TrackerStats struct {
	Inserted          uint64
	Removed           uint64
	CapacityEvictions uint64
	AgeEvictions      uint64
	StaleDrops        uint64
}

type trackedWeapon struct {
	ref       ecs.EntityID
	droppedAt float64 // monotonic seconds at insertion
}

// Tracker bounds the set of dropped weapons the simulation leaves lying
// around. It owns only the records: the weapons themselves belong to the
// simulation and may be destroyed or recycled at any time, so every use of
// a stored handle re-validates it first.
//
// Entries are kept in insertion order, oldest first. Timestamps come from
// a monotonic clock, so droppedAt is non-decreasing along the slice and
// "oldest" is always the front.
//
// All methods must be called from the loop goroutine.
type Tracker struct {
	capacity int     // max live records; 0 disables tracking
	lifetime float64 // max age in seconds; 0 disables age eviction
	entries  []trackedWeapon

	liveness Liveness
	destroy  Destroyer
	now      func() float64
	onEvict  func(EvictedWeapon)
	log      *zap.Logger

	stats TrackerStats
}

// NewTracker builds a tracker with pre-validated bounds (the config layer
// clamps capacity and lifetime before they get here).
func NewTracker(capacity int, lifetime float64, liveness Liveness, destroy Destroyer, log *zap.Logger) *Tracker {
	clk := NewClock()
	return &Tracker{
		capacity: capacity,
		lifetime: lifetime,
		entries:  make([]trackedWeapon, 0, capacity),
		liveness: liveness,
		destroy:  destroy,
		now:      clk.Now,
		log:      log,
	}
}

// SetNowFunc overrides the tracker's clock. Tests and the sweep system use
// this to share one time source.
func (t *Tracker) SetNowFunc(now func() float64) {
	t.now = now
}

// SetEvictFunc installs a hook called for every capacity, age, or stale
// eviction. Remove and Reset do not fire it.
func (t *Tracker) SetEvictFunc(fn func(EvictedWeapon)) {
	t.onEvict = fn
}

// Insert begins tracking a freshly dropped weapon. When the tracker is
// full, the oldest entry is destroyed and dropped first. Returns false
// when tracking is disabled (capacity 0).
//
// The caller must never insert a reference that is already tracked: the
// event source reports each drop exactly once, and the tracker does not
// deduplicate.
func (t *Tracker) Insert(ref ecs.EntityID) bool {
	if t.capacity <= 0 {
		return false
	}
	if len(t.entries) >= t.capacity {
		t.evictOldest()
	}
	t.entries = append(t.entries, trackedWeapon{ref: ref, droppedAt: t.now()})
	t.stats.Inserted++
	return true
}

// Remove forgets a tracked weapon without destroying it — the caller
// already knows its lifecycle ended (picked up, consumed). Returns false
// when the reference was never tracked; that is expected for map-placed
// weapons and is not an error.
func (t *Tracker) Remove(ref ecs.EntityID) bool {
	for i, e := range t.entries {
		if e.ref == ref {
			t.entries = append(t.entries[:i], t.entries[i+1:]...)
			t.stats.Removed++
			return true
		}
	}
	return false
}

// Sweep walks all entries and evicts the ones past the configured lifetime
// (destroyed, then dropped) and the ones whose backing object is already
// gone (dropped only). Returns the number evicted. Safe on an empty
// tracker.
func (t *Tracker) Sweep(now float64) int {
	evicted := 0
	kept := t.entries[:0]
	for _, e := range t.entries {
		switch {
		case !t.liveness.Alive(e.ref):
			// Destroyed externally without telling us; nothing left to
			// release, just drop the record.
			t.stats.StaleDrops++
			t.fireEvict(e, ReasonStale)
			evicted++
		case t.lifetime > 0 && now-e.droppedAt >= t.lifetime:
			// Hook fires before the destroy so it can still read the record.
			t.fireEvict(e, ReasonAge)
			t.destroy.DestroyWeapon(e.ref)
			t.stats.AgeEvictions++
			evicted++
		default:
			kept = append(kept, e)
		}
	}
	t.entries = kept
	if evicted > 0 && t.log != nil {
		t.log.Debug("sweep evicted dropped weapons", zap.Int("count", evicted))
	}
	return evicted
}

// Reset discards all records without destroying anything. Used at round
// boundaries, where the simulation tears the map down itself; destroying
// here would race that teardown.
func (t *Tracker) Reset() {
	t.entries = t.entries[:0]
}

// UpdateConfig applies new bounds. Shrinking below the live count evicts
// the excess oldest entries immediately, same destroy-then-drop policy as
// a capacity eviction. A shorter lifetime is not applied retroactively;
// the next Sweep catches violators.
func (t *Tracker) UpdateConfig(capacity int, lifetime float64) {
	t.capacity = capacity
	t.lifetime = lifetime
	for len(t.entries) > capacity {
		t.evictOldest()
	}
}

func (t *Tracker) evictOldest() {
	e := t.entries[0]
	t.entries = append(t.entries[:0], t.entries[1:]...)
	t.fireEvict(e, ReasonCapacity)
	t.destroy.DestroyWeapon(e.ref)
	t.stats.CapacityEvictions++
}

func (t *Tracker) fireEvict(e trackedWeapon, reason EvictReason) {
	if t.onEvict != nil {
		t.onEvict(EvictedWeapon{Ref: e.ref, DroppedAt: e.droppedAt, Reason: reason})
	}
}

// Len returns the number of tracked weapons.
func (t *Tracker) Len() int { return len(t.entries) }

// Capacity returns the configured maximum.
func (t *Tracker) Capacity() int { return t.capacity }

// Lifetime returns the configured maximum age in seconds.
func (t *Tracker) Lifetime() float64 { return t.lifetime }

// Tracked reports whether the reference currently has a record.
func (t *Tracker) Tracked(ref ecs.EntityID) bool {
	for _, e := range t.entries {
		if e.ref == ref {
			return true
		}
	}
	return false
}

// Refs returns the tracked references in insertion order, oldest first.
func (t *Tracker) Refs() []ecs.EntityID {
	refs := make([]ecs.EntityID, len(t.entries))
	for i, e := range t.entries {
		refs[i] = e.ref
	}
	return refs
}

// Stats returns a snapshot of the running totals.
func (t *Tracker) Stats() TrackerStats { return t.stats }
