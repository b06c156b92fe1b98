package system

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arenad/server/internal/core/ecs"
	"github.com/arenad/server/internal/core/event"
	"github.com/arenad/server/internal/data"
	"github.com/arenad/server/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testWeaponYAML = `
- template_id: 1
  name: "P229"
  class: "pistol"
  ground_model: "w_p229_ground"
- template_id: 100
  name: "Mounted HMG"
  class: "heavy"
  ground_model: "w_hmg_mounted"
  persistent: true
`

func loadTestWeapons(t *testing.T) *data.WeaponTable {
	t.Helper()
	path := filepath.Join(t.TempDir(), "weapon_list.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testWeaponYAML), 0o644))
	table, err := data.LoadWeaponTable(path)
	require.NoError(t, err)
	return table
}

type pipeline struct {
	ecs     *ecs.World
	state   *world.State
	bus     *event.Bus
	tracker *world.Tracker
	drops   *DropHandlerSystem
	now     float64
}

func newPipeline(t *testing.T, capacity int, lifetime float64) *pipeline {
	t.Helper()
	p := &pipeline{
		ecs: ecs.NewWorld(),
		bus: event.NewBus(),
	}
	p.state = world.NewState(p.ecs)
	p.tracker = world.NewTracker(capacity, lifetime, p.ecs, p.state, zap.NewNop())
	p.tracker.SetNowFunc(func() float64 { return p.now })
	p.drops = NewDropHandlerSystem(p.bus, p.tracker, p.state, loadTestWeapons(t), nil, zap.NewNop())
	return p
}

// tick runs one event-dispatch turn: events emitted before the call are
// delivered during it.
func (p *pipeline) tick() {
	p.drops.Update(100 * time.Millisecond)
	p.ecs.FlushDestroyQueue()
}

func (p *pipeline) drop(templateID int32) ecs.EntityID {
	id := p.state.SpawnWeapon(world.DroppedWeapon{TemplateID: templateID, Name: "test", DroppedBy: 1})
	event.Emit(p.bus, event.WeaponDropped{Entity: id, TemplateID: templateID})
	return id
}

func TestDroppedWeaponBecomesTracked(t *testing.T) {
	p := newPipeline(t, 4, 0)

	id := p.drop(1)
	assert.False(t, p.tracker.Tracked(id), "delivery waits for the next tick")

	p.tick()
	assert.True(t, p.tracker.Tracked(id))
}

func TestDropOfDeadEntityIgnored(t *testing.T) {
	p := newPipeline(t, 4, 0)

	id := p.drop(1)
	// Weapon dies between the drop report and dispatch.
	p.state.DestroyWeapon(id)

	p.tick()
	assert.Equal(t, 0, p.tracker.Len())
}

func TestPersistentTemplateNeverTracked(t *testing.T) {
	p := newPipeline(t, 4, 0)

	id := p.drop(100)
	p.tick()
	assert.False(t, p.tracker.Tracked(id))
	assert.Equal(t, 1, p.state.WeaponCount(), "weapon stays in the world, just untracked")
}

func TestPickupUntracksWithoutDestroy(t *testing.T) {
	p := newPipeline(t, 4, 0)

	id := p.drop(1)
	p.tick()
	require.True(t, p.tracker.Tracked(id))

	p.state.PickUp(id)
	event.Emit(p.bus, event.WeaponPickedUp{Entity: id, ByPlayer: 3})
	p.tick()

	assert.False(t, p.tracker.Tracked(id))
	assert.Equal(t, 0, p.tracker.Len())
}

func TestPickupOfUntrackedWeaponSilent(t *testing.T) {
	p := newPipeline(t, 4, 0)

	id := p.state.SpawnWeapon(world.DroppedWeapon{TemplateID: 100})
	event.Emit(p.bus, event.WeaponPickedUp{Entity: id, ByPlayer: 3})
	p.tick() // no panic, no state change
	assert.Equal(t, 0, p.tracker.Len())
}

func TestRoundStartResetsTracking(t *testing.T) {
	p := newPipeline(t, 4, 0)

	p.drop(1)
	p.drop(1)
	p.tick()
	require.Equal(t, 2, p.tracker.Len())

	event.Emit(p.bus, event.RoundStarted{Number: 2})
	p.tick()

	assert.Equal(t, 0, p.tracker.Len())
	assert.Equal(t, 2, p.state.WeaponCount(), "reset leaves the weapons to the map rebuild")
}

func TestConfigChangeAppliesToTracker(t *testing.T) {
	p := newPipeline(t, 4, 0)

	a := p.drop(1)
	p.drop(1)
	p.drop(1)
	p.tick()
	require.Equal(t, 3, p.tracker.Len())

	event.Emit(p.bus, event.CleanupConfigChanged{MaxDropped: 1, Lifetime: 60})
	p.tick()

	assert.Equal(t, 1, p.tracker.Len())
	assert.Equal(t, 1, p.tracker.Capacity())
	assert.Equal(t, 60.0, p.tracker.Lifetime())
	assert.False(t, p.state.Alive(a), "shrink destroyed the oldest weapons")
}

func TestCapacityEvictionThroughPipeline(t *testing.T) {
	p := newPipeline(t, 2, 0)

	a := p.drop(1)
	b := p.drop(1)
	c := p.drop(1)
	p.tick()

	assert.Equal(t, []ecs.EntityID{b, c}, p.tracker.Refs())
	assert.False(t, p.state.Alive(a))
	assert.True(t, p.state.Alive(b))
	assert.True(t, p.state.Alive(c))
}
