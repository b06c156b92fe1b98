package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseEvents   Phase = iota // 0: swap event buffers, dispatch last tick's events
	PhaseSimulate              // 1: world simulation (spawns, pickups, rounds)
	PhaseSweep                 // 2: dropped-weapon sweep
	PhaseCleanup               // 3: destroy queued entities
)

// System is the interface every tick system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
