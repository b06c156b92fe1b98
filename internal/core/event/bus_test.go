package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type testEvent struct {
	n int
}

type otherEvent struct {
	s string
}

func TestBusDeliversAfterSwap(t *testing.T) {
	b := NewBus()

	var got []int
	Subscribe(b, func(ev testEvent) { got = append(got, ev.n) })

	Emit(b, testEvent{n: 1})
	Emit(b, testEvent{n: 2})

	// Emitted this tick, not visible yet.
	b.DispatchAll()
	assert.Empty(t, got)

	b.SwapBuffers()
	b.DispatchAll()
	assert.Equal(t, []int{1, 2}, got, "events delivered in emit order")

	// Next swap clears the delivered batch.
	got = nil
	b.SwapBuffers()
	b.DispatchAll()
	assert.Empty(t, got)
}

func TestBusTypedRouting(t *testing.T) {
	b := NewBus()

	var nums []int
	var strs []string
	Subscribe(b, func(ev testEvent) { nums = append(nums, ev.n) })
	Subscribe(b, func(ev otherEvent) { strs = append(strs, ev.s) })

	Emit(b, testEvent{n: 9})
	Emit(b, otherEvent{s: "round"})
	b.SwapBuffers()
	b.DispatchAll()

	assert.Equal(t, []int{9}, nums)
	assert.Equal(t, []string{"round"}, strs)
}

func TestBusMultipleHandlersInOrder(t *testing.T) {
	b := NewBus()

	var order []string
	Subscribe(b, func(testEvent) { order = append(order, "first") })
	Subscribe(b, func(testEvent) { order = append(order, "second") })

	Emit(b, testEvent{})
	b.SwapBuffers()
	b.DispatchAll()

	assert.Equal(t, []string{"first", "second"}, order)
}

func TestBusNoSubscribers(t *testing.T) {
	b := NewBus()
	Emit(b, testEvent{n: 1})
	b.SwapBuffers()
	b.DispatchAll() // nothing to do, nothing to panic
}
