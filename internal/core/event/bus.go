package event

import "reflect"

// Bus is a double-buffered event bus. Events emitted in tick N are
// delivered in tick N+1, after SwapBuffers rotates the buffers at tick
// start. Single-goroutine access only (the loop goroutine).
type Bus struct {
	front    map[reflect.Type][]any
	back     map[reflect.Type][]any
	handlers map[reflect.Type][]func(any)
}

func NewBus() *Bus {
	return &Bus{
		front:    make(map[reflect.Type][]any),
		back:     make(map[reflect.Type][]any),
		handlers: make(map[reflect.Type][]func(any)),
	}
}

func typeKey[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Emit queues an event into the back buffer, readable next tick.
func Emit[T any](b *Bus, ev T) {
	t := typeKey[T]()
	b.back[t] = append(b.back[t], ev)
}

// Subscribe registers a typed handler for events of type T. Handlers for
// the same type run in subscription order.
func Subscribe[T any](b *Bus, fn func(T)) {
	t := typeKey[T]()
	b.handlers[t] = append(b.handlers[t], func(ev any) {
		fn(ev.(T))
	})
}

// SwapBuffers rotates back→front and clears the new back buffer. Called
// once at tick start.
func (b *Bus) SwapBuffers() {
	b.front, b.back = b.back, b.front
	for k := range b.back {
		b.back[k] = b.back[k][:0]
	}
}

// DispatchAll delivers all front-buffer events to their subscribed
// handlers.
func (b *Bus) DispatchAll() {
	for t, events := range b.front {
		handlers := b.handlers[t]
		for _, ev := range events {
			for _, h := range handlers {
				h(ev)
			}
		}
	}
}
