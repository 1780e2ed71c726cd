package event

import (
	"reflect"
	"sync"
)

// Event is implemented by every gameplay event. Stamp assigns the
// bus-wide monotonically increasing id and the producing tick.
type Event interface {
	Stamp(id uint32, tick uint32)
}

// Bus collects the events produced during one tick. The frame is read by
// the output phase and then handed to subscribers in EndTick, so Go-side
// listeners observe a tick's events after they were replicated.
type Bus struct {
	mu       sync.Mutex // only protects handler registration
	nextID   uint32
	tick     uint32
	frame    []Event
	handlers map[reflect.Type][]any
}

func NewBus() *Bus {
	return &Bus{
		frame:    make([]Event, 0, 64),
		handlers: make(map[reflect.Type][]any),
	}
}

// BeginTick sets the tick stamped onto events emitted from now on.
func (b *Bus) BeginTick(tick uint32) {
	b.tick = tick
}

func (b *Bus) Tick() uint32 { return b.tick }

// Emit stamps ev and appends it to the current frame.
func (b *Bus) Emit(ev Event) {
	b.nextID++
	ev.Stamp(b.nextID, b.tick)
	b.frame = append(b.frame, ev)
}

// Frame returns the events emitted since the last EndTick. The slice is
// only valid until EndTick.
func (b *Bus) Frame() []Event {
	return b.frame
}

// Subscribe registers a typed handler for events of dynamic type T.
func Subscribe[T Event](b *Bus, fn func(T)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := reflect.TypeOf((*T)(nil)).Elem()
	b.handlers[t] = append(b.handlers[t], fn)
}

// EndTick delivers the frame to subscribed handlers and clears it.
func (b *Bus) EndTick() {
	for _, ev := range b.frame {
		for _, h := range b.handlers[reflect.TypeOf(ev)] {
			callHandler(h, ev)
		}
	}
	for i := range b.frame {
		b.frame[i] = nil
	}
	b.frame = b.frame[:0]
}

func callHandler(handler any, event any) {
	reflect.ValueOf(handler).Call([]reflect.Value{reflect.ValueOf(event)})
}
