package events

import "sync"

// Handler receives published events. Handlers run on the publishing
// goroutine and should not block.
type Handler func(Event)

// Handle identifies one subscription for later removal.
type Handle uint64

// Dispatcher delivers every published event to every subscriber, in
// subscription order, before Publish returns.
type Dispatcher struct {
	mu sync.RWMutex

	handlers map[Handle]Handler
	order    []Handle
	nextID   Handle

	onPanic func(Event, any)
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		handlers: make(map[Handle]Handler),
	}
}

// Subscribe registers handler for every subsequent event and returns
// the handle to unsubscribe with.
func (d *Dispatcher) Subscribe(handler Handler) Handle {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.nextID++
	h := d.nextID
	d.handlers[h] = handler
	d.order = append(d.order, h)
	return h
}

// Unsubscribe removes the subscription. Unknown handles are a no-op.
func (d *Dispatcher) Unsubscribe(h Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.handlers[h]; !exists {
		return
	}
	delete(d.handlers, h)
	for i, id := range d.order {
		if id == h {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
}

// OnPanic installs the sink that receives recovered handler panics.
func (d *Dispatcher) OnPanic(fn func(ev Event, recovered any)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onPanic = fn
}

// Count returns the number of active subscriptions.
func (d *Dispatcher) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.handlers)
}

// Publish delivers ev to every subscriber and returns once all
// handlers have run. A panicking handler is isolated; the remaining
// handlers still receive the event.
func (d *Dispatcher) Publish(ev Event) {
	d.mu.RLock()
	snapshot := make([]Handler, 0, len(d.order))
	for _, h := range d.order {
		snapshot = append(snapshot, d.handlers[h])
	}
	onPanic := d.onPanic
	d.mu.RUnlock()

	for _, handler := range snapshot {
		invoke(handler, ev, onPanic)
	}
}

// invoke runs one handler with panic recovery.
func invoke(handler Handler, ev Event, onPanic func(Event, any)) {
	defer func() {
		if r := recover(); r != nil {
			if onPanic != nil {
				onPanic(ev, r)
			}
		}
	}()
	handler(ev)
}
