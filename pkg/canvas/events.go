package canvas

import (
	"fmt"
	"sync"
)

// Event names accepted by On.
const (
	EventRedraw      = "redraw"
	EventStrokeStart = "strokestart"
	EventStrokeEnd   = "strokeend"
	EventFill        = "fill"
)

var knownEvents = map[string]bool{
	EventRedraw:      true,
	EventStrokeStart: true,
	EventStrokeEnd:   true,
	EventFill:        true,
}

// eventTable has its own lock so listeners can call back into the canvas.
type eventTable struct {
	mu        sync.Mutex
	listeners map[string][]func()
	// every throttles redraws fired while a stroke is being extended: only
	// one in every N is dispatched. Zero dispatches all of them.
	every   int
	counter int
}

// On registers fn for event. For EventRedraw a positive every limits the
// redraws fired by StrokeMove to one in every N calls.
func (c *Canvas) On(event string, every int, fn func()) error {
	if !knownEvents[event] {
		Logger().Warn("event not allowed", "event", event)
		return fmt.Errorf("%w: %q", ErrUnknownEvent, event)
	}
	if fn == nil {
		return fmt.Errorf("canvas: nil listener for %q", event)
	}
	t := &c.events
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.listeners == nil {
		t.listeners = make(map[string][]func())
	}
	if event == EventRedraw && every > 0 {
		t.every = every
	}
	t.listeners[event] = append(t.listeners[event], fn)
	return nil
}

// emit calls the listeners of event. The canvas lock must not be held.
func (c *Canvas) emit(event string) {
	t := &c.events
	t.mu.Lock()
	fns := append([]func(){}, t.listeners[event]...)
	t.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// redraw fires EventRedraw for stroke drawing. With throttle set and a
// positive every, only calls where the running counter is a multiple of
// every are dispatched.
func (c *Canvas) redraw(throttle bool) {
	t := &c.events
	t.mu.Lock()
	fire := !throttle || t.every <= 0 || t.counter%t.every == 0
	t.counter++
	t.mu.Unlock()
	if fire {
		c.emit(EventRedraw)
	}
}
