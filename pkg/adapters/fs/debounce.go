package fs

import (
	"sync"
	"time"

	"github.com/katha-begin/Montu-sub000/pkg/core"
)

// debouncer coalesces bursts of filesystem events per collection. An atomic
// persist produces create+rename+chmod noise in quick succession; only the
// last event within the window fires.
type debouncer struct {
	window  time.Duration
	mu      sync.Mutex
	timers  map[string]*time.Timer
	wg      sync.WaitGroup
	stopped bool
}

func newDebouncer(window time.Duration) *debouncer {
	return &debouncer{
		window: window,
		timers: make(map[string]*time.Timer),
	}
}

// add schedules fire for the event after the debounce window, replacing any
// pending timer for the same collection.
func (d *debouncer) add(event core.Event, fire func(core.Event)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	key := string(event.Type) + ":" + event.Collection
	if timer, ok := d.timers[key]; ok {
		if timer.Stop() {
			d.wg.Done()
		}
	}
	d.wg.Add(1)
	d.timers[key] = time.AfterFunc(d.window, func() {
		defer d.wg.Done()
		fire(event)
		d.mu.Lock()
		delete(d.timers, key)
		d.mu.Unlock()
	})
}

// stopAndWait rejects new events and waits up to timeout for in-flight
// timers to fire or be cancelled.
func (d *debouncer) stopAndWait(timeout time.Duration) {
	d.mu.Lock()
	d.stopped = true
	for key, timer := range d.timers {
		if timer.Stop() {
			d.wg.Done()
		}
		delete(d.timers, key)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
	}
}
