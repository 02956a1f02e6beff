package fs

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/aretw0/lifecycle/pkg/core/worker"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/katha-begin/Montu-sub000/pkg/core"
)

// watchWorker observes the data directory with fsnotify and emits one
// debounced core.Event per changed collection. It sees changes made by any
// process sharing the directory, which is how one application instance
// notices another's writes.
type watchWorker struct {
	*worker.BaseWorker
	storage   *Storage
	pattern   string // doublestar pattern over collection names, "" = all
	events    chan<- core.Event
	watcher   *fsnotify.Watcher
	debouncer *debouncer
	cancel    context.CancelFunc
}

func newWatchWorker(storage *Storage, pattern string, events chan<- core.Event) *watchWorker {
	return &watchWorker{
		BaseWorker: worker.NewBaseWorker("fs-watcher"),
		storage:    storage,
		pattern:    pattern,
		events:     events,
	}
}

func (w *watchWorker) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	status := w.State().Status
	if status != worker.StatusCreated && status != worker.StatusPending {
		return fmt.Errorf("watcher already started (status: %s)", status)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(w.storage.Dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", w.storage.Dir, err)
	}

	w.watcher = watcher
	w.debouncer = newDebouncer(50 * time.Millisecond)

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.SetStatus(worker.StatusRunning)
	return w.StartFunc(runCtx, w.run)
}

func (w *watchWorker) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.StopRequested = true
		w.cancel()
	}
	return w.BaseWorker.Stop(ctx)
}

func (w *watchWorker) State() worker.State {
	return w.ExportState(func(s *worker.State) {
		s.Metadata = map[string]string{
			worker.MetadataType: string(worker.TypeGoroutine),
		}
	})
}

func (w *watchWorker) run(ctx context.Context) error {
	defer w.watcher.Close()

	err := w.eventLoop(ctx)

	// Stop accepting new events and wait for in-flight debounce timers so
	// nothing fires after the channel owner moves on.
	w.debouncer.stopAndWait(5 * time.Second)
	return err
}

func (w *watchWorker) eventLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			w.processEvent(ctx, event)

		case wErr, ok := <-w.watcher.Errors:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			if w.storage.logger != nil {
				w.storage.logger.Error("fsnotify error", "error", wErr)
			}
		}
	}
}

func (w *watchWorker) processEvent(ctx context.Context, event fsnotify.Event) {
	collection := w.storage.collectionFromPath(event.Name)
	if collection == "" {
		return // lock file, temp file, or system dir noise
	}
	if w.pattern != "" {
		if ok, err := doublestar.Match(w.pattern, collection); err != nil || !ok {
			return
		}
	}

	eType := mapEventType(event)
	if eType == "" {
		return
	}

	w.debouncer.add(core.Event{
		Type:       eType,
		Collection: collection,
		Timestamp:  time.Now().Unix(),
	}, func(e core.Event) {
		select {
		case w.events <- e:
		case <-ctx.Done():
		}
	})
}

// mapEventType collapses fsnotify's event mask onto the store's event types.
// Writes and renames both surface as MODIFY because the atomic persist always
// lands via rename.
func mapEventType(event fsnotify.Event) core.EventType {
	switch {
	case event.Has(fsnotify.Create):
		return core.EventCreate
	case event.Has(fsnotify.Write) || event.Has(fsnotify.Rename):
		return core.EventModify
	case event.Has(fsnotify.Remove):
		return core.EventDelete
	}
	return ""
}

// Watch starts a watcher over the data directory and returns its event
// channel. pattern filters collection names with doublestar syntax; empty
// matches every collection. The watcher stops and the channel closes when
// ctx is cancelled.
func (s *Storage) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	events := make(chan core.Event, 16)
	w := newWatchWorker(s, pattern, events)
	if err := w.Start(ctx); err != nil {
		return nil, err
	}

	lifecycle.Go(ctx, func(ctx context.Context) error {
		<-ctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = w.Stop(stopCtx)
		close(events)
		return nil
	})

	return events, nil
}
