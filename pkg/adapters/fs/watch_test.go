package fs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katha-begin/Montu-sub000/pkg/core"
)

func collectEvents(events <-chan core.Event, window time.Duration) []core.Event {
	var got []core.Event
	deadline := time.After(window)
	for {
		select {
		case e, ok := <-events:
			if !ok {
				return got
			}
			got = append(got, e)
		case <-deadline:
			return got
		}
	}
}

func TestWatch_EmitsOnPersist(t *testing.T) {
	s := newTestStorage(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := s.Watch(ctx, "")
	require.NoError(t, err)

	require.NoError(t, s.Persist("tasks", []core.Document{{"_id": "a"}}))

	got := collectEvents(events, time.Second)
	require.NotEmpty(t, got, "persist should surface at least one event")
	assert.Equal(t, "tasks", got[0].Collection)
}

func TestWatch_PatternFilters(t *testing.T) {
	s := newTestStorage(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := s.Watch(ctx, "shot_*")
	require.NoError(t, err)

	require.NoError(t, s.Persist("tasks", []core.Document{{"_id": "a"}}))
	require.NoError(t, s.Persist("shot_versions", []core.Document{{"_id": "v1"}}))

	got := collectEvents(events, time.Second)
	require.NotEmpty(t, got)
	for _, e := range got {
		assert.Equal(t, "shot_versions", e.Collection, "pattern must exclude other collections")
	}
}

func TestWatch_IgnoresLockFileNoise(t *testing.T) {
	s := newTestStorage(t)
	locker := NewLocker(s, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := s.Watch(ctx, "")
	require.NoError(t, err)

	// Lock acquisition creates/touches only the lock file.
	lock, err := locker.Exclusive("tasks")
	require.NoError(t, err)
	require.NoError(t, lock.Close())

	got := collectEvents(events, 300*time.Millisecond)
	assert.Empty(t, got, "lock files must not surface as collection events")
}

func TestWatch_ChannelClosesOnCancel(t *testing.T) {
	s := newTestStorage(t)
	ctx, cancel := context.WithCancel(context.Background())

	events, err := s.Watch(ctx, "")
	require.NoError(t, err)

	cancel()
	select {
	case _, ok := <-events:
		for ok {
			_, ok = <-events
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event channel did not close after cancel")
	}
}

func TestWatch_DebouncesBursts(t *testing.T) {
	s := newTestStorage(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := s.Watch(ctx, "")
	require.NoError(t, err)

	// A burst of rewrites within the debounce window collapses per event type.
	for i := 0; i < 10; i++ {
		require.NoError(t, s.Persist("tasks", []core.Document{{"n": float64(i)}}))
	}

	got := collectEvents(events, time.Second)
	require.NotEmpty(t, got)
	assert.Less(t, len(got), 10, "burst should be debounced")
}
