package fs

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katha-begin/Montu-sub000/pkg/core"
)

func TestLock_ExclusiveBlocksExclusive(t *testing.T) {
	s := newTestStorage(t)
	locker := NewLocker(s, 100*time.Millisecond)

	held, err := locker.Exclusive("tasks")
	require.NoError(t, err)

	start := time.Now()
	_, err = locker.Exclusive("tasks")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrLockTimeout)
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)

	var lerr *core.LockTimeoutError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, "tasks", lerr.Collection)

	require.NoError(t, held.Close())

	// Released lock is acquirable again.
	again, err := locker.Exclusive("tasks")
	require.NoError(t, err)
	require.NoError(t, again.Close())
}

func TestLock_SharedAllowsSharedExcludesExclusive(t *testing.T) {
	s := newTestStorage(t)
	locker := NewLocker(s, 100*time.Millisecond)

	r1, err := locker.Shared("tasks")
	require.NoError(t, err)
	r2, err := locker.Shared("tasks")
	require.NoError(t, err, "shared locks coexist")

	_, err = locker.Exclusive("tasks")
	assert.ErrorIs(t, err, core.ErrLockTimeout)

	require.NoError(t, r1.Close())
	require.NoError(t, r2.Close())

	w, err := locker.Exclusive("tasks")
	require.NoError(t, err)
	require.NoError(t, w.Close())
}

func TestLock_PerCollectionIndependence(t *testing.T) {
	s := newTestStorage(t)
	locker := NewLocker(s, 100*time.Millisecond)

	a, err := locker.Exclusive("tasks")
	require.NoError(t, err)
	defer a.Close()

	b, err := locker.Exclusive("shots")
	require.NoError(t, err, "locks on different collections never contend")
	require.NoError(t, b.Close())
}

func TestLock_CloseIsIdempotent(t *testing.T) {
	s := newTestStorage(t)
	locker := NewLocker(s, time.Second)

	lock, err := locker.Exclusive("tasks")
	require.NoError(t, err)
	require.NoError(t, lock.Close())
	require.NoError(t, lock.Close())
}

func TestLock_WaiterAcquiresAfterRelease(t *testing.T) {
	s := newTestStorage(t)
	locker := NewLocker(s, 2*time.Second)

	held, err := locker.Exclusive("tasks")
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		lock, err := locker.Exclusive("tasks")
		assert.NoError(t, err)
		if lock != nil {
			lock.Close()
		}
	}()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, held.Close())
	wg.Wait()
}

func TestLock_SurvivesDataFileReplacement(t *testing.T) {
	// The lock lives on its own file, so persisting (which replaces the data
	// file's inode) must not invalidate a held lock.
	s := newTestStorage(t)
	locker := NewLocker(s, 100*time.Millisecond)

	held, err := locker.Exclusive("tasks")
	require.NoError(t, err)
	defer held.Close()

	require.NoError(t, s.Persist("tasks", []core.Document{{"_id": "a"}}))

	_, err = locker.Exclusive("tasks")
	assert.ErrorIs(t, err, core.ErrLockTimeout, "lock must still be held after persist")
}
