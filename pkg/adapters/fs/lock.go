package fs

import (
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"github.com/katha-begin/Montu-sub000/pkg/core"
)

// Locker serializes collection access across processes using flock(2) on a
// per-collection lock file.
//
// flock is advisory and applies to an inode, not a pathname, so the lock
// lives on a dedicated "<collection>.json.lock" file that is stable on disk.
// The data file itself is replaced on every persist and therefore cannot
// carry the lock. All cooperating processes (multiple instances of the
// consuming application) must go through this Locker for the discipline to
// hold; within one process the DB facade additionally serializes with
// in-process mutexes.
//
// Acquisition polls with non-blocking flock and exponential backoff (1ms to
// 25ms) up to the timeout, then fails with a core.LockTimeoutError instead of
// blocking indefinitely.
//
// This implementation is Unix-only.
type Locker struct {
	storage *Storage
	timeout time.Duration
}

// DefaultLockTimeout bounds lock acquisition unless overridden.
const DefaultLockTimeout = 5 * time.Second

// NewLocker creates a Locker over the given storage's lock files.
func NewLocker(storage *Storage, timeout time.Duration) *Locker {
	if timeout <= 0 {
		timeout = DefaultLockTimeout
	}
	return &Locker{storage: storage, timeout: timeout}
}

// Lock represents a held collection lock. Release it with Close; Close is
// idempotent.
type Lock struct {
	file *os.File
}

// Close releases the lock and closes the lock file descriptor. On Unix,
// closing the descriptor releases the flock even if the explicit unlock
// failed, so errors here are cleanup noise rather than a stuck lock.
func (l *Lock) Close() error {
	if l.file == nil {
		return nil
	}
	unlockErr := flockRetryEINTR(int(l.file.Fd()), unix.LOCK_UN)
	closeErr := l.file.Close()
	l.file = nil
	if unlockErr != nil {
		unlockErr = fmt.Errorf("unlocking: %w", unlockErr)
	}
	if closeErr != nil {
		closeErr = fmt.Errorf("closing lock fd: %w", closeErr)
	}
	return errors.Join(unlockErr, closeErr)
}

// Exclusive acquires the collection's exclusive lock, for mutations.
func (l *Locker) Exclusive(collection string) (*Lock, error) {
	return l.acquire(collection, unix.LOCK_EX)
}

// Shared acquires the collection's shared lock, for read snapshots. Multiple
// readers may hold it concurrently; it excludes writers.
func (l *Locker) Shared(collection string) (*Lock, error) {
	return l.acquire(collection, unix.LOCK_SH)
}

func (l *Locker) acquire(collection string, how int) (*Lock, error) {
	path := l.storage.LockPath(collection)
	deadline := time.Now().Add(l.timeout)
	backoff := time.Millisecond

	for {
		file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
		if err != nil {
			return nil, &core.IOError{Path: path, Op: "open lock file", Err: err}
		}

		err = flockRetryEINTR(int(file.Fd()), how|unix.LOCK_NB)
		if err == nil {
			return &Lock{file: file}, nil
		}
		_ = file.Close()

		if !isWouldBlock(err) {
			return nil, &core.IOError{Path: path, Op: "flock", Err: err}
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, &core.LockTimeoutError{Collection: collection, Timeout: l.timeout}
		}

		time.Sleep(min(backoff, remaining))
		if backoff < 25*time.Millisecond {
			backoff *= 2
			if backoff > 25*time.Millisecond {
				backoff = 25 * time.Millisecond
			}
		}
	}
}

func isWouldBlock(err error) bool {
	return errors.Is(err, unix.EWOULDBLOCK) || errors.Is(err, unix.EAGAIN)
}

// flockRetryEINTR wraps flock, retrying when a signal interrupts the syscall.
// Retries are capped so a pathological signal storm cannot spin forever.
func flockRetryEINTR(fd int, how int) error {
	const maxRetries = 10000

	var err error
	for range maxRetries {
		err = unix.Flock(fd, how)
		if err == nil || !errors.Is(err, unix.EINTR) {
			return err
		}
	}
	return err
}
