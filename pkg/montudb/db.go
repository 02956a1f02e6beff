// Package montudb is the embedded JSON document store behind the Montu
// production-tracking suite. A DB is an explicit handle over one data
// directory holding one JSON file per collection; multiple processes may
// open the same directory concurrently, with mutations serialized per
// collection by flock-based locks.
package montudb

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"

	"github.com/katha-begin/Montu-sub000/pkg/adapters/fs"
	"github.com/katha-begin/Montu-sub000/pkg/core"
)

// DB is a handle to a document store rooted at one data directory. It is
// safe for concurrent use from multiple goroutines, and its on-disk locking
// makes it safe across processes sharing the directory.
type DB struct {
	dir     string
	storage *fs.Storage
	locker  *fs.Locker
	catalog *fs.Catalog
	logger  *slog.Logger
	budget  int

	mu       sync.Mutex
	colLocks map[string]*sync.Mutex
}

// Open opens (and by default creates) the store at dir.
func Open(dir string, opts ...Option) (*DB, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	if o.mustExist {
		info, err := os.Stat(dir)
		if err != nil {
			return nil, &core.IOError{Path: dir, Op: "open store", Err: err}
		}
		if !info.IsDir() {
			return nil, &core.IOError{Path: dir, Op: "open store", Err: fmt.Errorf("not a directory")}
		}
	}

	storage, err := fs.NewStorage(dir, o.logger)
	if err != nil {
		return nil, err
	}
	catalog, err := fs.NewCatalog(dir)
	if err != nil {
		return nil, err
	}

	return &DB{
		dir:      dir,
		storage:  storage,
		locker:   fs.NewLocker(storage, o.lockTimeout),
		catalog:  catalog,
		logger:   o.logger,
		budget:   o.pipelineBudget,
		colLocks: make(map[string]*sync.Mutex),
	}, nil
}

// Dir returns the data directory the store is rooted at.
func (db *DB) Dir() string {
	return db.dir
}

// colLock returns the in-process mutex for a collection, creating it lazily.
// The in-process mutex keeps goroutines of this process from contending on
// the flock poll loop; the flock itself serializes against other processes.
func (db *DB) colLock(collection string) *sync.Mutex {
	db.mu.Lock()
	defer db.mu.Unlock()
	lock, ok := db.colLocks[collection]
	if !ok {
		lock = &sync.Mutex{}
		db.colLocks[collection] = lock
	}
	return lock
}

// mutate runs fn under the collection's exclusive lock. fn receives the
// loaded document set and returns the new state; persist=false discards it
// (used when nothing matched). The lock is held until persistence completes.
func (db *DB) mutate(collection string, fn func(docs []core.Document) (out []core.Document, persist bool, err error)) error {
	if err := fs.ValidateName(collection); err != nil {
		return err
	}

	mu := db.colLock(collection)
	mu.Lock()
	defer mu.Unlock()

	lock, err := db.locker.Exclusive(collection)
	if err != nil {
		return err
	}
	defer lock.Close()

	docs, err := db.storage.Load(collection)
	if err != nil {
		return err
	}
	out, persist, err := fn(docs)
	if err != nil {
		return err
	}
	if !persist {
		return nil
	}
	return db.storage.Persist(collection, out)
}

// snapshot returns a point-in-time copy of the collection. The shared lock
// is held only for the file read; evaluation of queries and pipelines over
// the snapshot is lock-free, so slow readers never starve writers.
func (db *DB) snapshot(collection string) ([]core.Document, error) {
	if err := fs.ValidateName(collection); err != nil {
		return nil, err
	}

	lock, err := db.locker.Shared(collection)
	if err != nil {
		return nil, err
	}
	defer lock.Close()

	return db.storage.Load(collection)
}

// lockAll acquires the exclusive locks of several collections in
// lexicographic name order, preventing circular waits between
// multi-collection operations. The returned release function unlocks in
// reverse order.
func (db *DB) lockAll(collections []string) (release func(), err error) {
	names := append([]string(nil), collections...)
	sort.Strings(names)

	var mus []*sync.Mutex
	var locks []*fs.Lock
	release = func() {
		for i := len(locks) - 1; i >= 0; i-- {
			_ = locks[i].Close()
		}
		for i := len(mus) - 1; i >= 0; i-- {
			mus[i].Unlock()
		}
	}

	for _, name := range names {
		mu := db.colLock(name)
		mu.Lock()
		mus = append(mus, mu)

		lock, err := db.locker.Exclusive(name)
		if err != nil {
			release()
			return nil, err
		}
		locks = append(locks, lock)
	}
	return release, nil
}

// ListCollections returns the names of all collections, sorted.
func (db *DB) ListCollections() ([]string, error) {
	return db.storage.ListCollections()
}

// DropCollection removes a collection and its advisory indexes.
func (db *DB) DropCollection(collection string) error {
	return db.mutate(collection, func([]core.Document) ([]core.Document, bool, error) {
		if err := db.storage.Drop(collection); err != nil {
			return nil, false, err
		}
		return nil, false, db.catalog.DropCollection(collection)
	})
}

// BackupDatabase copies every collection file into a timestamped snapshot
// under targetDir and returns the snapshot path. All collection locks are
// taken for the duration so the snapshot is mutually consistent.
func (db *DB) BackupDatabase(targetDir string) (string, error) {
	names, err := db.storage.ListCollections()
	if err != nil {
		return "", err
	}
	release, err := db.lockAll(names)
	if err != nil {
		return "", err
	}
	defer release()

	return db.storage.Backup(targetDir)
}

// RestoreDatabase replaces the store's collections with a snapshot produced
// by BackupDatabase. Every snapshot file is validated before any live file
// is swapped; a corrupt snapshot fails the restore and leaves the store
// untouched. The locks cover the union of live and snapshot collections, so
// a collection dropped since the backup cannot be written concurrently while
// the restore brings it back.
func (db *DB) RestoreDatabase(snapshotDir string) error {
	live, err := db.storage.ListCollections()
	if err != nil {
		return err
	}
	snap, err := fs.SnapshotCollections(snapshotDir)
	if err != nil {
		return err
	}
	names := live
	seen := make(map[string]bool, len(live))
	for _, name := range live {
		seen[name] = true
	}
	for _, name := range snap {
		if !seen[name] {
			names = append(names, name)
		}
	}

	release, err := db.lockAll(names)
	if err != nil {
		return err
	}
	defer release()

	return db.storage.Restore(snapshotDir)
}

// Watch emits change events for collections matching pattern (doublestar
// syntax, empty for all), including changes made by other processes. The
// channel closes when ctx is cancelled.
func (db *DB) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	return db.storage.Watch(ctx, pattern)
}
