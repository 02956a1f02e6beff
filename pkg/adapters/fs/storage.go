// Package fs is the filesystem storage adapter: one JSON file per collection,
// crash-safe atomic persists, flock-based cross-process locking, timestamped
// backups, and change watching.
package fs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/katha-begin/Montu-sub000/pkg/core"
)

const (
	// CollectionExt is the extension of collection data files.
	CollectionExt = ".json"

	// SystemDir holds store-internal files (index catalog) inside the data
	// directory, and is skipped by scans, backups, and the watcher.
	SystemDir = ".montudb"

	lockSuffix = ".lock"
	filePerm   = 0o644
	dirPerm    = 0o755
)

// Storage loads and persists collection files under a single data directory.
// It performs no locking itself; callers serialize access through Locker.
type Storage struct {
	Dir    string
	logger *slog.Logger
}

// NewStorage creates a Storage rooted at dir. The directory is created if
// missing. logger may be nil.
func NewStorage(dir string, logger *slog.Logger) (*Storage, error) {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, &core.IOError{Path: dir, Op: "create data dir", Err: err}
	}
	if err := os.MkdirAll(filepath.Join(dir, SystemDir), dirPerm); err != nil {
		return nil, &core.IOError{Path: dir, Op: "create system dir", Err: err}
	}
	return &Storage{Dir: dir, logger: logger}, nil
}

// Path returns the data file path for a collection.
func (s *Storage) Path(collection string) string {
	return filepath.Join(s.Dir, collection+CollectionExt)
}

// LockPath returns the lock file path for a collection. The lock file is a
// separate, stable file: the data file is replaced on every persist, so it
// cannot carry the flock itself.
func (s *Storage) LockPath(collection string) string {
	return filepath.Join(s.Dir, collection+CollectionExt+lockSuffix)
}

// ValidateName rejects collection names that would escape the data directory
// or collide with store-internal files.
func ValidateName(collection string) error {
	if collection == "" {
		return &core.ValidationError{Reason: "collection name is empty"}
	}
	if strings.ContainsAny(collection, `/\`) || collection == "." || collection == ".." {
		return &core.ValidationError{Collection: collection, Reason: "collection name must not contain path separators"}
	}
	if strings.HasPrefix(collection, ".") {
		return &core.ValidationError{Collection: collection, Reason: "collection name must not start with a dot"}
	}
	if collection+CollectionExt == catalogFile {
		return &core.ValidationError{Collection: collection, Reason: "collection name is reserved for the index catalog"}
	}
	return nil
}

// Load reads a collection's documents into memory. A missing file is an
// empty collection (collections are created lazily on first write); an
// unreadable or structurally invalid file is a hard IOError, never a partial
// read.
func (s *Storage) Load(collection string) ([]core.Document, error) {
	path := s.Path(collection)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return []core.Document{}, nil
	}
	if err != nil {
		return nil, &core.IOError{Path: path, Op: "read collection", Err: err}
	}

	var docs []core.Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, &core.IOError{Path: path, Op: "parse collection", Err: err}
	}
	return docs, nil
}

// Persist writes the complete new state of a collection. The serialized
// state goes to a temporary file which is synced and then atomically renamed
// over the data file, so a crash mid-write leaves the previously committed
// file intact.
func (s *Storage) Persist(collection string, docs []core.Document) error {
	if docs == nil {
		docs = []core.Document{}
	}
	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return &core.IOError{Path: s.Path(collection), Op: "serialize collection", Err: err}
	}
	data = append(data, '\n')

	path := s.Path(collection)
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return &core.IOError{Path: path, Op: "persist collection", Err: err}
	}
	if s.logger != nil {
		s.logger.Debug("persisted collection", "collection", collection, "documents", len(docs))
	}
	return nil
}

// Exists reports whether a collection has a data file.
func (s *Storage) Exists(collection string) bool {
	_, err := os.Stat(s.Path(collection))
	return err == nil
}

// Drop removes a collection's data file. Dropping an absent collection is a
// NotFoundError.
func (s *Storage) Drop(collection string) error {
	path := s.Path(collection)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return &core.NotFoundError{Collection: collection}
		}
		return &core.IOError{Path: path, Op: "drop collection", Err: err}
	}
	// The lock file stays behind harmlessly; removing it could race a
	// concurrent acquirer in another process.
	return nil
}

// ListCollections returns the names of all collections with a data file,
// sorted lexicographically.
func (s *Storage) ListCollections() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, &core.IOError{Path: s.Dir, Op: "scan data dir", Err: err}
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, CollectionExt) || strings.HasPrefix(name, ".") {
			continue
		}
		names = append(names, strings.TrimSuffix(name, CollectionExt))
	}
	sort.Strings(names)
	return names, nil
}

// collectionFromPath maps a data file path back to its collection name, or
// "" when the path is not a collection data file.
func (s *Storage) collectionFromPath(path string) string {
	base := filepath.Base(path)
	if !strings.HasSuffix(base, CollectionExt) || strings.HasPrefix(base, ".") {
		return ""
	}
	return strings.TrimSuffix(base, CollectionExt)
}

// String implements fmt.Stringer for log output.
func (s *Storage) String() string {
	return fmt.Sprintf("fs.Storage(%s)", s.Dir)
}
