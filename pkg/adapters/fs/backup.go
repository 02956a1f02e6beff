package fs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/natefinch/atomic"

	"github.com/katha-begin/Montu-sub000/pkg/core"
)

const backupPrefix = "montudb-backup-"

// Backup copies every collection file (and the index catalog, if present)
// into a timestamped subdirectory of targetDir and returns that directory's
// path. Callers hold the collection locks; Backup itself only copies bytes.
func (s *Storage) Backup(targetDir string) (string, error) {
	stamp := time.Now().UTC().Format("20060102-150405")
	dir := filepath.Join(targetDir, backupPrefix+stamp)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return "", &core.IOError{Path: dir, Op: "create backup dir", Err: err}
	}

	names, err := s.ListCollections()
	if err != nil {
		return "", err
	}
	for _, name := range names {
		if err := copyFile(s.Path(name), filepath.Join(dir, name+CollectionExt)); err != nil {
			return "", err
		}
	}

	catalog := filepath.Join(s.Dir, SystemDir, catalogFile)
	if _, err := os.Stat(catalog); err == nil {
		if err := copyFile(catalog, filepath.Join(dir, catalogFile)); err != nil {
			return "", err
		}
	}

	if s.logger != nil {
		s.logger.Info("backup complete", "dir", dir, "collections", len(names))
	}
	return dir, nil
}

// SnapshotCollections lists the collection names a snapshot directory would
// restore, sorted. The catalog copy is not a collection and is excluded.
// Callers use it to lock snapshot-only collections before a restore.
func SnapshotCollections(snapshotDir string) ([]string, error) {
	matches, err := doublestar.FilepathGlob(filepath.Join(snapshotDir, "*"+CollectionExt))
	if err != nil {
		return nil, &core.IOError{Path: snapshotDir, Op: "scan snapshot dir", Err: err}
	}
	var names []string
	for _, path := range matches {
		base := filepath.Base(path)
		if base == catalogFile {
			continue
		}
		names = append(names, strings.TrimSuffix(base, CollectionExt))
	}
	sort.Strings(names)
	return names, nil
}

// Restore replaces the data directory's collections with the contents of a
// snapshot directory produced by Backup. Every snapshot file is validated
// before any collection is touched: one corrupt file fails the whole restore
// and leaves the live data untouched.
func (s *Storage) Restore(snapshotDir string) error {
	pattern := filepath.Join(snapshotDir, "*"+CollectionExt)
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return &core.IOError{Path: snapshotDir, Op: "scan snapshot dir", Err: err}
	}
	// Validation pass: every file must parse before anything is swapped in.
	contents := make(map[string][]byte, len(matches))
	for _, path := range matches {
		if filepath.Base(path) == catalogFile {
			continue // the catalog copy is not a collection
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return &core.IOError{Path: path, Op: "read snapshot file", Err: err}
		}
		var docs []core.Document
		if err := json.Unmarshal(data, &docs); err != nil {
			return &core.IOError{Path: path, Op: "validate snapshot file", Err: err}
		}
		name := strings.TrimSuffix(filepath.Base(path), CollectionExt)
		contents[name] = data
	}
	if len(contents) == 0 {
		return &core.IOError{Path: snapshotDir, Op: "restore", Err: fmt.Errorf("no collection files in snapshot")}
	}

	// Swap pass: each file lands via the same atomic temp+rename as a
	// normal persist.
	for name, data := range contents {
		target := s.Path(name)
		if err := atomic.WriteFile(target, bytes.NewReader(data)); err != nil {
			return &core.IOError{Path: target, Op: "restore collection", Err: err}
		}
	}

	catalog := filepath.Join(snapshotDir, catalogFile)
	if data, err := os.ReadFile(catalog); err == nil {
		target := filepath.Join(s.Dir, SystemDir, catalogFile)
		if err := atomic.WriteFile(target, bytes.NewReader(data)); err != nil {
			return &core.IOError{Path: target, Op: "restore index catalog", Err: err}
		}
	}

	if s.logger != nil {
		s.logger.Info("restore complete", "snapshot", snapshotDir, "collections", len(contents))
	}
	return nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return &core.IOError{Path: src, Op: "read for backup", Err: err}
	}
	if err := os.WriteFile(dst, data, filePerm); err != nil {
		return &core.IOError{Path: dst, Op: "write backup copy", Err: err}
	}
	return nil
}
