package fs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/natefinch/atomic"

	"github.com/katha-begin/Montu-sub000/pkg/core"
)

const catalogFile = "indexes.json"

// IndexSpec is advisory index metadata: it records which fields callers query
// by so scan planning (and operators reading the catalog) can reason about
// access patterns. It is not a true ordered index structure.
type IndexSpec struct {
	Name       string    `json:"name"`
	Collection string    `json:"collection"`
	Fields     []string  `json:"fields"`
	Unique     bool      `json:"unique,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// catalogState is the persisted shape of the index catalog.
type catalogState struct {
	Version int         `json:"version"`
	Indexes []IndexSpec `json:"indexes"`
}

// Catalog manages the loading, updating, and saving of the index metadata
// kept at {dataDir}/.montudb/indexes.json.
type Catalog struct {
	path  string
	mu    sync.RWMutex
	state catalogState
	dirty bool
}

// NewCatalog initializes a catalog for the given data directory and loads
// any persisted state. A missing catalog file starts empty; a corrupt one is
// an IOError, consistent with collection loads.
func NewCatalog(dataDir string) (*Catalog, error) {
	c := &Catalog{
		path:  filepath.Join(dataDir, SystemDir, catalogFile),
		state: catalogState{Version: 1},
	}
	data, err := os.ReadFile(c.path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, &core.IOError{Path: c.path, Op: "read index catalog", Err: err}
	}
	if err := json.Unmarshal(data, &c.state); err != nil {
		return nil, &core.IOError{Path: c.path, Op: "parse index catalog", Err: err}
	}
	return c, nil
}

// Create records a new index. The name is derived from the collection and
// fields when empty. Creating an identical index twice is an error.
func (c *Catalog) Create(collection string, fields []string, unique bool) (IndexSpec, error) {
	if len(fields) == 0 {
		return IndexSpec{}, &core.ValidationError{Collection: collection, Reason: "index requires at least one field"}
	}
	name := collection
	for _, f := range fields {
		name += "_" + f
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, spec := range c.state.Indexes {
		if spec.Name == name {
			return IndexSpec{}, &core.ValidationError{Collection: collection, Reason: fmt.Sprintf("index %q already exists", name)}
		}
	}
	spec := IndexSpec{
		Name:       name,
		Collection: collection,
		Fields:     append([]string(nil), fields...),
		Unique:     unique,
		CreatedAt:  time.Now().UTC(),
	}
	c.state.Indexes = append(c.state.Indexes, spec)
	c.dirty = true
	return spec, c.saveLocked()
}

// List returns the indexes recorded for a collection, sorted by name.
func (c *Catalog) List(collection string) []IndexSpec {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []IndexSpec
	for _, spec := range c.state.Indexes {
		if spec.Collection == collection {
			out = append(out, spec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Drop removes a named index. Dropping an unknown index is a NotFoundError.
func (c *Catalog) Drop(collection, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, spec := range c.state.Indexes {
		if spec.Collection == collection && spec.Name == name {
			c.state.Indexes = append(c.state.Indexes[:i], c.state.Indexes[i+1:]...)
			c.dirty = true
			return c.saveLocked()
		}
	}
	return &core.NotFoundError{Collection: collection, ID: name}
}

// DropCollection removes every index recorded for a collection. Called when
// the collection itself is dropped.
func (c *Catalog) DropCollection(collection string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.state.Indexes[:0:0]
	for _, spec := range c.state.Indexes {
		if spec.Collection != collection {
			kept = append(kept, spec)
		}
	}
	if len(kept) == len(c.state.Indexes) {
		return nil
	}
	c.state.Indexes = kept
	c.dirty = true
	return c.saveLocked()
}

func (c *Catalog) saveLocked() error {
	if !c.dirty {
		return nil
	}
	data, err := json.MarshalIndent(&c.state, "", "  ")
	if err != nil {
		return &core.IOError{Path: c.path, Op: "serialize index catalog", Err: err}
	}
	if err := os.MkdirAll(filepath.Dir(c.path), dirPerm); err != nil {
		return &core.IOError{Path: c.path, Op: "create system dir", Err: err}
	}
	if err := atomic.WriteFile(c.path, bytes.NewReader(data)); err != nil {
		return &core.IOError{Path: c.path, Op: "persist index catalog", Err: err}
	}
	c.dirty = false
	return nil
}

// Len reports the number of recorded indexes, for introspection.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.state.Indexes)
}
