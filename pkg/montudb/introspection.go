package montudb

import (
	"github.com/aretw0/introspection"
)

// DBState exposes internal state for observability.
type DBState struct {
	Dir            string   `json:"dir"`
	Collections    []string `json:"collections"`
	Indexes        int      `json:"indexes"`
	PipelineBudget int      `json:"pipelineBudget"`
}

// State implements introspection.Introspectable.
func (db *DB) State() any {
	names, err := db.ListCollections()
	if err != nil {
		names = nil
	}
	return DBState{
		Dir:            db.dir,
		Collections:    names,
		Indexes:        db.catalog.Len(),
		PipelineBudget: db.budget,
	}
}

// ComponentType implements introspection.Component.
func (db *DB) ComponentType() string {
	return "store"
}

var _ introspection.Introspectable = (*DB)(nil)
var _ introspection.Component = (*DB)(nil)
