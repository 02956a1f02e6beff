package montudb

import (
	"github.com/katha-begin/Montu-sub000/pkg/adapters/fs"
)

// CreateIndex records an advisory index on the given fields. Indexes are
// metadata only: they document the collection's access patterns and feed
// tooling, they do not change scan behavior.
func (db *DB) CreateIndex(collection string, fields []string, unique bool) (fs.IndexSpec, error) {
	if err := fs.ValidateName(collection); err != nil {
		return fs.IndexSpec{}, err
	}
	return db.catalog.Create(collection, fields, unique)
}

// ListIndexes returns the advisory indexes recorded for a collection.
func (db *DB) ListIndexes(collection string) []fs.IndexSpec {
	return db.catalog.List(collection)
}

// DropIndex removes a named advisory index.
func (db *DB) DropIndex(collection, name string) error {
	return db.catalog.Drop(collection, name)
}
