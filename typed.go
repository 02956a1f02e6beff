package montu

import (
	"github.com/katha-begin/Montu-sub000/pkg/typed"
)

// Model wraps a decoded document with its identity.
// It is the generic equivalent of a raw Document.
type Model[T any] = typed.Model[T]

// TypedCollection provides type-safe access to one collection.
// It converts between raw documents and typed structs through encoding/json.
type TypedCollection[T any] = typed.Collection[T]

// NewTypedCollection creates a type-safe wrapper around one collection.
// T is the struct type stored in the collection's documents.
func NewTypedCollection[T any](db *DB, name string) *TypedCollection[T] {
	return typed.NewCollection[T](db, name)
}
