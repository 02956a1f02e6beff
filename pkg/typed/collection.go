// Package typed provides a generic, type-safe view over a raw document
// collection. Documents move through encoding/json in both directions, so
// any struct with json tags works as a model.
package typed

import (
	"encoding/json"
	"fmt"

	"github.com/katha-begin/Montu-sub000/pkg/core"
	"github.com/katha-begin/Montu-sub000/pkg/montudb"
)

// Model wraps a decoded document with its identity. It acts as a typed view
// of one document.
type Model[T any] struct {
	ID    string
	Data  T
	Saver Saver[T] // Active Record reference interface
}

// Saver interface avoids tight coupling between models and the Collection
// that produced them.
type Saver[T any] interface {
	Save(m *Model[T]) error
}

// Save persists the model using the attached saver.
func (m *Model[T]) Save() error {
	if m.Saver == nil {
		return fmt.Errorf("model is detached (missing Saver)")
	}
	return m.Saver.Save(m)
}

// Collection wraps one collection of a store to provide type-safe access.
type Collection[T any] struct {
	db   *montudb.DB
	name string
}

// NewCollection creates a type-safe wrapper around one collection.
func NewCollection[T any](db *montudb.DB, name string) *Collection[T] {
	return &Collection[T]{db: db, name: name}
}

// Insert encodes the value and inserts it as a new document, returning the
// generated identifier.
func (c *Collection[T]) Insert(v T) (string, error) {
	doc, err := encode(v)
	if err != nil {
		return "", err
	}
	return c.db.InsertOne(c.name, doc)
}

// Save persists a model. A model without an identifier is inserted; an
// existing one has its document replaced, keeping identity and creation time.
func (c *Collection[T]) Save(m *Model[T]) error {
	doc, err := encode(m.Data)
	if err != nil {
		return err
	}
	if m.Saver == nil {
		m.Saver = c
	}
	if m.ID == "" {
		id, err := c.db.InsertOne(c.name, doc)
		if err != nil {
			return err
		}
		m.ID = id
		return nil
	}

	replaced, err := c.db.ReplaceOne(c.name, core.Document{core.FieldID: m.ID}, doc)
	if err != nil {
		return err
	}
	if !replaced {
		doc[core.FieldID] = m.ID
		_, err = c.db.InsertOne(c.name, doc)
	}
	return err
}

// Get retrieves one model by identifier. A missing document is a
// NotFoundError.
func (c *Collection[T]) Get(id string) (*Model[T], error) {
	doc, err := c.db.FindOne(c.name, core.Document{core.FieldID: id})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, &core.NotFoundError{Collection: c.name, ID: id}
	}
	return c.fromDocument(doc)
}

// Find returns every model matching the raw filter.
func (c *Collection[T]) Find(filter core.Document) ([]*Model[T], error) {
	docs, err := c.db.Find(c.name, filter)
	if err != nil {
		return nil, err
	}
	result := make([]*Model[T], 0, len(docs))
	for _, doc := range docs {
		model, err := c.fromDocument(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to decode document %s: %w", core.ID(doc), err)
		}
		result = append(result, model)
	}
	return result, nil
}

// Delete removes a model by identifier. Deleting an absent model is a no-op.
func (c *Collection[T]) Delete(id string) error {
	_, err := c.db.DeleteOne(c.name, core.Document{core.FieldID: id})
	return err
}

// encode converts a typed value to a raw document via JSON.
func encode[T any](v T) (core.Document, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal typed data: %w", err)
	}
	var doc core.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to convert typed data to document: %w", err)
	}
	return doc, nil
}

func (c *Collection[T]) fromDocument(doc core.Document) (*Model[T], error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("document marshal failed: %w", err)
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("unmarshal to target type failed: %w", err)
	}
	return &Model[T]{
		ID:    core.ID(doc),
		Data:  v,
		Saver: c,
	}, nil
}
