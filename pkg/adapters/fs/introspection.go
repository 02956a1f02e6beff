package fs

import (
	"github.com/aretw0/introspection"
)

// StorageState exposes internal state for observability.
type StorageState struct {
	Dir         string   `json:"dir"`
	Collections []string `json:"collections"`
}

// State implements introspection.Introspectable.
func (s *Storage) State() any {
	names, err := s.ListCollections()
	if err != nil {
		names = nil
	}
	return StorageState{
		Dir:         s.Dir,
		Collections: names,
	}
}

// ComponentType implements introspection.Component.
func (s *Storage) ComponentType() string {
	return "storage"
}

var _ introspection.Introspectable = (*Storage)(nil)
var _ introspection.Component = (*Storage)(nil)
