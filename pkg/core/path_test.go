package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_Nested(t *testing.T) {
	doc := Document{
		"shot": map[string]any{
			"sequence": map[string]any{"code": "sq010"},
		},
	}
	v, ok := Resolve(doc, "shot.sequence.code")
	require.True(t, ok)
	assert.Equal(t, "sq010", v)

	_, ok = Resolve(doc, "shot.episode.code")
	assert.False(t, ok)
}

func TestResolve_ArrayIndex(t *testing.T) {
	doc := Document{"tags": []any{"wip", "review"}}

	v, ok := Resolve(doc, "tags.1")
	require.True(t, ok)
	assert.Equal(t, "review", v)

	_, ok = Resolve(doc, "tags.5")
	assert.False(t, ok, "out-of-range index is absent, not an error")
}

func TestResolve_ArrayFanOut(t *testing.T) {
	doc := Document{
		"versions": []any{
			map[string]any{"status": "approved"},
			map[string]any{"status": "pending"},
			map[string]any{"note": "no status"},
		},
	}
	v, ok := Resolve(doc, "versions.status")
	require.True(t, ok)
	assert.Equal(t, []any{"approved", "pending"}, v)
}

func TestSetPath(t *testing.T) {
	doc := Document{}
	require.True(t, SetPath(doc, "a.b.c", float64(1)))
	v, ok := Resolve(doc, "a.b.c")
	require.True(t, ok)
	assert.Equal(t, float64(1), v)

	// Intermediate segment exists but is a scalar.
	doc2 := Document{"a": "scalar"}
	assert.False(t, SetPath(doc2, "a.b", float64(1)))
}

func TestDeletePath(t *testing.T) {
	doc := Document{"a": map[string]any{"b": float64(1), "keep": true}}
	DeletePath(doc, "a.b")
	_, ok := Resolve(doc, "a.b")
	assert.False(t, ok)
	_, ok = Resolve(doc, "a.keep")
	assert.True(t, ok)

	// Absent path is a no-op.
	DeletePath(doc, "x.y.z")
}
