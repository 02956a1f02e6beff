package fs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katha-begin/Montu-sub000/pkg/core"
)

func TestCatalog_CreateListDrop(t *testing.T) {
	dir := t.TempDir()
	c, err := NewCatalog(dir)
	require.NoError(t, err)

	spec, err := c.Create("tasks", []string{"status", "artist"}, false)
	require.NoError(t, err)
	assert.Equal(t, "tasks_status_artist", spec.Name)
	assert.False(t, spec.CreatedAt.IsZero())

	unique, err := c.Create("tasks", []string{"code"}, true)
	require.NoError(t, err)
	assert.True(t, unique.Unique)

	list := c.List("tasks")
	require.Len(t, list, 2)
	assert.Equal(t, "tasks_code", list[0].Name, "listing is sorted by name")

	assert.Empty(t, c.List("shots"))

	require.NoError(t, c.Drop("tasks", "tasks_code"))
	assert.Len(t, c.List("tasks"), 1)

	err = c.Drop("tasks", "tasks_code")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestCatalog_DuplicateAndEmptyFields(t *testing.T) {
	c, err := NewCatalog(t.TempDir())
	require.NoError(t, err)

	_, err = c.Create("tasks", nil, false)
	assert.ErrorIs(t, err, core.ErrValidation)

	_, err = c.Create("tasks", []string{"status"}, false)
	require.NoError(t, err)
	_, err = c.Create("tasks", []string{"status"}, false)
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestCatalog_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	c, err := NewCatalog(dir)
	require.NoError(t, err)
	_, err = c.Create("tasks", []string{"status"}, false)
	require.NoError(t, err)

	reopened, err := NewCatalog(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, reopened.Len())
	assert.Len(t, reopened.List("tasks"), 1)
}

func TestCatalog_DropCollection(t *testing.T) {
	c, err := NewCatalog(t.TempDir())
	require.NoError(t, err)
	_, err = c.Create("tasks", []string{"a"}, false)
	require.NoError(t, err)
	_, err = c.Create("tasks", []string{"b"}, false)
	require.NoError(t, err)
	_, err = c.Create("shots", []string{"a"}, false)
	require.NoError(t, err)

	require.NoError(t, c.DropCollection("tasks"))
	assert.Empty(t, c.List("tasks"))
	assert.Len(t, c.List("shots"), 1)

	// Dropping a collection with no indexes is a no-op.
	require.NoError(t, c.DropCollection("unknown"))
}
