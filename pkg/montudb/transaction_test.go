package montudb

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katha-begin/Montu-sub000/pkg/core"
)

func TestTx_CommitsAcrossCollections(t *testing.T) {
	db := newTestDB(t)
	_, err := db.InsertOne("shots", core.Document{core.FieldID: "sq010", "task_count": float64(0)})
	require.NoError(t, err)

	result, err := db.Tx([]core.Operation{
		{Kind: core.OpInsert, Collection: "tasks", Document: core.Document{core.FieldID: "t1", "shot": "sq010"}},
		{Kind: core.OpUpdate, Collection: "shots", Filter: core.Document{core.FieldID: "sq010"},
			Update: core.Document{"$inc": map[string]any{"task_count": float64(1)}}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Inserted)
	assert.Equal(t, 1, result.Updated)

	shot, err := db.FindOne("shots", core.Document{core.FieldID: "sq010"})
	require.NoError(t, err)
	assert.Equal(t, float64(1), shot["task_count"])

	n, err := db.Count("tasks", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestTx_FailureRollsBackEverything(t *testing.T) {
	db := newTestDB(t)
	_, err := db.InsertOne("tasks", core.Document{core.FieldID: "existing"})
	require.NoError(t, err)

	// Byte-identical pre-state proves nothing was persisted.
	preTasks, err := os.ReadFile(db.storage.Path("tasks"))
	require.NoError(t, err)

	_, err = db.Tx([]core.Operation{
		{Kind: core.OpInsert, Collection: "shots", Document: core.Document{core.FieldID: "sq010"}},
		{Kind: core.OpInsert, Collection: "tasks", Document: core.Document{core.FieldID: "existing"}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrDuplicateKey)

	postTasks, err := os.ReadFile(db.storage.Path("tasks"))
	require.NoError(t, err)
	assert.Equal(t, preTasks, postTasks)
	assert.False(t, db.storage.Exists("shots"), "first operation must not have committed")
}

func TestTx_ValidatesUpFront(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Tx(nil)
	assert.ErrorIs(t, err, core.ErrValidation)

	_, err = db.Tx([]core.Operation{{Kind: core.OpInsert, Collection: "tasks"}})
	assert.ErrorIs(t, err, core.ErrValidation, "insert without document")

	_, err = db.Tx([]core.Operation{{Kind: "merge", Collection: "tasks"}})
	assert.ErrorIs(t, err, core.ErrValidation, "unknown kind")

	_, err = db.Tx([]core.Operation{{Kind: core.OpInsert, Collection: "../x", Document: core.Document{}}})
	assert.ErrorIs(t, err, core.ErrValidation, "bad collection name")
}

func TestTx_LaterOpsSeeEarlierEffects(t *testing.T) {
	db := newTestDB(t)

	result, err := db.Tx([]core.Operation{
		{Kind: core.OpInsert, Collection: "tasks", Document: core.Document{core.FieldID: "t1", "n": float64(0)}},
		{Kind: core.OpUpdate, Collection: "tasks", Filter: core.Document{core.FieldID: "t1"},
			Update: core.Document{"$inc": map[string]any{"n": float64(5)}}},
		{Kind: core.OpDelete, Collection: "tasks", Filter: core.Document{"n": float64(5)}},
	})
	require.NoError(t, err)
	assert.Equal(t, core.TxResult{Inserted: 1, Updated: 1, Deleted: 1}, *result)

	n, err := db.Count("tasks", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestBulkWrite(t *testing.T) {
	db := newTestDB(t)
	seedTasks(t, db)

	result, err := db.BulkWrite("tasks", []core.Operation{
		{Kind: core.OpInsert, Collection: "tasks", Document: core.Document{core.FieldID: "t4"}},
		{Kind: core.OpInsert, Collection: "tasks", Document: core.Document{core.FieldID: "t1"}}, // duplicate
		{Kind: core.OpUpdate, Collection: "tasks", Many: true,
			Filter: core.Document{"artist": "amy"},
			Update: core.Document{"$set": map[string]any{"flag": true}}},
		{Kind: core.OpDelete, Collection: "tasks", Filter: core.Document{core.FieldID: "t2"}},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Inserted)
	assert.Equal(t, 2, result.Updated)
	assert.Equal(t, 1, result.Deleted)
	require.Len(t, result.Errors, 1, "failed op is recorded, execution continues")
	assert.ErrorIs(t, result.Errors[0], core.ErrDuplicateKey)

	n, err := db.Count("tasks", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestBulkWrite_RejectsForeignCollections(t *testing.T) {
	db := newTestDB(t)
	_, err := db.BulkWrite("tasks", []core.Operation{
		{Kind: core.OpInsert, Collection: "shots", Document: core.Document{}},
	})
	assert.ErrorIs(t, err, core.ErrValidation)

	_, err = db.BulkWrite("tasks", nil)
	assert.ErrorIs(t, err, core.ErrValidation)
}
