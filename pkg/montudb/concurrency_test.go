package montudb

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katha-begin/Montu-sub000/pkg/core"
)

// TestConcurrency_SerializedIncrements hammers one counter document from many
// goroutines across two DB handles (simulating two processes sharing the
// directory). Every increment must land exactly once.
func TestConcurrency_SerializedIncrements(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping stress test in short mode")
	}

	dir := t.TempDir()
	db1, err := Open(dir, WithLockTimeout(10*time.Second))
	require.NoError(t, err)
	db2, err := Open(dir, WithLockTimeout(10*time.Second))
	require.NoError(t, err)

	_, err = db1.InsertOne("counters", core.Document{core.FieldID: "c", "n": float64(0)})
	require.NoError(t, err)

	const workers = 8
	const perWorker = 25

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		db := db1
		if i%2 == 1 {
			db = db2
		}
		wg.Add(1)
		go func(db *DB) {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				_, err := db.UpdateOne("counters", core.Document{core.FieldID: "c"},
					core.Document{"$inc": map[string]any{"n": float64(1)}})
				assert.NoError(t, err)
			}
		}(db)
	}
	wg.Wait()

	doc, err := db1.FindOne("counters", core.Document{core.FieldID: "c"})
	require.NoError(t, err)
	assert.Equal(t, float64(workers*perWorker), doc["n"], "no increment may be lost")
}

// TestConcurrency_ChaosSurvival mixes writers, readers, and a watcher over the
// same store. The assertions are about integrity, not throughput: no panic, no
// corrupt file, every read sees valid state.
func TestConcurrency_ChaosSurvival(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping stress test in short mode")
	}

	dir := t.TempDir()
	db, err := Open(dir, WithLockTimeout(10*time.Second))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	var wg sync.WaitGroup

	// Writers upsert random documents.
	for w := 0; w < 3; w++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for ctx.Err() == nil {
				id := fmt.Sprintf("doc-%d", rng.Intn(10))
				_, err := db.Upsert("chaos", core.Document{core.FieldID: id},
					core.Document{"$inc": map[string]any{"touched": float64(1)}})
				assert.NoError(t, err)
				time.Sleep(time.Duration(rng.Intn(5)) * time.Millisecond)
			}
		}(int64(w))
	}

	// Readers scan and must always get parseable state.
	wg.Add(1)
	go func() {
		defer wg.Done()
		for ctx.Err() == nil {
			docs, err := db.Find("chaos", core.Document{})
			assert.NoError(t, err)
			for _, doc := range docs {
				assert.NotEmpty(t, core.ID(doc))
			}
			time.Sleep(2 * time.Millisecond)
		}
	}()

	// Watcher just consumes.
	stream, err := db.Watch(ctx, "*")
	require.NoError(t, err)
	wg.Add(1)
	go func() {
		defer wg.Done()
		for range stream {
		}
	}()

	wg.Wait()

	docs, err := db.Find("chaos", core.Document{})
	require.NoError(t, err)
	t.Logf("Survived chaos with %d documents", len(docs))
	assert.NotEmpty(t, docs)
}
