package montudb

import (
	"time"

	"github.com/katha-begin/Montu-sub000/pkg/adapters/fs"
	"github.com/katha-begin/Montu-sub000/pkg/core"
)

// Tx executes a list of write operations atomically, possibly spanning
// several collections. Every operation is validated up front, the affected
// collections are locked in lexicographic name order, and the operations are
// replayed against in-memory working copies. Only when all of them succeed
// are the working copies persisted; any failure discards the copies and
// leaves every collection file untouched.
func (db *DB) Tx(ops []core.Operation) (*core.TxResult, error) {
	if len(ops) == 0 {
		return nil, &core.ValidationError{Reason: "transaction requires at least one operation"}
	}
	for _, op := range ops {
		if err := op.Validate(); err != nil {
			return nil, err
		}
		if err := fs.ValidateName(op.Collection); err != nil {
			return nil, err
		}
	}

	collections := make([]string, 0, len(ops))
	seen := make(map[string]bool)
	for _, op := range ops {
		if !seen[op.Collection] {
			seen[op.Collection] = true
			collections = append(collections, op.Collection)
		}
	}

	release, err := db.lockAll(collections)
	if err != nil {
		return nil, err
	}
	defer release()

	working := make(map[string][]core.Document, len(collections))
	for _, name := range collections {
		docs, err := db.storage.Load(name)
		if err != nil {
			return nil, err
		}
		working[name] = docs
	}

	result := &core.TxResult{}
	now := core.Timestamp(time.Now())
	for _, op := range ops {
		next, counts, err := applyOperation(working[op.Collection], op, now)
		if err != nil {
			return nil, err
		}
		working[op.Collection] = next
		result.Inserted += counts.Inserted
		result.Updated += counts.Updated
		result.Deleted += counts.Deleted
	}

	for _, name := range collections {
		if err := db.storage.Persist(name, working[name]); err != nil {
			return nil, err
		}
	}
	return result, nil
}
