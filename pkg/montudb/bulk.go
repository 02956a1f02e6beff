package montudb

import (
	"time"

	"github.com/katha-begin/Montu-sub000/pkg/core"
	"github.com/katha-begin/Montu-sub000/pkg/query"
	"github.com/katha-begin/Montu-sub000/pkg/update"
)

// BulkWrite executes a list of write operations against one collection under
// a single lock window. Operations run in order; a failing operation is
// recorded in the result and execution continues with the next one. The
// surviving effects are persisted together, so other processes observe the
// bulk write as one change.
func (db *DB) BulkWrite(collection string, ops []core.Operation) (*core.BulkResult, error) {
	if len(ops) == 0 {
		return nil, &core.ValidationError{Collection: collection, Reason: "bulk write requires at least one operation"}
	}
	for _, op := range ops {
		if op.Collection != collection {
			return nil, &core.ValidationError{Collection: collection, Reason: "bulk write operation targets a different collection"}
		}
	}

	result := &core.BulkResult{}
	err := db.mutate(collection, func(docs []core.Document) ([]core.Document, bool, error) {
		now := core.Timestamp(time.Now())
		changed := false
		for _, op := range ops {
			next, counts, err := applyOperation(docs, op, now)
			if err != nil {
				result.Errors = append(result.Errors, err)
				continue
			}
			docs = next
			result.Inserted += counts.Inserted
			result.Updated += counts.Updated
			result.Deleted += counts.Deleted
			if counts.Inserted+counts.Updated+counts.Deleted > 0 {
				changed = true
			}
		}
		return docs, changed, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// applyOperation executes one declarative write against an in-memory
// document set and returns the new set with effect counts. It is the shared
// engine of bulk writes and transactions.
func applyOperation(docs []core.Document, op core.Operation, now string) ([]core.Document, core.TxResult, error) {
	var counts core.TxResult
	if err := op.Validate(); err != nil {
		return nil, counts, err
	}

	switch op.Kind {
	case core.OpInsert:
		stamped, id, err := stampNew(op.Collection, op.Document, now)
		if err != nil {
			return nil, counts, err
		}
		for _, doc := range docs {
			if core.ID(doc) == id {
				return nil, counts, &core.DuplicateKeyError{Collection: op.Collection, ID: id}
			}
		}
		counts.Inserted = 1
		return append(docs, stamped), counts, nil

	case core.OpUpdate:
		q, err := query.Compile(op.Filter)
		if err != nil {
			return nil, counts, err
		}
		u, err := update.Compile(op.Update)
		if err != nil {
			return nil, counts, err
		}
		// Work on a copied slice so a failing operator leaves no partial
		// effects behind. Apply is copy-on-write per document.
		work := append([]core.Document(nil), docs...)
		matched := 0
		if _, err := applyToMatches(work, q, u, op.Many, &matched); err != nil {
			return nil, counts, err
		}
		counts.Updated = matched
		return work, counts, nil

	case core.OpDelete:
		q, err := query.Compile(op.Filter)
		if err != nil {
			return nil, counts, err
		}
		kept := docs[:0:0]
		for _, doc := range docs {
			if q.Matches(doc) && (op.Many || counts.Deleted == 0) {
				counts.Deleted++
				continue
			}
			kept = append(kept, doc)
		}
		return kept, counts, nil
	}
	return nil, counts, &core.ValidationError{Collection: op.Collection, Reason: "unknown operation kind"}
}
