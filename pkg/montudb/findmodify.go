package montudb

import (
	"time"

	"github.com/katha-begin/Montu-sub000/pkg/core"
	"github.com/katha-begin/Montu-sub000/pkg/query"
	"github.com/katha-begin/Montu-sub000/pkg/update"
)

// FindOneAndUpdate atomically updates the first document matching the filter
// and returns it. With returnNew it returns the post-update document,
// otherwise the pre-update one. A nil document with nil error means nothing
// matched. Read and write happen under one lock window, so no other writer
// can slip in between.
func (db *DB) FindOneAndUpdate(collection string, filter, spec core.Document, returnNew bool) (core.Document, error) {
	q, err := query.Compile(filter)
	if err != nil {
		return nil, err
	}
	u, err := update.Compile(spec)
	if err != nil {
		return nil, err
	}

	var result core.Document
	err = db.mutate(collection, func(docs []core.Document) ([]core.Document, bool, error) {
		for i, doc := range docs {
			if !q.Matches(doc) {
				continue
			}
			next, err := u.Apply(doc)
			if err != nil {
				return nil, false, err
			}
			next[core.FieldUpdatedAt] = core.Timestamp(time.Now())
			if returnNew {
				result = core.DeepCopy(next)
			} else {
				result = core.DeepCopy(doc)
			}
			docs[i] = next
			return docs, true, nil
		}
		return docs, false, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// FindOneAndDelete atomically removes the first document matching the filter
// and returns it. A nil document with nil error means nothing matched.
func (db *DB) FindOneAndDelete(collection string, filter core.Document) (core.Document, error) {
	q, err := query.Compile(filter)
	if err != nil {
		return nil, err
	}

	var result core.Document
	err = db.mutate(collection, func(docs []core.Document) ([]core.Document, bool, error) {
		for i, doc := range docs {
			if !q.Matches(doc) {
				continue
			}
			result = core.DeepCopy(doc)
			return append(docs[:i], docs[i+1:]...), true, nil
		}
		return docs, false, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
