package montudb

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/katha-begin/Montu-sub000/pkg/aggregate"
	"github.com/katha-begin/Montu-sub000/pkg/core"
	"github.com/katha-begin/Montu-sub000/pkg/query"
	"github.com/katha-begin/Montu-sub000/pkg/update"
)

// InsertOne inserts a document and returns its identifier. A missing _id is
// generated; a non-string _id is rejected; an existing _id fails with a
// duplicate-key error. The store stamps _created_at and _updated_at.
func (db *DB) InsertOne(collection string, doc core.Document) (string, error) {
	ids, err := db.InsertMany(collection, []core.Document{doc})
	if err != nil {
		return "", err
	}
	return ids[0], nil
}

// InsertMany inserts several documents in one lock window and returns their
// identifiers in input order. The batch is all-or-nothing: one bad document
// fails the whole insert.
func (db *DB) InsertMany(collection string, docs []core.Document) ([]string, error) {
	if len(docs) == 0 {
		return nil, &core.ValidationError{Collection: collection, Reason: "insert requires at least one document"}
	}

	var ids []string
	err := db.mutate(collection, func(existing []core.Document) ([]core.Document, bool, error) {
		seen := make(map[string]bool, len(existing))
		for _, d := range existing {
			seen[core.ID(d)] = true
		}

		now := core.Timestamp(time.Now())
		out := existing
		for _, doc := range docs {
			stamped, id, err := stampNew(collection, doc, now)
			if err != nil {
				return nil, false, err
			}
			if seen[id] {
				return nil, false, &core.DuplicateKeyError{Collection: collection, ID: id}
			}
			seen[id] = true
			ids = append(ids, id)
			out = append(out, stamped)
		}
		return out, true, nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// stampNew validates a document for insertion and returns a stamped copy.
func stampNew(collection string, doc core.Document, now string) (core.Document, string, error) {
	out := core.DeepCopy(doc)
	raw, ok := out[core.FieldID]
	if !ok {
		out[core.FieldID] = uuid.NewString()
	} else if _, isString := raw.(string); !isString {
		return nil, "", &core.ValidationError{Collection: collection, Field: core.FieldID, Reason: fmt.Sprintf("identifier must be a string, got %s", core.KindOf(raw))}
	}
	id := core.ID(out)
	if id == "" {
		return nil, "", &core.ValidationError{Collection: collection, Field: core.FieldID, Reason: "identifier must not be empty"}
	}
	out[core.FieldCreatedAt] = now
	out[core.FieldUpdatedAt] = now
	return out, id, nil
}

// Find returns every document matching the filter, in stored order. The
// result is a snapshot: mutating it never affects the store.
func (db *DB) Find(collection string, filter core.Document) ([]core.Document, error) {
	q, err := query.Compile(filter)
	if err != nil {
		return nil, err
	}
	docs, err := db.snapshot(collection)
	if err != nil {
		return nil, err
	}
	out := make([]core.Document, 0, len(docs))
	for _, doc := range docs {
		if q.Matches(doc) {
			out = append(out, doc)
		}
	}
	return out, nil
}

// FindOne returns the first document matching the filter, or nil when
// nothing matches.
func (db *DB) FindOne(collection string, filter core.Document) (core.Document, error) {
	q, err := query.Compile(filter)
	if err != nil {
		return nil, err
	}
	docs, err := db.snapshot(collection)
	if err != nil {
		return nil, err
	}
	for _, doc := range docs {
		if q.Matches(doc) {
			return doc, nil
		}
	}
	return nil, nil
}

// FindOptions shape the result of FindWithOptions. Sort keys apply in order;
// Skip runs before Limit; Projection reshapes each document with $project
// semantics.
type FindOptions struct {
	Sort       []core.SortKey
	Skip       int
	Limit      int // 0 means no limit
	Projection core.Document
}

// FindWithOptions is Find with sorting, paging, and projection.
func (db *DB) FindWithOptions(collection string, filter core.Document, opts FindOptions) ([]core.Document, error) {
	out, err := db.Find(collection, filter)
	if err != nil {
		return nil, err
	}

	core.SortDocuments(out, opts.Sort)

	if opts.Skip > 0 {
		if opts.Skip >= len(out) {
			out = out[:0]
		} else {
			out = out[opts.Skip:]
		}
	}
	if opts.Limit > 0 && opts.Limit < len(out) {
		out = out[:opts.Limit]
	}

	if opts.Projection != nil {
		return aggregate.Run(out, []core.Document{{"$project": map[string]any(opts.Projection)}})
	}
	return out, nil
}

// UpdateOne applies the update spec to the first document matching the
// filter and returns the number of matched documents (0 or 1).
func (db *DB) UpdateOne(collection string, filter, spec core.Document) (int, error) {
	return db.applyUpdate(collection, filter, spec, false)
}

// UpdateMany applies the same update spec to every document matching the
// filter and returns the number of matched documents.
func (db *DB) UpdateMany(collection string, filter, spec core.Document) (int, error) {
	return db.applyUpdate(collection, filter, spec, true)
}

func (db *DB) applyUpdate(collection string, filter, spec core.Document, many bool) (int, error) {
	q, err := query.Compile(filter)
	if err != nil {
		return 0, err
	}
	u, err := update.Compile(spec)
	if err != nil {
		return 0, err
	}

	matched := 0
	err = db.mutate(collection, func(docs []core.Document) ([]core.Document, bool, error) {
		n, err := applyToMatches(docs, q, u, many, &matched)
		if err != nil {
			return nil, false, err
		}
		return docs, n > 0, nil
	})
	if err != nil {
		return 0, err
	}
	return matched, nil
}

// applyToMatches rewrites matching documents in place within the slice. It
// returns the number actually mutated; matched counts every match.
func applyToMatches(docs []core.Document, q *query.Query, u *update.Update, many bool, matched *int) (int, error) {
	now := core.Timestamp(time.Now())
	mutated := 0
	for i, doc := range docs {
		if !q.Matches(doc) {
			continue
		}
		*matched++
		next, err := u.Apply(doc)
		if err != nil {
			return 0, err
		}
		next[core.FieldUpdatedAt] = now
		docs[i] = next
		mutated++
		if !many {
			break
		}
	}
	return mutated, nil
}

// ReplaceOne swaps the fields of the first matching document for those of
// newDoc, preserving the identifier and creation timestamp and bumping the
// modified timestamp. It reports whether a document was replaced.
func (db *DB) ReplaceOne(collection string, filter, newDoc core.Document) (bool, error) {
	q, err := query.Compile(filter)
	if err != nil {
		return false, err
	}
	if raw, ok := newDoc[core.FieldID]; ok {
		if _, isString := raw.(string); !isString {
			return false, &core.ValidationError{Collection: collection, Field: core.FieldID, Reason: "identifier must be a string"}
		}
	}

	replaced := false
	err = db.mutate(collection, func(docs []core.Document) ([]core.Document, bool, error) {
		for i, doc := range docs {
			if !q.Matches(doc) {
				continue
			}
			if id, ok := newDoc[core.FieldID].(string); ok && id != core.ID(doc) {
				return nil, false, &core.ValidationError{Collection: collection, Field: core.FieldID, Reason: "identifier is immutable"}
			}
			next := core.DeepCopy(newDoc)
			next[core.FieldID] = doc[core.FieldID]
			next[core.FieldCreatedAt] = doc[core.FieldCreatedAt]
			next[core.FieldUpdatedAt] = core.Timestamp(time.Now())
			docs[i] = next
			replaced = true
			return docs, true, nil
		}
		return docs, false, nil
	})
	if err != nil {
		return false, err
	}
	return replaced, nil
}

// DeleteOne removes the first document matching the filter and returns the
// number removed (0 or 1).
func (db *DB) DeleteOne(collection string, filter core.Document) (int, error) {
	return db.applyDelete(collection, filter, false)
}

// DeleteMany removes every document matching the filter and returns the
// number removed. Deleting with nothing left to match returns zero.
func (db *DB) DeleteMany(collection string, filter core.Document) (int, error) {
	return db.applyDelete(collection, filter, true)
}

func (db *DB) applyDelete(collection string, filter core.Document, many bool) (int, error) {
	q, err := query.Compile(filter)
	if err != nil {
		return 0, err
	}

	deleted := 0
	err = db.mutate(collection, func(docs []core.Document) ([]core.Document, bool, error) {
		kept := docs[:0:0]
		for _, doc := range docs {
			if q.Matches(doc) && (many || deleted == 0) {
				deleted++
				continue
			}
			kept = append(kept, doc)
		}
		return kept, deleted > 0, nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// Upsert updates the first document matching the filter, or, when nothing
// matches, inserts a document seeded from the filter's literal equality
// fields with the update spec applied. It returns the identifier of the
// updated or inserted document.
func (db *DB) Upsert(collection string, filter, spec core.Document) (string, error) {
	q, err := query.Compile(filter)
	if err != nil {
		return "", err
	}
	u, err := update.Compile(spec)
	if err != nil {
		return "", err
	}

	var id string
	err = db.mutate(collection, func(docs []core.Document) ([]core.Document, bool, error) {
		now := core.Timestamp(time.Now())
		for i, doc := range docs {
			if !q.Matches(doc) {
				continue
			}
			next, err := u.Apply(doc)
			if err != nil {
				return nil, false, err
			}
			next[core.FieldUpdatedAt] = now
			docs[i] = next
			id = core.ID(next)
			return docs, true, nil
		}

		// No match: seed a new document from the filter's literal fields.
		seeded, err := u.Apply(seedFromFilter(filter))
		if err != nil {
			return nil, false, err
		}
		stamped, newID, err := stampNew(collection, seeded, now)
		if err != nil {
			return nil, false, err
		}
		for _, doc := range docs {
			if core.ID(doc) == newID {
				return nil, false, &core.DuplicateKeyError{Collection: collection, ID: newID}
			}
		}
		id = newID
		return append(docs, stamped), true, nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// seedFromFilter extracts the plain equality fields of a filter, which form
// the natural identity of an upserted document. Operator documents and
// combinators carry no literal value and are skipped.
func seedFromFilter(filter core.Document) core.Document {
	seed := make(core.Document)
	for field, cond := range filter {
		if strings.HasPrefix(field, "$") {
			continue
		}
		if opDoc, ok := cond.(map[string]any); ok {
			isOp := len(opDoc) > 0
			for k := range opDoc {
				if !strings.HasPrefix(k, "$") {
					isOp = false
					break
				}
			}
			if isOp {
				continue
			}
		}
		core.SetPath(seed, field, cond)
	}
	return seed
}

// Distinct returns the set of distinct values the field takes across
// documents matching the filter (nil filter matches all). Array fields
// contribute each element. The result is ordered deterministically.
func (db *DB) Distinct(collection, field string, filter core.Document) ([]any, error) {
	if filter == nil {
		filter = core.Document{}
	}
	docs, err := db.Find(collection, filter)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var out []any
	add := func(v any) {
		key := aggregate.CanonicalKey(v)
		if !seen[key] {
			seen[key] = true
			out = append(out, v)
		}
	}
	for _, doc := range docs {
		val, ok := core.Resolve(doc, field)
		if !ok {
			continue
		}
		if arr, isArr := val.([]any); isArr {
			for _, elem := range arr {
				add(elem)
			}
			continue
		}
		add(val)
	}
	sort.SliceStable(out, func(i, j int) bool { return core.SortCompare(out[i], out[j]) < 0 })
	return out, nil
}

// Count returns the number of documents matching the filter (nil matches
// all).
func (db *DB) Count(collection string, filter core.Document) (int, error) {
	if filter == nil {
		filter = core.Document{}
	}
	docs, err := db.Find(collection, filter)
	if err != nil {
		return 0, err
	}
	return len(docs), nil
}

// Aggregate runs a pipeline over a snapshot of the collection. No lock is
// held while the stages execute, so long pipelines never block writers; they
// see the collection as of the moment the snapshot was taken.
func (db *DB) Aggregate(collection string, pipeline []core.Document) ([]core.Document, error) {
	p, err := aggregate.Compile(pipeline, aggregate.WithBudget(db.budget))
	if err != nil {
		return nil, err
	}
	docs, err := db.snapshot(collection)
	if err != nil {
		return nil, err
	}
	return p.Run(docs)
}
