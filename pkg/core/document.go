// Package core defines the domain model shared by every layer of the store:
// documents, the value comparison rules, the error taxonomy, and the
// declarative operation types used by bulk writes and transactions.
package core

import "time"

// Reserved field names owned by the store. FieldID identifies a document
// within its collection; the two timestamp fields are stamped by the store
// and refreshed on every successful mutation.
const (
	FieldID        = "_id"
	FieldCreatedAt = "_created_at"
	FieldUpdatedAt = "_updated_at"
)

// TimeFormat is the layout used for the store-owned timestamp fields.
const TimeFormat = time.RFC3339Nano

// Document is a JSON-like record: field name -> value. Values are the types
// produced by encoding/json: nil, bool, float64, string, []any, and
// map[string]any (nested documents).
type Document = map[string]any

// ID returns the document identifier, or "" if absent or not a string.
func ID(doc Document) string {
	id, _ := doc[FieldID].(string)
	return id
}

// Timestamp formats t for the store-owned timestamp fields.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}

// DeepCopy returns a copy of doc sharing no mutable state with the original.
// Used for copy-on-write updates and read snapshots.
func DeepCopy(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return DeepCopy(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = deepCopyValue(item)
		}
		return out
	default:
		// nil, bool, float64, string and the json.Number-free integer types
		// are immutable; share them.
		return v
	}
}
