// Package update applies mutation operators to documents. An update
// specification maps operator names ($set, $inc, ...) to field documents.
// Specs are compiled once; application is copy-on-write, so a failed
// operator never leaves a partially mutated document behind.
package update

import (
	"fmt"

	"github.com/katha-begin/Montu-sub000/pkg/core"
)

// applyOrder fixes the order operators run in, regardless of how the caller's
// spec is keyed. Repeated applications of the same spec are therefore
// reproducible: removals first, then writes, then arithmetic, then array
// edits.
var applyOrder = []string{"$unset", "$set", "$inc", "$push", "$pull"}

// Update is a compiled update specification, safe for concurrent use.
type Update struct {
	ops []operation
}

type operation struct {
	name   string
	fields core.Document
}

// Compile parses an update spec. Unknown operators, non-document operator
// arguments, and attempts to touch the identifier field are rejected.
func Compile(spec core.Document) (*Update, error) {
	if len(spec) == 0 {
		return nil, &core.QueryError{Stage: -1, Detail: "empty update specification"}
	}
	byName := make(map[string]core.Document, len(spec))
	for name, arg := range spec {
		if _, known := appliers[name]; !known {
			return nil, &core.QueryError{Stage: -1, Detail: fmt.Sprintf("unknown update operator %q", name)}
		}
		fields, ok := arg.(map[string]any)
		if !ok {
			return nil, &core.QueryError{Stage: -1, Detail: fmt.Sprintf("%s takes a field document, got %s", name, core.KindOf(arg))}
		}
		for field := range fields {
			if field == core.FieldID {
				return nil, &core.ValidationError{Operator: name, Field: field, Reason: "identifier is immutable"}
			}
		}
		byName[name] = fields
	}

	u := &Update{}
	for _, name := range applyOrder {
		if fields, ok := byName[name]; ok {
			u.ops = append(u.ops, operation{name: name, fields: fields})
		}
	}
	return u, nil
}

// Apply runs the update against doc and returns the mutated copy. The input
// document is never modified; on error the returned document is nil.
func (u *Update) Apply(doc core.Document) (core.Document, error) {
	out := core.DeepCopy(doc)
	for _, op := range u.ops {
		if err := appliers[op.name](out, op.fields); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Apply compiles spec and applies it to doc in one call.
func Apply(doc, spec core.Document) (core.Document, error) {
	u, err := Compile(spec)
	if err != nil {
		return nil, err
	}
	return u.Apply(doc)
}

var appliers = map[string]func(doc core.Document, fields core.Document) error{
	"$set":   applySet,
	"$unset": applyUnset,
	"$inc":   applyInc,
	"$push":  applyPush,
	"$pull":  applyPull,
}

func applySet(doc core.Document, fields core.Document) error {
	for field, val := range fields {
		if !core.SetPath(doc, field, deepCopyValue(val)) {
			return &core.ValidationError{Operator: "$set", Field: field, Reason: "intermediate path segment is not a document"}
		}
	}
	return nil
}

func applyUnset(doc core.Document, fields core.Document) error {
	for field := range fields {
		core.DeletePath(doc, field)
	}
	return nil
}

func applyInc(doc core.Document, fields core.Document) error {
	for field, val := range fields {
		delta, ok := core.AsNumber(val)
		if !ok {
			return &core.ValidationError{Operator: "$inc", Field: field, Reason: fmt.Sprintf("increment must be numeric, got %s", core.KindOf(val))}
		}
		cur := 0.0
		if existing, present := core.Resolve(doc, field); present {
			n, ok := core.AsNumber(existing)
			if !ok {
				return &core.ValidationError{Operator: "$inc", Field: field, Reason: fmt.Sprintf("existing value is %s, not a number", core.KindOf(existing))}
			}
			cur = n
		}
		if !core.SetPath(doc, field, cur+delta) {
			return &core.ValidationError{Operator: "$inc", Field: field, Reason: "intermediate path segment is not a document"}
		}
	}
	return nil
}

func applyPush(doc core.Document, fields core.Document) error {
	for field, val := range fields {
		var arr []any
		if existing, present := core.Resolve(doc, field); present {
			a, ok := existing.([]any)
			if !ok {
				return &core.ValidationError{Operator: "$push", Field: field, Reason: fmt.Sprintf("existing value is %s, not an array", core.KindOf(existing))}
			}
			arr = a
		}
		arr = append(arr, deepCopyValue(val))
		if !core.SetPath(doc, field, arr) {
			return &core.ValidationError{Operator: "$push", Field: field, Reason: "intermediate path segment is not a document"}
		}
	}
	return nil
}

func applyPull(doc core.Document, fields core.Document) error {
	for field, val := range fields {
		existing, present := core.Resolve(doc, field)
		if !present {
			continue
		}
		arr, ok := existing.([]any)
		if !ok {
			return &core.ValidationError{Operator: "$pull", Field: field, Reason: fmt.Sprintf("existing value is %s, not an array", core.KindOf(existing))}
		}
		kept := arr[:0:0]
		for _, elem := range arr {
			if !core.Equal(elem, val) {
				kept = append(kept, elem)
			}
		}
		if kept == nil {
			kept = []any{}
		}
		if !core.SetPath(doc, field, kept) {
			return &core.ValidationError{Operator: "$pull", Field: field, Reason: "intermediate path segment is not a document"}
		}
	}
	return nil
}

func deepCopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return core.DeepCopy(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = deepCopyValue(item)
		}
		return out
	default:
		return v
	}
}
