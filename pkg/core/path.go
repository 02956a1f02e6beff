package core

import (
	"strconv"
	"strings"
)

// Resolve walks a dot-notation field path through nested documents and
// arrays. ok is false when any intermediate segment is absent or not
// traversable; predicates treat an absent path as "matches nothing" except
// for negated operators.
//
// Array segments resolve two ways: a numeric segment indexes the array
// ("tags.0"), and a non-numeric segment fans out over the elements,
// collecting the matches from each object element ("versions.status" over an
// array of objects yields an array of statuses).
func Resolve(doc Document, path string) (any, bool) {
	return resolveValue(doc, strings.Split(path, "."))
}

func resolveValue(v any, segments []string) (any, bool) {
	if len(segments) == 0 {
		return v, true
	}
	seg := segments[0]
	switch cur := v.(type) {
	case map[string]any:
		next, ok := cur[seg]
		if !ok {
			return nil, false
		}
		return resolveValue(next, segments[1:])
	case []any:
		if idx, err := strconv.Atoi(seg); err == nil {
			if idx < 0 || idx >= len(cur) {
				return nil, false
			}
			return resolveValue(cur[idx], segments[1:])
		}
		var out []any
		for _, elem := range cur {
			if res, ok := resolveValue(elem, segments); ok {
				out = append(out, res)
			}
		}
		if len(out) == 0 {
			return nil, false
		}
		return out, true
	default:
		return nil, false
	}
}

// SetPath writes val at a dot-notation path, creating intermediate documents
// as needed. It fails when an intermediate segment exists but is not a
// document.
func SetPath(doc Document, path string, val any) bool {
	segments := strings.Split(path, ".")
	cur := doc
	for _, seg := range segments[:len(segments)-1] {
		next, ok := cur[seg]
		if !ok {
			child := make(Document)
			cur[seg] = child
			cur = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return false
		}
		cur = child
	}
	cur[segments[len(segments)-1]] = val
	return true
}

// DeletePath removes the field at a dot-notation path. Removing an absent
// field is a no-op.
func DeletePath(doc Document, path string) {
	segments := strings.Split(path, ".")
	cur := doc
	for _, seg := range segments[:len(segments)-1] {
		child, ok := cur[seg].(map[string]any)
		if !ok {
			return
		}
		cur = child
	}
	delete(cur, segments[len(segments)-1])
}
