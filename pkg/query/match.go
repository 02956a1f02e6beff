package query

import (
	"regexp"

	"github.com/katha-begin/Montu-sub000/pkg/core"
)

// fieldPred applies every operator of one field condition to the value
// resolved at the field's dot path.
type fieldPred struct {
	path string
	ops  []fieldOp
}

func (p *fieldPred) matches(doc core.Document) bool {
	val, present := core.Resolve(doc, p.path)
	for _, op := range p.ops {
		if !op.match(val, present) {
			return false
		}
	}
	return true
}

// logicalPred evaluates $and / $or branches.
type logicalPred struct {
	any      bool // true for $or
	branches []*Query
}

func (p *logicalPred) matches(doc core.Document) bool {
	for _, branch := range p.branches {
		if branch.Matches(doc) {
			if p.any {
				return true
			}
			continue
		}
		if !p.any {
			return false
		}
	}
	return !p.any
}

// fieldOp matches a resolved field value. present is false when the dot path
// did not resolve; positive operators must treat that as a non-match so that
// only negated operators ($ne, $nin) match absent fields.
type fieldOp interface {
	match(val any, present bool) bool
}

// eqOp implements implicit equality and $eq. Against an array field it has
// contains semantics unless the target is itself an array, in which case the
// arrays are compared wholesale first.
type eqOp struct {
	target any
}

func (op eqOp) match(val any, present bool) bool {
	if !present {
		return false
	}
	if core.Equal(val, op.target) {
		return true
	}
	if arr, ok := val.([]any); ok {
		for _, elem := range arr {
			if core.Equal(elem, op.target) {
				return true
			}
		}
	}
	return false
}

// notOp negates an inner operator. An absent field satisfies the negation.
type notOp struct {
	inner fieldOp
}

func (op notOp) match(val any, present bool) bool {
	if !present {
		return true
	}
	return !op.inner.match(val, present)
}

// orderedOp implements $gt/$gte/$lt/$lte. A comparison across kinds is a
// non-match, never an error: batch queries over heterogeneous documents stay
// safe. Array fields match when any element does.
type orderedOp struct {
	target any
	accept func(int) bool
}

func (op orderedOp) match(val any, present bool) bool {
	if !present {
		return false
	}
	if c, ok := core.Compare(val, op.target); ok && op.accept(c) {
		return true
	}
	if arr, ok := val.([]any); ok {
		for _, elem := range arr {
			if c, ok := core.Compare(elem, op.target); ok && op.accept(c) {
				return true
			}
		}
	}
	return false
}

// inOp implements $in: the field value equals any member of the set, or, for
// array fields, the field intersects the set.
type inOp struct {
	set []any
}

func (op inOp) match(val any, present bool) bool {
	if !present {
		return false
	}
	for _, member := range op.set {
		if core.Equal(val, member) {
			return true
		}
	}
	if arr, ok := val.([]any); ok {
		for _, elem := range arr {
			for _, member := range op.set {
				if core.Equal(elem, member) {
					return true
				}
			}
		}
	}
	return false
}

// regexOp implements $regex. Only string values are candidates; there is no
// coercion of numbers or other kinds into strings. Array fields match when
// any string element does.
type regexOp struct {
	re *regexp.Regexp
}

func (op regexOp) match(val any, present bool) bool {
	if !present {
		return false
	}
	if s, ok := val.(string); ok {
		return op.re.MatchString(s)
	}
	if arr, ok := val.([]any); ok {
		for _, elem := range arr {
			if s, ok := elem.(string); ok && op.re.MatchString(s) {
				return true
			}
		}
	}
	return false
}
