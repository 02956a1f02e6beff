// Package query evaluates declarative predicates against documents. A filter
// is itself a document: field paths map to literals (implicit equality) or to
// operator documents such as {"$gte": 3}, and the $and/$or combinators nest
// arbitrarily.
//
// Filters are compiled once into a predicate tree; operator lookup happens at
// compile time, not per document. Matching is pure and never mutates the
// document.
package query

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/katha-begin/Montu-sub000/pkg/core"
)

// Query is a compiled filter, safe for concurrent use.
type Query struct {
	preds []predicate
}

// Compile parses a filter into a Query. Unknown operators and malformed
// combinators are rejected with a core.QueryError.
func Compile(filter core.Document) (*Query, error) {
	preds, err := compileFilter(filter)
	if err != nil {
		return nil, err
	}
	return &Query{preds: preds}, nil
}

// Matches reports whether doc satisfies every predicate of the query.
// Sibling predicates are an implicit conjunction.
func (q *Query) Matches(doc core.Document) bool {
	for _, p := range q.preds {
		if !p.matches(doc) {
			return false
		}
	}
	return true
}

// Match compiles filter and evaluates it against a single document. Callers
// matching many documents should compile once and reuse the Query.
func Match(doc, filter core.Document) (bool, error) {
	q, err := Compile(filter)
	if err != nil {
		return false, err
	}
	return q.Matches(doc), nil
}

type predicate interface {
	matches(doc core.Document) bool
}

func compileFilter(filter core.Document) ([]predicate, error) {
	preds := make([]predicate, 0, len(filter))
	for field, cond := range filter {
		switch field {
		case "$and", "$or":
			sub, err := compileBranches(field, cond)
			if err != nil {
				return nil, err
			}
			preds = append(preds, &logicalPred{any: field == "$or", branches: sub})
		default:
			if strings.HasPrefix(field, "$") {
				return nil, &core.QueryError{Stage: -1, Detail: fmt.Sprintf("unknown combinator %q", field)}
			}
			ops, err := compileCondition(field, cond)
			if err != nil {
				return nil, err
			}
			preds = append(preds, &fieldPred{path: field, ops: ops})
		}
	}
	return preds, nil
}

func compileBranches(name string, cond any) ([]*Query, error) {
	items, ok := cond.([]any)
	if !ok {
		return nil, &core.QueryError{Stage: -1, Detail: fmt.Sprintf("%s takes an array of sub-queries, got %s", name, core.KindOf(cond))}
	}
	if len(items) == 0 {
		return nil, &core.QueryError{Stage: -1, Detail: fmt.Sprintf("%s requires at least one sub-query", name)}
	}
	branches := make([]*Query, 0, len(items))
	for _, item := range items {
		sub, ok := item.(map[string]any)
		if !ok {
			return nil, &core.QueryError{Stage: -1, Detail: fmt.Sprintf("%s sub-query must be a document, got %s", name, core.KindOf(item))}
		}
		q, err := Compile(sub)
		if err != nil {
			return nil, err
		}
		branches = append(branches, q)
	}
	return branches, nil
}

// compileCondition turns the right-hand side of a field into field operators.
// A document whose keys all start with "$" is an operator document; anything
// else, including plain nested documents, is an equality literal.
func compileCondition(field string, cond any) ([]fieldOp, error) {
	opDoc, ok := cond.(map[string]any)
	if !ok || !isOperatorDoc(opDoc) {
		return []fieldOp{eqOp{target: cond}}, nil
	}

	ops := make([]fieldOp, 0, len(opDoc))
	for name, arg := range opDoc {
		if name == "$options" {
			continue // consumed by $regex
		}
		build, ok := operators[name]
		if !ok {
			return nil, &core.QueryError{Stage: -1, Detail: fmt.Sprintf("unknown operator %q on field %q", name, field)}
		}
		op, err := build(field, arg, opDoc)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	if len(ops) == 0 {
		return nil, &core.QueryError{Stage: -1, Detail: fmt.Sprintf("empty operator document on field %q", field)}
	}
	return ops, nil
}

func isOperatorDoc(doc map[string]any) bool {
	if len(doc) == 0 {
		return false
	}
	for k := range doc {
		if !strings.HasPrefix(k, "$") {
			return false
		}
	}
	return true
}

// operators is the registry of field operator constructors, resolved once at
// compile time.
var operators = map[string]func(field string, arg any, opDoc map[string]any) (fieldOp, error){
	"$eq":  func(_ string, arg any, _ map[string]any) (fieldOp, error) { return eqOp{target: arg}, nil },
	"$ne":  func(_ string, arg any, _ map[string]any) (fieldOp, error) { return notOp{inner: eqOp{target: arg}}, nil },
	"$gt":  newOrderedOp(func(c int) bool { return c > 0 }),
	"$gte": newOrderedOp(func(c int) bool { return c >= 0 }),
	"$lt":  newOrderedOp(func(c int) bool { return c < 0 }),
	"$lte": newOrderedOp(func(c int) bool { return c <= 0 }),
	"$in":  newMembershipOp(false),
	"$nin": newMembershipOp(true),
	"$regex": func(field string, arg any, opDoc map[string]any) (fieldOp, error) {
		pattern, ok := arg.(string)
		if !ok {
			return nil, &core.QueryError{Stage: -1, Detail: fmt.Sprintf("$regex on field %q takes a string pattern, got %s", field, core.KindOf(arg))}
		}
		if opts, _ := opDoc["$options"].(string); strings.Contains(opts, "i") {
			pattern = "(?i)" + pattern
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, &core.QueryError{Stage: -1, Detail: fmt.Sprintf("invalid $regex on field %q: %v", field, err)}
		}
		return regexOp{re: re}, nil
	},
}

func newOrderedOp(accept func(int) bool) func(string, any, map[string]any) (fieldOp, error) {
	return func(_ string, arg any, _ map[string]any) (fieldOp, error) {
		return orderedOp{target: arg, accept: accept}, nil
	}
}

func newMembershipOp(negate bool) func(string, any, map[string]any) (fieldOp, error) {
	name := "$in"
	if negate {
		name = "$nin"
	}
	return func(field string, arg any, _ map[string]any) (fieldOp, error) {
		set, ok := arg.([]any)
		if !ok {
			return nil, &core.QueryError{Stage: -1, Detail: fmt.Sprintf("%s on field %q takes an array, got %s", name, field, core.KindOf(arg))}
		}
		var op fieldOp = inOp{set: set}
		if negate {
			op = notOp{inner: op}
		}
		return op, nil
	}
}
