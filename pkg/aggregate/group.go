package aggregate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/katha-begin/Montu-sub000/pkg/core"
)

// groupStage buckets the sequence by a key expression and folds each bucket
// through per-field accumulators. Documents whose key expression does not
// resolve land in a single null-keyed bucket; they are never dropped.
type groupStage struct {
	key    expression
	fields []groupField
}

type groupField struct {
	name    string
	newAcc  func() accumulator
	operand expression
}

// expression is the small expression language of $group: a "$field" path
// reference or a literal.
type expression struct {
	path    string
	literal any
	isPath  bool
}

func compileExpression(arg any) expression {
	if s, ok := arg.(string); ok && strings.HasPrefix(s, "$") {
		return expression{path: strings.TrimPrefix(s, "$"), isPath: true}
	}
	return expression{literal: arg}
}

// eval resolves the expression against a document. ok is false only for an
// unresolved path reference.
func (e expression) eval(doc core.Document) (any, bool) {
	if e.isPath {
		return core.Resolve(doc, e.path)
	}
	return e.literal, true
}

func buildGroup(idx int, arg any) (stage, error) {
	spec, ok := arg.(map[string]any)
	if !ok {
		return nil, &core.QueryError{Stage: idx, Detail: fmt.Sprintf("$group takes a document, got %s", core.KindOf(arg))}
	}
	keyArg, ok := spec[core.FieldID]
	if !ok {
		return nil, &core.QueryError{Stage: idx, Detail: "$group requires an _id key expression"}
	}

	s := &groupStage{key: compileExpression(keyArg)}
	for name, accSpec := range spec {
		if name == core.FieldID {
			continue
		}
		accDoc, ok := accSpec.(map[string]any)
		if !ok || len(accDoc) != 1 {
			return nil, &core.QueryError{Stage: idx, Detail: fmt.Sprintf("accumulator for %q must be a single-operator document", name)}
		}
		for op, operand := range accDoc {
			newAcc, ok := accumulators[op]
			if !ok {
				return nil, &core.QueryError{Stage: idx, Detail: fmt.Sprintf("unknown accumulator %q for %q", op, name)}
			}
			s.fields = append(s.fields, groupField{
				name:    name,
				newAcc:  newAcc,
				operand: compileExpression(operand),
			})
		}
	}
	return s, nil
}

func (s *groupStage) run(docs []core.Document, exec *executor) ([]core.Document, error) {
	type bucket struct {
		key  any
		accs []accumulator
	}
	buckets := make(map[string]*bucket)
	var order []string // bucket insertion order, for deterministic output

	for _, doc := range docs {
		keyVal, resolved := s.key.eval(doc)
		if !resolved {
			keyVal = nil
		}
		mapKey := CanonicalKey(keyVal)
		b, ok := buckets[mapKey]
		if !ok {
			b = &bucket{key: keyVal, accs: make([]accumulator, len(s.fields))}
			for i, f := range s.fields {
				b.accs[i] = f.newAcc()
			}
			buckets[mapKey] = b
			order = append(order, mapKey)
		}
		for i, f := range s.fields {
			val, resolved := f.operand.eval(doc)
			b.accs[i].add(val, resolved)
		}
	}

	if err := exec.charge(len(order)); err != nil {
		return nil, err
	}
	out := make([]core.Document, 0, len(order))
	for _, mapKey := range order {
		b := buckets[mapKey]
		res := core.Document{core.FieldID: b.key}
		for i, f := range s.fields {
			res[f.name] = b.accs[i].result()
		}
		out = append(out, res)
	}
	return out, nil
}

// CanonicalKey renders a value as a stable string key. JSON marshaling sorts
// object keys and quotes strings, so structurally equal values always render
// identically and values of different kinds never collide, however deeply
// nested. Group buckets and distinct-value sets both key on it.
func CanonicalKey(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("!%v", v)
	}
	return string(data)
}
