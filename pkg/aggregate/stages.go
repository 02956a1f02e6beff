package aggregate

import (
	"fmt"
	"strings"

	"github.com/katha-begin/Montu-sub000/pkg/core"
	"github.com/katha-begin/Montu-sub000/pkg/query"
)

// matchStage filters the sequence with a compiled query predicate.
type matchStage struct {
	q *query.Query
}

func buildMatch(idx int, arg any) (stage, error) {
	filter, ok := arg.(map[string]any)
	if !ok {
		return nil, &core.QueryError{Stage: idx, Detail: fmt.Sprintf("$match takes a filter document, got %s", core.KindOf(arg))}
	}
	q, err := query.Compile(filter)
	if err != nil {
		return nil, &core.QueryError{Stage: idx, Detail: err.Error()}
	}
	return &matchStage{q: q}, nil
}

func (s *matchStage) run(docs []core.Document, exec *executor) ([]core.Document, error) {
	out := make([]core.Document, 0, len(docs))
	for _, doc := range docs {
		if s.q.Matches(doc) {
			out = append(out, doc)
		}
	}
	if err := exec.charge(len(out)); err != nil {
		return nil, err
	}
	return out, nil
}

// sortStage orders the sequence by one or more keys. The specification is a
// sequence of {"field": direction} pairs (1 ascending, -1 descending) so key
// precedence survives JSON decoding; a single-key document is accepted
// directly.
type sortStage struct {
	keys []core.SortKey
}

func buildSort(idx int, arg any) (stage, error) {
	keys, err := ParseSortSpec(arg)
	if err != nil {
		return nil, &core.QueryError{Stage: idx, Detail: err.Error()}
	}
	return &sortStage{keys: keys}, nil
}

// ParseSortSpec decodes a sort specification into ordered sort keys. Accepted
// shapes: a single-key document {"field": 1|-1}, or an array of such
// documents / of ["field", direction] pairs for multi-key sorts.
func ParseSortSpec(arg any) ([]core.SortKey, error) {
	switch spec := arg.(type) {
	case map[string]any:
		if len(spec) != 1 {
			return nil, fmt.Errorf("multi-key sort must be an array of single-key documents to preserve key order")
		}
		for field, dir := range spec {
			key, err := sortKey(field, dir)
			if err != nil {
				return nil, err
			}
			return []core.SortKey{key}, nil
		}
	case []any:
		if len(spec) == 0 {
			return nil, fmt.Errorf("empty sort specification")
		}
		keys := make([]core.SortKey, 0, len(spec))
		for _, item := range spec {
			switch entry := item.(type) {
			case map[string]any:
				if len(entry) != 1 {
					return nil, fmt.Errorf("sort entry must have exactly one key")
				}
				for field, dir := range entry {
					key, err := sortKey(field, dir)
					if err != nil {
						return nil, err
					}
					keys = append(keys, key)
				}
			case []any:
				if len(entry) != 2 {
					return nil, fmt.Errorf("sort pair must be [field, direction]")
				}
				field, ok := entry[0].(string)
				if !ok {
					return nil, fmt.Errorf("sort field must be a string, got %s", core.KindOf(entry[0]))
				}
				key, err := sortKey(field, entry[1])
				if err != nil {
					return nil, err
				}
				keys = append(keys, key)
			default:
				return nil, fmt.Errorf("sort entry must be a document or [field, direction] pair, got %s", core.KindOf(item))
			}
		}
		return keys, nil
	}
	return nil, fmt.Errorf("sort specification must be a document or array, got %s", core.KindOf(arg))
}

func sortKey(field string, dir any) (core.SortKey, error) {
	n, ok := core.AsNumber(dir)
	if !ok || (n != 1 && n != -1) {
		return core.SortKey{}, fmt.Errorf("sort direction for %q must be 1 or -1", field)
	}
	return core.SortKey{Field: field, Descending: n == -1}, nil
}

func (s *sortStage) run(docs []core.Document, exec *executor) ([]core.Document, error) {
	if err := exec.charge(len(docs)); err != nil {
		return nil, err
	}
	out := make([]core.Document, len(docs))
	copy(out, docs)
	core.SortDocuments(out, s.keys)
	return out, nil
}

// skipStage drops the first n documents.
type skipStage struct {
	n int
}

func buildSkip(idx int, arg any) (stage, error) {
	n, err := nonNegativeInt("$skip", arg)
	if err != nil {
		return nil, &core.QueryError{Stage: idx, Detail: err.Error()}
	}
	return &skipStage{n: n}, nil
}

func (s *skipStage) run(docs []core.Document, _ *executor) ([]core.Document, error) {
	if s.n >= len(docs) {
		return []core.Document{}, nil
	}
	return docs[s.n:], nil
}

// limitStage keeps at most n documents.
type limitStage struct {
	n int
}

func buildLimit(idx int, arg any) (stage, error) {
	n, err := nonNegativeInt("$limit", arg)
	if err != nil {
		return nil, &core.QueryError{Stage: idx, Detail: err.Error()}
	}
	return &limitStage{n: n}, nil
}

func (s *limitStage) run(docs []core.Document, _ *executor) ([]core.Document, error) {
	if s.n >= len(docs) {
		return docs, nil
	}
	return docs[:s.n], nil
}

func nonNegativeInt(name string, arg any) (int, error) {
	n, ok := core.AsNumber(arg)
	if !ok || n < 0 || n != float64(int(n)) {
		return 0, fmt.Errorf("%s takes a non-negative integer, got %v", name, arg)
	}
	return int(n), nil
}

// projectStage reshapes each document: include mode keeps the listed fields,
// exclude mode drops them, and a "$field" reference computes a renamed field
// from an existing one. Include and exclude cannot be mixed, except that the
// identifier may always be excluded.
type projectStage struct {
	include  map[string]bool
	exclude  map[string]bool
	computed map[string]string // output field -> source path
}

func buildProject(idx int, arg any) (stage, error) {
	spec, ok := arg.(map[string]any)
	if !ok || len(spec) == 0 {
		return nil, &core.QueryError{Stage: idx, Detail: "$project takes a non-empty field document"}
	}
	s := &projectStage{
		include:  make(map[string]bool),
		exclude:  make(map[string]bool),
		computed: make(map[string]string),
	}
	for field, val := range spec {
		switch v := val.(type) {
		case string:
			if !strings.HasPrefix(v, "$") {
				return nil, &core.QueryError{Stage: idx, Detail: fmt.Sprintf("$project value for %q must be 1, 0, or a \"$field\" reference", field)}
			}
			s.computed[field] = strings.TrimPrefix(v, "$")
		case bool:
			if v {
				s.include[field] = true
			} else {
				s.exclude[field] = true
			}
		default:
			n, ok := core.AsNumber(val)
			if !ok {
				return nil, &core.QueryError{Stage: idx, Detail: fmt.Sprintf("$project value for %q must be 1, 0, or a \"$field\" reference", field)}
			}
			if n != 0 {
				s.include[field] = true
			} else {
				s.exclude[field] = true
			}
		}
	}
	for field := range s.exclude {
		if field != core.FieldID && (len(s.include) > 0 || len(s.computed) > 0) {
			return nil, &core.QueryError{Stage: idx, Detail: "$project cannot mix included and excluded fields"}
		}
	}
	return s, nil
}

func (s *projectStage) run(docs []core.Document, exec *executor) ([]core.Document, error) {
	if err := exec.charge(len(docs)); err != nil {
		return nil, err
	}
	out := make([]core.Document, 0, len(docs))
	for _, doc := range docs {
		out = append(out, s.projectDoc(doc))
	}
	return out, nil
}

func (s *projectStage) projectDoc(doc core.Document) core.Document {
	if len(s.include) == 0 && len(s.computed) == 0 {
		// Pure exclusion.
		res := core.DeepCopy(doc)
		for field := range s.exclude {
			core.DeletePath(res, field)
		}
		return res
	}
	res := make(core.Document, len(s.include)+len(s.computed)+1)
	if id, ok := doc[core.FieldID]; ok && !s.exclude[core.FieldID] {
		res[core.FieldID] = id
	}
	for field := range s.include {
		if val, ok := core.Resolve(doc, field); ok {
			core.SetPath(res, field, deepCopyValue(val))
		}
	}
	for field, src := range s.computed {
		if val, ok := core.Resolve(doc, src); ok {
			res[field] = deepCopyValue(val)
		}
	}
	return res
}

// countStage collapses the sequence to one document holding the count under
// the given field name. It is terminal in spirit: any later stage just sees a
// one-document sequence.
type countStage struct {
	field string
}

func buildCount(idx int, arg any) (stage, error) {
	field, ok := arg.(string)
	if !ok || field == "" {
		return nil, &core.QueryError{Stage: idx, Detail: "$count takes a non-empty output field name"}
	}
	return &countStage{field: field}, nil
}

func (s *countStage) run(docs []core.Document, _ *executor) ([]core.Document, error) {
	return []core.Document{{s.field: float64(len(docs))}}, nil
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
