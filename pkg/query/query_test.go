package query

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katha-begin/Montu-sub000/pkg/core"
)

func mustMatch(t *testing.T, doc, filter core.Document) bool {
	t.Helper()
	ok, err := Match(doc, filter)
	require.NoError(t, err)
	return ok
}

func TestMatch_ImplicitEquality(t *testing.T) {
	doc := core.Document{"status": "active", "priority": float64(3)}

	assert.True(t, mustMatch(t, doc, core.Document{"status": "active"}))
	assert.False(t, mustMatch(t, doc, core.Document{"status": "done"}))
	assert.False(t, mustMatch(t, doc, core.Document{"missing": "x"}))
	assert.True(t, mustMatch(t, doc, core.Document{}), "empty filter matches everything")
}

func TestMatch_NoNumberStringCoercion(t *testing.T) {
	doc := core.Document{"version": float64(3)}
	assert.False(t, mustMatch(t, doc, core.Document{"version": "3"}))
	assert.True(t, mustMatch(t, doc, core.Document{"version": float64(3)}))
}

func TestMatch_ComparisonOperators(t *testing.T) {
	doc := core.Document{"frames": float64(120), "code": "sq010"}

	cases := []struct {
		filter core.Document
		want   bool
	}{
		{core.Document{"frames": map[string]any{"$gt": float64(100)}}, true},
		{core.Document{"frames": map[string]any{"$gt": float64(120)}}, false},
		{core.Document{"frames": map[string]any{"$gte": float64(120)}}, true},
		{core.Document{"frames": map[string]any{"$lt": float64(120)}}, false},
		{core.Document{"frames": map[string]any{"$lte": float64(120)}}, true},
		{core.Document{"code": map[string]any{"$gt": "sq005"}}, true},
		// Cross-kind comparison is a non-match, not an error.
		{core.Document{"frames": map[string]any{"$gt": "100"}}, false},
		// Range: operators on the same field are a conjunction.
		{core.Document{"frames": map[string]any{"$gte": float64(100), "$lt": float64(200)}}, true},
		{core.Document{"frames": map[string]any{"$gte": float64(100), "$lt": float64(110)}}, false},
	}
	for i, tc := range cases {
		assert.Equal(t, tc.want, mustMatch(t, doc, tc.filter), "case %d: %v", i, tc.filter)
	}
}

func TestMatch_NeAndAbsentFields(t *testing.T) {
	doc := core.Document{"status": "active"}

	assert.True(t, mustMatch(t, doc, core.Document{"status": map[string]any{"$ne": "done"}}))
	assert.False(t, mustMatch(t, doc, core.Document{"status": map[string]any{"$ne": "active"}}))
	// Negated operators match documents where the field is absent.
	assert.True(t, mustMatch(t, doc, core.Document{"missing": map[string]any{"$ne": "x"}}))
	assert.True(t, mustMatch(t, doc, core.Document{"missing": map[string]any{"$nin": []any{"x"}}}))
	// Positive operators do not.
	assert.False(t, mustMatch(t, doc, core.Document{"missing": map[string]any{"$eq": "x"}}))
	assert.False(t, mustMatch(t, doc, core.Document{"missing": map[string]any{"$gt": float64(0)}}))
}

func TestMatch_Membership(t *testing.T) {
	doc := core.Document{"status": "review", "tags": []any{"comp", "urgent"}}

	assert.True(t, mustMatch(t, doc, core.Document{"status": map[string]any{"$in": []any{"review", "final"}}}))
	assert.False(t, mustMatch(t, doc, core.Document{"status": map[string]any{"$in": []any{"final"}}}))
	assert.True(t, mustMatch(t, doc, core.Document{"status": map[string]any{"$nin": []any{"final"}}}))
	// Array field intersects the set.
	assert.True(t, mustMatch(t, doc, core.Document{"tags": map[string]any{"$in": []any{"urgent"}}}))
	assert.False(t, mustMatch(t, doc, core.Document{"tags": map[string]any{"$nin": []any{"urgent"}}}))
}

func TestMatch_ArrayContains(t *testing.T) {
	doc := core.Document{"tags": []any{"comp", "urgent"}}

	// Scalar target against array field has contains semantics.
	assert.True(t, mustMatch(t, doc, core.Document{"tags": "comp"}))
	assert.False(t, mustMatch(t, doc, core.Document{"tags": "roto"}))
	// Array target compares wholesale.
	assert.True(t, mustMatch(t, doc, core.Document{"tags": []any{"comp", "urgent"}}))
	assert.False(t, mustMatch(t, doc, core.Document{"tags": []any{"urgent", "comp"}}))
}

func TestMatch_Regex(t *testing.T) {
	doc := core.Document{"code": "EP01_SQ010"}

	assert.True(t, mustMatch(t, doc, core.Document{"code": map[string]any{"$regex": "^EP01"}}))
	assert.False(t, mustMatch(t, doc, core.Document{"code": map[string]any{"$regex": "^ep01"}}))
	assert.True(t, mustMatch(t, doc, core.Document{"code": map[string]any{"$regex": "^ep01", "$options": "i"}}))
	// Non-string values are never regex candidates.
	assert.False(t, mustMatch(t, core.Document{"code": float64(1)}, core.Document{"code": map[string]any{"$regex": "1"}}))
}

func TestMatch_Combinators(t *testing.T) {
	doc := core.Document{"status": "active", "priority": float64(5)}

	assert.True(t, mustMatch(t, doc, core.Document{
		"$or": []any{
			map[string]any{"status": "done"},
			map[string]any{"priority": map[string]any{"$gte": float64(5)}},
		},
	}))
	assert.False(t, mustMatch(t, doc, core.Document{
		"$and": []any{
			map[string]any{"status": "active"},
			map[string]any{"priority": map[string]any{"$lt": float64(5)}},
		},
	}))
	// Nested combinators.
	assert.True(t, mustMatch(t, doc, core.Document{
		"$and": []any{
			map[string]any{"status": "active"},
			map[string]any{"$or": []any{
				map[string]any{"priority": float64(5)},
				map[string]any{"priority": float64(6)},
			}},
		},
	}))
}

func TestMatch_DotPaths(t *testing.T) {
	doc := core.Document{
		"shot": map[string]any{"sequence": "sq010"},
		"versions": []any{
			map[string]any{"status": "approved"},
			map[string]any{"status": "pending"},
		},
	}
	assert.True(t, mustMatch(t, doc, core.Document{"shot.sequence": "sq010"}))
	// Fan-out over object arrays: any element matching suffices.
	assert.True(t, mustMatch(t, doc, core.Document{"versions.status": "approved"}))
	assert.False(t, mustMatch(t, doc, core.Document{"versions.status": "rejected"}))
}

func TestMatch_NestedLiteralEquality(t *testing.T) {
	doc := core.Document{"meta": map[string]any{"dept": "light", "lead": "amy"}}

	// A plain nested document is an equality literal, compared wholesale.
	assert.True(t, mustMatch(t, doc, core.Document{"meta": map[string]any{"dept": "light", "lead": "amy"}}))
	assert.False(t, mustMatch(t, doc, core.Document{"meta": map[string]any{"dept": "light"}}))
}

func TestCompile_Errors(t *testing.T) {
	cases := []core.Document{
		{"f": map[string]any{"$unknown": 1}},
		{"$not": []any{}},
		{"$or": "not-an-array"},
		{"$or": []any{}},
		{"$and": []any{"not-a-doc"}},
		{"f": map[string]any{"$in": "not-an-array"}},
		{"f": map[string]any{"$regex": 42}},
		{"f": map[string]any{"$regex": "(unclosed"}},
	}
	for i, filter := range cases {
		_, err := Compile(filter)
		require.Error(t, err, "case %d", i)
		assert.ErrorIs(t, err, core.ErrQuery, "case %d", i)
	}
}

func TestCompile_OptionsOnlyDocIsEmpty(t *testing.T) {
	_, err := Compile(core.Document{"f": map[string]any{"$options": "i"}})
	assert.Error(t, err)
}

// TestMatches_AgainstNaiveFilter cross-checks the compiled matcher against a
// straightforward re-evaluation over randomly generated documents.
func TestMatches_AgainstNaiveFilter(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	statuses := []string{"pending", "active", "done"}

	docs := make([]core.Document, 0, 200)
	for i := 0; i < 200; i++ {
		doc := core.Document{
			"n":      float64(rng.Intn(20)),
			"status": statuses[rng.Intn(len(statuses))],
		}
		if rng.Intn(2) == 0 {
			doc["opt"] = float64(rng.Intn(5))
		}
		docs = append(docs, doc)
	}

	naive := func(doc core.Document) bool {
		n := doc["n"].(float64)
		if !(n >= 5 && n < 15) {
			return false
		}
		return doc["status"] == "active" || doc["status"] == "pending"
	}

	q, err := Compile(core.Document{
		"n": map[string]any{"$gte": float64(5), "$lt": float64(15)},
		"$or": []any{
			map[string]any{"status": "active"},
			map[string]any{"status": "pending"},
		},
	})
	require.NoError(t, err)

	for i, doc := range docs {
		assert.Equal(t, naive(doc), q.Matches(doc), fmt.Sprintf("doc %d: %v", i, doc))
	}
}
