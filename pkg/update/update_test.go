package update

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katha-begin/Montu-sub000/pkg/core"
)

func TestApply_Set(t *testing.T) {
	doc := core.Document{"status": "pending"}
	out, err := Apply(doc, core.Document{"$set": map[string]any{"status": "active", "meta.lead": "amy"}})
	require.NoError(t, err)

	assert.Equal(t, "active", out["status"])
	lead, ok := core.Resolve(out, "meta.lead")
	require.True(t, ok, "$set creates intermediate documents")
	assert.Equal(t, "amy", lead)

	// Input is untouched.
	assert.Equal(t, "pending", doc["status"])
}

func TestApply_Unset(t *testing.T) {
	doc := core.Document{"status": "active", "tmp": float64(1)}
	out, err := Apply(doc, core.Document{"$unset": map[string]any{"tmp": "", "absent": ""}})
	require.NoError(t, err)

	_, ok := out["tmp"]
	assert.False(t, ok)
	assert.Equal(t, "active", out["status"])
}

func TestApply_Inc(t *testing.T) {
	doc := core.Document{"retries": float64(2)}

	out, err := Apply(doc, core.Document{"$inc": map[string]any{"retries": float64(3), "fresh": float64(1)}})
	require.NoError(t, err)
	assert.Equal(t, float64(5), out["retries"])
	assert.Equal(t, float64(1), out["fresh"], "absent field increments from zero")

	_, err = Apply(core.Document{"retries": "two"}, core.Document{"$inc": map[string]any{"retries": float64(1)}})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrValidation)

	_, err = Apply(doc, core.Document{"$inc": map[string]any{"retries": "three"}})
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestApply_IncIsDeterministic(t *testing.T) {
	// The same spec applied n times lands exactly n deltas.
	u, err := Compile(core.Document{"$inc": map[string]any{"n": float64(2)}})
	require.NoError(t, err)

	doc := core.Document{"n": float64(0)}
	for i := 0; i < 100; i++ {
		doc, err = u.Apply(doc)
		require.NoError(t, err)
	}
	assert.Equal(t, float64(200), doc["n"])
}

func TestApply_PushPull(t *testing.T) {
	doc := core.Document{"tags": []any{"wip"}}

	out, err := Apply(doc, core.Document{"$push": map[string]any{"tags": "urgent", "log": "created"}})
	require.NoError(t, err)
	assert.Equal(t, []any{"wip", "urgent"}, out["tags"])
	assert.Equal(t, []any{"created"}, out["log"], "$push creates the array")

	out, err = Apply(out, core.Document{"$pull": map[string]any{"tags": "wip", "absent": "x"}})
	require.NoError(t, err)
	assert.Equal(t, []any{"urgent"}, out["tags"])

	// Pulling the last element keeps an empty array, not null.
	out, err = Apply(out, core.Document{"$pull": map[string]any{"tags": "urgent"}})
	require.NoError(t, err)
	assert.Equal(t, []any{}, out["tags"])

	_, err = Apply(core.Document{"tags": "scalar"}, core.Document{"$push": map[string]any{"tags": "x"}})
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestApply_PullRemovesAllEqual(t *testing.T) {
	doc := core.Document{"nums": []any{float64(1), float64(2), float64(1)}}
	out, err := Apply(doc, core.Document{"$pull": map[string]any{"nums": float64(1)}})
	require.NoError(t, err)
	assert.Equal(t, []any{float64(2)}, out["nums"])
}

func TestApply_OperatorOrderIsFixed(t *testing.T) {
	// $unset runs before $set regardless of spec key order, so setting and
	// unsetting the same field leaves the set value.
	doc := core.Document{"f": "old"}
	out, err := Apply(doc, core.Document{
		"$set":   map[string]any{"f": "new"},
		"$unset": map[string]any{"f": ""},
	})
	require.NoError(t, err)
	assert.Equal(t, "new", out["f"])
}

func TestApply_FailedOperatorLeavesInputIntact(t *testing.T) {
	doc := core.Document{"tags": "scalar", "n": float64(1)}
	_, err := Apply(doc, core.Document{
		"$inc":  map[string]any{"n": float64(1)},
		"$push": map[string]any{"tags": "x"},
	})
	require.Error(t, err)

	want := core.Document{"tags": "scalar", "n": float64(1)}
	if diff := cmp.Diff(want, doc); diff != "" {
		t.Errorf("input document mutated (-want +got):\n%s", diff)
	}
}

func TestCompile_Errors(t *testing.T) {
	_, err := Compile(core.Document{})
	assert.Error(t, err, "empty spec")

	_, err = Compile(core.Document{"$rename": map[string]any{"a": "b"}})
	assert.ErrorIs(t, err, core.ErrQuery, "unknown operator")

	_, err = Compile(core.Document{"$set": "not-a-doc"})
	assert.ErrorIs(t, err, core.ErrQuery)

	_, err = Compile(core.Document{"$set": map[string]any{core.FieldID: "new-id"}})
	assert.ErrorIs(t, err, core.ErrValidation, "identifier is immutable")

	_, err = Compile(core.Document{"$inc": map[string]any{core.FieldID: float64(1)}})
	assert.ErrorIs(t, err, core.ErrValidation)
}
