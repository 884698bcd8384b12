package statement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DefaultsNilParameters(t *testing.T) {
	st := New("MATCH (n) RETURN n", nil, false, 0)

	require.NotNil(t, st.Parameters)
	assert.Equal(t, map[string]any{LimitSizeKey: 0}, st.Parameters)
	assert.False(t, st.Iterative)
	assert.Equal(t, 0, st.BatchSize)
}

func TestNew_InjectsLimitSize(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]any
		size   int
	}{
		{"no params", nil, 100},
		{"other params", map[string]any{"UPDATE_TAG": 7}, 50},
		{"caller limit overwritten", map[string]any{LimitSizeKey: 999}, 10},
		{"zero batch", map[string]any{LimitSizeKey: 5}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := New("q", tt.params, true, tt.size)
			assert.Equal(t, tt.size, st.Parameters[LimitSizeKey])
		})
	}
}

func TestNew_CopiesCallerParameters(t *testing.T) {
	params := map[string]any{"a": 1}
	st := New("q", params, false, 3)

	params["a"] = 2
	params["b"] = 3

	assert.Equal(t, 1, st.Parameters["a"])
	assert.NotContains(t, st.Parameters, "b")
	assert.NotContains(t, params, LimitSizeKey, "caller map must not gain LIMIT_SIZE")
}

func TestMergeParameters_LaterKeysWin(t *testing.T) {
	st := New("q", map[string]any{"keep": "x"}, false, 0)

	st.MergeParameters(map[string]any{"a": 1})
	st.MergeParameters(map[string]any{"a": 2, "b": 3})

	assert.Equal(t, map[string]any{
		"keep":       "x",
		"a":          2,
		"b":          3,
		LimitSizeKey: 0,
	}, st.Parameters)
}

func TestMergeParameters_ReplacesMap(t *testing.T) {
	st := New("q", nil, false, 0)
	before := st.Parameters

	st.MergeParameters(map[string]any{"a": 1})

	assert.NotContains(t, before, "a", "previous map must not be mutated")
	assert.Contains(t, st.Parameters, "a")
}

func TestMergeParameters_DoesNotReinjectLimitSize(t *testing.T) {
	st := New("q", nil, false, 10)

	st.MergeParameters(map[string]any{LimitSizeKey: 42})

	assert.Equal(t, 42, st.Parameters[LimitSizeKey])
	assert.Equal(t, 10, st.BatchSize)

	st.InjectBatchSize()
	assert.Equal(t, 10, st.Parameters[LimitSizeKey])
}

func TestMergeParameters_NilExtra(t *testing.T) {
	st := New("q", map[string]any{"a": 1}, false, 2)
	st.MergeParameters(nil)
	assert.Equal(t, map[string]any{"a": 1, LimitSizeKey: 2}, st.Parameters)
}

func TestInjectBatchSize_NilParameters(t *testing.T) {
	st := &Statement{Query: "q", BatchSize: 4}
	st.InjectBatchSize()
	assert.Equal(t, map[string]any{LimitSizeKey: 4}, st.Parameters)
}

func TestClone_IndependentParameters(t *testing.T) {
	st := New("q", map[string]any{"a": 1}, true, 5)
	c := st.Clone()

	c.MergeParameters(map[string]any{"a": 2})
	c.Parameters["z"] = true

	assert.Equal(t, 1, st.Parameters["a"])
	assert.NotContains(t, st.Parameters, "z")
	assert.Equal(t, st.Query, c.Query)
	assert.Equal(t, st.Iterative, c.Iterative)
	assert.Equal(t, st.BatchSize, c.BatchSize)
}

func TestDocument_RoundTrip(t *testing.T) {
	statements := []*Statement{
		New("", nil, false, 0),
		New("MATCH (n) RETURN n", map[string]any{"x": "y"}, false, 0),
		New("MATCH (n) WITH n LIMIT $LIMIT_SIZE DETACH DELETE n RETURN count(*) AS TotalCompleted",
			map[string]any{"UPDATE_TAG": int64(1700000000), "nested": map[string]any{"k": []any{1, 2}}},
			true, 100),
	}

	for _, st := range statements {
		got := FromDocument(st.ToDocument())
		assert.Equal(t, st, got)
	}
}

func TestDocument_Defaults(t *testing.T) {
	st := FromDocument(Document{})

	assert.Equal(t, "", st.Query)
	assert.Equal(t, map[string]any{LimitSizeKey: 0}, st.Parameters)
	assert.False(t, st.Iterative)
	assert.Equal(t, 0, st.BatchSize)
}

func TestToDocument_CopiesParameters(t *testing.T) {
	st := New("q", map[string]any{"a": 1}, false, 0)
	doc := st.ToDocument()
	doc.Parameters["a"] = 99

	assert.Equal(t, 1, st.Parameters["a"])
}
