package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		value any
		kind  ResultKind
	}{
		{name: "null", value: nil, kind: ResultScalar},
		{name: "string", value: "abc", kind: ResultScalar},
		{name: "number", value: int64(3), kind: ResultScalar},
		{name: "object", value: map[string]any{"a": 1}, kind: ResultScalar},
		{name: "array", value: []any{}, kind: ResultArray},
		{name: "element", value: &stubElement{}, kind: ResultElement},
		{name: "collection", value: stubCollection{}, kind: ResultElementCollection},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			r := Classify(tc.value)
			assert.Equal(t, tc.kind, r.Kind)
			assert.Equal(t, tc.kind.String(), r.Kind.String())
		})
	}
}

func TestConvert(t *testing.T) {
	t.Parallel()

	table := NewElementTable()
	a := &stubElement{doc: "doc-1", name: "a"}
	b := &stubElement{doc: "doc-1", name: "b"}

	got := Classify(map[string]any{
		"el":    a,
		"list":  []any{b, "x", a},
		"count": int64(2),
	}).Convert(table)

	assert.Equal(t, 2, table.Len())
	ha := table.Add(a)
	hb := table.Add(b)
	assert.Equal(t, map[string]any{
		"el":    ElementReference{ID: ha.ID},
		"list":  []any{ElementReference{ID: hb.ID}, "x", ElementReference{ID: ha.ID}},
		"count": int64(2),
	}, got)

	list, err := Classify(stubCollection{b, a}).ConvertList(table)
	require.NoError(t, err)
	assert.Equal(t, []any{ElementReference{ID: hb.ID}, ElementReference{ID: ha.ID}}, list)

	_, err = Classify("x").ConvertList(table)
	require.ErrorIs(t, err, ErrResultShape)
}
