package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/goapriori/internal/itemset"
)

func TestToValue(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected itemset.Value
	}{
		{name: "string", input: "A", expected: "A"},
		{name: "bytes", input: []byte("Well Developed"), expected: "Well Developed"},
		{name: "padding kept", input: "  B  ", expected: "  B  "},
		{name: "whitespace only", input: " ", expected: " "},
		{name: "int64", input: int64(7), expected: "7"},
		{name: "float", input: 2.5, expected: "2.5"},
		{name: "bool", input: true, expected: "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToValue(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestToValue_NullAndBlank(t *testing.T) {
	for _, in := range []interface{}{nil, "", []byte{}} {
		_, err := ToValue(in)
		assert.ErrorIs(t, err, ErrNullValue, "input %#v", in)
	}
}

func TestToValue_Unconvertible(t *testing.T) {
	_, err := ToValue(struct{ X int }{1})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNullValue)
}

func TestToValues_DropsNulls(t *testing.T) {
	got, err := ToValues([]interface{}{"A", nil, []byte("B"), "", "A "})
	require.NoError(t, err)
	assert.Equal(t, []itemset.Value{"A", "B", "A "}, got)
}

func TestToInt64(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected int64
	}{
		{name: "int64", input: int64(42), expected: 42},
		{name: "int", input: 100, expected: 100},
		{name: "uint32", input: uint32(2000), expected: 2000},
		{name: "bytes", input: []byte("17"), expected: 17},
		{name: "string", input: "9", expected: 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToInt64(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, err := ToInt64("many")
	assert.Error(t, err)
}
