package catindex

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/goapriori/internal/itemset"
)

type fakeCatalog struct {
	columns  []string
	distinct map[itemset.Category][]itemset.Value
	err      error
	queried  []itemset.Category
}

func (f *fakeCatalog) Columns(ctx context.Context) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.columns, nil
}

func (f *fakeCatalog) DistinctValues(ctx context.Context, c itemset.Category) ([]itemset.Value, error) {
	f.queried = append(f.queried, c)
	return f.distinct[c], nil
}

func gradesIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := Build(
		[]itemset.Category{"overall_grade", "env_grade"},
		map[itemset.Category][]itemset.Value{
			"overall_grade": {"A2", "A1", "A1"},
			"env_grade":     {"B1", "B3"},
		},
	)
	require.NoError(t, err)
	return idx
}

func TestBuild(t *testing.T) {
	idx := gradesIndex(t)

	assert.Equal(t, []itemset.Category{"overall_grade", "env_grade"}, idx.Categories())
	assert.Equal(t, []itemset.Value{"A1", "A2"}, idx.Values("overall_grade"))
	assert.Equal(t, []itemset.Value{"A1", "A2", "B1", "B3"}, idx.AllValues())
	assert.Equal(t, 4, idx.Size())

	cat, ok := idx.CategoryOf("B3")
	assert.True(t, ok)
	assert.Equal(t, itemset.Category("env_grade"), cat)

	_, ok = idx.CategoryOf("Z9")
	assert.False(t, ok)
}

func TestBuild_ValueConflict(t *testing.T) {
	_, err := Build(
		[]itemset.Category{"overall_grade", "env_grade"},
		map[itemset.Category][]itemset.Value{
			"overall_grade": {"A", "B"},
			"env_grade":     {"B", "C"},
		},
	)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValueConflict))

	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, itemset.Value("B"), conflict.Value)
	assert.Equal(t, itemset.Category("overall_grade"), conflict.First)
	assert.Equal(t, itemset.Category("env_grade"), conflict.Second)
}

func TestBuild_RejectsEmptyAndDuplicateCategories(t *testing.T) {
	_, err := Build(nil, nil)
	assert.ErrorIs(t, err, ErrEmptyCategories)

	_, err = Build([]itemset.Category{"a", "a"}, map[itemset.Category][]itemset.Value{"a": {"x"}})
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	catalog := &fakeCatalog{
		columns: []string{"dbn", "overall_grade", "env_grade"},
		distinct: map[itemset.Category][]itemset.Value{
			"overall_grade": {"A", "B"},
			"env_grade":     {"C"},
		},
	}

	idx, err := Load(context.Background(), catalog, []itemset.Category{"overall_grade", "env_grade"})

	require.NoError(t, err)
	assert.Equal(t, 3, idx.Size())
	assert.Equal(t, []itemset.Category{"overall_grade", "env_grade"}, catalog.queried)
}

func TestLoad_UnknownCategory(t *testing.T) {
	catalog := &fakeCatalog{columns: []string{"overall_grade"}}

	_, err := Load(context.Background(), catalog, []itemset.Category{"overall_grade", "missing"})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownCategory)
	assert.Empty(t, catalog.queried, "no distinct query should run for an invalid request")
}

func TestLoad_CatalogError(t *testing.T) {
	catalog := &fakeCatalog{err: errors.New("connection refused")}

	_, err := Load(context.Background(), catalog, []itemset.Category{"a"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestHasUniqueCategories(t *testing.T) {
	idx := gradesIndex(t)

	tests := []struct {
		name string
		set  itemset.ItemSet
		want bool
	}{
		{"single value", itemset.New("A1"), true},
		{"one per category", itemset.New("A1", "B1"), true},
		{"two from one category", itemset.New("A1", "A2"), false},
		{"unknown value", itemset.New("A1", "Q"), false},
		{"empty", itemset.New(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, idx.HasUniqueCategories(tt.set))
		})
	}
}

func TestPredicate(t *testing.T) {
	idx := gradesIndex(t)

	p, err := idx.Predicate(itemset.New("B1", "A2"))
	require.NoError(t, err)
	assert.Equal(t, itemset.Predicate{"overall_grade": "A2", "env_grade": "B1"}, p)

	p, err = idx.Predicate(itemset.New())
	require.NoError(t, err)
	assert.Empty(t, p)

	_, err = idx.Predicate(itemset.New("A1", "A2"))
	assert.Error(t, err)

	_, err = idx.Predicate(itemset.New("nope"))
	assert.Error(t, err)
}

func TestDescribeSet_OrdersByCategory(t *testing.T) {
	idx := gradesIndex(t)

	// "B1" sorts after "A2" lexically but env_grade is the second category,
	// so use a value pair where lexical and category order disagree.
	idx2, err := Build(
		[]itemset.Category{"overall_grade", "env_grade"},
		map[itemset.Category][]itemset.Value{
			"overall_grade": {"Z"},
			"env_grade":     {"A"},
		},
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"overall_grade = A1", "env_grade = B1"}, idx.DescribeSet(itemset.New("B1", "A1")))
	assert.Equal(t, []string{"overall_grade = Z", "env_grade = A"}, idx2.DescribeSet(itemset.New("A", "Z")))
	assert.Equal(t, "other", idx.Describe("other"))
}
