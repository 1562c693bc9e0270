package collection_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/tomato/pkg/collection"
)

func TestMap(t *testing.T) {
	got := collection.Map([]string{"a", "b"}, strings.ToUpper)
	assert.Equal(t, []string{"A", "B"}, got)
}

func TestFilterReject(t *testing.T) {
	even := func(n int) bool { return n%2 == 0 }
	assert.Equal(t, []int{2, 4}, collection.Filter([]int{1, 2, 3, 4}, even))
	assert.Equal(t, []int{1, 3}, collection.Reject([]int{1, 2, 3, 4}, even))
	assert.Nil(t, collection.Filter([]int{1, 3}, even))
}

func TestFirstContains(t *testing.T) {
	v, ok := collection.First([]int{1, 2, 3}, func(n int) bool { return n > 1 })
	assert.True(t, ok)
	assert.Equal(t, 2, v)

	_, ok = collection.First([]int{1, 2, 3}, func(n int) bool { return n > 9 })
	assert.False(t, ok)

	assert.True(t, collection.Contains([]int{1, 2}, func(n int) bool { return n == 2 }))
	assert.False(t, collection.Contains([]int{1, 2}, func(n int) bool { return n == 5 }))
}

func TestGroupBy(t *testing.T) {
	got := collection.GroupBy([]string{"ant", "bee", "ape"}, func(s string) string {
		return s[:1]
	})
	assert.Equal(t, map[string][]string{"a": {"ant", "ape"}, "b": {"bee"}}, got)
}

func TestUnique(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, collection.Unique([]string{"a", "b", "a", "b"}))
}

func TestSortBy(t *testing.T) {
	got := collection.SortBy([]int{3, 1, 2}, func(a, b int) bool { return a < b })
	assert.Equal(t, []int{1, 2, 3}, got)
}

func TestReduceSum(t *testing.T) {
	total := collection.Reduce([]int{1, 2, 3}, 0, func(acc, n int) int { return acc + n })
	assert.Equal(t, 6, total)

	sum := collection.Sum([]float64{1.5, 2.5}, func(f float64) float64 { return f })
	assert.Equal(t, 4.0, sum)
}
