package adt

import (
	"cmp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetInsertKeepsOrderAndUniqueness(t *testing.T) {
	s := NewSet()
	assert.False(t, s.Insert("dog"))
	assert.False(t, s.Insert("cat"))
	assert.True(t, s.Insert("dog"))
	assert.False(t, s.Insert("ant"))

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []string{"ant", "cat", "dog"}, s.Slice())
	assert.True(t, s.Contains("cat"))
	assert.False(t, s.Contains("cow"))

	assert.True(t, s.Remove("cat"))
	assert.False(t, s.Remove("cat"))
	assert.Equal(t, []string{"ant", "dog"}, s.Slice())

	s.Clear()
	assert.Equal(t, 0, s.Len())
}

func TestSetAlgebra(t *testing.T) {
	a := NewSet("doc1", "doc2", "doc4")
	b := NewSet("doc2", "doc3", "doc4")

	tests := []struct {
		name string
		got  *Set
		want []string
	}{
		{"union", Union(a, b), []string{"doc1", "doc2", "doc3", "doc4"}},
		{"intersection", Intersection(a, b), []string{"doc2", "doc4"}},
		{"difference a-b", Difference(a, b), []string{"doc1"}},
		{"difference b-a", Difference(b, a), []string{"doc3"}},
		{"union with empty", Union(a, EmptySet()), []string{"doc1", "doc2", "doc4"}},
		{"intersection with empty", Intersection(EmptySet(), b), []string{}},
		{"difference minus empty", Difference(b, EmptySet()), []string{"doc2", "doc3", "doc4"}},
		{"difference of empty", Difference(EmptySet(), a), []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got.Slice())
		})
	}

	// operands are untouched
	assert.Equal(t, []string{"doc1", "doc2", "doc4"}, a.Slice())
	assert.Equal(t, []string{"doc2", "doc3", "doc4"}, b.Slice())
}

func TestSetRangeStopsEarly(t *testing.T) {
	s := NewSet("a", "b", "c", "d")
	var seen []string
	s.Range(func(e string) bool {
		seen = append(seen, e)
		return e != "b"
	})
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestHashMapInsertReturnsPrevious(t *testing.T) {
	m := NewHashMap[int](4)
	_, existed := m.Insert("alpha", 1)
	assert.False(t, existed)
	prev, existed := m.Insert("alpha", 2)
	assert.True(t, existed)
	assert.Equal(t, 1, prev)
	assert.Equal(t, 1, m.Len())

	v, ok := m.Get("alpha")
	require.True(t, ok)
	assert.Equal(t, 2, v)

	_, ok = m.Get("beta")
	assert.False(t, ok)

	v, ok = m.Remove("alpha")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
	assert.Equal(t, 0, m.Len())
}

func TestHashMapRangeAndClear(t *testing.T) {
	m := NewHashMap[string](0)
	keys := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}
	for _, k := range keys {
		m.Insert(k, k+k)
	}
	seen := make(map[string]string)
	m.Range(func(k, v string) bool {
		seen[k] = v
		return true
	})
	assert.Len(t, seen, len(keys))
	assert.Equal(t, "cc", seen["c"])

	released := 0
	m.Clear(func(string) { released++ })
	assert.Equal(t, len(keys), released)
	assert.Equal(t, 0, m.Len())
	_, ok := m.Get("a")
	assert.False(t, ok)
}

func TestListDeque(t *testing.T) {
	l := NewList[int]()
	for i := 0; i < 20; i++ {
		l.PushBack(i)
	}
	l.PushFront(-1)
	l.PushFront(-2)
	require.Equal(t, 22, l.Len())
	assert.Equal(t, -2, l.At(0))
	assert.Equal(t, -2, l.PopFront())
	assert.Equal(t, 19, l.PopBack())
	assert.Equal(t, -1, l.PopFront())
	assert.Equal(t, 19, l.Len())
	assert.Equal(t, 0, l.At(0))
	assert.Equal(t, 18, l.At(18))
}

func TestListPopEmptyPanics(t *testing.T) {
	l := NewList[string]()
	assert.Panics(t, func() { l.PopFront() })
	assert.Panics(t, func() { l.PopBack() })
}

func TestListRemoveAndSortStable(t *testing.T) {
	type pair struct {
		key   int
		label string
	}
	l := NewList(pair{2, "a"}, pair{1, "b"}, pair{2, "c"}, pair{1, "d"})
	l.SortStable(func(x, y pair) int { return cmp.Compare(x.key, y.key) })
	assert.Equal(t, []pair{{1, "b"}, {1, "d"}, {2, "a"}, {2, "c"}}, l.Slice())

	removed := l.Remove(pair{2, "a"}, func(x, y pair) bool { return x == y })
	assert.True(t, removed)
	assert.False(t, l.Remove(pair{9, "z"}, func(x, y pair) bool { return x == y }))
	assert.Equal(t, []pair{{1, "b"}, {1, "d"}, {2, "c"}}, l.Slice())

	l.PushFront(pair{0, "first"})
	l.PushBack(pair{3, "last"})
	assert.Equal(t, 5, l.Len())
	assert.Equal(t, pair{0, "first"}, l.At(0))
	assert.Equal(t, pair{3, "last"}, l.At(4))
}

func TestListClearKeepsListUsable(t *testing.T) {
	l := NewList("x", "y")
	l.Clear()
	assert.Equal(t, 0, l.Len())
	l.PushBack("z")
	assert.Equal(t, []string{"z"}, l.Slice())
}
