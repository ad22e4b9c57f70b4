// Package adt provides the container types the index is built from: an
// ordered string set, a hashed string-keyed map and a double-ended sequence.
// None of them are safe for concurrent mutation; callers that share them
// across goroutines must hold their own lock.
package adt

import (
	"github.com/huandu/skiplist"
)

// SetView is the read-only face of a Set. Lookups that hand out sets owned
// by someone else return a SetView so the caller cannot mutate them.
type SetView interface {
	Contains(elem string) bool
	Len() int
	// Range calls fn for every element in ascending order until fn returns
	// false.
	Range(fn func(elem string) bool)
	// Slice returns a sorted copy of the elements.
	Slice() []string
}

// Set is an ordered set of strings backed by a skip list.
type Set struct {
	list *skiplist.SkipList
}

var _ SetView = (*Set)(nil)

// NewSet creates a set holding elems.
func NewSet(elems ...string) *Set {
	s := &Set{list: skiplist.New(skiplist.String)}
	for _, e := range elems {
		s.Insert(e)
	}
	return s
}

// EmptySet returns a view of a set with no elements.
func EmptySet() SetView {
	return emptySet
}

var emptySet SetView = NewSet()

// Insert adds elem and reports whether an equal element was already present.
func (s *Set) Insert(elem string) bool {
	if s.list.Get(elem) != nil {
		return true
	}
	s.list.Set(elem, struct{}{})
	return false
}

// Remove deletes elem and reports whether it was present.
func (s *Set) Remove(elem string) bool {
	return s.list.Remove(elem) != nil
}

func (s *Set) Contains(elem string) bool {
	return s.list.Get(elem) != nil
}

func (s *Set) Len() int {
	return s.list.Len()
}

func (s *Set) Range(fn func(elem string) bool) {
	for node := s.list.Front(); node != nil; node = node.Next() {
		if !fn(node.Key().(string)) {
			return
		}
	}
}

func (s *Set) Slice() []string {
	out := make([]string, 0, s.list.Len())
	for node := s.list.Front(); node != nil; node = node.Next() {
		out = append(out, node.Key().(string))
	}
	return out
}

// Clear removes every element.
func (s *Set) Clear() {
	s.list.Init()
}

// Union returns a new set with the elements of a and b.
func Union(a, b SetView) *Set {
	left, right := a.Slice(), b.Slice()
	result := NewSet()
	i, j := 0, 0
	for i < len(left) && j < len(right) {
		switch {
		case left[i] < right[j]:
			result.list.Set(left[i], struct{}{})
			i++
		case left[i] > right[j]:
			result.list.Set(right[j], struct{}{})
			j++
		default:
			result.list.Set(left[i], struct{}{})
			i++
			j++
		}
	}
	for ; i < len(left); i++ {
		result.list.Set(left[i], struct{}{})
	}
	for ; j < len(right); j++ {
		result.list.Set(right[j], struct{}{})
	}
	return result
}

// Intersection returns a new set with the elements present in both a and b.
func Intersection(a, b SetView) *Set {
	result := NewSet()
	if a.Len() == 0 || b.Len() == 0 {
		return result
	}
	left, right := a.Slice(), b.Slice()
	i, j := 0, 0
	for i < len(left) && j < len(right) {
		switch {
		case left[i] < right[j]:
			i++
		case left[i] > right[j]:
			j++
		default:
			result.list.Set(left[i], struct{}{})
			i++
			j++
		}
	}
	return result
}

// Difference returns a new set with the elements of a that are not in b.
func Difference(a, b SetView) *Set {
	result := NewSet()
	if b.Len() == 0 {
		a.Range(func(elem string) bool {
			result.list.Set(elem, struct{}{})
			return true
		})
		return result
	}
	left, right := a.Slice(), b.Slice()
	i, j := 0, 0
	for i < len(left) {
		if j >= len(right) || left[i] < right[j] {
			result.list.Set(left[i], struct{}{})
			i++
			continue
		}
		if left[i] > right[j] {
			j++
			continue
		}
		i++
		j++
	}
	return result
}
