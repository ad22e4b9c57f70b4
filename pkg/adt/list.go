package adt

import "slices"

// List is a double-ended sequence backed by a ring buffer.
type List[T any] struct {
	buf  []T
	head int
	n    int
}

// NewList creates a list holding items in order.
func NewList[T any](items ...T) *List[T] {
	l := &List[T]{}
	for _, it := range items {
		l.PushBack(it)
	}
	return l
}

func (l *List[T]) Len() int {
	return l.n
}

func (l *List[T]) grow() {
	if l.n < len(l.buf) {
		return
	}
	size := len(l.buf) * 2
	if size == 0 {
		size = 8
	}
	next := make([]T, size)
	for i := 0; i < l.n; i++ {
		next[i] = l.buf[(l.head+i)%len(l.buf)]
	}
	l.buf = next
	l.head = 0
}

func (l *List[T]) PushBack(v T) {
	l.grow()
	l.buf[(l.head+l.n)%len(l.buf)] = v
	l.n++
}

func (l *List[T]) PushFront(v T) {
	l.grow()
	l.head = (l.head - 1 + len(l.buf)) % len(l.buf)
	l.buf[l.head] = v
	l.n++
}

// PopFront removes and returns the first item. It panics on an empty list.
func (l *List[T]) PopFront() T {
	if l.n == 0 {
		panic("adt: PopFront on empty list")
	}
	var zero T
	v := l.buf[l.head]
	l.buf[l.head] = zero
	l.head = (l.head + 1) % len(l.buf)
	l.n--
	return v
}

// PopBack removes and returns the last item. It panics on an empty list.
func (l *List[T]) PopBack() T {
	if l.n == 0 {
		panic("adt: PopBack on empty list")
	}
	var zero T
	idx := (l.head + l.n - 1) % len(l.buf)
	v := l.buf[idx]
	l.buf[idx] = zero
	l.n--
	return v
}

// At returns the item at position i.
func (l *List[T]) At(i int) T {
	if i < 0 || i >= l.n {
		panic("adt: index out of range")
	}
	return l.buf[(l.head+i)%len(l.buf)]
}

// Remove deletes the first item equal to v according to eq and reports
// whether one was found.
func (l *List[T]) Remove(v T, eq func(a, b T) bool) bool {
	items := l.Slice()
	for i, it := range items {
		if eq(it, v) {
			l.reset(slices.Delete(items, i, i+1))
			return true
		}
	}
	return false
}

// SortStable orders the list by cmp, keeping the relative order of equal
// items.
func (l *List[T]) SortStable(cmp func(a, b T) int) {
	items := l.Slice()
	slices.SortStableFunc(items, cmp)
	l.reset(items)
}

// Range calls fn for each item front to back until fn returns false.
func (l *List[T]) Range(fn func(i int, v T) bool) {
	for i := 0; i < l.n; i++ {
		if !fn(i, l.buf[(l.head+i)%len(l.buf)]) {
			return
		}
	}
}

// Slice returns a copy of the items front to back.
func (l *List[T]) Slice() []T {
	out := make([]T, l.n)
	for i := range out {
		out[i] = l.buf[(l.head+i)%len(l.buf)]
	}
	return out
}

// Clear removes every item, keeping the list usable.
func (l *List[T]) Clear() {
	l.buf = nil
	l.head = 0
	l.n = 0
}

func (l *List[T]) reset(items []T) {
	l.buf = items
	l.head = 0
	l.n = len(items)
	if len(l.buf) == 0 {
		l.buf = nil
	}
}
