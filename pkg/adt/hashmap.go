package adt

import (
	farmhash "github.com/leemcloughlin/gofarmhash"
)

const defaultSegments = 16

// HashMap maps string keys to values of type V. Keys are spread over a fixed
// number of segments by farmhash so that no single Go map grows too large.
type HashMap[V any] struct {
	segments []map[string]V
	size     int
}

// NewHashMap creates an empty map with the given number of segments. A
// non-positive count selects the default.
func NewHashMap[V any](segments int) *HashMap[V] {
	if segments <= 0 {
		segments = defaultSegments
	}
	m := &HashMap[V]{segments: make([]map[string]V, segments)}
	for i := range m.segments {
		m.segments[i] = make(map[string]V)
	}
	return m
}

func (m *HashMap[V]) segment(key string) map[string]V {
	n := farmhash.Hash32WithSeed([]byte(key), 0)
	return m.segments[int(n%uint32(len(m.segments)))]
}

// Insert stores value under key. When the key already existed the previous
// value is returned with existed set; the stored key is not replaced.
func (m *HashMap[V]) Insert(key string, value V) (prev V, existed bool) {
	seg := m.segment(key)
	prev, existed = seg[key]
	seg[key] = value
	if !existed {
		m.size++
	}
	return prev, existed
}

// Get returns the value stored under key.
func (m *HashMap[V]) Get(key string) (V, bool) {
	v, ok := m.segment(key)[key]
	return v, ok
}

// Remove deletes key and returns the value it held.
func (m *HashMap[V]) Remove(key string) (V, bool) {
	seg := m.segment(key)
	v, ok := seg[key]
	if ok {
		delete(seg, key)
		m.size--
	}
	return v, ok
}

func (m *HashMap[V]) Len() int {
	return m.size
}

// Range calls fn for every entry in unspecified order until fn returns false.
func (m *HashMap[V]) Range(fn func(key string, value V) bool) {
	for _, seg := range m.segments {
		for k, v := range seg {
			if !fn(k, v) {
				return
			}
		}
	}
}

// Clear drops every entry, calling release (if non-nil) on each value first.
func (m *HashMap[V]) Clear(release func(V)) {
	for i, seg := range m.segments {
		if release != nil {
			for _, v := range seg {
				release(v)
			}
		}
		m.segments[i] = make(map[string]V)
	}
	m.size = 0
}
