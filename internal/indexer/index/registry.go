package index

import (
	"github.com/pollikk/pre-inf1101-p2-v2/pkg/adt"
)

// Registry tracks every indexed document and the distinct terms it holds.
type Registry struct {
	docs *adt.HashMap[*adt.Set]
}

func NewRegistry() *Registry {
	return &Registry{
		docs: adt.NewHashMap[*adt.Set](0),
	}
}

// Register stores terms under docID. It returns false without touching the
// existing entry when docID is already registered.
func (r *Registry) Register(docID string, terms *adt.Set) bool {
	if r.Contains(docID) {
		return false
	}
	r.docs.Insert(docID, terms)
	return true
}

func (r *Registry) Contains(docID string) bool {
	_, ok := r.docs.Get(docID)
	return ok
}

// MemberTerms returns the distinct terms of docID, or an empty view for an
// unknown document.
func (r *Registry) MemberTerms(docID string) adt.SetView {
	terms, ok := r.docs.Get(docID)
	if !ok {
		return adt.EmptySet()
	}
	return terms
}

func (r *Registry) Len() int {
	return r.docs.Len()
}

// Clear drops every document and its term set.
func (r *Registry) Clear() {
	r.docs.Clear(func(terms *adt.Set) { terms.Clear() })
}
