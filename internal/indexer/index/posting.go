// Package index holds the two halves of the inverted index: the posting
// store mapping terms to documents and the registry mapping documents to
// their terms.
package index

import (
	"github.com/pollikk/pre-inf1101-p2-v2/pkg/adt"
)

// PostingStore maps each term to the set of documents containing it.
type PostingStore struct {
	postings *adt.HashMap[*adt.Set]
}

func NewPostingStore() *PostingStore {
	return &PostingStore{
		postings: adt.NewHashMap[*adt.Set](0),
	}
}

// Add records that docID contains term. The posting set is created on first
// use; adding the same pair twice is a no-op.
func (p *PostingStore) Add(term, docID string) {
	set, ok := p.postings.Get(term)
	if !ok {
		set = adt.NewSet()
		p.postings.Insert(term, set)
	}
	set.Insert(docID)
}

// Lookup returns the documents containing term, or an empty view when the
// term was never added.
func (p *PostingStore) Lookup(term string) adt.SetView {
	set, ok := p.postings.Get(term)
	if !ok {
		return adt.EmptySet()
	}
	return set
}

// Len returns the number of distinct terms.
func (p *PostingStore) Len() int {
	return p.postings.Len()
}

// Terms calls fn for each term and its posting size until fn returns false.
func (p *PostingStore) Terms(fn func(term string, docs int) bool) {
	p.postings.Range(func(term string, set *adt.Set) bool {
		return fn(term, set.Len())
	})
}

// Clear drops every posting.
func (p *PostingStore) Clear() {
	p.postings.Clear(func(set *adt.Set) { set.Clear() })
}
