package ranker

import (
	"sort"

	"github.com/pollikk/pre-inf1101-p2-v2/pkg/adt"
)

type ScoredDoc struct {
	DocID string  `json:"doc_id"`
	Score float64 `json:"score"`
}

// Rank scores every document in docs by how many of the query terms it
// contains and orders them by score, highest first, then by name. When
// limit is positive only the first limit results are returned.
func Rank(
	docs adt.SetView,
	terms []string,
	memberTerms func(docID string) adt.SetView,
	limit int,
) []ScoredDoc {
	result := make([]ScoredDoc, 0, docs.Len())
	docs.Range(func(docID string) bool {
		result = append(result, ScoredDoc{
			DocID: docID,
			Score: coverage(memberTerms(docID), terms),
		})
		return true
	})
	sort.Slice(result, func(i, j int) bool {
		if result[i].Score != result[j].Score {
			return result[i].Score > result[j].Score
		}
		return result[i].DocID < result[j].DocID
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}

func coverage(docTerms adt.SetView, terms []string) float64 {
	var n int
	for _, t := range terms {
		if docTerms.Contains(t) {
			n++
		}
	}
	return float64(n)
}
