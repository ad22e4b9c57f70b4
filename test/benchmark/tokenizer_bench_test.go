package benchmark

import (
	"fmt"
	"strings"
	"testing"

	"github.com/pollikk/pre-inf1101-p2-v2/internal/indexer/tokenizer"
)

var sampleTexts = map[string]string{
	"short": "The quick brown fox jumps over the lazy dog",
	"medium": `An inverted index maps each term to the set of documents containing
        it. Boolean queries combine those sets with intersection, union and
        difference, and the matches are ranked by how many query terms they hold.`,
	"long": strings.Repeat(`Information retrieval systems form the backbone of modern search
        infrastructure. Tokenization normalizes text into searchable terms, and the
        posting for each term is an ordered set of document names. `, 20),
}

func BenchmarkTokenizeDocument(b *testing.B) {
	for name, text := range sampleTexts {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(text)))
			for i := 0; i < b.N; i++ {
				tokens := tokenizer.Document(text)
				_ = tokens
			}
		})
	}
}

func BenchmarkTokenizeDocumentParallel(b *testing.B) {
	text := sampleTexts["medium"]
	b.ReportAllocs()
	b.SetBytes(int64(len(text)))
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			tokens := tokenizer.Document(text)
			_ = tokens
		}
	})
}

func BenchmarkTokenizeQuery(b *testing.B) {
	queries := []string{
		"cat",
		"(cat && dog) &! fish",
		"((a||b)&&(c||d))&!(e||f||g)",
	}
	for _, q := range queries {
		b.Run(q, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				tokens := tokenizer.Query(q)
				_ = tokens
			}
		})
	}
}

func BenchmarkTokenizeVaryingSize(b *testing.B) {
	sizes := []int{10, 100, 500, 1000, 5000}
	baseWord := "boolean search inverted index ranking "
	for _, size := range sizes {
		text := strings.Repeat(baseWord, size/len(baseWord)+1)[:size]
		b.Run(fmt.Sprintf("bytes_%d", size), func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(text)))
			for i := 0; i < b.N; i++ {
				tokens := tokenizer.Document(text)
				_ = tokens
			}
		})
	}
}
