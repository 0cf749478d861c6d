package match

import (
	"context"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/poiesic/faqmatch/core"
)

// Weights for the combined lexical score. Keyword overlap is the stronger,
// more interpretable signal for short FAQ-style questions; sequence
// similarity recovers partial and typo matches that keyword overlap misses.
const (
	keywordWeight  = 0.6
	sequenceWeight = 0.4
)

// Scorer scores a single corpus entry against a query, returning a value
// in [0,1]. Implementations must be safe for concurrent use.
type Scorer interface {
	Score(ctx context.Context, query string, entry *core.Entry) (float64, error)
}

// LexicalScorer combines keyword-set overlap and character-sequence
// similarity into one score per candidate. It is stateless and never fails.
type LexicalScorer struct{}

var _ Scorer = (*LexicalScorer)(nil)

// NewLexicalScorer creates a new lexical scorer.
func NewLexicalScorer() *LexicalScorer {
	return &LexicalScorer{}
}

// Score computes 0.6*Jaccard(query keywords, question keywords) +
// 0.4*SequenceRatio(normalized query, normalized question).
func (s *LexicalScorer) Score(_ context.Context, query string, entry *core.Entry) (float64, error) {
	return keywordWeight*JaccardScore(query, entry.Question) +
		sequenceWeight*SequenceRatio(query, entry.Question), nil
}

// JaccardScore computes the Jaccard similarity (|intersection| / |union|)
// of the keyword sets of the two texts. Defined as 0 when the first text
// has no extractable keywords or the union is empty. Symmetric for inputs
// that both have keywords.
func JaccardScore(query, question string) float64 {
	queryKeywords := Keywords(query)
	if len(queryKeywords) == 0 {
		return 0
	}

	questionKeywords := Keywords(question)

	intersection := 0
	union := len(questionKeywords)
	for keyword := range queryKeywords {
		if questionKeywords[keyword] {
			intersection++
		} else {
			union++
		}
	}

	if union == 0 {
		return 0
	}

	return float64(intersection) / float64(union)
}

// SequenceRatio computes the longest-matching-block similarity ratio
// between the normalized forms of the two texts, in [0,1].
func SequenceRatio(a, b string) float64 {
	na := Normalize(a)
	nb := Normalize(b)

	// Matching on individual characters, not lines.
	m := difflib.NewMatcher(strings.Split(na, ""), strings.Split(nb, ""))
	return m.Ratio()
}
