package engine

import "github.com/poiesic/faqmatch/core"

const (
	// DefaultThreshold is the raw-score floor below which a resolution
	// falls back to suggestions.
	DefaultThreshold = 0.4

	// DefaultLexicalWeight and DefaultSemanticWeight bias arbitration
	// toward the semantic ranking when both are available.
	DefaultLexicalWeight  = 0.3
	DefaultSemanticWeight = 0.7

	// maxAlternatives caps the suggestions attached to a fallback.
	maxAlternatives = 2
)

// Response is the outcome of resolving one query. On fallback, Match still
// names the best candidate so callers can show its score, but its answer is
// not trusted; Alternatives carries up to two suggested questions from the
// winning ranking.
type Response struct {
	Match        *core.Match
	Fallback     bool
	Alternatives []string
}

// verdict is the arbitration result before threshold policy is applied.
type verdict struct {
	winner  core.ScoredCandidate
	method  core.MatchMethod
	ranking []core.ScoredCandidate
}

// arbitrate selects between the two rankings. Selection compares the
// weighted top scores, but the verdict keeps the winner's raw score: the
// weights order the producers, they do not restate confidence. A ranking
// that is empty loses unconditionally; an exact weighted tie goes to the
// lexical side.
func arbitrate(lexical, semantic []core.ScoredCandidate, lexWeight, semWeight float64) verdict {
	switch {
	case len(semantic) == 0:
		return verdict{winner: lexical[0], method: core.MethodLexical, ranking: lexical}
	case len(lexical) == 0:
		return verdict{winner: semantic[0], method: core.MethodSemantic, ranking: semantic}
	}

	if semantic[0].Score*semWeight > lexical[0].Score*lexWeight {
		return verdict{winner: semantic[0], method: core.MethodSemantic, ranking: semantic}
	}
	return verdict{winner: lexical[0], method: core.MethodLexical, ranking: lexical}
}

// buildResponse applies the confidence threshold to a verdict. Raw scores
// below threshold produce a fallback whose alternatives are the winning
// ranking's runners-up.
func buildResponse(v verdict, threshold float64) *Response {
	resp := &Response{
		Match: &core.Match{
			Entry:  v.winner.Entry,
			Score:  v.winner.Score,
			Method: v.method,
		},
	}

	if v.winner.Score >= threshold {
		return resp
	}

	resp.Fallback = true
	for _, cand := range v.ranking[1:] {
		if len(resp.Alternatives) == maxAlternatives {
			break
		}
		resp.Alternatives = append(resp.Alternatives, cand.Entry.Question)
	}
	return resp
}
