package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/faqmatch/core"
)

func candidate(id core.ID, question string, score float64) core.ScoredCandidate {
	return core.ScoredCandidate{
		Entry: &core.Entry{
			Id:       id,
			Question: question,
			Answer:   "answer",
			Category: core.DefaultCategory,
		},
		Score: score,
	}
}

func TestArbitrate_SemanticWinsOnWeightedScore(t *testing.T) {
	lexical := []core.ScoredCandidate{candidate(1, "lex?", 0.9)}
	semantic := []core.ScoredCandidate{candidate(2, "sem?", 0.95)}

	// 0.9*0.3 = 0.27 against 0.95*0.7 = 0.665.
	v := arbitrate(lexical, semantic, DefaultLexicalWeight, DefaultSemanticWeight)

	assert.Equal(t, core.MethodSemantic, v.method)
	assert.Equal(t, core.ID(2), v.winner.Entry.Id)
	assert.Equal(t, 0.95, v.winner.Score)
}

func TestArbitrate_ReportsRawScoreNotWeighted(t *testing.T) {
	lexical := []core.ScoredCandidate{candidate(1, "lex?", 0.9)}
	semantic := []core.ScoredCandidate{candidate(2, "sem?", 0.95)}

	v := arbitrate(lexical, semantic, DefaultLexicalWeight, DefaultSemanticWeight)
	resp := buildResponse(v, DefaultThreshold)

	assert.Equal(t, 0.95, resp.Match.Score)
	assert.False(t, resp.Fallback)
}

func TestArbitrate_LexicalWinsExactTie(t *testing.T) {
	// 0.7*0.5 == 0.5*0.7: the weighted scores are equal.
	lexical := []core.ScoredCandidate{candidate(1, "lex?", 0.7)}
	semantic := []core.ScoredCandidate{candidate(2, "sem?", 0.5)}

	v := arbitrate(lexical, semantic, 0.5, 0.7)

	assert.Equal(t, core.MethodLexical, v.method)
	assert.Equal(t, core.ID(1), v.winner.Entry.Id)
}

func TestArbitrate_SingleProducerWinsUnconditionally(t *testing.T) {
	lexical := []core.ScoredCandidate{candidate(1, "lex?", 0.1)}

	v := arbitrate(lexical, nil, DefaultLexicalWeight, DefaultSemanticWeight)
	assert.Equal(t, core.MethodLexical, v.method)

	semantic := []core.ScoredCandidate{candidate(2, "sem?", 0.1)}

	v = arbitrate(nil, semantic, DefaultLexicalWeight, DefaultSemanticWeight)
	assert.Equal(t, core.MethodSemantic, v.method)
}

func TestBuildResponse_FallbackBelowThreshold(t *testing.T) {
	v := verdict{
		winner: candidate(1, "best?", 0.2),
		method: core.MethodLexical,
		ranking: []core.ScoredCandidate{
			candidate(1, "best?", 0.2),
			candidate(2, "second?", 0.15),
			candidate(3, "third?", 0.1),
		},
	}

	resp := buildResponse(v, DefaultThreshold)

	require.True(t, resp.Fallback)
	assert.Equal(t, 0.2, resp.Match.Score)
	assert.Equal(t, []string{"second?", "third?"}, resp.Alternatives)
}

func TestBuildResponse_AlternativesCappedAtTwo(t *testing.T) {
	ranking := []core.ScoredCandidate{
		candidate(1, "a?", 0.3),
		candidate(2, "b?", 0.2),
		candidate(3, "c?", 0.15),
		candidate(4, "d?", 0.1),
	}
	v := verdict{winner: ranking[0], method: core.MethodLexical, ranking: ranking}

	resp := buildResponse(v, DefaultThreshold)

	assert.Len(t, resp.Alternatives, maxAlternatives)
}

func TestBuildResponse_SingleEntryFallbackHasNoAlternatives(t *testing.T) {
	only := candidate(1, "only?", 0.05)
	v := verdict{winner: only, method: core.MethodLexical,
		ranking: []core.ScoredCandidate{only}}

	resp := buildResponse(v, DefaultThreshold)

	require.True(t, resp.Fallback)
	assert.Empty(t, resp.Alternatives)
}

func TestBuildResponse_ThresholdUsesRawScore(t *testing.T) {
	// Raw 0.5 clears a 0.4 threshold even though 0.5*0.7 weighted would not.
	v := verdict{
		winner:  candidate(1, "q?", 0.5),
		method:  core.MethodSemantic,
		ranking: []core.ScoredCandidate{candidate(1, "q?", 0.5)},
	}

	resp := buildResponse(v, DefaultThreshold)
	assert.False(t, resp.Fallback)
}
