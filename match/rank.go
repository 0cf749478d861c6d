package match

import (
	"context"
	"sort"

	"github.com/poiesic/faqmatch/core"
)

// DefaultTopK is the candidate count callers typically request.
const DefaultTopK = 3

// Rank scores the entries at the given corpus positions with the scorer,
// stable-sorts descending by score and truncates to topK. Positions must be
// in ascending corpus order; ties then resolve to the earlier entry.
func Rank(ctx context.Context, entries []*core.Entry, positions []int, scorer Scorer, query string, topK int) ([]core.ScoredCandidate, error) {
	candidates := make([]core.ScoredCandidate, 0, len(positions))

	for _, pos := range positions {
		entry := entries[pos]
		score, err := scorer.Score(ctx, query, entry)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, core.ScoredCandidate{Entry: entry, Score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if topK > 0 && len(candidates) > topK {
		candidates = candidates[:topK]
	}
	return candidates, nil
}

// RankAll scores the full corpus. The semantic path uses this: embedding
// similarity has no sparse index, so the keyword index is bypassed entirely.
func RankAll(ctx context.Context, entries []*core.Entry, scorer Scorer, query string, topK int) ([]core.ScoredCandidate, error) {
	positions := make([]int, len(entries))
	for i := range positions {
		positions[i] = i
	}
	return Rank(ctx, entries, positions, scorer, query, topK)
}
