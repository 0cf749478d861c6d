package core

import (
	"testing"
)

func TestCorpusChecksum(t *testing.T) {
	entries := []*Entry{
		{Id: 1, Question: "How do I reset my password?", Answer: "Click Forgot Password."},
		{Id: 2, Question: "What are your business hours?", Answer: "9 to 5."},
	}

	t.Run("deterministic", func(t *testing.T) {
		sum1 := CorpusChecksum(entries)
		sum2 := CorpusChecksum(entries)

		if sum1 != sum2 {
			t.Errorf("CorpusChecksum() produced different sums for same corpus: %d vs %d", sum1, sum2)
		}
	})

	t.Run("sensitive to question changes", func(t *testing.T) {
		changed := []*Entry{
			{Id: 1, Question: "How do I reset my password??", Answer: "Click Forgot Password."},
			{Id: 2, Question: "What are your business hours?", Answer: "9 to 5."},
		}

		if CorpusChecksum(entries) == CorpusChecksum(changed) {
			t.Errorf("CorpusChecksum() produced same sum for different questions")
		}
	})

	t.Run("sensitive to order", func(t *testing.T) {
		reversed := []*Entry{entries[1], entries[0]}

		if CorpusChecksum(entries) == CorpusChecksum(reversed) {
			t.Errorf("CorpusChecksum() produced same sum for reordered corpus")
		}
	})

	t.Run("insensitive to answers", func(t *testing.T) {
		answered := []*Entry{
			{Id: 1, Question: "How do I reset my password?", Answer: "different"},
			{Id: 2, Question: "What are your business hours?", Answer: "9 to 5."},
		}

		if CorpusChecksum(entries) != CorpusChecksum(answered) {
			t.Errorf("CorpusChecksum() changed when only answers changed")
		}
	})

	t.Run("empty corpus", func(t *testing.T) {
		sum1 := CorpusChecksum(nil)
		sum2 := CorpusChecksum([]*Entry{})

		if sum1 != sum2 {
			t.Errorf("CorpusChecksum() differs between nil and empty corpus")
		}
	})
}
