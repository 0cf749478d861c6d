package match

import (
	"testing"

	"github.com/poiesic/faqmatch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEntries() []*core.Entry {
	return []*core.Entry{
		{Id: 1, Question: "How do I reset my password?", Answer: "Click Forgot Password.", Category: "account"},
		{Id: 2, Question: "What are your business hours?", Answer: "Monday to Friday, 9 to 6.", Category: "general"},
		{Id: 3, Question: "How long does shipping take?", Answer: "Three to five business days.", Category: "orders"},
	}
}

func TestBuildIndex_KeywordInvariant(t *testing.T) {
	entries := testEntries()
	ix := BuildIndex(entries)

	// Every keyword extracted from an entry's question must map back to
	// that entry's position.
	for pos, entry := range entries {
		for keyword := range Keywords(entry.Question) {
			assert.Contains(t, ix.Candidates(keyword), pos,
				"keyword %q does not map back to entry %d", keyword, entry.Id)
		}
	}
}

func TestKeywordIndex_Candidates(t *testing.T) {
	entries := testEntries()
	ix := BuildIndex(entries)

	t.Run("union of keyword postings", func(t *testing.T) {
		// "business" appears in both the hours and the shipping questions.
		assert.Equal(t, []int{1, 2}, ix.Candidates("business"))
	})

	t.Run("single keyword hit", func(t *testing.T) {
		assert.Equal(t, []int{0}, ix.Candidates("reset password"))
	})

	t.Run("full fallback on index miss", func(t *testing.T) {
		// No keyword overlap anywhere: the full corpus is returned,
		// never an empty list.
		assert.Equal(t, []int{0, 1, 2}, ix.Candidates("banana"))
	})

	t.Run("keywordless query falls back to full scan", func(t *testing.T) {
		assert.Equal(t, []int{0, 1, 2}, ix.Candidates("how do I"))
	})
}

func TestKeywordIndex_Update(t *testing.T) {
	entries := testEntries()
	ix := BuildIndex(entries)

	added := &core.Entry{Id: 4, Question: "Can I change my shipping address?", Answer: "Yes, before dispatch.", Category: "orders"}
	ix.Update(len(entries), added)

	require.Equal(t, 4, ix.Len())
	assert.Equal(t, []int{2, 3}, ix.Candidates("shipping"))

	for keyword := range Keywords(added.Question) {
		assert.Contains(t, ix.Candidates(keyword), 3)
	}
}

func TestKeywordIndex_Empty(t *testing.T) {
	ix := BuildIndex(nil)

	assert.Equal(t, 0, ix.Len())
	assert.Empty(t, ix.Candidates("anything"))
}
