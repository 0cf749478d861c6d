package match

import (
	"strings"
	"unicode"
)

// Stop words excluded from keyword extraction. FAQ questions are dominated
// by interrogative filler ("how do i", "what are my"), so question words are
// filtered alongside the usual articles and prepositions.
var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "has": true, "he": true,
	"in": true, "is": true, "it": true, "its": true, "of": true, "on": true,
	"that": true, "the": true, "to": true, "was": true, "will": true,
	"with": true, "i": true, "you": true, "can": true, "do": true,
	"how": true, "what": true, "when": true, "where": true, "which": true,
	"who": true, "why": true, "my": true, "me": true,
}

// Normalize canonicalizes raw text: lowercased, every punctuation rune other
// than '?' replaced with a space, whitespace collapsed to single spaces.
// Pure function: same input always yields the same output.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '?':
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// Keywords extracts the stopword-filtered keyword set from text. Tokens are
// taken from the normalized form with any trailing '?' trimmed; tokens of
// length <= 2 and stop words are dropped. Returns an empty set when nothing
// survives filtering.
func Keywords(text string) map[string]bool {
	fields := strings.Fields(Normalize(text))
	keywords := make(map[string]bool, len(fields))

	for _, token := range fields {
		token = strings.Trim(token, "?")
		if len(token) > 2 && !stopWords[token] {
			keywords[token] = true
		}
	}

	return keywords
}
