package integration

import (
	"strings"
	"unicode/utf8"
)

const (
	// shortDescriptionLimit is the character budget for derived short
	// descriptions; longer texts are cut at this length and suffixed with an
	// ellipsis. Truncation is rune-safe but not word-boundary-safe.
	shortDescriptionLimit = 147

	// maxKeywords caps the deduplicated keyword list per product
	maxKeywords = 20

	// minKeywordLength drops short stopword-ish tokens
	minKeywordLength = 3
)

// StripHTML removes markup tags from provider-supplied rich text.
// It is a lexical scan, not an HTML parser: anything between '<' and the next
// '>' is dropped, which is all the provider payloads need.
func StripHTML(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			if inTag {
				inTag = false
				b.WriteByte(' ')
			} else {
				b.WriteRune(r)
			}
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// ShortDescription derives the shortened description: the provider-supplied
// short text when present, otherwise the long description truncated to the
// fixed character budget plus an ellipsis.
func ShortDescription(short, long string) string {
	if strings.TrimSpace(short) != "" {
		return short
	}
	return Truncate(StripHTML(long), shortDescriptionLimit)
}

// Truncate cuts s to at most limit runes, appending "..." when anything was
// removed. Cutting counts runes, never bytes, so multi-byte characters are
// not split.
func Truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "..."
}

// ExtractKeywords tokenizes the given texts into a deduplicated, capped
// keyword list: markup stripped, lowercased, punctuation outside the Spanish
// accented-letter set removed, tokens of fewer than three characters dropped.
// This is deliberately simple lexical tokenization, not NLP.
func ExtractKeywords(texts ...string) []string {
	seen := make(map[string]struct{}, maxKeywords)
	keywords := make([]string, 0, maxKeywords)

	for _, text := range texts {
		cleaned := strings.ToLower(StripHTML(text))
		for _, token := range strings.FieldsFunc(cleaned, isTokenSeparator) {
			if utf8.RuneCountInString(token) < minKeywordLength {
				continue
			}
			if _, dup := seen[token]; dup {
				continue
			}
			seen[token] = struct{}{}
			keywords = append(keywords, token)
			if len(keywords) >= maxKeywords {
				return keywords
			}
		}
	}
	return keywords
}

// isTokenSeparator reports whether r falls outside the keyword alphabet:
// ASCII letters, digits, and the Spanish accented letters.
func isTokenSeparator(r rune) bool {
	if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
		return false
	}
	switch r {
	case 'á', 'é', 'í', 'ó', 'ú', 'ü', 'ñ':
		return false
	}
	return true
}
