package data

import (
	"sort"
	"strings"
	"unicode"
)

// TokenizeSearchTerms lowercases and splits the given values into the
// deduplicated token set stored on a posting. The same tokenizer is applied
// to free-text queries so matching is a plain subset check.
func TokenizeSearchTerms(values ...string) []string {
	seen := make(map[string]struct{})
	for _, v := range values {
		for _, tok := range strings.FieldsFunc(strings.ToLower(v), func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		}) {
			if len(tok) < 2 {
				continue
			}
			seen[tok] = struct{}{}
		}
	}

	tokens := make([]string, 0, len(seen))
	for tok := range seen {
		tokens = append(tokens, tok)
	}
	sort.Strings(tokens)
	return tokens
}

// containsAllTerms reports whether every query token appears in the posting's
// search-term set.
func containsAllTerms(terms, query []string) bool {
	if len(query) == 0 {
		return true
	}
	set := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		set[t] = struct{}{}
	}
	for _, q := range query {
		if _, ok := set[q]; !ok {
			return false
		}
	}
	return true
}
