package search

import (
	"strings"
	"unicode"
)

// Tokenize lower-cases the input, splits on anything that is not a letter or
// digit, and returns the resulting token set. Stop words, when provided, are
// dropped.
func Tokenize(s string, stopwords map[string]struct{}) map[string]struct{} {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if _, skip := stopwords[f]; skip {
			continue
		}
		out[f] = struct{}{}
	}
	return out
}
