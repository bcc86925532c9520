package store

import (
	"strings"
	"unicode"
)

// Tokenize normalizes a product name into lowercase search fragments.
// Splits on whitespace, hyphen, underscore, comma and period; empty
// fragments are dropped. The result is what gets persisted as
// name_tokens, regenerated on every product write.
func Tokenize(name string) []string {
	lower := strings.ToLower(name)
	fields := strings.FieldsFunc(lower, func(r rune) bool {
		switch r {
		case '-', '_', ',', '.':
			return true
		}
		return unicode.IsSpace(r)
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
