package tagger

import "github.com/rotisserie/eris"

// DefaultMaxKeywords is the keyword limit a new session starts with.
const DefaultMaxKeywords = 5

// MaxKeywordOptions lists the limits an editor may choose from.
var MaxKeywordOptions = [...]int{3, 5, 8, 10, 15}

// ErrInvalidMaxKeywords is returned for limits outside MaxKeywordOptions.
var ErrInvalidMaxKeywords = eris.New("max keywords must be one of 3, 5, 8, 10, 15")

// ValidMaxKeywords reports whether n is one of MaxKeywordOptions.
func ValidMaxKeywords(n int) bool {
	for _, option := range MaxKeywordOptions {
		if option == n {
			return true
		}
	}
	return false
}
