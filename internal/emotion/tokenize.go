package emotion

import (
	"regexp"
	"strings"
)

var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "to": true, "of": true,
	"in": true, "on": true, "for": true, "with": true, "at": true, "by": true,
	"it": true, "is": true, "was": true, "were": true, "am": true, "are": true,
	"be": true, "this": true, "that": true, "but": true, "so": true, "or": true,
	"if": true, "from": true, "as": true, "we": true, "i": true, "me": true,
	"my": true, "you": true, "your": true,
}

var tokenPattern = regexp.MustCompile(`[A-Za-z']+`)

// Tokenize lowercases the text and returns its words, dropping stopwords
// and anything shorter than three characters.
func Tokenize(text string) []string {
	raw := tokenPattern.FindAllString(text, -1)
	tokens := make([]string, 0, len(raw))
	for _, token := range raw {
		lowered := strings.ToLower(token)
		if len(lowered) > 2 && !stopwords[lowered] {
			tokens = append(tokens, lowered)
		}
	}
	return tokens
}
