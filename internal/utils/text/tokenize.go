package text

import (
	"regexp"
	"strings"
	"unicode"

	log "github.com/sirupsen/logrus"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonTokenChars = regexp.MustCompile(`[^\pL\pN\s]+`)

// Tokenize lower-cases the content, folds diacritics and splits it on anything
// that is not a letter or a digit.
func Tokenize(content string) []string {
	// transformers keep state, so the chain is built per call
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	bare := strings.ToLower(nonTokenChars.ReplaceAllString(content, " "))
	folded, _, err := transform.String(fold, bare)
	if err != nil {
		log.WithField("error", err.Error()).Warn("unicode normalization failed")
		folded = bare
	}
	return strings.Fields(folded)
}

// ContainsTokens reports whether phrase occurs in tokens as a contiguous run.
func ContainsTokens(tokens, phrase []string) bool {
	if len(phrase) == 0 || len(phrase) > len(tokens) {
		return false
	}
	for i := 0; i+len(phrase) <= len(tokens); i++ {
		match := true
		for j := range phrase {
			if tokens[i+j] != phrase[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
