package retrieval

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// tokenPattern keeps runs of two or more word characters, single characters are dropped.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// tokenize NFKC-normalizes and lower-cases text before extracting tokens, so that
// full-width digits and ligatures in transcripts map onto the same vocabulary terms.
func tokenize(text string) []string {
	lower := strings.ToLower(norm.NFKC.String(text))
	return tokenPattern.FindAllString(lower, -1)
}
