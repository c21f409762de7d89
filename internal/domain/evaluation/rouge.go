package evaluation

import (
	"regexp"
	"strings"

	"github.com/kljensen/snowball/english"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// rougeTokens lowercases text, treats every non [a-z0-9] run as a
// separator and stems tokens longer than three characters.
func rougeTokens(text string) []string {
	fields := strings.Fields(nonAlnum.ReplaceAllString(strings.ToLower(text), " "))
	for i, tok := range fields {
		if len(tok) > 3 {
			fields[i] = english.Stem(tok, false)
		}
	}
	return fields
}

// ROUGE1 scores unigram overlap between reference and hypothesis.
func ROUGE1(reference, hypothesis string) PRF {
	ref := rougeTokens(reference)
	hyp := rougeTokens(hypothesis)
	overlap, _ := clippedMatches(ref, hyp, 1)
	return newPRF(overlap, len(hyp), len(ref))
}

// ROUGEL scores the longest common subsequence of the stemmed tokens.
func ROUGEL(reference, hypothesis string) PRF {
	ref := rougeTokens(reference)
	hyp := rougeTokens(hypothesis)
	return newPRF(lcsLength(ref, hyp), len(hyp), len(ref))
}

// lcsLength uses a two-row table.
func lcsLength(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
			} else {
				cur[j] = max(prev[j], cur[j-1])
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
