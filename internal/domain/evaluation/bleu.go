package evaluation

import (
	"math"
	"strings"
)

const (
	bleuMaxOrder = 4
	// bleuEpsilon replaces a zero n-gram match count (additive smoothing on
	// the numerator only).
	bleuEpsilon = 0.1
)

// BLEU returns sentence-level BLEU-4 with uniform weights, clipped n-gram
// precision, brevity penalty and epsilon smoothing of empty orders.
// Tokens are whitespace-separated and case-sensitive.
//
// A hypothesis sharing no unigram with the reference scores 0.
func BLEU(reference, hypothesis string) float64 {
	ref := strings.Fields(reference)
	hyp := strings.Fields(hypothesis)
	if len(hyp) == 0 || len(ref) == 0 {
		return 0
	}

	var logSum float64
	for n := 1; n <= bleuMaxOrder; n++ {
		matches, total := clippedMatches(ref, hyp, n)
		if n == 1 && matches == 0 {
			return 0
		}
		denom := float64(max(1, total))
		num := float64(matches)
		if matches == 0 {
			num = bleuEpsilon
		}
		logSum += math.Log(num/denom) / bleuMaxOrder
	}
	return brevityPenalty(len(ref), len(hyp)) * math.Exp(logSum)
}

// clippedMatches counts hypothesis n-grams found in the reference, each
// clipped to its reference count, and the total hypothesis n-grams.
func clippedMatches(ref, hyp []string, n int) (matches, total int) {
	refCounts := ngramCounts(ref, n)
	for gram, c := range ngramCounts(hyp, n) {
		matches += min(c, refCounts[gram])
		total += c
	}
	return matches, total
}

func brevityPenalty(refLen, hypLen int) float64 {
	if hypLen > refLen {
		return 1
	}
	if hypLen == 0 {
		return 0
	}
	return math.Exp(1 - float64(refLen)/float64(hypLen))
}

func ngramCounts(tokens []string, n int) map[string]int {
	counts := make(map[string]int)
	for i := 0; i+n <= len(tokens); i++ {
		counts[strings.Join(tokens[i:i+n], "\x00")]++
	}
	return counts
}
