package retrieval

import (
	"math"
	"sort"
)

// Vectorizer is a TF-IDF term-weight model fitted once over a fixed corpus.
// The vocabulary is sorted so term positions are stable across runs.
type Vectorizer struct {
	vocabulary map[string]int
	terms      []string
	idf        []float64
}

// fitVectorizer builds the vocabulary and smoothed IDF weights from the corpus.
// It returns an *IndexBuildError when no token survives tokenization.
func fitVectorizer(corpus []string) (*Vectorizer, error) {
	df := make(map[string]int)
	for _, text := range corpus {
		seen := make(map[string]struct{})
		for _, tok := range tokenize(text) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	if len(df) == 0 {
		return nil, &IndexBuildError{Reason: "empty vocabulary: corpus has no indexable terms"}
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	n := float64(len(corpus))
	v := &Vectorizer{
		vocabulary: make(map[string]int, len(terms)),
		terms:      terms,
		idf:        make([]float64, len(terms)),
	}
	for i, term := range terms {
		v.vocabulary[term] = i
		v.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}
	return v, nil
}

// Dimension returns the vocabulary size, which is also the vector length.
func (v *Vectorizer) Dimension() int { return len(v.terms) }

// Terms returns a copy of the ordered vocabulary.
func (v *Vectorizer) Terms() []string {
	out := make([]string, len(v.terms))
	copy(out, v.terms)
	return out
}

// Transform maps text onto the fitted vocabulary. Terms outside the vocabulary are
// ignored; a text made only of unknown terms yields the zero vector.
func (v *Vectorizer) Transform(text string) []float32 {
	counts := make(map[int]int)
	for _, tok := range tokenize(text) {
		if idx, ok := v.vocabulary[tok]; ok {
			counts[idx]++
		}
	}

	weights := make([]float64, len(v.terms))
	for idx, c := range counts {
		weights[idx] = float64(c) * v.idf[idx]
	}
	// Summed in vocabulary order so repeated calls round identically.
	norm := 0.0
	for _, w := range weights {
		norm += w * w
	}

	vec := make([]float32, len(v.terms))
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for idx := range counts {
		vec[idx] = float32(weights[idx] / norm)
	}
	return vec
}
