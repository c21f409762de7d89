// Package retrieval builds the read-only TF-IDF index over the reference corpus
// and answers nearest-neighbour queries against it.
package retrieval

import (
	"errors"
	"strings"
)

// Entry is one corpus record flattened to a single text blob.
type Entry struct {
	Position int
	Fields   []string
	Text     string
}

// NewEntry flattens fields into an Entry. Empty fields are kept, so every column
// still occupies its slot in the joined text.
func NewEntry(position int, fields []string) Entry {
	return Entry{
		Position: position,
		Fields:   append([]string(nil), fields...),
		Text:     strings.Join(fields, " "),
	}
}

// Index bundles the fitted vectorizer, the flat index and the corpus it was built from.
// All three are immutable once Build returns.
type Index struct {
	vectorizer *Vectorizer
	flat       *FlatIndex
	entries    []Entry
}

// Build fits the term-weight model over every entry and indexes the resulting vectors,
// one-to-one with entry positions.
func Build(entries []Entry) (*Index, error) {
	if len(entries) == 0 {
		return nil, &CorpusLoadError{Source: "corpus", Row: -1, Err: errors.New("corpus is empty")}
	}
	texts := make([]string, len(entries))
	for i, e := range entries {
		if strings.TrimSpace(e.Text) == "" {
			return nil, &CorpusLoadError{Source: "corpus", Row: i, Err: errors.New("entry text is empty")}
		}
		texts[i] = e.Text
	}

	vec, err := fitVectorizer(texts)
	if err != nil {
		return nil, err
	}

	vectors := make([][]float32, len(texts))
	for i, t := range texts {
		vectors[i] = vec.Transform(t)
	}
	flat, err := newFlatIndex(vec.Dimension(), vectors)
	if err != nil {
		return nil, err
	}

	owned := make([]Entry, len(entries))
	for i, e := range entries {
		owned[i] = Entry{Position: i, Fields: append([]string(nil), e.Fields...), Text: e.Text}
	}
	return &Index{vectorizer: vec, flat: flat, entries: owned}, nil
}

// Len returns the number of indexed entries.
func (ix *Index) Len() int { return len(ix.entries) }

// Dimension returns the vocabulary size.
func (ix *Index) Dimension() int { return ix.vectorizer.Dimension() }

// Vectorizer exposes the fitted term-weight model.
func (ix *Index) Vectorizer() *Vectorizer { return ix.vectorizer }
