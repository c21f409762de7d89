package retrieval

// DefaultTopK is the number of neighbours returned when the caller passes k <= 0.
const DefaultTopK = 5

// Hit is a single retrieved corpus entry.
type Hit struct {
	Position int
	Text     string
	Distance float32
}

// Result holds retrieved entries, most similar first.
type Result struct {
	Hits []Hit
}

// Texts returns the retrieved texts in rank order.
func (r Result) Texts() []string {
	out := make([]string, len(r.Hits))
	for i, h := range r.Hits {
		out[i] = h.Text
	}
	return out
}

// Engine answers top-k queries against a built Index.
type Engine struct {
	index       *Index
	defaultTopK int
}

// NewEngine creates an Engine. defaultTopK <= 0 falls back to DefaultTopK.
func NewEngine(index *Index, defaultTopK int) *Engine {
	if defaultTopK <= 0 {
		defaultTopK = DefaultTopK
	}
	return &Engine{index: index, defaultTopK: defaultTopK}
}

// CorpusSize returns the number of entries the engine searches over.
func (e *Engine) CorpusSize() int { return e.index.Len() }

// Retrieve returns the min(k, corpus size) entries nearest to query. Unknown query
// terms are dropped by the vectorizer, so a query of only unknown words still
// returns results instead of failing.
func (e *Engine) Retrieve(query string, k int) Result {
	if k <= 0 {
		k = e.defaultTopK
	}
	qv := e.index.vectorizer.Transform(query)
	neighbors := e.index.flat.Search(qv, k)

	hits := make([]Hit, len(neighbors))
	for i, n := range neighbors {
		hits[i] = Hit{
			Position: n.Position,
			Text:     e.index.entries[n.Position].Text,
			Distance: n.Distance,
		}
	}
	return Result{Hits: hits}
}
