// Package evaluation scores a generated continuation against a reference
// text with sentence-level BLEU and ROUGE-1 / ROUGE-L.
//
// In the request pipeline the reference is the caller's partial transcript,
// so the scores track how far the continuation drifts from what was said.
//
// ROUGE stems with the Snowball English (Porter2) stemmer. It agrees with the
// classic Porter rules on most words but not all: "fairly" stems to "fair"
// here and to "fairli" under Porter, so ROUGE values can differ slightly from
// Porter-based scorers on the same pair.
package evaluation

// PRF holds precision, recall and F-measure, each in [0,1].
type PRF struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	FMeasure  float64 `json:"fmeasure"`
}

// Scores is the full evaluation of one hypothesis.
type Scores struct {
	BLEU   float64 `json:"bleu"`
	ROUGE1 PRF     `json:"rouge1"`
	ROUGEL PRF     `json:"rougeL"`
}

// Score evaluates hypothesis against reference. It never fails; empty input
// on either side yields zero scores.
func Score(reference, hypothesis string) Scores {
	return Scores{
		BLEU:   BLEU(reference, hypothesis),
		ROUGE1: ROUGE1(reference, hypothesis),
		ROUGEL: ROUGEL(reference, hypothesis),
	}
}

func newPRF(overlap, hypLen, refLen int) PRF {
	if hypLen == 0 || refLen == 0 {
		return PRF{}
	}
	p := float64(overlap) / float64(hypLen)
	r := float64(overlap) / float64(refLen)
	var f float64
	if p+r > 0 {
		f = 2 * p * r / (p + r)
	}
	return PRF{Precision: p, Recall: r, FMeasure: f}
}
