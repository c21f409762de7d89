package prediction

import "time"

// Record is the flattened, persisted form of a Prediction.
type Record struct {
	ID          string    `json:"id"`
	Transcript  string    `json:"transcript"`
	Completion  string    `json:"completion"`
	Tier        string    `json:"tier"`
	Provider    string    `json:"provider"`
	BLEU        *float64  `json:"bleu,omitempty"`
	ROUGE1      *float64  `json:"rouge1,omitempty"`
	ROUGEL      *float64  `json:"rougeL,omitempty"`
	Severity    *int      `json:"severity,omitempty"`
	ContextUsed bool      `json:"context_used"`
	Retrieved   []string  `json:"retrieved"`
	CreatedAt   time.Time `json:"created_at"`
}

// Record flattens p. Score and severity fields stay nil when not computed.
func (p *Prediction) Record() Record {
	r := Record{
		ID:          p.ID,
		Transcript:  p.Transcript,
		Completion:  p.Completion.Text,
		Tier:        string(p.Completion.Tier),
		Provider:    p.Completion.Provider,
		ContextUsed: p.ContextUsed,
		Retrieved:   append([]string{}, p.Retrieved...),
		CreatedAt:   p.CreatedAt,
	}
	if p.Scores != nil {
		bleu, r1, rl := p.Scores.BLEU, p.Scores.ROUGE1.FMeasure, p.Scores.ROUGEL.FMeasure
		r.BLEU, r.ROUGE1, r.ROUGEL = &bleu, &r1, &rl
	}
	if p.Severity.Valid() {
		sev := int(p.Severity)
		r.Severity = &sev
	}
	return r
}
