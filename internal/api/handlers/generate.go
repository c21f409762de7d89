// POST /generate: predicts the next part of an emergency call transcript.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/matiasleandrokruk/dispatchrag/internal/domain/prediction"
)

// Generator is the prediction pipeline the handler drives.
type Generator interface {
	Generate(ctx context.Context, req prediction.Request) (*prediction.Prediction, error)
	Variant() prediction.Variant
}

// GenerateHandler handles /generate.
type GenerateHandler struct {
	svc Generator
	now func() time.Time
}

// NewGenerateHandler creates a GenerateHandler.
func NewGenerateHandler(svc Generator) *GenerateHandler {
	return &GenerateHandler{svc: svc, now: time.Now}
}

// generateRequest is the JSON request body for POST /generate.
type generateRequest struct {
	Transcript         string `json:"transcript"`
	ContextForSeverity string `json:"context_for_severity,omitempty"`
}

type rougeScores struct {
	ROUGE1 float64 `json:"rouge1"`
	ROUGEL float64 `json:"rougeL"`
}

// scoredResponse is returned by the scored variant.
type scoredResponse struct {
	Completion    string      `json:"completion"`
	BLEUScore     float64     `json:"bleu_score"`
	ROUGEScores   rougeScores `json:"rouge_scores"`
	SeverityLevel int         `json:"severity_level"`
}

// completionResponse is returned by the completion variant. Response and
// Completion carry the same text; Provider is the serving tier.
type completionResponse struct {
	Response   string  `json:"response"`
	Completion string  `json:"completion"`
	Provider   string  `json:"provider"`
	Timestamp  float64 `json:"timestamp"`
}

// Generate handles POST /generate.
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.svc.Generate(r.Context(), prediction.Request{
		Transcript:         req.Transcript,
		ContextForSeverity: req.ContextForSeverity,
	})
	if errors.Is(err, prediction.ErrTranscriptMissing) {
		writeError(w, http.StatusBadRequest, "Transcript not provided")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if h.svc.Variant() == prediction.VariantCompletion {
		writeJSON(w, http.StatusOK, completionResponse{
			Response:   p.Completion.Text,
			Completion: p.Completion.Text,
			Provider:   string(p.Completion.Tier),
			Timestamp:  unixSeconds(h.now()),
		})
		return
	}

	resp := scoredResponse{
		Completion:    p.Completion.Text,
		SeverityLevel: int(p.Severity),
	}
	if p.Scores != nil {
		resp.BLEUScore = p.Scores.BLEU
		resp.ROUGEScores = rougeScores{
			ROUGE1: p.Scores.ROUGE1.FMeasure,
			ROUGEL: p.Scores.ROUGEL.FMeasure,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
