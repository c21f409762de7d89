package handlers

import (
	"context"
	"net/http"

	"github.com/matiasleandrokruk/dispatchrag/internal/domain/prediction"
)

// PredictionLister reads the recorded prediction history.
type PredictionLister interface {
	ListRecent(ctx context.Context, limit int) ([]prediction.Record, error)
}

// PredictionsHandler handles GET /predictions.
type PredictionsHandler struct {
	store PredictionLister
}

// NewPredictionsHandler serves history read from store.
func NewPredictionsHandler(store PredictionLister) *PredictionsHandler {
	return &PredictionsHandler{store: store}
}

type predictionsResponse struct {
	Predictions []prediction.Record `json:"predictions"`
	Limit       int                 `json:"limit"`
}

// List handles GET /predictions?limit=N, most recent first.
func (h *PredictionsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r)
	records, err := h.store.ListRecent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list predictions")
		return
	}
	if records == nil {
		records = []prediction.Record{}
	}
	writeJSON(w, http.StatusOK, predictionsResponse{Predictions: records, Limit: limit})
}
