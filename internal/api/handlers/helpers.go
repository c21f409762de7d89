package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/matiasleandrokruk/dispatchrag/internal/domain/prediction"
)

const (
	headerContentType = "Content-Type"
	mimeJSON          = "application/json"
)

// writeJSON encodes body as the JSON response with the given status.
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set(headerContentType, mimeJSON)
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

// writeError writes {"error": message}.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set(headerContentType, mimeJSON)
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		http.Error(w, `{"error":"failed to encode error response"}`, http.StatusInternalServerError)
	}
}

// parseLimit reads ?limit=N, falling back to the default page size for
// missing or non-positive values and capping at the maximum.
func parseLimit(r *http.Request) int {
	lim, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		return prediction.DefaultListLimit
	}
	return prediction.ClampLimit(lim)
}

// unixSeconds renders t as fractional seconds since the epoch.
func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
