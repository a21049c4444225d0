package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/docfox/docfox/internal/faq"
	"github.com/docfox/docfox/internal/log"
)

// FAQSearcher is the FAQ dependency of the API.
type FAQSearcher interface {
	Search(ctx context.Context, query string, threshold float64) *faq.Match
}

// FAQHandler handles the FAQ lookup endpoint.
type FAQHandler struct {
	cache  FAQSearcher
	logger log.Logger
}

// NewFAQHandler creates a new FAQ handler.
func NewFAQHandler(cache FAQSearcher, logger log.Logger) *FAQHandler {
	return &FAQHandler{cache: cache, logger: logger}
}

// RegisterRoutes registers FAQ routes on the given mux.
func (h *FAQHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/faq/search", h.search)
}

// FAQSearchRequest is the request body for POST /api/faq/search.
// Threshold defaults to the strict preset; values outside (0, 1] are
// rejected.
type FAQSearchRequest struct {
	Question  string   `json:"question"`
	Threshold *float64 `json:"threshold,omitempty"`
}

// FAQSearchResponse is the response body for POST /api/faq/search.
// Match is null when nothing is close enough.
type FAQSearchResponse struct {
	Match *faq.Match `json:"match"`
}

func (h *FAQHandler) search(w http.ResponseWriter, r *http.Request) {
	var req FAQSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "question is required")
		return
	}
	if len(req.Question) > MaxQueryLength {
		writeError(w, http.StatusBadRequest, "invalid_request", "question too long")
		return
	}

	threshold := faq.StrictThreshold
	if req.Threshold != nil {
		if *req.Threshold <= 0 || *req.Threshold > 1 {
			writeError(w, http.StatusBadRequest, "invalid_request", "threshold must be in (0, 1]")
			return
		}
		threshold = *req.Threshold
	}

	match := h.cache.Search(r.Context(), req.Question, threshold)
	writeJSON(w, http.StatusOK, FAQSearchResponse{Match: match})
}
