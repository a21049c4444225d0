package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/docfox/docfox/internal/changelog"
	"github.com/docfox/docfox/internal/log"
)

// ChangelogFetcher is the changelog dependency of the API.
type ChangelogFetcher interface {
	Fetch(ctx context.Context, sdk string) (*changelog.Changelog, error)
	SDKs() []string
}

// ChangelogHandler handles changelog endpoints.
type ChangelogHandler struct {
	fetcher ChangelogFetcher
	logger  log.Logger
}

// NewChangelogHandler creates a new changelog handler.
func NewChangelogHandler(fetcher ChangelogFetcher, logger log.Logger) *ChangelogHandler {
	return &ChangelogHandler{fetcher: fetcher, logger: logger}
}

// RegisterRoutes registers changelog routes on the given mux.
func (h *ChangelogHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/changelogs", h.list)
	mux.HandleFunc("GET /api/changelogs/{sdk}", h.get)
}

// ChangelogListResponse is the response body for GET /api/changelogs.
type ChangelogListResponse struct {
	SDKs []string `json:"sdks"`
}

func (h *ChangelogHandler) list(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, ChangelogListResponse{SDKs: h.fetcher.SDKs()})
}

func (h *ChangelogHandler) get(w http.ResponseWriter, r *http.Request) {
	sdk := r.PathValue("sdk")

	cl, err := h.fetcher.Fetch(r.Context(), sdk)
	if err != nil {
		if errors.Is(err, changelog.ErrUnknownSDK) {
			writeError(w, http.StatusNotFound, "not_found", "unknown sdk")
			return
		}
		h.logger.Error("changelog fetch failed", "sdk", sdk, "error", err)
		writeError(w, http.StatusBadGateway, "fetch_failed", "failed to fetch changelog")
		return
	}

	writeJSON(w, http.StatusOK, cl)
}
