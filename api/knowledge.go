package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/docfox/docfox/internal/knowledge"
	"github.com/docfox/docfox/internal/log"
)

// Request validation constants.
const (
	// MaxQueryLength bounds a single search query.
	MaxQueryLength = 2000

	// MaxQueries bounds the multi-query fan-out per request.
	MaxQueries = 5

	// MaxDocumentLength bounds an indexed document body.
	MaxDocumentLength = 2 << 20
)

// KnowledgeStore is the retrieval dependency of the API, defined on the
// consumer side so tests can substitute a mock.
type KnowledgeStore interface {
	FindRelevant(ctx context.Context, query string, categories []string) ([]knowledge.SearchResult, error)
	FindRelevantMulti(ctx context.Context, queries []string, categories []string) ([]knowledge.SearchResult, error)
	GetFullDocument(ctx context.Context, resourceID string) (*knowledge.FullDocument, error)
	IndexDocument(ctx context.Context, doc knowledge.Document) (string, error)
	ReindexDocument(ctx context.Context, doc knowledge.Document) (string, error)
}

// KnowledgeHandler handles search, document, and index endpoints.
type KnowledgeHandler struct {
	store  KnowledgeStore
	logger log.Logger
}

// NewKnowledgeHandler creates a new knowledge handler.
func NewKnowledgeHandler(store KnowledgeStore, logger log.Logger) *KnowledgeHandler {
	return &KnowledgeHandler{store: store, logger: logger}
}

// RegisterRoutes registers knowledge routes on the given mux.
func (h *KnowledgeHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/search", h.search)
	mux.HandleFunc("GET /api/documents/{id}", h.document)
	mux.HandleFunc("POST /api/index", h.index)
}

// SearchRequest is the request body for POST /api/search. Either Query or
// Queries must be set; Queries takes precedence.
type SearchRequest struct {
	Query      string   `json:"query,omitempty"`
	Queries    []string `json:"queries,omitempty"`
	Categories []string `json:"categories,omitempty"`
}

// SearchResponse is the response body for POST /api/search.
type SearchResponse struct {
	Results []knowledge.SearchResult `json:"results"`
	Total   int                      `json:"total"`
}

func (h *KnowledgeHandler) search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}

	queries := req.Queries
	if len(queries) == 0 && req.Query != "" {
		queries = []string{req.Query}
	}
	if len(queries) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "query or queries is required")
		return
	}
	if len(queries) > MaxQueries {
		writeError(w, http.StatusBadRequest, "invalid_request", "too many queries")
		return
	}
	for _, q := range queries {
		if len(q) > MaxQueryLength {
			writeError(w, http.StatusBadRequest, "invalid_request", "query too long")
			return
		}
	}

	var (
		results []knowledge.SearchResult
		err     error
	)
	if len(queries) == 1 {
		results, err = h.store.FindRelevant(r.Context(), queries[0], req.Categories)
	} else {
		results, err = h.store.FindRelevantMulti(r.Context(), queries, req.Categories)
	}
	if err != nil {
		h.logger.Error("search failed", "error", err)
		writeError(w, http.StatusInternalServerError, "search_failed", "search failed")
		return
	}

	if results == nil {
		results = []knowledge.SearchResult{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results, Total: len(results)})
}

func (h *KnowledgeHandler) document(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if strings.TrimSpace(id) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "document id is required")
		return
	}

	doc, err := h.store.GetFullDocument(r.Context(), id)
	if err != nil {
		if errors.Is(err, knowledge.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "document not found")
			return
		}
		h.logger.Error("document fetch failed", "resource_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "fetch_failed", "failed to load document")
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

// IndexRequest is the request body for POST /api/index. Reindex replaces any
// resources previously indexed from the same source URL.
type IndexRequest struct {
	Content     string  `json:"content"`
	Category    *string `json:"category,omitempty"`
	SourceURL   *string `json:"sourceUrl,omitempty"`
	SourceTitle *string `json:"sourceTitle,omitempty"`
	Reindex     bool    `json:"reindex,omitempty"`
}

// IndexResponse is the response body for POST /api/index.
type IndexResponse struct {
	ResourceID string `json:"resourceId"`
}

func (h *KnowledgeHandler) index(w http.ResponseWriter, r *http.Request) {
	var req IndexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}
	if len(req.Content) > MaxDocumentLength {
		writeError(w, http.StatusBadRequest, "invalid_request", "document too large")
		return
	}

	doc := knowledge.Document{
		Content:     req.Content,
		Category:    req.Category,
		SourceURL:   req.SourceURL,
		SourceTitle: req.SourceTitle,
	}

	var (
		id  string
		err error
	)
	if req.Reindex {
		id, err = h.store.ReindexDocument(r.Context(), doc)
	} else {
		id, err = h.store.IndexDocument(r.Context(), doc)
	}
	if err != nil {
		if errors.Is(err, knowledge.ErrEmptyDocument) {
			writeError(w, http.StatusBadRequest, "invalid_request", "document content is empty")
			return
		}
		h.logger.Error("indexing failed", "error", err)
		writeError(w, http.StatusInternalServerError, "index_failed", "failed to index document")
		return
	}

	writeJSON(w, http.StatusCreated, IndexResponse{ResourceID: id})
}
