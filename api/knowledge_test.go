package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docfox/docfox/internal/knowledge"
	"github.com/docfox/docfox/internal/log"
)

// mockStore implements KnowledgeStore with call tracking.
type mockStore struct {
	results   []knowledge.SearchResult
	doc       *knowledge.FullDocument
	indexedID string
	err       error

	findCalls      int
	multiCalls     int
	indexCalls     int
	reindexCalls   int
	lastQuery      string
	lastQueries    []string
	lastCategories []string
	lastDoc        knowledge.Document
}

func (m *mockStore) FindRelevant(_ context.Context, query string, categories []string) ([]knowledge.SearchResult, error) {
	m.findCalls++
	m.lastQuery = query
	m.lastCategories = categories
	return m.results, m.err
}

func (m *mockStore) FindRelevantMulti(_ context.Context, queries []string, categories []string) ([]knowledge.SearchResult, error) {
	m.multiCalls++
	m.lastQueries = queries
	m.lastCategories = categories
	return m.results, m.err
}

func (m *mockStore) GetFullDocument(_ context.Context, _ string) (*knowledge.FullDocument, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.doc, nil
}

func (m *mockStore) IndexDocument(_ context.Context, doc knowledge.Document) (string, error) {
	m.indexCalls++
	m.lastDoc = doc
	return m.indexedID, m.err
}

func (m *mockStore) ReindexDocument(_ context.Context, doc knowledge.Document) (string, error) {
	m.reindexCalls++
	m.lastDoc = doc
	return m.indexedID, m.err
}

func newKnowledgeServer(store *mockStore) http.Handler {
	mux := http.NewServeMux()
	NewKnowledgeHandler(store, log.NewNop()).RegisterRoutes(mux)
	return mux
}

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestSearch_SingleQuery(t *testing.T) {
	store := &mockStore{results: []knowledge.SearchResult{
		{Content: "mute with setEnabled", Similarity: 0.91, ResourceID: "res-1"},
	}}
	h := newKnowledgeServer(store)

	w := postJSON(t, h, "/api/search", `{"query":"how to mute","categories":["Audio"]}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, store.findCalls)
	assert.Equal(t, 0, store.multiCalls)
	assert.Equal(t, "how to mute", store.lastQuery)
	assert.Equal(t, []string{"Audio"}, store.lastCategories)

	var resp SearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Total)
	assert.Equal(t, "res-1", resp.Results[0].ResourceID)
}

func TestSearch_MultiQuery(t *testing.T) {
	store := &mockStore{}
	h := newKnowledgeServer(store)

	w := postJSON(t, h, "/api/search", `{"queries":["mute mic","disable audio"]}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, store.multiCalls)
	assert.Equal(t, []string{"mute mic", "disable audio"}, store.lastQueries)
}

func TestSearch_EmptyResultsIsJSONArray(t *testing.T) {
	h := newKnowledgeServer(&mockStore{})

	w := postJSON(t, h, "/api/search", `{"query":"anything"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"results":[]`)
}

func TestSearch_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid body", `{not json`},
		{"no query", `{}`},
		{"too many queries", `{"queries":["a","b","c","d","e","f"]}`},
		{"query too long", `{"query":"` + strings.Repeat("x", MaxQueryLength+1) + `"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockStore{}
			w := postJSON(t, newKnowledgeServer(store), "/api/search", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Zero(t, store.findCalls+store.multiCalls)
		})
	}
}

func TestSearch_StoreError(t *testing.T) {
	store := &mockStore{err: errors.New("db down")}
	w := postJSON(t, newKnowledgeServer(store), "/api/search", `{"query":"q"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestDocument_OK(t *testing.T) {
	title := "Tracks"
	store := &mockStore{doc: &knowledge.FullDocument{
		Content:     "part one\n\npart two",
		SourceTitle: &title,
		ChunkCount:  2,
	}}
	h := newKnowledgeServer(store)

	req := httptest.NewRequest(http.MethodGet, "/api/documents/res-1", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var doc knowledge.FullDocument
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, 2, doc.ChunkCount)
	assert.Equal(t, "part one\n\npart two", doc.Content)
}

func TestDocument_NotFound(t *testing.T) {
	store := &mockStore{err: knowledge.ErrNotFound}
	h := newKnowledgeServer(store)

	req := httptest.NewRequest(http.MethodGet, "/api/documents/missing", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDocument_StorageError(t *testing.T) {
	store := &mockStore{err: errors.New("db down")}
	h := newKnowledgeServer(store)

	req := httptest.NewRequest(http.MethodGet, "/api/documents/res-1", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestIndex_Create(t *testing.T) {
	store := &mockStore{indexedID: "res-42"}
	w := postJSON(t, newKnowledgeServer(store), "/api/index",
		`{"content":"Connect to a room.","category":"Connection","sourceUrl":"https://d/x"}`)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, store.indexCalls)
	assert.Equal(t, 0, store.reindexCalls)
	require.NotNil(t, store.lastDoc.Category)
	assert.Equal(t, "Connection", *store.lastDoc.Category)

	var resp IndexResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "res-42", resp.ResourceID)
}

func TestIndex_Reindex(t *testing.T) {
	store := &mockStore{indexedID: "res-43"}
	w := postJSON(t, newKnowledgeServer(store), "/api/index",
		`{"content":"Updated doc.","reindex":true}`)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, store.reindexCalls)
	assert.Equal(t, 0, store.indexCalls)
}

func TestIndex_EmptyDocument(t *testing.T) {
	store := &mockStore{err: knowledge.ErrEmptyDocument}
	w := postJSON(t, newKnowledgeServer(store), "/api/index", `{"content":"   "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
