package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/docfox/docfox/internal/log"
)

type embeddingsRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

// fakeOpenAI serves the embeddings endpoint and records received inputs.
// Responses carry vectors in reverse index order to verify that the gateway
// places embeddings by index, not by response position.
func fakeOpenAI(t *testing.T, received *embeddingsRequest) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			http.NotFound(w, r)
			return
		}

		if err := json.NewDecoder(r.Body).Decode(received); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		type datum struct {
			Object    string    `json:"object"`
			Index     int       `json:"index"`
			Embedding []float32 `json:"embedding"`
		}
		data := make([]datum, 0, len(received.Input))
		for i := len(received.Input) - 1; i >= 0; i-- {
			data = append(data, datum{
				Object:    "embedding",
				Index:     i,
				Embedding: []float32{float32(i), float32(i) + 0.5},
			})
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   data,
			"model":  received.Model,
		}); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}))
}

func newTestEmbedder(srvURL string) *OpenAI {
	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srvURL + "/v1"
	return &OpenAI{
		client: openai.NewClientWithConfig(cfg),
		model:  DefaultModel,
		logger: log.NewNop(),
	}
}

func TestEmbedNormalizesNewlines(t *testing.T) {
	var received embeddingsRequest
	srv := fakeOpenAI(t, &received)
	defer srv.Close()

	e := newTestEmbedder(srv.URL)

	vec, err := e.Embed(context.Background(), "line one\nline two\nline three")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vec) == 0 {
		t.Fatal("Embed returned empty vector")
	}

	if len(received.Input) != 1 {
		t.Fatalf("server received %d inputs, want 1", len(received.Input))
	}
	if got, want := received.Input[0], "line one line two line three"; got != want {
		t.Errorf("embedded text = %q, want newlines replaced: %q", got, want)
	}
}

func TestEmbedBatchPreservesOrder(t *testing.T) {
	var received embeddingsRequest
	srv := fakeOpenAI(t, &received)
	defer srv.Close()

	e := newTestEmbedder(srv.URL)

	texts := []string{"first chunk", "second chunk", "third chunk"}
	vectors, err := e.EmbedBatch(context.Background(), texts)
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}

	if len(vectors) != len(texts) {
		t.Fatalf("got %d vectors, want %d", len(vectors), len(texts))
	}
	// The fake returns data in reverse index order; vectors must still land
	// at their input positions.
	for i, v := range vectors {
		if v[0] != float32(i) {
			t.Errorf("vector %d = %v, want leading component %d", i, v, i)
		}
	}
}

func TestEmbedBatchEmptyInput(t *testing.T) {
	e := newTestEmbedder("http://unused.invalid")

	vectors, err := e.EmbedBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("EmbedBatch(nil): %v", err)
	}
	if vectors != nil {
		t.Errorf("EmbedBatch(nil) = %v, want nil", vectors)
	}
}

func TestEmbedPropagatesUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "quota exceeded"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	e := newTestEmbedder(srv.URL)

	if _, err := e.Embed(context.Background(), "anything"); err == nil {
		t.Fatal("expected upstream error to propagate")
	}
	if _, err := e.EmbedBatch(context.Background(), []string{"a", "b"}); err == nil {
		t.Fatal("expected upstream batch error to propagate")
	}
}

func TestNewOpenAIValidation(t *testing.T) {
	if _, err := NewOpenAI("", DefaultModel, nil); err == nil {
		t.Fatal("expected error for missing API key")
	}

	e, err := NewOpenAI("key", "", nil)
	if err != nil {
		t.Fatalf("NewOpenAI: %v", err)
	}
	if e.model != DefaultModel {
		t.Errorf("model = %q, want default %q", e.model, DefaultModel)
	}
}
