// Package embedding wraps the external embedding model behind a small
// gateway interface.
//
// The gateway performs no retries; retry policy belongs to the caller or to
// the provider client itself.
package embedding

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/docfox/docfox/internal/log"
)

// DefaultModel is the embedding model used when none is configured.
const DefaultModel = openai.AdaEmbeddingV2

// Embedder produces fixed-dimension vectors for text. Implementations must
// be safe for concurrent use.
type Embedder interface {
	// Embed returns the vector for a single string.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per input, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// OpenAI is an Embedder backed by the OpenAI embeddings API.
type OpenAI struct {
	client *openai.Client
	model  openai.EmbeddingModel
	logger log.Logger
}

// NewOpenAI creates an OpenAI-backed embedder. An empty model selects
// DefaultModel.
func NewOpenAI(apiKey string, model openai.EmbeddingModel, logger log.Logger) (*OpenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}
	if model == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = log.NewNop()
	}

	return &OpenAI{
		client: openai.NewClient(apiKey),
		model:  model,
		logger: logger,
	}, nil
}

// Embed embeds a single string. Newlines are replaced with spaces first;
// embedding models degrade on raw line breaks.
func (o *OpenAI) Embed(ctx context.Context, text string) ([]float32, error) {
	text = strings.ReplaceAll(text, "\n", " ")

	resp, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: []string{text},
		Model: o.model,
	})
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embed: no embedding returned")
	}

	return resp.Data[0].Embedding, nil
}

// EmbedBatch embeds texts in one request. The result holds exactly one
// vector per input at the matching index; callers zip vectors back to their
// inputs positionally.
func (o *OpenAI) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: texts,
		Model: o.model,
	})
	if err != nil {
		return nil, fmt.Errorf("embed batch of %d: %w", len(texts), err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embed batch: got %d embeddings for %d inputs", len(resp.Data), len(texts))
	}

	// The API reports an index per embedding; place by index rather than
	// trusting response ordering.
	vectors := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, fmt.Errorf("embed batch: embedding index %d out of range", d.Index)
		}
		vectors[d.Index] = d.Embedding
	}
	for i, v := range vectors {
		if v == nil {
			return nil, fmt.Errorf("embed batch: missing embedding for input %d", i)
		}
	}

	o.logger.Debug("embedded batch", "inputs", len(texts))
	return vectors, nil
}
