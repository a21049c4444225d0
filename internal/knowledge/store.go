// Package knowledge stores indexed documentation and serves semantic
// retrieval over it.
//
// A Resource is one ingested document; its content is split into overlapping
// chunks, each carrying an embedding vector. Retrieval embeds the query and
// ranks chunks by cosine similarity in the backing store, joining resource
// provenance onto each hit.
package knowledge

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pgvector/pgvector-go"
	"golang.org/x/sync/errgroup"

	"github.com/docfox/docfox/internal/chunk"
	"github.com/docfox/docfox/internal/embedding"
)

const (
	// SimilarityFloor is the hard relevance cutoff; hits at or below it are
	// noise and never returned.
	SimilarityFloor = 0.3

	// TopK is the maximum number of hits returned per query.
	TopK = 4
)

// CreateResourceParams describes a new resource row.
type CreateResourceParams struct {
	ID          string
	Content     string
	Category    *string
	SourceURL   *string
	SourceTitle *string
}

// ChunkParams describes one chunk row to insert under a resource.
type ChunkParams struct {
	Content   string
	Embedding pgvector.Vector
	Position  int
	HasCode   bool
	Language  *string
}

// SearchChunksParams configures a vector search.
type SearchChunksParams struct {
	QueryEmbedding pgvector.Vector
	// Categories restricts hits to resources whose category is in the set.
	// Empty means no filter.
	Categories []string
	// MinSimilarity is exclusive: only hits strictly above it are returned.
	MinSimilarity float64
	ResultLimit   int32
}

// SearchChunksRow is one row from a vector search.
type SearchChunksRow struct {
	Content     string
	Similarity  float64
	Category    *string
	SourceURL   *string
	SourceTitle *string
	ResourceID  string
}

// ResourceChunkRow is one chunk fetched for document reassembly, joined with
// resource provenance.
type ResourceChunkRow struct {
	Content     string
	Category    *string
	SourceURL   *string
	SourceTitle *string
}

// Querier is the storage dependency of Store. It is defined here, on the
// consumer side, so tests can substitute an in-memory implementation.
type Querier interface {
	CreateResource(ctx context.Context, arg CreateResourceParams) error
	InsertChunks(ctx context.Context, resourceID string, chunks []ChunkParams) error
	DeleteResource(ctx context.Context, id string) error
	DeleteResourcesBySourceURL(ctx context.Context, sourceURL string) error
	SearchChunks(ctx context.Context, arg SearchChunksParams) ([]SearchChunksRow, error)
	GetResourceChunks(ctx context.Context, resourceID string) ([]ResourceChunkRow, error)
}

// IDGenerator produces resource identifiers. Injected so tests get
// deterministic IDs.
type IDGenerator func() string

// Store composes the chunker, the embedding gateway, and the backing store.
// It is safe for concurrent use.
type Store struct {
	querier  Querier
	embedder embedding.Embedder
	newID    IDGenerator
	logger   *slog.Logger
}

// New creates a Store. logger may be nil.
func New(querier Querier, embedder embedding.Embedder, newID IDGenerator, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		querier:  querier,
		embedder: embedder,
		newID:    newID,
		logger:   logger,
	}
}

// IndexDocument chunks, embeds, and stores a document, returning the new
// resource ID. Chunks are inserted only after the resource row exists; a
// failure between the two leaves a resource with zero chunks, which is valid
// but never retrieved.
func (s *Store) IndexDocument(ctx context.Context, doc Document) (string, error) {
	if strings.TrimSpace(doc.Content) == "" {
		return "", ErrEmptyDocument
	}

	chunks := chunk.Split(doc.Content)
	contents := make([]string, len(chunks))
	for i, c := range chunks {
		contents[i] = c.Content
	}

	vectors, err := s.embedder.EmbedBatch(ctx, contents)
	if err != nil {
		return "", fmt.Errorf("embed document chunks: %w", err)
	}

	resourceID := s.newID()
	err = s.querier.CreateResource(ctx, CreateResourceParams{
		ID:          resourceID,
		Content:     doc.Content,
		Category:    doc.Category,
		SourceURL:   doc.SourceURL,
		SourceTitle: doc.SourceTitle,
	})
	if err != nil {
		return "", fmt.Errorf("create resource: %w", err)
	}

	params := make([]ChunkParams, len(chunks))
	for i, c := range chunks {
		var lang *string
		if c.Language != "" {
			l := c.Language
			lang = &l
		}
		params[i] = ChunkParams{
			Content:   c.Content,
			Embedding: pgvector.NewVector(vectors[i]),
			Position:  c.Position,
			HasCode:   c.HasCode,
			Language:  lang,
		}
	}
	if err := s.querier.InsertChunks(ctx, resourceID, params); err != nil {
		return "", fmt.Errorf("insert chunks for resource %s: %w", resourceID, err)
	}

	s.logger.Debug("indexed document",
		"resource_id", resourceID, "chunks", len(chunks), "content_length", len(doc.Content))
	return resourceID, nil
}

// ReindexDocument replaces any resources previously indexed from the same
// source URL, then indexes doc fresh. Deletion cascades to chunks, so
// retrieval during a re-index may transiently miss the document.
func (s *Store) ReindexDocument(ctx context.Context, doc Document) (string, error) {
	if doc.SourceURL != nil {
		if err := s.querier.DeleteResourcesBySourceURL(ctx, *doc.SourceURL); err != nil {
			return "", fmt.Errorf("delete stale resources for %s: %w", *doc.SourceURL, err)
		}
	}
	return s.IndexDocument(ctx, doc)
}

// DeleteResource removes a resource and, by cascade, all its chunks.
func (s *Store) DeleteResource(ctx context.Context, resourceID string) error {
	if err := s.querier.DeleteResource(ctx, resourceID); err != nil {
		return fmt.Errorf("delete resource %s: %w", resourceID, err)
	}
	s.logger.Debug("deleted resource", "resource_id", resourceID)
	return nil
}

// FindRelevant embeds query and returns up to TopK chunks strictly above
// SimilarityFloor, ranked by descending similarity. A non-empty categories
// set restricts hits to resources in those categories; resources without a
// category are then excluded. An empty query yields no hits.
func (s *Store) FindRelevant(ctx context.Context, query string, categories []string) ([]SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	rows, err := s.querier.SearchChunks(ctx, SearchChunksParams{
		QueryEmbedding: pgvector.NewVector(vec),
		Categories:     categories,
		MinSimilarity:  SimilarityFloor,
		ResultLimit:    TopK,
	})
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", err)
	}

	results := make([]SearchResult, 0, len(rows))
	for _, row := range rows {
		results = append(results, SearchResult(row))
	}
	return results, nil
}

// FindRelevantMulti fans out one search per query concurrently and merges the
// ranked lists, deduplicating by resource ID (falling back to content
// identity) while preserving first-seen order across queries.
func (s *Store) FindRelevantMulti(ctx context.Context, queries []string, categories []string) ([]SearchResult, error) {
	perQuery := make([][]SearchResult, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	for i, q := range queries {
		g.Go(func() error {
			results, err := s.FindRelevant(gctx, q, categories)
			if err != nil {
				return err
			}
			perQuery[i] = results
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var merged []SearchResult
	for _, results := range perQuery {
		for _, r := range results {
			key := r.ResourceID
			if key == "" {
				key = r.Content
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, r)
		}
	}
	return merged, nil
}

// GetFullDocument reassembles a resource by concatenating its chunks in
// insertion order with a blank line between them. A resource with no stored
// chunks, known or not, reports ErrNotFound.
func (s *Store) GetFullDocument(ctx context.Context, resourceID string) (*FullDocument, error) {
	rows, err := s.querier.GetResourceChunks(ctx, resourceID)
	if err != nil {
		return nil, fmt.Errorf("get chunks for resource %s: %w", resourceID, err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}

	parts := make([]string, len(rows))
	for i, row := range rows {
		parts[i] = row.Content
	}

	first := rows[0]
	return &FullDocument{
		Content:     strings.Join(parts, "\n\n"),
		Category:    first.Category,
		SourceURL:   first.SourceURL,
		SourceTitle: first.SourceTitle,
		ChunkCount:  len(rows),
	}, nil
}
