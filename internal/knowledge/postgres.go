package knowledge

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresQuerier implements Querier on PostgreSQL with the pgvector
// extension. Cosine distance is computed by the database (`<=>`), so ranking
// and the similarity floor are pushed down instead of scanning chunks in
// application code.
type PostgresQuerier struct {
	pool *pgxpool.Pool
}

// NewPostgresQuerier wraps an existing connection pool. The pool must have
// pgvector types registered; see database.NewPool.
func NewPostgresQuerier(pool *pgxpool.Pool) *PostgresQuerier {
	return &PostgresQuerier{pool: pool}
}

func (q *PostgresQuerier) CreateResource(ctx context.Context, arg CreateResourceParams) error {
	_, err := q.pool.Exec(ctx,
		`INSERT INTO resources (id, content, category, source_url, source_title)
		 VALUES ($1, $2, $3, $4, $5)`,
		arg.ID, arg.Content, arg.Category, arg.SourceURL, arg.SourceTitle)
	if err != nil {
		return fmt.Errorf("insert resource: %w", err)
	}
	return nil
}

// InsertChunks bulk-inserts chunk rows via COPY. Row order follows the slice,
// so serial chunk IDs preserve the original position order.
func (q *PostgresQuerier) InsertChunks(ctx context.Context, resourceID string, chunks []ChunkParams) error {
	if len(chunks) == 0 {
		return nil
	}

	rows := make([][]any, len(chunks))
	for i, c := range chunks {
		rows[i] = []any{resourceID, c.Content, c.Embedding, c.Position, c.HasCode, c.Language}
	}

	_, err := q.pool.CopyFrom(ctx,
		pgx.Identifier{"embeddings"},
		[]string{"resource_id", "content", "embedding", "position", "has_code", "language"},
		pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("copy chunks: %w", err)
	}
	return nil
}

func (q *PostgresQuerier) DeleteResource(ctx context.Context, id string) error {
	// Chunks go with it via ON DELETE CASCADE.
	_, err := q.pool.Exec(ctx, `DELETE FROM resources WHERE id = $1`, id)
	return err
}

func (q *PostgresQuerier) DeleteResourcesBySourceURL(ctx context.Context, sourceURL string) error {
	_, err := q.pool.Exec(ctx, `DELETE FROM resources WHERE source_url = $1`, sourceURL)
	return err
}

// SearchChunks ranks chunks by cosine similarity against the query vector.
// The category filter uses inner-join semantics: with a non-empty filter,
// chunks of uncategorized resources never match. Ties break on resource then
// chunk ID for stable ordering.
func (q *PostgresQuerier) SearchChunks(ctx context.Context, arg SearchChunksParams) ([]SearchChunksRow, error) {
	rows, err := q.pool.Query(ctx,
		`SELECT e.content,
		        1 - (e.embedding <=> $1) AS similarity,
		        r.category, r.source_url, r.source_title, r.id
		 FROM embeddings e
		 JOIN resources r ON r.id = e.resource_id
		 WHERE 1 - (e.embedding <=> $1) > $2
		   AND (coalesce(cardinality($3::text[]), 0) = 0 OR r.category = ANY($3))
		 ORDER BY similarity DESC, r.id, e.id
		 LIMIT $4`,
		arg.QueryEmbedding, arg.MinSimilarity, arg.Categories, arg.ResultLimit)
	if err != nil {
		return nil, fmt.Errorf("query chunks: %w", err)
	}
	defer rows.Close()

	var results []SearchChunksRow
	for rows.Next() {
		var row SearchChunksRow
		if err := rows.Scan(&row.Content, &row.Similarity,
			&row.Category, &row.SourceURL, &row.SourceTitle, &row.ResourceID); err != nil {
			return nil, fmt.Errorf("scan chunk row: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// GetResourceChunks returns all chunks of a resource in ascending chunk ID
// order, which equals insertion and therefore position order.
func (q *PostgresQuerier) GetResourceChunks(ctx context.Context, resourceID string) ([]ResourceChunkRow, error) {
	rows, err := q.pool.Query(ctx,
		`SELECT e.content, r.category, r.source_url, r.source_title
		 FROM embeddings e
		 JOIN resources r ON r.id = e.resource_id
		 WHERE e.resource_id = $1
		 ORDER BY e.id ASC`,
		resourceID)
	if err != nil {
		return nil, fmt.Errorf("query resource chunks: %w", err)
	}
	defer rows.Close()

	var results []ResourceChunkRow
	for rows.Next() {
		var row ResourceChunkRow
		if err := rows.Scan(&row.Content, &row.Category, &row.SourceURL, &row.SourceTitle); err != nil {
			return nil, fmt.Errorf("scan resource chunk: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}
