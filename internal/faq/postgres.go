package faq

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresQuerier implements Querier on the faq table.
type PostgresQuerier struct {
	pool *pgxpool.Pool
}

// NewPostgresQuerier wraps an existing connection pool.
func NewPostgresQuerier(pool *pgxpool.Pool) *PostgresQuerier {
	return &PostgresQuerier{pool: pool}
}

func (q *PostgresQuerier) ListEntries(ctx context.Context) ([]Entry, error) {
	rows, err := q.pool.Query(ctx,
		`SELECT id, question, answer, category, hits, last_used FROM faq ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list faq entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Question, &e.Answer, &e.Category, &e.Hits, &e.LastUsed); err != nil {
			return nil, fmt.Errorf("scan faq entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// RecordHit bumps the counter in SQL so concurrent hits both land.
func (q *PostgresQuerier) RecordHit(ctx context.Context, id string) error {
	_, err := q.pool.Exec(ctx,
		`UPDATE faq SET hits = hits + 1, last_used = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("record faq hit: %w", err)
	}
	return nil
}

func (q *PostgresQuerier) CreateEntry(ctx context.Context, arg CreateEntryParams) (Entry, error) {
	id := uuid.NewString()
	_, err := q.pool.Exec(ctx,
		`INSERT INTO faq (id, question, answer, category) VALUES ($1, $2, $3, $4)`,
		id, arg.Question, arg.Answer, arg.Category)
	if err != nil {
		return Entry{}, fmt.Errorf("insert faq entry: %w", err)
	}
	return Entry{
		ID:       id,
		Question: arg.Question,
		Answer:   arg.Answer,
		Category: arg.Category,
	}, nil
}
