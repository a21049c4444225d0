// Package faq maintains a small curated question/answer table consulted
// before the retrieval pipeline.
//
// Matching is fuzzy: normalized Levenshtein distance between the incoming
// query and every cached question, scanned in full. The table is a curated
// set of tens to low hundreds of entries, so the quadratic scan is fine; a
// pre-filtered candidate index only becomes worth it if that assumption
// breaks.
//
// The cache is a best-effort accelerator. It never fails a caller: storage
// errors degrade to "no match".
package faq

import (
	"context"
	"log/slog"
	"time"
)

// Caller-facing threshold presets. The threshold is a Search parameter, not
// a constant: 0.3 demands 70% similarity (confident answer), 0.5 accepts 50%
// (hint, not authoritative).
const (
	StrictThreshold = 0.3
	LooseThreshold  = 0.5
)

// Entry is one curated question/answer pair.
type Entry struct {
	ID       string
	Question string
	Answer   string
	Category *string
	Hits     int
	LastUsed *time.Time
}

// Match is a successful cache hit. Similarity is 1 minus the normalized edit
// distance, so 1 means the query equals the cached question.
type Match struct {
	Question   string  `json:"question"`
	Answer     string  `json:"answer"`
	Similarity float64 `json:"similarity"`
}

// CreateEntryParams describes a new FAQ entry.
type CreateEntryParams struct {
	Question string
	Answer   string
	Category *string
}

// Querier is the storage dependency of Cache, defined on the consumer side.
type Querier interface {
	ListEntries(ctx context.Context) ([]Entry, error)
	// RecordHit increments the entry's hit counter and stamps last_used.
	// The increment must happen at the storage layer so concurrent hits
	// never lose counts.
	RecordHit(ctx context.Context, id string) error
	CreateEntry(ctx context.Context, arg CreateEntryParams) (Entry, error)
}

// Cache fuzzily matches queries against the FAQ table.
type Cache struct {
	querier Querier
	logger  *slog.Logger
}

// NewCache creates a Cache. logger may be nil.
func NewCache(querier Querier, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{querier: querier, logger: logger}
}

// Search returns the cached entry closest to query, or nil when none is
// within threshold. Strictly smaller distances win; ties keep the first
// entry in store order. A hit bumps the entry's usage counter as a side
// effect. Storage errors are swallowed and reported as no match.
func (c *Cache) Search(ctx context.Context, query string, threshold float64) *Match {
	entries, err := c.querier.ListEntries(ctx)
	if err != nil {
		c.logger.Warn("faq lookup failed, skipping cache", "error", err)
		return nil
	}
	if len(entries) == 0 {
		return nil
	}

	var best *Entry
	bestDistance := 0.0
	for i := range entries {
		d := normalizedDistance(query, entries[i].Question)
		if d <= threshold && (best == nil || d < bestDistance) {
			best = &entries[i]
			bestDistance = d
		}
	}
	if best == nil {
		return nil
	}

	if err := c.querier.RecordHit(ctx, best.ID); err != nil {
		// The counter is an approximate usage metric; losing an increment
		// must not cost the caller the answer.
		c.logger.Warn("faq hit update failed", "id", best.ID, "error", err)
	}

	return &Match{
		Question:   best.Question,
		Answer:     best.Answer,
		Similarity: 1 - bestDistance,
	}
}

// Add inserts a new FAQ entry.
func (c *Cache) Add(ctx context.Context, arg CreateEntryParams) (Entry, error) {
	return c.querier.CreateEntry(ctx, arg)
}
