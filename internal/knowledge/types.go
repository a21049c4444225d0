package knowledge

import "errors"

// ErrNotFound reports a resource with no stored chunks. It is an expected
// outcome of GetFullDocument, not a fault; callers handle it as data.
var ErrNotFound = errors.New("document not found")

// ErrEmptyDocument reports an attempt to index a document with no content.
var ErrEmptyDocument = errors.New("document has no content")

// Document is a source document queued for indexing, with optional
// provenance. Nil provenance fields are stored as SQL NULL.
type Document struct {
	Content     string
	Category    *string
	SourceURL   *string
	SourceTitle *string
}

// SearchResult is one ranked retrieval hit. Provenance fields come from the
// owning resource and are nil when the resource carries none.
type SearchResult struct {
	Content     string  `json:"content"`
	Similarity  float64 `json:"similarity"`
	Category    *string `json:"category,omitempty"`
	SourceURL   *string `json:"sourceUrl,omitempty"`
	SourceTitle *string `json:"sourceTitle,omitempty"`
	ResourceID  string  `json:"resourceId"`
}

// FullDocument is a document reassembled from its stored chunks.
type FullDocument struct {
	Content     string  `json:"content"`
	Category    *string `json:"category,omitempty"`
	SourceURL   *string `json:"sourceUrl,omitempty"`
	SourceTitle *string `json:"sourceTitle,omitempty"`
	ChunkCount  int     `json:"chunkCount"`
}
