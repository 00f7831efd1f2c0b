// Package engine abstracts the full-text search engine behind a small port
// interface. The production implementation wraps Meilisearch; tests use an
// in-memory fake. The engine's indexing algorithms, ranking, and tokenization
// are consumed as a black box.
package engine

import (
	"context"

	"github.com/proposalhub/search-sync/internal/record"
)

// Engine is the document-store abstraction the index manager drives.
type Engine interface {
	// AddDocuments adds or fully replaces documents keyed by documentId.
	AddDocuments(ctx context.Context, docs []record.IndexedDocument) error
	// DeleteDocument removes one document; deleting an absent document is
	// not an error.
	DeleteDocument(ctx context.Context, documentID string) error
	// DeleteAllDocuments removes every document in the index.
	DeleteAllDocuments(ctx context.Context) error
	// Stats reports document count, in-progress flag, and field distribution.
	Stats(ctx context.Context) (*Stats, error)
	// ApplySettings idempotently configures attributes, ranking, and synonyms.
	ApplySettings(ctx context.Context, s Settings) error
	// GetSettings returns the engine's current settings projection.
	GetSettings(ctx context.Context) (*Settings, error)
	// Search executes a query with the given options.
	Search(ctx context.Context, q Query) (*Result, error)
}

// Stats is the engine's index status snapshot.
type Stats struct {
	DocumentCount     int64            `json:"documentCount"`
	IsIndexing        bool             `json:"isIndexing"`
	FieldDistribution map[string]int64 `json:"fieldDistribution"`
}

// Settings is the projection of engine configuration this service manages.
type Settings struct {
	SearchableAttributes []string            `json:"searchableAttributes"`
	FilterableAttributes []string            `json:"filterableAttributes"`
	SortableAttributes   []string            `json:"sortableAttributes"`
	RankingRules         []string            `json:"rankingRules"`
	Synonyms             map[string][]string `json:"synonyms"`
}

// Query carries a search request through to the engine.
type Query struct {
	Query                 string   `json:"query"`
	Limit                 int64    `json:"limit"`
	Offset                int64    `json:"offset"`
	Filter                []string `json:"filter,omitempty"`
	Sort                  []string `json:"sort,omitempty"`
	Facets                []string `json:"facets,omitempty"`
	AttributesToHighlight []string `json:"attributesToHighlight,omitempty"`
	AttributesToCrop      []string `json:"attributesToCrop,omitempty"`
	CropLength            int64    `json:"cropLength,omitempty"`
}

// Result is the engine's reply to a Query.
type Result struct {
	Hits              []any `json:"hits"`
	EstimatedTotalHits int64 `json:"estimatedTotalHits"`
	ProcessingTimeMs  int64 `json:"processingTimeMs"`
	FacetDistribution any   `json:"facetDistribution,omitempty"`
}
