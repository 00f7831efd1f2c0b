package engine

import (
	"context"
	"fmt"

	"github.com/meilisearch/meilisearch-go"

	"github.com/proposalhub/search-sync/internal/record"
	"github.com/proposalhub/search-sync/pkg/config"
	apperrors "github.com/proposalhub/search-sync/pkg/errors"
	"github.com/proposalhub/search-sync/pkg/resilience"
)

// Meili implements Engine against a Meilisearch index. The client applies its
// own request timeouts; context cancellation is honored between calls. All
// calls go through a shared circuit breaker so a down engine fails fast
// instead of stalling every record write.
type Meili struct {
	client  *meilisearch.Client
	index   *meilisearch.Index
	breaker *resilience.CircuitBreaker
}

// NewMeili builds the Meilisearch-backed engine from config.
func NewMeili(cfg config.MeilisearchConfig) *Meili {
	client := meilisearch.NewClient(meilisearch.ClientConfig{
		Host:   cfg.Host,
		APIKey: cfg.APIKey,
	})
	return &Meili{
		client:  client,
		index:   client.Index(cfg.Index),
		breaker: resilience.NewCircuitBreaker("meilisearch", resilience.CircuitBreakerConfig{}),
	}
}

// do runs one engine call through the circuit breaker after checking the
// context.
func (m *Meili) do(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.breaker.Execute(fn)
}

// Ping verifies the engine is reachable. It bypasses the breaker so health
// probes can observe recovery while the circuit is open.
func (m *Meili) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := m.client.Health(); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrEngineUnavailable, err)
	}
	return nil
}

func (m *Meili) AddDocuments(ctx context.Context, docs []record.IndexedDocument) error {
	return m.do(ctx, func() error {
		if _, err := m.index.AddDocuments(docs, "documentId"); err != nil {
			return fmt.Errorf("adding documents: %w", err)
		}
		return nil
	})
}

func (m *Meili) DeleteDocument(ctx context.Context, documentID string) error {
	return m.do(ctx, func() error {
		if _, err := m.index.DeleteDocument(documentID); err != nil {
			return fmt.Errorf("deleting document %s: %w", documentID, err)
		}
		return nil
	})
}

func (m *Meili) DeleteAllDocuments(ctx context.Context) error {
	return m.do(ctx, func() error {
		if _, err := m.index.DeleteAllDocuments(); err != nil {
			return fmt.Errorf("deleting all documents: %w", err)
		}
		return nil
	})
}

func (m *Meili) Stats(ctx context.Context) (*Stats, error) {
	var out *Stats
	err := m.do(ctx, func() error {
		stats, err := m.index.GetStats()
		if err != nil {
			return fmt.Errorf("fetching index stats: %w", err)
		}
		out = &Stats{
			DocumentCount:     stats.NumberOfDocuments,
			IsIndexing:        stats.IsIndexing,
			FieldDistribution: stats.FieldDistribution,
		}
		return nil
	})
	return out, err
}

func (m *Meili) ApplySettings(ctx context.Context, s Settings) error {
	return m.do(ctx, func() error {
		settings := meilisearch.Settings{
			SearchableAttributes: s.SearchableAttributes,
			FilterableAttributes: s.FilterableAttributes,
			SortableAttributes:   s.SortableAttributes,
			RankingRules:         s.RankingRules,
			Synonyms:             s.Synonyms,
		}
		if _, err := m.index.UpdateSettings(&settings); err != nil {
			return fmt.Errorf("updating index settings: %w", err)
		}
		return nil
	})
}

func (m *Meili) GetSettings(ctx context.Context) (*Settings, error) {
	var out *Settings
	err := m.do(ctx, func() error {
		settings, err := m.index.GetSettings()
		if err != nil {
			return fmt.Errorf("fetching index settings: %w", err)
		}
		out = &Settings{
			SearchableAttributes: settings.SearchableAttributes,
			FilterableAttributes: settings.FilterableAttributes,
			SortableAttributes:   settings.SortableAttributes,
			RankingRules:         settings.RankingRules,
			Synonyms:             settings.Synonyms,
		}
		return nil
	})
	return out, err
}

func (m *Meili) Search(ctx context.Context, q Query) (*Result, error) {
	req := &meilisearch.SearchRequest{
		Limit:  q.Limit,
		Offset: q.Offset,
	}
	if len(q.Filter) > 0 {
		req.Filter = q.Filter
	}
	if len(q.Sort) > 0 {
		req.Sort = q.Sort
	}
	if len(q.Facets) > 0 {
		req.Facets = q.Facets
	}
	if len(q.AttributesToHighlight) > 0 {
		req.AttributesToHighlight = q.AttributesToHighlight
	}
	if len(q.AttributesToCrop) > 0 {
		req.AttributesToCrop = q.AttributesToCrop
		req.CropLength = q.CropLength
	}

	var out *Result
	err := m.do(ctx, func() error {
		resp, err := m.index.Search(q.Query, req)
		if err != nil {
			return fmt.Errorf("searching index: %w", err)
		}
		out = &Result{
			Hits:               resp.Hits,
			EstimatedTotalHits: resp.EstimatedTotalHits,
			ProcessingTimeMs:   resp.ProcessingTimeMs,
			FacetDistribution:  resp.FacetDistribution,
		}
		return nil
	})
	return out, err
}
