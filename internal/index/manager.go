// Package index owns all interaction with the search engine: single-document
// upsert and delete, bulk clear and rebuild from the source-of-truth store,
// settings configuration, stats, and query passthrough.
package index

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/proposalhub/search-sync/internal/engine"
	"github.com/proposalhub/search-sync/internal/record"
	"github.com/proposalhub/search-sync/internal/transform"
	"github.com/proposalhub/search-sync/pkg/config"
	apperrors "github.com/proposalhub/search-sync/pkg/errors"
	"github.com/proposalhub/search-sync/pkg/metrics"
	"github.com/proposalhub/search-sync/pkg/tracing"
)

// RecordSource lists every published record for bulk rebuilds.
type RecordSource interface {
	ListPublished(ctx context.Context) ([]record.SourceRecord, error)
}

// Invalidator is notified after any index write so derived caches can drop
// stale entries.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// RebuildResult reports how many documents a bulk rebuild indexed and how
// many were skipped because their batch failed.
type RebuildResult struct {
	Indexed int `json:"indexed"`
	Skipped int `json:"skipped"`
}

// RefreshResult is the aggregate outcome of clear-then-rebuild. Refresh never
// returns an error; failures are captured here.
type RefreshResult struct {
	Success bool          `json:"success"`
	Indexed int           `json:"indexed"`
	Skipped int           `json:"skipped"`
	Error   string        `json:"error,omitempty"`
	Stats   *engine.Stats `json:"stats,omitempty"`
}

// ManagerStats combines the engine's index stats with its settings projection.
type ManagerStats struct {
	DocumentCount     int64            `json:"documentCount"`
	IsIndexing        bool             `json:"isIndexing"`
	FieldDistribution map[string]int64 `json:"fieldDistribution"`
	Settings          *engine.Settings `json:"settings,omitempty"`
}

// Manager coordinates all writes and reads against the search engine.
type Manager struct {
	engine      engine.Engine
	source      RecordSource
	invalidator Invalidator
	metrics     *metrics.Metrics

	batchSize    int
	clearTimeout time.Duration
	pollInterval time.Duration

	logger *slog.Logger
}

// NewManager creates a Manager. source may be nil when bulk rebuilds are not
// needed (e.g. the orchestrator's incremental path); invalidator and m are
// optional.
func NewManager(eng engine.Engine, source RecordSource, invalidator Invalidator, m *metrics.Metrics, cfg config.SyncConfig) *Manager {
	batchSize := cfg.RebuildBatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	clearTimeout := cfg.ClearTimeout
	if clearTimeout <= 0 {
		clearTimeout = 30 * time.Second
	}
	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	return &Manager{
		engine:       eng,
		source:       source,
		invalidator:  invalidator,
		metrics:      m,
		batchSize:    batchSize,
		clearTimeout: clearTimeout,
		pollInterval: pollInterval,
		logger:       slog.Default().With("component", "index-manager"),
	}
}

// Upsert fully replaces the document keyed by doc.DocumentID, creating it if
// absent. Each sync is a whole-document replace, never a partial update.
func (m *Manager) Upsert(ctx context.Context, doc record.IndexedDocument) error {
	if err := m.engine.AddDocuments(ctx, []record.IndexedDocument{doc}); err != nil {
		m.countOp("upsert", "error")
		return fmt.Errorf("upserting document %s: %w", doc.DocumentID, err)
	}
	m.countOp("upsert", "ok")
	m.invalidate(ctx)
	return nil
}

// Remove deletes the document at documentID. Removing an absent document is
// a no-op, not an error.
func (m *Manager) Remove(ctx context.Context, documentID string) error {
	if err := m.engine.DeleteDocument(ctx, documentID); err != nil {
		m.countOp("remove", "error")
		return fmt.Errorf("removing document %s: %w", documentID, err)
	}
	m.countOp("remove", "ok")
	m.invalidate(ctx)
	return nil
}

// Clear deletes every document and blocks until the engine reports the index
// empty and idle, polling at the configured interval up to the clear timeout.
func (m *Manager) Clear(ctx context.Context) error {
	if err := m.engine.DeleteAllDocuments(ctx); err != nil {
		m.countOp("clear", "error")
		return fmt.Errorf("clearing index: %w", err)
	}

	deadline := time.Now().Add(m.clearTimeout)
	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		stats, err := m.engine.Stats(ctx)
		if err != nil {
			m.countOp("clear", "error")
			return fmt.Errorf("polling index stats after clear: %w", err)
		}
		if !stats.IsIndexing && stats.DocumentCount == 0 {
			m.countOp("clear", "ok")
			m.invalidate(ctx)
			return nil
		}
		if time.Now().After(deadline) {
			m.countOp("clear", "timeout")
			return fmt.Errorf("%w: index clear did not settle within %s", apperrors.ErrTimeout, m.clearTimeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Rebuild fetches every published record, transforms each, and submits them
// in fixed-size batches. Batches are issued serially: one failed batch is
// counted as skipped and does not abort the rest.
func (m *Manager) Rebuild(ctx context.Context) (RebuildResult, error) {
	ctx, span := tracing.StartChildSpan(ctx, "index.rebuild")
	defer span.End()

	var result RebuildResult
	if m.source == nil {
		return result, fmt.Errorf("%w: no record source configured", apperrors.ErrInternal)
	}

	records, err := m.source.ListPublished(ctx)
	if err != nil {
		return result, fmt.Errorf("listing published records: %w", err)
	}
	span.SetAttr("records", len(records))

	docs := make([]record.IndexedDocument, 0, len(records))
	for i := range records {
		docs = append(docs, transform.Transform(&records[i]))
	}

	for start := 0; start < len(docs); start += m.batchSize {
		end := start + m.batchSize
		if end > len(docs) {
			end = len(docs)
		}
		batch := docs[start:end]
		if err := m.engine.AddDocuments(ctx, batch); err != nil {
			m.logger.Error("rebuild batch failed",
				"batch_start", start,
				"batch_size", len(batch),
				"error", err,
			)
			result.Skipped += len(batch)
			m.countRebuild("skipped", len(batch))
			continue
		}
		result.Indexed += len(batch)
		m.countRebuild("indexed", len(batch))
	}

	m.logger.Info("rebuild finished",
		"indexed", result.Indexed,
		"skipped", result.Skipped,
	)
	m.invalidate(ctx)
	return result, nil
}

// Refresh clears the index and rebuilds it from the source-of-truth store.
// It never returns an error; failures are captured in the result.
func (m *Manager) Refresh(ctx context.Context) RefreshResult {
	ctx, span := tracing.StartSpan(ctx, "index.refresh", "")
	defer func() {
		span.End()
		span.Log()
	}()

	var result RefreshResult
	if err := m.Clear(ctx); err != nil {
		m.logger.Error("refresh: clear failed", "error", err)
		result.Error = err.Error()
		return result
	}

	rebuilt, err := m.Rebuild(ctx)
	result.Indexed = rebuilt.Indexed
	result.Skipped = rebuilt.Skipped
	if err != nil {
		m.logger.Error("refresh: rebuild failed", "error", err)
		result.Error = err.Error()
		return result
	}

	result.Success = true
	if stats, err := m.engine.Stats(ctx); err == nil {
		result.Stats = stats
		m.setDocGauge(stats.DocumentCount)
	}
	return result
}

// Configure idempotently applies the canonical engine settings: searchable
// attribute order, filterable and sortable sets, ranking rules, and the
// domain synonym dictionary.
func (m *Manager) Configure(ctx context.Context) error {
	if err := m.engine.ApplySettings(ctx, engineSettings()); err != nil {
		m.countOp("settings", "error")
		return fmt.Errorf("configuring index: %w", err)
	}
	m.countOp("settings", "ok")
	m.logger.Info("index settings applied")
	return nil
}

// Search passes the query through to the engine.
func (m *Manager) Search(ctx context.Context, q engine.Query) (*engine.Result, error) {
	result, err := m.engine.Search(ctx, q)
	if err != nil {
		m.countOp("search", "error")
		return nil, err
	}
	m.countOp("search", "ok")
	return result, nil
}

// Stats returns the engine's document count, in-progress flag, field
// distribution, and current settings projection.
func (m *Manager) Stats(ctx context.Context) (*ManagerStats, error) {
	stats, err := m.engine.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching index stats: %w", err)
	}
	out := &ManagerStats{
		DocumentCount:     stats.DocumentCount,
		IsIndexing:        stats.IsIndexing,
		FieldDistribution: stats.FieldDistribution,
	}
	m.setDocGauge(stats.DocumentCount)

	// Settings are best-effort; stats remain useful without them.
	if settings, err := m.engine.GetSettings(ctx); err == nil {
		out.Settings = settings
	} else {
		m.logger.Warn("fetching index settings failed", "error", err)
	}
	return out, nil
}

func (m *Manager) invalidate(ctx context.Context) {
	if m.invalidator == nil {
		return
	}
	if err := m.invalidator.Invalidate(ctx); err != nil {
		m.logger.Warn("cache invalidation failed", "error", err)
	}
}

func (m *Manager) countOp(op, status string) {
	if m.metrics != nil {
		m.metrics.EngineOpsTotal.WithLabelValues(op, status).Inc()
	}
}

func (m *Manager) countRebuild(status string, n int) {
	if m.metrics != nil {
		m.metrics.RebuildDocsTotal.WithLabelValues(status).Add(float64(n))
	}
}

func (m *Manager) setDocGauge(count int64) {
	if m.metrics != nil {
		m.metrics.IndexedDocuments.Set(float64(count))
	}
}
