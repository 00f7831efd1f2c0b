// Package sync drives the document-to-search-index synchronization pipeline.
// The Orchestrator subscribes to the record store's lifecycle events and,
// according to the record's publication state, enriches pending writes and
// upserts or removes the corresponding search document. The search index is a
// derived, eventually-consistent view: no failure here may ever block or roll
// back a store write.
package sync

import (
	"context"
	"log/slog"
	"time"

	"github.com/proposalhub/search-sync/internal/enrich"
	"github.com/proposalhub/search-sync/internal/record"
	"github.com/proposalhub/search-sync/internal/store"
	"github.com/proposalhub/search-sync/internal/transform"
	"github.com/proposalhub/search-sync/pkg/metrics"
)

// Enricher fetches the enrichment payload for an SF number.
type Enricher interface {
	Fetch(ctx context.Context, sfNumber string) (*enrich.Payload, error)
}

// Indexer is the slice of the index manager the orchestrator drives.
type Indexer interface {
	Upsert(ctx context.Context, doc record.IndexedDocument) error
	Remove(ctx context.Context, documentID string) error
}

// Orchestrator implements the lifecycle state machine: a record is indexed
// iff its publication timestamp is non-null.
type Orchestrator struct {
	enricher Enricher
	indexer  Indexer
	audit    *AuditPublisher
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// New creates an Orchestrator. audit and m are optional.
func New(enricher Enricher, indexer Indexer, audit *AuditPublisher, m *metrics.Metrics) *Orchestrator {
	return &Orchestrator{
		enricher: enricher,
		indexer:  indexer,
		audit:    audit,
		metrics:  m,
		logger:   slog.Default().With("component", "sync-orchestrator"),
	}
}

// Register subscribes the orchestrator to all five lifecycle events.
func (o *Orchestrator) Register(s *store.Store) {
	s.OnPreCreate(o.PreCreate)
	s.OnPreUpdate(o.PreUpdate)
	s.OnPostCreate(o.PostCreate)
	s.OnPostUpdate(o.PostUpdate)
	s.OnPostDelete(o.PostDelete)
}

// PreCreate enriches the pending draft when it carries an SF number and no
// manual-override flag. Enrichment failures are logged and swallowed: the
// create proceeds with whatever fields it already has.
func (o *Orchestrator) PreCreate(ctx context.Context, draft *record.Draft) error {
	if draft.SFNumber == "" || draft.ManualOverride {
		o.countEnrichment("skipped")
		return nil
	}
	o.enrichDraft(ctx, draft)
	return nil
}

// PreUpdate enriches a pending update unless it is a publish/unpublish write
// (an update setting the publication timestamp must be persisted verbatim) or
// the stored record already carries the same SF number.
func (o *Orchestrator) PreUpdate(ctx context.Context, draft *record.Draft, current *record.SourceRecord) error {
	if draft.SetsPublishedAt() {
		return nil
	}
	if draft.SFNumber == "" || draft.ManualOverride {
		o.countEnrichment("skipped")
		return nil
	}
	if current != nil && current.SFNumber == draft.SFNumber {
		// Same SF number as stored: nothing new to enrich from.
		o.countEnrichment("skipped")
		return nil
	}
	o.enrichDraft(ctx, draft)
	return nil
}

// PostCreate indexes the new record when it was created already published;
// a draft stays unindexed.
func (o *Orchestrator) PostCreate(ctx context.Context, rec *record.SourceRecord) {
	if !rec.Published() {
		o.countSync("post-create", "none", "ok")
		return
	}
	o.upsert(ctx, "post-create", rec)
}

// PostUpdate replaces the indexed document when the record is published and
// removes it when the record was unpublished.
func (o *Orchestrator) PostUpdate(ctx context.Context, rec *record.SourceRecord) {
	if rec.Published() {
		o.upsert(ctx, "post-update", rec)
		return
	}
	o.remove(ctx, "post-update", rec)
}

// PostDelete removes the record's document from the index.
func (o *Orchestrator) PostDelete(ctx context.Context, rec *record.SourceRecord) {
	o.remove(ctx, "post-delete", rec)
}

// enrichDraft fetches and merges the enrichment payload. Never fails.
func (o *Orchestrator) enrichDraft(ctx context.Context, draft *record.Draft) {
	start := time.Now()
	payload, err := o.enricher.Fetch(ctx, draft.SFNumber)
	if o.metrics != nil {
		o.metrics.EnrichmentLatency.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		o.countEnrichment("error")
		o.logger.Warn("enrichment failed, continuing without it",
			"sf_number", draft.SFNumber,
			"error", err,
		)
		return
	}
	enrich.Populate(draft, payload)
	o.countEnrichment("ok")
	o.logger.Debug("draft enriched", "sf_number", draft.SFNumber)
}

// upsert transforms and replaces the record's search document. Failures are
// logged and swallowed: the store write has already committed and the index
// is allowed to go transiently stale until the next refresh.
func (o *Orchestrator) upsert(ctx context.Context, trigger string, rec *record.SourceRecord) {
	doc := transform.Transform(rec)
	if err := o.indexer.Upsert(ctx, doc); err != nil {
		o.logger.Error("index upsert failed",
			"trigger", trigger,
			"document_id", rec.DocumentID,
			"error", err,
		)
		o.countSync(trigger, "upsert", "error")
		o.publishAudit(ctx, trigger, "upsert", rec, err)
		return
	}
	o.logger.Info("document indexed",
		"trigger", trigger,
		"document_id", rec.DocumentID,
	)
	o.countSync(trigger, "upsert", "ok")
	o.publishAudit(ctx, trigger, "upsert", rec, nil)
}

// remove deletes the record's search document. Failures are logged and
// swallowed, same as upsert.
func (o *Orchestrator) remove(ctx context.Context, trigger string, rec *record.SourceRecord) {
	if err := o.indexer.Remove(ctx, rec.DocumentID); err != nil {
		o.logger.Error("index remove failed",
			"trigger", trigger,
			"document_id", rec.DocumentID,
			"error", err,
		)
		o.countSync(trigger, "remove", "error")
		o.publishAudit(ctx, trigger, "remove", rec, err)
		return
	}
	o.logger.Info("document removed from index",
		"trigger", trigger,
		"document_id", rec.DocumentID,
	)
	o.countSync(trigger, "remove", "ok")
	o.publishAudit(ctx, trigger, "remove", rec, nil)
}

func (o *Orchestrator) publishAudit(ctx context.Context, trigger, action string, rec *record.SourceRecord, cause error) {
	if o.audit == nil {
		return
	}
	o.audit.Publish(ctx, trigger, action, rec, cause)
}

func (o *Orchestrator) countSync(trigger, action, outcome string) {
	if o.metrics != nil {
		o.metrics.SyncEventsTotal.WithLabelValues(trigger, action, outcome).Inc()
	}
}

func (o *Orchestrator) countEnrichment(status string) {
	if o.metrics != nil {
		o.metrics.EnrichmentTotal.WithLabelValues(status).Inc()
	}
}
