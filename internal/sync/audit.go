package sync

import (
	"context"
	"log/slog"
	"time"

	"github.com/proposalhub/search-sync/internal/record"
	"github.com/proposalhub/search-sync/pkg/kafka"
)

// AuditEvent is published to the sync-audit topic after every post-save index
// action, so downstream systems can observe index drift and sync failures.
type AuditEvent struct {
	DocumentID string    `json:"document_id"`
	SFNumber   string    `json:"sf_number"`
	Trigger    string    `json:"trigger"`
	Action     string    `json:"action"`
	Error      string    `json:"error,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// AuditPublisher writes sync outcomes to Kafka, best effort: a publish
// failure is logged and never propagated.
type AuditPublisher struct {
	producer *kafka.Producer
	logger   *slog.Logger
}

// NewAuditPublisher wraps a Kafka producer for the sync-audit topic.
func NewAuditPublisher(producer *kafka.Producer) *AuditPublisher {
	return &AuditPublisher{
		producer: producer,
		logger:   slog.Default().With("component", "sync-audit"),
	}
}

// Publish emits one audit event keyed by document ID.
func (p *AuditPublisher) Publish(ctx context.Context, trigger, action string, rec *record.SourceRecord, cause error) {
	event := AuditEvent{
		DocumentID: rec.DocumentID,
		SFNumber:   rec.SFNumber,
		Trigger:    trigger,
		Action:     action,
		OccurredAt: time.Now().UTC(),
	}
	if cause != nil {
		event.Error = cause.Error()
	}
	if err := p.producer.Publish(ctx, kafka.Event{Key: rec.DocumentID, Value: event}); err != nil {
		p.logger.Warn("audit publish failed", "document_id", rec.DocumentID, "error", err)
	}
}
