package outbox_poller

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ohada-ledger/internal/domain/archive"
	"github.com/ohada-ledger/internal/domain/outbox"
	"github.com/ohada-ledger/internal/domain/shared"
	"github.com/ohada-ledger/internal/platform/messaging/producers"
)

// EventPublisher projects one outbox message out of the database
type EventPublisher interface {
	PublishEvent(ctx context.Context, message *outbox.Message) error
}

// EventPublisherImpl writes journal events to the event topic and keeps the
// posted entries archive in step with ENTRY_POSTED events.
type EventPublisherImpl struct {
	outboxRepo  outbox.Repository
	producer    producers.MessagePublisher
	archiveRepo archive.Repository
	logger      *slog.Logger
}

// NewEventPublisher creates a new publisher. archiveRepo may be nil, in which
// case posted entries are only published.
func NewEventPublisher(
	outboxRepo outbox.Repository,
	producer producers.MessagePublisher,
	archiveRepo archive.Repository,
	logger *slog.Logger,
) EventPublisher {
	return &EventPublisherImpl{
		outboxRepo:  outboxRepo,
		producer:    producer,
		archiveRepo: archiveRepo,
		logger:      logger,
	}
}

// PublishEvent publishes the event, archives posted entries and marks the
// message PROCESSED. Publishing and archiving are both idempotent, so a
// message retried after a partial failure is safe.
func (p *EventPublisherImpl) PublishEvent(ctx context.Context, message *outbox.Message) error {
	event, err := message.Event()
	if err != nil {
		p.logger.Error("Failed to unmarshal journal event from outbox payload",
			"outbox_id", message.ID, "entry_id", message.EntryID, "error", err,
		)
		if updateErr := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusFailedToPublish); updateErr != nil {
			p.logger.Error("Also failed to update outbox status to FAILED_TO_PUBLISH after unmarshal error", "outbox_id", message.ID, "update_error", updateErr)
		}
		return fmt.Errorf("unmarshal payload for outbox %d failed: %w", message.ID, err)
	}

	logger := p.logger
	if event.CorrelationID != "" {
		logger = p.logger.With("correlation_id", event.CorrelationID)
		ctx = shared.WithCorrelationID(ctx, event.CorrelationID)
	}

	logger.Debug("Publishing journal event",
		"outbox_id", message.ID, "type", string(event.Type), "reference", event.Reference,
	)

	if err := p.producer.Publish(ctx, event.EntryID.String(), event); err != nil {
		return fmt.Errorf("failed to publish event %s for entry %s: %w", event.Type, event.Reference, err)
	}

	if event.Type == shared.JournalEventPosted && p.archiveRepo != nil {
		if event.Entry == nil {
			logger.Warn("ENTRY_POSTED event carries no entry, skipping archive", "outbox_id", message.ID)
		} else if err := p.archiveRepo.Upsert(ctx, archive.FromEntry(event.Entry, event.CorrelationID)); err != nil {
			return fmt.Errorf("failed to archive posted entry %s: %w", event.Reference, err)
		} else {
			logger.Info("Archived posted entry", "entry_id", event.EntryID, "reference", event.Reference)
		}
	}

	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusProcessed); err != nil {
		logger.Error("Failed to update outbox message status to PROCESSED",
			"outbox_id", message.ID, "entry_id", message.EntryID, "error", err,
		)
		return fmt.Errorf("event for %s published, but failed to mark outbox %d as PROCESSED: %w", event.Reference, message.ID, err)
	}

	logger.Info("Journal event published", "outbox_id", message.ID, "type", string(event.Type), "reference", event.Reference)
	return nil
}
