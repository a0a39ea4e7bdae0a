package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ohada-ledger/internal/domain/shared"
	"github.com/ohada-ledger/internal/journal_processor/service"
	"github.com/ohada-ledger/internal/logger"
	"github.com/ohada-ledger/internal/platform/messaging/producers"
	"github.com/segmentio/kafka-go"
)

// SubmissionHandler handles journal entry submissions read from Kafka
type SubmissionHandler struct {
	processingService service.ProcessingService
	dlq               producers.DeadLetterPublisher
	logger            *slog.Logger
}

// NewSubmissionHandler creates a new handler. dlq may be nil.
func NewSubmissionHandler(
	logger *slog.Logger,
	processingService service.ProcessingService,
	dlq producers.DeadLetterPublisher,
) *SubmissionHandler {
	return &SubmissionHandler{
		processingService: processingService,
		dlq:               dlq,
		logger:            logger,
	}
}

// HandleMessage decodes one submission and processes it. Undecodable
// messages are parked on the DLQ; they are retried only when that fails.
func (h *SubmissionHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	correlationID := headerValue(msg, producers.CorrelationIDHeader)
	ctx = shared.WithCorrelationID(ctx, correlationID)

	var submission shared.EntrySubmission
	if err := json.Unmarshal(msg.Value, &submission); err != nil {
		const unmarshalErrorMsg = "Failed to unmarshal entry submission from Kafka message"
		h.logger.Error(unmarshalErrorMsg,
			"error", err,
			"message_key", string(msg.Key),
		)

		if h.dlq != nil {
			reason := fmt.Sprintf("%s: %s", unmarshalErrorMsg, err.Error())
			if dlqErr := h.dlq.PublishToDLQ(ctx, string(msg.Key), msg.Value, shared.KindInvalidRequest, reason); dlqErr != nil {
				h.logger.Error("Failed to publish message to DLQ after unmarshal error",
					"dlq_error", dlqErr,
					"original_error", err,
					"message_key", string(msg.Key),
				)
			} else {
				return nil
			}
		}
		return fmt.Errorf("failed to unmarshal message value: %w", err)
	}

	if submission.CorrelationID == "" {
		submission.CorrelationID = correlationID
	}

	log := h.logger
	if submission.CorrelationID != "" {
		log = h.logger.With("correlation_id", submission.CorrelationID)
	}
	ctx = logger.IntoContext(ctx, log)

	log.Info("Received journal entry submission",
		"submission_id", submission.SubmissionID.String(),
		"reference", submission.Reference,
		"partition", msg.Partition,
		"offset", msg.Offset,
	)

	if err := h.processingService.ProcessSubmission(ctx, &submission); err != nil {
		log.Error("Failed to process submission",
			"submission_id", submission.SubmissionID.String(),
			"error", err,
		)
		return fmt.Errorf("processing submission %s failed: %w", submission.SubmissionID.String(), err)
	}

	return nil
}

func headerValue(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}
