package components

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ohada-ledger/internal/domain/shared"
	"github.com/ohada-ledger/internal/journal_processor/service"
	"github.com/ohada-ledger/internal/platform/messaging/producers"
)

// RejectionRecorderImpl parks rejected submissions on the dead letter topic,
// tagged with the rejection kind. Without a DLQ it only logs them.
type RejectionRecorderImpl struct {
	dlq    producers.DeadLetterPublisher
	logger *slog.Logger
}

func NewRejectionRecorder(dlq producers.DeadLetterPublisher, logger *slog.Logger) service.RejectionRecorder {
	return &RejectionRecorderImpl{
		dlq:    dlq,
		logger: logger,
	}
}

// RecordRejection records a submission that failed a bookkeeping rule
func (r *RejectionRecorderImpl) RecordRejection(ctx context.Context, submission *shared.EntrySubmission, cause error) error {
	logger := r.logger
	if submission.CorrelationID != "" {
		logger = r.logger.With("correlation_id", submission.CorrelationID)
	}

	kind := shared.KindOf(cause)
	logger.Info("Recording rejected submission",
		"submission_id", submission.SubmissionID.String(),
		"reference", submission.Reference,
		"kind", string(kind),
		"reason", cause.Error(),
	)

	if r.dlq == nil {
		logger.Warn("No DLQ configured, rejected submission dropped",
			"submission_id", submission.SubmissionID.String(),
		)
		return nil
	}

	value, err := json.Marshal(submission)
	if err != nil {
		return fmt.Errorf("failed to marshal rejected submission: %w", err)
	}

	ctx = shared.WithCorrelationID(ctx, submission.CorrelationID)
	if err := r.dlq.PublishToDLQ(ctx, submission.Reference, value, kind, cause.Error()); err != nil {
		logger.Error("Failed to publish rejected submission to DLQ",
			"submission_id", submission.SubmissionID.String(),
			"error", err,
		)
		return err
	}

	logger.Info("Rejected submission published to DLQ", "submission_id", submission.SubmissionID.String())
	return nil
}
