package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ohada-ledger/internal/domain/journal"
	"github.com/ohada-ledger/internal/domain/shared"
	"github.com/ohada-ledger/internal/logger"
)

type ProcessingServiceImpl struct {
	entries  EntryCreator
	recorder RejectionRecorder
	logger   *slog.Logger
}

func NewProcessingService(
	entries EntryCreator,
	recorder RejectionRecorder,
	logger *slog.Logger,
) ProcessingService {
	return &ProcessingServiceImpl{
		entries:  entries,
		recorder: recorder,
		logger:   logger,
	}
}

// ProcessSubmission creates the submitted entry. Business rule failures are
// recorded and acknowledged; infrastructure failures are returned for retry.
func (s *ProcessingServiceImpl) ProcessSubmission(ctx context.Context, submission *shared.EntrySubmission) error {
	ctx = shared.WithCorrelationID(ctx, submission.CorrelationID)
	log := logger.FromContext(ctx, s.logger)
	if submission.CorrelationID != "" {
		log = log.With("correlation_id", submission.CorrelationID)
		ctx = logger.IntoContext(ctx, log)
	}

	log.Info("Processing journal entry submission",
		"submission_id", submission.SubmissionID.String(),
		"reference", submission.Reference,
		"line_count", len(submission.Lines),
	)

	entry, err := s.entries.CreateEntry(ctx, journal.ProposalOf(submission))
	if err == nil {
		log.Info("Journal entry recorded from submission",
			"submission_id", submission.SubmissionID.String(),
			"entry_id", entry.ID.String(),
			"reference", entry.Reference,
		)
		return nil
	}

	if !shared.IsBusiness(err) {
		return fmt.Errorf("creating entry %s failed: %w", submission.Reference, err)
	}

	// A redelivered submission finds its own entry already recorded.
	var dup journal.DuplicateReferenceError
	if errors.As(err, &dup) {
		existing, getErr := s.entries.GetEntry(ctx, submission.Reference)
		if getErr != nil && !errors.Is(getErr, shared.NotFoundError{}) {
			return fmt.Errorf("checking existing entry %s failed: %w", submission.Reference, getErr)
		}
		if existing != nil && existing.Records(journal.ProposalOf(submission).Lines) {
			log.Info("Submission already recorded, skipping",
				"submission_id", submission.SubmissionID.String(),
				"entry_id", existing.ID.String(),
			)
			return nil
		}
	}

	log.Warn("Journal entry submission rejected",
		"submission_id", submission.SubmissionID.String(),
		"reference", submission.Reference,
		"kind", string(shared.KindOf(err)),
		"error", err,
	)
	if recordErr := s.recorder.RecordRejection(ctx, submission, err); recordErr != nil {
		log.Error("Failed to record rejected submission",
			"submission_id", submission.SubmissionID.String(),
			"error", recordErr,
		)
		return recordErr
	}
	return nil
}
