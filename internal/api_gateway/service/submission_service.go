package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ohada-ledger/internal/domain/journal"
	"github.com/ohada-ledger/internal/domain/shared"
	"github.com/ohada-ledger/internal/logger"
	"github.com/ohada-ledger/internal/platform/messaging/producers"
)

// EntryLookup finds a recorded journal entry by id or reference
type EntryLookup interface {
	GetEntry(ctx context.Context, idOrReference string) (*journal.Entry, error)
}

// SubmissionServiceImpl implements the SubmissionService interface
type SubmissionServiceImpl struct {
	entries  EntryLookup
	producer producers.MessagePublisher
	logger   *slog.Logger
}

// NewSubmissionService creates a new submission service
func NewSubmissionService(logger *slog.Logger, entries EntryLookup, producer producers.MessagePublisher) SubmissionService {
	return &SubmissionServiceImpl{
		entries:  entries,
		producer: producer,
		logger:   logger,
	}
}

// SubmitEntry publishes the submission keyed by its reference, so every
// submission of one reference lands on the same partition. A reference
// already recorded with the same lines short-circuits with the existing
// entry; with other lines it is a DuplicateReferenceError.
func (s *SubmissionServiceImpl) SubmitEntry(ctx context.Context, submission *shared.EntrySubmission) (string, *journal.Entry, error) {
	log := logger.FromContext(ctx, s.logger)

	if submission.Reference != "" {
		existing, err := s.entries.GetEntry(ctx, submission.Reference)
		if err != nil && !errors.Is(err, shared.NotFoundError{}) {
			log.Error("Failed to check for existing journal entry",
				"reference", submission.Reference,
				"error", err,
			)
			return "", nil, err
		}

		if existing != nil {
			if !existing.Records(journal.ProposalOf(submission).Lines) {
				log.Warn("Reference already recorded with different lines",
					"reference", submission.Reference,
					"entry_id", existing.ID.String(),
				)
				return "", nil, journal.DuplicateReferenceError{Reference: submission.Reference}
			}

			log.Info("Found existing journal entry for reference",
				"reference", submission.Reference,
				"entry_id", existing.ID.String(),
				"status", string(existing.Status()),
			)
			return existing.ID.String(), existing, nil
		}
	}

	if err := s.producer.Publish(ctx, submission.Reference, submission); err != nil {
		log.Error("Failed to publish journal entry submission",
			"submission_id", submission.SubmissionID.String(),
			"reference", submission.Reference,
			"error", err,
		)
		return "", nil, err
	}

	log.Info("Journal entry submission published",
		"submission_id", submission.SubmissionID.String(),
		"reference", submission.Reference,
		"lines", len(submission.Lines),
	)

	return submission.SubmissionID.String(), nil, nil
}
