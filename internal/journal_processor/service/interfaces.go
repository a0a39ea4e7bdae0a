package service

import (
	"context"

	"github.com/ohada-ledger/internal/domain/journal"
	"github.com/ohada-ledger/internal/domain/shared"
)

// ProcessingService turns queued submissions into journal entries. A nil
// error means the submission is settled, recorded or rejected; anything else
// asks for redelivery.
type ProcessingService interface {
	ProcessSubmission(ctx context.Context, submission *shared.EntrySubmission) error
}

// EntryCreator validates and records entries. Implemented by ledger.Journal.
type EntryCreator interface {
	CreateEntry(ctx context.Context, p journal.Proposal) (*journal.Entry, error)
	GetEntry(ctx context.Context, idOrReference string) (*journal.Entry, error)
}

// RejectionRecorder keeps submissions that failed a bookkeeping rule
type RejectionRecorder interface {
	RecordRejection(ctx context.Context, submission *shared.EntrySubmission, cause error) error
}
