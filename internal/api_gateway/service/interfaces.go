package service

import (
	"context"

	"github.com/ohada-ledger/internal/domain/archive"
	"github.com/ohada-ledger/internal/domain/chart"
	"github.com/ohada-ledger/internal/domain/journal"
	"github.com/ohada-ledger/internal/domain/shared"
	"github.com/ohada-ledger/internal/ledger"
)

// AccountService defines the chart of accounts operations.
// Implemented by ledger.Directory.
type AccountService interface {
	// CreateAccount returns DuplicateCodeError or UnknownClassError on conflicts
	CreateAccount(ctx context.Context, spec ledger.AccountSpec) (*chart.Account, error)

	// GetAccount accepts an account code or id
	GetAccount(ctx context.Context, codeOrID string) (*chart.Account, error)
	ListAccounts(ctx context.Context, filter chart.AccountFilter) ([]*chart.Account, error)
	UpdateAccount(ctx context.Context, codeOrID string, update chart.AccountUpdate) (*chart.Account, error)

	// DeleteAccount returns AccountInUseError while journal lines reference the account
	DeleteAccount(ctx context.Context, codeOrID string) error

	ListClasses(ctx context.Context) ([]*chart.AccountClass, error)
	GetClass(ctx context.Context, number chart.ClassNumber) (*chart.AccountClass, error)
}

// BalanceService derives account balances. Implemented by ledger.BalanceCalculator.
type BalanceService interface {
	Balance(ctx context.Context, codeOrID string) (*ledger.AccountBalance, error)
}

// JournalService defines the journal entry lifecycle. Implemented by ledger.Journal.
type JournalService interface {
	CreateEntry(ctx context.Context, p journal.Proposal) (*journal.Entry, error)
	GetEntry(ctx context.Context, idOrReference string) (*journal.Entry, error)
	ListEntries(ctx context.Context, filter journal.ListFilter) ([]*journal.Entry, error)
	UpdateEntry(ctx context.Context, idOrReference string, update ledger.EntryUpdate) (*journal.Entry, error)
	PostEntry(ctx context.Context, idOrReference string) (*journal.Entry, error)
	DeleteEntry(ctx context.Context, idOrReference string) error
	LinesForAccount(ctx context.Context, codeOrID string) ([]journal.AccountLine, error)
}

// ReportService builds the ledger-wide reports. Implemented by ledger.Reports.
type ReportService interface {
	TrialBalance(ctx context.Context) (*ledger.TrialBalance, error)
	UnbalancedEntries(ctx context.Context) ([]ledger.UnbalancedEntry, error)
}

// SubmissionService queues journal entries for asynchronous creation
type SubmissionService interface {
	// SubmitEntry publishes the submission unless its reference is already
	// recorded. Returns the submission id, or the existing entry on a hit.
	SubmitEntry(ctx context.Context, submission *shared.EntrySubmission) (string, *journal.Entry, error)
}

// ArchiveService reads the posted entries archive
type ArchiveService interface {
	GetPostedEntry(ctx context.Context, reference string) (*archive.PostedEntry, error)

	// GetPostedEntriesByAccount returns one page of entries and the total count
	GetPostedEntriesByAccount(ctx context.Context, code string, page, perPage int) ([]*archive.PostedEntry, int64, error)
}

var (
	_ AccountService = (*ledger.Directory)(nil)
	_ BalanceService = (*ledger.BalanceCalculator)(nil)
	_ JournalService = (*ledger.Journal)(nil)
	_ ReportService  = (*ledger.Reports)(nil)
)
