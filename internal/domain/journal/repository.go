package journal

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ohada-ledger/internal/domain/chart"
	"github.com/shopspring/decimal"
)

// ListFilter narrows an entry listing. Zero values match everything.
type ListFilter struct {
	From     *time.Time
	To       *time.Time
	IsPosted *bool
	Limit    int
	Offset   int
}

// Matches reports whether e satisfies the filter, ignoring paging.
func (f ListFilter) Matches(e *Entry) bool {
	if f.From != nil && e.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && e.Date.After(*f.To) {
		return false
	}
	if f.IsPosted != nil && e.IsPosted != *f.IsPosted {
		return false
	}
	return true
}

// AccountLine is a journal line joined with its entry header.
type AccountLine struct {
	Line
	EntryReference string    `json:"entry_reference"`
	EntryDate      time.Time `json:"entry_date"`
	EntryPosted    bool      `json:"entry_posted"`
}

// AccountTotals are the summed line amounts of one account.
type AccountTotals struct {
	AccountID   uuid.UUID         `json:"account_id"`
	Code        string            `json:"code"`
	Name        string            `json:"name"`
	ClassNumber chart.ClassNumber `json:"class_number"`
	TotalDebit  decimal.Decimal   `json:"total_debit"`
	TotalCredit decimal.Decimal   `json:"total_credit"`
}

// Repository defines journal entry persistence operations
type Repository interface {
	// Create stores the header and lines atomically. A reference already
	// taken yields DuplicateReferenceError.
	Create(ctx context.Context, entry *Entry) error
	ReferenceExists(ctx context.Context, reference string, excluding *uuid.UUID) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Entry, error)
	GetByReference(ctx context.Context, reference string) (*Entry, error)
	// List returns entries newest date first, lines included.
	List(ctx context.Context, filter ListFilter) ([]*Entry, error)

	// LockForUpdate loads the entry and locks it until the end of the unit of work.
	LockForUpdate(ctx context.Context, id uuid.UUID) (*Entry, error)
	// Replace overwrites the header and lines of an unposted entry.
	Replace(ctx context.Context, entry *Entry) error
	// MarkPosted flips an unposted entry to posted.
	MarkPosted(ctx context.Context, id uuid.UUID, at time.Time) error
	// Delete removes an unposted entry and its lines.
	Delete(ctx context.Context, id uuid.UUID) error

	LinesForAccount(ctx context.Context, accountID uuid.UUID) ([]AccountLine, error)
	// TotalsByAccount aggregates lines per account for accounts with any line,
	// optionally restricted to posted entries, ordered by account code.
	TotalsByAccount(ctx context.Context, postedOnly bool) ([]AccountTotals, error)
}
