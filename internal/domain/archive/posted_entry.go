// Package archive keeps a read-optimised copy of posted entries.
package archive

import (
	"time"

	"github.com/google/uuid"
	"github.com/ohada-ledger/internal/domain/journal"
)

// PostedLine is an archived journal line. Amounts are kept as fixed-point
// strings so the document store never rounds them.
type PostedLine struct {
	AccountCode string `json:"account_code" bson:"account_code"`
	AccountName string `json:"account_name,omitempty" bson:"account_name,omitempty"`
	Debit       string `json:"debit" bson:"debit"`
	Credit      string `json:"credit" bson:"credit"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
}

// PostedEntry is the archived snapshot of an entry at posting time.
type PostedEntry struct {
	EntryID       uuid.UUID    `json:"entry_id" bson:"entry_id"`
	Reference     string       `json:"reference" bson:"reference"`
	Date          time.Time    `json:"date" bson:"date"`
	Description   string       `json:"description,omitempty" bson:"description,omitempty"`
	Lines         []PostedLine `json:"lines" bson:"lines"`
	TotalDebit    string       `json:"total_debit" bson:"total_debit"`
	TotalCredit   string       `json:"total_credit" bson:"total_credit"`
	CorrelationID string       `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
	PostedAt      time.Time    `json:"posted_at" bson:"posted_at"`
	ArchivedAt    time.Time    `json:"archived_at" bson:"archived_at"`
}

// FromEntry snapshots a posted journal entry.
func FromEntry(e *journal.Entry, correlationID string) *PostedEntry {
	lines := make([]PostedLine, len(e.Lines))
	for i, l := range e.Lines {
		lines[i] = PostedLine{
			AccountCode: l.AccountCode,
			AccountName: l.AccountName,
			Debit:       l.Debit.StringFixed(2),
			Credit:      l.Credit.StringFixed(2),
			Description: l.Description,
		}
	}

	postedAt := e.UpdatedAt
	if e.PostedAt != nil {
		postedAt = *e.PostedAt
	}

	return &PostedEntry{
		EntryID:       e.ID,
		Reference:     e.Reference,
		Date:          e.Date,
		Description:   e.Description,
		Lines:         lines,
		TotalDebit:    e.TotalDebit().StringFixed(2),
		TotalCredit:   e.TotalCredit().StringFixed(2),
		CorrelationID: correlationID,
		PostedAt:      postedAt,
		ArchivedAt:    time.Now().UTC(),
	}
}
