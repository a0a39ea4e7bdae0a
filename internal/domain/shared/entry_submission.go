package shared

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntrySubmission is the Kafka message carrying a candidate journal entry
// for asynchronous creation.
type EntrySubmission struct {
	SubmissionID  uuid.UUID            `json:"submission_id"`
	Reference     string               `json:"reference"`
	Date          *string              `json:"date,omitempty"`
	Description   string               `json:"description"`
	Lines         []SubmittedEntryLine `json:"lines"`
	CorrelationID string               `json:"correlation_id,omitempty"`
	SubmittedAt   time.Time            `json:"submitted_at"`
}

// SubmittedEntryLine is one line of an EntrySubmission.
type SubmittedEntryLine struct {
	AccountCode string          `json:"account_code"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description,omitempty"`
}
