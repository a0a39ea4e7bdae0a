// Package journal models double-entry journal entries: their lines, the
// rules a candidate entry must satisfy and the draft → balanced → posted
// lifecycle.
package journal

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BalanceTolerance is the absolute difference under which debit and credit
// totals are considered equal.
var BalanceTolerance = decimal.RequireFromString("0.01")

// DateLayout is the only accepted textual date format.
const DateLayout = "2006-01-02"

// Status is the lifecycle state of an entry.
type Status string

const (
	StatusDraft    Status = "DRAFT"
	StatusBalanced Status = "BALANCED"
	StatusPosted   Status = "POSTED"
)

// Line is one debit or credit movement on an account.
type Line struct {
	ID          uuid.UUID       `json:"id"`
	EntryID     uuid.UUID       `json:"entry_id"`
	AccountID   uuid.UUID       `json:"account_id"`
	AccountCode string          `json:"account_code"`
	AccountName string          `json:"account_name,omitempty"`
	Position    int             `json:"position"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description,omitempty"`
}

// Entry is a journal entry header with its ordered lines.
type Entry struct {
	ID          uuid.UUID  `json:"id"`
	Reference   string     `json:"reference"`
	Date        time.Time  `json:"date"`
	Description string     `json:"description"`
	IsBalanced  bool       `json:"is_balanced"`
	IsPosted    bool       `json:"is_posted"`
	Lines       []Line     `json:"lines"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	PostedAt    *time.Time `json:"posted_at,omitempty"`
}

// Balanced reports whether two totals agree within BalanceTolerance.
func Balanced(totalDebit, totalCredit decimal.Decimal) bool {
	return totalDebit.Sub(totalCredit).Abs().LessThan(BalanceTolerance)
}

// Totals sums the debit and credit columns of lines.
func Totals(lines []Line) (totalDebit, totalCredit decimal.Decimal) {
	totalDebit, totalCredit = decimal.Zero, decimal.Zero
	for _, l := range lines {
		totalDebit = totalDebit.Add(l.Debit)
		totalCredit = totalCredit.Add(l.Credit)
	}
	return totalDebit, totalCredit
}

// TotalDebit is the sum of the entry's debits.
func (e *Entry) TotalDebit() decimal.Decimal {
	d, _ := Totals(e.Lines)
	return d
}

// TotalCredit is the sum of the entry's credits.
func (e *Entry) TotalCredit() decimal.Decimal {
	_, c := Totals(e.Lines)
	return c
}

// CheckBalance recomputes IsBalanced from the current lines.
func (e *Entry) CheckBalance() bool {
	d, c := Totals(e.Lines)
	e.IsBalanced = Balanced(d, c)
	return e.IsBalanced
}

// Status derives the lifecycle state from the entry flags.
func (e *Entry) Status() Status {
	switch {
	case e.IsPosted:
		return StatusPosted
	case e.IsBalanced:
		return StatusBalanced
	default:
		return StatusDraft
	}
}

// EnsureMutable rejects any change to a posted entry.
func (e *Entry) EnsureMutable() error {
	if e.IsPosted {
		return EntryPostedError{EntryID: e.ID, Reference: e.Reference}
	}
	return nil
}

// Post moves a balanced entry to the terminal posted state.
func (e *Entry) Post(at time.Time) error {
	if e.IsPosted {
		return AlreadyPostedError{EntryID: e.ID, Reference: e.Reference}
	}
	if !e.IsBalanced {
		d, c := Totals(e.Lines)
		return UnbalancedEntryError{TotalDebit: d, TotalCredit: c}
	}
	e.IsPosted = true
	e.PostedAt = &at
	e.UpdatedAt = at
	return nil
}

// AccountIDs returns the distinct accounts touched by the entry, in line order.
func (e *Entry) AccountIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(e.Lines))
	ids := make([]uuid.UUID, 0, len(e.Lines))
	for _, l := range e.Lines {
		if _, ok := seen[l.AccountID]; ok {
			continue
		}
		seen[l.AccountID] = struct{}{}
		ids = append(ids, l.AccountID)
	}
	return ids
}

// Clone returns a deep copy of the entry.
func (e *Entry) Clone() *Entry {
	c := *e
	c.Lines = append([]Line(nil), e.Lines...)
	if e.PostedAt != nil {
		at := *e.PostedAt
		c.PostedAt = &at
	}
	return &c
}
