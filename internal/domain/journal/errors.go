package journal

import (
	"strconv"

	"github.com/google/uuid"
	"github.com/ohada-ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DuplicateReferenceError indicates entry reference uniqueness violation
type DuplicateReferenceError struct {
	Reference string
}

func (e DuplicateReferenceError) Error() string {
	return "journal entry reference already exists: " + e.Reference
}

func (e DuplicateReferenceError) Kind() shared.ErrorKind { return shared.KindDuplicateReference }

// InsufficientLinesError indicates fewer than two lines were submitted
type InsufficientLinesError struct {
	Count int
}

func (e InsufficientLinesError) Error() string {
	return "at least two lines required for double-entry, got " + strconv.Itoa(e.Count)
}

func (e InsufficientLinesError) Kind() shared.ErrorKind { return shared.KindInsufficientLines }

// UnknownAccountError identifies a line referencing a missing account
type UnknownAccountError struct {
	Line        int
	AccountCode string
}

func (e UnknownAccountError) Error() string {
	return "line " + strconv.Itoa(e.Line+1) + ": account not found: " + e.AccountCode
}

func (e UnknownAccountError) Kind() shared.ErrorKind { return shared.KindUnknownAccount }

// NegativeAmountError indicates a negative debit or credit
type NegativeAmountError struct {
	Line        int
	AccountCode string
}

func (e NegativeAmountError) Error() string {
	return "line " + strconv.Itoa(e.Line+1) + ": debit and credit must not be negative"
}

func (e NegativeAmountError) Kind() shared.ErrorKind { return shared.KindNegativeAmount }

// InvalidAmountError indicates an amount the ledger cannot store exactly:
// more than two decimal places, or beyond MaxAmount.
type InvalidAmountError struct {
	Line        int
	AccountCode string
	Amount      decimal.Decimal
}

func (e InvalidAmountError) Error() string {
	return "line " + strconv.Itoa(e.Line+1) + ": amount " + e.Amount.String() +
		" must have at most 2 decimal places and not exceed " + MaxAmount.StringFixed(2)
}

func (e InvalidAmountError) Kind() shared.ErrorKind { return shared.KindInvalidAmount }

// MixedLineError indicates a line carrying both a debit and a credit
type MixedLineError struct {
	Line        int
	AccountCode string
}

func (e MixedLineError) Error() string {
	return "line " + strconv.Itoa(e.Line+1) + ": a line cannot have both debit and credit"
}

func (e MixedLineError) Kind() shared.ErrorKind { return shared.KindMixedLine }

// UnbalancedEntryError carries both totals of an entry that does not balance
type UnbalancedEntryError struct {
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
}

func (e UnbalancedEntryError) Error() string {
	return "journal entry must be balanced: total debit " + e.TotalDebit.StringFixed(2) +
		" != total credit " + e.TotalCredit.StringFixed(2)
}

func (e UnbalancedEntryError) Kind() shared.ErrorKind { return shared.KindUnbalancedEntry }

// InvalidDateError indicates a date not in YYYY-MM-DD form
type InvalidDateError struct {
	Value string
}

func (e InvalidDateError) Error() string {
	return "invalid date " + strconv.Quote(e.Value) + ": use YYYY-MM-DD"
}

func (e InvalidDateError) Kind() shared.ErrorKind { return shared.KindInvalidDate }

// EntryPostedError rejects modification or deletion of a posted entry
type EntryPostedError struct {
	EntryID   uuid.UUID
	Reference string
}

func (e EntryPostedError) Error() string {
	return "journal entry is posted and cannot be modified: " + e.Reference
}

func (e EntryPostedError) Kind() shared.ErrorKind { return shared.KindEntryPosted }

// AlreadyPostedError rejects posting an entry twice
type AlreadyPostedError struct {
	EntryID   uuid.UUID
	Reference string
}

func (e AlreadyPostedError) Error() string {
	return "journal entry is already posted: " + e.Reference
}

func (e AlreadyPostedError) Kind() shared.ErrorKind { return shared.KindAlreadyPosted }

// EntryNotFound builds the lookup-miss error for an entry key (id or reference).
func EntryNotFound(key string) error {
	return shared.NotFoundError{Resource: "journal entry", Key: key}
}
