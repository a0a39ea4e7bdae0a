package chart

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ClassRepository defines account class persistence operations
type ClassRepository interface {
	// Ensure inserts the class unless its number is already present.
	Ensure(ctx context.Context, class *AccountClass) (bool, error)
	GetByNumber(ctx context.Context, number ClassNumber) (*AccountClass, error)
	List(ctx context.Context) ([]*AccountClass, error)
}

// AccountFilter narrows an account listing. Zero values match everything.
type AccountFilter struct {
	ClassNumber *ClassNumber
	IsActive    *bool
	CodePrefix  string
}

// Validate rejects a code prefix that is not a code fragment.
func (f AccountFilter) Validate() error {
	if f.CodePrefix != "" && !accountCodePattern.MatchString(f.CodePrefix) {
		return invalidField("prefix", "must be alphanumeric")
	}
	return nil
}

// Matches reports whether acc satisfies the filter.
func (f AccountFilter) Matches(acc *Account) bool {
	if f.ClassNumber != nil && acc.ClassNumber != *f.ClassNumber {
		return false
	}
	if f.IsActive != nil && acc.IsActive != *f.IsActive {
		return false
	}
	if f.CodePrefix != "" && (len(acc.Code) < len(f.CodePrefix) || acc.Code[:len(f.CodePrefix)] != f.CodePrefix) {
		return false
	}
	return true
}

// LineTotals are the summed debit and credit of an account's journal lines.
type LineTotals struct {
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
	LineCount   int64
}

// AccountRepository defines account persistence operations
type AccountRepository interface {
	// Create returns DuplicateCodeError or UnknownClassError on constraint violations.
	Create(ctx context.Context, account *Account) error
	// Ensure inserts the account unless its code is already present.
	Ensure(ctx context.Context, account *Account) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	GetByCode(ctx context.Context, code string) (*Account, error)
	// GetByCodes returns the accounts found, keyed by code; unknown codes are absent.
	GetByCodes(ctx context.Context, codes []string) (map[string]*Account, error)
	List(ctx context.Context, filter AccountFilter) ([]*Account, error)
	Update(ctx context.Context, account *Account) error

	// LockForUpdate locks the account row until the end of the unit of work.
	LockForUpdate(ctx context.Context, id uuid.UUID) (*Account, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// SumLines aggregates every journal line referencing the account.
	SumLines(ctx context.Context, id uuid.UUID) (LineTotals, error)
	HasLines(ctx context.Context, id uuid.UUID) (bool, error)
}
