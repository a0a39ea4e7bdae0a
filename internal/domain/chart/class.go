// Package chart holds the OHADA chart of accounts: the nine fixed account
// classes, their balance conventions and the accounts filed under them.
package chart

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// ClassNumber identifies one of the nine OHADA account classes.
type ClassNumber int

const (
	MinClassNumber ClassNumber = 1
	MaxClassNumber ClassNumber = 9
)

// Valid reports whether n lies within the OHADA taxonomy.
func (n ClassNumber) Valid() bool {
	return n >= MinClassNumber && n <= MaxClassNumber
}

func (n ClassNumber) String() string {
	return strconv.Itoa(int(n))
}

// Convention is the side on which an account class naturally increases.
type Convention string

const (
	DebitNormal  Convention = "DEBIT_NORMAL"
	CreditNormal Convention = "CREDIT_NORMAL"
)

// ConventionFor returns the balance convention of a class. Classes 1
// (ressources durables) and 7 (produits) are credit-normal, every other
// class is debit-normal.
func ConventionFor(n ClassNumber) Convention {
	switch n {
	case 1, 7:
		return CreditNormal
	default:
		return DebitNormal
	}
}

// AccountClass is a numbered OHADA class.
type AccountClass struct {
	Number      ClassNumber `json:"number"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

// Convention returns the class balance convention.
func (c *AccountClass) Convention() Convention {
	return ConventionFor(c.Number)
}

// NewAccountClass validates and builds a class.
func NewAccountClass(number ClassNumber, name, description string) (*AccountClass, error) {
	if !number.Valid() {
		return nil, UnknownClassError{Number: number}
	}
	if name == "" {
		return nil, requiredField("name")
	}
	return &AccountClass{
		Number:      number,
		Name:        name,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// Balance is an account balance derived from its journal lines.
type Balance struct {
	TotalDebit  decimal.Decimal `json:"total_debit"`
	TotalCredit decimal.Decimal `json:"total_credit"`
	Convention  Convention      `json:"convention"`
}

// ComputeBalance applies the class convention to debit and credit totals.
func ComputeBalance(n ClassNumber, totalDebit, totalCredit decimal.Decimal) Balance {
	return Balance{
		TotalDebit:  totalDebit,
		TotalCredit: totalCredit,
		Convention:  ConventionFor(n),
	}
}

// Amount is the signed balance: credit minus debit for credit-normal
// classes, debit minus credit otherwise.
func (b Balance) Amount() decimal.Decimal {
	if b.Convention == CreditNormal {
		return b.TotalCredit.Sub(b.TotalDebit)
	}
	return b.TotalDebit.Sub(b.TotalCredit)
}
