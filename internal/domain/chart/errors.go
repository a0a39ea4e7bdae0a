package chart

import (
	"github.com/google/uuid"
	"github.com/ohada-ledger/internal/domain/shared"
)

// DuplicateCodeError indicates account code uniqueness violation
type DuplicateCodeError struct {
	Code string
}

func (e DuplicateCodeError) Error() string {
	return "account code already exists: " + e.Code
}

func (e DuplicateCodeError) Kind() shared.ErrorKind { return shared.KindDuplicateCode }

// UnknownClassError indicates a reference to a class that does not exist
type UnknownClassError struct {
	Number ClassNumber
}

func (e UnknownClassError) Error() string {
	return "account class not found: " + e.Number.String()
}

func (e UnknownClassError) Kind() shared.ErrorKind { return shared.KindUnknownClass }

// AccountInUseError blocks deletion of an account referenced by journal lines
type AccountInUseError struct {
	AccountID uuid.UUID
	Code      string
}

func (e AccountInUseError) Error() string {
	return "account is referenced by journal lines: " + e.Code
}

func (e AccountInUseError) Kind() shared.ErrorKind { return shared.KindAccountInUse }

// AccountNotFound builds the lookup-miss error for an account key (code or id).
func AccountNotFound(key string) error {
	return shared.NotFoundError{Resource: "account", Key: key}
}

// ClassNotFound builds the lookup-miss error for a class number.
func ClassNotFound(n ClassNumber) error {
	return shared.NotFoundError{Resource: "account class", Key: n.String()}
}

func requiredField(field string) error {
	return shared.RequiredFieldError{Field: field}
}

func invalidField(field, reason string) error {
	return shared.InvalidFieldError{Field: field, Reason: reason}
}
