package chart

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

var accountCodePattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// Account is an entry of the chart of accounts.
type Account struct {
	ID          uuid.UUID   `json:"id"`
	Code        string      `json:"code"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	ClassNumber ClassNumber `json:"class_number"`
	IsActive    bool        `json:"is_active"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// NewAccount validates the fields of a new account. It does not check that
// the class exists or that the code is free; the directory does that.
func NewAccount(code, name string, class ClassNumber, description string, active bool) (*Account, error) {
	if err := ValidateCode(code); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, requiredField("name")
	}
	if !class.Valid() {
		return nil, UnknownClassError{Number: class}
	}

	now := time.Now().UTC()
	return &Account{
		ID:          uuid.New(),
		Code:        code,
		Name:        name,
		Description: description,
		ClassNumber: class,
		IsActive:    active,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// ValidateCode checks that code is a non-empty alphanumeric string.
func ValidateCode(code string) error {
	if code == "" {
		return requiredField("code")
	}
	if !accountCodePattern.MatchString(code) {
		return invalidField("code", "must be alphanumeric")
	}
	return nil
}

// Convention returns the balance convention of the account's class.
func (a *Account) Convention() Convention {
	return ConventionFor(a.ClassNumber)
}

// AccountUpdate lists the mutable fields of an account; nil fields are left untouched.
type AccountUpdate struct {
	Code        *string
	Name        *string
	Description *string
	IsActive    *bool
}

// Empty reports whether the update changes nothing.
func (u AccountUpdate) Empty() bool {
	return u.Code == nil && u.Name == nil && u.Description == nil && u.IsActive == nil
}

// Apply validates and applies u to a copy of a.
func (a Account) Apply(u AccountUpdate) (*Account, error) {
	if u.Code != nil {
		if err := ValidateCode(*u.Code); err != nil {
			return nil, err
		}
		a.Code = *u.Code
	}
	if u.Name != nil {
		if *u.Name == "" {
			return nil, requiredField("name")
		}
		a.Name = *u.Name
	}
	if u.Description != nil {
		a.Description = *u.Description
	}
	if u.IsActive != nil {
		a.IsActive = *u.IsActive
	}
	a.UpdatedAt = time.Now().UTC()
	return &a, nil
}
