package handler

import (
	"time"

	"github.com/ohada-ledger/internal/domain/archive"
	"github.com/ohada-ledger/internal/domain/chart"
	"github.com/ohada-ledger/internal/domain/journal"
	"github.com/ohada-ledger/internal/ledger"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest represents a request to create a new account.
// IsActive defaults to true.
type CreateAccountRequest struct {
	Code        string `json:"code" binding:"max=20"`
	Name        string `json:"name" binding:"max=200"`
	ClassNumber int    `json:"class_number"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active,omitempty"`
}

// UpdateAccountRequest lists the account fields to change; omitted fields are kept
type UpdateAccountRequest struct {
	Code        *string `json:"code,omitempty" binding:"omitempty,max=20"`
	Name        *string `json:"name,omitempty" binding:"omitempty,max=200"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// ListAccountsQuery filters the account listing
type ListAccountsQuery struct {
	ClassNumber *int   `form:"class"`
	IsActive    *bool  `form:"active"`
	CodePrefix  string `form:"prefix"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ClassNumber int    `json:"class_number"`
	Convention  string `json:"convention"`
	IsActive    bool   `json:"is_active"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// ClassResponse represents an account class in API responses
type ClassResponse struct {
	Number      int    `json:"number"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Convention  string `json:"convention"`
}

// BalanceResponse represents an account balance in API responses
type BalanceResponse struct {
	AccountID   string `json:"account_id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	ClassNumber int    `json:"class_number"`
	Convention  string `json:"convention"`
	TotalDebit  string `json:"total_debit"`
	TotalCredit string `json:"total_credit"`
	Balance     string `json:"balance"`
	LineCount   int64  `json:"line_count"`
}

// EntryLineRequest is one line of a submitted journal entry. An omitted
// amount is zero.
type EntryLineRequest struct {
	AccountCode string          `json:"account_code"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description,omitempty"`
}

// CreateEntryRequest represents a request to create a journal entry. An
// omitted date means today.
type CreateEntryRequest struct {
	Reference   string             `json:"reference" binding:"max=50"`
	Date        *string            `json:"date,omitempty"`
	Description string             `json:"description"`
	Lines       []EntryLineRequest `json:"lines"`
}

// UpdateEntryRequest lists the entry fields to change. Lines, when present,
// replace every existing line.
type UpdateEntryRequest struct {
	Reference   *string            `json:"reference,omitempty" binding:"omitempty,max=50"`
	Date        *string            `json:"date,omitempty"`
	Description *string            `json:"description,omitempty"`
	Lines       []EntryLineRequest `json:"lines,omitempty"`
}

// ListEntriesQuery filters the journal listing. Dates use YYYY-MM-DD.
type ListEntriesQuery struct {
	From   string `form:"from"`
	To     string `form:"to"`
	Posted *bool  `form:"posted"`
	Limit  int    `form:"limit" binding:"min=0,max=1000"`
	Offset int    `form:"offset" binding:"min=0"`
}

// EntryLineResponse represents a journal line in API responses
type EntryLineResponse struct {
	ID          string `json:"id"`
	AccountID   string `json:"account_id"`
	AccountCode string `json:"account_code"`
	AccountName string `json:"account_name,omitempty"`
	Debit       string `json:"debit"`
	Credit      string `json:"credit"`
	Description string `json:"description,omitempty"`
}

// EntryResponse represents a journal entry in API responses
type EntryResponse struct {
	ID          string              `json:"id"`
	Reference   string              `json:"reference"`
	Date        string              `json:"date"`
	Description string              `json:"description"`
	Status      string              `json:"status"`
	IsBalanced  bool                `json:"is_balanced"`
	IsPosted    bool                `json:"is_posted"`
	TotalDebit  string              `json:"total_debit"`
	TotalCredit string              `json:"total_credit"`
	Lines       []EntryLineResponse `json:"lines"`
	CreatedAt   string              `json:"created_at"`
	UpdatedAt   string              `json:"updated_at"`
	PostedAt    string              `json:"posted_at,omitempty"`
}

// AccountLineResponse represents a journal line seen from its account
type AccountLineResponse struct {
	EntryID        string `json:"entry_id"`
	EntryReference string `json:"entry_reference"`
	EntryDate      string `json:"entry_date"`
	EntryPosted    bool   `json:"entry_posted"`
	Debit          string `json:"debit"`
	Credit         string `json:"credit"`
	Description    string `json:"description,omitempty"`
}

// SubmissionResponse acknowledges a queued journal entry submission
type SubmissionResponse struct {
	SubmissionID string `json:"submission_id"`
	Reference    string `json:"reference"`
	Status       string `json:"status"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=10" binding:"min=1,max=100"`
}

func (r CreateEntryRequest) proposal() journal.Proposal {
	return journal.Proposal{
		Reference:   r.Reference,
		Date:        r.Date,
		Description: r.Description,
		Lines:       lineSpecs(r.Lines),
	}
}

func (r UpdateEntryRequest) update() ledger.EntryUpdate {
	u := ledger.EntryUpdate{
		Reference:   r.Reference,
		Date:        r.Date,
		Description: r.Description,
	}
	if r.Lines != nil {
		u.Lines = lineSpecs(r.Lines)
	}
	return u
}

func lineSpecs(lines []EntryLineRequest) []journal.LineSpec {
	specs := make([]journal.LineSpec, len(lines))
	for i, l := range lines {
		specs[i] = journal.LineSpec{
			AccountCode: l.AccountCode,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Description: l.Description,
		}
	}
	return specs
}

// mapAccountToResponse maps an account entity to an account response DTO
func mapAccountToResponse(acc *chart.Account) AccountResponse {
	return AccountResponse{
		ID:          acc.ID.String(),
		Code:        acc.Code,
		Name:        acc.Name,
		Description: acc.Description,
		ClassNumber: int(acc.ClassNumber),
		Convention:  string(acc.Convention()),
		IsActive:    acc.IsActive,
		CreatedAt:   acc.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   acc.UpdatedAt.Format(time.RFC3339),
	}
}

func mapClassToResponse(c *chart.AccountClass) ClassResponse {
	return ClassResponse{
		Number:      int(c.Number),
		Name:        c.Name,
		Description: c.Description,
		Convention:  string(c.Convention()),
	}
}

func mapBalanceToResponse(b *ledger.AccountBalance) BalanceResponse {
	return BalanceResponse{
		AccountID:   b.Account.ID.String(),
		Code:        b.Account.Code,
		Name:        b.Account.Name,
		ClassNumber: int(b.Account.ClassNumber),
		Convention:  string(b.Convention),
		TotalDebit:  b.TotalDebit.StringFixed(2),
		TotalCredit: b.TotalCredit.StringFixed(2),
		Balance:     b.Balance.StringFixed(2),
		LineCount:   b.LineCount,
	}
}

// mapEntryToResponse maps a journal entry to an entry response DTO
func mapEntryToResponse(e *journal.Entry) EntryResponse {
	lines := make([]EntryLineResponse, len(e.Lines))
	for i, l := range e.Lines {
		lines[i] = EntryLineResponse{
			ID:          l.ID.String(),
			AccountID:   l.AccountID.String(),
			AccountCode: l.AccountCode,
			AccountName: l.AccountName,
			Debit:       l.Debit.StringFixed(2),
			Credit:      l.Credit.StringFixed(2),
			Description: l.Description,
		}
	}

	response := EntryResponse{
		ID:          e.ID.String(),
		Reference:   e.Reference,
		Date:        e.Date.Format(journal.DateLayout),
		Description: e.Description,
		Status:      string(e.Status()),
		IsBalanced:  e.IsBalanced,
		IsPosted:    e.IsPosted,
		TotalDebit:  e.TotalDebit().StringFixed(2),
		TotalCredit: e.TotalCredit().StringFixed(2),
		Lines:       lines,
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   e.UpdatedAt.Format(time.RFC3339),
	}

	if e.PostedAt != nil {
		response.PostedAt = e.PostedAt.Format(time.RFC3339)
	}

	return response
}

func mapEntriesToResponse(entries []*journal.Entry) []EntryResponse {
	out := make([]EntryResponse, len(entries))
	for i, e := range entries {
		out[i] = mapEntryToResponse(e)
	}
	return out
}

func mapAccountLineToResponse(l journal.AccountLine) AccountLineResponse {
	return AccountLineResponse{
		EntryID:        l.EntryID.String(),
		EntryReference: l.EntryReference,
		EntryDate:      l.EntryDate.Format(journal.DateLayout),
		EntryPosted:    l.EntryPosted,
		Debit:          l.Debit.StringFixed(2),
		Credit:         l.Credit.StringFixed(2),
		Description:    l.Description,
	}
}

// mapPostedEntries serves archived entries as stored; amounts are already fixed-point.
func mapPostedEntries(entries []*archive.PostedEntry) []*archive.PostedEntry {
	if entries == nil {
		return []*archive.PostedEntry{}
	}
	return entries
}
