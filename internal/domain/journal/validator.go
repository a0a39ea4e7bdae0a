package journal

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ohada-ledger/internal/domain/chart"
	"github.com/ohada-ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AmountScale is the number of decimal places a stored amount keeps.
const AmountScale = 2

// MaxAmount is the largest amount a journal line can carry (NUMERIC(15, 2)).
var MaxAmount = decimal.RequireFromString("9999999999999.99")

// storable reports whether d survives storage unchanged.
func storable(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(AmountScale)) && d.LessThanOrEqual(MaxAmount)
}

// LineSpec is one line of a candidate entry as submitted by a caller.
type LineSpec struct {
	AccountCode string          `json:"account_code"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description,omitempty"`
}

// Proposal is a candidate journal entry. A nil Date means today.
type Proposal struct {
	Reference   string     `json:"reference"`
	Date        *string    `json:"date,omitempty"`
	Description string     `json:"description"`
	Lines       []LineSpec `json:"lines"`
}

// Snapshot is the ledger state a proposal is checked against.
type Snapshot struct {
	// ReferenceTaken is true when another entry already uses the reference.
	ReferenceTaken bool
	// Accounts holds every known account among the proposal's codes.
	Accounts map[string]*chart.Account
}

// ValidatedLine is a line whose account has been resolved.
type ValidatedLine struct {
	Account     *chart.Account
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Description string
}

// ValidatedEntry is a proposal that passed every rule. It is immutable.
type ValidatedEntry struct {
	reference   string
	date        time.Time
	description string
	lines       []ValidatedLine
	totalDebit  decimal.Decimal
	totalCredit decimal.Decimal
}

func (v *ValidatedEntry) Reference() string            { return v.reference }
func (v *ValidatedEntry) Date() time.Time              { return v.date }
func (v *ValidatedEntry) Description() string          { return v.description }
func (v *ValidatedEntry) TotalDebit() decimal.Decimal  { return v.totalDebit }
func (v *ValidatedEntry) TotalCredit() decimal.Decimal { return v.totalCredit }

// Lines returns a copy of the resolved lines.
func (v *ValidatedEntry) Lines() []ValidatedLine {
	return append([]ValidatedLine(nil), v.lines...)
}

// NewEntry materialises a fresh balanced, unposted entry.
func (v *ValidatedEntry) NewEntry(now time.Time) *Entry {
	e := &Entry{
		ID:          uuid.New(),
		Reference:   v.reference,
		Date:        v.date,
		Description: v.description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	e.Lines = v.buildLines(e.ID)
	e.CheckBalance()
	return e
}

// ApplyTo replaces the header and lines of an existing entry.
func (v *ValidatedEntry) ApplyTo(e *Entry, now time.Time) {
	e.Reference = v.reference
	e.Date = v.date
	e.Description = v.description
	e.Lines = v.buildLines(e.ID)
	e.UpdatedAt = now
	e.CheckBalance()
}

func (v *ValidatedEntry) buildLines(entryID uuid.UUID) []Line {
	lines := make([]Line, len(v.lines))
	for i, l := range v.lines {
		lines[i] = Line{
			ID:          uuid.New(),
			EntryID:     entryID,
			AccountID:   l.Account.ID,
			AccountCode: l.Account.Code,
			AccountName: l.Account.Name,
			Position:    i,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Description: l.Description,
		}
	}
	return lines
}

// Validator applies the entry rules in a fixed order and reports the first
// violation. It performs no I/O.
type Validator struct {
	now func() time.Time
}

// NewValidator builds a validator; now supplies the default entry date.
func NewValidator(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	return &Validator{now: now}
}

// Codes returns the distinct account codes of a proposal in line order.
func (p Proposal) Codes() []string {
	seen := make(map[string]struct{}, len(p.Lines))
	codes := make([]string, 0, len(p.Lines))
	for _, l := range p.Lines {
		if _, ok := seen[l.AccountCode]; ok {
			continue
		}
		seen[l.AccountCode] = struct{}{}
		codes = append(codes, l.AccountCode)
	}
	return codes
}

// Validate checks p against snap. The rules run in this order: reference,
// line count, date, account existence, amount signs, mixed lines, amount
// scale and range, balance.
func (v *Validator) Validate(p Proposal, snap Snapshot) (*ValidatedEntry, error) {
	reference := strings.TrimSpace(p.Reference)
	if reference == "" {
		return nil, shared.RequiredFieldError{Field: "reference"}
	}
	if snap.ReferenceTaken {
		return nil, DuplicateReferenceError{Reference: reference}
	}

	if len(p.Lines) < 2 {
		return nil, InsufficientLinesError{Count: len(p.Lines)}
	}

	date, err := v.resolveDate(p.Date)
	if err != nil {
		return nil, err
	}

	lines := make([]ValidatedLine, len(p.Lines))
	for i, l := range p.Lines {
		acc, ok := snap.Accounts[l.AccountCode]
		if !ok || acc == nil {
			return nil, UnknownAccountError{Line: i, AccountCode: l.AccountCode}
		}
		lines[i] = ValidatedLine{
			Account:     acc,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Description: l.Description,
		}
	}

	for i, l := range p.Lines {
		if l.Debit.IsNegative() || l.Credit.IsNegative() {
			return nil, NegativeAmountError{Line: i, AccountCode: l.AccountCode}
		}
	}

	for i, l := range p.Lines {
		if l.Debit.IsPositive() && l.Credit.IsPositive() {
			return nil, MixedLineError{Line: i, AccountCode: l.AccountCode}
		}
	}

	for i, l := range p.Lines {
		if !storable(l.Debit) {
			return nil, InvalidAmountError{Line: i, AccountCode: l.AccountCode, Amount: l.Debit}
		}
		if !storable(l.Credit) {
			return nil, InvalidAmountError{Line: i, AccountCode: l.AccountCode, Amount: l.Credit}
		}
	}

	totalDebit, totalCredit := decimal.Zero, decimal.Zero
	for _, l := range p.Lines {
		totalDebit = totalDebit.Add(l.Debit)
		totalCredit = totalCredit.Add(l.Credit)
	}
	if !Balanced(totalDebit, totalCredit) {
		return nil, UnbalancedEntryError{TotalDebit: totalDebit, TotalCredit: totalCredit}
	}

	return &ValidatedEntry{
		reference:   reference,
		date:        date,
		description: p.Description,
		lines:       lines,
		totalDebit:  totalDebit,
		totalCredit: totalCredit,
	}, nil
}

func (v *Validator) resolveDate(raw *string) (time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		now := v.now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	d, err := time.Parse(DateLayout, strings.TrimSpace(*raw))
	if err != nil {
		return time.Time{}, InvalidDateError{Value: *raw}
	}
	return d, nil
}
