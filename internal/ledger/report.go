package ledger

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/ohada-ledger/internal/domain/chart"
	"github.com/ohada-ledger/internal/domain/journal"
	"github.com/shopspring/decimal"
)

// SuspenseAccountCode is the OHADA account used to park unexplained differences.
const SuspenseAccountCode = "471"

// TrialBalanceRow is one account line of the trial balance.
type TrialBalanceRow struct {
	AccountID   uuid.UUID         `json:"account_id"`
	Code        string            `json:"code"`
	Name        string            `json:"name"`
	ClassNumber chart.ClassNumber `json:"class_number"`
	Convention  chart.Convention  `json:"convention"`
	TotalDebit  decimal.Decimal   `json:"total_debit"`
	TotalCredit decimal.Decimal   `json:"total_credit"`
	Balance     decimal.Decimal   `json:"balance"`
}

// TrialBalance lists every account with at least one line, ordered by code.
type TrialBalance struct {
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  decimal.Decimal   `json:"total_debit"`
	TotalCredit decimal.Decimal   `json:"total_credit"`
	Balanced    bool              `json:"balanced"`
	PostedOnly  bool              `json:"posted_only"`
	GeneratedAt time.Time         `json:"generated_at"`
}

var trialBalanceHeader = []string{"Compte", "Libellé", "Débit", "Crédit", "Solde"}

// WriteCSV exports the trial balance as semicolon separated values with a
// closing TOTAL row.
func (tb *TrialBalance) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write(trialBalanceHeader); err != nil {
		return err
	}
	for _, r := range tb.Rows {
		record := []string{
			r.Code,
			r.Name,
			r.TotalDebit.StringFixed(2),
			r.TotalCredit.StringFixed(2),
			r.Balance.StringFixed(2),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	total := []string{
		"TOTAL",
		"",
		tb.TotalDebit.StringFixed(2),
		tb.TotalCredit.StringFixed(2),
		tb.TotalDebit.Sub(tb.TotalCredit).StringFixed(2),
	}
	if err := cw.Write(total); err != nil {
		return err
	}

	cw.Flush()
	return cw.Error()
}

// AdjustmentSide is the side a suspense line must take to balance an entry.
type AdjustmentSide string

const (
	AdjustDebit  AdjustmentSide = "DEBIT"
	AdjustCredit AdjustmentSide = "CREDIT"
)

// UnbalancedEntry is an audit finding on a stored entry whose lines disagree.
type UnbalancedEntry struct {
	EntryID     uuid.UUID       `json:"entry_id"`
	Reference   string          `json:"reference"`
	Date        time.Time       `json:"date"`
	IsPosted    bool            `json:"is_posted"`
	TotalDebit  decimal.Decimal `json:"total_debit"`
	TotalCredit decimal.Decimal `json:"total_credit"`
	// Difference is total debit minus total credit.
	Difference        decimal.Decimal `json:"difference"`
	AdjustmentAccount string          `json:"adjustment_account"`
	AdjustmentSide    AdjustmentSide  `json:"adjustment_side"`
	AdjustmentAmount  decimal.Decimal `json:"adjustment_amount"`
}

// Reports derives the ledger-wide reports.
type Reports struct {
	repos      Repositories
	postedOnly bool
	now        func() time.Time
}

// NewReports creates the report service. With postedOnly set the trial
// balance ignores unposted entries.
func NewReports(repos Repositories, postedOnly bool) *Reports {
	return &Reports{repos: repos, postedOnly: postedOnly, now: time.Now}
}

// TrialBalance aggregates the lines of every account.
func (r *Reports) TrialBalance(ctx context.Context) (*TrialBalance, error) {
	totals, err := r.repos.Entries().TotalsByAccount(ctx, r.postedOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate account totals: %w", err)
	}

	tb := &TrialBalance{
		Rows:        make([]TrialBalanceRow, 0, len(totals)),
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
		PostedOnly:  r.postedOnly,
		GeneratedAt: r.now().UTC(),
	}
	for _, t := range totals {
		b := chart.ComputeBalance(t.ClassNumber, t.TotalDebit, t.TotalCredit)
		tb.Rows = append(tb.Rows, TrialBalanceRow{
			AccountID:   t.AccountID,
			Code:        t.Code,
			Name:        t.Name,
			ClassNumber: t.ClassNumber,
			Convention:  b.Convention,
			TotalDebit:  t.TotalDebit,
			TotalCredit: t.TotalCredit,
			Balance:     b.Amount(),
		})
		tb.TotalDebit = tb.TotalDebit.Add(t.TotalDebit)
		tb.TotalCredit = tb.TotalCredit.Add(t.TotalCredit)
	}
	tb.Balanced = journal.Balanced(tb.TotalDebit, tb.TotalCredit)
	return tb, nil
}

// UnbalancedEntries audits every stored entry and reports those whose lines
// do not balance, with the suspense line that would settle each.
func (r *Reports) UnbalancedEntries(ctx context.Context) ([]UnbalancedEntry, error) {
	entries, err := r.repos.Entries().List(ctx, journal.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list journal entries: %w", err)
	}

	findings := []UnbalancedEntry{}
	for _, e := range entries {
		debit, credit := journal.Totals(e.Lines)
		if journal.Balanced(debit, credit) {
			continue
		}
		diff := debit.Sub(credit)
		side := AdjustCredit
		if diff.IsNegative() {
			side = AdjustDebit
		}
		findings = append(findings, UnbalancedEntry{
			EntryID:           e.ID,
			Reference:         e.Reference,
			Date:              e.Date,
			IsPosted:          e.IsPosted,
			TotalDebit:        debit,
			TotalCredit:       credit,
			Difference:        diff,
			AdjustmentAccount: SuspenseAccountCode,
			AdjustmentSide:    side,
			AdjustmentAmount:  diff.Abs(),
		})
	}
	return findings, nil
}
