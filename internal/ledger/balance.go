package ledger

import (
	"context"

	"github.com/ohada-ledger/internal/domain/chart"
	"github.com/shopspring/decimal"
)

// AccountBalance is the balance of one account derived from its journal lines.
type AccountBalance struct {
	Account     *chart.Account   `json:"account"`
	Convention  chart.Convention `json:"convention"`
	TotalDebit  decimal.Decimal  `json:"total_debit"`
	TotalCredit decimal.Decimal  `json:"total_credit"`
	Balance     decimal.Decimal  `json:"balance"`
	LineCount   int64            `json:"line_count"`
}

// ComputeBalance applies the class convention of acc to its line totals.
func ComputeBalance(acc *chart.Account, totals chart.LineTotals) AccountBalance {
	b := chart.ComputeBalance(acc.ClassNumber, totals.TotalDebit, totals.TotalCredit)
	return AccountBalance{
		Account:     acc,
		Convention:  b.Convention,
		TotalDebit:  b.TotalDebit,
		TotalCredit: b.TotalCredit,
		Balance:     b.Amount(),
		LineCount:   totals.LineCount,
	}
}

// BalanceCalculator derives account balances on every read. Lines of
// unposted entries count.
type BalanceCalculator struct {
	repos Repositories
}

func NewBalanceCalculator(repos Repositories) *BalanceCalculator {
	return &BalanceCalculator{repos: repos}
}

// Balance computes the balance of the account identified by code or id.
func (c *BalanceCalculator) Balance(ctx context.Context, codeOrID string) (*AccountBalance, error) {
	acc, err := findAccount(ctx, c.repos.Accounts(), codeOrID)
	if err != nil {
		return nil, err
	}
	return c.BalanceOf(ctx, acc)
}

// BalanceOf computes the balance of acc.
func (c *BalanceCalculator) BalanceOf(ctx context.Context, acc *chart.Account) (*AccountBalance, error) {
	totals, err := c.repos.Accounts().SumLines(ctx, acc.ID)
	if err != nil {
		return nil, err
	}
	b := ComputeBalance(acc, totals)
	return &b, nil
}
