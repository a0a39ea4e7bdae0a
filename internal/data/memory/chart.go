package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/ohada-ledger/internal/domain/chart"
	"github.com/shopspring/decimal"
)

type classRepo struct{ *repos }

func (r classRepo) Ensure(_ context.Context, class *chart.AccountClass) (bool, error) {
	if err := r.checkWritable(); err != nil {
		return false, err
	}
	if _, ok := r.st.classes[class.Number]; ok {
		return false, nil
	}
	r.st.classes[class.Number] = *class
	return true, nil
}

func (r classRepo) GetByNumber(_ context.Context, number chart.ClassNumber) (*chart.AccountClass, error) {
	c, ok := r.st.classes[number]
	if !ok {
		return nil, chart.ClassNotFound(number)
	}
	return &c, nil
}

func (r classRepo) List(_ context.Context) ([]*chart.AccountClass, error) {
	classes := make([]*chart.AccountClass, 0, len(r.st.classes))
	for _, c := range r.st.classes {
		c := c
		classes = append(classes, &c)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].Number < classes[j].Number })
	return classes, nil
}

type accountRepo struct{ *repos }

func (r accountRepo) Create(_ context.Context, acc *chart.Account) error {
	if err := r.checkWritable(); err != nil {
		return err
	}
	if _, taken := r.st.codes[acc.Code]; taken {
		return chart.DuplicateCodeError{Code: acc.Code}
	}
	if _, ok := r.st.classes[acc.ClassNumber]; !ok {
		return chart.UnknownClassError{Number: acc.ClassNumber}
	}
	r.st.accounts[acc.ID] = *acc
	r.st.codes[acc.Code] = acc.ID
	return nil
}

func (r accountRepo) Ensure(ctx context.Context, acc *chart.Account) (bool, error) {
	if err := r.checkWritable(); err != nil {
		return false, err
	}
	if _, taken := r.st.codes[acc.Code]; taken {
		return false, nil
	}
	if err := r.Create(ctx, acc); err != nil {
		return false, err
	}
	return true, nil
}

func (r accountRepo) GetByID(_ context.Context, id uuid.UUID) (*chart.Account, error) {
	acc, ok := r.st.accounts[id]
	if !ok {
		return nil, chart.AccountNotFound(id.String())
	}
	return &acc, nil
}

func (r accountRepo) GetByCode(ctx context.Context, code string) (*chart.Account, error) {
	id, ok := r.st.codes[code]
	if !ok {
		return nil, chart.AccountNotFound(code)
	}
	return r.GetByID(ctx, id)
}

func (r accountRepo) GetByCodes(_ context.Context, codes []string) (map[string]*chart.Account, error) {
	found := make(map[string]*chart.Account, len(codes))
	for _, code := range codes {
		if id, ok := r.st.codes[code]; ok {
			acc := r.st.accounts[id]
			found[code] = &acc
		}
	}
	return found, nil
}

func (r accountRepo) List(_ context.Context, filter chart.AccountFilter) ([]*chart.Account, error) {
	accounts := make([]*chart.Account, 0, len(r.st.accounts))
	for _, acc := range r.st.accounts {
		acc := acc
		if filter.Matches(&acc) {
			accounts = append(accounts, &acc)
		}
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Code < accounts[j].Code })
	return accounts, nil
}

func (r accountRepo) Update(_ context.Context, acc *chart.Account) error {
	if err := r.checkWritable(); err != nil {
		return err
	}
	prev, ok := r.st.accounts[acc.ID]
	if !ok {
		return chart.AccountNotFound(acc.ID.String())
	}
	if owner, taken := r.st.codes[acc.Code]; taken && owner != acc.ID {
		return chart.DuplicateCodeError{Code: acc.Code}
	}
	delete(r.st.codes, prev.Code)
	r.st.codes[acc.Code] = acc.ID
	r.st.accounts[acc.ID] = *acc
	return nil
}

func (r accountRepo) LockForUpdate(ctx context.Context, id uuid.UUID) (*chart.Account, error) {
	if err := r.checkWritable(); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r accountRepo) Delete(_ context.Context, id uuid.UUID) error {
	if err := r.checkWritable(); err != nil {
		return err
	}
	acc, ok := r.st.accounts[id]
	if !ok {
		return chart.AccountNotFound(id.String())
	}
	if r.referenced(id) {
		return chart.AccountInUseError{AccountID: id, Code: acc.Code}
	}
	delete(r.st.accounts, id)
	delete(r.st.codes, acc.Code)
	return nil
}

func (r accountRepo) SumLines(_ context.Context, id uuid.UUID) (chart.LineTotals, error) {
	totals := chart.LineTotals{TotalDebit: decimal.Zero, TotalCredit: decimal.Zero}
	for _, e := range r.st.entries {
		for _, l := range e.Lines {
			if l.AccountID == id {
				totals.TotalDebit = totals.TotalDebit.Add(l.Debit)
				totals.TotalCredit = totals.TotalCredit.Add(l.Credit)
				totals.LineCount++
			}
		}
	}
	return totals, nil
}

func (r accountRepo) HasLines(_ context.Context, id uuid.UUID) (bool, error) {
	return r.referenced(id), nil
}

func (r *repos) referenced(accountID uuid.UUID) bool {
	for _, e := range r.st.entries {
		for _, l := range e.Lines {
			if l.AccountID == accountID {
				return true
			}
		}
	}
	return false
}
