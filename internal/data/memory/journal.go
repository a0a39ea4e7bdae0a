package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/ohada-ledger/internal/domain/journal"
	"github.com/shopspring/decimal"
)

type entryRepo struct{ *repos }

func (r entryRepo) Create(_ context.Context, entry *journal.Entry) error {
	if err := r.checkWritable(); err != nil {
		return err
	}
	if _, taken := r.st.references[entry.Reference]; taken {
		return journal.DuplicateReferenceError{Reference: entry.Reference}
	}
	if err := r.checkLineAccounts(entry); err != nil {
		return err
	}
	r.st.entries[entry.ID] = entry.Clone()
	r.st.references[entry.Reference] = entry.ID
	return nil
}

func (r entryRepo) checkLineAccounts(entry *journal.Entry) error {
	for i, l := range entry.Lines {
		if _, ok := r.st.accounts[l.AccountID]; !ok {
			return journal.UnknownAccountError{Line: i, AccountCode: l.AccountCode}
		}
	}
	return nil
}

func (r entryRepo) ReferenceExists(_ context.Context, reference string, excluding *uuid.UUID) (bool, error) {
	id, ok := r.st.references[reference]
	if !ok {
		return false, nil
	}
	return excluding == nil || *excluding != id, nil
}

func (r entryRepo) GetByID(_ context.Context, id uuid.UUID) (*journal.Entry, error) {
	e, ok := r.st.entries[id]
	if !ok {
		return nil, journal.EntryNotFound(id.String())
	}
	return r.hydrate(e), nil
}

func (r entryRepo) GetByReference(ctx context.Context, reference string) (*journal.Entry, error) {
	id, ok := r.st.references[reference]
	if !ok {
		return nil, journal.EntryNotFound(reference)
	}
	return r.GetByID(ctx, id)
}

// hydrate copies e and refreshes the joined account columns of its lines.
func (r entryRepo) hydrate(e *journal.Entry) *journal.Entry {
	c := e.Clone()
	for i := range c.Lines {
		if acc, ok := r.st.accounts[c.Lines[i].AccountID]; ok {
			c.Lines[i].AccountCode = acc.Code
			c.Lines[i].AccountName = acc.Name
		}
	}
	return c
}

func (r entryRepo) List(_ context.Context, filter journal.ListFilter) ([]*journal.Entry, error) {
	entries := make([]*journal.Entry, 0, len(r.st.entries))
	for _, e := range r.st.entries {
		if filter.Matches(e) {
			entries = append(entries, r.hydrate(e))
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.Reference < b.Reference
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(entries) {
			return []*journal.Entry{}, nil
		}
		entries = entries[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(entries) {
		entries = entries[:filter.Limit]
	}
	return entries, nil
}

func (r entryRepo) LockForUpdate(ctx context.Context, id uuid.UUID) (*journal.Entry, error) {
	if err := r.checkWritable(); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r entryRepo) Replace(_ context.Context, entry *journal.Entry) error {
	if err := r.checkWritable(); err != nil {
		return err
	}
	prev, ok := r.st.entries[entry.ID]
	if !ok {
		return journal.EntryNotFound(entry.ID.String())
	}
	if prev.IsPosted {
		return journal.EntryPostedError{EntryID: prev.ID, Reference: prev.Reference}
	}
	if owner, taken := r.st.references[entry.Reference]; taken && owner != entry.ID {
		return journal.DuplicateReferenceError{Reference: entry.Reference}
	}
	if err := r.checkLineAccounts(entry); err != nil {
		return err
	}
	delete(r.st.references, prev.Reference)
	r.st.references[entry.Reference] = entry.ID
	r.st.entries[entry.ID] = entry.Clone()
	return nil
}

func (r entryRepo) MarkPosted(_ context.Context, id uuid.UUID, at time.Time) error {
	if err := r.checkWritable(); err != nil {
		return err
	}
	e, ok := r.st.entries[id]
	if !ok {
		return journal.EntryNotFound(id.String())
	}
	if e.IsPosted || !e.IsBalanced {
		return journal.AlreadyPostedError{EntryID: id, Reference: e.Reference}
	}
	e.IsPosted = true
	e.PostedAt = &at
	e.UpdatedAt = at
	return nil
}

func (r entryRepo) Delete(_ context.Context, id uuid.UUID) error {
	if err := r.checkWritable(); err != nil {
		return err
	}
	e, ok := r.st.entries[id]
	if !ok {
		return journal.EntryNotFound(id.String())
	}
	if e.IsPosted {
		return journal.EntryPostedError{EntryID: id, Reference: e.Reference}
	}
	delete(r.st.entries, id)
	delete(r.st.references, e.Reference)
	return nil
}

func (r entryRepo) LinesForAccount(_ context.Context, accountID uuid.UUID) ([]journal.AccountLine, error) {
	var lines []journal.AccountLine
	for _, e := range r.st.entries {
		for _, l := range r.hydrate(e).Lines {
			if l.AccountID != accountID {
				continue
			}
			lines = append(lines, journal.AccountLine{
				Line:           l,
				EntryReference: e.Reference,
				EntryDate:      e.Date,
				EntryPosted:    e.IsPosted,
			})
		}
	}
	sort.Slice(lines, func(i, j int) bool {
		a, b := lines[i], lines[j]
		if !a.EntryDate.Equal(b.EntryDate) {
			return a.EntryDate.Before(b.EntryDate)
		}
		if a.EntryReference != b.EntryReference {
			return a.EntryReference < b.EntryReference
		}
		return a.Position < b.Position
	})
	return lines, nil
}

func (r entryRepo) TotalsByAccount(_ context.Context, postedOnly bool) ([]journal.AccountTotals, error) {
	byAccount := make(map[uuid.UUID]*journal.AccountTotals)
	for _, e := range r.st.entries {
		if postedOnly && !e.IsPosted {
			continue
		}
		for _, l := range e.Lines {
			t, ok := byAccount[l.AccountID]
			if !ok {
				acc := r.st.accounts[l.AccountID]
				t = &journal.AccountTotals{
					AccountID:   l.AccountID,
					Code:        acc.Code,
					Name:        acc.Name,
					ClassNumber: acc.ClassNumber,
					TotalDebit:  decimal.Zero,
					TotalCredit: decimal.Zero,
				}
				byAccount[l.AccountID] = t
			}
			t.TotalDebit = t.TotalDebit.Add(l.Debit)
			t.TotalCredit = t.TotalCredit.Add(l.Credit)
		}
	}

	totals := make([]journal.AccountTotals, 0, len(byAccount))
	for _, t := range byAccount {
		totals = append(totals, *t)
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Code < totals[j].Code })
	return totals, nil
}
