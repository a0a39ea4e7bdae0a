package ledger

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ohada-ledger/internal/domain/journal"
	"github.com/ohada-ledger/internal/domain/outbox"
	"github.com/ohada-ledger/internal/domain/shared"
	"github.com/ohada-ledger/internal/logger"
)

// EntryUpdate lists the changes to an unposted entry; nil fields are kept.
type EntryUpdate struct {
	Reference   *string
	Date        *string
	Description *string
	Lines       []journal.LineSpec
}

// Journal runs the entry lifecycle: validated creation, edits while unposted,
// posting and deletion. Every change records a journal event in the outbox
// of the same unit of work.
type Journal struct {
	store     Store
	validator *journal.Validator
	now       func() time.Time
	logger    *slog.Logger
}

// NewJournal creates the journal service. now defaults to time.Now.
func NewJournal(logger *slog.Logger, store Store, now func() time.Time) *Journal {
	if now == nil {
		now = time.Now
	}
	return &Journal{
		store:     store,
		validator: journal.NewValidator(now),
		now:       now,
		logger:    logger,
	}
}

// CreateEntry validates p and stores it with its lines in one unit of work.
// Nothing is stored when a rule fails.
func (j *Journal) CreateEntry(ctx context.Context, p journal.Proposal) (*journal.Entry, error) {
	var created *journal.Entry
	err := j.store.WithinTx(ctx, func(ctx context.Context, uow UnitOfWork) error {
		snap, err := snapshot(ctx, uow, p, nil)
		if err != nil {
			return err
		}
		validated, err := j.validator.Validate(p, snap)
		if err != nil {
			return err
		}

		entry := validated.NewEntry(j.now().UTC())
		if err := uow.Entries().Create(ctx, entry); err != nil {
			return err
		}
		if err := recordEvent(ctx, uow, shared.JournalEventCreated, entry); err != nil {
			return err
		}
		created = entry
		return nil
	})
	if err != nil {
		log := logger.FromContext(ctx, j.logger)
		if shared.IsBusiness(err) {
			log.Info("Journal entry rejected", "reference", p.Reference, "kind", string(shared.KindOf(err)), "error", err)
		} else {
			log.Error("Failed to create journal entry", "reference", p.Reference, "error", err)
		}
		return nil, err
	}

	logger.FromContext(ctx, j.logger).Info("Journal entry created",
		"entry_id", created.ID.String(),
		"reference", created.Reference,
		"total", created.TotalDebit().StringFixed(2),
		"lines", len(created.Lines),
	)
	return created, nil
}

// GetEntry looks an entry up by id or by reference.
func (j *Journal) GetEntry(ctx context.Context, idOrReference string) (*journal.Entry, error) {
	return findEntry(ctx, j.store.Entries(), idOrReference)
}

// ListEntries returns entries newest date first.
func (j *Journal) ListEntries(ctx context.Context, filter journal.ListFilter) ([]*journal.Entry, error) {
	return j.store.Entries().List(ctx, filter)
}

// UpdateEntry edits an unposted entry. The merged entry goes through the
// validator again, its reference checked against every other entry.
func (j *Journal) UpdateEntry(ctx context.Context, idOrReference string, update EntryUpdate) (*journal.Entry, error) {
	var updated *journal.Entry
	err := j.store.WithinTx(ctx, func(ctx context.Context, uow UnitOfWork) error {
		entry, err := lockEntry(ctx, uow, idOrReference)
		if err != nil {
			return err
		}
		if err := entry.EnsureMutable(); err != nil {
			return err
		}

		p := mergeProposal(entry, update)
		snap, err := snapshot(ctx, uow, p, &entry.ID)
		if err != nil {
			return err
		}
		validated, err := j.validator.Validate(p, snap)
		if err != nil {
			return err
		}

		validated.ApplyTo(entry, j.now().UTC())
		if err := uow.Entries().Replace(ctx, entry); err != nil {
			return err
		}
		if err := recordEvent(ctx, uow, shared.JournalEventUpdated, entry); err != nil {
			return err
		}
		updated = entry
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx, j.logger).Info("Journal entry updated", "entry_id", updated.ID.String(), "reference", updated.Reference)
	return updated, nil
}

// PostEntry finalises a balanced entry. Returns AlreadyPostedError or
// UnbalancedEntryError.
func (j *Journal) PostEntry(ctx context.Context, idOrReference string) (*journal.Entry, error) {
	var posted *journal.Entry
	err := j.store.WithinTx(ctx, func(ctx context.Context, uow UnitOfWork) error {
		entry, err := lockEntry(ctx, uow, idOrReference)
		if err != nil {
			return err
		}
		if err := entry.Post(j.now().UTC()); err != nil {
			return err
		}
		if err := uow.Entries().MarkPosted(ctx, entry.ID, *entry.PostedAt); err != nil {
			return err
		}
		if err := recordEvent(ctx, uow, shared.JournalEventPosted, entry); err != nil {
			return err
		}
		posted = entry
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx, j.logger).Info("Journal entry posted", "entry_id", posted.ID.String(), "reference", posted.Reference)
	return posted, nil
}

// DeleteEntry removes an unposted entry and its lines. Returns EntryPostedError
// once the entry is posted.
func (j *Journal) DeleteEntry(ctx context.Context, idOrReference string) error {
	var deleted *journal.Entry
	err := j.store.WithinTx(ctx, func(ctx context.Context, uow UnitOfWork) error {
		entry, err := lockEntry(ctx, uow, idOrReference)
		if err != nil {
			return err
		}
		if err := entry.EnsureMutable(); err != nil {
			return err
		}
		if err := uow.Entries().Delete(ctx, entry.ID); err != nil {
			return err
		}
		if err := recordEvent(ctx, uow, shared.JournalEventDeleted, entry); err != nil {
			return err
		}
		deleted = entry
		return nil
	})
	if err != nil {
		return err
	}

	logger.FromContext(ctx, j.logger).Info("Journal entry deleted", "entry_id", deleted.ID.String(), "reference", deleted.Reference)
	return nil
}

// LinesForAccount returns the journal lines of an account, oldest entry first.
func (j *Journal) LinesForAccount(ctx context.Context, codeOrID string) ([]journal.AccountLine, error) {
	acc, err := findAccount(ctx, j.store.Accounts(), codeOrID)
	if err != nil {
		return nil, err
	}
	return j.store.Entries().LinesForAccount(ctx, acc.ID)
}

// snapshot reads the state the validator needs for p. excluding skips the
// entry being edited in the reference check.
func snapshot(ctx context.Context, repos Repositories, p journal.Proposal, excluding *uuid.UUID) (journal.Snapshot, error) {
	var snap journal.Snapshot

	if ref := strings.TrimSpace(p.Reference); ref != "" {
		taken, err := repos.Entries().ReferenceExists(ctx, ref, excluding)
		if err != nil {
			return snap, err
		}
		snap.ReferenceTaken = taken
	}

	accounts, err := repos.Accounts().GetByCodes(ctx, p.Codes())
	if err != nil {
		return snap, err
	}
	snap.Accounts = accounts
	return snap, nil
}

func mergeProposal(e *journal.Entry, u EntryUpdate) journal.Proposal {
	date := e.Date.Format(journal.DateLayout)
	p := journal.Proposal{
		Reference:   e.Reference,
		Date:        &date,
		Description: e.Description,
	}
	if u.Reference != nil {
		p.Reference = *u.Reference
	}
	if u.Date != nil {
		p.Date = u.Date
	}
	if u.Description != nil {
		p.Description = *u.Description
	}

	if u.Lines != nil {
		p.Lines = u.Lines
		return p
	}
	p.Lines = make([]journal.LineSpec, len(e.Lines))
	for i, l := range e.Lines {
		p.Lines[i] = journal.LineSpec{
			AccountCode: l.AccountCode,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Description: l.Description,
		}
	}
	return p
}

func findEntry(ctx context.Context, entries journal.Repository, idOrReference string) (*journal.Entry, error) {
	if id, err := uuid.Parse(idOrReference); err == nil {
		entry, err := entries.GetByID(ctx, id)
		if !errors.Is(err, shared.NotFoundError{}) {
			return entry, err
		}
	}
	return entries.GetByReference(ctx, idOrReference)
}

func lockEntry(ctx context.Context, uow UnitOfWork, idOrReference string) (*journal.Entry, error) {
	entry, err := findEntry(ctx, uow.Entries(), idOrReference)
	if err != nil {
		return nil, err
	}
	return uow.Entries().LockForUpdate(ctx, entry.ID)
}

func recordEvent(ctx context.Context, uow UnitOfWork, eventType shared.JournalEventType, entry *journal.Entry) error {
	msg, err := outbox.NewMessage(eventType, entry, shared.CorrelationID(ctx))
	if err != nil {
		return err
	}
	return uow.Outbox().Create(ctx, msg)
}
