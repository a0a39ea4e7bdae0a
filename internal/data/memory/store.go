// Package memory is an in-process implementation of ledger.Store. Writers are
// serialised and work on a private copy of the state that replaces the
// published snapshot on commit; readers see the last committed snapshot
// without taking a lock.
package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/ohada-ledger/internal/domain/chart"
	"github.com/ohada-ledger/internal/domain/journal"
	"github.com/ohada-ledger/internal/domain/outbox"
	"github.com/ohada-ledger/internal/ledger"
)

// ErrReadOnly is returned by writes attempted outside WithinTx.
var ErrReadOnly = errors.New("memory store: writes require WithinTx")

type state struct {
	classes      map[chart.ClassNumber]chart.AccountClass
	accounts     map[uuid.UUID]chart.Account
	codes        map[string]uuid.UUID
	entries      map[uuid.UUID]*journal.Entry
	references   map[string]uuid.UUID
	outbox       []outbox.Message
	nextOutboxID int64
}

func newState() *state {
	return &state{
		classes:    make(map[chart.ClassNumber]chart.AccountClass),
		accounts:   make(map[uuid.UUID]chart.Account),
		codes:      make(map[string]uuid.UUID),
		entries:    make(map[uuid.UUID]*journal.Entry),
		references: make(map[string]uuid.UUID),
	}
}

func (s *state) clone() *state {
	c := &state{
		classes:      make(map[chart.ClassNumber]chart.AccountClass, len(s.classes)),
		accounts:     make(map[uuid.UUID]chart.Account, len(s.accounts)),
		codes:        make(map[string]uuid.UUID, len(s.codes)),
		entries:      make(map[uuid.UUID]*journal.Entry, len(s.entries)),
		references:   make(map[string]uuid.UUID, len(s.references)),
		outbox:       append([]outbox.Message(nil), s.outbox...),
		nextOutboxID: s.nextOutboxID,
	}
	for k, v := range s.classes {
		c.classes[k] = v
	}
	for k, v := range s.accounts {
		c.accounts[k] = v
	}
	for k, v := range s.codes {
		c.codes[k] = v
	}
	for k, v := range s.entries {
		c.entries[k] = v.Clone()
	}
	for k, v := range s.references {
		c.references[k] = v
	}
	return c
}

// Store implements ledger.Store in memory
type Store struct {
	writer  sync.Mutex
	current atomic.Pointer[state]
}

var _ ledger.Store = (*Store)(nil)

// NewStore returns an empty store.
func NewStore() *Store {
	s := &Store{}
	s.current.Store(newState())
	return s
}

func (s *Store) view() *repos {
	return &repos{st: s.current.Load()}
}

func (s *Store) Classes() chart.ClassRepository    { return classRepo{s.view()} }
func (s *Store) Accounts() chart.AccountRepository { return accountRepo{s.view()} }
func (s *Store) Entries() journal.Repository       { return entryRepo{s.view()} }

// Outbox exposes the committed outbox for inspection.
func (s *Store) Outbox() outbox.Repository { return outboxRepo{s.view()} }

// WithinTx runs fn against a private copy of the state and publishes it only
// when fn succeeds.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, uow ledger.UnitOfWork) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.writer.Lock()
	defer s.writer.Unlock()

	work := &repos{st: s.current.Load().clone(), writable: true}
	if err := fn(ctx, work); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.current.Store(work.st)
	return nil
}

type repos struct {
	st       *state
	writable bool
}

func (r *repos) Classes() chart.ClassRepository    { return classRepo{r} }
func (r *repos) Accounts() chart.AccountRepository { return accountRepo{r} }
func (r *repos) Entries() journal.Repository       { return entryRepo{r} }
func (r *repos) Outbox() outbox.Repository         { return outboxRepo{r} }

func (r *repos) checkWritable() error {
	if !r.writable {
		return ErrReadOnly
	}
	return nil
}
