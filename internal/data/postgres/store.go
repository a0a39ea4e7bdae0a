package postgres

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/ohada-ledger/internal/domain/chart"
	"github.com/ohada-ledger/internal/domain/journal"
	"github.com/ohada-ledger/internal/domain/outbox"
	"github.com/ohada-ledger/internal/ledger"
	"github.com/ohada-ledger/internal/platform/persistence"
)

// Store implements ledger.Store on a PostgreSQL pool
type Store struct {
	pool     persistence.Pool
	logger   *slog.Logger
	classes  *ClassRepository
	accounts *AccountRepository
	entries  *JournalRepository
	outbox   *OutboxRepository
}

var _ ledger.Store = (*Store)(nil)

// NewStore creates a store over the database pool.
func NewStore(logger *slog.Logger, db *persistence.PostgresDB) *Store {
	return NewStoreWithPool(logger, db.Pool())
}

// NewStoreWithPool creates a store over any pool implementation.
func NewStoreWithPool(logger *slog.Logger, pool persistence.Pool) *Store {
	return &Store{
		pool:     pool,
		logger:   logger,
		classes:  NewClassRepository(logger, pool),
		accounts: NewAccountRepository(logger, pool),
		entries:  NewJournalRepository(logger, pool),
		outbox:   NewOutboxRepository(logger, pool),
	}
}

func (s *Store) Classes() chart.ClassRepository    { return s.classes }
func (s *Store) Accounts() chart.AccountRepository { return s.accounts }
func (s *Store) Entries() journal.Repository       { return s.entries }

// WithinTx runs fn with repositories bound to a fresh transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, uow ledger.UnitOfWork) error) error {
	return persistence.ExecuteTx(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(ctx, &unitOfWork{
			classes:  s.classes.WithTx(tx),
			accounts: s.accounts.WithTx(tx),
			entries:  s.entries.WithTx(tx),
			outbox:   s.outbox.WithTx(tx),
		})
	})
}

type unitOfWork struct {
	classes  *ClassRepository
	accounts *AccountRepository
	entries  *JournalRepository
	outbox   *OutboxRepository
}

func (u *unitOfWork) Classes() chart.ClassRepository    { return u.classes }
func (u *unitOfWork) Accounts() chart.AccountRepository { return u.accounts }
func (u *unitOfWork) Entries() journal.Repository       { return u.entries }
func (u *unitOfWork) Outbox() outbox.Repository         { return u.outbox }
