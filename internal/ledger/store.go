// Package ledger is the bookkeeping core: the account directory, the journal
// lifecycle, balance derivation and reporting, all running against a Store.
package ledger

import (
	"context"

	"github.com/ohada-ledger/internal/domain/chart"
	"github.com/ohada-ledger/internal/domain/journal"
	"github.com/ohada-ledger/internal/domain/outbox"
)

// Repositories is the set of repositories a Store or UnitOfWork exposes.
type Repositories interface {
	Classes() chart.ClassRepository
	Accounts() chart.AccountRepository
	Entries() journal.Repository
}

// UnitOfWork binds repositories to one transaction.
type UnitOfWork interface {
	Repositories
	Outbox() outbox.Repository
}

// Store is the durable ledger. Reads through Repositories need no
// transaction; every write goes through WithinTx.
type Store interface {
	Repositories
	// WithinTx runs fn in a transaction, committing when it returns nil and
	// rolling back otherwise. The error from fn is returned unchanged.
	WithinTx(ctx context.Context, fn func(ctx context.Context, uow UnitOfWork) error) error
}
