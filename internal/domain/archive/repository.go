package archive

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ohada-ledger/internal/domain/shared"
)

// Repository manages archived posted entries with pagination support
type Repository interface {
	// Upsert stores the snapshot keyed by entry id; replays overwrite it.
	Upsert(ctx context.Context, entry *PostedEntry) error
	GetByEntryID(ctx context.Context, entryID uuid.UUID) (*PostedEntry, error)
	GetByReference(ctx context.Context, reference string) (*PostedEntry, error)
	GetByDateRange(ctx context.Context, from, to time.Time, limit, offset int) ([]*PostedEntry, error)
	// GetByAccountCode returns archived entries with at least one line on the account.
	GetByAccountCode(ctx context.Context, code string, limit, offset int) ([]*PostedEntry, error)
	CountByAccountCode(ctx context.Context, code string) (int64, error)
	Count(ctx context.Context) (int64, error)
}

// ErrEntryNotFound builds the lookup-miss error for an archived entry.
func ErrEntryNotFound(key string) error {
	return shared.NotFoundError{Resource: "posted entry", Key: key}
}
