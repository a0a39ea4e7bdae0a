package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/ohada-ledger/internal/domain/archive"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	// ArchiveCollectionName is the name of the posted entries collection in MongoDB
	ArchiveCollectionName = "posted_entries"
)

// ArchiveRepository implements the archive.Repository interface for MongoDB
type ArchiveRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewArchiveRepository creates a new MongoDB archive repository
func NewArchiveRepository(logger *slog.Logger, db *mongo.Database) *ArchiveRepository {
	return &ArchiveRepository{
		db:     db,
		logger: logger,
	}
}

// EnsureIndexes creates the lookup indexes. Entry ids are unique so replays
// of the same posting event can never duplicate a document.
func (r *ArchiveRepository) EnsureIndexes(ctx context.Context) error {
	collection := r.db.Collection(ArchiveCollectionName)

	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "entry_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_entry_id"),
		},
		{
			Keys:    bson.D{{Key: "reference", Value: 1}},
			Options: options.Index().SetName("idx_reference"),
		},
		{
			Keys:    bson.D{{Key: "lines.account_code", Value: 1}, {Key: "date", Value: -1}},
			Options: options.Index().SetName("idx_account_code_date"),
		},
	}
	if _, err := collection.Indexes().CreateMany(ctx, models); err != nil {
		r.logger.Error("Failed to create archive indexes", "error", err)
		return fmt.Errorf("failed to create archive indexes: %w", err)
	}
	return nil
}

// Upsert replaces the archived snapshot of an entry, inserting it on first sight.
func (r *ArchiveRepository) Upsert(ctx context.Context, entry *archive.PostedEntry) error {
	collection := r.db.Collection(ArchiveCollectionName)

	filter := bson.M{"entry_id": entry.EntryID}
	opts := options.Replace().SetUpsert(true)

	if _, err := collection.ReplaceOne(ctx, filter, entry, opts); err != nil {
		r.logger.Error("Failed to archive posted entry",
			"entry_id", entry.EntryID.String(),
			"reference", entry.Reference,
			"error", err)
		return fmt.Errorf("failed to archive posted entry: %w", err)
	}

	return nil
}

// GetByEntryID retrieves an archived entry by its journal entry id.
// Returns a not-found error if the entry was never archived.
func (r *ArchiveRepository) GetByEntryID(ctx context.Context, entryID uuid.UUID) (*archive.PostedEntry, error) {
	return r.findOne(ctx, bson.M{"entry_id": entryID}, entryID.String())
}

// GetByReference retrieves an archived entry by its business reference.
func (r *ArchiveRepository) GetByReference(ctx context.Context, reference string) (*archive.PostedEntry, error) {
	if reference == "" {
		return nil, errors.New("reference cannot be empty")
	}
	return r.findOne(ctx, bson.M{"reference": reference}, reference)
}

// GetByDateRange retrieves paginated archived entries dated within [from, to].
// Results are sorted by entry date in descending order.
func (r *ArchiveRepository) GetByDateRange(ctx context.Context, from, to time.Time, limit, offset int) ([]*archive.PostedEntry, error) {
	filter := bson.M{
		"date": bson.M{
			"$gte": from,
			"$lte": to,
		},
	}

	entries, err := r.find(ctx, filter, limit, offset)
	if err != nil {
		r.logger.Error("Failed to get posted entries by date range",
			"from", from,
			"to", to,
			"error", err)
		return nil, err
	}
	return entries, nil
}

// GetByAccountCode retrieves paginated archived entries touching an account.
func (r *ArchiveRepository) GetByAccountCode(ctx context.Context, code string, limit, offset int) ([]*archive.PostedEntry, error) {
	entries, err := r.find(ctx, bson.M{"lines.account_code": code}, limit, offset)
	if err != nil {
		r.logger.Error("Failed to get posted entries by account",
			"account_code", code,
			"error", err)
		return nil, err
	}
	return entries, nil
}

// CountByAccountCode counts the archived entries touching an account.
func (r *ArchiveRepository) CountByAccountCode(ctx context.Context, code string) (int64, error) {
	collection := r.db.Collection(ArchiveCollectionName)

	count, err := collection.CountDocuments(ctx, bson.M{"lines.account_code": code})
	if err != nil {
		r.logger.Error("Failed to count posted entries",
			"account_code", code,
			"error", err)
		return 0, fmt.Errorf("failed to count posted entries: %w", err)
	}

	return count, nil
}

// Count counts the archived entries.
func (r *ArchiveRepository) Count(ctx context.Context) (int64, error) {
	collection := r.db.Collection(ArchiveCollectionName)

	count, err := collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		r.logger.Error("Failed to count posted entries", "error", err)
		return 0, fmt.Errorf("failed to count posted entries: %w", err)
	}

	return count, nil
}

func (r *ArchiveRepository) findOne(ctx context.Context, filter bson.M, key string) (*archive.PostedEntry, error) {
	collection := r.db.Collection(ArchiveCollectionName)

	var entry archive.PostedEntry
	err := collection.FindOne(ctx, filter).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, archive.ErrEntryNotFound(key)
		}
		r.logger.Error("Failed to get posted entry", "key", key, "error", err)
		return nil, fmt.Errorf("failed to get posted entry: %w", err)
	}

	return &entry, nil
}

func (r *ArchiveRepository) find(ctx context.Context, filter bson.M, limit, offset int) ([]*archive.PostedEntry, error) {
	collection := r.db.Collection(ArchiveCollectionName)

	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}, {Key: "reference", Value: 1}}).
		SetSkip(int64(offset))
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get posted entries: %w", err)
	}
	defer cursor.Close(ctx)

	entries := []*archive.PostedEntry{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode posted entries: %w", err)
	}

	return entries, nil
}

var _ archive.Repository = (*ArchiveRepository)(nil)
