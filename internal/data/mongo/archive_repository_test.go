package mongo

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ohada-ledger/internal/domain/archive"
	"github.com/ohada-ledger/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const testNamespace = "ledger.posted_entries"

func postedEntry(ref string) *archive.PostedEntry {
	return &archive.PostedEntry{
		EntryID:   uuid.New(),
		Reference: ref,
		Date:      time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Lines: []archive.PostedLine{
			{AccountCode: "601", Debit: "1000.00", Credit: "0.00"},
			{AccountCode: "521", Debit: "0.00", Credit: "1000.00"},
		},
		TotalDebit:  "1000.00",
		TotalCredit: "1000.00",
		PostedAt:    time.Date(2024, 1, 16, 8, 0, 0, 0, time.UTC),
	}
}

func toDoc(t testing.TB, e *archive.PostedEntry) bson.D {
	raw, err := bson.Marshal(e)
	require.NoError(t, err)
	var doc bson.D
	require.NoError(t, bson.Unmarshal(raw, &doc))
	return doc
}

func TestNewArchiveRepository(t *testing.T) {
	db := &mongo.Database{}
	logger := slog.Default()

	repo := NewArchiveRepository(logger, db)

	assert.NotNil(t, repo)
	assert.IsType(t, &ArchiveRepository{}, repo)
}

func TestArchiveRepository_Upsert(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("successful upsert", func(mt *mtest.T) {
		repo := NewArchiveRepository(slog.Default(), mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		err := repo.Upsert(context.Background(), postedEntry("JE-001"))
		assert.NoError(mt, err)
	})

	mt.Run("write error", func(mt *mtest.T) {
		repo := NewArchiveRepository(slog.Default(), mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		err := repo.Upsert(context.Background(), postedEntry("JE-001"))
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "failed to archive posted entry")
	})
}

func TestArchiveRepository_GetByReference(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("entry found", func(mt *mtest.T) {
		repo := NewArchiveRepository(slog.Default(), mt.DB)
		want := postedEntry("JE-001")
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testNamespace, mtest.FirstBatch, toDoc(mt, want)))

		got, err := repo.GetByReference(context.Background(), "JE-001")
		require.NoError(mt, err)
		assert.Equal(mt, want.EntryID, got.EntryID)
		assert.Equal(mt, "JE-001", got.Reference)
		assert.Len(mt, got.Lines, 2)
		assert.Equal(mt, "1000.00", got.TotalDebit)
	})

	mt.Run("entry not found", func(mt *mtest.T) {
		repo := NewArchiveRepository(slog.Default(), mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testNamespace, mtest.FirstBatch))

		got, err := repo.GetByReference(context.Background(), "JE-404")
		assert.Nil(mt, got)
		assert.True(mt, errors.Is(err, shared.NotFoundError{}))
		assert.Equal(mt, shared.KindNotFound, shared.KindOf(err))
	})

	mt.Run("empty reference", func(mt *mtest.T) {
		repo := NewArchiveRepository(slog.Default(), mt.DB)

		_, err := repo.GetByReference(context.Background(), "")
		assert.Error(mt, err)
	})
}

func TestArchiveRepository_GetByEntryID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("command error", func(mt *mtest.T) {
		repo := NewArchiveRepository(slog.Default(), mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Message: "bad query",
		}))

		_, err := repo.GetByEntryID(context.Background(), uuid.New())
		require.Error(mt, err)
		assert.False(mt, errors.Is(err, shared.NotFoundError{}))
	})
}

func TestArchiveRepository_GetByAccountCode(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("entries found", func(mt *mtest.T) {
		repo := NewArchiveRepository(slog.Default(), mt.DB)
		first := postedEntry("JE-002")
		second := postedEntry("JE-001")
		mt.AddMockResponses(
			mtest.CreateCursorResponse(1, testNamespace, mtest.FirstBatch, toDoc(mt, first)),
			mtest.CreateCursorResponse(0, testNamespace, mtest.NextBatch, toDoc(mt, second)),
		)

		got, err := repo.GetByAccountCode(context.Background(), "601", 10, 0)
		require.NoError(mt, err)
		require.Len(mt, got, 2)
		assert.Equal(mt, "JE-002", got[0].Reference)
		assert.Equal(mt, "JE-001", got[1].Reference)
	})

	mt.Run("no entries", func(mt *mtest.T) {
		repo := NewArchiveRepository(slog.Default(), mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testNamespace, mtest.FirstBatch))

		got, err := repo.GetByAccountCode(context.Background(), "999", 10, 0)
		require.NoError(mt, err)
		assert.Empty(mt, got)
	})
}

func TestArchiveRepository_GetByDateRange(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("entries found", func(mt *mtest.T) {
		repo := NewArchiveRepository(slog.Default(), mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testNamespace, mtest.FirstBatch, toDoc(mt, postedEntry("JE-001"))))

		from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
		got, err := repo.GetByDateRange(context.Background(), from, to, 50, 0)
		require.NoError(mt, err)
		require.Len(mt, got, 1)
		assert.True(mt, got[0].Date.Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)))
	})
}

func TestArchiveRepository_Count(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("count", func(mt *mtest.T) {
		repo := NewArchiveRepository(slog.Default(), mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testNamespace, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: 1},
			{Key: "n", Value: int64(3)},
		}))

		count, err := repo.Count(context.Background())
		require.NoError(mt, err)
		assert.Equal(mt, int64(3), count)
	})
}

func TestArchiveRepository_CountByAccountCode(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("count", func(mt *mtest.T) {
		repo := NewArchiveRepository(slog.Default(), mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testNamespace, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: 1},
			{Key: "n", Value: int64(2)},
		}))

		count, err := repo.CountByAccountCode(context.Background(), "601")
		require.NoError(mt, err)
		assert.Equal(mt, int64(2), count)
	})

	mt.Run("command error", func(mt *mtest.T) {
		repo := NewArchiveRepository(slog.Default(), mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Message: "bad"}))

		_, err := repo.CountByAccountCode(context.Background(), "601")
		assert.Error(mt, err)
	})
}

func TestArchiveRepository_EnsureIndexes(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("indexes created", func(mt *mtest.T) {
		repo := NewArchiveRepository(slog.Default(), mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		assert.NoError(mt, repo.EnsureIndexes(context.Background()))
	})
}
