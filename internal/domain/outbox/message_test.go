package outbox

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ohada-ledger/internal/domain/journal"
	"github.com/ohada-ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEntry() *journal.Entry {
	id := uuid.New()
	return &journal.Entry{
		ID:         id,
		Reference:  "JE-001",
		Date:       time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		IsBalanced: true,
		Lines: []journal.Line{
			{ID: uuid.New(), EntryID: id, AccountCode: "521", Debit: decimal.RequireFromString("1000")},
			{ID: uuid.New(), EntryID: id, AccountCode: "101", Credit: decimal.RequireFromString("1000")},
		},
	}
}

func TestNewMessage(t *testing.T) {
	t.Run("SuccessfulCreation", func(t *testing.T) {
		entry := sampleEntry()

		beforeCreation := time.Now()
		msg, err := NewMessage(shared.JournalEventCreated, entry, "corr-1")
		afterCreation := time.Now()

		require.NoError(t, err)
		require.NotNil(t, msg)

		assert.Equal(t, entry.ID, msg.EntryID)
		assert.Equal(t, shared.JournalEventCreated, msg.EventType)
		assert.Equal(t, shared.OutboxStatusPending, msg.Status)
		assert.Equal(t, 0, msg.Attempts)
		assert.Nil(t, msg.LastAttemptAt)
		assert.WithinDuration(t, beforeCreation, msg.CreatedAt, afterCreation.Sub(beforeCreation)+time.Millisecond)

		ev, err := msg.Event()
		require.NoError(t, err)
		assert.Equal(t, "JE-001", ev.Reference)
		assert.Equal(t, "corr-1", ev.CorrelationID)
		require.NotNil(t, ev.Entry)
		require.Len(t, ev.Entry.Lines, 2)
		assert.True(t, ev.Entry.Lines[0].Debit.Equal(decimal.RequireFromString("1000")))
	})

	t.Run("DeletionCarriesNoSnapshot", func(t *testing.T) {
		msg, err := NewMessage(shared.JournalEventDeleted, sampleEntry(), "")
		require.NoError(t, err)

		ev, err := msg.Event()
		require.NoError(t, err)
		assert.Nil(t, ev.Entry)
		assert.Equal(t, "JE-001", ev.Reference)
	})
}

func TestMessage_IncrementAttempts(t *testing.T) {
	initialTime := time.Now().Add(-time.Hour)
	msg := &Message{
		Attempts:      1,
		LastAttemptAt: &initialTime,
	}

	msg.IncrementAttempts()

	assert.Equal(t, 2, msg.Attempts)
	require.NotNil(t, msg.LastAttemptAt)
	assert.True(t, msg.LastAttemptAt.After(initialTime))
}

func TestMessage_MarkAsProcessed(t *testing.T) {
	initialTime := time.Now().Add(-time.Hour)
	msg := &Message{
		Status:        shared.OutboxStatusPending,
		LastAttemptAt: &initialTime,
	}
	msg.MarkAsProcessed()

	assert.Equal(t, shared.OutboxStatusProcessed, msg.Status)
	require.NotNil(t, msg.LastAttemptAt)
	assert.True(t, msg.LastAttemptAt.After(initialTime))
}

func TestMessage_MarkAsFailed(t *testing.T) {
	msg := &Message{Status: shared.OutboxStatusPending}
	msg.MarkAsFailed()

	assert.Equal(t, shared.OutboxStatusFailedToPublish, msg.Status)
	assert.NotNil(t, msg.LastAttemptAt)
}

func TestMessage_EventInvalidPayload(t *testing.T) {
	msg := &Message{Payload: []byte("{not json")}
	_, err := msg.Event()
	assert.Error(t, err)
}
