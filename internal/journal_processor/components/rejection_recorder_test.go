package components

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/ohada-ledger/internal/domain/journal"
	"github.com/ohada-ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockDLQPublisher struct {
	mock.Mock
}

func (m *MockDLQPublisher) PublishToDLQ(ctx context.Context, key string, originalMessageValue []byte, kind shared.ErrorKind, reason string) error {
	args := m.Called(ctx, key, originalMessageValue, kind, reason)
	return args.Error(0)
}

func (m *MockDLQPublisher) Close() error {
	return m.Called().Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func rejectedSubmission() *shared.EntrySubmission {
	return &shared.EntrySubmission{
		SubmissionID:  uuid.New(),
		Reference:     "ACH-001",
		CorrelationID: "corr-9",
		Lines: []shared.SubmittedEntryLine{
			{AccountCode: "601", Debit: decimal.NewFromInt(1000)},
			{AccountCode: "512", Credit: decimal.NewFromInt(500)},
		},
	}
}

func TestRejectionRecorder_RecordRejection(t *testing.T) {
	cause := journal.UnbalancedEntryError{TotalDebit: decimal.NewFromInt(1000), TotalCredit: decimal.NewFromInt(500)}

	t.Run("publishes to DLQ with the rejection kind", func(t *testing.T) {
		dlq := &MockDLQPublisher{}
		sub := rejectedSubmission()
		dlq.On("PublishToDLQ",
			mock.MatchedBy(func(ctx context.Context) bool { return shared.CorrelationID(ctx) == "corr-9" }),
			"ACH-001",
			mock.MatchedBy(func(raw []byte) bool {
				var decoded shared.EntrySubmission
				return json.Unmarshal(raw, &decoded) == nil && decoded.SubmissionID == sub.SubmissionID
			}),
			shared.KindUnbalancedEntry,
			cause.Error(),
		).Return(nil).Once()

		recorder := NewRejectionRecorder(dlq, testLogger())
		require.NoError(t, recorder.RecordRejection(context.Background(), sub, cause))
		dlq.AssertExpectations(t)
	})

	t.Run("DLQ failure is returned", func(t *testing.T) {
		dlq := &MockDLQPublisher{}
		dlq.On("PublishToDLQ", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(errors.New("broker unavailable")).Once()

		recorder := NewRejectionRecorder(dlq, testLogger())
		err := recorder.RecordRejection(context.Background(), rejectedSubmission(), cause)
		assert.EqualError(t, err, "broker unavailable")
	})

	t.Run("without DLQ the rejection is only logged", func(t *testing.T) {
		recorder := NewRejectionRecorder(nil, testLogger())
		assert.NoError(t, recorder.RecordRejection(context.Background(), rejectedSubmission(), cause))
	})
}
