package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ohada-ledger/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockProcessingService struct {
	mock.Mock
}

func (m *MockProcessingService) ProcessSubmission(ctx context.Context, submission *shared.EntrySubmission) error {
	args := m.Called(ctx, submission)
	return args.Error(0)
}

func TestWorkerPoolProcessingService_ProcessSubmission(t *testing.T) {
	sub := submission("ACH-001", "100", "100")

	tests := []struct {
		name          string
		setupMocks    func(base *MockProcessingService)
		expectedError error
	}{
		{
			name: "successful processing",
			setupMocks: func(base *MockProcessingService) {
				base.On("ProcessSubmission", mock.Anything, sub).Return(nil).Once()
			},
		},
		{
			name: "processing error",
			setupMocks: func(base *MockProcessingService) {
				base.On("ProcessSubmission", mock.Anything, sub).Return(errors.New("processing error")).Once()
			},
			expectedError: errors.New("processing error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := &MockProcessingService{}
			workerPoolService, err := NewWorkerPoolProcessingService(base, WorkerPoolConfig{Size: 2}, testLogger())
			require.NoError(t, err)
			defer workerPoolService.Shutdown()

			tt.setupMocks(base)

			err = workerPoolService.ProcessSubmission(context.Background(), sub)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError.Error())
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, 0, workerPoolService.InFlight())
			base.AssertExpectations(t)
		})
	}
}

func TestWorkerPoolProcessingService_Concurrency(t *testing.T) {
	base := &MockProcessingService{}
	workerPoolService, err := NewWorkerPoolProcessingService(base, WorkerPoolConfig{Size: 5}, testLogger())
	require.NoError(t, err)
	defer workerPoolService.Shutdown()

	var processed atomic.Int32
	base.On("ProcessSubmission", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		time.Sleep(10 * time.Millisecond)
		processed.Add(1)
	}).Return(nil)

	numSubmissions := 10
	var wg sync.WaitGroup
	wg.Add(numSubmissions)
	for i := 0; i < numSubmissions; i++ {
		go func() {
			defer wg.Done()
			assert.NoError(t, workerPoolService.ProcessSubmission(context.Background(), submission("ACH-001", "1", "1")))
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(numSubmissions), processed.Load())
	assert.Equal(t, 5, workerPoolService.Capacity())
	assert.Equal(t, 0, workerPoolService.InFlight())
}

func TestWorkerPoolProcessingService_SubmitAfterShutdown(t *testing.T) {
	base := &MockProcessingService{}
	workerPoolService, err := NewWorkerPoolProcessingService(base, WorkerPoolConfig{Size: 1}, testLogger())
	require.NoError(t, err)

	workerPoolService.Shutdown()

	err = workerPoolService.ProcessSubmission(context.Background(), submission("ACH-001", "1", "1"))
	assert.Error(t, err)
	assert.Equal(t, 0, workerPoolService.InFlight())
	base.AssertNotCalled(t, "ProcessSubmission", mock.Anything, mock.Anything)
}
