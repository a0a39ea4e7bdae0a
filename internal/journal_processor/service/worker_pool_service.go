package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ohada-ledger/internal/domain/shared"
	"github.com/panjf2000/ants/v2"
)

// WorkerPoolProcessingService runs submissions on a bounded goroutine pool
type WorkerPoolProcessingService struct {
	baseService ProcessingService
	pool        *ants.Pool
	logger      *slog.Logger
	// results holds the completion channel of every submission in flight
	mu      sync.Mutex
	results map[string]chan error
}

type WorkerPoolConfig struct {
	Size int
}

func NewWorkerPoolProcessingService(
	baseService ProcessingService,
	config WorkerPoolConfig,
	logger *slog.Logger,
) (*WorkerPoolProcessingService, error) {
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, err
	}

	return &WorkerPoolProcessingService{
		baseService: baseService,
		pool:        pool,
		logger:      logger,
		results:     make(map[string]chan error),
	}, nil
}

// ProcessSubmission hands the submission to a pool worker and waits for it.
func (s *WorkerPoolProcessingService) ProcessSubmission(ctx context.Context, submission *shared.EntrySubmission) error {
	logger := s.logger
	if submission.CorrelationID != "" {
		logger = s.logger.With("correlation_id", submission.CorrelationID)
	}

	logger.Debug("Submitting journal entry to worker pool",
		"submission_id", submission.SubmissionID.String(),
		"reference", submission.Reference,
	)

	resultChan := make(chan error, 1)

	submissionID := submission.SubmissionID.String()
	s.mu.Lock()
	s.results[submissionID] = resultChan
	s.mu.Unlock()

	submissionCopy := *submission

	err := s.pool.Submit(func() {
		err := s.baseService.ProcessSubmission(ctx, &submissionCopy)

		s.mu.Lock()
		delete(s.results, submissionID)
		s.mu.Unlock()

		resultChan <- err
		close(resultChan)
	})

	if err != nil {
		s.mu.Lock()
		delete(s.results, submissionID)
		close(resultChan)
		s.mu.Unlock()

		logger.Error("Failed to submit journal entry to worker pool",
			"submission_id", submissionID,
			"error", err,
		)
		return err
	}

	return <-resultChan
}

// Shutdown releases the pool; queued work is dropped.
func (s *WorkerPoolProcessingService) Shutdown() {
	s.logger.Info("Shutting down worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

// Running returns the number of running workers in the pool.
func (s *WorkerPoolProcessingService) Running() int {
	return s.pool.Running()
}

// Capacity returns the capacity of the worker pool.
func (s *WorkerPoolProcessingService) Capacity() int {
	return s.pool.Cap()
}

// InFlight returns the number of submissions waiting for a result.
func (s *WorkerPoolProcessingService) InFlight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.results)
}
