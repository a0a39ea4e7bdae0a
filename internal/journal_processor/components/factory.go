package components

import (
	"log/slog"

	"github.com/ohada-ledger/internal/config"
	"github.com/ohada-ledger/internal/journal_processor/service"
	"github.com/ohada-ledger/internal/platform/messaging/producers"
)

// CreateProcessingService wires the submission processing chain: the entry
// creator, the rejection recorder and the worker pool in front of them.
func CreateProcessingService(
	entries service.EntryCreator,
	dlq producers.DeadLetterPublisher,
	logger *slog.Logger,
	cfg *config.Config,
) service.ProcessingService {
	recorder := NewRejectionRecorder(dlq, logger.With("component", "rejection_recorder"))

	baseService := service.NewProcessingService(entries, recorder, logger)

	workerPoolService, err := service.NewWorkerPoolProcessingService(
		baseService,
		service.WorkerPoolConfig{
			Size: cfg.WorkerPool.Size,
		},
		logger.With("component", "worker_pool"),
	)

	if err != nil {
		logger.Error("Failed to create worker pool service, falling back to base service", "error", err)
		return baseService
	}

	logger.Info("Created worker pool processing service", "pool_size", cfg.WorkerPool.Size)
	return workerPoolService
}
