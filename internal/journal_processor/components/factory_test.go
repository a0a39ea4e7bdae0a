package components

import (
	"testing"

	"github.com/ohada-ledger/internal/config"
	"github.com/ohada-ledger/internal/data/memory"
	"github.com/ohada-ledger/internal/journal_processor/service"
	"github.com/ohada-ledger/internal/ledger"
	"github.com/stretchr/testify/assert"
)

func TestCreateProcessingService(t *testing.T) {
	j := ledger.NewJournal(testLogger(), memory.NewStore(), nil)

	t.Run("creates worker pool service", func(t *testing.T) {
		cfg := &config.Config{WorkerPool: config.WorkerPoolConfig{Size: 5}}

		processingService := CreateProcessingService(j, &MockDLQPublisher{}, testLogger(), cfg)

		pool, ok := processingService.(*service.WorkerPoolProcessingService)
		if assert.True(t, ok) {
			assert.Equal(t, 5, pool.Capacity())
			pool.Shutdown()
		}
	})

	t.Run("works without DLQ", func(t *testing.T) {
		cfg := &config.Config{WorkerPool: config.WorkerPoolConfig{Size: 1}}

		processingService := CreateProcessingService(j, nil, testLogger(), cfg)

		assert.NotNil(t, processingService)
		if pool, ok := processingService.(*service.WorkerPoolProcessingService); ok {
			pool.Shutdown()
		}
	})
}
