package producers

import (
	"context"

	"github.com/ohada-ledger/internal/domain/shared"
	"github.com/segmentio/kafka-go"
)

// MessagePublisher publishes JSON messages to one topic
type MessagePublisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
	Close() error
}

// DeadLetterPublisher parks messages that can never be processed
type DeadLetterPublisher interface {
	PublishToDLQ(ctx context.Context, key string, originalMessageValue []byte, kind shared.ErrorKind, reason string) error
	Close() error
}

// KafkaWriter wraps kafka.Writer methods for testing
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

const (
	// CorrelationIDHeader carries the correlation id of the request that produced a message.
	CorrelationIDHeader = "correlation-id"
	// ErrorKindHeader carries the rejection kind of a dead-lettered message.
	ErrorKindHeader = "error-kind"
)
