package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/ohada-ledger/internal/domain/journal"
	"github.com/ohada-ledger/internal/domain/shared"
)

// Event is the payload published for every journal entry change.
type Event struct {
	EventID       uuid.UUID               `json:"event_id"`
	Type          shared.JournalEventType `json:"type"`
	EntryID       uuid.UUID               `json:"entry_id"`
	Reference     string                  `json:"reference"`
	CorrelationID string                  `json:"correlation_id,omitempty"`
	OccurredAt    time.Time               `json:"occurred_at"`
	// Entry is the state after the change; nil for deletions.
	Entry *journal.Entry `json:"entry,omitempty"`
}

// Message stores a journal event for reliable publishing after commit
type Message struct {
	ID            int64                   `json:"id"`
	EntryID       uuid.UUID               `json:"entry_id"`
	EventType     shared.JournalEventType `json:"event_type"`
	Payload       json.RawMessage         `json:"payload"`
	Status        shared.OutboxStatus     `json:"status"`
	Attempts      int                     `json:"attempts"`
	CreatedAt     time.Time               `json:"created_at"`
	LastAttemptAt *time.Time              `json:"last_attempt_at,omitempty"`
}

// NewMessage wraps an entry change into a pending outbox message.
func NewMessage(eventType shared.JournalEventType, entry *journal.Entry, correlationID string) (*Message, error) {
	now := time.Now().UTC()
	ev := Event{
		EventID:       uuid.New(),
		Type:          eventType,
		EntryID:       entry.ID,
		Reference:     entry.Reference,
		CorrelationID: correlationID,
		OccurredAt:    now,
	}
	if eventType != shared.JournalEventDeleted {
		ev.Entry = entry
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}

	return &Message{
		EntryID:   entry.ID,
		EventType: eventType,
		Payload:   payload,
		Status:    shared.OutboxStatusPending,
		CreatedAt: now,
	}, nil
}

func (m *Message) IncrementAttempts() {
	m.Attempts++
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsProcessed() {
	m.Status = shared.OutboxStatusProcessed
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsFailed() {
	m.Status = shared.OutboxStatusFailedToPublish
	now := time.Now()
	m.LastAttemptAt = &now
}

// Event decodes the payload
func (m *Message) Event() (*Event, error) {
	var ev Event
	if err := json.Unmarshal(m.Payload, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
