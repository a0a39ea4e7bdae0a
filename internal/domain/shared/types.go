package shared

// OutboxStatus defines message publishing states
type OutboxStatus string

const (
	OutboxStatusPending         OutboxStatus = "PENDING"
	OutboxStatusProcessed       OutboxStatus = "PROCESSED"
	OutboxStatusFailedToPublish OutboxStatus = "FAILED_TO_PUBLISH"
)

// JournalEventType names what happened to a journal entry.
type JournalEventType string

const (
	JournalEventCreated JournalEventType = "ENTRY_CREATED"
	JournalEventUpdated JournalEventType = "ENTRY_UPDATED"
	JournalEventPosted  JournalEventType = "ENTRY_POSTED"
	JournalEventDeleted JournalEventType = "ENTRY_DELETED"
)
