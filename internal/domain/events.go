package domain

import "time"

// Event types
const (
	EventTypeImportApplied = "vendor_import.applied"
)

// Aggregate types
const (
	AggregateTypeImportJob = "import_job"
)

// OutboxEvent represents an event to be published. Events are written in
// the same transaction as the state change they describe and delivered
// asynchronously by a polling publisher.
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}
