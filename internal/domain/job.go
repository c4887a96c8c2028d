package domain

import (
	"fmt"
	"time"
)

// JobStatus is the lifecycle state of an import job.
// Transitions: queued -> processing -> completed | failed. Terminal states
// are final; redelivery is owned by the queue, not the handler.
type JobStatus string

const (
	JobQueued     JobStatus = "queued"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// ImportJob is one asynchronous unit of reconciliation work tied to a single
// submitted vendor document. It doubles as the queue payload.
type ImportJob struct {
	ID          string    `json:"job_id"`
	OrgID       string    `json:"org_id"`
	UserID      string    `json:"user_id"`
	StatementID string    `json:"statement_id"`
	Vendor      string    `json:"vendor"`
	Description string    `json:"description"`
	PDFBase64   string    `json:"pdf_base64"`
	Status      JobStatus `json:"status"`
	Summary     string    `json:"summary,omitempty"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewJobID mints the job identifier for a submission instant. The epoch
// millisecond suffix makes the id unique per submission instant.
func NewJobID(now time.Time) string {
	return fmt.Sprintf("vendor-%d", now.UnixMilli())
}
