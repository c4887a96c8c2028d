package usecase

import (
	"context"
	"time"

	"github.com/propfolio/backoffice/internal/domain"
)

// StatementRepository defines data access for owner statements.
type StatementRepository interface {
	GetByID(ctx context.Context, id string) (*domain.OwnerStatement, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.OwnerStatement, error)
	UpdateTotals(ctx context.Context, tx Transaction, id string, totals domain.StatementTotals, updatedAt time.Time, updatedBy string) error
}

// PropertyRepository defines data access for the canonical property registry.
type PropertyRepository interface {
	ListByOrg(ctx context.Context, orgID string) ([]*domain.Property, error)
}

// LineItemRepository defines data access for statement line items.
type LineItemRepository interface {
	ListByStatement(ctx context.Context, statementID string) ([]*domain.LineItem, error)
	ListByStatementForUpdate(ctx context.Context, tx Transaction, statementID string) ([]*domain.LineItem, error)
	// ReplaceImport atomically replaces all line items previously written by
	// the given job, making import persistence safe under queue redelivery.
	ReplaceImport(ctx context.Context, tx Transaction, statementID, jobID string, items []*domain.LineItem) error
}

// MatchOracle suggests property matches for names that had no exact match.
// Implementations must omit candidates below the confidence threshold.
type MatchOracle interface {
	SuggestMatches(ctx context.Context, names []string, properties []*domain.Property) (map[string]domain.MatchResult, error)
}

// DocumentParser reduces an encoded vendor document to line entries.
// Parsing the source format is a collaborator concern, not the pipeline's.
type DocumentParser interface {
	ParseVendorDocument(ctx context.Context, pdf []byte, vendor string) (*domain.VendorDocument, error)
}

// ImportQueue enqueues import jobs for asynchronous processing. Redelivery
// semantics belong to the queue, not to the job handler.
type ImportQueue interface {
	Enqueue(ctx context.Context, job *domain.ImportJob) error
}

// JobStateStore records import job lifecycle state for status lookups.
type JobStateStore interface {
	Save(ctx context.Context, job *domain.ImportJob) error
	Get(ctx context.Context, jobID string) (*domain.ImportJob, error)
}

// OutboxRepository persists domain events alongside the writes that caused
// them, for asynchronous publication.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs for line items.
type IDGenerator interface {
	Generate() string
}

// Clock abstracts time for deterministic job ids in tests.
type Clock interface {
	Now() time.Time
}
