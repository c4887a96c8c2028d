package usecase

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/propfolio/backoffice/internal/domain"
	"github.com/propfolio/backoffice/internal/infrastructure/metrics"
)

// ImportUseCase owns the vendor statement import pipeline: synchronous
// submission on one side of the queue, asynchronous reconciliation on the
// other.
type ImportUseCase struct {
	txManager     TransactionManager
	statementRepo StatementRepository
	propertyRepo  PropertyRepository
	lineItemRepo  LineItemRepository
	parser        DocumentParser
	matcher       *PropertyMatcher
	totals        *TotalsUseCase
	outboxRepo    OutboxRepository
	queue         ImportQueue
	jobStore      JobStateStore
	idGen         IDGenerator
	clock         Clock
	logger        zerolog.Logger
}

// ImportUseCaseConfig holds dependencies for the import pipeline.
type ImportUseCaseConfig struct {
	TxManager     TransactionManager
	StatementRepo StatementRepository
	PropertyRepo  PropertyRepository
	LineItemRepo  LineItemRepository
	Parser        DocumentParser
	Matcher       *PropertyMatcher
	Totals        *TotalsUseCase
	OutboxRepo    OutboxRepository
	Queue         ImportQueue
	JobStore      JobStateStore
	IDGen         IDGenerator
	Clock         Clock
	Logger        zerolog.Logger
}

// NewImportUseCase creates a new ImportUseCase.
func NewImportUseCase(cfg ImportUseCaseConfig) *ImportUseCase {
	if cfg.Clock == nil {
		cfg.Clock = systemClock{}
	}

	return &ImportUseCase{
		txManager:     cfg.TxManager,
		statementRepo: cfg.StatementRepo,
		propertyRepo:  cfg.PropertyRepo,
		lineItemRepo:  cfg.LineItemRepo,
		parser:        cfg.Parser,
		matcher:       cfg.Matcher,
		totals:        cfg.Totals,
		outboxRepo:    cfg.OutboxRepo,
		queue:         cfg.Queue,
		jobStore:      cfg.JobStore,
		idGen:         cfg.IDGen,
		clock:         cfg.Clock,
		logger:        cfg.Logger,
	}
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SubmitImportInput represents a vendor import submission.
type SubmitImportInput struct {
	Session     domain.Session
	StatementID string
	Vendor      string
	Description string
	PDFBase64   string
}

func (in SubmitImportInput) validate() error {
	if in.StatementID == "" || in.Vendor == "" || in.PDFBase64 == "" {
		return domain.ErrInvalidSubmission
	}

	if _, err := base64.StdEncoding.DecodeString(in.PDFBase64); err != nil {
		return domain.ErrInvalidSubmission
	}

	return nil
}

// Submit validates and authorizes a submission, then enqueues a uniquely
// identified job and returns immediately. The statement must exist and
// belong to the caller's organization before anything is queued; queueing
// unauthorized work and failing later would leak cross-org statement ids.
func (uc *ImportUseCase) Submit(ctx context.Context, input SubmitImportInput) (*domain.ImportJob, error) {
	if input.Session.UserID == "" || input.Session.OrgID == "" {
		return nil, domain.ErrUnauthorized
	}

	if err := input.validate(); err != nil {
		return nil, err
	}

	statement, err := uc.statementRepo.GetByID(ctx, input.StatementID)
	if err != nil {
		return nil, err
	}

	if statement.OrgID != input.Session.OrgID {
		// Cross-org access is indistinguishable from absence on purpose.
		return nil, domain.ErrStatementNotFound
	}

	now := uc.clock.Now()
	job := &domain.ImportJob{
		ID:          domain.NewJobID(now),
		OrgID:       input.Session.OrgID,
		UserID:      input.Session.UserID,
		StatementID: input.StatementID,
		Vendor:      input.Vendor,
		Description: input.Description,
		PDFBase64:   input.PDFBase64,
		Status:      domain.JobQueued,
		CreatedAt:   now,
	}

	if err := uc.jobStore.Save(ctx, job); err != nil {
		uc.logger.Warn().Err(err).Str("job_id", job.ID).Msg("failed to record queued job state")
	}

	if err := uc.queue.Enqueue(ctx, job); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEnqueueFailed, err)
	}

	metrics.JobSubmitted()
	uc.logger.Info().
		Str("job_id", job.ID).
		Str("statement_id", job.StatementID).
		Str("vendor", job.Vendor).
		Msg("vendor import enqueued")

	return job, nil
}

// Process runs the reconciliation pipeline for one dequeued job. Each step
// is a hard gate; failures surface to the dispatcher, which owns redelivery.
// Re-invoking Process for the same job id is safe: line-item persistence
// replaces the job's prior writes and totals are recomputed from ground
// truth, never accumulated.
func (uc *ImportUseCase) Process(ctx context.Context, job *domain.ImportJob) error {
	start := uc.clock.Now()

	job.Status = domain.JobProcessing
	job.Error = ""
	if err := uc.jobStore.Save(ctx, job); err != nil {
		uc.logger.Warn().Err(err).Str("job_id", job.ID).Msg("failed to record processing job state")
	}

	summary, err := uc.reconcile(ctx, job)
	if err != nil {
		job.Status = domain.JobFailed
		job.Error = err.Error()
		if saveErr := uc.jobStore.Save(ctx, job); saveErr != nil {
			uc.logger.Warn().Err(saveErr).Str("job_id", job.ID).Msg("failed to record failed job state")
		}

		metrics.JobProcessed("failed", time.Since(start))
		uc.logger.Error().
			Err(err).
			Str("job_id", job.ID).
			Str("statement_id", job.StatementID).
			Msg("vendor import failed")

		return err
	}

	job.Status = domain.JobCompleted
	job.Summary = summary
	if err := uc.jobStore.Save(ctx, job); err != nil {
		uc.logger.Warn().Err(err).Str("job_id", job.ID).Msg("failed to record completed job state")
	}

	metrics.JobProcessed("completed", time.Since(start))
	uc.logger.Info().
		Str("job_id", job.ID).
		Str("summary", summary).
		Msg("vendor import completed")

	return nil
}

func (uc *ImportUseCase) reconcile(ctx context.Context, job *domain.ImportJob) (string, error) {
	// Gate 1: the statement must exist and belong to the job's organization.
	statement, err := uc.statementRepo.GetByID(ctx, job.StatementID)
	if err != nil {
		return "", err
	}

	if statement.OrgID != job.OrgID {
		return "", domain.ErrStatementNotFound
	}

	pdf, err := base64.StdEncoding.DecodeString(job.PDFBase64)
	if err != nil {
		return "", fmt.Errorf("decode document: %w", err)
	}

	doc, err := uc.parser.ParseVendorDocument(ctx, pdf, job.Vendor)
	if err != nil {
		return "", fmt.Errorf("parse vendor document: %w", err)
	}

	// Gate 2: match the vendor's property labels against the registry.
	properties, err := uc.propertyRepo.ListByOrg(ctx, job.OrgID)
	if err != nil {
		return "", fmt.Errorf("load property registry: %w", err)
	}

	names := doc.PropertyNames()
	outcome := uc.matcher.Match(ctx, names, properties)

	// Gate 3: persist line items. Matched entries are attributed to their
	// property; unmatched entries are retained for manual resolution. The
	// applied event rides in the same transaction as the writes it describes.
	items := uc.buildLineItems(job, doc, outcome)

	if err := uc.persistImport(ctx, statement.ID, job, items); err != nil {
		return "", fmt.Errorf("persist import: %w", err)
	}

	metrics.LineItemsImported(len(items))

	// Gate 4: recompute totals for every statement touched by the import.
	// The target statement is always touched: on redelivery the replace in
	// gate 3 may have removed a prior attempt's items even when the new
	// batch is empty.
	for _, statementID := range touchedStatements(statement.ID, items) {
		if _, err := uc.totals.RecalculateTotals(ctx, statementID, job.UserID); err != nil {
			return "", fmt.Errorf("recalculate totals for %s: %w", statementID, err)
		}
	}

	return fmt.Sprintf("matched %d of %d properties, imported %d line items (%d pending manual review)",
		len(outcome.Matches), len(names), len(items), len(outcome.Unmatched)), nil
}

func (uc *ImportUseCase) buildLineItems(job *domain.ImportJob, doc *domain.VendorDocument, outcome *domain.MatchOutcome) []*domain.LineItem {
	now := uc.clock.Now()

	items := make([]*domain.LineItem, 0, len(doc.Entries))
	for _, entry := range doc.Entries {
		item := &domain.LineItem{
			ID:           uc.idGen.Generate(),
			StatementID:  job.StatementID,
			Kind:         entry.Kind,
			Amount:       domain.ParseAmount(entry.Amount),
			Description:  entry.Description,
			PropertyName: entry.PropertyName,
			Source:       domain.SourceVendorImport,
			ImportJobID:  job.ID,
			CreatedAt:    now,
		}

		if match, ok := outcome.Matches[entry.PropertyName]; ok {
			item.PropertyID = match.PropertyID
			item.Matched = true
		}

		items = append(items, item)
	}

	return items
}

func (uc *ImportUseCase) persistImport(ctx context.Context, statementID string, job *domain.ImportJob, items []*domain.LineItem) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := uc.lineItemRepo.ReplaceImport(ctx, tx, statementID, job.ID, items); err != nil {
		return err
	}

	matched := 0
	for _, it := range items {
		if it.Matched {
			matched++
		}
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   job.ID,
		AggregateType: domain.AggregateTypeImportJob,
		EventType:     domain.EventTypeImportApplied,
		Payload: map[string]any{
			"job_id":        job.ID,
			"statement_id":  statementID,
			"vendor":        job.Vendor,
			"items_written": len(items),
			"items_matched": matched,
			"items_pending": len(items) - matched,
		},
		CreatedAt: uc.clock.Now(),
	}
	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func touchedStatements(targetID string, items []*domain.LineItem) []string {
	seen := map[string]bool{targetID: true}
	ids := []string{targetID}

	for _, it := range items {
		if !seen[it.StatementID] {
			seen[it.StatementID] = true
			ids = append(ids, it.StatementID)
		}
	}

	return ids
}

// JobStatus returns the recorded state of an import job.
func (uc *ImportUseCase) JobStatus(ctx context.Context, jobID string) (*domain.ImportJob, error) {
	return uc.jobStore.Get(ctx, jobID)
}
