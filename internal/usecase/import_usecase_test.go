package usecase_test

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/propfolio/backoffice/internal/domain"
	"github.com/propfolio/backoffice/internal/usecase"
	"github.com/propfolio/backoffice/internal/usecase/mocks"
)

var testPDF = base64.StdEncoding.EncodeToString([]byte("%PDF-1.4 test"))

type importFixture struct {
	statementRepo *mocks.MockStatementRepository
	propertyRepo  *mocks.MockPropertyRepository
	lineItemRepo  *mocks.MockLineItemRepository
	outboxRepo    *mocks.MockOutboxRepository
	parser        *mocks.MockDocumentParser
	queue         *mocks.MockImportQueue
	jobStore      *mocks.MockJobStateStore
	oracle        *mocks.MockMatchOracle
	uc            *usecase.ImportUseCase
}

func newImportFixture(t *testing.T) *importFixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := &importFixture{
		statementRepo: mocks.NewMockStatementRepository(),
		propertyRepo:  mocks.NewMockPropertyRepository(registry...),
		lineItemRepo:  mocks.NewMockLineItemRepository(),
		outboxRepo:    mocks.NewMockOutboxRepository(),
		parser:        &mocks.MockDocumentParser{Document: &domain.VendorDocument{}},
		queue:         mocks.NewMockImportQueue(),
		jobStore:      mocks.NewMockJobStateStore(),
		oracle:        mocks.NewMockMatchOracle(ctrl),
	}

	txManager := mocks.NewMockTransactionManager()
	logger := zerolog.Nop()
	matcher := usecase.NewPropertyMatcher(f.oracle, logger)
	totals := usecase.NewTotalsUseCase(txManager, f.statementRepo, f.lineItemRepo, logger)

	f.uc = usecase.NewImportUseCase(usecase.ImportUseCaseConfig{
		TxManager:     txManager,
		StatementRepo: f.statementRepo,
		PropertyRepo:  f.propertyRepo,
		LineItemRepo:  f.lineItemRepo,
		Parser:        f.parser,
		Matcher:       matcher,
		Totals:        totals,
		OutboxRepo:    f.outboxRepo,
		Queue:         f.queue,
		JobStore:      f.jobStore,
		IDGen:         mocks.NewMockIDGenerator(),
		Clock:         mocks.FixedClock{At: time.UnixMilli(1725148800123).UTC()},
		Logger:        logger,
	})

	return f
}

func validSubmission() usecase.SubmitImportInput {
	return usecase.SubmitImportInput{
		Session:     domain.Session{UserID: "user-1", OrgID: "org-1"},
		StatementID: "st-1",
		Vendor:      "acme-property-services",
		Description: "August statement",
		PDFBase64:   testPDF,
	}
}

func TestSubmit_EnqueuesJob(t *testing.T) {
	f := newImportFixture(t)
	f.statementRepo.Put(&domain.OwnerStatement{ID: "st-1", OrgID: "org-1"})

	job, err := f.uc.Submit(context.Background(), validSubmission())
	require.NoError(t, err)

	assert.Equal(t, "vendor-1725148800123", job.ID)
	assert.Equal(t, domain.JobQueued, job.Status)
	require.Len(t, f.queue.Jobs, 1)
	assert.Equal(t, job.ID, f.queue.Jobs[0].ID)

	stored, err := f.jobStore.Get(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobQueued, stored.Status)
}

func TestSubmit_CrossOrgStatementEnqueuesNothing(t *testing.T) {
	f := newImportFixture(t)
	f.statementRepo.Put(&domain.OwnerStatement{ID: "st-1", OrgID: "other-org"})

	_, err := f.uc.Submit(context.Background(), validSubmission())

	assert.ErrorIs(t, err, domain.ErrStatementNotFound)
	assert.Zero(t, f.queue.Enqueues, "no queue call may occur for unauthorized work")
}

func TestSubmit_MissingStatementEnqueuesNothing(t *testing.T) {
	f := newImportFixture(t)

	_, err := f.uc.Submit(context.Background(), validSubmission())

	assert.ErrorIs(t, err, domain.ErrStatementNotFound)
	assert.Zero(t, f.queue.Enqueues)
}

func TestSubmit_NoSession(t *testing.T) {
	f := newImportFixture(t)

	input := validSubmission()
	input.Session = domain.Session{}

	_, err := f.uc.Submit(context.Background(), input)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestSubmit_InvalidBody(t *testing.T) {
	f := newImportFixture(t)
	f.statementRepo.Put(&domain.OwnerStatement{ID: "st-1", OrgID: "org-1"})

	tests := []struct {
		name   string
		mutate func(*usecase.SubmitImportInput)
	}{
		{"missing statement id", func(in *usecase.SubmitImportInput) { in.StatementID = "" }},
		{"missing vendor", func(in *usecase.SubmitImportInput) { in.Vendor = "" }},
		{"empty document", func(in *usecase.SubmitImportInput) { in.PDFBase64 = "" }},
		{"invalid base64", func(in *usecase.SubmitImportInput) { in.PDFBase64 = "not-base64!!!" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validSubmission()
			tt.mutate(&input)

			_, err := f.uc.Submit(context.Background(), input)
			assert.ErrorIs(t, err, domain.ErrInvalidSubmission)
		})
	}
}

func TestSubmit_EnqueueFailure(t *testing.T) {
	f := newImportFixture(t)
	f.statementRepo.Put(&domain.OwnerStatement{ID: "st-1", OrgID: "org-1"})
	f.queue.EnqueueFunc = func(ctx context.Context, job *domain.ImportJob) error {
		return errors.New("redis down")
	}

	_, err := f.uc.Submit(context.Background(), validSubmission())
	assert.ErrorIs(t, err, domain.ErrEnqueueFailed)
}

func queuedJob() *domain.ImportJob {
	return &domain.ImportJob{
		ID:          "vendor-1725148800123",
		OrgID:       "org-1",
		UserID:      "user-1",
		StatementID: "st-1",
		Vendor:      "acme-property-services",
		PDFBase64:   testPDF,
		Status:      domain.JobQueued,
	}
}

func TestProcess_EndToEnd(t *testing.T) {
	f := newImportFixture(t)
	f.statementRepo.Put(&domain.OwnerStatement{ID: "st-1", OrgID: "org-1"})

	f.parser.Document = &domain.VendorDocument{Entries: []domain.VendorEntry{
		{PropertyName: "123 Main St (OLD)", Kind: domain.LineItemIncome, Description: "rent", Amount: "1200.00"},
		{PropertyName: "123 Main St (OLD)", Kind: domain.LineItemExpense, Description: "plumbing", Amount: "150.50"},
		{PropertyName: "Mystery Plaza", Kind: domain.LineItemIncome, Description: "rent", Amount: "999"},
	}}

	f.oracle.EXPECT().
		SuggestMatches(gomock.Any(), []string{"Mystery Plaza"}, gomock.Any()).
		Return(map[string]domain.MatchResult{}, nil)

	job := queuedJob()
	require.NoError(t, f.uc.Process(context.Background(), job))

	assert.Equal(t, domain.JobCompleted, job.Status)
	assert.Contains(t, job.Summary, "matched 1 of 2 properties")

	items, err := f.lineItemRepo.ListByStatement(context.Background(), "st-1")
	require.NoError(t, err)
	require.Len(t, items, 3)

	var unmatched int
	for _, it := range items {
		if !it.Matched {
			unmatched++
			assert.Equal(t, "Mystery Plaza", it.PropertyName)
			assert.Empty(t, it.PropertyID)
		}
	}
	assert.Equal(t, 1, unmatched, "unmatched items must be retained, not dropped")

	// Totals reflect only the successfully attributed line items.
	stored, err := f.statementRepo.GetByID(context.Background(), "st-1")
	require.NoError(t, err)
	assert.Equal(t, "1200", stored.TotalIncome.String())
	assert.Equal(t, "150.5", stored.TotalExpenses.String())
	assert.Equal(t, "1049.5", stored.GrandTotal.String())
	assert.Equal(t, "user-1", stored.UpdatedBy)

	// The applied event is recorded with the import's bookkeeping.
	require.Len(t, f.outboxRepo.Events, 1)
	event := f.outboxRepo.Events[0]
	assert.Equal(t, domain.EventTypeImportApplied, event.EventType)
	assert.Equal(t, job.ID, event.AggregateID)
	assert.Equal(t, 3, event.Payload["items_written"])
	assert.Equal(t, 1, event.Payload["items_pending"])
}

func TestProcess_CrossOrgStatementFails(t *testing.T) {
	f := newImportFixture(t)
	f.statementRepo.Put(&domain.OwnerStatement{ID: "st-1", OrgID: "other-org"})

	job := queuedJob()
	err := f.uc.Process(context.Background(), job)

	assert.ErrorIs(t, err, domain.ErrStatementNotFound)
	assert.Equal(t, domain.JobFailed, job.Status)
	assert.NotEmpty(t, job.Error)

	// No partial writes occur when the ownership gate fails.
	items, listErr := f.lineItemRepo.ListByStatement(context.Background(), "st-1")
	require.NoError(t, listErr)
	assert.Empty(t, items)
}

func TestProcess_ParserFailureFailsJob(t *testing.T) {
	f := newImportFixture(t)
	f.statementRepo.Put(&domain.OwnerStatement{ID: "st-1", OrgID: "org-1"})
	f.parser.ParseVendorDocumentFunc = func(ctx context.Context, pdf []byte, vendor string) (*domain.VendorDocument, error) {
		return nil, errors.New("unreadable document")
	}

	job := queuedJob()
	err := f.uc.Process(context.Background(), job)

	require.Error(t, err)
	assert.Equal(t, domain.JobFailed, job.Status)
}

func TestProcess_PersistenceFailureFailsJob(t *testing.T) {
	f := newImportFixture(t)
	f.statementRepo.Put(&domain.OwnerStatement{ID: "st-1", OrgID: "org-1"})
	f.parser.Document = &domain.VendorDocument{Entries: []domain.VendorEntry{
		{PropertyName: "123 Main St", Kind: domain.LineItemIncome, Amount: "100"},
	}}
	f.lineItemRepo.ReplaceImportFunc = func(ctx context.Context, tx usecase.Transaction, statementID, jobID string, items []*domain.LineItem) error {
		return errors.New("constraint violation")
	}

	job := queuedJob()
	err := f.uc.Process(context.Background(), job)

	require.Error(t, err)
	assert.Equal(t, domain.JobFailed, job.Status)
	assert.Contains(t, job.Error, "persist import")
}

func TestProcess_RedeliverySafe(t *testing.T) {
	f := newImportFixture(t)
	f.statementRepo.Put(&domain.OwnerStatement{ID: "st-1", OrgID: "org-1"})
	f.parser.Document = &domain.VendorDocument{Entries: []domain.VendorEntry{
		{PropertyName: "123 Main St", Kind: domain.LineItemIncome, Description: "rent", Amount: "500"},
	}}

	job := queuedJob()
	require.NoError(t, f.uc.Process(context.Background(), job))
	require.NoError(t, f.uc.Process(context.Background(), job))

	// Replayed delivery replaces the first attempt's writes instead of
	// accumulating them.
	items, err := f.lineItemRepo.ListByStatement(context.Background(), "st-1")
	require.NoError(t, err)
	assert.Len(t, items, 1)

	stored, err := f.statementRepo.GetByID(context.Background(), "st-1")
	require.NoError(t, err)
	assert.Equal(t, "500", stored.GrandTotal.String())
}

func TestJobStatus(t *testing.T) {
	f := newImportFixture(t)
	f.statementRepo.Put(&domain.OwnerStatement{ID: "st-1", OrgID: "org-1"})

	job, err := f.uc.Submit(context.Background(), validSubmission())
	require.NoError(t, err)

	state, err := f.uc.JobStatus(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobQueued, state.Status)

	_, err = f.uc.JobStatus(context.Background(), "vendor-0")
	assert.ErrorIs(t, err, domain.ErrJobNotFound)
}
