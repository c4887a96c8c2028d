package mocks

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/propfolio/backoffice/internal/domain"
	"github.com/propfolio/backoffice/internal/usecase"
)

// MockStatementRepository is a mock implementation of StatementRepository.
type MockStatementRepository struct {
	mu         sync.RWMutex
	statements map[string]*domain.OwnerStatement

	GetByIDFunc          func(ctx context.Context, id string) (*domain.OwnerStatement, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.OwnerStatement, error)
	UpdateTotalsFunc     func(ctx context.Context, tx usecase.Transaction, id string, totals domain.StatementTotals, updatedAt time.Time, updatedBy string) error

	UpdatedTotals []domain.StatementTotals
}

func NewMockStatementRepository() *MockStatementRepository {
	return &MockStatementRepository{
		statements: make(map[string]*domain.OwnerStatement),
	}
}

func (m *MockStatementRepository) Put(s *domain.OwnerStatement) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statements[s.ID] = s
}

func (m *MockStatementRepository) GetByID(ctx context.Context, id string) (*domain.OwnerStatement, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.statements[id]; ok {
		return s, nil
	}
	return nil, domain.ErrStatementNotFound
}

func (m *MockStatementRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.OwnerStatement, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockStatementRepository) UpdateTotals(ctx context.Context, tx usecase.Transaction, id string, totals domain.StatementTotals, updatedAt time.Time, updatedBy string) error {
	if m.UpdateTotalsFunc != nil {
		return m.UpdateTotalsFunc(ctx, tx, id, totals, updatedAt, updatedBy)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.statements[id]; ok {
		s.TotalIncome = totals.TotalIncome
		s.TotalExpenses = totals.TotalExpenses
		s.TotalAdjustments = totals.TotalAdjustments
		s.GrandTotal = totals.GrandTotal
		s.UpdatedAt = updatedAt
		s.UpdatedBy = updatedBy
	}
	m.UpdatedTotals = append(m.UpdatedTotals, totals)
	return nil
}

// MockPropertyRepository is a mock implementation of PropertyRepository.
type MockPropertyRepository struct {
	Properties []*domain.Property

	ListByOrgFunc func(ctx context.Context, orgID string) ([]*domain.Property, error)
}

func NewMockPropertyRepository(properties ...*domain.Property) *MockPropertyRepository {
	return &MockPropertyRepository{Properties: properties}
}

func (m *MockPropertyRepository) ListByOrg(ctx context.Context, orgID string) ([]*domain.Property, error) {
	if m.ListByOrgFunc != nil {
		return m.ListByOrgFunc(ctx, orgID)
	}
	var result []*domain.Property
	for _, p := range m.Properties {
		if p.OrgID == orgID {
			result = append(result, p)
		}
	}
	return result, nil
}

// MockLineItemRepository is a mock implementation of LineItemRepository.
type MockLineItemRepository struct {
	mu    sync.RWMutex
	items map[string][]*domain.LineItem

	ListByStatementFunc          func(ctx context.Context, statementID string) ([]*domain.LineItem, error)
	ListByStatementForUpdateFunc func(ctx context.Context, tx usecase.Transaction, statementID string) ([]*domain.LineItem, error)
	ReplaceImportFunc            func(ctx context.Context, tx usecase.Transaction, statementID, jobID string, items []*domain.LineItem) error
}

func NewMockLineItemRepository() *MockLineItemRepository {
	return &MockLineItemRepository{
		items: make(map[string][]*domain.LineItem),
	}
}

func (m *MockLineItemRepository) Put(statementID string, items ...*domain.LineItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[statementID] = append(m.items[statementID], items...)
}

func (m *MockLineItemRepository) ListByStatement(ctx context.Context, statementID string) ([]*domain.LineItem, error) {
	if m.ListByStatementFunc != nil {
		return m.ListByStatementFunc(ctx, statementID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.LineItem(nil), m.items[statementID]...), nil
}

func (m *MockLineItemRepository) ListByStatementForUpdate(ctx context.Context, tx usecase.Transaction, statementID string) ([]*domain.LineItem, error) {
	if m.ListByStatementForUpdateFunc != nil {
		return m.ListByStatementForUpdateFunc(ctx, tx, statementID)
	}
	return m.ListByStatement(ctx, statementID)
}

func (m *MockLineItemRepository) ReplaceImport(ctx context.Context, tx usecase.Transaction, statementID, jobID string, items []*domain.LineItem) error {
	if m.ReplaceImportFunc != nil {
		return m.ReplaceImportFunc(ctx, tx, statementID, jobID, items)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []*domain.LineItem
	for _, it := range m.items[statementID] {
		if it.ImportJobID != jobID {
			kept = append(kept, it)
		}
	}
	m.items[statementID] = append(kept, items...)
	return nil
}

// MockImportQueue is a mock implementation of ImportQueue.
type MockImportQueue struct {
	mu       sync.Mutex
	Jobs     []*domain.ImportJob
	Enqueues int

	EnqueueFunc func(ctx context.Context, job *domain.ImportJob) error
}

func NewMockImportQueue() *MockImportQueue {
	return &MockImportQueue{}
}

func (m *MockImportQueue) Enqueue(ctx context.Context, job *domain.ImportJob) error {
	m.mu.Lock()
	m.Enqueues++
	m.mu.Unlock()
	if m.EnqueueFunc != nil {
		return m.EnqueueFunc(ctx, job)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Jobs = append(m.Jobs, job)
	return nil
}

// MockJobStateStore is a mock implementation of JobStateStore.
type MockJobStateStore struct {
	mu   sync.RWMutex
	jobs map[string]domain.ImportJob

	SaveFunc func(ctx context.Context, job *domain.ImportJob) error
	GetFunc  func(ctx context.Context, jobID string) (*domain.ImportJob, error)
}

func NewMockJobStateStore() *MockJobStateStore {
	return &MockJobStateStore{
		jobs: make(map[string]domain.ImportJob),
	}
}

func (m *MockJobStateStore) Save(ctx context.Context, job *domain.ImportJob) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, job)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job.ID] = *job
	return nil
}

func (m *MockJobStateStore) Get(ctx context.Context, jobID string) (*domain.ImportJob, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, jobID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if j, ok := m.jobs[jobID]; ok {
		copied := j
		return &copied, nil
	}
	return nil, domain.ErrJobNotFound
}

// MockOutboxRepository is a mock implementation of OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.Mutex
	Events []*domain.OutboxEvent

	CreateFunc          func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
	GetUnpublishedFunc  func(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublishedFunc   func(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublishedFunc func(ctx context.Context, before time.Time) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	if m.GetUnpublishedFunc != nil {
		return m.GetUnpublishedFunc(ctx, limit)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var unpublished []*domain.OutboxEvent
	for _, e := range m.Events {
		if !e.Published {
			unpublished = append(unpublished, e)
		}
		if len(unpublished) == limit {
			break
		}
	}
	return unpublished, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	if m.MarkPublishedFunc != nil {
		return m.MarkPublishedFunc(ctx, id, publishedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.Events {
		if e.ID == id {
			e.Published = true
			at := publishedAt
			e.PublishedAt = &at
		}
	}
	return nil
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	if m.DeletePublishedFunc != nil {
		return m.DeletePublishedFunc(ctx, before)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []*domain.OutboxEvent
	for _, e := range m.Events {
		if !e.Published || e.PublishedAt == nil || !e.PublishedAt.Before(before) {
			kept = append(kept, e)
		}
	}
	m.Events = kept
	return nil
}

// MockDocumentParser is a mock implementation of DocumentParser.
type MockDocumentParser struct {
	Document *domain.VendorDocument

	ParseVendorDocumentFunc func(ctx context.Context, pdf []byte, vendor string) (*domain.VendorDocument, error)
}

func (m *MockDocumentParser) ParseVendorDocument(ctx context.Context, pdf []byte, vendor string) (*domain.VendorDocument, error) {
	if m.ParseVendorDocumentFunc != nil {
		return m.ParseVendorDocumentFunc(ctx, pdf, vendor)
	}
	return m.Document, nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	Committed  bool
	RolledBack bool

	CommitFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	m.Committed = true
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if !m.Committed {
		m.RolledBack = true
	}
	return nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	mu           sync.Mutex
	Transactions []*MockTransaction

	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := &MockTransaction{}
	m.Transactions = append(m.Transactions, tx)
	return tx, nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	mu   sync.Mutex
	next int

	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	return "item-" + strconv.Itoa(m.next)
}

// FixedClock returns a constant time.
type FixedClock struct {
	At time.Time
}

func (c FixedClock) Now() time.Time { return c.At }
