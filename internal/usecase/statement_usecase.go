package usecase

import (
	"context"

	"github.com/propfolio/backoffice/internal/domain"
)

// StatementUseCase serves the back-office read path for owner statements.
type StatementUseCase struct {
	statementRepo StatementRepository
	lineItemRepo  LineItemRepository
}

// NewStatementUseCase creates a new StatementUseCase.
func NewStatementUseCase(statementRepo StatementRepository, lineItemRepo LineItemRepository) *StatementUseCase {
	return &StatementUseCase{
		statementRepo: statementRepo,
		lineItemRepo:  lineItemRepo,
	}
}

// StatementView is a statement with its line-item collections.
type StatementView struct {
	Statement *domain.OwnerStatement
	LineItems []*domain.LineItem
}

// GetStatement returns a statement with its line items, scoped to the
// caller's organization.
func (uc *StatementUseCase) GetStatement(ctx context.Context, session domain.Session, id string) (*StatementView, error) {
	statement, err := uc.statementRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if statement.OrgID != session.OrgID {
		return nil, domain.ErrStatementNotFound
	}

	items, err := uc.lineItemRepo.ListByStatement(ctx, statement.ID)
	if err != nil {
		return nil, err
	}

	return &StatementView{Statement: statement, LineItems: items}, nil
}
