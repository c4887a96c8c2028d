package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/propfolio/backoffice/internal/domain"
)

// TotalsUseCase recomputes the derived totals of owner statements.
type TotalsUseCase struct {
	txManager     TransactionManager
	statementRepo StatementRepository
	lineItemRepo  LineItemRepository
	logger        zerolog.Logger
}

// NewTotalsUseCase creates a new TotalsUseCase.
func NewTotalsUseCase(
	txManager TransactionManager,
	statementRepo StatementRepository,
	lineItemRepo LineItemRepository,
	logger zerolog.Logger,
) *TotalsUseCase {
	return &TotalsUseCase{
		txManager:     txManager,
		statementRepo: statementRepo,
		lineItemRepo:  lineItemRepo,
		logger:        logger,
	}
}

// RecalculateTotals loads the full line-item collections for a statement,
// recomputes the four derived fields and writes them back together with
// updated_at/updated_by, all in one transaction scoped to the statement row.
// Recomputation always reads ground truth, so calling it repeatedly with
// unchanged line items yields identical stored totals. Concurrent recomputes
// on the same statement serialize on the row lock; last committed wins.
func (uc *TotalsUseCase) RecalculateTotals(ctx context.Context, statementID, actingUserID string) (domain.StatementTotals, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return domain.StatementTotals{}, fmt.Errorf("begin totals transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	statement, err := uc.statementRepo.GetByIDForUpdate(ctx, tx, statementID)
	if err != nil {
		return domain.StatementTotals{}, err
	}

	items, err := uc.lineItemRepo.ListByStatementForUpdate(ctx, tx, statement.ID)
	if err != nil {
		return domain.StatementTotals{}, fmt.Errorf("load line items: %w", err)
	}

	incomes, expenses, adjustments := partitionBillable(items)
	totals := domain.CalculateTotals(incomes, expenses, adjustments)

	now := time.Now().UTC()
	if err := uc.statementRepo.UpdateTotals(ctx, tx, statement.ID, totals, now, actingUserID); err != nil {
		return domain.StatementTotals{}, fmt.Errorf("write statement totals: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.StatementTotals{}, fmt.Errorf("commit totals transaction: %w", err)
	}

	uc.logger.Info().
		Str("statement_id", statementID).
		Str("grand_total", totals.GrandTotal.String()).
		Msg("statement totals recalculated")

	return totals, nil
}

// partitionBillable splits line items by kind, skipping imported items that
// were never attributed to a property. Unmatched items are retained on the
// statement for manual resolution but contribute to totals only once
// resolved.
func partitionBillable(items []*domain.LineItem) (incomes, expenses, adjustments []domain.LineItem) {
	for _, it := range items {
		if it.Source == domain.SourceVendorImport && !it.Matched {
			continue
		}

		switch it.Kind {
		case domain.LineItemIncome:
			incomes = append(incomes, *it)
		case domain.LineItemExpense:
			expenses = append(expenses, *it)
		case domain.LineItemAdjustment:
			adjustments = append(adjustments, *it)
		}
	}

	return incomes, expenses, adjustments
}
