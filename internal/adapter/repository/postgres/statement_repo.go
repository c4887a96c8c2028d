package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/propfolio/backoffice/internal/domain"
	"github.com/propfolio/backoffice/internal/usecase"
)

const statementColumns = `id, org_id, property_id, period_start, period_end,
	total_income, total_expenses, total_adjustments, grand_total, updated_at, updated_by`

// StatementRepository implements usecase.StatementRepository.
type StatementRepository struct {
	pool *pgxpool.Pool
}

// NewStatementRepository creates a new StatementRepository.
func NewStatementRepository(pool *pgxpool.Pool) *StatementRepository {
	return &StatementRepository{pool: pool}
}

// GetByID retrieves a statement by ID.
func (r *StatementRepository) GetByID(ctx context.Context, id string) (*domain.OwnerStatement, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+statementColumns+` FROM owner_statements WHERE id = $1`, id)

	return scanStatement(row)
}

// GetByIDForUpdate retrieves a statement by ID with a FOR UPDATE lock.
func (r *StatementRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.OwnerStatement, error) {
	pgxTx := tx.(*Tx).PgxTx()

	row := pgxTx.QueryRow(ctx,
		`SELECT `+statementColumns+` FROM owner_statements WHERE id = $1 FOR UPDATE`, id)

	return scanStatement(row)
}

// UpdateTotals writes the derived totals of a statement.
func (r *StatementRepository) UpdateTotals(ctx context.Context, tx usecase.Transaction, id string, totals domain.StatementTotals, updatedAt time.Time, updatedBy string) error {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx, `
		UPDATE owner_statements
		SET total_income = $2,
		    total_expenses = $3,
		    total_adjustments = $4,
		    grand_total = $5,
		    updated_at = $6,
		    updated_by = $7
		WHERE id = $1`,
		id,
		decimalToNumeric(totals.TotalIncome),
		decimalToNumeric(totals.TotalExpenses),
		decimalToNumeric(totals.TotalAdjustments),
		decimalToNumeric(totals.GrandTotal),
		timeToPgTimestamptz(updatedAt),
		updatedBy,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrStatementNotFound
	}

	return nil
}

func scanStatement(row pgx.Row) (*domain.OwnerStatement, error) {
	var (
		s                                                        domain.OwnerStatement
		periodStart, periodEnd, updatedAt                        pgtype.Timestamptz
		totalIncome, totalExpenses, totalAdjustments, grandTotal pgtype.Numeric
	)

	err := row.Scan(
		&s.ID, &s.OrgID, &s.PropertyID, &periodStart, &periodEnd,
		&totalIncome, &totalExpenses, &totalAdjustments, &grandTotal,
		&updatedAt, &s.UpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrStatementNotFound
		}

		return nil, err
	}

	s.PeriodStart = periodStart.Time
	s.PeriodEnd = periodEnd.Time
	s.UpdatedAt = updatedAt.Time
	s.TotalIncome = numericToDecimal(totalIncome)
	s.TotalExpenses = numericToDecimal(totalExpenses)
	s.TotalAdjustments = numericToDecimal(totalAdjustments)
	s.GrandTotal = numericToDecimal(grandTotal)

	return &s, nil
}

// Type conversion helpers.
func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric

	_ = n.Scan(d.String())

	return n
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}

	d, _ := decimal.NewFromString(n.Int.String())
	if n.Exp != 0 {
		d = d.Shift(n.Exp)
	}

	return d
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}
