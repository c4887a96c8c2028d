package postgres

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/propfolio/backoffice/internal/domain"
	"github.com/propfolio/backoffice/internal/usecase"
)

const lineItemColumns = `id, statement_id, kind, amount, description,
	property_id, property_name, source, import_job_id, matched, created_at`

// LineItemRepository implements usecase.LineItemRepository.
type LineItemRepository struct {
	pool *pgxpool.Pool
}

// NewLineItemRepository creates a new LineItemRepository.
func NewLineItemRepository(pool *pgxpool.Pool) *LineItemRepository {
	return &LineItemRepository{pool: pool}
}

// ListByStatement lists all line items of a statement.
func (r *LineItemRepository) ListByStatement(ctx context.Context, statementID string) ([]*domain.LineItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+lineItemColumns+` FROM line_items WHERE statement_id = $1 ORDER BY created_at, id`,
		statementID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanLineItems(rows)
}

// ListByStatementForUpdate lists a statement's line items with FOR UPDATE locks.
func (r *LineItemRepository) ListByStatementForUpdate(ctx context.Context, tx usecase.Transaction, statementID string) ([]*domain.LineItem, error) {
	pgxTx := tx.(*Tx).PgxTx()

	rows, err := pgxTx.Query(ctx,
		`SELECT `+lineItemColumns+` FROM line_items WHERE statement_id = $1 ORDER BY created_at, id FOR UPDATE`,
		statementID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanLineItems(rows)
}

// ReplaceImport atomically replaces all line items previously written by the
// given job. The delete-then-insert pair inside one transaction is what makes
// redelivered jobs converge instead of accumulating duplicates.
func (r *LineItemRepository) ReplaceImport(ctx context.Context, tx usecase.Transaction, statementID, jobID string, items []*domain.LineItem) error {
	pgxTx := tx.(*Tx).PgxTx()

	if _, err := pgxTx.Exec(ctx,
		`DELETE FROM line_items WHERE statement_id = $1 AND import_job_id = $2`,
		statementID, jobID); err != nil {
		return err
	}

	if len(items) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(`
			INSERT INTO line_items (`+lineItemColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			item.ID,
			item.StatementID,
			string(item.Kind),
			decimalToNumeric(item.Amount),
			item.Description,
			nullableText(item.PropertyID),
			item.PropertyName,
			string(item.Source),
			nullableText(item.ImportJobID),
			item.Matched,
			timeToPgTimestamptz(item.CreatedAt),
		)
	}

	results := pgxTx.SendBatch(ctx, batch)
	defer results.Close()

	for range items {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}

	return results.Close()
}

func scanLineItems(rows pgx.Rows) ([]*domain.LineItem, error) {
	var items []*domain.LineItem
	for rows.Next() {
		var (
			item                    domain.LineItem
			kind, source            string
			amount                  pgtype.Numeric
			propertyID, importJobID sql.NullString
			createdAt               pgtype.Timestamptz
		)

		err := rows.Scan(
			&item.ID, &item.StatementID, &kind, &amount, &item.Description,
			&propertyID, &item.PropertyName, &source, &importJobID,
			&item.Matched, &createdAt,
		)
		if err != nil {
			return nil, err
		}

		item.Kind = domain.LineItemKind(kind)
		item.Source = domain.LineItemSource(source)
		item.Amount = numericToDecimal(amount)
		item.PropertyID = propertyID.String
		item.ImportJobID = importJobID.String
		item.CreatedAt = createdAt.Time

		items = append(items, &item)
	}

	return items, rows.Err()
}

func nullableText(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
