package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/propfolio/backoffice/internal/domain"
)

// PropertyRepository implements usecase.PropertyRepository.
type PropertyRepository struct {
	pool *pgxpool.Pool
}

// NewPropertyRepository creates a new PropertyRepository.
func NewPropertyRepository(pool *pgxpool.Pool) *PropertyRepository {
	return &PropertyRepository{pool: pool}
}

// ListByOrg lists all properties registered by an organization.
func (r *PropertyRepository) ListByOrg(ctx context.Context, orgID string) ([]*domain.Property, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, org_id, name, address FROM properties WHERE org_id = $1 ORDER BY name`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var properties []*domain.Property
	for rows.Next() {
		var p domain.Property
		if err := rows.Scan(&p.ID, &p.OrgID, &p.Name, &p.Address); err != nil {
			return nil, err
		}

		properties = append(properties, &p)
	}

	return properties, rows.Err()
}
