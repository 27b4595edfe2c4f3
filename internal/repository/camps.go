package repository

import (
	"context"

	"github.com/campops-dev/camp-manager/backend/internal/domain"
)

func (r *Repository) ListCampIDs(ctx context.Context) ([]int64, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, `SELECT id FROM camps ORDER BY id`)
	if err != nil {
		return nil, storeError(err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, storeError(err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, storeError(err)
	}

	return ids, nil
}

func (r *Repository) CreateCamp(ctx context.Context, camp *domain.Camp) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		INSERT INTO camps (name)
		VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`
	if err := r.dbpool.QueryRowContext(ctx, query, camp.Name).Scan(&camp.ID); err != nil {
		return storeError(err)
	}

	return nil
}
