package repository

import (
	"context"

	"github.com/campops-dev/camp-manager/backend/internal/domain"
)

func (r *Repository) CreateStaff(ctx context.Context, staff *domain.Staff) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		INSERT INTO staff (camp_id, username, full_name, email, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, is_active, created_at
	`

	args := []any{staff.CampID, staff.Username, staff.FullName, staff.Email, staff.Role}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&staff.ID, &staff.IsActive, &staff.CreatedAt); err != nil {
		return storeError(err)
	}

	return nil
}
