package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/campops-dev/camp-manager/backend/internal/domain"
)

const mealSittingColumns = `
	id,
	camp_id,
	name,
	service_date::text,
	cutoff_enabled,
	cutoff_time::text,
	reset_enabled,
	reset_time::text,
	is_booking_active,
	updated_at,
	version
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMealSitting(row rowScanner) (*domain.MealSitting, error) {
	sitting := &domain.MealSitting{}
	var cutoffTime, resetTime sql.NullString

	dst := []any{
		&sitting.ID,
		&sitting.CampID,
		&sitting.Name,
		&sitting.ServiceDate,
		&sitting.CutoffEnabled,
		&cutoffTime,
		&sitting.ResetEnabled,
		&resetTime,
		&sitting.IsBookingActive,
		&sitting.UpdatedAt,
		&sitting.Version,
	}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}

	if cutoffTime.Valid {
		t, err := domain.ParseTimeOfDay(cutoffTime.String)
		if err != nil {
			return nil, err
		}
		sitting.CutoffTime = t
	}
	if resetTime.Valid {
		t, err := domain.ParseTimeOfDay(resetTime.String)
		if err != nil {
			return nil, err
		}
		sitting.ResetTime = t
	}

	return sitting, nil
}

// ListBookingWindowCandidates 查询在给定日期和时刻可能需要翻转预订状态的餐次，
// 截止和重置同时满足时的取舍由调度器决定
func (r *Repository) ListBookingWindowCandidates(ctx context.Context, campID int64, date string, now domain.TimeOfDay) ([]*domain.MealSitting, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		SELECT ` + mealSittingColumns + `
		FROM meal_sittings
		WHERE camp_id = $1
			AND (
				(cutoff_enabled AND is_booking_active AND service_date = $2::date AND cutoff_time <= $3::time)
				OR (reset_enabled AND NOT is_booking_active AND reset_time <= $3::time)
			)
		ORDER BY service_date, id
	`

	rows, err := r.dbpool.QueryContext(ctx, query, campID, date, now)
	if err != nil {
		return nil, storeError(err)
	}
	defer rows.Close()

	sittings := make([]*domain.MealSitting, 0)
	for rows.Next() {
		sitting, err := scanMealSitting(rows)
		if err != nil {
			return nil, storeError(err)
		}
		sittings = append(sittings, sitting)
	}

	if err := rows.Err(); err != nil {
		return nil, storeError(err)
	}

	return sittings, nil
}

func (r *Repository) GetMealSitting(ctx context.Context, campID, id int64) (*domain.MealSitting, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `SELECT ` + mealSittingColumns + ` FROM meal_sittings WHERE id = $1 AND camp_id = $2`

	sitting, err := scanMealSitting(r.dbpool.QueryRowContext(ctx, query, id, campID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: meal sitting %d", domain.ErrNotFound, id)
		}
		return nil, storeError(err)
	}

	return sitting, nil
}

// SetBookingActive 以 version 做条件写入，版本不一致说明其他调用已经修改过该餐次
func (r *Repository) SetBookingActive(ctx context.Context, sitting *domain.MealSitting, active bool) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		UPDATE meal_sittings
		SET
			is_booking_active = $1,
			updated_at = NOW(),
			version = version + 1
		WHERE id = $2 AND camp_id = $3 AND version = $4
		RETURNING updated_at, version
	`

	args := []any{active, sitting.ID, sitting.CampID, sitting.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&sitting.UpdatedAt, &sitting.Version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: meal sitting %d changed concurrently", domain.ErrConflictingUpdate, sitting.ID)
		}
		return storeError(err)
	}

	sitting.IsBookingActive = active
	return nil
}

func (r *Repository) CreateMealSitting(ctx context.Context, sitting *domain.MealSitting) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		INSERT INTO meal_sittings (camp_id, name, service_date, cutoff_enabled, cutoff_time, reset_enabled, reset_time, is_booking_active)
		VALUES ($1, $2, $3::date, $4, $5::time, $6, $7::time, $8)
		RETURNING id, updated_at, version
	`

	cutoffTime := sql.NullString{String: sitting.CutoffTime.String(), Valid: sitting.CutoffEnabled}
	resetTime := sql.NullString{String: sitting.ResetTime.String(), Valid: sitting.ResetEnabled}
	args := []any{
		sitting.CampID,
		sitting.Name,
		sitting.ServiceDate,
		sitting.CutoffEnabled,
		cutoffTime,
		sitting.ResetEnabled,
		resetTime,
		sitting.IsBookingActive,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&sitting.ID, &sitting.UpdatedAt, &sitting.Version); err != nil {
		return storeError(err)
	}

	return nil
}
