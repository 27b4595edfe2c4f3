package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/campops-dev/camp-manager/backend/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
)

// AdmitOccupant 在同一个事务内锁定床位、重新统计 active 分配并在未满时插入，
// 并发入住同一张床时由行锁串行化
func (r *Repository) AdmitOccupant(ctx context.Context, a *domain.Assignment) error {
	ctx, cancel := r.txContext(ctx)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return storeError(err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// 锁住床位行，后续的入住请求会在这里等待
	query := `
		SELECT capacity FROM beds
		WHERE id = $1 AND camp_id = $2 AND is_active
		FOR UPDATE
	`
	var capacity int32
	if err := tx.QueryRowContext(ctx, query, a.BedID, a.CampID).Scan(&capacity); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: bed %d", domain.ErrNotFound, a.BedID)
		}
		return storeError(err)
	}

	query = `SELECT EXISTS (SELECT 1 FROM guests WHERE id = $1 AND camp_id = $2)`
	var guestExists bool
	if err := tx.QueryRowContext(ctx, query, a.OccupantID, a.CampID).Scan(&guestExists); err != nil {
		return storeError(err)
	}
	if !guestExists {
		return fmt.Errorf("%w: occupant %d", domain.ErrInvalidReference, a.OccupantID)
	}

	query = `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE occupant_id = $3)
		FROM bed_assignments
		WHERE bed_id = $1 AND camp_id = $2 AND status = 'active'
	`
	var occupancy, sameOccupant int32
	if err := tx.QueryRowContext(ctx, query, a.BedID, a.CampID, a.OccupantID).Scan(&occupancy, &sameOccupant); err != nil {
		return storeError(err)
	}
	if sameOccupant > 0 {
		return fmt.Errorf("%w: occupant %d already on bed %d", domain.ErrInvalidInput, a.OccupantID, a.BedID)
	}
	if occupancy >= capacity {
		return fmt.Errorf("%w: bed %d holds %d/%d", domain.ErrCapacityExceeded, a.BedID, occupancy, capacity)
	}

	query = `
		INSERT INTO bed_assignments (camp_id, bed_id, occupant_id, status)
		VALUES ($1, $2, $3, 'active')
		RETURNING id, status, started_at
	`
	if err := tx.QueryRowContext(ctx, query, a.CampID, a.BedID, a.OccupantID).Scan(&a.ID, &a.Status, &a.StartedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.ConstraintName == "bed_assignments_active_occupant_key" {
			return fmt.Errorf("%w: occupant %d already on bed %d", domain.ErrInvalidInput, a.OccupantID, a.BedID)
		}
		return storeError(err)
	}

	if err := tx.Commit(); err != nil {
		return storeError(err)
	}

	return nil
}

// EndAssignment 将 active 分配标记为 ended，记录永不删除
func (r *Repository) EndAssignment(ctx context.Context, campID, assignmentID int64) (*domain.Assignment, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		UPDATE bed_assignments
		SET status = 'ended', ended_at = NOW()
		WHERE id = $1 AND camp_id = $2 AND status = 'active'
		RETURNING bed_id, occupant_id, status, started_at, ended_at
	`

	a := &domain.Assignment{
		ID:     assignmentID,
		CampID: campID,
	}
	endedAt := sql.NullTime{}
	dst := []any{&a.BedID, &a.OccupantID, &a.Status, &a.StartedAt, &endedAt}
	err := r.dbpool.QueryRowContext(ctx, query, assignmentID, campID).Scan(dst...)
	if err == nil {
		a.EndedAt = &endedAt.Time
		return a, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, storeError(err)
	}

	// 区分分配不存在和已经结束两种情况
	query = `SELECT EXISTS (SELECT 1 FROM bed_assignments WHERE id = $1 AND camp_id = $2)`
	var exists bool
	if err := r.dbpool.QueryRowContext(ctx, query, assignmentID, campID).Scan(&exists); err != nil {
		return nil, storeError(err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: assignment %d", domain.ErrNotFound, assignmentID)
	}

	return nil, fmt.Errorf("%w: assignment %d already ended", domain.ErrInvalidInput, assignmentID)
}

func (r *Repository) CreateGuest(ctx context.Context, guest *domain.Guest) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		INSERT INTO guests (camp_id, full_name)
		VALUES ($1, $2)
		RETURNING id
	`
	if err := r.dbpool.QueryRowContext(ctx, query, guest.CampID, guest.FullName).Scan(&guest.ID); err != nil {
		return storeError(err)
	}

	return nil
}
