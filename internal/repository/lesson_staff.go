package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/campops-dev/camp-manager/backend/internal/domain"
	"github.com/campops-dev/camp-manager/backend/internal/utils"
)

// ReplaceLessonStaff 在一个事务内把课程的教职员集合替换为 staffIDs，
// 只删除被移除的成员、只插入新增的成员，未变化的关联保持不动
func (r *Repository) ReplaceLessonStaff(ctx context.Context, campID, lessonID int64, staffIDs []int64) (*domain.LessonStaffChange, error) {
	ctx, cancel := r.txContext(ctx)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return nil, storeError(err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// 锁住课程行，同一课程的替换在数据库层面也是串行的
	query := `SELECT id FROM lessons WHERE id = $1 AND camp_id = $2 FOR UPDATE`
	var id int64
	if err := tx.QueryRowContext(ctx, query, lessonID, campID).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: lesson %d", domain.ErrNotFound, lessonID)
		}
		return nil, storeError(err)
	}

	if len(staffIDs) > 0 {
		query = `SELECT id FROM staff WHERE camp_id = $1 AND id = ANY($2::bigint[])`
		existing, err := queryIDs(ctx, tx, query, campID, int64Array(staffIDs))
		if err != nil {
			return nil, err
		}
		if missing, _ := utils.DiffIDs(existing, staffIDs); len(missing) > 0 {
			return nil, fmt.Errorf("%w: staff %v not in camp %d", domain.ErrInvalidReference, missing, campID)
		}
	}

	query = `SELECT staff_id FROM lesson_staff WHERE lesson_id = $1 AND camp_id = $2 ORDER BY staff_id`
	current, err := queryIDs(ctx, tx, query, lessonID, campID)
	if err != nil {
		return nil, err
	}

	added, removed := utils.DiffIDs(current, staffIDs)

	if len(removed) > 0 {
		query = `DELETE FROM lesson_staff WHERE lesson_id = $1 AND camp_id = $2 AND staff_id = ANY($3::bigint[])`
		if _, err := tx.ExecContext(ctx, query, lessonID, campID, int64Array(removed)); err != nil {
			return nil, storeError(err)
		}
	}

	for _, staffID := range added {
		query = `
			INSERT INTO lesson_staff (camp_id, lesson_id, staff_id)
			VALUES ($1, $2, $3)
		`
		if _, err := tx.ExecContext(ctx, query, campID, lessonID, staffID); err != nil {
			return nil, storeError(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, storeError(err)
	}

	return &domain.LessonStaffChange{
		LessonID: lessonID,
		Added:    added,
		Removed:  removed,
		StaffIDs: staffIDs,
	}, nil
}

func (r *Repository) ListLessonStaff(ctx context.Context, campID, lessonID int64) ([]int64, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `SELECT EXISTS (SELECT 1 FROM lessons WHERE id = $1 AND camp_id = $2)`
	var exists bool
	if err := r.dbpool.QueryRowContext(ctx, query, lessonID, campID).Scan(&exists); err != nil {
		return nil, storeError(err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: lesson %d", domain.ErrNotFound, lessonID)
	}

	query = `SELECT staff_id FROM lesson_staff WHERE lesson_id = $1 AND camp_id = $2 ORDER BY staff_id`
	return queryIDs(ctx, r.dbpool, query, lessonID, campID)
}

func (r *Repository) CreateLesson(ctx context.Context, lesson *domain.Lesson) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		INSERT INTO lessons (camp_id, title)
		VALUES ($1, $2)
		RETURNING id
	`
	if err := r.dbpool.QueryRowContext(ctx, query, lesson.CampID, lesson.Title).Scan(&lesson.ID); err != nil {
		return storeError(err)
	}

	return nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func queryIDs(ctx context.Context, q queryer, query string, args ...any) ([]int64, error) {
	rows, err := q.QueryContext(ctx, query, args...)
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
