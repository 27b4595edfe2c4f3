// Package staffing 负责课程与教职员之间多对多关系的整体替换
package staffing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/campops-dev/camp-manager/backend/internal/domain"
	"github.com/campops-dev/camp-manager/backend/internal/metrics"
	"github.com/campops-dev/camp-manager/backend/internal/utils"
)

type Store interface {
	// ReplaceLessonStaff 必须在单个事务中完成差量删除和插入
	ReplaceLessonStaff(ctx context.Context, campID, lessonID int64, staffIDs []int64) (*domain.LessonStaffChange, error)
	ListLessonStaff(ctx context.Context, campID, lessonID int64) ([]int64, error)
}

type Replacer struct {
	store       Store
	locker      Locker
	waitTimeout time.Duration
	metrics     *metrics.Metrics
}

func NewReplacer(store Store, locker Locker, waitTimeout time.Duration, m *metrics.Metrics) *Replacer {
	return &Replacer{
		store:       store,
		locker:      locker,
		waitTimeout: waitTimeout,
		metrics:     m,
	}
}

func lockKey(campID, lessonID int64) string {
	return fmt.Sprintf("lesson_staff:%d:%d", campID, lessonID)
}

// ReplaceAll 使课程在该营地下的教职员集合恰好等于 staffIDs，空集合表示清空。
// 同一 (营地, 课程) 的调用串行执行，不同课程之间互不影响。
func (r *Replacer) ReplaceAll(ctx context.Context, campID, lessonID int64, staffIDs []int64) (*domain.LessonStaffChange, error) {
	if lessonID <= 0 {
		return nil, fmt.Errorf("%w: lesson id must be positive", domain.ErrInvalidInput)
	}

	ids, err := utils.NormalizeIDs(staffIDs)
	if err != nil {
		r.metrics.Replacement("invalid")
		return nil, err
	}

	lockCtx := ctx
	if r.waitTimeout > 0 {
		var cancel context.CancelFunc
		lockCtx, cancel = context.WithTimeout(ctx, r.waitTimeout)
		defer cancel()
	}

	unlock, err := r.locker.Lock(lockCtx, lockKey(campID, lessonID))
	if err != nil {
		r.metrics.Replacement("lock_failed")
		return nil, err
	}
	defer unlock()

	change, err := r.store.ReplaceLessonStaff(ctx, campID, lessonID, ids)
	if err != nil {
		r.metrics.Replacement("failed")
		return nil, err
	}

	slog.Info("课程教职员已替换", "camp", campID, "lesson", lessonID, "added", change.Added, "removed", change.Removed)
	r.metrics.Replacement("ok")
	return change, nil
}

func (r *Replacer) Members(ctx context.Context, campID, lessonID int64) ([]int64, error) {
	if lessonID <= 0 {
		return nil, fmt.Errorf("%w: lesson id must be positive", domain.ErrInvalidInput)
	}

	return r.store.ListLessonStaff(ctx, campID, lessonID)
}
