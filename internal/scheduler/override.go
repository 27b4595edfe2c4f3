package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/campops-dev/camp-manager/backend/internal/domain"
)

// Override 手动设置餐次的预订开关，不受截止/重置规则约束。
// 值没有变化时直接返回当前餐次；下一次 Reconcile 仍会按规则处理该餐次。
func (s *Scheduler) Override(ctx context.Context, campID, sittingID int64, active bool) (*domain.MealSitting, error) {
	if sittingID <= 0 {
		return nil, fmt.Errorf("%w: meal sitting id must be positive", domain.ErrInvalidInput)
	}

	sitting, err := s.store.GetMealSitting(ctx, campID, sittingID)
	if err != nil {
		return nil, err
	}
	if sitting.IsBookingActive == active {
		return sitting, nil
	}

	if err := s.store.SetBookingActive(ctx, sitting, active); err != nil {
		return nil, err
	}

	transition := TransitionClose
	if active {
		transition = TransitionReopen
	}
	slog.Info("餐次预订状态已手动修改", "camp", campID, "sitting", sittingID, "transition", transition.String())
	s.metrics.Flip(transition.String())
	s.publish(ctx, sitting, transition, s.snapshot())

	return sitting, nil
}
