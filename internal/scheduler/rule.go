package scheduler

import "github.com/campops-dev/camp-manager/backend/internal/domain"

type Transition int

const (
	TransitionNone Transition = iota
	TransitionClose
	TransitionReopen
)

func (t Transition) String() string {
	switch t {
	case TransitionClose:
		return "closed"
	case TransitionReopen:
		return "reopened"
	default:
		return "none"
	}
}

func cutoffHolds(s *domain.MealSitting, today string, now domain.TimeOfDay) bool {
	// 截止规则只作用于当天的餐次
	return s.CutoffEnabled && s.ServiceDate == today && now >= s.CutoffTime
}

func resetHolds(s *domain.MealSitting, now domain.TimeOfDay) bool {
	// 重置规则与服务日期无关
	return s.ResetEnabled && now >= s.ResetTime
}

// Evaluate 判断餐次在 today/now 时是否需要翻转预订状态。
// 截止和重置同时满足时重置优先，餐次最终处于开放状态；
// 两条规则都不满足时保持现状，不会在没有重置规则的情况下自动重新开放。
func Evaluate(s *domain.MealSitting, today string, now domain.TimeOfDay) Transition {
	switch {
	case resetHolds(s, now):
		if !s.IsBookingActive {
			return TransitionReopen
		}
	case cutoffHolds(s, today, now):
		if s.IsBookingActive {
			return TransitionClose
		}
	}
	return TransitionNone
}
