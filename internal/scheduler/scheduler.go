// Package scheduler 按照餐次的截止/重置规则维护持久化的预订开关。
//
// 每次调用只读取一次时钟，同一轮计算内的所有比较都使用这一时刻。
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/campops-dev/camp-manager/backend/internal/domain"
	"github.com/campops-dev/camp-manager/backend/internal/metrics"
)

type Store interface {
	GetMealSitting(ctx context.Context, campID, id int64) (*domain.MealSitting, error)
	ListBookingWindowCandidates(ctx context.Context, campID int64, date string, now domain.TimeOfDay) ([]*domain.MealSitting, error)
	// SetBookingActive 以 version 做条件写入，版本变化时返回 domain.ErrConflictingUpdate
	SetBookingActive(ctx context.Context, sitting *domain.MealSitting, active bool) error
}

type Publisher interface {
	PublishBookingWindowEvent(ctx context.Context, event domain.BookingWindowEvent) error
}

type ProbeResult struct {
	HasPendingChanges bool                  `json:"hasPendingChanges"`
	CurrentTime       string                `json:"currentTime"`
	Date              string                `json:"date"`
	CutoffCandidates  []*domain.MealSitting `json:"cutoffCandidates"`
	ResetCandidates   []*domain.MealSitting `json:"resetCandidates"`
}

type Failure struct {
	SittingID int64  `json:"sittingID"`
	Error     string `json:"error"`
}

type ReconcileResult struct {
	Flipped     int       `json:"flipped"`
	CurrentTime string    `json:"currentTime"`
	Date        string    `json:"date"`
	Closed      []int64   `json:"closed"`
	Reopened    []int64   `json:"reopened"`
	Skipped     []int64   `json:"skipped"`
	Failures    []Failure `json:"failures"`
}

type Scheduler struct {
	store     Store
	clock     Clock
	location  *time.Location
	publisher Publisher
	metrics   *metrics.Metrics
}

func New(store Store, clock Clock, location *time.Location, publisher Publisher, m *metrics.Metrics) *Scheduler {
	if clock == nil {
		clock = SystemClock{}
	}
	if location == nil {
		location = time.Local
	}

	return &Scheduler{
		store:     store,
		clock:     clock,
		location:  location,
		publisher: publisher,
		metrics:   m,
	}
}

type snapshot struct {
	at   time.Time
	date string
	now  domain.TimeOfDay
}

func (s *Scheduler) snapshot() snapshot {
	at := s.clock.Now().In(s.location)
	return snapshot{
		at:   at,
		date: at.Format(domain.DateLayout),
		now:  domain.TimeOfDayOf(at),
	}
}

func (s *Scheduler) plan(ctx context.Context, campID int64, snap snapshot) (closes, reopens []*domain.MealSitting, err error) {
	sittings, err := s.store.ListBookingWindowCandidates(ctx, campID, snap.date, snap.now)
	if err != nil {
		return nil, nil, err
	}

	closes = make([]*domain.MealSitting, 0)
	reopens = make([]*domain.MealSitting, 0)
	for _, sitting := range sittings {
		switch Evaluate(sitting, snap.date, snap.now) {
		case TransitionClose:
			closes = append(closes, sitting)
		case TransitionReopen:
			reopens = append(reopens, sitting)
		}
	}

	return closes, reopens, nil
}

// Probe 只读地计算当前需要截止和需要重置的餐次
func (s *Scheduler) Probe(ctx context.Context, campID int64) (*ProbeResult, error) {
	snap := s.snapshot()

	closes, reopens, err := s.plan(ctx, campID, snap)
	if err != nil {
		return nil, err
	}

	return &ProbeResult{
		HasPendingChanges: len(closes) > 0 || len(reopens) > 0,
		CurrentTime:       snap.now.String(),
		Date:              snap.date,
		CutoffCandidates:  closes,
		ResetCandidates:   reopens,
	}, nil
}

// Reconcile 翻转所有满足规则的餐次。每个餐次独立更新，
// 单个餐次失败只记录在结果中，不影响其他餐次。重复调用时第二次不会再翻转任何餐次。
func (s *Scheduler) Reconcile(ctx context.Context, campID int64) (*ReconcileResult, error) {
	snap := s.snapshot()

	closes, reopens, err := s.plan(ctx, campID, snap)
	if err != nil {
		return nil, err
	}

	result := &ReconcileResult{
		CurrentTime: snap.now.String(),
		Date:        snap.date,
		Closed:      make([]int64, 0),
		Reopened:    make([]int64, 0),
		Skipped:     make([]int64, 0),
		Failures:    make([]Failure, 0),
	}

	for _, sitting := range closes {
		s.apply(ctx, sitting, TransitionClose, snap, result)
	}
	for _, sitting := range reopens {
		s.apply(ctx, sitting, TransitionReopen, snap, result)
	}

	return result, nil
}

func (s *Scheduler) apply(ctx context.Context, sitting *domain.MealSitting, transition Transition, snap snapshot, result *ReconcileResult) {
	active := transition == TransitionReopen

	if err := s.store.SetBookingActive(ctx, sitting, active); err != nil {
		if errors.Is(err, domain.ErrConflictingUpdate) {
			// 其他调用已经修改过这个餐次
			result.Skipped = append(result.Skipped, sitting.ID)
			s.metrics.ReconcileOutcome("skipped")
			return
		}
		slog.Warn("更新餐次预订状态失败", "camp", sitting.CampID, "sitting", sitting.ID, "transition", transition.String(), "error", err)
		result.Failures = append(result.Failures, Failure{SittingID: sitting.ID, Error: err.Error()})
		s.metrics.ReconcileOutcome("failed")
		return
	}

	result.Flipped++
	if active {
		result.Reopened = append(result.Reopened, sitting.ID)
	} else {
		result.Closed = append(result.Closed, sitting.ID)
	}
	s.metrics.ReconcileOutcome("flipped")
	s.metrics.Flip(transition.String())

	s.publish(ctx, sitting, transition, snap)
}

func (s *Scheduler) publish(ctx context.Context, sitting *domain.MealSitting, transition Transition, snap snapshot) {
	if s.publisher == nil {
		return
	}

	eventType := domain.EventBookingClosed
	if transition == TransitionReopen {
		eventType = domain.EventBookingReopened
	}

	event := domain.BookingWindowEvent{
		Type:        eventType,
		CampID:      sitting.CampID,
		SittingID:   sitting.ID,
		Name:        sitting.Name,
		ServiceDate: sitting.ServiceDate,
		At:          snap.at,
	}
	// 事件只是通知，发送失败不影响已经完成的翻转
	if err := s.publisher.PublishBookingWindowEvent(ctx, event); err != nil {
		slog.Warn("发送预订窗口事件失败", "sitting", sitting.ID, "error", err)
	}
}
