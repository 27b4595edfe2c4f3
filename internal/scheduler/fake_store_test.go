package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/campops-dev/camp-manager/backend/internal/domain"
)

type fixedClock time.Time

func (c fixedClock) Now() time.Time {
	return time.Time(c)
}

// fakeStore 复刻仓储层的候选查询条件和 version 条件写入
type fakeStore struct {
	mu       sync.Mutex
	sittings map[int64]*domain.MealSitting
	listErr  error
	failIDs  map[int64]error
	updates  int
}

func newFakeStore(sittings ...*domain.MealSitting) *fakeStore {
	s := &fakeStore{
		sittings: make(map[int64]*domain.MealSitting),
		failIDs:  make(map[int64]error),
	}
	for _, sitting := range sittings {
		if sitting.Version == 0 {
			sitting.Version = 1
		}
		s.sittings[sitting.ID] = sitting
	}
	return s
}

func (s *fakeStore) get(id int64) domain.MealSitting {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.sittings[id]
}

func (s *fakeStore) GetMealSitting(_ context.Context, campID, id int64) (*domain.MealSitting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.sittings[id]
	if !ok || stored.CampID != campID {
		return nil, fmt.Errorf("%w: meal sitting %d", domain.ErrNotFound, id)
	}
	cp := *stored
	return &cp, nil
}

func (s *fakeStore) ListBookingWindowCandidates(_ context.Context, campID int64, date string, now domain.TimeOfDay) ([]*domain.MealSitting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listErr != nil {
		return nil, s.listErr
	}

	result := make([]*domain.MealSitting, 0)
	for _, sitting := range s.sittings {
		if sitting.CampID != campID {
			continue
		}
		cutoff := sitting.CutoffEnabled && sitting.IsBookingActive && sitting.ServiceDate == date && sitting.CutoffTime <= now
		reset := sitting.ResetEnabled && !sitting.IsBookingActive && sitting.ResetTime <= now
		if cutoff || reset {
			cp := *sitting
			result = append(result, &cp)
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *fakeStore) SetBookingActive(_ context.Context, sitting *domain.MealSitting, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err, ok := s.failIDs[sitting.ID]; ok {
		return err
	}

	stored, ok := s.sittings[sitting.ID]
	if !ok || stored.CampID != sitting.CampID || stored.Version != sitting.Version {
		return fmt.Errorf("%w: meal sitting %d", domain.ErrConflictingUpdate, sitting.ID)
	}

	stored.IsBookingActive = active
	stored.Version++
	s.updates++
	sitting.IsBookingActive = active
	sitting.Version = stored.Version
	return nil
}

type fakeCamps struct {
	ids []int64
	err error
}

func (c fakeCamps) ListCampIDs(context.Context) ([]int64, error) {
	return c.ids, c.err
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.BookingWindowEvent
	err    error
}

func (p *recordingPublisher) PublishBookingWindowEvent(_ context.Context, event domain.BookingWindowEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

var errBoom = errors.New("boom")
