package staffing

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/campops-dev/camp-manager/backend/internal/domain"
	"github.com/campops-dev/camp-manager/backend/internal/utils"
)

// fakeStore 不做任何内部串行化，用于检查调用方是否正确持锁
type fakeStore struct {
	mu      sync.Mutex
	lessons map[int64]int64 // lessonID -> campID
	staff   map[int64]int64 // staffID -> campID
	links   map[int64][]int64

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
	calls       atomic.Int32
	delay       time.Duration
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		lessons: make(map[int64]int64),
		staff:   make(map[int64]int64),
		links:   make(map[int64][]int64),
	}
}

func (s *fakeStore) addLesson(campID, lessonID int64, staffIDs ...int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lessons[lessonID] = campID
	s.links[lessonID] = slices.Clone(staffIDs)
}

func (s *fakeStore) addStaff(campID int64, ids ...int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.staff[id] = campID
	}
}

func (s *fakeStore) members(lessonID int64) []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := slices.Clone(s.links[lessonID])
	slices.Sort(out)
	return out
}

func (s *fakeStore) ReplaceLessonStaff(_ context.Context, campID, lessonID int64, staffIDs []int64) (*domain.LessonStaffChange, error) {
	s.calls.Add(1)
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		peak := s.maxInFlight.Load()
		if n <= peak || s.maxInFlight.CompareAndSwap(peak, n) {
			break
		}
	}

	s.mu.Lock()
	if owner, ok := s.lessons[lessonID]; !ok || owner != campID {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: lesson %d", domain.ErrNotFound, lessonID)
	}
	for _, id := range staffIDs {
		if owner, ok := s.staff[id]; !ok || owner != campID {
			s.mu.Unlock()
			return nil, fmt.Errorf("%w: staff %d", domain.ErrInvalidReference, id)
		}
	}
	current := slices.Clone(s.links[lessonID])
	s.mu.Unlock()

	// 读和写之间留出窗口，没有外部锁时并发调用会互相覆盖
	time.Sleep(s.delay)

	added, removed := utils.DiffIDs(current, staffIDs)

	s.mu.Lock()
	next := make([]int64, 0, len(current)+len(added))
	for _, id := range s.links[lessonID] {
		if !slices.Contains(removed, id) {
			next = append(next, id)
		}
	}
	next = append(next, added...)
	s.links[lessonID] = next
	s.mu.Unlock()

	return &domain.LessonStaffChange{
		LessonID: lessonID,
		Added:    added,
		Removed:  removed,
		StaffIDs: staffIDs,
	}, nil
}

func (s *fakeStore) ListLessonStaff(_ context.Context, campID, lessonID int64) ([]int64, error) {
	s.mu.Lock()
	owner, ok := s.lessons[lessonID]
	s.mu.Unlock()
	if !ok || owner != campID {
		return nil, fmt.Errorf("%w: lesson %d", domain.ErrNotFound, lessonID)
	}
	return s.members(lessonID), nil
}
