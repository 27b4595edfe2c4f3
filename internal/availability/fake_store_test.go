package availability

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/campops-dev/camp-manager/backend/internal/domain"
)

type fakeBed struct {
	id       int64
	campID   int64
	roomID   int64
	roomName string
	label    string
	capacity int32
	active   bool
}

// fakeStore 用一把互斥锁模拟事务内的条件插入
type fakeStore struct {
	mu          sync.Mutex
	beds        map[int64]*fakeBed
	guests      map[int64]int64 // guestID -> campID
	assignments []*domain.Assignment
	nextID      int64
	err         error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		beds:   make(map[int64]*fakeBed),
		guests: make(map[int64]int64),
	}
}

func (s *fakeStore) addBed(b *fakeBed) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.beds[b.id] = b
}

func (s *fakeStore) addGuests(campID int64, ids ...int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.guests[id] = campID
	}
}

func (s *fakeStore) activeCount(bedID int64) int32 {
	var n int32
	for _, a := range s.assignments {
		if a.BedID == bedID && a.Status == domain.AssignmentActive {
			n++
		}
	}
	return n
}

func (s *fakeStore) ListBedOccupancy(_ context.Context, campID int64, filter domain.BedFilter) ([]*domain.BedOccupancy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}

	var wanted map[int64]bool
	if filter.BedIDs != nil {
		wanted = make(map[int64]bool)
		for _, id := range filter.BedIDs {
			wanted[id] = true
		}
	}

	result := make([]*domain.BedOccupancy, 0)
	for _, b := range s.beds {
		if b.campID != campID || !b.active {
			continue
		}
		if filter.RoomID != nil && b.roomID != *filter.RoomID {
			continue
		}
		if wanted != nil && !wanted[b.id] {
			continue
		}
		result = append(result, &domain.BedOccupancy{
			BedID:     b.id,
			BedLabel:  b.label,
			RoomID:    b.roomID,
			RoomName:  b.roomName,
			Capacity:  b.capacity,
			Occupancy: s.activeCount(b.id),
		})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].RoomName != result[j].RoomName {
			return result[i].RoomName < result[j].RoomName
		}
		return result[i].BedLabel < result[j].BedLabel
	})
	return result, nil
}

func (s *fakeStore) AdmitOccupant(_ context.Context, a *domain.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}

	b, ok := s.beds[a.BedID]
	if !ok || b.campID != a.CampID || !b.active {
		return fmt.Errorf("%w: bed %d", domain.ErrNotFound, a.BedID)
	}
	if campID, ok := s.guests[a.OccupantID]; !ok || campID != a.CampID {
		return fmt.Errorf("%w: occupant %d", domain.ErrInvalidReference, a.OccupantID)
	}
	for _, existing := range s.assignments {
		if existing.BedID == a.BedID && existing.OccupantID == a.OccupantID && existing.Status == domain.AssignmentActive {
			return fmt.Errorf("%w: occupant already on bed", domain.ErrInvalidInput)
		}
	}
	if s.activeCount(a.BedID) >= b.capacity {
		return fmt.Errorf("%w: bed %d", domain.ErrCapacityExceeded, a.BedID)
	}

	s.nextID++
	a.ID = s.nextID
	a.Status = domain.AssignmentActive
	a.StartedAt = time.Now()
	stored := *a
	s.assignments = append(s.assignments, &stored)
	return nil
}

func (s *fakeStore) EndAssignment(_ context.Context, campID, assignmentID int64) (*domain.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}

	for _, a := range s.assignments {
		if a.ID != assignmentID || a.CampID != campID {
			continue
		}
		if a.Status == domain.AssignmentEnded {
			return nil, fmt.Errorf("%w: already ended", domain.ErrInvalidInput)
		}
		now := time.Now()
		a.Status = domain.AssignmentEnded
		a.EndedAt = &now
		ended := *a
		return &ended, nil
	}

	return nil, fmt.Errorf("%w: assignment %d", domain.ErrNotFound, assignmentID)
}

// overCapacity 返回 active 分配数超过容量的床位
func (s *fakeStore) overCapacity() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	over := make([]int64, 0)
	for id, b := range s.beds {
		if s.activeCount(id) > b.capacity {
			over = append(over, id)
		}
	}
	return over
}
