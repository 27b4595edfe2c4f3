package scheduler

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/campops-dev/camp-manager/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const campID int64 = 1

var campZone = time.FixedZone("CST", 8*60*60)

func at(hour, minute, second int) Clock {
	return fixedClock(time.Date(2026, 7, 1, hour, minute, second, 0, campZone))
}

func lunch(id int64, date string) *domain.MealSitting {
	return &domain.MealSitting{
		ID:              id,
		CampID:          campID,
		Name:            fmt.Sprintf("午餐 %d", id),
		ServiceDate:     date,
		CutoffEnabled:   true,
		CutoffTime:      domain.NewTimeOfDay(12, 0, 0),
		IsBookingActive: true,
	}
}

func TestScheduler_CutoffScenario(t *testing.T) {
	store := newFakeStore(lunch(1, "2026-07-01"))
	s := New(store, at(12, 1, 0), campZone, nil, nil)
	ctx := context.Background()

	probe, err := s.Probe(ctx, campID)
	require.NoError(t, err)
	assert.True(t, probe.HasPendingChanges)
	assert.Equal(t, "2026-07-01", probe.Date)
	assert.Equal(t, "12:01:00", probe.CurrentTime)
	require.Len(t, probe.CutoffCandidates, 1)
	assert.Equal(t, int64(1), probe.CutoffCandidates[0].ID)
	assert.Empty(t, probe.ResetCandidates)

	// 探测不会修改状态
	assert.True(t, store.get(1).IsBookingActive)
	assert.Equal(t, 0, store.updates)

	result, err := s.Reconcile(ctx, campID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Flipped)
	assert.Equal(t, []int64{1}, result.Closed)
	assert.False(t, store.get(1).IsBookingActive)
}

func TestScheduler_ReconcileIsIdempotent(t *testing.T) {
	reset := lunch(2, "2026-06-30")
	reset.CutoffEnabled = false
	reset.ResetEnabled = true
	reset.ResetTime = domain.NewTimeOfDay(6, 0, 0)
	reset.IsBookingActive = false

	store := newFakeStore(lunch(1, "2026-07-01"), reset)
	s := New(store, at(13, 0, 0), campZone, nil, nil)
	ctx := context.Background()

	first, err := s.Reconcile(ctx, campID)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Flipped)
	assert.Equal(t, []int64{1}, first.Closed)
	assert.Equal(t, []int64{2}, first.Reopened)

	second, err := s.Reconcile(ctx, campID)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Flipped)
	assert.Empty(t, second.Closed)
	assert.Empty(t, second.Reopened)

	probe, err := s.Probe(ctx, campID)
	require.NoError(t, err)
	assert.False(t, probe.HasPendingChanges)
}

func TestScheduler_FutureSittingStaysOpen(t *testing.T) {
	store := newFakeStore(lunch(1, "2026-07-02"))
	s := New(store, at(15, 0, 0), campZone, nil, nil)

	result, err := s.Reconcile(context.Background(), campID)

	require.NoError(t, err)
	assert.Equal(t, 0, result.Flipped)
	assert.True(t, store.get(1).IsBookingActive)
}

func TestScheduler_ResetWinsTieBreak(t *testing.T) {
	sitting := lunch(1, "2026-07-01")
	sitting.ResetEnabled = true
	sitting.ResetTime = domain.NewTimeOfDay(18, 0, 0)
	sitting.IsBookingActive = false

	store := newFakeStore(sitting)
	s := New(store, at(19, 0, 0), campZone, nil, nil)
	ctx := context.Background()

	probe, err := s.Probe(ctx, campID)
	require.NoError(t, err)
	assert.Empty(t, probe.CutoffCandidates)
	require.Len(t, probe.ResetCandidates, 1)

	_, err = s.Reconcile(ctx, campID)
	require.NoError(t, err)
	assert.True(t, store.get(1).IsBookingActive)

	// 已经开放的餐次不会因为截止规则再次被关闭
	again, err := s.Reconcile(ctx, campID)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Flipped)
	assert.True(t, store.get(1).IsBookingActive)
}

func TestScheduler_ClosedWithoutResetStaysClosed(t *testing.T) {
	sitting := lunch(1, "2026-06-30")
	sitting.IsBookingActive = false

	store := newFakeStore(sitting)
	s := New(store, at(23, 0, 0), campZone, nil, nil)

	result, err := s.Reconcile(context.Background(), campID)

	require.NoError(t, err)
	assert.Equal(t, 0, result.Flipped)
	assert.False(t, store.get(1).IsBookingActive)
}

func TestScheduler_PerSittingFailureDoesNotBlockOthers(t *testing.T) {
	store := newFakeStore(lunch(1, "2026-07-01"), lunch(2, "2026-07-01"), lunch(3, "2026-07-01"))
	store.failIDs[2] = fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, errBoom)
	s := New(store, at(12, 30, 0), campZone, nil, nil)

	result, err := s.Reconcile(context.Background(), campID)

	require.NoError(t, err)
	assert.Equal(t, 2, result.Flipped)
	assert.Equal(t, []int64{1, 3}, result.Closed)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, int64(2), result.Failures[0].SittingID)
	assert.Contains(t, result.Failures[0].Error, "boom")
	assert.True(t, store.get(2).IsBookingActive)
}

func TestScheduler_ConflictingVersionIsSkipped(t *testing.T) {
	store := newFakeStore(lunch(1, "2026-07-01"))
	store.failIDs[1] = fmt.Errorf("%w: changed", domain.ErrConflictingUpdate)
	s := New(store, at(12, 30, 0), campZone, nil, nil)

	result, err := s.Reconcile(context.Background(), campID)

	require.NoError(t, err)
	assert.Equal(t, 0, result.Flipped)
	assert.Equal(t, []int64{1}, result.Skipped)
	assert.Empty(t, result.Failures)
}

func TestScheduler_ConcurrentReconcilesFlipOnce(t *testing.T) {
	sittings := make([]*domain.MealSitting, 0)
	for id := int64(1); id <= 20; id++ {
		sittings = append(sittings, lunch(id, "2026-07-01"))
	}
	store := newFakeStore(sittings...)
	s := New(store, at(12, 30, 0), campZone, nil, nil)

	var wg sync.WaitGroup
	var mu sync.Mutex
	total := 0
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := s.Reconcile(context.Background(), campID)
			assert.NoError(t, err)
			mu.Lock()
			total += result.Flipped
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, total)
	assert.Equal(t, 20, store.updates)
	for id := int64(1); id <= 20; id++ {
		assert.False(t, store.get(id).IsBookingActive)
	}
}

func TestScheduler_ProbeFailureFailsWholeCall(t *testing.T) {
	store := newFakeStore(lunch(1, "2026-07-01"))
	store.listErr = fmt.Errorf("%w: timeout", domain.ErrStoreUnavailable)
	s := New(store, at(12, 30, 0), campZone, nil, nil)

	_, err := s.Probe(context.Background(), campID)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)

	_, err = s.Reconcile(context.Background(), campID)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestScheduler_UsesCampLocalTime(t *testing.T) {
	store := newFakeStore(lunch(1, "2026-07-01"))
	// UTC 04:30 即营地时间 12:30
	clock := fixedClock(time.Date(2026, 7, 1, 4, 30, 0, 0, time.UTC))
	s := New(store, clock, campZone, nil, nil)

	probe, err := s.Probe(context.Background(), campID)

	require.NoError(t, err)
	assert.Equal(t, "12:30:00", probe.CurrentTime)
	assert.Len(t, probe.CutoffCandidates, 1)
}

func TestScheduler_PublishesEvents(t *testing.T) {
	reset := lunch(2, "2026-06-30")
	reset.CutoffEnabled = false
	reset.ResetEnabled = true
	reset.ResetTime = domain.NewTimeOfDay(6, 0, 0)
	reset.IsBookingActive = false

	store := newFakeStore(lunch(1, "2026-07-01"), reset)
	publisher := &recordingPublisher{err: errBoom}
	s := New(store, at(12, 30, 0), campZone, publisher, nil)

	result, err := s.Reconcile(context.Background(), campID)

	// 事件发送失败不影响翻转结果
	require.NoError(t, err)
	assert.Equal(t, 2, result.Flipped)
	require.Len(t, publisher.events, 2)
	assert.Equal(t, domain.EventBookingClosed, publisher.events[0].Type)
	assert.Equal(t, int64(1), publisher.events[0].SittingID)
	assert.Equal(t, domain.EventBookingReopened, publisher.events[1].Type)
	assert.Equal(t, "2026-06-30", publisher.events[1].ServiceDate)
}

func TestPoller_Tick(t *testing.T) {
	other := lunch(5, "2026-07-01")
	other.CampID = 2

	store := newFakeStore(lunch(1, "2026-07-01"), lunch(2, "2026-07-02"), other)
	s := New(store, at(12, 30, 0), campZone, nil, nil)

	p := NewPoller(s, fakeCamps{ids: []int64{1, 2, 3}}, time.Minute)

	assert.Equal(t, 2, p.Tick(context.Background()))
	assert.False(t, store.get(1).IsBookingActive)
	assert.True(t, store.get(2).IsBookingActive)
	assert.False(t, store.get(5).IsBookingActive)

	assert.Equal(t, 0, p.Tick(context.Background()))
}

func TestPoller_CampListFailure(t *testing.T) {
	store := newFakeStore(lunch(1, "2026-07-01"))
	s := New(store, at(12, 30, 0), campZone, nil, nil)

	p := NewPoller(s, fakeCamps{err: errBoom}, time.Minute)

	assert.Equal(t, 0, p.Tick(context.Background()))
	assert.True(t, store.get(1).IsBookingActive)
}

func TestPoller_RunStopsOnCancel(t *testing.T) {
	store := newFakeStore(lunch(1, "2026-07-01"))
	s := New(store, at(12, 30, 0), campZone, nil, nil)
	p := NewPoller(s, fakeCamps{ids: []int64{campID}}, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return !store.get(1).IsBookingActive }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop")
	}
}
