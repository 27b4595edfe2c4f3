// Package availability 根据实时的 active 分配计算床位占用，并负责入住的准入检查。
//
// 占用数每次调用都重新统计，不存在缓存的计数列。
package availability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/campops-dev/camp-manager/backend/internal/domain"
	"github.com/campops-dev/camp-manager/backend/internal/metrics"
	"github.com/campops-dev/camp-manager/backend/internal/utils"
)

type Store interface {
	ListBedOccupancy(ctx context.Context, campID int64, filter domain.BedFilter) ([]*domain.BedOccupancy, error)
	// AdmitOccupant 必须在同一个事务内重新检查容量后再插入
	AdmitOccupant(ctx context.Context, a *domain.Assignment) error
	EndAssignment(ctx context.Context, campID, assignmentID int64) (*domain.Assignment, error)
}

type Calculator struct {
	store   Store
	metrics *metrics.Metrics
}

func New(store Store, m *metrics.Metrics) *Calculator {
	return &Calculator{
		store:   store,
		metrics: m,
	}
}

// Occupancy 返回筛选范围内所有启用床位的占用情况，包括已满的床位
func (c *Calculator) Occupancy(ctx context.Context, campID int64, filter domain.BedFilter) ([]domain.BedAvailability, error) {
	if filter.BedIDs != nil {
		ids, err := utils.NormalizeIDs(filter.BedIDs)
		if err != nil {
			return nil, err
		}
		filter.BedIDs = ids
	}

	beds, err := c.store.ListBedOccupancy(ctx, campID, filter)
	if err != nil {
		return nil, err
	}

	result := make([]domain.BedAvailability, 0, len(beds))
	for _, bed := range beds {
		result = append(result, project(bed))
	}

	return result, nil
}

// Available 只返回还能安排新住客的床位
func (c *Calculator) Available(ctx context.Context, campID int64, filter domain.BedFilter) ([]domain.BedAvailability, error) {
	beds, err := c.Occupancy(ctx, campID, filter)
	if err != nil {
		return nil, err
	}

	available := make([]domain.BedAvailability, 0, len(beds))
	for _, bed := range beds {
		if bed.IsAvailable {
			available = append(available, bed)
		}
	}

	return available, nil
}

// Admit 为住客创建一条 active 分配，容量检查由存储层在插入的同一事务内完成
func (c *Calculator) Admit(ctx context.Context, campID, bedID, occupantID int64) (*domain.Assignment, error) {
	if bedID <= 0 || occupantID <= 0 {
		return nil, fmt.Errorf("%w: bed and occupant ids must be positive", domain.ErrInvalidInput)
	}

	a := &domain.Assignment{
		CampID:     campID,
		BedID:      bedID,
		OccupantID: occupantID,
	}
	if err := c.store.AdmitOccupant(ctx, a); err != nil {
		if errors.Is(err, domain.ErrCapacityExceeded) {
			// 床位已满是预期内的结果，不作为错误记录
			slog.Info("床位已满，拒绝入住", "camp", campID, "bed", bedID, "occupant", occupantID)
			c.metrics.Admission("capacity_exceeded")
			return nil, err
		}
		c.metrics.Admission("rejected")
		return nil, err
	}

	c.metrics.Admission("admitted")
	return a, nil
}

func (c *Calculator) Vacate(ctx context.Context, campID, assignmentID int64) (*domain.Assignment, error) {
	if assignmentID <= 0 {
		return nil, fmt.Errorf("%w: assignment id must be positive", domain.ErrInvalidInput)
	}

	return c.store.EndAssignment(ctx, campID, assignmentID)
}

func project(bed *domain.BedOccupancy) domain.BedAvailability {
	spots := bed.Capacity - bed.Occupancy
	if spots < 0 {
		spots = 0
	}

	return domain.BedAvailability{
		BedID:          bed.BedID,
		BedLabel:       bed.BedLabel,
		RoomID:         bed.RoomID,
		RoomName:       bed.RoomName,
		Capacity:       bed.Capacity,
		Occupancy:      bed.Occupancy,
		AvailableSpots: spots,
		IsAvailable:    bed.Occupancy < bed.Capacity,
	}
}
