package utils

import (
	"fmt"
	"slices"

	"github.com/campops-dev/camp-manager/backend/internal/domain"
)

// NormalizeIDs 校验 ID 均为正数，去重并升序排列
func NormalizeIDs(ids []int64) ([]int64, error) {
	normalized := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			return nil, fmt.Errorf("%w: id %d must be positive", domain.ErrInvalidInput, id)
		}
		normalized = append(normalized, id)
	}

	slices.Sort(normalized)
	return slices.Compact(normalized), nil
}

// DiffIDs 返回 target 中新增的 ID 和 current 中被移除的 ID，结果均为升序
func DiffIDs(current, target []int64) (added, removed []int64) {
	currentSet := make(map[int64]struct{}, len(current))
	for _, id := range current {
		currentSet[id] = struct{}{}
	}
	targetSet := make(map[int64]struct{}, len(target))
	for _, id := range target {
		targetSet[id] = struct{}{}
	}

	added = make([]int64, 0)
	for id := range targetSet {
		if _, ok := currentSet[id]; !ok {
			added = append(added, id)
		}
	}
	removed = make([]int64, 0)
	for id := range currentSet {
		if _, ok := targetSet[id]; !ok {
			removed = append(removed, id)
		}
	}

	slices.Sort(added)
	slices.Sort(removed)
	return added, removed
}

const secondsPerDay = 24 * 60 * 60

// ValidateMealSitting 检查服务日期以及启用的截止/重置时刻是否合法
func ValidateMealSitting(sitting *domain.MealSitting) error {
	if _, err := ParseDate(sitting.ServiceDate); err != nil {
		return err
	}
	if sitting.CutoffEnabled && (sitting.CutoffTime < 0 || sitting.CutoffTime >= secondsPerDay) {
		return fmt.Errorf("%w: cutoff time %d out of range", domain.ErrInvalidInput, sitting.CutoffTime)
	}
	if sitting.ResetEnabled && (sitting.ResetTime < 0 || sitting.ResetTime >= secondsPerDay) {
		return fmt.Errorf("%w: reset time %d out of range", domain.ErrInvalidInput, sitting.ResetTime)
	}
	return nil
}
