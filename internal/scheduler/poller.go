package scheduler

import (
	"context"
	"log/slog"
	"time"
)

type CampLister interface {
	ListCampIDs(ctx context.Context) ([]int64, error)
}

// Poller 定期探测每个营地，只有存在待处理变化时才执行 Reconcile
type Poller struct {
	scheduler *Scheduler
	camps     CampLister
	interval  time.Duration
}

func NewPoller(s *Scheduler, camps CampLister, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = time.Minute
	}

	return &Poller{
		scheduler: s,
		camps:     camps,
		interval:  interval,
	}
}

// Run 阻塞直到 ctx 被取消
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Tick(ctx)
		}
	}
}

// Tick 执行一轮探测，返回本轮翻转的餐次数量
func (p *Poller) Tick(ctx context.Context) int {
	campIDs, err := p.camps.ListCampIDs(ctx)
	if err != nil {
		slog.Error("获取营地列表失败", "error", err)
		return 0
	}

	flipped := 0
	for _, campID := range campIDs {
		probe, err := p.scheduler.Probe(ctx, campID)
		if err != nil {
			slog.Error("探测预订窗口失败", "camp", campID, "error", err)
			continue
		}
		if !probe.HasPendingChanges {
			continue
		}

		result, err := p.scheduler.Reconcile(ctx, campID)
		if err != nil {
			slog.Error("同步预订窗口失败", "camp", campID, "error", err)
			continue
		}
		flipped += result.Flipped
		slog.Info("预订窗口已同步", "camp", campID, "closed", len(result.Closed), "reopened", len(result.Reopened), "skipped", len(result.Skipped), "failed", len(result.Failures))
	}

	return flipped
}
