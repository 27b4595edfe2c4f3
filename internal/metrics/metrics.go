// Package metrics 收集入住、预订窗口翻转以及成员替换的计数
package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry     *prometheus.Registry
	admissions   *prometheus.CounterVec
	flips        *prometheus.CounterVec
	reconciles   *prometheus.CounterVec
	replacements *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		admissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "camp",
			Name:      "bed_admissions_total",
			Help:      "Bed admission attempts by result.",
		}, []string{"result"}),
		flips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "camp",
			Name:      "booking_window_flips_total",
			Help:      "Meal sitting booking flag flips by transition.",
		}, []string{"transition"}),
		reconciles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "camp",
			Name:      "booking_window_reconcile_sittings_total",
			Help:      "Per-sitting reconcile outcomes.",
		}, []string{"outcome"}),
		replacements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "camp",
			Name:      "lesson_staff_replacements_total",
			Help:      "Lesson staff replace-all calls by result.",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.admissions,
		m.flips,
		m.reconciles,
		m.replacements,
	)

	return m
}

// 以下方法允许 nil 接收者，测试中可以不创建 Metrics

func (m *Metrics) Admission(result string) {
	if m == nil {
		return
	}
	m.admissions.WithLabelValues(result).Inc()
}

func (m *Metrics) Flip(transition string) {
	if m == nil {
		return
	}
	m.flips.WithLabelValues(transition).Inc()
}

func (m *Metrics) ReconcileOutcome(outcome string) {
	if m == nil {
		return
	}
	m.reconciles.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Replacement(result string) {
	if m == nil {
		return
	}
	m.replacements.WithLabelValues(result).Inc()
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve 在 ln 上单独提供 /metrics，ctx 结束后关闭
func (m *Metrics) Serve(ctx context.Context, ln net.Listener) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Handler:     mux,
		ReadTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
