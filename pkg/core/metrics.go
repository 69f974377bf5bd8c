package core

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 清理相关的 Prometheus 指标
type Metrics struct {
	scrubs       *prometheus.CounterVec
	steps        *prometheus.CounterVec
	bytesCleared prometheus.Counter
	lastScrub    prometheus.Gauge
	duration     prometheus.Histogram
}

// NewMetrics 在给定 registry 上注册指标
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		scrubs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hog_scrubs_total",
				Help: "Total number of scrub cycles by trigger",
			},
			[]string{"trigger"},
		),
		steps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hog_scrub_targets_total",
				Help: "Total number of processed scrub targets by category and outcome",
			},
			[]string{"category", "outcome"},
		),
		bytesCleared: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "hog_bytes_cleared_total",
				Help: "Total bytes truncated or removed",
			},
		),
		lastScrub: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "hog_last_scrub_timestamp_seconds",
				Help: "Unix time of the last finished scrub",
			},
		),
		duration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "hog_scrub_duration_seconds",
				Help:    "Duration of scrub cycles",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
			},
		),
	}
}

// Observe 记录一次清理结果，nil 时忽略
func (m *Metrics) Observe(report Report) {
	if m == nil {
		return
	}
	m.scrubs.WithLabelValues(string(report.Trigger)).Inc()
	for _, step := range report.Steps {
		m.steps.WithLabelValues(string(step.Category), string(step.Outcome)).Inc()
	}
	m.bytesCleared.Add(float64(report.BytesCleared()))
	m.lastScrub.Set(float64(report.Started.Add(report.Duration).Unix()))
	m.duration.Observe(report.Duration.Seconds())
}

// ServeMetrics 在 addr 上提供 /metrics，ctx 结束时关闭
func ServeMetrics(ctx context.Context, addr string, gatherer prometheus.Gatherer, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server stopped", slog.String("addr", addr), slog.Any("error", err))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics endpoint enabled", slog.String("addr", addr))
	return srv
}
