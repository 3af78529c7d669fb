// Package metrics exposes Prometheus counters for the daily send.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"daily_fact_bot/internal/app"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

const namespace = "daily_fact"

// Run results, used as the "result" label.
const (
	ResultSent        = "sent"
	ResultAlreadySent = "already_sent"
	ResultEmpty       = "empty_catalog"
	ResultFactMissing = "fact_missing"
	ResultError       = "error"
)

// Recorder collects daily-send metrics on a private registry.
type Recorder struct {
	registry   *prometheus.Registry
	runs       *prometheus.CounterVec
	deliveries *prometheus.CounterVec
	duration   prometheus.Histogram
	cycle      prometheus.Gauge
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Daily send runs by result.",
		}, []string{"result"}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_total",
			Help:      "Delivery attempts by result.",
		}, []string{"result"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of daily send runs.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 4, 8),
		}),
		cycle: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cycle",
			Help:      "Cycle of the most recently selected fact.",
		}),
	}
	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.runs, r.deliveries, r.duration, r.cycle,
	)
	return r
}

// Registry returns the registry the recorder's collectors live on.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveRun records the result of one daily send.
func (r *Recorder) ObserveRun(outcome *app.DailySendOutcome, err error, duration time.Duration) {
	r.duration.Observe(duration.Seconds())
	if err != nil {
		r.runs.WithLabelValues(ResultError).Inc()
		return
	}
	switch {
	case outcome.AlreadySent:
		r.runs.WithLabelValues(ResultAlreadySent).Inc()
	case outcome.FactID == 0:
		r.runs.WithLabelValues(ResultEmpty).Inc()
	case outcome.FactMissing:
		r.runs.WithLabelValues(ResultFactMissing).Inc()
	default:
		r.runs.WithLabelValues(ResultSent).Inc()
	}
	if outcome.Cycle > 0 {
		r.cycle.Set(float64(outcome.Cycle))
	}
	r.deliveries.WithLabelValues("success").Add(float64(outcome.DeliverySuccessCount))
	r.deliveries.WithLabelValues("failure").Add(float64(outcome.DeliveryFailureCount))
}

// Server serves /metrics until Shutdown.
type Server struct {
	httpServer *http.Server
	logger     *logrus.Entry
}

func NewServer(addr string, r *Recorder, logger *logrus.Entry) *Server {
	logger = logger.WithField("component", "metrics")
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{
		ErrorLog:      logger,
		ErrorHandling: promhttp.ContinueOnError,
	}))
	return &Server{
		httpServer: &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second},
		logger:     logger,
	}
}

// Start listens in the background.
func (s *Server) Start() {
	go func() {
		s.logger.WithField("addr", s.httpServer.Addr).Info("Serving metrics")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.WithError(err).Error("Metrics server stopped")
		}
	}()
}

func (s *Server) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.WithError(err).Error("Failed to shut down metrics server")
	}
}
