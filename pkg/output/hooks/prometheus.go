package hooks

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/httpeek/httpeek/pkg/duration"
	"github.com/httpeek/httpeek/pkg/output"
	"github.com/httpeek/httpeek/pkg/probe"
)

// Compile-time interface check.
var _ output.Writer = (*PrometheusHook)(nil)

// PrometheusHook exposes scan metrics for Prometheus scraping.
// It starts an HTTP server that serves metrics at the configured path.
// Metrics cover probe counts by outcome, status-class distribution,
// Cloudflare detections, and response time histograms.
type PrometheusHook struct {
	server   *http.Server
	registry *prometheus.Registry
	opts     PrometheusOptions

	// Counters
	probesTotal     *prometheus.CounterVec
	statusTotal     *prometheus.CounterVec
	cloudflareTotal *prometheus.CounterVec
	retriesTotal    *prometheus.CounterVec

	// Gauges
	scanDurationSeconds prometheus.Gauge
	targetsTotal        prometheus.Gauge

	// Histograms
	responseTimeSeconds *prometheus.HistogramVec

	// Internal tracking
	startTime time.Time
	mu        sync.Mutex
	closed    bool
}

// PrometheusOptions configures the Prometheus hook behavior.
type PrometheusOptions struct {
	// Port for the metrics server (default: 9090).
	Port int

	// Path for the metrics endpoint (default: "/metrics").
	Path string

	// ReadTimeout for the HTTP server (default: 5s).
	ReadTimeout time.Duration

	// WriteTimeout for the HTTP server (default: 10s).
	WriteTimeout time.Duration
}

// NewPrometheusHook creates a Prometheus hook exposing metrics at the
// configured endpoint. The metrics server starts immediately and runs
// until Close is called.
func NewPrometheusHook(opts PrometheusOptions) (*PrometheusHook, error) {
	if opts.Port == 0 {
		opts.Port = 9090
	}
	if opts.Path == "" {
		opts.Path = "/metrics"
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = duration.ExporterShutdown
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = duration.ExporterConnect
	}

	// Custom registry keeps the default global clean.
	registry := prometheus.NewRegistry()

	hook := &PrometheusHook{
		registry:  registry,
		opts:      opts,
		startTime: time.Now(),
	}

	if err := hook.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	if err := hook.startServer(); err != nil {
		return nil, fmt.Errorf("failed to start metrics server: %w", err)
	}

	return hook, nil
}

// initMetrics creates and registers all Prometheus metrics.
func (h *PrometheusHook) initMetrics() error {
	h.probesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpeek_probes_total",
			Help: "Total number of probes completed",
		},
		[]string{"host", "outcome"},
	)

	h.statusTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpeek_status_total",
			Help: "Final HTTP status codes by class",
		},
		[]string{"host", "class"},
	)

	h.cloudflareTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpeek_cloudflare_detected_total",
			Help: "Targets where the Cloudflare heuristic fired",
		},
		[]string{"host"},
	)

	h.retriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpeek_retries_total",
			Help: "Extra request attempts beyond the first",
		},
		[]string{"host"},
	)

	h.scanDurationSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "httpeek_scan_duration_seconds",
			Help: "Total scan duration in seconds",
		},
	)

	h.targetsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "httpeek_targets_total",
			Help: "Total number of targets submitted to the scan",
		},
	)

	h.responseTimeSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "httpeek_response_time_seconds",
			Help:    "Probe time distribution in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		},
		[]string{"host", "outcome"},
	)

	collectors := []prometheus.Collector{
		h.probesTotal,
		h.statusTotal,
		h.cloudflareTotal,
		h.retriesTotal,
		h.scanDurationSeconds,
		h.targetsTotal,
		h.responseTimeSeconds,
	}

	for _, c := range collectors {
		if err := h.registry.Register(c); err != nil {
			return err
		}
	}

	return nil
}

// startServer starts the HTTP server for metrics.
func (h *PrometheusHook) startServer() error {
	mux := http.NewServeMux()
	mux.Handle(h.opts.Path, promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))

	h.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", h.opts.Port),
		Handler:      mux,
		ReadTimeout:  h.opts.ReadTimeout,
		WriteTimeout: h.opts.WriteTimeout,
	}

	go func() {
		if err := h.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("prometheus: metrics server error",
				slog.String("error", err.Error()))
		}
	}()

	return nil
}

// WriteResult updates metrics from one probe result.
func (h *PrometheusHook) WriteResult(res *probe.Result) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	if res.Outcome == probe.OutcomeFilteredOut {
		return nil
	}

	host := extractHost(res.URL)
	outcome := string(res.Outcome)

	h.probesTotal.WithLabelValues(host, outcome).Inc()

	if res.Responded() && res.FinalStatus >= 100 && res.FinalStatus < 600 {
		class := fmt.Sprintf("%dxx", res.FinalStatus/100)
		h.statusTotal.WithLabelValues(host, class).Inc()
	}

	if res.Cloudflare != nil && res.Cloudflare.Likely {
		h.cloudflareTotal.WithLabelValues(host).Inc()
	}

	if res.AttemptsUsed > 1 {
		h.retriesTotal.WithLabelValues(host).Add(float64(res.AttemptsUsed - 1))
	}

	if res.DurationMS > 0 {
		h.responseTimeSeconds.WithLabelValues(host, outcome).Observe(float64(res.DurationMS) / 1000.0)
	}

	return nil
}

// Finish records run totals. Call it after the scan completes.
func (h *PrometheusHook) Finish(total int64, elapsed time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.targetsTotal.Set(float64(total))
	h.scanDurationSeconds.Set(elapsed.Seconds())
}

// Flush is a no-op; Prometheus pulls metrics on scrape.
func (h *PrometheusHook) Flush() error {
	return nil
}

// Close shuts down the metrics server and releases resources.
func (h *PrometheusHook) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true

	if h.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), duration.ExporterShutdown)
		defer cancel()
		return h.server.Shutdown(ctx)
	}

	return nil
}

// MetricsAddr returns the address where metrics are served.
// Useful for testing and logging.
func (h *PrometheusHook) MetricsAddr() string {
	return fmt.Sprintf("http://localhost:%d%s", h.opts.Port, h.opts.Path)
}

// extractHost extracts the host from a URL for use as a metric label.
// Returns "unknown" if the URL is empty or malformed.
func extractHost(rawURL string) string {
	if rawURL == "" {
		return "unknown"
	}

	start := 0
	if idx := strings.Index(rawURL, "://"); idx >= 0 {
		start = idx + 3
	}

	end := len(rawURL)
	for i := start; i < len(rawURL); i++ {
		if rawURL[i] == '/' || rawURL[i] == '?' || rawURL[i] == '#' {
			end = i
			break
		}
	}

	host := rawURL[start:end]
	if host == "" {
		return "unknown"
	}
	return host
}
