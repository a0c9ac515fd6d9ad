// Package hooks streams scan telemetry to external systems. Hooks
// implement the output.Writer interface so they fan in with the file
// writers, plus Start and Finish lifecycle calls for run-level data.
package hooks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/httpeek/httpeek/pkg/defaults"
	"github.com/httpeek/httpeek/pkg/duration"
	"github.com/httpeek/httpeek/pkg/output"
	"github.com/httpeek/httpeek/pkg/probe"
)

// Compile-time interface check.
var _ output.Writer = (*OTelHook)(nil)

// OTelHook exports scan telemetry to an OpenTelemetry collector.
// It opens one span per scan and records every probe as a span event
// with URL, status, and outcome attributes.
type OTelHook struct {
	opts           OTelOptions
	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer

	// Active span tracking
	mu       sync.Mutex
	rootSpan trace.Span
	rootCtx  context.Context
	closed   bool

	// Scan metadata for attributes
	scanID    string
	startTime time.Time
}

// OTelOptions configures the OpenTelemetry hook behavior.
type OTelOptions struct {
	// Endpoint is the OTLP endpoint (e.g., "localhost:4317").
	Endpoint string

	// ServiceName is the service name for traces (default: "httpeek").
	ServiceName string

	// Insecure uses insecure connection (no TLS).
	Insecure bool

	// Headers contains additional headers for the OTLP exporter.
	Headers map[string]string

	// ShutdownTimeout is the timeout for graceful shutdown (default: 5s).
	ShutdownTimeout time.Duration

	// ConnectionTimeout is the timeout for establishing connection (default: 10s).
	ConnectionTimeout time.Duration
}

// NewOTelHook creates an OpenTelemetry hook exporting to the configured
// endpoint. The exporter connects immediately but handles connection
// failures gracefully without blocking probes.
func NewOTelHook(opts OTelOptions) (*OTelHook, error) {
	if opts.ServiceName == "" {
		opts.ServiceName = defaults.ToolName
	}
	if opts.Endpoint == "" {
		opts.Endpoint = "localhost:4317"
	}
	if opts.ShutdownTimeout == 0 {
		opts.ShutdownTimeout = duration.ExporterShutdown
	}
	if opts.ConnectionTimeout == 0 {
		opts.ConnectionTimeout = duration.ExporterConnect
	}

	grpcOpts := []grpc.DialOption{}
	if opts.Insecure {
		grpcOpts = append(grpcOpts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}

	exporterOpts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(opts.Endpoint),
		otlptracegrpc.WithDialOption(grpcOpts...),
	}

	if opts.Insecure {
		exporterOpts = append(exporterOpts, otlptracegrpc.WithInsecure())
	}

	if len(opts.Headers) > 0 {
		exporterOpts = append(exporterOpts, otlptracegrpc.WithHeaders(opts.Headers))
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectionTimeout)
	defer cancel()

	exporter, err := otlptracegrpc.New(ctx, exporterOpts...)
	if err != nil {
		return nil, err
	}

	// Avoid merging with resource.Default to prevent schema conflicts.
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(opts.ServiceName),
		semconv.ServiceVersion(defaults.Version),
		attribute.String("service.component", "prober"),
	)

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	otel.SetTracerProvider(tracerProvider)

	hook := &OTelHook{
		opts:           opts,
		tracerProvider: tracerProvider,
		tracer:         tracerProvider.Tracer("httpeek/scan"),
		startTime:      time.Now(),
	}

	return hook, nil
}

// Start opens the root span for the scan. Call it once before the
// first probe completes.
func (h *OTelHook) Start(ctx context.Context, scanID string, totalTargets int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed || h.rootSpan != nil {
		return
	}

	h.scanID = scanID
	h.startTime = time.Now()

	spanCtx, span := h.tracer.Start(ctx, "httpeek.scan",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("scan_id", scanID),
			attribute.Int("total_targets", totalTargets),
		),
	)

	h.rootSpan = span
	h.rootCtx = spanCtx

	span.AddEvent("scan_started", trace.WithAttributes(
		attribute.Int("total_targets", totalTargets),
	))
}

// WriteResult records a probe as a span event with detailed attributes.
func (h *OTelHook) WriteResult(res *probe.Result) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed || h.rootSpan == nil {
		return nil
	}
	if res.Outcome == probe.OutcomeFilteredOut {
		return nil
	}

	eventName := "probe_result"
	if !res.Responded() {
		eventName = "probe_failed"
	}

	attrs := []attribute.KeyValue{
		attribute.String("scan_id", h.scanID),
		attribute.String("url", res.URL),
		attribute.String("ip", res.IP),
		attribute.Int("status_code", res.FinalStatus),
		attribute.String("outcome", string(res.Outcome)),
		attribute.Int("attempts", res.AttemptsUsed),
		attribute.Int64("duration_ms", res.DurationMS),
	}
	if res.Cloudflare != nil {
		attrs = append(attrs, attribute.Bool("cloudflare", res.Cloudflare.Likely))
	}
	if res.Redirect != nil {
		attrs = append(attrs, attribute.Int("redirect_hops", res.Redirect.HopCount))
	}
	if res.Err != "" {
		attrs = append(attrs, attribute.String("error", res.Err))
	}

	h.rootSpan.AddEvent(eventName, trace.WithAttributes(attrs...))
	return nil
}

// Finish records run totals on the root span and ends it. Call it
// after the scan completes, before Close.
func (h *OTelHook) Finish(total, succeeded, filtered, unreachable, errored int64, elapsed time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rootSpan == nil {
		return
	}

	rps := 0.0
	if sec := elapsed.Seconds(); sec > 0 {
		rps = float64(total) / sec
	}

	h.rootSpan.SetAttributes(
		attribute.Int64("totals.targets", total),
		attribute.Int64("totals.succeeded", succeeded),
		attribute.Int64("totals.filtered", filtered),
		attribute.Int64("totals.unreachable", unreachable),
		attribute.Int64("totals.errored", errored),
		attribute.Float64("timing.duration_sec", elapsed.Seconds()),
		attribute.Float64("timing.requests_per_sec", rps),
	)

	h.rootSpan.AddEvent("scan_summary", trace.WithAttributes(
		attribute.Int64("targets", total),
		attribute.Int64("succeeded", succeeded),
		attribute.Int64("unreachable", unreachable),
		attribute.Int64("errored", errored),
		attribute.Float64("duration_sec", elapsed.Seconds()),
	))

	if errored > 0 || unreachable > 0 {
		h.rootSpan.SetStatus(codes.Error, fmt.Sprintf("%d targets failed", errored+unreachable))
	} else {
		h.rootSpan.SetStatus(codes.Ok, "scan completed")
	}

	h.rootSpan.End()
	h.rootSpan = nil
}

// Flush forces export of any batched spans.
func (h *OTelHook) Flush() error {
	ctx, cancel := context.WithTimeout(context.Background(), h.opts.ShutdownTimeout)
	defer cancel()
	return h.tracerProvider.ForceFlush(ctx)
}

// Close shuts down the tracer provider and flushes pending telemetry.
func (h *OTelHook) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true

	if h.rootSpan != nil {
		h.rootSpan.End()
		h.rootSpan = nil
	}

	if h.tracerProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), h.opts.ShutdownTimeout)
		defer cancel()

		if err := h.tracerProvider.Shutdown(ctx); err != nil {
			return fmt.Errorf("otel: shutdown tracer provider: %w", err)
		}
	}

	return nil
}

// Endpoint returns the OTLP endpoint being used.
// Useful for testing and logging.
func (h *OTelHook) Endpoint() string {
	return h.opts.Endpoint
}

// ServiceName returns the service name being used.
func (h *OTelHook) ServiceName() string {
	return h.opts.ServiceName
}
