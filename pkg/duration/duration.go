// Package duration provides canonical time constants for the entire codebase.
// This is the SINGLE SOURCE OF TRUTH for all time-based configuration.
//
// Usage:
//
//	ctx, cancel := context.WithTimeout(ctx, duration.ContextShort)
//	client := httpclient.New(&httpclient.Config{Timeout: duration.HTTPProbe})
//
// DO NOT use hardcoded time.Duration values like `10 * time.Second` anywhere.
// Instead, reference the appropriate constant from this package.
package duration

import "time"

// ============================================================================
// HTTP CLIENT TIMEOUTS
// ============================================================================

const (
	// HTTPQuick is for liveness pings and scheme sniffing (2s)
	HTTPQuick = 2 * time.Second

	// HTTPProbe is the standard per-attempt probe timeout (10s) - the default
	HTTPProbe = 10 * time.Second

	// HTTPPatient is for targets known to respond slowly (30s)
	HTTPPatient = 30 * time.Second
)

// ============================================================================
// CONTEXT/OPERATION TIMEOUTS
// ============================================================================
//
// Use these for context.WithTimeout() calls to bound operation duration.
// ============================================================================

const (
	// ContextShort is for quick operations (30s)
	ContextShort = 30 * time.Second

	// ContextMedium is for standard operations (5min)
	ContextMedium = 5 * time.Minute

	// ContextMax is for a full batch over a large target list (30min)
	ContextMax = 30 * time.Minute
)

// ============================================================================
// RETRY/BACKOFF INTERVALS
// ============================================================================

const (
	// RetryInitial is the first backoff step between attempts (500ms)
	RetryInitial = 500 * time.Millisecond

	// RetryCeiling caps exponential backoff growth (10s)
	RetryCeiling = 10 * time.Second

	// DrainGrace is how long batch shutdown waits past the probe timeout
	// for in-flight workers to finish (2s)
	DrainGrace = 2 * time.Second
)

// ============================================================================
// UI/STREAMING INTERVALS
// ============================================================================

const (
	// StreamFast is for real-time progress updates (1s)
	StreamFast = 1 * time.Second

	// StreamStd is for normal progress reporting (3s)
	StreamStd = 3 * time.Second
)

// ============================================================================
// NETWORK/TRANSPORT
// ============================================================================
//
// Use these for low-level network configuration.
// ============================================================================

const (
	// DialTimeout is for establishing TCP connections (10s)
	DialTimeout = 10 * time.Second

	// SchemeProbeDial bounds the TCP dial used to sniff https vs http
	// for schemeless targets (2s)
	SchemeProbeDial = 2 * time.Second

	// KeepAlive is for TCP keep-alive interval (30s)
	KeepAlive = 30 * time.Second

	// IdleConnTimeout is for idle connection pool timeout (90s)
	IdleConnTimeout = 90 * time.Second

	// TLSHandshake is for TLS handshake timeout (10s)
	TLSHandshake = 10 * time.Second

	// DNSTimeout is for DNS resolution timeout (3s)
	DNSTimeout = 3 * time.Second
)

// ============================================================================
// CACHE TTLs
// ============================================================================

const (
	// DNSCacheTTL is how long successful lookups stay cached (5min)
	DNSCacheTTL = 5 * time.Minute

	// DNSCacheNegativeTTL is how long failed lookups stay cached (30s)
	DNSCacheNegativeTTL = 30 * time.Second

	// FlakyHostExpiry is how long a host stays on the skip list after
	// repeated failures (5min)
	FlakyHostExpiry = 5 * time.Minute
)

// ============================================================================
// TELEMETRY
// ============================================================================

const (
	// ExporterConnect bounds establishing the OTLP exporter connection (10s)
	ExporterConnect = 10 * time.Second

	// ExporterShutdown bounds graceful telemetry shutdown (5s)
	ExporterShutdown = 5 * time.Second
)
