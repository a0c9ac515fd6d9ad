// Package defaults provides canonical default values for the entire codebase.
// This is the SINGLE SOURCE OF TRUTH for all runtime configuration defaults.
//
// Usage:
//
//	config.Concurrency = defaults.Concurrency
//	config.MaxRetries = defaults.Retries
//	req.Header.Set("Accept", defaults.AcceptHTML)
//
// DO NOT use hardcoded values like `Concurrency: 50` anywhere.
// Instead, reference the appropriate constant from this package.
package defaults

import "fmt"

// Version is the current httpeek version
const Version = "1.0.1"

// ToolName is the canonical tool name used in user agents and telemetry
const ToolName = "httpeek"

// ============================================================================
// CONCURRENCY SETTINGS
// ============================================================================
//
// Use these for the scan worker pool and parallel operations.
// ============================================================================

const (
	// ConcurrencyMinimal is for single-threaded operation (1)
	ConcurrencyMinimal = 1

	// ConcurrencyLow is for polite scanning (10)
	ConcurrencyLow = 10

	// Concurrency is the standard worker count (50)
	Concurrency = 50

	// ConcurrencyMax is the permitted ceiling for the worker pool (200)
	ConcurrencyMax = 200
)

// ============================================================================
// RETRY SETTINGS
// ============================================================================

const (
	// RetryNone disables retries (0)
	RetryNone = 0

	// Retries is the standard retry count for transient failures (3)
	Retries = 3

	// RetryMax is the maximum retry count (10)
	RetryMax = 10
)

// ============================================================================
// REDIRECT SETTINGS
// ============================================================================

const (
	// MaxRedirects is the redirect hop ceiling; chains that reach it are
	// truncated, not failed
	MaxRedirects = 10
)

// ============================================================================
// BUFFER SIZES
// ============================================================================
//
// Use these for byte buffers, body snippets, and I/O operations.
// ============================================================================

const (
	// BufferTiny is for small reads (1KB)
	BufferTiny = 1 * 1024

	// BufferSmall is for header-sized reads (8KB)
	BufferSmall = 8 * 1024

	// BufferSnippet is the body snippet kept per attempt (4KB)
	BufferSnippet = 4 * 1024

	// BufferMedium is for typical HTML documents (100KB)
	BufferMedium = 100 * 1024

	// BufferLarge is the standard response body cap (1MB)
	BufferLarge = 1024 * 1024

	// BufferMax is the absolute response body cap (10MB)
	BufferMax = 10 * 1024 * 1024
)

// ============================================================================
// CHANNEL SIZES
// ============================================================================

const (
	// ChannelTiny is for small buffers (10)
	ChannelTiny = 10

	// ChannelSmall is for typical buffers (100)
	ChannelSmall = 100

	// ChannelMedium is for high-throughput buffers (1000)
	ChannelMedium = 1000
)

// ============================================================================
// HTTP HEADERS
// ============================================================================
//
// Browser-shaped request headers. Servers treat bare clients differently;
// these keep responses representative of what a browser would see.
// ============================================================================

const (
	// AcceptHTML is the standard browser Accept header
	AcceptHTML = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"

	// AcceptLanguage is the standard Accept-Language header
	AcceptLanguage = "en-US,en;q=0.9"

	// AcceptEncoding is the standard Accept-Encoding header
	AcceptEncoding = "gzip, deflate, br"

	// CacheControl disables intermediary caching for probes
	CacheControl = "no-cache"
)

// ============================================================================
// USER AGENTS
// ============================================================================
//
// Use UserAgent() for the tool identity string.
// Use the constants for specific browser emulation.
// ============================================================================

const (
	// UAChrome is a Chrome user agent
	UAChrome = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

	// UAChromeWindows is a Windows Chrome user agent
	UAChromeWindows = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0 Safari/537.36"

	// UASafari is a Safari user agent
	UASafari = "Mozilla/5.0 (Macintosh; Intel Mac OS X 13_5) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.5 Safari/605.1.15"

	// UAMinimal is the bare tool user agent
	UAMinimal = ToolName + "/" + Version
)

// UserAgent returns the httpeek user agent with context
func UserAgent(context string) string {
	if context == "" {
		return UAMinimal
	}
	return fmt.Sprintf("%s/%s (%s)", ToolName, Version, context)
}

// ============================================================================
// DNS / SCHEME PROBING
// ============================================================================

const (
	// DNSFailMarker is the IP column value when resolution fails
	DNSFailMarker = "DNS_FAIL"

	// PortHTTP is the default cleartext port
	PortHTTP = 80

	// PortHTTPS is the default TLS port
	PortHTTPS = 443
)

// ============================================================================
// CLOUDFLARE DETECTION
// ============================================================================

// ChallengeTitles returns the known Cloudflare challenge page titles.
// The list is a closed allow-list; matching is exact, no inference.
func ChallengeTitles() []string {
	return []string{
		"Just a moment...",
		"Attention Required! | Cloudflare",
	}
}

// ============================================================================
// RATE LIMITING
// ============================================================================

const (
	// RateLimitNone disables rate limiting (0)
	RateLimitNone = 0

	// RateLimitLow is conservative rate limiting (10 req/s)
	RateLimitLow = 10

	// RateLimitMedium is moderate rate limiting (50 req/s)
	RateLimitMedium = 50

	// RateLimitHigh is aggressive rate limiting (150 req/s)
	RateLimitHigh = 150
)

// ============================================================================
// THRESHOLDS
// ============================================================================

const (
	// MaxURLLength is the maximum accepted target URL length
	MaxURLLength = 8192

	// TitleMaxRunes caps extracted page titles
	TitleMaxRunes = 100
)

// ============================================================================
// FILTERING
// ============================================================================

const (
	// StatusMatchAll is the match-status value that accepts every response.
	// Compared case-insensitively.
	StatusMatchAll = "All"
)
