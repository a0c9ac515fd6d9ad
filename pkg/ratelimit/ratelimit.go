// Package ratelimit bounds request throughput during scans.
// Modeled after katana, ffuf, httpx, and gospider rate limiting systems.
//
// A single Limiter enforces a global requests-per-second budget. In
// per-host mode every origin gets its own budget instead, so a strict
// limit against one slow host does not starve probes of the rest.
package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"

	"github.com/httpeek/httpeek/pkg/defaults"
)

// Config holds rate limiting configuration.
type Config struct {
	// RequestsPerSecond limits sustained throughput (0 = unlimited).
	RequestsPerSecond int

	// Burst allows short spikes above the sustained rate. Zero derives
	// a tenth of the rate, minimum 1.
	Burst int

	// PerHost gives each host its own budget instead of one global one.
	PerHost bool
}

// DefaultConfig returns the standard scan limit.
func DefaultConfig() *Config {
	return &Config{
		RequestsPerSecond: defaults.RateLimitHigh,
	}
}

// Limiter provides rate limiting for probe requests.
type Limiter struct {
	config  *Config
	global  *rate.Limiter
	hosts   map[string]*rate.Limiter
	hostsMu sync.RWMutex
}

// New creates a rate limiter with the given configuration. A nil config
// uses DefaultConfig.
func New(cfg *Config) *Limiter {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Limiter{
		config: cfg,
		global: newBucket(cfg),
		hosts:  make(map[string]*rate.Limiter),
	}
}

func newBucket(cfg *Config) *rate.Limiter {
	if cfg.RequestsPerSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = cfg.RequestsPerSecond / 10
		if burst < 1 {
			burst = 1
		}
	}
	return rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
}

// Wait blocks until the global rate limit allows another request.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.WaitForHost(ctx, "")
}

// WaitForHost blocks until the rate limit allows another request for
// the given host. Without per-host mode the host is ignored and the
// global budget applies.
func (l *Limiter) WaitForHost(ctx context.Context, host string) error {
	if l.config.PerHost && host != "" {
		return l.hostBucket(host).Wait(ctx)
	}
	return l.global.Wait(ctx)
}

func (l *Limiter) hostBucket(host string) *rate.Limiter {
	l.hostsMu.RLock()
	b, ok := l.hosts[host]
	l.hostsMu.RUnlock()
	if ok {
		return b
	}

	l.hostsMu.Lock()
	defer l.hostsMu.Unlock()

	// Double-check after acquiring the write lock.
	if b, ok = l.hosts[host]; ok {
		return b
	}
	b = newBucket(l.config)
	l.hosts[host] = b
	return b
}

// Stats returns current rate limiter statistics.
type Stats struct {
	TokensAvailable  float64
	HostLimiterCount int
}

func (l *Limiter) Stats() Stats {
	l.hostsMu.RLock()
	count := len(l.hosts)
	l.hostsMu.RUnlock()

	return Stats{
		TokensAvailable:  l.global.Tokens(),
		HostLimiterCount: count,
	}
}

// ClearHost removes the per-host budget for a specific host, so hosts
// finished early stop occupying memory on long scans.
func (l *Limiter) ClearHost(host string) {
	l.hostsMu.Lock()
	defer l.hostsMu.Unlock()
	delete(l.hosts, host)
}

// ClearAllHosts removes all per-host budgets.
func (l *Limiter) ClearAllHosts() {
	l.hostsMu.Lock()
	defer l.hostsMu.Unlock()
	l.hosts = make(map[string]*rate.Limiter)
}

// NewPerSecond creates a limiter with N requests per second.
func NewPerSecond(rps int) *Limiter {
	return New(&Config{RequestsPerSecond: rps})
}

// NewPerHost creates a per-host limiter with N requests per second each.
func NewPerHost(rps int) *Limiter {
	return New(&Config{RequestsPerSecond: rps, PerHost: true})
}
