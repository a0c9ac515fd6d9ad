// Package hosterrors provides a thread-safe cache of hosts that keep
// failing, so long scans stop burning retries on targets that are down.
// Inspired by projectdiscovery/httpx and projectdiscovery/nuclei.
//
// Usage:
//
//	if hosterrors.Check("example.com") {
//	    // Skip this host, it's known to be unreachable
//	    return
//	}
//	// ... probe exhausts its retries ...
//	hosterrors.MarkError("example.com")
package hosterrors

import (
	"net"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/httpeek/httpeek/pkg/duration"
)

// DefaultMaxErrors is how many exhausted probes a host gets before it
// is skipped. Each probe already carries its own retry budget, so three
// exhausted probes mean the host is genuinely down.
const DefaultMaxErrors = 3

// DefaultExpiry is how long a failed host stays on the skip list.
var DefaultExpiry = duration.FlakyHostExpiry

// hostState tracks the error count and expiration for one host.
type hostState struct {
	mu        sync.Mutex
	count     int
	markedAt  time.Time
	permanent bool
}

// Cache stores hosts that have exceeded the failure threshold.
type Cache struct {
	hosts     sync.Map // map[string]*hostState
	maxErrors int
	expiry    time.Duration
	hits      atomic.Int64
	misses    atomic.Int64
}

var defaultCache = NewCache(DefaultMaxErrors, DefaultExpiry)

// NewCache creates a host error cache with custom settings.
func NewCache(maxErrors int, expiry time.Duration) *Cache {
	return &Cache{maxErrors: maxErrors, expiry: expiry}
}

// MarkError records a failed probe for a host. Returns true once the
// host has reached the failure threshold.
func (c *Cache) MarkError(host string) bool {
	host = normalizeHost(host)
	if host == "" {
		return false
	}

	v, _ := c.hosts.LoadOrStore(host, &hostState{})
	state := v.(*hostState)

	state.mu.Lock()
	defer state.mu.Unlock()

	if !state.permanent && !state.markedAt.IsZero() && time.Since(state.markedAt) > c.expiry {
		state.count = 0
		state.markedAt = time.Time{}
	}

	state.count++
	if state.count >= c.maxErrors {
		if state.markedAt.IsZero() {
			state.markedAt = time.Now()
		}
		return true
	}
	return false
}

// MarkPermanent marks a host as failed without expiry. Use for DNS
// failures and other conditions that will not heal mid-scan.
func (c *Cache) MarkPermanent(host string) {
	host = normalizeHost(host)
	if host == "" {
		return
	}

	v, _ := c.hosts.LoadOrStore(host, &hostState{})
	state := v.(*hostState)

	state.mu.Lock()
	state.count = c.maxErrors
	state.markedAt = time.Now()
	state.permanent = true
	state.mu.Unlock()
}

// Check reports whether the host should be skipped.
func (c *Cache) Check(host string) bool {
	host = normalizeHost(host)
	if host == "" {
		return false
	}

	v, ok := c.hosts.Load(host)
	if !ok {
		c.misses.Add(1)
		return false
	}
	state := v.(*hostState)

	state.mu.Lock()
	defer state.mu.Unlock()

	if state.count < c.maxErrors {
		c.misses.Add(1)
		return false
	}
	if !state.permanent && time.Since(state.markedAt) > c.expiry {
		state.count = 0
		state.markedAt = time.Time{}
		c.misses.Add(1)
		return false
	}

	c.hits.Add(1)
	return true
}

// Clear removes a specific host from the cache.
func (c *Cache) Clear(host string) {
	if host = normalizeHost(host); host != "" {
		c.hosts.Delete(host)
	}
}

// ClearAll removes all hosts from the cache.
func (c *Cache) ClearAll() {
	c.hosts.Range(func(key, _ any) bool {
		c.hosts.Delete(key)
		return true
	})
	c.hits.Store(0)
	c.misses.Store(0)
}

// Size returns the number of hosts in the cache.
func (c *Cache) Size() int {
	n := 0
	c.hosts.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Stats returns cache hit/miss counts.
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Package-level functions using the default cache.

func MarkError(host string) bool { return defaultCache.MarkError(host) }
func MarkPermanent(host string)  { defaultCache.MarkPermanent(host) }
func Check(host string) bool     { return defaultCache.Check(host) }
func Clear(host string)          { defaultCache.Clear(host) }
func ClearAll()                  { defaultCache.ClearAll() }
func Size() int                  { return defaultCache.Size() }
func Stats() (int64, int64)      { return defaultCache.Stats() }

// normalizeHost extracts the bare lowercased host from a URL, host, or
// host:port string.
func normalizeHost(input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return ""
	}
	if strings.Contains(input, "://") {
		if u, err := url.Parse(input); err == nil && u.Host != "" {
			input = u.Host
		}
	}
	host, _, err := net.SplitHostPort(input)
	if err != nil {
		host = input
	}
	return strings.ToLower(strings.Trim(host, "[]"))
}
