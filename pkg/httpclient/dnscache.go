// DNS caching for high-throughput probing. A batch routinely carries many
// paths under the same handful of hosts; one resolution per host is enough.
package httpclient

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/httpeek/httpeek/pkg/duration"
	"github.com/httpeek/httpeek/pkg/sockopt"
)

// DNSCache provides thread-safe caching of DNS lookups.
type DNSCache struct {
	cache sync.Map // map[string]*cacheEntry

	resolver *net.Resolver

	ttl         time.Duration
	negativeTTL time.Duration

	stopEviction chan struct{}
}

// cacheEntry holds cached DNS results
type cacheEntry struct {
	ips       []net.IP
	err       error
	expiresAt time.Time
	mu        sync.RWMutex
}

var (
	defaultDNSCache *DNSCache
	dnsCacheOnce    sync.Once
)

// GetDNSCache returns the shared DNS cache instance
func GetDNSCache() *DNSCache {
	dnsCacheOnce.Do(func() {
		defaultDNSCache = NewDNSCache(duration.DNSCacheTTL, duration.DNSCacheNegativeTTL)
	})
	return defaultDNSCache
}

// NewDNSCache creates a new DNS cache.
// - ttl: how long successful lookups are cached
// - negativeTTL: how long failed lookups are cached
//
// The cache starts a background goroutine that evicts expired entries
// every 2*ttl. Call Close() to stop it when done.
func NewDNSCache(ttl, negativeTTL time.Duration) *DNSCache {
	d := &DNSCache{
		resolver: &net.Resolver{
			PreferGo: true,
		},
		ttl:          ttl,
		negativeTTL:  negativeTTL,
		stopEviction: make(chan struct{}),
	}

	go d.evictionLoop(2 * ttl)

	return d
}

// Close stops the background eviction goroutine.
func (d *DNSCache) Close() {
	select {
	case <-d.stopEviction:
	default:
		close(d.stopEviction)
	}
}

// evictionLoop periodically removes expired cache entries.
func (d *DNSCache) evictionLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-d.stopEviction:
			return
		case <-ticker.C:
			now := time.Now()
			d.cache.Range(func(key, value any) bool {
				entry, ok := value.(*cacheEntry)
				if !ok {
					d.cache.Delete(key)
					return true
				}
				entry.mu.RLock()
				expired := now.After(entry.expiresAt)
				entry.mu.RUnlock()
				if expired {
					d.cache.Delete(key)
				}
				return true
			})
		}
	}
}

// LookupHost returns cached IP addresses for the given host.
// If not cached or expired, performs a fresh lookup and caches the result.
func (d *DNSCache) LookupHost(ctx context.Context, host string) ([]net.IP, error) {
	if entry, ok := d.cache.Load(host); ok {
		e, eOk := entry.(*cacheEntry)
		if !eOk {
			return nil, fmt.Errorf("dnscache: corrupt entry type %T for host %s", entry, host)
		}
		e.mu.RLock()
		if time.Now().Before(e.expiresAt) {
			ips := e.ips
			err := e.err
			e.mu.RUnlock()
			return ips, err
		}
		e.mu.RUnlock()
	}

	return d.refresh(ctx, host)
}

// refresh performs a DNS lookup and updates the cache
func (d *DNSCache) refresh(ctx context.Context, host string) ([]net.IP, error) {
	entryI, _ := d.cache.LoadOrStore(host, &cacheEntry{})
	entry, ok := entryI.(*cacheEntry)
	if !ok {
		return nil, fmt.Errorf("dnscache: corrupt entry type %T for host %s", entryI, host)
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	// Another goroutine may have refreshed while we waited on the lock.
	if time.Now().Before(entry.expiresAt) {
		return entry.ips, entry.err
	}

	addrs, err := d.resolver.LookupHost(ctx, host)

	if err != nil {
		// A cancelled context is the caller's deadline, not a DNS verdict;
		// don't poison the cache with it.
		if ctx.Err() != nil {
			return nil, err
		}
		entry.ips = nil
		entry.err = fmt.Errorf("%w: %v", ErrDNS, err)
		entry.expiresAt = time.Now().Add(d.negativeTTL)
		return nil, entry.err
	}

	ips := make([]net.IP, 0, len(addrs))
	for _, addr := range addrs {
		if ip := net.ParseIP(addr); ip != nil {
			ips = append(ips, ip)
		}
	}

	if len(ips) == 0 {
		noIPErr := fmt.Errorf("%w: no valid IPs for host %s", ErrDNS, host)
		entry.ips = nil
		entry.err = noIPErr
		entry.expiresAt = time.Now().Add(d.negativeTTL)
		return nil, noIPErr
	}

	entry.ips = ips
	entry.err = nil
	entry.expiresAt = time.Now().Add(d.ttl)

	return ips, nil
}

// LookupHostString returns cached IP addresses as strings.
func (d *DNSCache) LookupHostString(ctx context.Context, host string) ([]string, error) {
	ips, err := d.LookupHost(ctx, host)
	if err != nil {
		return nil, err
	}

	addrs := make([]string, len(ips))
	for i, ip := range ips {
		addrs[i] = ip.String()
	}
	return addrs, nil
}

// Invalidate removes a host from the cache.
// Use this after a connection error that suggests stale DNS.
func (d *DNSCache) Invalidate(host string) {
	d.cache.Delete(host)
}

// Clear removes all entries from the cache.
func (d *DNSCache) Clear() {
	d.cache.Range(func(key, _ any) bool {
		d.cache.Delete(key)
		return true
	})
}

// CachingDialer wraps a dialer with DNS caching.
// Use this to inject DNS caching into http.Transport.
type CachingDialer struct {
	cache   *DNSCache
	dialer  *net.Dialer
	timeout time.Duration
}

// NewCachingDialer creates a dialer that uses DNS caching.
func NewCachingDialer(cache *DNSCache, timeout time.Duration) *CachingDialer {
	return &CachingDialer{
		cache:   cache,
		timeout: timeout,
		dialer: &net.Dialer{
			Timeout:   timeout,
			KeepAlive: duration.KeepAlive,
			Control:   sockopt.DialControl(),
		},
	}
}

// DialContext connects to the address using cached DNS.
// Compatible with http.Transport.DialContext.
func (d *CachingDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	host, port, err := net.SplitHostPort(address)
	if err != nil {
		return d.dialer.DialContext(ctx, network, address)
	}

	// IP literals need no resolution.
	if ip := net.ParseIP(host); ip != nil {
		return d.dialer.DialContext(ctx, network, address)
	}

	ips, err := d.cache.LookupHost(ctx, host)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for _, ip := range ips {
		addr := net.JoinHostPort(ip.String(), port)
		conn, err := d.dialer.DialContext(ctx, network, addr)
		if err == nil {
			return conn, nil
		}
		lastErr = err
	}

	// All IPs failed; the cache entry may be stale.
	d.cache.Invalidate(host)
	if lastErr == nil {
		lastErr = fmt.Errorf("dnscache: no IPs to dial for host %s", host)
	}
	return nil, lastErr
}
