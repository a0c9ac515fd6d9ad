// Package httpclient provides the shared HTTP client factory for probing.
// It enables connection pooling and reuse across the scan so that probing
// thousands of targets does not pay a fresh handshake per request.
package httpclient

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/httpeek/httpeek/pkg/duration"
	"github.com/httpeek/httpeek/pkg/sockopt"
)

// Config holds HTTP client configuration options.
type Config struct {
	// Timeout is the total per-attempt timeout (default: 10s)
	Timeout time.Duration

	// InsecureSkipVerify skips TLS certificate verification.
	// Probes care about reachability and content, not trust chains.
	InsecureSkipVerify bool

	// Proxy is the proxy URL: http, https, socks4, socks5 or socks5h (optional)
	Proxy string

	// UserAgent sets a fixed User-Agent on every request (optional)
	UserAgent string

	// RandomUserAgent rotates browser user agents per request
	RandomUserAgent bool

	// ExtraHeaders are applied to every request (optional)
	ExtraHeaders http.Header

	// MaxIdleConns is the maximum idle connections across all hosts (default: 100)
	MaxIdleConns int

	// MaxConnsPerHost is the maximum connections per host (default: 25)
	MaxConnsPerHost int

	// IdleConnTimeout is how long idle connections stay pooled (default: 90s)
	IdleConnTimeout time.Duration

	// DisableKeepAlives disables HTTP keep-alives if true
	DisableKeepAlives bool

	// DialTimeout is the timeout for establishing connections (default: 10s)
	DialTimeout time.Duration

	// TLSHandshakeTimeout is the timeout for the TLS handshake (default: 10s)
	TLSHandshakeTimeout time.Duration

	// CacheDNS routes dialing through the shared DNS cache, so many paths
	// on one host resolve once (default via DefaultConfig: true)
	CacheDNS bool
}

// DefaultConfig returns defaults tuned for high-throughput probing.
func DefaultConfig() Config {
	return Config{
		Timeout:             duration.HTTPProbe,
		InsecureSkipVerify:  true,
		MaxIdleConns:        100,
		MaxConnsPerHost:     25,
		IdleConnTimeout:     duration.IdleConnTimeout,
		DisableKeepAlives:   false,
		DialTimeout:         duration.DialTimeout,
		TLSHandshakeTimeout: duration.TLSHandshake,
		CacheDNS:            true,
	}
}

var (
	defaultClient *http.Client
	defaultOnce   sync.Once
)

// Default returns a shared, pre-configured HTTP client.
// The client is safe for concurrent use and employs connection pooling.
//
// The default client:
//   - Uses connection pooling (100 idle, 25 per host)
//   - Has a 10s per-attempt timeout
//   - Skips TLS verification
//   - Does NOT follow redirects (returns http.ErrUseLastResponse);
//     the prober walks redirect chains itself
func Default() *http.Client {
	defaultOnce.Do(func() {
		defaultClient = New(DefaultConfig())
	})
	return defaultClient
}

// New creates an HTTP client with the given configuration.
// Zero values fall back to DefaultConfig equivalents.
func New(cfg Config) *http.Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = duration.HTTPProbe
	}
	if cfg.MaxIdleConns == 0 {
		cfg.MaxIdleConns = 100
	}
	if cfg.MaxConnsPerHost == 0 {
		cfg.MaxConnsPerHost = 25
	}
	if cfg.IdleConnTimeout == 0 {
		cfg.IdleConnTimeout = duration.IdleConnTimeout
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = duration.DialTimeout
	}
	if cfg.TLSHandshakeTimeout == 0 {
		cfg.TLSHandshakeTimeout = duration.TLSHandshake
	}

	transport := &http.Transport{
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxConnsPerHost,
		MaxConnsPerHost:     cfg.MaxConnsPerHost,
		IdleConnTimeout:     cfg.IdleConnTimeout,
		DisableKeepAlives:   cfg.DisableKeepAlives,

		ForceAttemptHTTP2:     true,
		ExpectContinueTimeout: 1 * time.Second,
		TLSHandshakeTimeout:   cfg.TLSHandshakeTimeout,

		DialContext: dialContextFor(cfg),

		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.InsecureSkipVerify,
		},
	}

	// Proxy wiring: CONNECT proxies go through transport.Proxy, SOCKS
	// proxies replace the dialer entirely.
	if cfg.Proxy != "" {
		if pc, err := ParseProxyURL(cfg.Proxy); err == nil && pc != nil {
			if pc.IsSOCKS {
				if d, derr := CreateSOCKSDialer(pc, cfg.DialTimeout); derr == nil {
					transport.DialContext = d.DialContext
				}
			} else if proxyURL, perr := url.Parse(cfg.Proxy); perr == nil {
				transport.Proxy = http.ProxyURL(proxyURL)
			}
		}
	}

	var rt http.RoundTripper = transport
	if needsMiddleware(cfg) {
		rt = &middlewareTransport{
			base:         transport,
			userAgent:    cfg.UserAgent,
			randomUA:     cfg.RandomUserAgent,
			extraHeaders: cfg.ExtraHeaders,
		}
	}

	return &http.Client{
		Transport: rt,
		Timeout:   cfg.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			// The prober records each hop itself; the client must hand
			// back every 3xx untouched.
			return http.ErrUseLastResponse
		},
	}
}

// dialContextFor picks the dialing path: cached DNS or a plain dialer.
func dialContextFor(cfg Config) func(ctx context.Context, network, addr string) (net.Conn, error) {
	if cfg.CacheDNS {
		return NewCachingDialer(GetDNSCache(), cfg.DialTimeout).DialContext
	}
	dialer := &net.Dialer{
		Timeout:   cfg.DialTimeout,
		KeepAlive: duration.KeepAlive,
		Control:   sockopt.DialControl(),
	}
	return dialer.DialContext
}

// WithTimeout returns DefaultConfig with the specified timeout.
func WithTimeout(timeout time.Duration) Config {
	cfg := DefaultConfig()
	cfg.Timeout = timeout
	return cfg
}

// WithProxy returns DefaultConfig with the specified proxy.
func WithProxy(proxyURL string) Config {
	cfg := DefaultConfig()
	cfg.Proxy = proxyURL
	return cfg
}
