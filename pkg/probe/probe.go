// Package probe turns one target into one result. Each probe resolves
// the target host, walks the redirect chain by hand with a hop ceiling
// and cycle detection, retries transient transport failures with
// backoff, and assembles title, headers, body hash, Cloudflare verdict
// and optional TLS metadata into a single Result.
//
// Probe never returns an error: per-target failures are carried inside
// the Result so that one dead host cannot abort a scan.
package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spaolacci/murmur3"

	"github.com/httpeek/httpeek/pkg/cloudflare"
	"github.com/httpeek/httpeek/pkg/defaults"
	"github.com/httpeek/httpeek/pkg/duration"
	"github.com/httpeek/httpeek/pkg/httpclient"
	"github.com/httpeek/httpeek/pkg/iohelper"
	"github.com/httpeek/httpeek/pkg/retry"
	"github.com/httpeek/httpeek/pkg/tlsx"
)

// Config holds prober configuration. The zero value of NoRedirect means
// redirect chains are followed.
type Config struct {
	// Method is the request method, GET or HEAD (default: GET).
	Method string

	// Timeout bounds each individual HTTP attempt (default: 10s).
	Timeout time.Duration

	// MaxRetries is the number of retries after the first attempt.
	// Zero means a single attempt; DefaultConfig sets 3.
	MaxRetries int

	// NoRedirect disables redirect following. The first response is
	// final even when it carries a Location header.
	NoRedirect bool

	// MaxHops caps the redirect chain length (default: 10). Chains
	// that reach the cap are truncated, not failed.
	MaxHops int

	// Headers are extra request headers sent on every hop. They
	// override the built-in browser headers on key collision.
	Headers http.Header

	// UserAgent overrides the default browser user agent.
	UserAgent string

	// RandomAgent rotates the user agent per request.
	RandomAgent bool

	// Proxy is an optional http, https or socks proxy URL.
	Proxy string

	// InsecureSkipVerify accepts invalid certificate chains.
	InsecureSkipVerify bool

	// TLSInfo requests certificate metadata for https targets.
	TLSInfo bool

	// Impersonate performs TLS metadata handshakes with a browser
	// ClientHello instead of the stock Go one.
	Impersonate bool
}

// DefaultConfig returns the standard probing configuration.
func DefaultConfig() Config {
	return Config{
		Method:             http.MethodGet,
		Timeout:            duration.HTTPProbe,
		MaxRetries:         defaults.Retries,
		MaxHops:            defaults.MaxRedirects,
		InsecureSkipVerify: true,
	}
}

// Prober probes targets over HTTP. It is safe for concurrent use; the
// scan engine shares one Prober across all workers so connections and
// DNS answers are pooled.
type Prober struct {
	cfg      Config
	client   *http.Client
	dns      *httpclient.DNSCache
	detector *cloudflare.Detector
	certs    *tlsx.Extractor
}

// New creates a Prober. Zero-value fields fall back to DefaultConfig
// equivalents, except MaxRetries where zero genuinely means "no
// retries".
func New(cfg Config) *Prober {
	if cfg.Method == "" {
		cfg.Method = http.MethodGet
	}
	cfg.Method = strings.ToUpper(cfg.Method)
	if cfg.Timeout == 0 {
		cfg.Timeout = duration.HTTPProbe
	}
	if cfg.MaxHops == 0 {
		cfg.MaxHops = defaults.MaxRedirects
	}
	if cfg.UserAgent == "" && !cfg.RandomAgent {
		cfg.UserAgent = defaults.UAChrome
	}

	headers := browserHeaders(cfg.Headers)
	if ua := headers.Get("User-Agent"); ua != "" {
		// An explicit header beats both the default and -random-agent.
		cfg.UserAgent = ua
		cfg.RandomAgent = false
		headers.Del("User-Agent")
	}

	client := httpclient.New(httpclient.Config{
		Timeout:            cfg.Timeout,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
		Proxy:              cfg.Proxy,
		UserAgent:          cfg.UserAgent,
		RandomUserAgent:    cfg.RandomAgent,
		ExtraHeaders:       headers,
		CacheDNS:           true,
	})

	return &Prober{
		cfg:      cfg,
		client:   client,
		dns:      httpclient.GetDNSCache(),
		detector: cloudflare.New(cloudflare.Config{}),
		certs: tlsx.New(tlsx.Config{
			Timeout:            cfg.Timeout,
			InsecureSkipVerify: cfg.InsecureSkipVerify,
			Impersonate:        cfg.Impersonate,
		}),
	}
}

// browserHeaders merges the caller's extra headers over the built-in
// browser-shaped set. Accept-Encoding is deliberately absent so the
// transport negotiates compression and decodes bodies transparently.
func browserHeaders(user http.Header) http.Header {
	h := http.Header{}
	h.Set("Accept", defaults.AcceptHTML)
	h.Set("Accept-Language", defaults.AcceptLanguage)
	h.Set("Cache-Control", defaults.CacheControl)
	h.Set("Pragma", defaults.CacheControl)
	for k, vals := range user {
		h[http.CanonicalHeaderKey(k)] = append([]string(nil), vals...)
	}
	return h
}

// ProbeURL parses raw as a target and probes it. A malformed target
// yields a fatal-error result rather than an error.
func (p *Prober) ProbeURL(ctx context.Context, raw string) *Result {
	target, err := ParseTarget(raw)
	if err != nil {
		return &Result{
			URL:     strings.TrimSpace(raw),
			IP:      defaults.DNSFailMarker,
			Headers: map[string]string{},
			Outcome: OutcomeFatalError,
			Err:     err.Error(),
		}
	}
	return p.Probe(ctx, target)
}

// Probe performs one logical probe of target. It always returns exactly
// one Result whose Outcome classifies what happened.
func (p *Prober) Probe(ctx context.Context, target Target) *Result {
	start := time.Now()
	res := &Result{
		Target:  target,
		URL:     target.URL(),
		IP:      p.resolveIP(ctx, target.Host),
		Headers: map[string]string{},
	}

	var chain *chainResult
	attempts := 0
	err := retry.Do(ctx, p.retryConfig(), func() error {
		attempts++
		cr, err := p.walkChain(ctx, target, res)
		if err != nil {
			if isTransient(err) {
				return err
			}
			return retry.Stop(err)
		}
		chain = cr
		return nil
	})
	res.AttemptsUsed = attempts

	if err != nil {
		res.Err = err.Error()
		if isTransient(err) {
			res.Outcome = OutcomeTransientExhausted
		} else {
			res.Outcome = OutcomeFatalError
		}
		res.DurationMS = time.Since(start).Milliseconds()
		return res
	}

	p.assemble(ctx, res, chain)
	res.Outcome = OutcomeSuccess
	res.DurationMS = time.Since(start).Milliseconds()
	return res
}

func (p *Prober) retryConfig() retry.Config {
	cfg := retry.DefaultConfig()
	cfg.MaxAttempts = p.cfg.MaxRetries + 1
	return cfg
}

// resolveIP resolves the input host through the shared DNS cache. The
// IP column always refers to the host the user asked about, not to
// wherever redirects led.
func (p *Prober) resolveIP(ctx context.Context, host string) string {
	addrs, err := p.dns.LookupHostString(ctx, host)
	if err != nil || len(addrs) == 0 {
		return defaults.DNSFailMarker
	}
	return addrs[0]
}

// chainResult carries the terminal state of one redirect walk. The
// final response body has already been read and closed.
type chainResult struct {
	finalResp *http.Response
	finalBody []byte
	finalURL  *url.URL
	hops      []RedirectHop
	truncated bool
	cyclic    bool
}

// walkChain fetches the target and follows redirects by hand, recording
// one hop per Location taken. It stops at the first non-redirect
// response, at the hop ceiling (truncated), or on revisiting a URL
// (cyclic); in the latter two cases the last redirect response itself
// is the terminal response.
func (p *Prober) walkChain(ctx context.Context, target Target, res *Result) (*chainResult, error) {
	cur, err := url.Parse(target.URL())
	if err != nil {
		return nil, fmt.Errorf("parse target: %w", err)
	}

	method := p.cfg.Method
	seen := map[string]bool{cur.String(): true}
	out := &chainResult{}

	for {
		resp, body, err := p.fetch(ctx, method, cur.String(), res)
		if err != nil {
			return nil, err
		}

		loc := redirectLocation(resp)
		if p.cfg.NoRedirect || loc == "" {
			out.finalResp, out.finalBody, out.finalURL = resp, body, cur
			return out, nil
		}

		next, err := cur.Parse(loc)
		if err != nil {
			// An unresolvable Location ends the chain; the redirect
			// response itself is what we report.
			out.finalResp, out.finalBody, out.finalURL = resp, body, cur
			return out, nil
		}
		next.Fragment = ""

		if len(out.hops) >= p.cfg.MaxHops {
			out.truncated = true
			out.finalResp, out.finalBody, out.finalURL = resp, body, cur
			return out, nil
		}

		out.hops = append(out.hops, RedirectHop{
			FromURL:    cur.String(),
			ToURL:      next.String(),
			StatusCode: resp.StatusCode,
		})

		if seen[next.String()] {
			out.cyclic = true
			out.finalResp, out.finalBody, out.finalURL = resp, body, cur
			return out, nil
		}
		seen[next.String()] = true

		if resp.StatusCode == http.StatusSeeOther {
			method = http.MethodGet
		}
		cur = next
	}
}

// redirectLocation returns the Location of a redirect response, or ""
// when the response does not redirect.
func redirectLocation(resp *http.Response) string {
	switch resp.StatusCode {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return resp.Header.Get("Location")
	}
	return ""
}

// fetch performs one request/response cycle. The body is read up to the
// hard cap and the connection drained so it returns to the pool. Every
// cycle, failed or not, is recorded on res.Attempts.
func (p *Prober) fetch(ctx context.Context, method, rawURL string, res *Result) (*http.Response, []byte, error) {
	began := time.Now()
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		res.Attempts = append(res.Attempts, Attempt{
			Method:  method,
			URL:     rawURL,
			Elapsed: time.Since(began),
			Err:     err.Error(),
		})
		return nil, nil, err
	}

	body, readErr := iohelper.ReadBody(resp.Body, iohelper.DefaultMaxBodySize)
	iohelper.DrainAndClose(resp.Body)
	if readErr != nil {
		res.Attempts = append(res.Attempts, Attempt{
			Method:     method,
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Elapsed:    time.Since(began),
			Err:        readErr.Error(),
		})
		return nil, nil, fmt.Errorf("read body: %w", readErr)
	}

	att := Attempt{
		Method:     method,
		URL:        rawURL,
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Elapsed:    time.Since(began),
	}
	if len(body) > 0 {
		att.BodySnippet = string(body[:min(len(body), defaults.BufferSnippet)])
	}
	res.Attempts = append(res.Attempts, att)

	return resp, body, nil
}

// assemble fills the result from the terminal chain state.
func (p *Prober) assemble(ctx context.Context, res *Result, cr *chainResult) {
	resp := cr.finalResp
	res.FinalStatus = resp.StatusCode
	res.ContentLength = int64(len(cr.finalBody))
	res.Headers = flattenHeaders(resp.Header)
	res.Body = cr.finalBody
	res.BodyHash = murmur3.Sum32(cr.finalBody)
	res.Title = extractTitle(cr.finalBody, resp.Header.Get("Content-Type"))

	if len(cr.hops) > 0 {
		res.Redirect = &RedirectSummary{
			HopCount:  len(cr.hops),
			FinalHost: cr.finalURL.Hostname(),
			Truncated: cr.truncated,
			Cyclic:    cr.cyclic,
			Hops:      cr.hops,
		}
	}

	res.Cloudflare = p.detector.Detect(ctx, res.Target.Host, resp.Header, res.Title)

	if p.cfg.TLSInfo && res.Target.Secure() {
		if info, err := tlsx.FromConnectionState(resp.TLS); err == nil {
			res.TLS = info
		} else if info, err := p.certs.Extract(ctx, res.Target.Host, res.Target.Port); err == nil {
			res.TLS = info
		}
	}
}

// isTransient reports whether err is a transport-level failure worth
// retrying. Network failures of any shape are transient; errors of our
// own making, and cancelled contexts, are not.
func isTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return true
	}
	var nerr net.Error
	if errors.As(err, &nerr) {
		return true
	}
	return errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF)
}
