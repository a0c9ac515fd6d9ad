// Package scan orchestrates a probing run. A fixed pool of workers
// pulls targets off a stream, resolves schemes, probes, and applies the
// result filter; every result is then funneled through the sinks from a
// single goroutine, so sinks never need locking of their own.
package scan

import (
	"context"
	"log/slog"
	"net"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/httpeek/httpeek/pkg/defaults"
	"github.com/httpeek/httpeek/pkg/filter"
	"github.com/httpeek/httpeek/pkg/hosterrors"
	"github.com/httpeek/httpeek/pkg/input"
	"github.com/httpeek/httpeek/pkg/probe"
	"github.com/httpeek/httpeek/pkg/ratelimit"
)

// Sink receives results in completion order. The engine serializes
// calls, so implementations need no locking of their own.
type Sink interface {
	WriteResult(*probe.Result) error
}

// Config holds scan configuration.
type Config struct {
	// Concurrency is the worker count (default: 50).
	Concurrency int

	// RateLimit caps requests per second across the scan (0 = unlimited).
	RateLimit int

	// RateLimitPerHost applies RateLimit to each host separately.
	RateLimitPerHost bool

	// Filter demotes successful results that do not match it to
	// filtered-out; writers then suppress those rows.
	Filter *filter.Spec

	// Normalizer resolves schemeless targets to http or https. Nil
	// leaves targets exactly as typed.
	Normalizer *input.Normalizer

	// SkipFlakyHosts short-circuits hosts that keep exhausting their
	// retry budgets instead of probing them over and over.
	SkipFlakyHosts bool

	// ScanID overrides the generated run identifier. Callers that
	// announce the scan to external systems before Run starts need to
	// know the ID up front.
	ScanID string

	// Sinks receive every result in completion order.
	Sinks []Sink

	// OnProgress, if set, runs after each result lands in the sinks.
	OnProgress func(completed, total int64, res *probe.Result)
}

// Stats tracks execution counters. Workers update the fields
// atomically; read them with atomic loads while a scan is running.
type Stats struct {
	Total     int64
	Completed int64
	Succeeded int64
	Filtered  int64
	Transient int64
	Fatal     int64
	StartTime time.Time
}

// RPS returns the observed completion rate per second.
func (s *Stats) RPS() float64 {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed == 0 {
		return 0
	}
	return float64(atomic.LoadInt64(&s.Completed)) / elapsed
}

// Progress returns completion percentage (0-100). Unknown totals
// report 0.
func (s *Stats) Progress() float64 {
	total := atomic.LoadInt64(&s.Total)
	if total == 0 {
		return 0
	}
	return float64(atomic.LoadInt64(&s.Completed)) / float64(total) * 100
}

// Failed returns the combined transient and fatal count.
func (s *Stats) Failed() int64 {
	return atomic.LoadInt64(&s.Transient) + atomic.LoadInt64(&s.Fatal)
}

// Summary describes one finished scan.
type Summary struct {
	ScanID    string                  `json:"scan_id"`
	Total     int64                   `json:"total"`
	Completed int64                   `json:"completed"`
	ByOutcome map[probe.Outcome]int64 `json:"by_outcome"`
	Elapsed   time.Duration           `json:"elapsed"`
}

// Engine runs probes across a target stream.
type Engine struct {
	cfg     Config
	prober  *probe.Prober
	limiter *ratelimit.Limiter
	flaky   *hosterrors.Cache

	// Stats is live during Run; safe to read with atomic loads.
	Stats Stats
}

// New creates an Engine around an existing Prober.
func New(prober *probe.Prober, cfg Config) *Engine {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaults.Concurrency
	}
	e := &Engine{cfg: cfg, prober: prober}
	if cfg.RateLimit > 0 {
		e.limiter = ratelimit.New(&ratelimit.Config{
			RequestsPerSecond: cfg.RateLimit,
			PerHost:           cfg.RateLimitPerHost,
		})
	}
	if cfg.SkipFlakyHosts {
		e.flaky = hosterrors.NewCache(hosterrors.DefaultMaxErrors, hosterrors.DefaultExpiry)
	}
	return e
}

// SetTotal records the expected target count for progress reporting.
func (e *Engine) SetTotal(n int64) {
	atomic.StoreInt64(&e.Stats.Total, n)
}

// RunList runs a fully known target list, so progress totals are exact.
func (e *Engine) RunList(ctx context.Context, targets []string) *Summary {
	e.SetTotal(int64(len(targets)))
	ch := make(chan string, defaults.ChannelSmall)
	go func() {
		defer close(ch)
		for _, t := range targets {
			select {
			case ch <- t:
			case <-ctx.Done():
				return
			}
		}
	}()
	return e.Run(ctx, ch)
}

// Run drains the target stream through the worker pool and returns a
// summary of everything processed. Per-target failures are results,
// never errors; on cancellation the pool stops pulling work and the
// summary covers the partial run.
func (e *Engine) Run(ctx context.Context, targets <-chan string) *Summary {
	start := time.Now()
	e.Stats.StartTime = start
	scanID := e.cfg.ScanID
	if scanID == "" {
		scanID = uuid.New().String()
	}

	results := make(chan *probe.Result, defaults.ChannelSmall)

	var wg sync.WaitGroup
	for i := 0; i < e.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.worker(ctx, targets, results)
		}()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for res := range results {
			e.record(res)
			for _, s := range e.cfg.Sinks {
				if err := s.WriteResult(res); err != nil {
					slog.Error("sink write failed",
						slog.String("url", res.URL),
						slog.String("error", err.Error()))
				}
			}
			if e.cfg.OnProgress != nil {
				e.cfg.OnProgress(atomic.LoadInt64(&e.Stats.Completed), atomic.LoadInt64(&e.Stats.Total), res)
			}
		}
	}()

	wg.Wait()
	close(results)
	<-done

	return e.summary(scanID, time.Since(start))
}

func (e *Engine) worker(ctx context.Context, targets <-chan string, results chan<- *probe.Result) {
	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-targets:
			if !ok {
				return
			}
			res := e.probeOne(ctx, raw)
			if ctx.Err() != nil {
				// The in-flight probe was cut short; its row would
				// only record the cancellation, so drop it.
				return
			}
			select {
			case results <- res:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (e *Engine) probeOne(ctx context.Context, raw string) *probe.Result {
	host := extractHost(raw)

	if e.flaky != nil && e.flaky.Check(host) {
		return &probe.Result{
			URL:     raw,
			IP:      "-",
			Headers: map[string]string{},
			Outcome: probe.OutcomeTransientExhausted,
			Err:     "host skipped: exceeded error threshold",
		}
	}

	if e.limiter != nil {
		if err := e.limiter.WaitForHost(ctx, host); err != nil {
			return &probe.Result{
				URL:     raw,
				IP:      "-",
				Headers: map[string]string{},
				Outcome: probe.OutcomeFatalError,
				Err:     err.Error(),
			}
		}
	}

	if e.cfg.Normalizer != nil {
		raw = e.cfg.Normalizer.Normalize(ctx, raw)
	}

	res := e.prober.ProbeURL(ctx, raw)

	if e.flaky != nil && res.Outcome == probe.OutcomeTransientExhausted {
		if res.IP == defaults.DNSFailMarker {
			e.flaky.MarkPermanent(host)
		} else {
			e.flaky.MarkError(host)
		}
	}

	e.applyFilter(res)
	return res
}

func (e *Engine) applyFilter(res *probe.Result) {
	if e.cfg.Filter == nil || e.cfg.Filter.IsEmpty() || res.Outcome != probe.OutcomeSuccess {
		return
	}
	match := e.cfg.Filter.Matches(&filter.Response{
		StatusCode:    res.FinalStatus,
		ContentLength: res.ContentLength,
		Title:         res.Title,
		Body:          res.Body,
	})
	if !match {
		res.Outcome = probe.OutcomeFilteredOut
	}
}

func (e *Engine) record(res *probe.Result) {
	atomic.AddInt64(&e.Stats.Completed, 1)
	switch res.Outcome {
	case probe.OutcomeSuccess:
		atomic.AddInt64(&e.Stats.Succeeded, 1)
	case probe.OutcomeFilteredOut:
		atomic.AddInt64(&e.Stats.Filtered, 1)
	case probe.OutcomeTransientExhausted:
		atomic.AddInt64(&e.Stats.Transient, 1)
	case probe.OutcomeFatalError:
		atomic.AddInt64(&e.Stats.Fatal, 1)
	}
}

func (e *Engine) summary(id string, elapsed time.Duration) *Summary {
	return &Summary{
		ScanID:    id,
		Total:     atomic.LoadInt64(&e.Stats.Total),
		Completed: atomic.LoadInt64(&e.Stats.Completed),
		ByOutcome: map[probe.Outcome]int64{
			probe.OutcomeSuccess:            atomic.LoadInt64(&e.Stats.Succeeded),
			probe.OutcomeFilteredOut:        atomic.LoadInt64(&e.Stats.Filtered),
			probe.OutcomeTransientExhausted: atomic.LoadInt64(&e.Stats.Transient),
			probe.OutcomeFatalError:         atomic.LoadInt64(&e.Stats.Fatal),
		},
		Elapsed: elapsed,
	}
}

// extractHost pulls the bare hostname out of a URL or raw target line
// for rate limiting and skip-list keys.
func extractHost(target string) string {
	if u, err := url.Parse(target); err == nil && u.Host != "" {
		if host := u.Hostname(); host != "" {
			return host
		}
	}
	host := strings.TrimPrefix(target, "https://")
	host = strings.TrimPrefix(host, "http://")
	host, _, _ = strings.Cut(host, "/")
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return strings.Trim(host, "[]")
}
