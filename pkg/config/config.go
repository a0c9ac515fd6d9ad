package config

import (
	"flag"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/httpeek/httpeek/pkg/defaults"
	"github.com/httpeek/httpeek/pkg/duration"
	"github.com/httpeek/httpeek/pkg/input"
)

// Config holds all CLI configuration options
type Config struct {
	// Target settings
	TargetURLs input.StringSliceFlag // Multi-target support
	ListFile   string                // File containing target URLs
	StdinInput bool                  // Read targets from stdin

	// Probe settings
	Method      string        // Request method, GET or HEAD
	Timeout     time.Duration // Per-attempt HTTP timeout (default: 10s)
	Retries     int           // Retry count on transient failure (default: 3)
	Concurrency int           // Number of parallel workers (default: 50)
	NoRedirect  bool          // Treat the first response as final
	MaxHops     int           // Redirect chain cap (default: 10)

	// Request shaping
	Headers     input.HeaderFlag // Custom headers, repeatable K:V
	UserAgent   string           // User-Agent override
	RandomAgent bool             // Rotate the user agent per request
	Proxy       string           // http/https/socks proxy URL
	RateLimit   int              // Requests per second (0 = unlimited)
	Insecure    bool             // Accept invalid certificate chains

	// Scan behavior
	SkipFlakyHosts bool // Short-circuit hosts that keep exhausting retries

	// Match/Filter settings (ffuf-style)
	MatchStatus   string // Keep these status codes ("All" = everything)
	MatchLength   string // Keep these content lengths
	ExcludeStatus string // Drop these status codes
	ExcludeLength string // Drop these content lengths
	TitleMatch    string // Keep titles matching this regex
	BodyMatch     string // Keep bodies matching this regex
	OnlyActive    bool   // Hide targets that never produced a response

	// Detection settings
	TLSInfo bool // Collect certificate metadata for https targets

	// Output settings
	OutputFile  string // Append plain result lines to this file
	JSON        bool   // JSONL to stdout
	CSV         bool   // CSV to stdout
	HTMLReport  string // Write an HTML report to this file
	Silent      bool   // Final table only, no banner or live rows
	NoColor     bool   // Disable colored output
	ShowVersion bool   // Print version and exit

	// Telemetry settings
	OTelEndpoint string // OTLP gRPC collector endpoint (empty = off)
	MetricsPort  int    // Prometheus metrics port (0 = off)

	// Profile settings
	ProfileFile string // Scan profile YAML path

	// explicit records which flags were set on the command line, so
	// profile values never override them.
	explicit map[string]bool
}

// ParseFlags parses command line arguments and returns Config.
// When -profile names a file, its values fill every field the user
// did not set explicitly.
func ParseFlags() (*Config, error) {
	cfg := &Config{}

	// === INPUT ===
	flag.Var(&cfg.TargetURLs, "u", "Target URL(s) - comma-separated or repeated")
	flag.Var(&cfg.TargetURLs, "url", "Target URL(s)")
	flag.StringVar(&cfg.ListFile, "l", "", "File containing target URLs")
	flag.StringVar(&cfg.ListFile, "list", "", "Target list file (alias)")
	flag.BoolVar(&cfg.StdinInput, "stdin", false, "Read targets from stdin")

	// === PROBING ===
	flag.StringVar(&cfg.Method, "X", http.MethodGet, "Request method: GET or HEAD")
	flag.StringVar(&cfg.Method, "method", http.MethodGet, "Request method (alias)")
	timeout := flag.Int("timeout", int(duration.HTTPProbe/time.Second), "HTTP timeout in seconds")
	flag.IntVar(&cfg.Retries, "retries", defaults.Retries, "Retries on transient failure")
	flag.IntVar(&cfg.Concurrency, "threads", defaults.Concurrency, "Concurrent workers")
	flag.IntVar(&cfg.Concurrency, "c", defaults.Concurrency, "Concurrent workers (alias)")
	flag.BoolVar(&cfg.NoRedirect, "no-redirect", false, "Do not follow redirects")
	flag.IntVar(&cfg.MaxHops, "max-hops", defaults.MaxRedirects, "Redirect chain cap")

	// === REQUESTS ===
	flag.Var(&cfg.Headers, "H", "Custom header \"Name: value\" - repeatable")
	flag.Var(&cfg.Headers, "header", "Custom header (alias)")
	flag.StringVar(&cfg.UserAgent, "ua", "", "User-Agent override")
	flag.BoolVar(&cfg.RandomAgent, "random-agent", false, "Rotate the user agent per request")
	flag.StringVar(&cfg.Proxy, "proxy", "", "HTTP/SOCKS proxy URL")
	flag.IntVar(&cfg.RateLimit, "rate-limit", defaults.RateLimitNone, "Max requests per second (0 = unlimited)")
	flag.BoolVar(&cfg.Insecure, "insecure", false, "Accept invalid certificate chains")
	flag.BoolVar(&cfg.SkipFlakyHosts, "skip-flaky-hosts", false, "Skip hosts that keep exhausting retries")

	// === FILTERS ===
	flag.StringVar(&cfg.MatchStatus, "sc", defaults.StatusMatchAll, "Match status codes (e.g. 200,301 or 2xx)")
	flag.StringVar(&cfg.MatchStatus, "match-status", defaults.StatusMatchAll, "Match status codes (alias)")
	flag.StringVar(&cfg.MatchLength, "cl", "", "Match content lengths (e.g. 1234 or 100-999)")
	flag.StringVar(&cfg.MatchLength, "match-length", "", "Match content lengths (alias)")
	flag.StringVar(&cfg.ExcludeStatus, "exclude-status", "", "Drop these status codes")
	flag.StringVar(&cfg.ExcludeLength, "exclude-length", "", "Drop these content lengths")
	flag.StringVar(&cfg.TitleMatch, "title-match", "", "Keep titles matching regex")
	flag.StringVar(&cfg.BodyMatch, "body-match", "", "Keep bodies matching regex")
	flag.BoolVar(&cfg.OnlyActive, "only-active", false, "Hide targets that never responded")

	// === DETECTION ===
	flag.BoolVar(&cfg.TLSInfo, "tls-info", false, "Collect certificate metadata")

	// === OUTPUT ===
	flag.StringVar(&cfg.OutputFile, "o", "", "Append plain result lines to file")
	flag.BoolVar(&cfg.JSON, "json", false, "JSONL to stdout")
	flag.BoolVar(&cfg.CSV, "csv", false, "CSV to stdout")
	flag.StringVar(&cfg.HTMLReport, "html-report", "", "Write HTML report to file")
	flag.BoolVar(&cfg.Silent, "silent", false, "Final table only")
	flag.BoolVar(&cfg.NoColor, "no-color", false, "Disable colored output")
	flag.BoolVar(&cfg.ShowVersion, "version", false, "Print version and exit")

	// === TELEMETRY ===
	flag.StringVar(&cfg.OTelEndpoint, "otel-endpoint", "", "OTLP gRPC collector endpoint")
	flag.IntVar(&cfg.MetricsPort, "metrics-port", 0, "Prometheus metrics port (0 = off)")

	// === PROFILE ===
	flag.StringVar(&cfg.ProfileFile, "profile", "", "Scan profile YAML path or built-in name (fast, thorough, stealth)")

	// Parse
	flag.Parse()

	// Record what the user actually typed before any profile merge
	cfg.explicit = make(map[string]bool)
	flag.Visit(func(f *flag.Flag) {
		cfg.explicit[f.Name] = true
	})

	// Convert timeout
	cfg.Timeout = time.Duration(*timeout) * time.Second

	if cfg.ProfileFile != "" {
		profile, err := LoadProfile(cfg.ProfileFile)
		if err != nil {
			return nil, err
		}
		cfg.ApplyProfile(profile)
	}

	cfg.Method = strings.ToUpper(strings.TrimSpace(cfg.Method))

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyProfile fills Config from a scan profile. Explicit command-line
// flags keep their value; only the rest take the profile's. Profile
// headers merge under flag headers, losing on name collision.
func (c *Config) ApplyProfile(p *Profile) {
	if p == nil {
		return
	}
	if p.Method != nil && !c.flagSet("X", "method") {
		c.Method = *p.Method
	}
	if p.Timeout != nil && !c.flagSet("timeout") {
		c.Timeout = time.Duration(*p.Timeout) * time.Second
	}
	if p.Retries != nil && !c.flagSet("retries") {
		c.Retries = *p.Retries
	}
	if p.Threads != nil && !c.flagSet("c", "threads") {
		c.Concurrency = *p.Threads
	}
	if p.NoRedirect != nil && !c.flagSet("no-redirect") {
		c.NoRedirect = *p.NoRedirect
	}
	if p.MaxHops != nil && !c.flagSet("max-hops") {
		c.MaxHops = *p.MaxHops
	}
	for name, value := range p.Headers {
		if c.Headers == nil {
			c.Headers = input.HeaderFlag{}
		}
		if c.Headers.Header().Get(name) == "" {
			c.Headers.Header().Set(name, value)
		}
	}
	if p.UserAgent != nil && !c.flagSet("ua") {
		c.UserAgent = *p.UserAgent
	}
	if p.RandomAgent != nil && !c.flagSet("random-agent") {
		c.RandomAgent = *p.RandomAgent
	}
	if p.Proxy != nil && !c.flagSet("proxy") {
		c.Proxy = *p.Proxy
	}
	if p.RateLimit != nil && !c.flagSet("rate-limit") {
		c.RateLimit = *p.RateLimit
	}
	if p.Insecure != nil && !c.flagSet("insecure") {
		c.Insecure = *p.Insecure
	}
	if p.SkipFlakyHosts != nil && !c.flagSet("skip-flaky-hosts") {
		c.SkipFlakyHosts = *p.SkipFlakyHosts
	}
	if p.MatchStatus != nil && !c.flagSet("sc", "match-status") {
		c.MatchStatus = *p.MatchStatus
	}
	if p.MatchLength != nil && !c.flagSet("cl", "match-length") {
		c.MatchLength = *p.MatchLength
	}
	if p.ExcludeStatus != nil && !c.flagSet("exclude-status") {
		c.ExcludeStatus = *p.ExcludeStatus
	}
	if p.ExcludeLength != nil && !c.flagSet("exclude-length") {
		c.ExcludeLength = *p.ExcludeLength
	}
	if p.TitleMatch != nil && !c.flagSet("title-match") {
		c.TitleMatch = *p.TitleMatch
	}
	if p.BodyMatch != nil && !c.flagSet("body-match") {
		c.BodyMatch = *p.BodyMatch
	}
	if p.OnlyActive != nil && !c.flagSet("only-active") {
		c.OnlyActive = *p.OnlyActive
	}
	if p.TLSInfo != nil && !c.flagSet("tls-info") {
		c.TLSInfo = *p.TLSInfo
	}
	if p.Output != nil && !c.flagSet("o") {
		c.OutputFile = *p.Output
	}
	if p.JSON != nil && !c.flagSet("json") {
		c.JSON = *p.JSON
	}
	if p.CSV != nil && !c.flagSet("csv") {
		c.CSV = *p.CSV
	}
	if p.HTMLReport != nil && !c.flagSet("html-report") {
		c.HTMLReport = *p.HTMLReport
	}
	if p.Silent != nil && !c.flagSet("silent") {
		c.Silent = *p.Silent
	}
	if p.NoColor != nil && !c.flagSet("no-color") {
		c.NoColor = *p.NoColor
	}
	if p.OTelEndpoint != nil && !c.flagSet("otel-endpoint") {
		c.OTelEndpoint = *p.OTelEndpoint
	}
	if p.MetricsPort != nil && !c.flagSet("metrics-port") {
		c.MetricsPort = *p.MetricsPort
	}
}

// MatchAllStatuses reports whether the status filter accepts every
// response. The "All" sentinel compares case-insensitively.
func (c *Config) MatchAllStatuses() bool {
	return strings.EqualFold(c.MatchStatus, defaults.StatusMatchAll)
}

// flagSet reports whether any of the given flag names was typed on
// the command line.
func (c *Config) flagSet(names ...string) bool {
	for _, name := range names {
		if c.explicit[name] {
			return true
		}
	}
	return false
}

// validate checks the merged configuration, after any profile has
// been applied.
func (c *Config) validate() error {
	if c.ShowVersion {
		return nil
	}
	if len(c.TargetURLs) == 0 && c.ListFile == "" && !c.StdinInput {
		return fmt.Errorf("%w: target required: use -u, -l, or -stdin", ErrMissingRequired)
	}
	if c.Method != http.MethodGet && c.Method != http.MethodHead {
		return fmt.Errorf("%w: method must be GET or HEAD, got %q", ErrInvalidConfig, c.Method)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidConfig)
	}
	if c.Retries < 0 {
		return fmt.Errorf("%w: retries cannot be negative", ErrInvalidConfig)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("%w: threads must be at least 1", ErrInvalidConfig)
	}
	if c.MaxHops < 0 {
		return fmt.Errorf("%w: max-hops cannot be negative", ErrInvalidConfig)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("%w: rate-limit cannot be negative", ErrInvalidConfig)
	}
	if c.JSON && c.CSV {
		return fmt.Errorf("%w: -json and -csv are mutually exclusive", ErrInvalidConfig)
	}
	if c.MetricsPort < 0 || c.MetricsPort > 65535 {
		return fmt.Errorf("%w: metrics-port out of range: %d", ErrInvalidConfig, c.MetricsPort)
	}
	return nil
}
