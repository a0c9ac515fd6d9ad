// Package cloudflare implements heuristic Cloudflare detection from
// response headers and DNS delegation. Detection is purely signal-based;
// no IP-range table is consulted, so false negatives (Cloudflare without
// DNS delegation) and false positives (matching headers elsewhere) are
// accepted trade-offs.
package cloudflare

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/httpeek/httpeek/pkg/defaults"
	"github.com/httpeek/httpeek/pkg/duration"
)

// Resolver is the DNS collaborator the detector queries for delegation
// evidence. *net.Resolver satisfies it.
type Resolver interface {
	LookupNS(ctx context.Context, host string) ([]*net.NS, error)
	LookupCNAME(ctx context.Context, host string) (string, error)
}

// Verdict is the outcome of one detection pass. Evidence lists every
// reason that fired, in evaluation order, so results stay auditable.
type Verdict struct {
	Likely   bool     `json:"likely"`
	Evidence []string `json:"evidence"`
}

// Config holds detector configuration.
type Config struct {
	// Resolver used for NS/CNAME lookups. Defaults to a PreferGo
	// net.Resolver when nil.
	Resolver Resolver

	// Timeout bounds each DNS query.
	Timeout time.Duration

	// ChallengeTitles are page titles counted as challenge-page
	// evidence when matched exactly.
	ChallengeTitles []string
}

// DefaultConfig returns the standard detector configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:         duration.DNSTimeout,
		ChallengeTitles: defaults.ChallengeTitles(),
	}
}

// Detector inspects response headers and DNS records for Cloudflare
// signals. Safe for concurrent use.
type Detector struct {
	resolver        Resolver
	timeout         time.Duration
	challengeTitles []string
}

// New creates a detector, applying defaults for zero-value fields.
func New(cfg Config) *Detector {
	if cfg.Resolver == nil {
		cfg.Resolver = &net.Resolver{PreferGo: true}
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = duration.DNSTimeout
	}
	if cfg.ChallengeTitles == nil {
		cfg.ChallengeTitles = defaults.ChallengeTitles()
	}
	return &Detector{
		resolver:        cfg.Resolver,
		timeout:         cfg.Timeout,
		challengeTitles: cfg.ChallengeTitles,
	}
}

// Detect evaluates every signal source for the given host and returns
// the combined verdict. Header and title evidence come from the supplied
// response data; DNS evidence requires resolver calls, and a resolver
// failure degrades to "no DNS evidence" rather than an error.
func (d *Detector) Detect(ctx context.Context, host string, hdr http.Header, title string) *Verdict {
	verdict := &Verdict{Evidence: make([]string, 0)}

	if hdr != nil {
		if server := hdr.Get("Server"); server != "" && strings.Contains(strings.ToLower(server), "cloudflare") {
			verdict.Evidence = append(verdict.Evidence, fmt.Sprintf("server header: %s", server))
		}
		if ray := hdr.Get("CF-Ray"); ray != "" {
			verdict.Evidence = append(verdict.Evidence, fmt.Sprintf("cf-ray header: %s", ray))
		}
	}

	for _, known := range d.challengeTitles {
		if title == known {
			verdict.Evidence = append(verdict.Evidence, fmt.Sprintf("challenge title: %s", title))
			break
		}
	}

	verdict.Evidence = append(verdict.Evidence, d.dnsEvidence(ctx, host)...)

	verdict.Likely = len(verdict.Evidence) > 0
	return verdict
}

// dnsEvidence collects NS and CNAME delegation signals. IP literals have
// no delegation to inspect and are skipped outright.
func (d *Detector) dnsEvidence(ctx context.Context, host string) []string {
	host = strings.ToLower(normalizeHost(host))
	if host == "" || net.ParseIP(host) != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	var evidence []string

	if records, err := d.resolver.LookupNS(ctx, host); err == nil {
		for _, ns := range records {
			name := strings.TrimSuffix(strings.ToLower(ns.Host), ".")
			if strings.HasSuffix(name, "cloudflare.com") {
				evidence = append(evidence, fmt.Sprintf("ns record: %s", name))
			}
		}
	}

	if cname, err := d.resolver.LookupCNAME(ctx, host); err == nil {
		name := strings.TrimSuffix(strings.ToLower(cname), ".")
		for _, domain := range []string{"cdn.cloudflare.net", "cloudflare.net", "cloudflare.com"} {
			if name != host && strings.HasSuffix(name, domain) {
				evidence = append(evidence, fmt.Sprintf("cname chain: %s", name))
				break
			}
		}
	}

	return evidence
}

// normalizeHost strips any port so DNS lookups get a bare name.
func normalizeHost(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}
