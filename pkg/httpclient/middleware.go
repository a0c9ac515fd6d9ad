package httpclient

import (
	"net/http"

	"github.com/httpeek/httpeek/pkg/useragent"
)

// middlewareTransport wraps a base RoundTripper to add request-level
// middleware: user-agent selection and extra headers.
//
// Retry is deliberately NOT handled here. The prober owns the retry
// policy, including the transient/fatal distinction, and layering a
// second retry loop inside the transport would multiply attempts.
type middlewareTransport struct {
	base         http.RoundTripper
	userAgent    string
	randomUA     bool
	extraHeaders http.Header
}

// RoundTrip implements http.RoundTripper with middleware.
func (m *middlewareTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone the request to avoid mutating the caller's request.
	r := req.Clone(req.Context())

	if m.randomUA {
		r.Header.Set("User-Agent", useragent.Random())
	} else if m.userAgent != "" && r.Header.Get("User-Agent") == "" {
		r.Header.Set("User-Agent", m.userAgent)
	}

	// Extra headers never clobber values the prober set explicitly.
	for key, vals := range m.extraHeaders {
		if r.Header.Get(key) != "" {
			continue
		}
		for _, v := range vals {
			r.Header.Add(key, v)
		}
	}

	return m.base.RoundTrip(r)
}

// needsMiddleware reports whether the config requires the middleware transport.
func needsMiddleware(cfg Config) bool {
	return cfg.UserAgent != "" ||
		cfg.RandomUserAgent ||
		len(cfg.ExtraHeaders) > 0
}
