package probe

import (
	"net/http"
	"time"

	"github.com/httpeek/httpeek/pkg/cloudflare"
	"github.com/httpeek/httpeek/pkg/tlsx"
)

// Outcome is the terminal classification of a single target's probe,
// independent of filter matching.
type Outcome string

const (
	// OutcomeSuccess means the retry/redirect loop completed with a
	// usable response.
	OutcomeSuccess Outcome = "success"
	// OutcomeFilteredOut means the probe succeeded but the response did
	// not match the configured filter spec. The result still carries
	// the full probe data.
	OutcomeFilteredOut Outcome = "filtered_out"
	// OutcomeTransientExhausted means every retry was consumed without
	// a usable response.
	OutcomeTransientExhausted Outcome = "transient_failure_exhausted"
	// OutcomeFatalError means a non-retryable failure, such as a
	// malformed target.
	OutcomeFatalError Outcome = "fatal_error"
)

// Attempt records one HTTP request/response cycle. Redirect hops and
// retries each produce one. Owned by the Result that aggregates it.
type Attempt struct {
	Method      string        `json:"method"`
	URL         string        `json:"url"`
	StatusCode  int           `json:"status_code,omitempty"`
	Headers     http.Header   `json:"headers,omitempty"`
	BodySnippet string        `json:"body_snippet,omitempty"`
	Elapsed     time.Duration `json:"elapsed"`
	Err         string        `json:"error,omitempty"`
}

// RedirectHop is one followed redirect edge.
type RedirectHop struct {
	FromURL    string `json:"from_url"`
	ToURL      string `json:"to_url"`
	StatusCode int    `json:"status_code"`
}

// RedirectSummary describes a followed redirect chain. HopCount never
// exceeds the configured ceiling; hitting the ceiling sets Truncated
// rather than failing the probe, and revisiting a URL sets Cyclic.
type RedirectSummary struct {
	HopCount  int           `json:"hop_count"`
	FinalHost string        `json:"final_host"`
	Truncated bool          `json:"truncated,omitempty"`
	Cyclic    bool          `json:"cyclic,omitempty"`
	Hops      []RedirectHop `json:"hops,omitempty"`
}

// Result is the unit handed to every consumer: one per target, created
// by the prober, immutable once returned.
type Result struct {
	Target        Target              `json:"-"`
	URL           string              `json:"url"`
	IP            string              `json:"ip"`
	FinalStatus   int                 `json:"status"`
	Title         string              `json:"title"`
	ContentLength int64               `json:"length"`
	Headers       map[string]string   `json:"headers"`
	Redirect      *RedirectSummary    `json:"redirect,omitempty"`
	TLS           *tlsx.Info          `json:"tls,omitempty"`
	Cloudflare    *cloudflare.Verdict `json:"cloudflare,omitempty"`
	BodyHash      uint32              `json:"body_mmh3"`
	AttemptsUsed  int                 `json:"attempts_used"`
	Outcome       Outcome             `json:"outcome"`
	DurationMS    int64               `json:"duration_ms"`
	Err           string              `json:"error,omitempty"`

	// Body holds the final response body for filter evaluation. Not
	// serialized.
	Body []byte `json:"-"`
	// Attempts holds every request cycle for diagnostics. Not
	// serialized.
	Attempts []Attempt `json:"-"`
}

// Responded reports whether any HTTP response was received at all. The
// only-active mode suppresses results where this is false.
func (r *Result) Responded() bool {
	return r.FinalStatus > 0
}
