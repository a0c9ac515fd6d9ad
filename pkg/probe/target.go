package probe

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/httpeek/httpeek/pkg/defaults"
)

// ErrMalformedTarget indicates an input line that cannot be turned into
// a probeable target. It is never retried.
var ErrMalformedTarget = errors.New("probe: malformed target")

// Target is a single normalized origin+path to probe. Immutable;
// consumed by exactly one probe invocation.
type Target struct {
	Scheme   string `json:"scheme"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Path     string `json:"path"`
	RawInput string `json:"raw_input"`
}

// ParseTarget normalizes one input line into a Target. Inputs without a
// scheme default to http; root and empty paths become "/"; other paths
// are left untouched. Query strings stay attached to the path.
func ParseTarget(raw string) (Target, error) {
	input := strings.TrimSpace(raw)
	if input == "" {
		return Target{}, fmt.Errorf("%w: empty input", ErrMalformedTarget)
	}
	if len(input) > defaults.MaxURLLength {
		return Target{}, fmt.Errorf("%w: input exceeds %d bytes", ErrMalformedTarget, defaults.MaxURLLength)
	}

	if !strings.HasPrefix(input, "http://") && !strings.HasPrefix(input, "https://") {
		input = "http://" + input
	}

	u, err := url.Parse(input)
	if err != nil {
		return Target{}, fmt.Errorf("%w: %v", ErrMalformedTarget, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Target{}, fmt.Errorf("%w: unsupported scheme %q", ErrMalformedTarget, u.Scheme)
	}
	if u.Hostname() == "" {
		return Target{}, fmt.Errorf("%w: no host in %q", ErrMalformedTarget, raw)
	}

	port := defaults.PortHTTP
	if u.Scheme == "https" {
		port = defaults.PortHTTPS
	}
	if p := u.Port(); p != "" {
		parsed, err := strconv.Atoi(p)
		if err != nil || parsed < 1 || parsed > 65535 {
			return Target{}, fmt.Errorf("%w: bad port %q", ErrMalformedTarget, p)
		}
		port = parsed
	}

	path := u.RequestURI()
	if path == "" {
		path = "/"
	}

	return Target{
		Scheme:   u.Scheme,
		Host:     strings.ToLower(u.Hostname()),
		Port:     port,
		Path:     path,
		RawInput: strings.TrimSpace(raw),
	}, nil
}

// URL reassembles the target into a request URL, omitting the port when
// it is the scheme default.
func (t Target) URL() string {
	host := t.Host
	if strings.Contains(host, ":") {
		// IPv6 literal
		host = "[" + host + "]"
	}
	if !t.isDefaultPort() {
		host = host + ":" + strconv.Itoa(t.Port)
	}
	return t.Scheme + "://" + host + t.Path
}

// Secure reports whether the target uses TLS.
func (t Target) Secure() bool {
	return t.Scheme == "https"
}

func (t Target) isDefaultPort() bool {
	switch t.Scheme {
	case "https":
		return t.Port == defaults.PortHTTPS
	default:
		return t.Port == defaults.PortHTTP
	}
}
