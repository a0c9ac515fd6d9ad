package input

import (
	"context"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/httpeek/httpeek/pkg/defaults"
	"github.com/httpeek/httpeek/pkg/duration"
)

// Normalizer decides the scheme for schemeless targets by probing TCP
// reachability: an open 443 means https, otherwise an open 80 means
// http. Hosts with neither port open default to http so the probe
// itself gets to report the failure.
type Normalizer struct {
	// DialTimeout bounds each sniffing dial (default: 2s).
	DialTimeout time.Duration

	dial func(ctx context.Context, network, addr string) (net.Conn, error)
}

// NewNormalizer returns a Normalizer backed by a real dialer.
func NewNormalizer() *Normalizer {
	d := &net.Dialer{}
	return &Normalizer{
		DialTimeout: duration.SchemeProbeDial,
		dial:        d.DialContext,
	}
}

// Normalize returns raw with a scheme attached. Targets that already
// carry http:// or https:// pass through untouched, and targets with an
// explicit port are decided by the port alone, no dial: 443 means
// https, anything else http.
func (n *Normalizer) Normalize(ctx context.Context, raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}

	hostport, _, _ := strings.Cut(raw, "/")
	host, port, err := net.SplitHostPort(hostport)
	if err != nil {
		host = strings.Trim(hostport, "[]")
		port = ""
	}

	if port != "" {
		if port == strconv.Itoa(defaults.PortHTTPS) {
			return "https://" + raw
		}
		return "http://" + raw
	}

	if n.reachable(ctx, host, defaults.PortHTTPS) {
		return "https://" + raw
	}
	if n.reachable(ctx, host, defaults.PortHTTP) {
		return "http://" + raw
	}
	return "http://" + raw
}

func (n *Normalizer) reachable(ctx context.Context, host string, port int) bool {
	timeout := n.DialTimeout
	if timeout == 0 {
		timeout = duration.SchemeProbeDial
	}
	dial := n.dial
	if dial == nil {
		dial = (&net.Dialer{}).DialContext
	}

	dctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, err := dial(dctx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
