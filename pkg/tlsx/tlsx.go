// Package tlsx extracts leaf-certificate metadata from live TLS
// endpoints, optionally handshaking with a browser ClientHello so
// fingerprint-sensitive edges serve the same certificate they would
// serve a real client.
package tlsx

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	utls "github.com/refraction-networking/utls"

	"github.com/httpeek/httpeek/pkg/defaults"
	"github.com/httpeek/httpeek/pkg/duration"
	"github.com/httpeek/httpeek/pkg/sockopt"
)

// ErrExtraction indicates the endpoint's certificate metadata could not
// be produced: connection failure, handshake failure, or a malformed or
// incomplete certificate.
var ErrExtraction = errors.New("tlsx: certificate extraction failed")

// Info holds the metadata extracted from a leaf certificate.
type Info struct {
	SubjectCN  string `json:"subject_cn"`
	IssuerCN   string `json:"issuer_cn"`
	NotAfter   string `json:"not_after"` // UTC, RFC 3339
	Expired    bool   `json:"expired"`
	SelfSigned bool   `json:"self_signed"`
}

// Config holds extractor configuration.
type Config struct {
	// Timeout bounds dial plus handshake.
	Timeout time.Duration

	// InsecureSkipVerify accepts self-signed and otherwise invalid
	// chains; metadata collection usually wants the certificate even
	// when verification would fail.
	InsecureSkipVerify bool

	// Impersonate performs the handshake with a Chrome ClientHello.
	Impersonate bool
}

// DefaultConfig returns the standard extractor configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:            duration.TLSHandshake,
		InsecureSkipVerify: true,
	}
}

// Extractor connects to TLS endpoints and reads their leaf certificate.
// Safe for concurrent use.
type Extractor struct {
	timeout     time.Duration
	insecure    bool
	impersonate bool
}

// New creates an extractor, applying defaults for zero-value fields.
func New(cfg Config) *Extractor {
	if cfg.Timeout == 0 {
		cfg.Timeout = duration.TLSHandshake
	}
	return &Extractor{
		timeout:     cfg.Timeout,
		insecure:    cfg.InsecureSkipVerify,
		impersonate: cfg.Impersonate,
	}
}

// Extract handshakes with host:port and returns the leaf certificate's
// metadata. Port 0 means 443. All failures wrap ErrExtraction.
func (e *Extractor) Extract(ctx context.Context, host string, port int) (*Info, error) {
	if port == 0 {
		port = defaults.PortHTTPS
	}
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	leaf, err := e.leafCertificate(ctx, host, addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	return infoFromLeaf(leaf)
}

// FromConnectionState extracts metadata from an already-established
// connection, typically a response's TLS state, avoiding a second
// handshake with the host.
func FromConnectionState(state *tls.ConnectionState) (*Info, error) {
	if state == nil || len(state.PeerCertificates) == 0 {
		return nil, fmt.Errorf("%w: no peer certificates", ErrExtraction)
	}
	return infoFromLeaf(state.PeerCertificates[0])
}

func infoFromLeaf(leaf *x509.Certificate) (*Info, error) {
	subjectCN := leaf.Subject.CommonName
	issuerCN := leaf.Issuer.CommonName
	if subjectCN == "" || issuerCN == "" {
		return nil, fmt.Errorf("%w: certificate missing common name", ErrExtraction)
	}

	return &Info{
		SubjectCN:  subjectCN,
		IssuerCN:   issuerCN,
		NotAfter:   leaf.NotAfter.UTC().Format(time.RFC3339),
		Expired:    time.Now().After(leaf.NotAfter),
		SelfSigned: bytes.Equal(leaf.RawIssuer, leaf.RawSubject),
	}, nil
}

func (e *Extractor) leafCertificate(ctx context.Context, host, addr string) (*x509.Certificate, error) {
	if e.impersonate {
		return e.impersonatedLeaf(ctx, host, addr)
	}

	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: e.timeout, Control: sockopt.DialControl()},
		Config: &tls.Config{
			ServerName:         host,
			InsecureSkipVerify: e.insecure,
		},
	}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	state := conn.(*tls.Conn).ConnectionState()
	if len(state.PeerCertificates) == 0 {
		return nil, errors.New("no peer certificates")
	}
	return state.PeerCertificates[0], nil
}

// impersonatedLeaf handshakes with a Chrome ClientHello via utls.
func (e *Extractor) impersonatedLeaf(ctx context.Context, host, addr string) (*x509.Certificate, error) {
	dialer := &net.Dialer{Timeout: e.timeout}
	raw, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	_ = sockopt.OptimizeConn(raw) // best effort

	conn := utls.UClient(raw, &utls.Config{
		ServerName:         host,
		InsecureSkipVerify: e.insecure,
	}, utls.HelloChrome_120)
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = raw.SetDeadline(deadline)
	} else {
		_ = raw.SetDeadline(time.Now().Add(e.timeout))
	}
	if err := conn.Handshake(); err != nil {
		return nil, fmt.Errorf("handshake: %w", err)
	}
	_ = raw.SetDeadline(time.Time{})

	state := conn.ConnectionState()
	if len(state.PeerCertificates) == 0 {
		return nil, errors.New("no peer certificates")
	}
	return state.PeerCertificates[0], nil
}
