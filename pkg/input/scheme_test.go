package input

import (
	"context"
	"errors"
	"net"
	"strconv"
	"testing"
)

type nopConn struct {
	net.Conn
}

func (nopConn) Close() error { return nil }

// portDialer fakes a network where only the given ports accept.
func portDialer(calls *[]string, openPorts ...int) func(ctx context.Context, network, addr string) (net.Conn, error) {
	open := make(map[string]bool)
	for _, p := range openPorts {
		open[strconv.Itoa(p)] = true
	}
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		*calls = append(*calls, addr)
		_, port, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, err
		}
		if open[port] {
			return nopConn{}, nil
		}
		return nil, errors.New("connection refused")
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		openPorts []int
		want      string
		wantDials int
	}{
		{
			name:      "explicit https untouched",
			input:     "https://example.com/x",
			openPorts: nil,
			want:      "https://example.com/x",
			wantDials: 0,
		},
		{
			name:      "explicit http untouched",
			input:     "http://example.com",
			want:      "http://example.com",
			wantDials: 0,
		},
		{
			name:      "443 open means https",
			input:     "example.com",
			openPorts: []int{443},
			want:      "https://example.com",
			wantDials: 1,
		},
		{
			name:      "only 80 open means http",
			input:     "example.com",
			openPorts: []int{80},
			want:      "http://example.com",
			wantDials: 2,
		},
		{
			name:      "nothing open falls back to http",
			input:     "example.com",
			openPorts: nil,
			want:      "http://example.com",
			wantDials: 2,
		},
		{
			name:      "path survives sniffing",
			input:     "example.com/admin?x=1",
			openPorts: []int{443},
			want:      "https://example.com/admin?x=1",
			wantDials: 1,
		},
		{
			name:      "explicit 443 port decided without dial",
			input:     "example.com:443",
			want:      "https://example.com:443",
			wantDials: 0,
		},
		{
			name:      "explicit custom port decided without dial",
			input:     "example.com:8080/x",
			want:      "http://example.com:8080/x",
			wantDials: 0,
		},
		{
			name:      "ipv6 with port",
			input:     "[::1]:8443",
			want:      "http://[::1]:8443",
			wantDials: 0,
		},
		{
			name:      "whitespace trimmed",
			input:     "  example.com  ",
			openPorts: []int{443},
			want:      "https://example.com",
			wantDials: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls []string
			n := &Normalizer{dial: portDialer(&calls, tt.openPorts...)}

			got := n.Normalize(context.Background(), tt.input)

			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if len(calls) != tt.wantDials {
				t.Errorf("dial count = %d (%v), want %d", len(calls), calls, tt.wantDials)
			}
		})
	}
}

func TestNormalizeSniffsCorrectAddress(t *testing.T) {
	var calls []string
	n := &Normalizer{dial: portDialer(&calls, 443)}

	n.Normalize(context.Background(), "example.com/deep/path")

	if len(calls) != 1 || calls[0] != "example.com:443" {
		t.Errorf("dialed %v, want [example.com:443]", calls)
	}
}

func TestNewNormalizerHasDialer(t *testing.T) {
	n := NewNormalizer()
	if n.dial == nil {
		t.Fatal("NewNormalizer returned nil dialer")
	}
	if n.DialTimeout == 0 {
		t.Fatal("NewNormalizer returned zero timeout")
	}
}
