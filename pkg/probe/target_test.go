package probe

import (
	"errors"
	"strings"
	"testing"

	"github.com/httpeek/httpeek/pkg/defaults"
)

func TestParseTarget(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Target
	}{
		{
			name:  "bare host defaults to http root",
			input: "example.com",
			want:  Target{Scheme: "http", Host: "example.com", Port: 80, Path: "/", RawInput: "example.com"},
		},
		{
			name:  "https with path and query",
			input: "https://Example.COM/a/b?x=1",
			want:  Target{Scheme: "https", Host: "example.com", Port: 443, Path: "/a/b?x=1", RawInput: "https://Example.COM/a/b?x=1"},
		},
		{
			name:  "explicit port kept",
			input: "http://example.com:8080/x",
			want:  Target{Scheme: "http", Host: "example.com", Port: 8080, Path: "/x", RawInput: "http://example.com:8080/x"},
		},
		{
			name:  "surrounding whitespace trimmed",
			input: "  example.com/login  ",
			want:  Target{Scheme: "http", Host: "example.com", Port: 80, Path: "/login", RawInput: "example.com/login"},
		},
		{
			name:  "https default port",
			input: "https://example.com",
			want:  Target{Scheme: "https", Host: "example.com", Port: 443, Path: "/", RawInput: "https://example.com"},
		},
		{
			name:  "ipv6 literal with port",
			input: "http://[::1]:8080/x",
			want:  Target{Scheme: "http", Host: "::1", Port: 8080, Path: "/x", RawInput: "http://[::1]:8080/x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTarget(tt.input)
			if err != nil {
				t.Fatalf("ParseTarget(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseTarget(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseTargetErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "whitespace only", input: "   "},
		{name: "too long", input: "http://example.com/" + strings.Repeat("a", defaults.MaxURLLength)},
		{name: "unclosed ipv6 bracket", input: "http://[::1:80/"},
		{name: "port out of range", input: "http://example.com:99999/"},
		{name: "port zero", input: "http://example.com:0/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTarget(tt.input)
			if err == nil {
				t.Fatalf("ParseTarget(%q) expected error", tt.input)
			}
			if !errors.Is(err, ErrMalformedTarget) {
				t.Errorf("ParseTarget(%q) error = %v, want ErrMalformedTarget", tt.input, err)
			}
		})
	}
}

func TestTargetURL(t *testing.T) {
	tests := []struct {
		name   string
		target Target
		want   string
	}{
		{
			name:   "default http port omitted",
			target: Target{Scheme: "http", Host: "example.com", Port: 80, Path: "/"},
			want:   "http://example.com/",
		},
		{
			name:   "default https port omitted",
			target: Target{Scheme: "https", Host: "example.com", Port: 443, Path: "/login"},
			want:   "https://example.com/login",
		},
		{
			name:   "non-default port kept",
			target: Target{Scheme: "http", Host: "example.com", Port: 8080, Path: "/"},
			want:   "http://example.com:8080/",
		},
		{
			name:   "ipv6 host bracketed",
			target: Target{Scheme: "http", Host: "::1", Port: 8080, Path: "/"},
			want:   "http://[::1]:8080/",
		},
		{
			name:   "query survives round trip",
			target: Target{Scheme: "https", Host: "example.com", Port: 443, Path: "/a?x=1&y=2"},
			want:   "https://example.com/a?x=1&y=2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.target.URL(); got != tt.want {
				t.Errorf("URL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTargetSecure(t *testing.T) {
	if (Target{Scheme: "http"}).Secure() {
		t.Error("http target reported secure")
	}
	if !(Target{Scheme: "https"}).Secure() {
		t.Error("https target not reported secure")
	}
}

func TestParseTargetRoundTrip(t *testing.T) {
	target, err := ParseTarget("https://example.com:8443/admin?from=1")
	if err != nil {
		t.Fatal(err)
	}
	if got := target.URL(); got != "https://example.com:8443/admin?from=1" {
		t.Errorf("URL() = %q", got)
	}
}
