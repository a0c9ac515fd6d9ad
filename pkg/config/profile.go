package config

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/httpeek/httpeek/presets"
)

// Profile is a reusable scan configuration loaded from YAML. Pointer
// fields distinguish absent from zero, so a profile only overrides
// what it actually names.
type Profile struct {
	Version string `yaml:"version"`
	Name    string `yaml:"name"`

	Method     *string `yaml:"method"`
	Timeout    *int    `yaml:"timeout"`
	Retries    *int    `yaml:"retries"`
	Threads    *int    `yaml:"threads"`
	NoRedirect *bool   `yaml:"no_redirect"`
	MaxHops    *int    `yaml:"max_hops"`

	Headers     map[string]string `yaml:"headers"`
	UserAgent   *string           `yaml:"user_agent"`
	RandomAgent *bool             `yaml:"random_agent"`
	Proxy       *string           `yaml:"proxy"`
	RateLimit   *int              `yaml:"rate_limit"`
	Insecure    *bool             `yaml:"insecure"`

	SkipFlakyHosts *bool `yaml:"skip_flaky_hosts"`

	MatchStatus   *string `yaml:"match_status"`
	MatchLength   *string `yaml:"match_length"`
	ExcludeStatus *string `yaml:"exclude_status"`
	ExcludeLength *string `yaml:"exclude_length"`
	TitleMatch    *string `yaml:"title_match"`
	BodyMatch     *string `yaml:"body_match"`
	OnlyActive    *bool   `yaml:"only_active"`

	TLSInfo *bool `yaml:"tls_info"`

	Output     *string `yaml:"output"`
	JSON       *bool   `yaml:"json"`
	CSV        *bool   `yaml:"csv"`
	HTMLReport *string `yaml:"html_report"`
	Silent     *bool   `yaml:"silent"`
	NoColor    *bool   `yaml:"no_color"`

	OTelEndpoint *string `yaml:"otel_endpoint"`
	MetricsPort  *int    `yaml:"metrics_port"`
}

// LoadProfile loads and parses a scan profile from the given path.
// Bare names that match no file on disk resolve against the bundled
// presets ("fast", "thorough", "stealth").
// Returns ErrProfileNotFound if neither exists.
// Returns ErrInvalidProfile if the file is malformed.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if bundled, ok := presetBytes(path); ok {
				return ParseProfile(bundled)
			}
			return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, path)
		}
		return nil, fmt.Errorf("reading profile file: %w", err)
	}

	return ParseProfile(data)
}

// presetBytes resolves a bare profile name against the bundled presets.
// Anything with a path separator is a real file reference, not a name.
func presetBytes(name string) ([]byte, bool) {
	if strings.ContainsAny(name, `/\`) {
		return nil, false
	}
	data, err := presets.FS.ReadFile(strings.TrimSuffix(name, ".yaml") + ".yaml")
	if err != nil {
		return nil, false
	}
	return data, true
}

// ParseProfile parses profile YAML data.
// Returns ErrInvalidProfile if the data is malformed.
func ParseProfile(data []byte) (*Profile, error) {
	var profile Profile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}

	// Validate version
	if profile.Version == "" {
		profile.Version = "1.0"
	}

	// Normalize the method before range checks
	if profile.Method != nil {
		m := strings.ToUpper(strings.TrimSpace(*profile.Method))
		if m != http.MethodGet && m != http.MethodHead {
			return nil, fmt.Errorf("%w: method must be GET or HEAD, got %q", ErrInvalidProfile, *profile.Method)
		}
		profile.Method = &m
	}

	if profile.Timeout != nil && *profile.Timeout <= 0 {
		return nil, fmt.Errorf("%w: timeout must be positive, got %d", ErrInvalidProfile, *profile.Timeout)
	}
	if profile.Retries != nil && *profile.Retries < 0 {
		return nil, fmt.Errorf("%w: retries cannot be negative, got %d", ErrInvalidProfile, *profile.Retries)
	}
	if profile.Threads != nil && *profile.Threads < 1 {
		return nil, fmt.Errorf("%w: threads must be at least 1, got %d", ErrInvalidProfile, *profile.Threads)
	}
	if profile.MaxHops != nil && *profile.MaxHops < 0 {
		return nil, fmt.Errorf("%w: max_hops cannot be negative, got %d", ErrInvalidProfile, *profile.MaxHops)
	}
	if profile.RateLimit != nil && *profile.RateLimit < 0 {
		return nil, fmt.Errorf("%w: rate_limit cannot be negative, got %d", ErrInvalidProfile, *profile.RateLimit)
	}
	if profile.MetricsPort != nil && (*profile.MetricsPort < 0 || *profile.MetricsPort > 65535) {
		return nil, fmt.Errorf("%w: metrics_port out of range, got %d", ErrInvalidProfile, *profile.MetricsPort)
	}

	return &profile, nil
}

// String identifies the profile in banner output.
func (p *Profile) String() string {
	if p.Name == "" {
		return "unnamed profile v" + p.Version
	}
	return fmt.Sprintf("%s v%s", p.Name, p.Version)
}
