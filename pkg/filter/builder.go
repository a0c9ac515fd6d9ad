package filter

import (
	"fmt"
	"strings"

	"github.com/httpeek/httpeek/pkg/regexcache"
)

// Builder provides a fluent API for assembling a Spec from raw
// command-line specifications, accumulating parse errors along the way.
type Builder struct {
	spec   *Spec
	errors []error
}

// NewBuilder creates an empty spec builder.
func NewBuilder() *Builder {
	return &Builder{spec: &Spec{}}
}

// Status adds positive status-code rules.
// Accepts: "200", "200,301,302", "2xx", "300-399".
func (b *Builder) Status(s string) *Builder {
	if s == "" {
		return b
	}
	rules, err := ParseStatusSpec(s)
	if err != nil {
		b.errors = append(b.errors, fmt.Errorf("status: %w", err))
		return b
	}
	b.spec.Status = append(b.spec.Status, rules...)
	return b
}

// ExcludeStatus adds status-code rules that reject a response even when
// the positive dimensions accept it.
func (b *Builder) ExcludeStatus(s string) *Builder {
	if s == "" {
		return b
	}
	rules, err := ParseStatusSpec(s)
	if err != nil {
		b.errors = append(b.errors, fmt.Errorf("exclude-status: %w", err))
		return b
	}
	b.spec.ExcludeStatus = append(b.spec.ExcludeStatus, rules...)
	return b
}

// Length adds positive content-length rules.
// Accepts: "4096", "0-1024", "4096,8192".
func (b *Builder) Length(s string) *Builder {
	if s == "" {
		return b
	}
	rules, err := ParseLengthSpec(s)
	if err != nil {
		b.errors = append(b.errors, fmt.Errorf("length: %w", err))
		return b
	}
	b.spec.Length = append(b.spec.Length, rules...)
	return b
}

// ExcludeLength adds content-length rules that reject a response even
// when the positive dimensions accept it.
func (b *Builder) ExcludeLength(s string) *Builder {
	if s == "" {
		return b
	}
	rules, err := ParseLengthSpec(s)
	if err != nil {
		b.errors = append(b.errors, fmt.Errorf("exclude-length: %w", err))
		return b
	}
	b.spec.ExcludeLength = append(b.spec.ExcludeLength, rules...)
	return b
}

// TitleMatch sets the regex the extracted page title must match.
func (b *Builder) TitleMatch(pattern string) *Builder {
	if pattern == "" {
		return b
	}
	re, err := regexcache.Get(pattern)
	if err != nil {
		b.errors = append(b.errors, fmt.Errorf("title-match %q: %w", pattern, err))
		return b
	}
	b.spec.TitleRegex = re
	return b
}

// BodyMatch sets the regex the response body must match.
func (b *Builder) BodyMatch(pattern string) *Builder {
	if pattern == "" {
		return b
	}
	re, err := regexcache.Get(pattern)
	if err != nil {
		b.errors = append(b.errors, fmt.Errorf("body-match %q: %w", pattern, err))
		return b
	}
	b.spec.BodyRegex = re
	return b
}

// Build returns the assembled spec and any accumulated errors.
func (b *Builder) Build() (*Spec, error) {
	if len(b.errors) > 0 {
		var errStrs []string
		for _, e := range b.errors {
			errStrs = append(errStrs, e.Error())
		}
		return b.spec, fmt.Errorf("filter spec errors: %s", strings.Join(errStrs, "; "))
	}
	return b.spec, nil
}
