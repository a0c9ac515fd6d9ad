// Package filter implements matching of probe responses against
// status-code, content-length, and regex specifications.
// Modeled after ffuf's and httpx's filter/matcher systems.
package filter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// RuleKind identifies how a rule compares its operand.
type RuleKind int

const (
	// RuleExact matches a single value ("200", "4096").
	RuleExact RuleKind = iota
	// RuleRange matches an inclusive range ("300-399", "0-1024").
	RuleRange
	// RuleClass matches a whole status class ("2xx" = 200-299).
	RuleClass
)

// StatusRule is one parsed accept-rule from a status specification.
// Rules are closed variants evaluated by kind, never re-parsed per response.
type StatusRule struct {
	Kind RuleKind
	Lo   int // exact value, range lower bound, or class digit
	Hi   int // range upper bound, unused otherwise
}

// Matches reports whether the status code satisfies this rule.
func (r StatusRule) Matches(code int) bool {
	switch r.Kind {
	case RuleExact:
		return code == r.Lo
	case RuleRange:
		return code >= r.Lo && code <= r.Hi
	case RuleClass:
		return code/100 == r.Lo
	}
	return false
}

// String renders the rule back in specification syntax.
func (r StatusRule) String() string {
	switch r.Kind {
	case RuleRange:
		return fmt.Sprintf("%d-%d", r.Lo, r.Hi)
	case RuleClass:
		return fmt.Sprintf("%dxx", r.Lo)
	default:
		return strconv.Itoa(r.Lo)
	}
}

// LengthRule is one parsed accept-rule from a content-length specification.
type LengthRule struct {
	Kind RuleKind // RuleExact or RuleRange
	Lo   int64
	Hi   int64
}

// Matches reports whether the byte count satisfies this rule.
func (r LengthRule) Matches(n int64) bool {
	if r.Kind == RuleRange {
		return n >= r.Lo && n <= r.Hi
	}
	return n == r.Lo
}

// String renders the rule back in specification syntax.
func (r LengthRule) String() string {
	if r.Kind == RuleRange {
		return fmt.Sprintf("%d-%d", r.Lo, r.Hi)
	}
	return strconv.FormatInt(r.Lo, 10)
}

// Spec holds every configured filter dimension. Dimensions combine with
// AND: a response must satisfy all configured positive dimensions and no
// exclusion. Rules within one dimension combine with OR. An empty
// dimension accepts everything.
type Spec struct {
	Status        []StatusRule
	ExcludeStatus []StatusRule
	Length        []LengthRule
	ExcludeLength []LengthRule
	TitleRegex    *regexp.Regexp
	BodyRegex     *regexp.Regexp
}

// Response holds the response data needed for a filtering decision.
type Response struct {
	StatusCode    int
	ContentLength int64
	Title         string
	Body          []byte
}

// IsEmpty reports whether no dimension is configured at all.
func (s *Spec) IsEmpty() bool {
	return len(s.Status) == 0 &&
		len(s.ExcludeStatus) == 0 &&
		len(s.Length) == 0 &&
		len(s.ExcludeLength) == 0 &&
		s.TitleRegex == nil &&
		s.BodyRegex == nil
}

// Matches evaluates the response against the spec. It is a pure
// function: no I/O, no state, same inputs always yield the same answer.
func (s *Spec) Matches(resp *Response) bool {
	if resp == nil {
		return false
	}

	if len(s.Status) > 0 && !anyStatus(s.Status, resp.StatusCode) {
		return false
	}
	if len(s.Length) > 0 && !anyLength(s.Length, resp.ContentLength) {
		return false
	}

	// Regex dimensions never match when the field is absent.
	if s.TitleRegex != nil {
		if resp.Title == "" || !s.TitleRegex.MatchString(resp.Title) {
			return false
		}
	}
	if s.BodyRegex != nil {
		if len(resp.Body) == 0 || !s.BodyRegex.Match(resp.Body) {
			return false
		}
	}

	// Exclusions run last and override the positive dimensions.
	if anyStatus(s.ExcludeStatus, resp.StatusCode) {
		return false
	}
	if anyLength(s.ExcludeLength, resp.ContentLength) {
		return false
	}

	return true
}

func anyStatus(rules []StatusRule, code int) bool {
	for _, r := range rules {
		if r.Matches(code) {
			return true
		}
	}
	return false
}

func anyLength(rules []LengthRule, n int64) bool {
	for _, r := range rules {
		if r.Matches(n) {
			return true
		}
	}
	return false
}

// ParseStatusSpec parses a status-code specification into typed rules.
// Supports: "200", "200,301,302", "2xx", "300-399", and combinations
// like "2xx,301-302,404".
func ParseStatusSpec(s string) ([]StatusRule, error) {
	var rules []StatusRule
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		// Class shorthand like "2xx"
		if strings.HasSuffix(part, "xx") {
			class, err := strconv.Atoi(strings.TrimSuffix(part, "xx"))
			if err != nil || class < 1 || class > 5 {
				return nil, fmt.Errorf("invalid status class %q", part)
			}
			rules = append(rules, StatusRule{Kind: RuleClass, Lo: class})
			continue
		}

		// Range like "300-399"
		if strings.Contains(part, "-") {
			lo, hi, err := parseIntRange(part)
			if err != nil {
				return nil, fmt.Errorf("invalid status range %q: %w", part, err)
			}
			rules = append(rules, StatusRule{Kind: RuleRange, Lo: lo, Hi: hi})
			continue
		}

		val, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid status code %q: %w", part, err)
		}
		rules = append(rules, StatusRule{Kind: RuleExact, Lo: val})
	}
	return rules, nil
}

// ParseLengthSpec parses a content-length specification into typed rules.
// Supports: "4096", "0-1024", and comma-separated combinations.
func ParseLengthSpec(s string) ([]LengthRule, error) {
	var rules []LengthRule
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if strings.Contains(part, "-") {
			lo, hi, err := parseIntRange(part)
			if err != nil {
				return nil, fmt.Errorf("invalid length range %q: %w", part, err)
			}
			rules = append(rules, LengthRule{Kind: RuleRange, Lo: int64(lo), Hi: int64(hi)})
			continue
		}

		val, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid length %q: %w", part, err)
		}
		rules = append(rules, LengthRule{Kind: RuleExact, Lo: val})
	}
	return rules, nil
}

func parseIntRange(s string) (int, int, error) {
	parts := strings.SplitN(s, "-", 2)
	lo, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, err
	}
	hi, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, err
	}
	if lo > hi {
		return 0, 0, fmt.Errorf("lower bound %d above upper bound %d", lo, hi)
	}
	return lo, hi, nil
}
