package input

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// StringSliceFlag implements flag.Value for repeated or comma-separated
// string flags, so -u can be given once with a list or many times.
type StringSliceFlag []string

func (s *StringSliceFlag) String() string {
	return strings.Join(*s, ",")
}

func (s *StringSliceFlag) Set(value string) error {
	for _, v := range strings.Split(value, ",") {
		v = strings.TrimSpace(v)
		if v != "" {
			*s = append(*s, v)
		}
	}
	return nil
}

// HeaderFlag implements flag.Value for repeated -H "Name: value" flags.
type HeaderFlag http.Header

func (h *HeaderFlag) String() string {
	var parts []string
	for name, vals := range http.Header(*h) {
		for _, v := range vals {
			parts = append(parts, name+": "+v)
		}
	}
	sort.Strings(parts)
	return strings.Join(parts, ", ")
}

// Set splits on the first colon, so header values containing colons
// (e.g. data URLs) survive intact.
func (h *HeaderFlag) Set(value string) error {
	name, val, ok := strings.Cut(value, ":")
	if !ok {
		return fmt.Errorf("header %q: want \"Name: value\"", value)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("header %q: empty name", value)
	}
	if *h == nil {
		*h = HeaderFlag{}
	}
	http.Header(*h).Add(name, strings.TrimSpace(val))
	return nil
}

// Header returns the collected headers as a plain http.Header.
func (h *HeaderFlag) Header() http.Header {
	return http.Header(*h)
}
