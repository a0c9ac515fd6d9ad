// Package output renders probe results to their destinations: the
// terminal, JSONL and CSV streams, plain append files, and the HTML
// report. Every writer consumes results in completion order and is safe
// for concurrent use.
//
// Filtered-out results never render. Failed probes always do, carrying
// an explicit error marker, unless only-active mode drops rows that got
// no HTTP response at all.
package output

import (
	"errors"

	"github.com/httpeek/httpeek/pkg/probe"
)

// Writer consumes probe results and renders them to a destination.
// WriteResult may be called from the scan engine's collector; Flush
// drains any buffering and Close releases the destination.
type Writer interface {
	WriteResult(res *probe.Result) error
	Flush() error
	Close() error
}

// skippable reports whether res is withheld from output under the
// shared suppression rules.
func skippable(res *probe.Result, onlyActive bool) bool {
	if res.Outcome == probe.OutcomeFilteredOut {
		return true
	}
	return onlyActive && !res.Responded()
}

// displayIP returns the IP column value; probes that never resolved
// show a dash.
func displayIP(res *probe.Result) string {
	if res.IP == "" {
		return "-"
	}
	return res.IP
}

// failed reports whether res ended without a usable response.
func failed(res *probe.Result) bool {
	return res.Outcome == probe.OutcomeTransientExhausted || res.Outcome == probe.OutcomeFatalError
}

// Multi fans every call out to a group of writers. Errors from the
// group are joined so one broken destination never starves the others.
type Multi struct {
	writers []Writer
}

// NewMulti creates a writer group. A nil or empty group is valid and
// discards everything.
func NewMulti(writers ...Writer) *Multi {
	return &Multi{writers: writers}
}

// Add appends a writer to the group.
func (m *Multi) Add(w Writer) {
	m.writers = append(m.writers, w)
}

// WriteResult delivers res to every writer in the group.
func (m *Multi) WriteResult(res *probe.Result) error {
	var errs []error
	for i := 0; i < len(m.writers); i++ {
		if err := m.writers[i].WriteResult(res); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Flush flushes every writer in the group.
func (m *Multi) Flush() error {
	var errs []error
	for i := 0; i < len(m.writers); i++ {
		if err := m.writers[i].Flush(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every writer in the group.
func (m *Multi) Close() error {
	var errs []error
	for i := 0; i < len(m.writers); i++ {
		if err := m.writers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Compile-time interface check.
var _ Writer = (*Multi)(nil)
