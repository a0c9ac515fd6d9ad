package output

import (
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/httpeek/httpeek/pkg/probe"
)

// Compile-time interface check.
var _ Writer = (*PlainWriter)(nil)

// PlainOptions configures the plain-text writer behavior.
type PlainOptions struct {
	// OnlyActive suppresses rows that never received an HTTP response.
	OnlyActive bool
}

// PlainWriter writes pipe-delimited result lines, one per probe, in
// the shape `url | ip | status | title`. The format is meant for -o
// output files that survive grep and cut, so it carries no color and
// no emoji placeholders.
type PlainWriter struct {
	w    io.Writer
	mu   sync.Mutex
	opts PlainOptions
}

// NewPlain creates a plain-text writer targeting w.
// The writer is safe for concurrent use.
func NewPlain(w io.Writer, opts PlainOptions) *PlainWriter {
	return &PlainWriter{w: w, opts: opts}
}

// WriteResult writes one pipe-delimited line.
func (pw *PlainWriter) WriteResult(res *probe.Result) error {
	if skippable(res, pw.opts.OnlyActive) {
		return nil
	}

	status := "ERR"
	if res.FinalStatus > 0 {
		status = strconv.Itoa(res.FinalStatus)
	}

	title := res.Title
	switch {
	case failed(res):
		title = "ERR: " + res.Err
	case title == "":
		title = "Title not found"
	}

	pw.mu.Lock()
	defer pw.mu.Unlock()

	_, err := fmt.Fprintf(pw.w, "%s | %s | %s | %s\n", res.URL, displayIP(res), status, title)
	return err
}

// Flush is a no-op; lines are written unbuffered.
func (pw *PlainWriter) Flush() error {
	return nil
}

// Close closes the underlying writer when it implements io.Closer.
func (pw *PlainWriter) Close() error {
	if closer, ok := pw.w.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
