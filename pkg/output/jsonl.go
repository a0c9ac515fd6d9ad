package output

import (
	"io"
	"sync"

	"github.com/httpeek/httpeek/pkg/jsonutil"
	"github.com/httpeek/httpeek/pkg/probe"
)

// Compile-time interface check.
var _ Writer = (*JSONLWriter)(nil)

// JSONLOptions configures the JSONL writer behavior.
type JSONLOptions struct {
	// OnlyActive suppresses rows that never received an HTTP response.
	OnlyActive bool

	// Pretty enables indented JSON output.
	// Note: This is not JSONL compliant but useful for debugging.
	Pretty bool
}

// JSONLWriter writes one JSON object per result, newline-delimited.
// Each line parses independently, so jq, grep, and streaming consumers
// can follow a scan in real time. The serialized shape is the result's
// own JSON contract: url, ip, status, title, length, headers, redirect,
// tls, cloudflare, body_mmh3, attempts_used, outcome, duration_ms, and
// error for failed probes.
type JSONLWriter struct {
	w       io.Writer
	mu      sync.Mutex
	opts    JSONLOptions
	encoder *jsonutil.Encoder
}

// NewJSONL creates a JSONL writer targeting w.
// The writer is safe for concurrent use.
func NewJSONL(w io.Writer, opts JSONLOptions) *JSONLWriter {
	encoder := jsonutil.NewStreamEncoder(w)
	if opts.Pretty {
		encoder.SetIndent("", "  ")
	}
	return &JSONLWriter{
		w:       w,
		opts:    opts,
		encoder: encoder,
	}
}

// WriteResult writes one result as a single JSON line.
func (jw *JSONLWriter) WriteResult(res *probe.Result) error {
	if skippable(res, jw.opts.OnlyActive) {
		return nil
	}

	jw.mu.Lock()
	defer jw.mu.Unlock()
	return jw.encoder.Encode(res)
}

// Flush is a no-op; every line is written as it is encoded.
func (jw *JSONLWriter) Flush() error {
	return nil
}

// Close closes the underlying writer when it implements io.Closer.
func (jw *JSONLWriter) Close() error {
	if closer, ok := jw.w.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
