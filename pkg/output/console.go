package output

import (
	"fmt"
	"io"
	"sync"

	"github.com/httpeek/httpeek/pkg/probe"
	"github.com/httpeek/httpeek/pkg/ui"
)

// Compile-time interface check.
var _ Writer = (*ConsoleWriter)(nil)

// ConsoleOptions configures terminal rendering.
type ConsoleOptions struct {
	// OnlyActive suppresses rows that never received an HTTP response.
	OnlyActive bool

	// FinalTable buffers rows and renders one status-sorted table on
	// Close instead of streaming each row as it completes.
	FinalTable bool
}

// ConsoleWriter renders results for humans: colored columns, decorated
// titles, and the redirect chain summary. In live mode each result
// prints as soon as it completes; in final-table mode the rows render
// sorted by status class once the batch finishes.
type ConsoleWriter struct {
	w     io.Writer
	mu    sync.Mutex
	opts  ConsoleOptions
	table *ui.ResultsTable
}

// NewConsole creates a console writer targeting w, usually stdout.
func NewConsole(w io.Writer, opts ConsoleOptions) *ConsoleWriter {
	cw := &ConsoleWriter{w: w, opts: opts}
	if opts.FinalTable {
		cw.table = ui.NewResultsTable()
	}
	return cw
}

// WriteResult renders or buffers one result row.
func (cw *ConsoleWriter) WriteResult(res *probe.Result) error {
	if skippable(res, cw.opts.OnlyActive) {
		return nil
	}
	row := rowFromResult(res)

	cw.mu.Lock()
	defer cw.mu.Unlock()

	if cw.table != nil {
		cw.table.Append(row)
		return nil
	}
	_, err := fmt.Fprintln(cw.w, ui.FormatResultRow(row))
	return err
}

// Flush is a no-op for live mode; buffered rows render on Close.
func (cw *ConsoleWriter) Flush() error {
	return nil
}

// Close renders the buffered table when final-table mode is active.
func (cw *ConsoleWriter) Close() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if cw.table != nil && cw.table.Len() > 0 {
		cw.table.Render(cw.w)
	}
	if closer, ok := cw.w.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// rowFromResult maps a probe result onto the terminal row view. Title
// decoration (Cloudflare labels, the not-found placeholder) happens in
// the ui layer so exporters keep the raw title.
func rowFromResult(res *probe.Result) ui.ResultRow {
	row := ui.ResultRow{
		URL:      res.URL,
		IP:       displayIP(res),
		Status:   res.FinalStatus,
		Title:    res.Title,
		Redirect: redirectLabel(res.Redirect),
	}
	if res.Cloudflare != nil && res.Cloudflare.Likely {
		row.Cloudflare = true
	}
	if failed(res) {
		row.Err = res.Err
	}
	return row
}

// redirectLabel renders a followed chain as "→ 2 • final.example.com".
// ASCII terminals get "-> 2 * final.example.com".
func redirectLabel(sum *probe.RedirectSummary) string {
	if sum == nil || sum.HopCount == 0 {
		return ""
	}
	return fmt.Sprintf("%s %d %s %s", ui.Icon("→", "->"), sum.HopCount, ui.Icon("•", "*"), sum.FinalHost)
}
