package output

import (
	"encoding/csv"
	"io"
	"strconv"
	"sync"

	"github.com/httpeek/httpeek/pkg/probe"
)

// Compile-time interface check.
var _ Writer = (*CSVWriter)(nil)

// UTF-8 BOM for Excel compatibility.
const utf8BOM = "\xEF\xBB\xBF"

// csvColumns is the exported row shape. Status is empty for probes
// that never got a response; their title column carries the error
// marker instead.
var csvColumns = []string{"url", "ip", "status", "length", "title"}

// CSVOptions configures the CSV writer behavior.
type CSVOptions struct {
	// Header includes a column-name row before the first record.
	Header bool

	// Delimiter sets the field delimiter character.
	// Default is comma when zero value.
	Delimiter rune

	// ExcelCompatible adds a UTF-8 BOM so Excel renders Unicode titles.
	ExcelCompatible bool

	// SanitizeFormulas prevents CSV injection by prefixing dangerous
	// leading characters (= + - @ TAB CR) with a quote.
	SanitizeFormulas bool

	// TruncateAt limits the title field length (0 = no limit).
	TruncateAt int

	// OnlyActive suppresses rows that never received an HTTP response.
	OnlyActive bool
}

// CSVWriter writes one RFC 4180 record per result, suitable for Excel,
// pandas, and database imports. Titles keep their raw extracted text;
// terminal decoration never leaks into exports.
type CSVWriter struct {
	w         io.Writer
	csvWriter *csv.Writer
	mu        sync.Mutex
	opts      CSVOptions
	headerErr error
}

// NewCSV creates a CSV writer targeting w.
// The writer is safe for concurrent use.
func NewCSV(w io.Writer, opts CSVOptions) *CSVWriter {
	if opts.ExcelCompatible {
		_, _ = w.Write([]byte(utf8BOM))
	}

	csvWriter := csv.NewWriter(w)
	if opts.Delimiter != 0 {
		csvWriter.Comma = opts.Delimiter
	}

	cw := &CSVWriter{
		w:         w,
		csvWriter: csvWriter,
		opts:      opts,
	}
	if opts.Header {
		cw.headerErr = csvWriter.Write(csvColumns)
	}
	return cw
}

// WriteResult writes one result record.
func (cw *CSVWriter) WriteResult(res *probe.Result) error {
	if skippable(res, cw.opts.OnlyActive) {
		return nil
	}

	cw.mu.Lock()
	defer cw.mu.Unlock()

	if cw.headerErr != nil {
		return cw.headerErr
	}

	title := res.Title
	if failed(res) {
		title = "ERR: " + res.Err
	}
	if cw.opts.SanitizeFormulas {
		title = sanitizeForCSV(title)
	}
	if cw.opts.TruncateAt > 0 {
		title = truncateField(title, cw.opts.TruncateAt)
	}

	status := ""
	if res.FinalStatus > 0 {
		status = strconv.Itoa(res.FinalStatus)
	}

	record := []string{
		res.URL,
		displayIP(res),
		status,
		strconv.FormatInt(res.ContentLength, 10),
		title,
	}
	return cw.csvWriter.Write(record)
}

// Flush writes any buffered records to the underlying writer.
func (cw *CSVWriter) Flush() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	cw.csvWriter.Flush()
	return cw.csvWriter.Error()
}

// Close flushes buffered records and closes the underlying writer when
// it implements io.Closer.
func (cw *CSVWriter) Close() error {
	if err := cw.Flush(); err != nil {
		return err
	}
	if closer, ok := cw.w.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// sanitizeForCSV prevents CSV injection by prefixing dangerous
// characters. This stops formula execution when a hostile page title
// lands in a spreadsheet.
func sanitizeForCSV(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}

// truncateField truncates a field to the specified rune length.
func truncateField(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen > 3 {
		return string(runes[:maxLen-3]) + "..."
	}
	return string(runes[:maxLen])
}
