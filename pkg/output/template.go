package output

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"os"
	"sort"
	"sync"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"

	"github.com/httpeek/httpeek/pkg/defaults"
	"github.com/httpeek/httpeek/pkg/jsonutil"
	"github.com/httpeek/httpeek/pkg/probe"
	"github.com/httpeek/httpeek/pkg/ui"
	"github.com/httpeek/httpeek/templates"
)

// Compile-time interface check.
var _ Writer = (*TemplateWriter)(nil)

// TemplateConfig configures the template writer.
type TemplateConfig struct {
	// TemplatePath is the path to a custom template file.
	TemplatePath string

	// TemplateString is an inline template string (alternative to TemplatePath).
	TemplateString string

	// BuiltIn is the name of a built-in template: "report", "text-summary".
	BuiltIn string

	// OnlyActive suppresses rows that never received an HTTP response.
	OnlyActive bool
}

// builtInTemplateFiles maps built-in template names to their bundled
// files under templates/.
var builtInTemplateFiles = map[string]string{
	"report":       "report.html.tmpl",
	"text-summary": "text-summary.tmpl",
}

// TemplateWriter renders buffered results through a Go template.
// It holds every result in memory and renders the template on Close,
// so the document sees the full scan. Sprig functions plus a few
// report helpers are available in templates.
type TemplateWriter struct {
	w         io.Writer
	mu        sync.Mutex
	config    TemplateConfig
	tmpl      *template.Template
	results   []*probe.Result
	scanID    string
	elapsed   time.Duration
	startTime time.Time
}

// NewTemplate creates a template writer targeting w.
// It parses the template immediately and returns an error if the
// template is invalid.
func NewTemplate(w io.Writer, config TemplateConfig) (*TemplateWriter, error) {
	tw := &TemplateWriter{
		w:         w,
		config:    config,
		results:   make([]*probe.Result, 0),
		startTime: time.Now(),
	}

	if err := tw.parseTemplate(); err != nil {
		return nil, fmt.Errorf("template parse error: %w", err)
	}

	return tw, nil
}

// parseTemplate parses the template from config (path, string, or built-in).
func (tw *TemplateWriter) parseTemplate() error {
	var templateContent string

	switch {
	case tw.config.TemplatePath != "":
		content, err := os.ReadFile(tw.config.TemplatePath)
		if err != nil {
			return fmt.Errorf("failed to read template file: %w", err)
		}
		templateContent = string(content)

	case tw.config.TemplateString != "":
		templateContent = tw.config.TemplateString

	case tw.config.BuiltIn != "":
		file, ok := builtInTemplateFiles[tw.config.BuiltIn]
		if !ok {
			return fmt.Errorf("unknown built-in template: %s (available: report, text-summary)", tw.config.BuiltIn)
		}
		content, err := templates.FS.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read built-in template %s: %w", tw.config.BuiltIn, err)
		}
		templateContent = string(content)

	default:
		return fmt.Errorf("no template specified: set TemplatePath, TemplateString, or BuiltIn")
	}

	funcMap := sprig.TxtFuncMap()
	funcMap["escapeHTML"] = html.EscapeString
	funcMap["statusClass"] = tmplStatusClass
	funcMap["json"] = tmplToJSON
	funcMap["prettyJSON"] = tmplPrettyJSON

	tmpl, err := template.New("httpeek").Funcs(funcMap).Parse(templateContent)
	if err != nil {
		return fmt.Errorf("parse output template: %w", err)
	}

	tw.tmpl = tmpl
	return nil
}

// SetSummary records run metadata for the rendered document. Call it
// after the scan finishes, before Close.
func (tw *TemplateWriter) SetSummary(scanID string, elapsed time.Duration) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	tw.scanID = scanID
	tw.elapsed = elapsed
}

// WriteResult buffers a result for later template rendering.
func (tw *TemplateWriter) WriteResult(res *probe.Result) error {
	if skippable(res, tw.config.OnlyActive) {
		return nil
	}

	tw.mu.Lock()
	defer tw.mu.Unlock()
	tw.results = append(tw.results, res)
	return nil
}

// Flush is a no-op; the document renders as a whole on Close.
func (tw *TemplateWriter) Flush() error {
	return nil
}

// Close renders the template with all buffered results and writes the
// document to the output.
func (tw *TemplateWriter) Close() error {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	data := tw.buildTemplateData()

	var buf bytes.Buffer
	if err := tw.tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("template execution error: %w", err)
	}

	if _, err := tw.w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write error: %w", err)
	}

	if closer, ok := tw.w.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// tmplData holds all data available to templates.
type tmplData struct {
	Tool      string
	Version   string
	ScanID    string
	Timestamp string
	Duration  float64

	Results []*tmplRow

	Total            int
	Responded        int
	Succeeded        int
	Unreachable      int
	Errored          int
	CloudflareCount  int
	ExpiredCertCount int

	StatusCounts map[string]int
}

// tmplRow is a flattened view of a probe result for easier template
// access; nested optional structs become plain fields.
type tmplRow struct {
	URL        string
	IP         string
	Status     int
	Title      string
	Length     int64
	Outcome    string
	DurationMS int64
	Err        string

	Cloudflare bool
	Hops       int
	FinalHost  string

	TLSSubject string
	TLSIssuer  string
	TLSExpired bool
}

// buildTemplateData constructs the data object for template rendering.
func (tw *TemplateWriter) buildTemplateData() *tmplData {
	data := &tmplData{
		Tool:         defaults.ToolName,
		Version:      ui.Version,
		ScanID:       tw.scanID,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		Results:      make([]*tmplRow, 0, len(tw.results)),
		StatusCounts: make(map[string]int),
	}

	if tw.elapsed > 0 {
		data.Duration = tw.elapsed.Seconds()
	} else {
		data.Duration = time.Since(tw.startTime).Seconds()
	}

	for _, res := range tw.results {
		row := &tmplRow{
			URL:        res.URL,
			IP:         displayIP(res),
			Status:     res.FinalStatus,
			Title:      res.Title,
			Length:     res.ContentLength,
			Outcome:    string(res.Outcome),
			DurationMS: res.DurationMS,
		}
		if failed(res) {
			row.Err = res.Err
		}
		if res.Cloudflare != nil && res.Cloudflare.Likely {
			row.Cloudflare = true
			data.CloudflareCount++
		}
		if res.Redirect != nil {
			row.Hops = res.Redirect.HopCount
			row.FinalHost = res.Redirect.FinalHost
		}
		if res.TLS != nil {
			row.TLSSubject = res.TLS.SubjectCN
			row.TLSIssuer = res.TLS.IssuerCN
			row.TLSExpired = res.TLS.Expired
			if res.TLS.Expired {
				data.ExpiredCertCount++
			}
		}
		data.Results = append(data.Results, row)

		switch res.Outcome {
		case probe.OutcomeSuccess:
			data.Succeeded++
		case probe.OutcomeTransientExhausted:
			data.Unreachable++
		case probe.OutcomeFatalError:
			data.Errored++
		}
		if res.Responded() {
			data.Responded++
			if res.FinalStatus >= 100 && res.FinalStatus < 600 {
				data.StatusCounts[fmt.Sprintf("%dxx", res.FinalStatus/100)]++
			}
		}
	}
	data.Total = len(tw.results)

	// Same ordering as the final console table: status class first,
	// URL second, failures last.
	sort.Slice(data.Results, func(i, j int) bool {
		bi, bj := tmplStatusBucket(data.Results[i].Status), tmplStatusBucket(data.Results[j].Status)
		if bi != bj {
			return bi < bj
		}
		return data.Results[i].URL < data.Results[j].URL
	})

	return data
}

func tmplStatusBucket(status int) int {
	if status <= 0 {
		return 9
	}
	return status / 100
}

// tmplStatusClass returns a CSS class name for a status code bucket.
func tmplStatusClass(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "status-2xx"
	case status >= 300 && status < 400:
		return "status-3xx"
	case status >= 400 && status < 500:
		return "status-4xx"
	case status >= 500 && status < 600:
		return "status-5xx"
	default:
		return "status-err"
	}
}

// tmplToJSON converts a value to a JSON string.
func tmplToJSON(v interface{}) string {
	b, err := jsonutil.Marshal(v)
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return string(b)
}

// tmplPrettyJSON converts a value to a formatted JSON string.
func tmplPrettyJSON(v interface{}) string {
	b, err := jsonutil.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return string(b)
}
