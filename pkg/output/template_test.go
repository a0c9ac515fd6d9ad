package output

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/httpeek/httpeek/pkg/cloudflare"
	"github.com/httpeek/httpeek/pkg/probe"
)

func TestTemplateWriter_BuiltInReport(t *testing.T) {
	buf := &bytes.Buffer{}
	w, err := NewTemplate(buf, TemplateConfig{BuiltIn: "report"})
	if err != nil {
		t.Fatalf("failed to create writer: %v", err)
	}

	ok := makeResult("https://example.com", 200)
	redirected := makeResult("http://old.example", 301)
	redirected.Redirect = &probe.RedirectSummary{HopCount: 1, FinalHost: "new.example"}
	behindCF := makeResult("https://cf.example", 403)
	behindCF.Cloudflare = &cloudflare.Verdict{Likely: true, Evidence: []string{"cf-ray header"}}
	down := makeFailedResult("https://down.example", probe.OutcomeTransientExhausted, "connection refused")

	for _, res := range []*probe.Result{ok, redirected, behindCF, down} {
		if err := w.WriteResult(res); err != nil {
			t.Fatalf("write failed: %v", err)
		}
	}

	w.SetSummary("scan-20260822-0001", 3*time.Second)
	if err := w.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "<!DOCTYPE html>") {
		t.Error("report should be a full HTML document")
	}
	if !strings.Contains(out, "scan-20260822-0001") {
		t.Error("report missing scan ID from SetSummary")
	}
	for _, url := range []string{"https://example.com", "http://old.example", "https://cf.example", "https://down.example"} {
		if !strings.Contains(out, url) {
			t.Errorf("report missing row for %s", url)
		}
	}
	if !strings.Contains(out, "connection refused") {
		t.Error("report missing failure marker")
	}
	if !strings.Contains(out, `<span class="cf">CF</span>`) {
		t.Error("report missing Cloudflare badge")
	}
	if !strings.Contains(out, "new.example") {
		t.Error("report missing redirect final host")
	}
}

func TestTemplateWriter_EscapesHTMLInTitles(t *testing.T) {
	buf := &bytes.Buffer{}
	w, err := NewTemplate(buf, TemplateConfig{BuiltIn: "report"})
	if err != nil {
		t.Fatalf("failed to create writer: %v", err)
	}

	res := makeResult("https://xss.example", 200)
	res.Title = `<script>alert("pwn")</script>`
	if err := w.WriteResult(res); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	out := buf.String()
	if strings.Contains(out, `<script>alert`) {
		t.Error("raw script tag leaked into the report")
	}
	if !strings.Contains(out, "&lt;script&gt;") {
		t.Error("title should be HTML-escaped")
	}
}

func TestTemplateWriter_BuiltInTextSummary(t *testing.T) {
	buf := &bytes.Buffer{}
	w, err := NewTemplate(buf, TemplateConfig{BuiltIn: "text-summary"})
	if err != nil {
		t.Fatalf("failed to create writer: %v", err)
	}

	w.WriteResult(makeResult("https://a.example", 200))
	w.WriteResult(makeResult("https://b.example", 404))
	w.WriteResult(makeFailedResult("https://c.example", probe.OutcomeFatalError, "no such host"))
	if err := w.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Total Probes: 3") {
		t.Errorf("summary missing total, got:\n%s", out)
	}
	if !strings.Contains(out, "OK: 2") {
		t.Errorf("summary missing success count, got:\n%s", out)
	}
	if !strings.Contains(out, "Errors: 1") {
		t.Errorf("summary missing error count, got:\n%s", out)
	}
	if !strings.Contains(out, "2xx: 1") || !strings.Contains(out, "4xx: 1") {
		t.Errorf("summary missing status breakdown, got:\n%s", out)
	}
}

func TestTemplateWriter_InlineTemplate(t *testing.T) {
	buf := &bytes.Buffer{}
	w, err := NewTemplate(buf, TemplateConfig{
		TemplateString: `probed={{ .Total }} ok={{ .Succeeded }}{{ range .Results }} {{ .URL }}{{ end }}`,
	})
	if err != nil {
		t.Fatalf("failed to create writer: %v", err)
	}

	w.WriteResult(makeResult("https://example.com", 200))
	if err := w.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	want := "probed=1 ok=1 https://example.com"
	if buf.String() != want {
		t.Errorf("rendered = %q, want %q", buf.String(), want)
	}
}

func TestTemplateWriter_TemplateFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.tmpl")
	if err := os.WriteFile(path, []byte(`{{ .Tool }}:{{ .Total }}`), 0o644); err != nil {
		t.Fatalf("write template file: %v", err)
	}

	buf := &bytes.Buffer{}
	w, err := NewTemplate(buf, TemplateConfig{TemplatePath: path})
	if err != nil {
		t.Fatalf("failed to create writer: %v", err)
	}

	w.WriteResult(makeResult("https://example.com", 200))
	if err := w.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	if !strings.Contains(buf.String(), ":1") {
		t.Errorf("rendered = %q, want tool name and count", buf.String())
	}
}

func TestTemplateWriter_Errors(t *testing.T) {
	t.Run("unknown built-in", func(t *testing.T) {
		_, err := NewTemplate(&bytes.Buffer{}, TemplateConfig{BuiltIn: "nonexistent"})
		if err == nil {
			t.Error("expected error for unknown built-in template")
		}
	})

	t.Run("no template specified", func(t *testing.T) {
		_, err := NewTemplate(&bytes.Buffer{}, TemplateConfig{})
		if err == nil {
			t.Error("expected error when no template source is set")
		}
	})

	t.Run("invalid template syntax", func(t *testing.T) {
		_, err := NewTemplate(&bytes.Buffer{}, TemplateConfig{TemplateString: `{{ .Unclosed`})
		if err == nil {
			t.Error("expected parse error for invalid template")
		}
	})

	t.Run("missing template file", func(t *testing.T) {
		_, err := NewTemplate(&bytes.Buffer{}, TemplateConfig{TemplatePath: "/nonexistent/report.tmpl"})
		if err == nil {
			t.Error("expected error for missing template file")
		}
	})
}

func TestTemplateWriter_SuppressionRules(t *testing.T) {
	buf := &bytes.Buffer{}
	w, err := NewTemplate(buf, TemplateConfig{TemplateString: `{{ .Total }}`, OnlyActive: true})
	if err != nil {
		t.Fatalf("failed to create writer: %v", err)
	}

	w.WriteResult(makeResult("https://up.example", 200))
	w.WriteResult(makeFilteredResult("https://filtered.example"))
	w.WriteResult(makeFailedResult("https://down.example", probe.OutcomeFatalError, "no such host"))
	if err := w.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	if buf.String() != "1" {
		t.Errorf("total = %q, want 1 (filtered and unresponsive excluded)", buf.String())
	}
}

func TestTemplateWriter_FailureRowsSortLast(t *testing.T) {
	buf := &bytes.Buffer{}
	w, err := NewTemplate(buf, TemplateConfig{
		TemplateString: `{{ range .Results }}{{ .URL }} {{ end }}`,
	})
	if err != nil {
		t.Fatalf("failed to create writer: %v", err)
	}

	w.WriteResult(makeFailedResult("https://aaa-down.example", probe.OutcomeTransientExhausted, "timeout"))
	w.WriteResult(makeResult("https://zzz-up.example", 200))
	if err := w.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	out := buf.String()
	upIdx := strings.Index(out, "zzz-up")
	downIdx := strings.Index(out, "aaa-down")
	if upIdx < 0 || downIdx < 0 {
		t.Fatalf("rows missing: %q", out)
	}
	if upIdx > downIdx {
		t.Errorf("responsive row should sort before failures: %q", out)
	}
}

func TestStatusClass(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{200, "status-2xx"},
		{204, "status-2xx"},
		{301, "status-3xx"},
		{404, "status-4xx"},
		{503, "status-5xx"},
		{0, "status-err"},
		{999, "status-err"},
	}
	for _, tt := range tests {
		if got := tmplStatusClass(tt.status); got != tt.want {
			t.Errorf("tmplStatusClass(%d) = %q, want %q", tt.status, got, tt.want)
		}
	}
}
