package ui

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/httpeek/httpeek/pkg/defaults"
)

// TestVersion checks version constants
func TestVersion(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if Version != defaults.Version {
		t.Errorf("Version = %q, want defaults.Version %q", Version, defaults.Version)
	}
	if BuildDate == "" {
		t.Error("BuildDate should not be empty")
	}
	if Author == "" {
		t.Error("Author should not be empty")
	}
}

// TestSilentMode tests the silent mode toggle
func TestSilentMode(t *testing.T) {
	defer SetSilent(false)

	SetSilent(true)
	if !IsSilent() {
		t.Error("expected IsSilent() true after SetSilent(true)")
	}

	SetSilent(false)
	if IsSilent() {
		t.Error("expected IsSilent() false after SetSilent(false)")
	}
}

// TestSilentModeConcurrent ensures the global toggles are race-safe
func TestSilentModeConcurrent(t *testing.T) {
	defer SetSilent(false)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(v bool) {
			defer wg.Done()
			SetSilent(v)
		}(i%2 == 0)
		go func() {
			defer wg.Done()
			_ = IsSilent()
		}()
	}
	wg.Wait()
}

// TestBannerLines verifies the figlet rendering produces output
func TestBannerLines(t *testing.T) {
	lines := bannerLines()
	if len(lines) == 0 {
		t.Fatal("bannerLines returned no lines")
	}

	nonEmpty := 0
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			nonEmpty++
		}
	}
	if nonEmpty == 0 {
		t.Error("banner rendered entirely blank")
	}
}

// TestNewProgressDefaults tests progress creation defaults
func TestNewProgressDefaults(t *testing.T) {
	p := NewProgress(ProgressConfig{Total: 50})

	if p.config.Writer == nil {
		t.Error("expected default writer to be set")
	}
	if p.config.Interval <= 0 {
		t.Error("expected default interval to be positive")
	}
	if p.config.StreamInterval <= 0 {
		t.Error("expected default stream interval to be positive")
	}
	if p.config.Total != 50 {
		t.Errorf("expected Total 50, got %d", p.config.Total)
	}
}

// TestProgressIncrement tests outcome counter bookkeeping
func TestProgressIncrement(t *testing.T) {
	p := NewProgress(ProgressConfig{Total: 10, Mode: OutputModeSilent})

	p.Increment("success")
	p.Increment("success")
	p.Increment("filtered_out")
	p.Increment("transient_failure_exhausted")
	p.Increment("fatal_error")
	p.Increment("no_such_outcome")

	succeeded, filtered, unreachable, errored := p.GetStats()
	if succeeded != 2 {
		t.Errorf("succeeded = %d, want 2", succeeded)
	}
	if filtered != 1 {
		t.Errorf("filtered = %d, want 1", filtered)
	}
	if unreachable != 1 {
		t.Errorf("unreachable = %d, want 1", unreachable)
	}
	if errored != 1 {
		t.Errorf("errored = %d, want 1", errored)
	}
}

// TestProgressStartStop verifies the lifecycle is idempotent
func TestProgressStartStop(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(ProgressConfig{
		Total:          5,
		Mode:           OutputModeStreaming,
		Writer:         &buf,
		StreamInterval: 10 * time.Millisecond,
	})

	p.Start()
	p.Start() // second start is a no-op

	for i := 0; i < 5; i++ {
		p.Increment("success")
	}
	time.Sleep(30 * time.Millisecond)

	p.Stop()
	p.Stop() // second stop must not panic

	out := buf.String()
	if !strings.Contains(out, "progress:") {
		t.Errorf("streaming output missing status lines: %q", out)
	}
	if !strings.Contains(out, "ok=5") {
		t.Errorf("streaming output missing counters: %q", out)
	}
}

// TestProgressSilentMode verifies no output in silent mode
func TestProgressSilentMode(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(ProgressConfig{
		Total:          5,
		Mode:           OutputModeSilent,
		Writer:         &buf,
		StreamInterval: 5 * time.Millisecond,
	})

	p.Start()
	p.Increment("success")
	time.Sleep(20 * time.Millisecond)
	p.Stop()

	if buf.Len() != 0 {
		t.Errorf("silent progress wrote %d bytes: %q", buf.Len(), buf.String())
	}
}

// TestDefaultOutputMode verifies the piped-stderr downgrade
func TestDefaultOutputMode(t *testing.T) {
	mode := DefaultOutputMode()
	if StderrIsTerminal() {
		if mode != OutputModeInteractive {
			t.Errorf("DefaultOutputMode() = %d on a terminal, want interactive", mode)
		}
	} else {
		if mode != OutputModeStreaming {
			t.Errorf("DefaultOutputMode() = %d when piped, want streaming", mode)
		}
	}
}

// TestFormatDuration tests duration formatting
func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00"},
		{42 * time.Second, "00:42"},
		{90 * time.Second, "01:30"},
		{61 * time.Minute, "01:01:00"},
		{2*time.Hour + 3*time.Minute + 4*time.Second, "02:03:04"},
	}

	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

// TestStatusCodeStyleBuckets verifies each class maps to its color
func TestStatusCodeStyleBuckets(t *testing.T) {
	tests := []struct {
		code int
		want lipgloss.TerminalColor
	}{
		{200, Status2xx},
		{299, Status2xx},
		{301, Status3xx},
		{404, Status4xx},
		{503, Status5xx},
		{0, Muted},
		{700, Muted},
	}

	for _, tt := range tests {
		if got := StatusCodeStyle(tt.code).GetForeground(); got != tt.want {
			t.Errorf("StatusCodeStyle(%d) foreground = %v, want %v", tt.code, got, tt.want)
		}
	}
}

// TestOutcomeStyle exercises each outcome mapping
func TestOutcomeStyle(t *testing.T) {
	outcomes := []string{
		"success",
		"filtered_out",
		"transient_failure_exhausted",
		"fatal_error",
		"unknown",
	}
	for _, o := range outcomes {
		// Must not panic and must produce a usable style.
		_ = OutcomeStyle(o).Render(o)
	}
}

// TestPrintConfigBanner exercises the config banner without error
func TestPrintConfigBanner(t *testing.T) {
	SetSilent(false)
	defer SetSilent(false)

	PrintConfigBanner(map[string]string{
		"Target":  "https://example.com",
		"Method":  "GET",
		"Threads": "50",
		"Custom":  "value",
		"Empty":   "",
	})
}
