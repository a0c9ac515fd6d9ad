package ui

import (
	"fmt"
	"io"
	"math"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// OutputMode determines how the live progress is displayed
type OutputMode int

const (
	// OutputModeInteractive - animated single-line display with ANSI erase codes
	OutputModeInteractive OutputMode = iota
	// OutputModeStreaming - periodic plain status lines for CI and log files
	OutputModeStreaming
	// OutputModeSilent - no progress output
	OutputModeSilent
)

// DefaultOutputMode returns Interactive when stderr is a terminal,
// Streaming otherwise. Redirected stderr must never receive ANSI codes.
func DefaultOutputMode() OutputMode {
	if StderrIsTerminal() {
		return OutputModeInteractive
	}
	return OutputModeStreaming
}

// ProgressConfig holds progress display settings
type ProgressConfig struct {
	Total          int
	Mode           OutputMode
	Writer         io.Writer     // defaults to os.Stderr
	Interval       time.Duration // interactive redraw interval
	StreamInterval time.Duration // streaming line interval
}

// Progress is a live display of scan counters. Counter updates are
// atomic; Start and Stop manage the render goroutine.
type Progress struct {
	config    ProgressConfig
	spinner   Spinner
	startTime time.Time
	current   int64

	// Stats counters
	succeeded   int64
	filtered    int64
	unreachable int64
	errored     int64

	// Control
	done    chan struct{}
	mu      sync.Mutex
	running bool
}

// NewProgress creates a new progress display
func NewProgress(config ProgressConfig) *Progress {
	spinner := DefaultSpinner()
	if config.Writer == nil {
		config.Writer = os.Stderr
	}
	if config.Interval <= 0 {
		config.Interval = spinner.Interval
	}
	if config.StreamInterval <= 0 {
		config.StreamInterval = 5 * time.Second
	}
	return &Progress{
		config:    config,
		spinner:   spinner,
		startTime: time.Now(),
		done:      make(chan struct{}),
	}
}

// Start begins the progress display
func (p *Progress) Start() {
	if p.config.Mode == OutputModeSilent {
		return
	}

	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.startTime = time.Now()
	p.mu.Unlock()

	go p.renderLoop()
}

// Stop halts the progress display
func (p *Progress) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		close(p.done)
		p.running = false
		if p.config.Mode == OutputModeInteractive {
			p.render(p.spinner.Frames[0])
			fmt.Fprintln(p.config.Writer)
		}
	}
}

// Increment records one completed probe under its outcome
func (p *Progress) Increment(outcome string) {
	atomic.AddInt64(&p.current, 1)

	switch outcome {
	case "success":
		atomic.AddInt64(&p.succeeded, 1)
	case "filtered_out":
		atomic.AddInt64(&p.filtered, 1)
	case "transient_failure_exhausted":
		atomic.AddInt64(&p.unreachable, 1)
	case "fatal_error":
		atomic.AddInt64(&p.errored, 1)
	}
}

// GetStats returns current statistics
func (p *Progress) GetStats() (succeeded, filtered, unreachable, errored int64) {
	return atomic.LoadInt64(&p.succeeded),
		atomic.LoadInt64(&p.filtered),
		atomic.LoadInt64(&p.unreachable),
		atomic.LoadInt64(&p.errored)
}

// renderLoop redraws the display until Stop is called
func (p *Progress) renderLoop() {
	interval := p.config.Interval
	if p.config.Mode == OutputModeStreaming {
		interval = p.config.StreamInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	frameIdx := 0
	for {
		select {
		case <-ticker.C:
			if p.config.Mode == OutputModeStreaming {
				p.renderStream()
				continue
			}
			frameIdx = (frameIdx + 1) % len(p.spinner.Frames)
			p.render(p.spinner.Frames[frameIdx])
		case <-p.done:
			if p.config.Mode == OutputModeStreaming {
				p.renderStream()
			}
			return
		}
	}
}

func (p *Progress) snapshot() (current, total int64, percent, rps float64, eta time.Duration) {
	current = atomic.LoadInt64(&p.current)
	total = int64(p.config.Total)
	elapsed := time.Since(p.startTime)

	percent = float64(current) / float64(total) * 100
	if math.IsNaN(percent) || math.IsInf(percent, 0) {
		percent = 0
	}

	rps = float64(current) / elapsed.Seconds()
	if math.IsNaN(rps) || math.IsInf(rps, 0) {
		rps = 0
	}

	if current > 0 && current < total && rps > 0 {
		remaining := total - current
		eta = time.Duration(float64(remaining) / rps * float64(time.Second))
	}
	return current, total, percent, rps, eta
}

// render draws the interactive single-line display
//
// [/] [00:42] [ 63.0%] | Probed: 63/100 | OK: 41 | Filtered: 9 | Unreachable: 8 | Errors: 5 | RPS: 12.3 | ETA: 00:25
func (p *Progress) render(frame string) {
	current, total, percent, rps, eta := p.snapshot()
	succeeded, filtered, unreachable, errored := p.GetStats()

	// Clear line
	fmt.Fprint(p.config.Writer, "\033[2K\r")

	fmt.Fprintf(p.config.Writer, "[%s] [%s] [%s] %s Probed: %s/%d %s OK: %s %s Filtered: %s %s Unreachable: %s %s Errors: %s %s RPS: %s %s ETA: %s",
		SpinnerStyle.Render(frame),
		StatValueStyle.Render(formatDuration(time.Since(p.startTime))),
		StatValueStyle.Render(fmt.Sprintf("%5.1f%%", percent)),
		BracketStyle.Render("|"),
		StatValueStyle.Render(fmt.Sprintf("%d", current)),
		total,
		BracketStyle.Render("|"),
		SuccessStyle.Render(fmt.Sprintf("%d", succeeded)),
		BracketStyle.Render("|"),
		FilteredStyle.Render(fmt.Sprintf("%d", filtered)),
		BracketStyle.Render("|"),
		TransientStyle.Render(fmt.Sprintf("%d", unreachable)),
		BracketStyle.Render("|"),
		FatalStyle.Render(fmt.Sprintf("%d", errored)),
		BracketStyle.Render("|"),
		StatValueStyle.Render(fmt.Sprintf("%.1f", rps)),
		BracketStyle.Render("|"),
		StatLabelStyle.Render(formatDuration(eta)),
	)
}

// renderStream prints one plain status line, safe for redirected output
func (p *Progress) renderStream() {
	current, total, percent, rps, eta := p.snapshot()
	succeeded, filtered, unreachable, errored := p.GetStats()

	fmt.Fprintf(p.config.Writer, "progress: %d/%d (%.1f%%) ok=%d filtered=%d unreachable=%d errors=%d rps=%.1f eta=%s\n",
		current, total, percent,
		succeeded, filtered, unreachable, errored,
		rps, formatDuration(eta),
	)
}

// formatDuration formats a duration as MM:SS or HH:MM:SS
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// PrintRunSummary prints the end-of-scan stats line to stderr
func PrintRunSummary(total int64, elapsed time.Duration, succeeded, filtered, unreachable, errored int64) {
	if IsSilent() {
		return
	}

	rps := float64(total) / elapsed.Seconds()
	if math.IsNaN(rps) || math.IsInf(rps, 0) {
		rps = 0
	}

	fmt.Fprintf(os.Stderr, "\n%s Probed: %s %s OK: %s %s Filtered: %s %s Unreachable: %s %s Errors: %s %s %s @ %s RPS\n",
		SuccessStyle.Render("[DONE]"),
		StatValueStyle.Render(fmt.Sprintf("%d", total)),
		BracketStyle.Render("|"),
		SuccessStyle.Render(fmt.Sprintf("%d", succeeded)),
		BracketStyle.Render("|"),
		FilteredStyle.Render(fmt.Sprintf("%d", filtered)),
		BracketStyle.Render("|"),
		TransientStyle.Render(fmt.Sprintf("%d", unreachable)),
		BracketStyle.Render("|"),
		FatalStyle.Render(fmt.Sprintf("%d", errored)),
		BracketStyle.Render("|"),
		StatLabelStyle.Render(formatDuration(elapsed)),
		StatValueStyle.Render(fmt.Sprintf("%.1f", rps)),
	)
}
