package ui

import "time"

// Spinner holds spinner animation frames
type Spinner struct {
	Frames   []string
	Interval time.Duration
}

var (
	spinnerDots = Spinner{
		Frames:   []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		Interval: 80 * time.Millisecond,
	}
	spinnerLine = Spinner{
		Frames:   []string{"-", "\\", "|", "/"},
		Interval: 100 * time.Millisecond,
	}
)

// DefaultSpinner returns a braille-dot spinner on Unicode terminals,
// the ASCII line spinner otherwise.
func DefaultSpinner() Spinner {
	if UnicodeTerminal() {
		return spinnerDots
	}
	return spinnerLine
}
