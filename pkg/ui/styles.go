package ui

import "github.com/charmbracelet/lipgloss"

// ANSI escape codes for simple terminal output (CLI commands)
const (
	Reset   = "\033[0m"
	Bold    = "\033[1m"
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"
	BoldRed = "\033[1;31m"
)

// Color palette
var (
	// Brand colors - the banner renders half blue, half red
	Primary = lipgloss.Color("#4D96FF") // Blue
	Accent  = lipgloss.Color("#FF3838") // Red

	// Status colors
	Success = lipgloss.Color("#00D26A") // Bright green
	Warning = lipgloss.Color("#FFB800") // Amber
	Error   = lipgloss.Color("#FF3838") // Red
	Muted   = lipgloss.Color("#6B7280") // Gray

	// HTTP status code colors
	Status2xx = lipgloss.Color("#00D26A") // Green
	Status3xx = lipgloss.Color("#FFD93D") // Yellow
	Status4xx = lipgloss.Color("#FF6B6B") // Red
	Status5xx = lipgloss.Color("#FF0000") // Bright red

	// Result column colors
	URLColor      = lipgloss.Color("#00D4AA") // Cyan
	IPColor       = lipgloss.Color("#C77DFF") // Magenta
	RedirectColor = lipgloss.Color("#4D96FF") // Blue

	// Cloudflare-fronted hosts
	Cloudflare = lipgloss.Color("#00E5FF") // Bright cyan
)

// Pre-configured styles
var (
	// Banner halves
	BannerStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	BannerAccentStyle = lipgloss.NewStyle().
				Foreground(Accent).
				Bold(true)

	// Version badge
	VersionStyle = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	// Banner credit line
	CreditLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#00D4AA")).
				Bold(true)

	CreditNameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD93D")).
			Bold(true)

	// Configuration display
	ConfigLabelStyle = lipgloss.NewStyle().
				Foreground(Muted)

	ConfigValueStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FAFAFA"))

	// Progress bar
	ProgressFullStyle = lipgloss.NewStyle().
				Foreground(Primary)

	ProgressEmptyStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#3B3B4F"))

	// Statistics
	StatLabelStyle = lipgloss.NewStyle().
			Foreground(Muted)

	StatValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Bold(true)

	// Bracketed metadata
	BracketStyle = lipgloss.NewStyle().
			Foreground(Muted)

	// Result table columns
	URLStyle = lipgloss.NewStyle().
			Foreground(URLColor)

	IPStyle = lipgloss.NewStyle().
		Foreground(IPColor)

	TitleStyle = lipgloss.NewStyle().
			Bold(true)

	RedirectStyle = lipgloss.NewStyle().
			Foreground(RedirectColor)

	CloudflareStyle = lipgloss.NewStyle().
			Foreground(Cloudflare)

	// Failed probes
	ErrStyle = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	// Outcome styles
	SuccessStyle = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	FilteredStyle = lipgloss.NewStyle().
			Foreground(Muted).
			Bold(true)

	TransientStyle = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true)

	FatalStyle = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	// Divider
	DividerStyle = lipgloss.NewStyle().
			Foreground(Muted)

	// Help/footer
	HelpStyle = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true)

	// Spinner frames
	SpinnerStyle = lipgloss.NewStyle().
			Foreground(Primary)
)

// StatusCodeStyle returns the appropriate style for HTTP status codes.
// A zero code means the probe never got a response.
func StatusCodeStyle(code int) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)
	switch {
	case code >= 200 && code < 300:
		return base.Foreground(Status2xx)
	case code >= 300 && code < 400:
		return base.Foreground(Status3xx)
	case code >= 400 && code < 500:
		return base.Foreground(Status4xx)
	case code >= 500 && code < 600:
		return base.Foreground(Status5xx)
	default:
		return base.Foreground(Muted)
	}
}

// OutcomeStyle returns the appropriate style for probe outcomes
func OutcomeStyle(outcome string) lipgloss.Style {
	switch outcome {
	case "success":
		return SuccessStyle
	case "filtered_out":
		return FilteredStyle
	case "transient_failure_exhausted":
		return TransientStyle
	case "fatal_error":
		return FatalStyle
	default:
		return lipgloss.NewStyle().Foreground(Muted)
	}
}
