package ui

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/common-nighthawk/go-figure"
	"github.com/muesli/termenv"

	"github.com/httpeek/httpeek/pkg/defaults"
)

// Version information - these can be overridden at build time via ldflags:
// go build -ldflags "-X github.com/httpeek/httpeek/pkg/ui.Version=1.0.2"
var (
	Version   = defaults.Version
	BuildDate = "2026-08-22"
	Commit    = "dev"
)

const (
	Author  = "Bayqus"
	Website = "https://github.com/httpeek/httpeek"
)

// Global UI state
var (
	silentMode  bool
	noColorMode bool
	uiMu        sync.RWMutex
)

// SetSilent enables or disables silent mode (suppresses banner and
// other stderr decoration; result rows still print)
func SetSilent(silent bool) {
	uiMu.Lock()
	defer uiMu.Unlock()
	silentMode = silent
}

// IsSilent returns whether silent mode is enabled
func IsSilent() bool {
	uiMu.RLock()
	defer uiMu.RUnlock()
	return silentMode
}

// SetNoColor disables colored output
func SetNoColor(noColor bool) {
	uiMu.Lock()
	defer uiMu.Unlock()
	noColorMode = noColor
	if noColor {
		// Use ASCII profile to disable colors
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// IsNoColor returns whether color is disabled
func IsNoColor() bool {
	uiMu.RLock()
	defer uiMu.RUnlock()
	return noColorMode
}

// bannerFont is the figlet font for the startup banner
const bannerFont = "doom"

// Separator line, same width as the rendered banner
const bannerSeparator = "__________________________________________________________"

// bannerLines renders the tool name in figlet letters
func bannerLines() []string {
	return figure.NewFigure(defaults.ToolName, bannerFont, true).Slicify()
}

// PrintBanner prints the application banner to stderr. Each line is
// split down the middle, blue on the left and red on the right.
func PrintBanner() {
	if IsSilent() {
		return
	}
	for _, line := range bannerLines() {
		if strings.TrimSpace(line) == "" {
			continue
		}
		mid := len(line) / 2
		fmt.Fprintln(os.Stderr, BannerStyle.Render(line[:mid])+BannerAccentStyle.Render(line[mid:]))
	}
	fmt.Fprintf(os.Stderr, " %s %s%s   %s\n",
		CreditLabelStyle.Render("Coded by"),
		CreditNameStyle.Render(Author),
		Icon(" 🦉", ""),
		VersionStyle.Render("version "+Version),
	)
	fmt.Fprintf(os.Stderr, "%s\n", BannerAccentStyle.Render(bannerSeparator))
}

// PrintVersion prints the one-line version string to stdout, for
// scripts and -version.
func PrintVersion() {
	fmt.Printf("%s %s (built %s, commit %s)\n", defaults.ToolName, Version, BuildDate, Commit)
}

// printOption prints a configuration option in ffuf/nuclei style
// Format:  :: Option              : Value
func printOption(name, value string) {
	fmt.Fprintf(os.Stderr, " :: %s : %s\n", ConfigLabelStyle.Render(fmt.Sprintf("%-20s", name)), ConfigValueStyle.Render(value))
}

// PrintConfigBanner prints the effective settings before the scan
// starts, in a fixed order so runs are easy to compare.
func PrintConfigBanner(options map[string]string) {
	if IsSilent() {
		return
	}

	order := []string{
		"Target", "Target List", "Method", "Threads", "Timeout", "Retries",
		"Proxy", "User-Agent", "Match Codes", "Exclude Codes",
		"Match Length", "Exclude Length", "Title Match", "Body Match",
		"Rate Limit", "Max Hops", "Output", "Format", "TLS Info",
	}

	printed := make(map[string]bool)
	for _, name := range order {
		if value, ok := options[name]; ok && value != "" {
			printOption(name, value)
			printed[name] = true
		}
	}

	// Anything the caller added beyond the known keys
	for name, value := range options {
		if !printed[name] && value != "" {
			printOption(name, value)
		}
	}

	fmt.Fprintf(os.Stderr, "%s\n\n", DividerStyle.Render(bannerSeparator))
}

// PrintDivider prints a stylized divider (to stderr)
func PrintDivider() {
	fmt.Fprintln(os.Stderr, DividerStyle.Render(strings.Repeat("-", 58)))
}

// PrintHelp prints contextual help (to stderr like ffuf/nuclei)
func PrintHelp(text string) {
	if IsSilent() {
		return
	}
	fmt.Fprintln(os.Stderr, HelpStyle.Render(SanitizeString("  [i] "+text)))
}

// PrintSuccess prints a success message (to stderr)
func PrintSuccess(message string) {
	if IsSilent() {
		return
	}
	fmt.Fprintln(os.Stderr, SuccessStyle.Render(SanitizeString("  [+] "+message)))
}

// PrintError prints an error message (to stderr). Not gated on silent
// mode: errors must surface even in silent runs.
func PrintError(message string) {
	fmt.Fprintln(os.Stderr, FatalStyle.Render(SanitizeString("  [X] "+message)))
}

// PrintWarning prints a warning message (to stderr)
func PrintWarning(message string) {
	if IsSilent() {
		return
	}
	fmt.Fprintln(os.Stderr, TransientStyle.Render(SanitizeString("  [!] "+message)))
}

// PrintInfo prints an info message (to stderr)
func PrintInfo(message string) {
	if IsSilent() {
		return
	}
	fmt.Fprintf(os.Stderr, "  %s %s\n", SpinnerStyle.Render("*"), SanitizeString(message))
}
