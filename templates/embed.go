// Package templates embeds the bundled report templates for distribution.
//
// This ensures the built-in report formats are available regardless of
// installation method (Homebrew, Scoop, Docker, or manual download). The
// template writer reads these when asked for a built-in report by name.
//
// Usage:
//
//	fs := templates.FS
//	data, _ := fs.ReadFile("report.html.tmpl")
package templates

import "embed"

// FS contains all bundled report template files.
//
//go:embed *.tmpl
var FS embed.FS
