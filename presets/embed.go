// Package presets embeds the bundled scan profiles for distribution.
//
// This ensures the stock profiles are available regardless of
// installation method (Homebrew, Scoop, Docker, or manual download).
// Profile loading falls back to these when a bare profile name does not
// match a file on disk.
//
// Usage:
//
//	fs := presets.FS
//	data, _ := fs.ReadFile("fast.yaml")
package presets

import "embed"

// FS contains all bundled scan profile YAML files. Each file tunes the
// probing engine for a scan posture: fast, thorough, or stealth.
//
//go:embed *.yaml
var FS embed.FS
