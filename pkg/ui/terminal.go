package ui

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"golang.org/x/term"
)

var (
	unicodeOnce sync.Once
	unicodeOK   bool
)

// StdoutIsTerminal reports whether stdout is attached to a terminal.
// Result rows lose their colors when piped, so callers should consult
// this before styling output.
func StdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// StderrIsTerminal reports whether stderr is attached to a terminal.
// Progress rendering uses ANSI erase codes that garble redirected logs,
// so the live display is only drawn when this returns true.
func StderrIsTerminal() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}

// UnicodeTerminal reports whether stderr can render Unicode glyphs
// (braille spinners, emoji). Returns false when output is piped,
// redirected, TERM is "dumb", or on Windows without Windows Terminal.
//
// Legacy Windows consoles cannot render braille or emoji even with the
// UTF-8 code page active because their fonts lack those glyphs. Windows
// Terminal (detected via WT_SESSION) handles them correctly.
func UnicodeTerminal() bool {
	unicodeOnce.Do(func() {
		if os.Getenv("TERM") == "dumb" {
			return
		}
		if !term.IsTerminal(int(os.Stderr.Fd())) {
			return
		}
		if runtime.GOOS == "windows" {
			unicodeOK = os.Getenv("WT_SESSION") != ""
			return
		}
		unicodeOK = true
	})
	return unicodeOK
}

// TerminalWidth returns the column count of stdout, or fallback when
// stdout is not a terminal or its size cannot be determined.
func TerminalWidth(fallback int) int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return fallback
	}
	return w
}

// Icon returns unicode when the terminal supports it, ascii otherwise.
// Use at every call site that renders emoji or special characters:
// ui.Icon("✅", "[+]")
func Icon(unicode, ascii string) string {
	if UnicodeTerminal() {
		return unicode
	}
	return ascii
}

// SanitizeString strips emoji and multi-byte Unicode symbols from s
// when the terminal cannot render them. On Unicode-capable terminals,
// returns s unchanged.
//
// Print helpers apply this automatically so callers can embed emoji
// without wrapping each one in Icon().
func SanitizeString(s string) string {
	if UnicodeTerminal() {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r < 0x80:
			b.WriteByte(s[i])
		case isVariationSelector(r):
			// Variation selectors (U+FE00-U+FE0F) - drop silently
		case isSafeForLegacy(r):
			b.WriteRune(r)
		default:
			// Emoji, braille, block chars, symbols - drop
		}
		i += size
	}
	return b.String()
}

// Sanitizef formats a string and sanitizes it for the current terminal.
// Drop-in replacement for fmt.Sprintf when the result goes to the terminal.
func Sanitizef(format string, args ...interface{}) string {
	return SanitizeString(fmt.Sprintf(format, args...))
}

// Fprintf writes to w with terminal-appropriate sanitization.
// Drop-in replacement for fmt.Fprintf when output may contain emoji.
func Fprintf(w io.Writer, format string, args ...interface{}) {
	fmt.Fprint(w, Sanitizef(format, args...))
}

// isVariationSelector returns true for Unicode variation selectors
// that modify the preceding character's display (e.g., U+FE0F emoji style).
func isVariationSelector(r rune) bool {
	return r >= 0xFE00 && r <= 0xFE0F
}

// isSafeForLegacy returns true for runes that legacy Windows consoles
// can typically render: Latin scripts and common punctuation. Excludes
// emoji, braille, box-drawing, and block elements that need modern
// font support.
func isSafeForLegacy(r rune) bool {
	if r <= 0xFF {
		// Latin-1 Supplement - accented letters, common symbols
		return true
	}
	return unicode.Is(unicode.Latin, r)
}
