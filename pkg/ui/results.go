package ui

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ResultRow is the view of one probe used for terminal rendering.
// A zero Status with a non-empty Err marks a probe that never got an
// HTTP response.
type ResultRow struct {
	URL        string
	IP         string
	Status     int
	Title      string
	Cloudflare bool
	Redirect   string
	Err        string
}

// genericTitles are interstitial pages that reveal nothing about the
// site itself. When one sits behind Cloudflare, the row shows the edge
// rather than a meaningless title.
var genericTitles = map[string]bool{
	"":                                 true,
	"Just a moment...":                 true,
	"Attention Required! | Cloudflare": true,
}

// Live row column widths. Long values overflow rather than truncate so
// URLs stay pipeable.
const (
	liveURLWidth = 44
	liveIPWidth  = 16
	statusWidth  = 4
)

// displayTitleText returns the plain text shown in the title cell.
// Decoration happens only at render time; exporters receive the raw title.
func displayTitleText(row ResultRow) string {
	if row.Err != "" {
		return "ERR: " + row.Err
	}
	if row.Cloudflare && genericTitles[row.Title] {
		return "Cloudflare"
	}
	title := row.Title
	if title == "" {
		title = "Title not found" + Icon(" 🫤", "")
	}
	if row.Cloudflare {
		return title + " [CF]"
	}
	return title
}

// DisplayTitle returns the styled title cell for a row
func DisplayTitle(row ResultRow) string {
	if row.Err != "" {
		return ErrStyle.Render(displayTitleText(row))
	}
	if row.Cloudflare && genericTitles[row.Title] {
		return CloudflareStyle.Render("Cloudflare")
	}
	title := row.Title
	if title == "" {
		title = "Title not found" + Icon(" 🫤", "")
	}
	if row.Cloudflare {
		return TitleStyle.Render(title) + CloudflareStyle.Render(" [CF]")
	}
	return TitleStyle.Render(title)
}

// statusCell returns the status column text; probes without a response
// show ERR
func statusCell(row ResultRow) string {
	if row.Status == 0 {
		return "ERR"
	}
	return strconv.Itoa(row.Status)
}

func displayIP(row ResultRow) string {
	if row.IP == "" {
		return "-"
	}
	return row.IP
}

// FormatResultRow renders one live result line with fixed column starts
func FormatResultRow(row ResultRow) string {
	var b strings.Builder

	b.WriteString(URLStyle.Render(pad(row.URL, liveURLWidth)))
	b.WriteString(" ")
	b.WriteString(IPStyle.Render(pad(displayIP(row), liveIPWidth)))
	b.WriteString(" ")
	b.WriteString(StatusCodeStyle(row.Status).Render(fmt.Sprintf("%*s", statusWidth, statusCell(row))))
	b.WriteString("  ")
	b.WriteString(DisplayTitle(row))
	if row.Redirect != "" {
		b.WriteString("  ")
		b.WriteString(RedirectStyle.Render(row.Redirect))
	}
	return b.String()
}

// ResultsTable accumulates rows for the end-of-run table. Not safe for
// concurrent use; callers serialize Append.
type ResultsTable struct {
	rows []ResultRow
}

// NewResultsTable creates an empty results table
func NewResultsTable() *ResultsTable {
	return &ResultsTable{}
}

// Append adds a row to the table
func (t *ResultsTable) Append(row ResultRow) {
	t.rows = append(t.rows, row)
}

// Len returns the number of accumulated rows
func (t *ResultsTable) Len() int {
	return len(t.rows)
}

// statusBucket groups rows for the table sort; failed probes sink to
// the bottom
func statusBucket(row ResultRow) int {
	if row.Status == 0 {
		return 9
	}
	return row.Status / 100
}

// Render writes the sorted table to w. Rows sort by status class then
// URL so related results sit together.
func (t *ResultsTable) Render(w io.Writer) {
	rows := make([]ResultRow, len(t.rows))
	copy(rows, t.rows)
	sort.Slice(rows, func(i, j int) bool {
		bi, bj := statusBucket(rows[i]), statusBucket(rows[j])
		if bi != bj {
			return bi < bj
		}
		return rows[i].URL < rows[j].URL
	})

	urlW := len("URL")
	ipW := len("IP")
	for i := 0; i < len(rows); i++ {
		if n := utf8.RuneCountInString(rows[i].URL); n > urlW {
			urlW = n
		}
		if n := utf8.RuneCountInString(displayIP(rows[i])); n > ipW {
			ipW = n
		}
	}
	if urlW > 60 {
		urlW = 60
	}
	if ipW > 24 {
		ipW = 24
	}

	fmt.Fprintf(w, "%s %s %s  %s\n",
		StatLabelStyle.Render(pad("URL", urlW)),
		StatLabelStyle.Render(pad("IP", ipW)),
		StatLabelStyle.Render(fmt.Sprintf("%*s", statusWidth, "ST")),
		StatLabelStyle.Render("TITLE"),
	)
	fmt.Fprintf(w, "%s\n", DividerStyle.Render(strings.Repeat("-", urlW+ipW+statusWidth+24)))

	for i := 0; i < len(rows); i++ {
		row := rows[i]
		fmt.Fprintf(w, "%s %s %s  %s",
			URLStyle.Render(pad(truncateString(row.URL, urlW), urlW)),
			IPStyle.Render(pad(truncateString(displayIP(row), ipW), ipW)),
			StatusCodeStyle(row.Status).Render(fmt.Sprintf("%*s", statusWidth, statusCell(row))),
			DisplayTitle(row),
		)
		if row.Redirect != "" {
			fmt.Fprintf(w, "  %s", RedirectStyle.Render(row.Redirect))
		}
		fmt.Fprintln(w)
	}
}

// pad right-pads s with spaces to width runes; longer values pass
// through unchanged
func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

// truncateString shortens s to max runes, marking the cut with "..."
func truncateString(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
