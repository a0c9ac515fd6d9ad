package probe

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"github.com/httpeek/httpeek/pkg/defaults"
	"github.com/httpeek/httpeek/pkg/strutil"
)

// extractTitle returns the trimmed text of the first <title> element in
// body, or "" when there is none. The body is decoded according to the
// Content-Type charset or an in-document <meta> declaration first, so
// legacy encodings still yield readable titles. Titles are capped at
// defaults.TitleMaxRunes so a malicious page cannot flood the output.
func extractTitle(body []byte, contentType string) string {
	if len(body) == 0 {
		return ""
	}
	var r io.Reader = bytes.NewReader(body)
	if decoded, err := charset.NewReader(r, contentType); err == nil {
		r = decoded
	} else {
		r = bytes.NewReader(body)
	}
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return ""
	}
	title := strings.TrimSpace(doc.Find("title").First().Text())
	return strutil.Truncate(title, defaults.TitleMaxRunes)
}

// flattenHeaders collapses multi-valued response headers into single
// comma-joined strings for the result row.
func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = strings.Join(v, ", ")
	}
	return out
}
