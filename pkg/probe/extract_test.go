package probe

import (
	"net/http"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/httpeek/httpeek/pkg/defaults"
)

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		contentType string
		want        string
	}{
		{
			name: "simple title",
			body: "<html><head><title>Welcome</title></head><body>hi</body></html>",
			want: "Welcome",
		},
		{
			name: "surrounding whitespace trimmed",
			body: "<html><head><title>\n  Admin Panel \t</title></head></html>",
			want: "Admin Panel",
		},
		{
			name: "first title wins",
			body: "<html><head><title>First</title><title>Second</title></head></html>",
			want: "First",
		},
		{
			name: "no title element",
			body: "<html><body><h1>hi</h1></body></html>",
			want: "",
		},
		{
			name: "empty body",
			body: "",
			want: "",
		},
		{
			name: "not html at all",
			body: `{"status":"ok"}`,
			want: "",
		},
		{
			name:        "latin-1 from content type",
			body:        "<html><head><title>caf\xe9</title></head></html>",
			contentType: "text/html; charset=iso-8859-1",
			want:        "café",
		},
		{
			name: "charset from meta tag",
			body: `<html><head><meta charset="windows-1252"><title>na` + "\xef" + `ve</title></head></html>`,
			want: "naïve",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractTitle([]byte(tt.body), tt.contentType)
			if got != tt.want {
				t.Errorf("extractTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractTitle_CapsRunaway(t *testing.T) {
	body := "<html><head><title>" + strings.Repeat("A", 5000) + "</title></head></html>"

	got := extractTitle([]byte(body), "text/html")

	if utf8.RuneCountInString(got) != defaults.TitleMaxRunes {
		t.Errorf("title length = %d runes, want %d", utf8.RuneCountInString(got), defaults.TitleMaxRunes)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("capped title should end in ellipsis, got %q", got[len(got)-10:])
	}
}

func TestFlattenHeaders(t *testing.T) {
	h := http.Header{}
	h.Set("Server", "nginx")
	h.Add("Set-Cookie", "a=1")
	h.Add("Set-Cookie", "b=2")

	got := flattenHeaders(h)

	if got["Server"] != "nginx" {
		t.Errorf("Server = %q, want %q", got["Server"], "nginx")
	}
	if got["Set-Cookie"] != "a=1, b=2" {
		t.Errorf("Set-Cookie = %q, want %q", got["Set-Cookie"], "a=1, b=2")
	}
	if len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}
}
