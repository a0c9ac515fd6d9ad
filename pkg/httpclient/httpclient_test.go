package httpclient

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAppliesDefaults(t *testing.T) {
	t.Parallel()
	client := New(Config{})
	require.NotNil(t, client)
	assert.Equal(t, 10*time.Second, client.Timeout)
}

func TestDefaultIsShared(t *testing.T) {
	t.Parallel()
	assert.Same(t, Default(), Default())
}

func TestClientDoesNotFollowRedirects(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/start" {
			http.Redirect(w, r, "/next", http.StatusMovedPermanently)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := New(Config{CacheDNS: false})
	resp, err := client.Get(srv.URL + "/start")
	require.NoError(t, err)
	defer resp.Body.Close()

	// The 301 must come back untouched so the prober can record the hop.
	assert.Equal(t, http.StatusMovedPermanently, resp.StatusCode)
	assert.Equal(t, "/next", resp.Header.Get("Location"))
}

func TestMiddlewareSetsFixedUserAgent(t *testing.T) {
	t.Parallel()
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	client := New(Config{UserAgent: "httpeek-test/1.0", CacheDNS: false})
	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "httpeek-test/1.0", gotUA)
}

func TestMiddlewareRandomUserAgentLooksLikeBrowser(t *testing.T) {
	t.Parallel()
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	client := New(Config{RandomUserAgent: true, CacheDNS: false})
	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Contains(t, gotUA, "Mozilla/5.0")
}

func TestMiddlewareExtraHeaders(t *testing.T) {
	t.Parallel()
	var gotAuth, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("X-Probe")
	}))
	defer srv.Close()

	extra := http.Header{}
	extra.Set("Authorization", "Bearer token123")
	extra.Set("X-Probe", "yes")

	client := New(Config{ExtraHeaders: extra, CacheDNS: false})
	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "Bearer token123", gotAuth)
	assert.Equal(t, "yes", gotAccept)
}

func TestMiddlewareDoesNotClobberExplicitHeader(t *testing.T) {
	t.Parallel()
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	client := New(Config{UserAgent: "from-config", CacheDNS: false})
	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "from-request")

	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "from-request", gotUA)
}

func TestNeedsMiddleware(t *testing.T) {
	t.Parallel()
	assert.False(t, needsMiddleware(Config{}))
	assert.True(t, needsMiddleware(Config{UserAgent: "x"}))
	assert.True(t, needsMiddleware(Config{RandomUserAgent: true}))
	assert.True(t, needsMiddleware(Config{ExtraHeaders: http.Header{"A": []string{"b"}}}))
}
