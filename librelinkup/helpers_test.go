package librelinkup

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
)

// rewriteTransport sends every request to a test server while remembering the
// URL the client originally asked for.
type rewriteTransport struct {
	target *url.URL

	mu       sync.Mutex
	requests []*http.Request
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.mu.Lock()
	t.requests = append(t.requests, req.Clone(req.Context()))
	t.mu.Unlock()

	out := req.Clone(req.Context())
	out.URL.Scheme = t.target.Scheme
	out.URL.Host = t.target.Host
	out.Host = ""
	return http.DefaultTransport.RoundTrip(out)
}

func (t *rewriteTransport) last() *http.Request {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.requests) == 0 {
		return nil
	}
	return t.requests[len(t.requests)-1]
}

// newTestServer starts handler and returns an http.Client that routes the
// real LibreLinkUp hosts to it.
func newTestServer(t *testing.T, handler http.HandlerFunc) (*http.Client, *rewriteTransport) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	target, err := url.Parse(server.URL)
	if err != nil {
		t.Fatalf("parse server url: %v", err)
	}
	rt := &rewriteTransport{target: target}
	return &http.Client{Transport: rt}, rt
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}
