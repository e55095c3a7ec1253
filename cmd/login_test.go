package cmd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/linkup/config"
	"github.com/s0up4200/linkup/librelinkup"
)

// hostRecorder sends every request to a test server and remembers the original hosts
type hostRecorder struct {
	target *url.URL

	mu    sync.Mutex
	hosts []string
}

func (h *hostRecorder) RoundTrip(req *http.Request) (*http.Response, error) {
	h.mu.Lock()
	h.hosts = append(h.hosts, req.URL.Host)
	h.mu.Unlock()

	out := req.Clone(req.Context())
	out.URL.Scheme = h.target.Scheme
	out.URL.Host = h.target.Host
	out.Host = ""
	return http.DefaultTransport.RoundTrip(out)
}

func (h *hostRecorder) seen() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.hosts...)
}

// withServer routes the package http client to handler for the duration of the test
func withServer(t *testing.T, handler http.HandlerFunc) *hostRecorder {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	target, err := url.Parse(server.URL)
	require.NoError(t, err)

	rec := &hostRecorder{target: target}
	prev := httpClient
	httpClient = &http.Client{Transport: rec}
	t.Cleanup(func() { httpClient = prev })
	return rec
}

func loginConfig() *config.Config {
	return &config.Config{LibreLinkUp: config.LibreLinkUpConfig{
		Profile: librelinkup.DefaultProfile.Name,
		Timeout: 5 * time.Second,
	}}
}

func TestLoginRedirect(t *testing.T) {
	creds := librelinkup.Credentials{Username: "a@b.c", Password: "pw"}

	t.Run("follows regional redirect", func(t *testing.T) {
		withConfig(t, loginConfig())
		var calls atomic.Int32
		rec := withServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if calls.Add(1) == 1 {
				_, _ = w.Write([]byte(`{"status": 0, "data": {"redirect": true, "region": "eu2"}}`))
				return
			}
			_, _ = w.Write([]byte(`{"status": 0, "data": {"user": {"id": "user1"}, "authTicket": {"token": "tok", "expires": 1735689600}}}`))
		})

		opts, err := clientOptions()
		require.NoError(t, err)
		session, err := login(context.Background(), creds, opts)
		require.NoError(t, err)
		assert.Equal(t, "tok", session.Token)
		assert.Equal(t, []string{"api.libreview.io", "api-eu2.libreview.io"}, rec.seen())
	})

	t.Run("rejects redirect to invalid region", func(t *testing.T) {
		withConfig(t, loginConfig())
		rec := withServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"status": 0, "data": {"redirect": true, "region": "evil.example/x?"}}`))
		})

		opts, err := clientOptions()
		require.NoError(t, err)
		_, err = login(context.Background(), creds, opts)
		require.Error(t, err)
		assert.Len(t, rec.seen(), 1, "credentials are only sent to the global host")
	})
}

func TestRegionFlagRejected(t *testing.T) {
	withConfig(t, loginConfig())
	prevRegion, prevCfgFile, prevEnvFile := regionFlag, cfgFile, envFile
	t.Cleanup(func() {
		regionFlag, cfgFile, envFile = prevRegion, prevCfgFile, prevEnvFile
		rootCmd.SetArgs(nil)
	})

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("librelinkup:\n  region: eu\n"), 0o600))

	rec := withServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	rootCmd.SetArgs([]string{"--config", path, "--env-file", "", "--region", "evil.example/x?", "connections"})
	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid region")
	assert.Empty(t, rec.seen())
}
