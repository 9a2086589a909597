package slogx_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aussiebroadwan/walletsdk/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func TestTransportLogsRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	var buf bytes.Buffer
	logger := slogx.New(slogx.Config{Service: "test", Level: "debug", Format: "json", Output: &buf})

	client := &http.Client{Transport: slogx.NewTransport(nil, logger)}
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/badge/my", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "req-1")
	req.Header.Set("Authorization", "Bearer secret-token")

	resp, err := client.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()

	var entry map[string]any
	line := strings.TrimSpace(buf.String())
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	require.Equal(t, "http_call", entry["msg"])
	require.Equal(t, "req-1", entry["req_id"])
	require.Equal(t, "/badge/my", entry["path"])
	require.EqualValues(t, http.StatusTeapot, entry["status"])
	require.NotContains(t, line, "secret-token")
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	require.Equal(t, "DEBUG", slogx.ParseLevel("debug").String())
	require.Equal(t, "WARN", slogx.ParseLevel("warning").String())
	require.Equal(t, "ERROR", slogx.ParseLevel("ERROR").String())
	require.Equal(t, "INFO", slogx.ParseLevel("nonsense").String())
}

func TestTransportPrefersContextLogger(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	var fallback, scoped bytes.Buffer
	base := slogx.New(slogx.Config{Level: "debug", Format: "json", Output: &fallback})
	cmdLogger := slogx.New(slogx.Config{Level: "debug", Format: "json", Output: &scoped}).With("command", "badges")

	client := &http.Client{Transport: slogx.NewTransport(nil, base)}
	ctx := slogx.WithContext(t.Context(), cmdLogger)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()

	require.Empty(t, fallback.String())
	require.Contains(t, scoped.String(), `"command":"badges"`)
}
