package slogx

import (
	"log/slog"
	"net/http"
	"time"
)

// Transport is an http.RoundTripper that logs every outbound round trip at
// debug level. Header values are never logged, they carry bearer tokens and
// signatures.
type Transport struct {
	next   http.RoundTripper
	logger *slog.Logger
}

// NewTransport wraps next, or http.DefaultTransport when next is nil. The
// logger attached to the request context wins over logger.
func NewTransport(next http.RoundTripper, logger *slog.Logger) *Transport {
	if next == nil {
		next = http.DefaultTransport
	}
	return &Transport{next: next, logger: logger}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	logger := FromContext(req.Context(), t.logger).With(
		"req_id", req.Header.Get("X-Request-ID"),
		"method", req.Method,
		"host", req.URL.Host,
		"path", req.URL.Path,
	)

	resp, err := t.next.RoundTrip(req)
	duration := time.Since(start).Milliseconds()
	if err != nil {
		logger.Debug("http_call_failed", "duration_ms", duration, "error", err)
		return nil, err
	}

	logger.Debug("http_call", "status", resp.StatusCode, "duration_ms", duration)
	return resp, nil
}
