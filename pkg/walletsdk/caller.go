package walletsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/aussiebroadwan/walletsdk/pkg/idx"
)

const (
	// HeaderRequestID correlates an outbound call with service logs.
	HeaderRequestID = "X-Request-ID"

	defaultHTTPTimeout      = 10 * time.Second
	defaultResponseBodySize = 10 << 20 // 10 MiB
)

// Caller performs exactly one HTTP round trip for a Request. A non-2xx answer
// is returned as a *ResponseError carrying the request; a network failure is
// returned as any other error.
type Caller interface {
	Call(ctx context.Context, req Request) (*Response, error)
}

// CallerFunc adapts a function to the Caller interface.
type CallerFunc func(ctx context.Context, req Request) (*Response, error)

// Call calls f(ctx, req).
func (f CallerFunc) Call(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}

// Response is a successful answer from the wallet service.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the JSON body into target.
func (r *Response) Decode(target any) error {
	if err := json.Unmarshal(r.Body, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// HTTPCaller is the net/http implementation of Caller.
type HTTPCaller struct {
	HTTPClient *http.Client

	// Limiter throttles outbound calls when set.
	Limiter *rate.Limiter

	// MaxResponseBytes bounds how much of a body is read.
	MaxResponseBytes int64
}

// NewHTTPCaller creates a caller using client, or a client with a 10 second
// timeout when client is nil.
func NewHTTPCaller(client *http.Client) *HTTPCaller {
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &HTTPCaller{
		HTTPClient:       client,
		MaxResponseBytes: defaultResponseBodySize,
	}
}

// Call implements Caller.
func (c *HTTPCaller) Call(ctx context.Context, req Request) (*Response, error) {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	httpReq, err := c.newHTTPRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	limit := c.MaxResponseBytes
	if limit <= 0 {
		limit = defaultResponseBodySize
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		sent := req
		return nil, newResponseError(&sent, resp.StatusCode, body)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

func (c *HTTPCaller) newHTTPRequest(ctx context.Context, req Request) (*http.Request, error) {
	target, err := url.Parse(req.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid request url: %w", err)
	}

	if params := req.Params(); len(params) > 0 {
		query := target.Query()
		for key, value := range params {
			query.Set(key, value)
		}
		target.RawQuery = query.Encode()
	}

	var body io.Reader
	if data := req.Data(); data != nil {
		payload, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")

	for key, value := range req.Headers() {
		httpReq.Header.Set(key, value)
	}
	if httpReq.Header.Get(HeaderRequestID) == "" {
		httpReq.Header.Set(HeaderRequestID, idx.New().String())
	}

	return httpReq, nil
}
