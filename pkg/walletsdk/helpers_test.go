package walletsdk

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/url"
	"sync"
	"testing"
)

// testPrivateKey is a fixed 32 byte seed.
const testPrivateKey = "9d61b19deffd5a60ba844af492ec2cc44449c5697b326919703bac031cae7f60"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type step func(req Request) (*Response, error)

// scriptedCaller answers calls with a fixed sequence of steps and records
// every request it receives.
type scriptedCaller struct {
	t *testing.T

	mu    sync.Mutex
	calls []Request
	steps []step
}

func newScriptedCaller(t *testing.T, steps ...step) *scriptedCaller {
	return &scriptedCaller{t: t, steps: steps}
}

func (c *scriptedCaller) Call(_ context.Context, req Request) (*Response, error) {
	c.mu.Lock()
	c.calls = append(c.calls, req)
	if len(c.steps) == 0 {
		c.mu.Unlock()
		c.t.Errorf("unexpected call %s %s", req.Method, req.URL)
		return nil, &ResponseError{Request: &req, StatusCode: 599}
	}
	next := c.steps[0]
	c.steps = c.steps[1:]
	c.mu.Unlock()

	return next(req)
}

func (c *scriptedCaller) Calls() []Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Request(nil), c.calls...)
}

func (c *scriptedCaller) Paths() []string {
	var paths []string
	for _, req := range c.Calls() {
		u, err := url.Parse(req.URL)
		if err != nil {
			paths = append(paths, req.URL)
			continue
		}
		paths = append(paths, u.Path)
	}
	return paths
}

func respondJSON(status int, v any) step {
	return func(req Request) (*Response, error) {
		body, err := json.Marshal(v)
		if err != nil {
			panic(err)
		}
		if status < 200 || status >= 300 {
			return nil, newResponseError(&req, status, body)
		}
		return &Response{StatusCode: status, Body: body}, nil
	}
}

func fail(err error) step {
	return func(Request) (*Response, error) {
		return nil, err
	}
}

// memoryPersister is an in-memory TokenPersister.
type memoryPersister struct {
	mu    sync.Mutex
	pair  TokenPair
	saved int
	err   error
}

func (p *memoryPersister) LoadTokens(context.Context) (TokenPair, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return TokenPair{}, false, p.err
	}
	return p.pair, !p.pair.IsZero(), nil
}

func (p *memoryPersister) SaveTokens(_ context.Context, pair TokenPair) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.pair = pair
	p.saved++
	return nil
}
