package walletsdk

import (
	"maps"
	"net/http"
	"strings"
)

// HeaderAuthorization is the header replaced when a request is retried.
const HeaderAuthorization = "Authorization"

// Request describes one HTTP call. It is a value: every With* method returns
// a new Request and leaves the receiver untouched, so a caller may keep and
// reuse a Request after handing it to the Executor.
type Request struct {
	Method string
	URL    string

	headers map[string]string
	params  map[string]string
	data    any
}

// NewRequest creates a descriptor for method and url with no headers.
func NewRequest(method, url string) Request {
	if method == "" {
		method = http.MethodGet
	}
	return Request{
		Method: strings.ToUpper(method),
		URL:    url,
	}
}

// Header returns the value of the named header, or "" if unset.
func (r Request) Header(key string) string {
	return r.headers[key]
}

// Headers returns a copy of the header mapping.
func (r Request) Headers() map[string]string {
	return maps.Clone(r.headersOrEmpty())
}

// Params returns a copy of the query parameters.
func (r Request) Params() map[string]string {
	if r.params == nil {
		return map[string]string{}
	}
	return maps.Clone(r.params)
}

// Data returns the value that will be JSON encoded as the request body.
func (r Request) Data() any {
	return r.data
}

// WithHeader returns a copy of r with key set to value.
func (r Request) WithHeader(key, value string) Request {
	headers := maps.Clone(r.headersOrEmpty())
	headers[key] = value
	r.headers = headers
	return r
}

// WithBearer returns a copy of r whose Authorization header carries token.
// It is the only change the Executor makes to a descriptor before a retry.
func (r Request) WithBearer(token string) Request {
	return r.WithHeader(HeaderAuthorization, "Bearer "+token)
}

// WithParams returns a copy of r with the given query parameters merged in.
func (r Request) WithParams(params map[string]string) Request {
	merged := make(map[string]string, len(r.params)+len(params))
	maps.Copy(merged, r.params)
	maps.Copy(merged, params)
	r.params = merged
	return r
}

// WithJSON returns a copy of r with data as its JSON body.
func (r Request) WithJSON(data any) Request {
	r.data = data
	return r
}

func (r Request) headersOrEmpty() map[string]string {
	if r.headers == nil {
		return map[string]string{}
	}
	return r.headers
}
