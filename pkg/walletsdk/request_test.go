package walletsdk

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRequestDefaults(t *testing.T) {
	t.Parallel()

	req := NewRequest("", "https://wallet.example.com/badge/my")
	require.Equal(t, http.MethodGet, req.Method)
	require.Empty(t, req.Headers())
	require.Empty(t, req.Params())
	require.Nil(t, req.Data())

	require.Equal(t, http.MethodPost, NewRequest("post", "/x").Method)
}

func TestRequestBuildersDoNotMutateReceiver(t *testing.T) {
	t.Parallel()

	base := NewRequest(http.MethodGet, "/badge/my").WithHeader("X-Trace", "1")

	withBearer := base.WithBearer("token")
	require.Equal(t, "Bearer token", withBearer.Header(HeaderAuthorization))
	require.Empty(t, base.Header(HeaderAuthorization))

	replaced := withBearer.WithBearer("other")
	require.Equal(t, "Bearer other", replaced.Header(HeaderAuthorization))
	require.Equal(t, "Bearer token", withBearer.Header(HeaderAuthorization))
	require.Equal(t, "1", replaced.Header("X-Trace"))

	withParams := base.WithParams(map[string]string{"walletId": "w1"})
	require.Equal(t, map[string]string{"walletId": "w1"}, withParams.Params())
	require.Empty(t, base.Params())

	merged := withParams.WithParams(map[string]string{"type": "message"})
	require.Equal(t, map[string]string{"walletId": "w1", "type": "message"}, merged.Params())
	require.Len(t, withParams.Params(), 1)
}

func TestRequestAccessorsReturnCopies(t *testing.T) {
	t.Parallel()

	req := NewRequest(http.MethodGet, "/").
		WithHeader("X-Trace", "1").
		WithParams(map[string]string{"a": "b"})

	headers := req.Headers()
	headers["X-Trace"] = "changed"
	require.Equal(t, "1", req.Header("X-Trace"))

	params := req.Params()
	params["a"] = "changed"
	require.Equal(t, "b", req.Params()["a"])
}

func TestRequestWithJSON(t *testing.T) {
	t.Parallel()

	body := map[string]string{"walletId": "w1"}
	req := NewRequest(http.MethodPost, "/connection/invite").WithJSON(body)
	require.Equal(t, body, req.Data())
}
