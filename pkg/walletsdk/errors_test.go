package walletsdk

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResponseErrorParsesBodies(t *testing.T) {
	t.Parallel()

	req := NewRequest(http.MethodGet, "/")

	t.Run("wallet format", func(t *testing.T) {
		err := newResponseError(&req, http.StatusBadRequest, []byte(`{"message":"Invalid grant","code":"E42"}`))
		require.Equal(t, "Invalid grant", err.Message)
		require.Equal(t, "E42", err.Code)
		require.Contains(t, err.Error(), "status 400: Invalid grant")
	})

	t.Run("oauth2 format", func(t *testing.T) {
		err := newResponseError(&req, http.StatusBadRequest, []byte(`{"error":"invalid_grant","error_description":"token expired"}`))
		require.Equal(t, "token expired", err.Message)
		require.Equal(t, ErrorCodeInvalidGrant, err.Code)
	})

	t.Run("not json", func(t *testing.T) {
		err := newResponseError(&req, http.StatusBadGateway, []byte("<html>bad gateway</html>"))
		require.Empty(t, err.Message)
		require.Equal(t, "<html>bad gateway</html>", string(err.Body))
		require.Contains(t, err.Error(), "Bad Gateway")
	})
}

func TestIsExpiredGrant(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"message", &ResponseError{StatusCode: 400, Message: "Invalid grant: refresh token has expired"}, true},
		{"expired refresh token", &ResponseError{StatusCode: 400, Message: "The refresh token is expired"}, true},
		{"oauth2 code", &ResponseError{StatusCode: 400, Code: "INVALID_GRANT"}, true},
		{"underscore message", &ResponseError{StatusCode: 400, Message: "invalid_grant"}, true},
		{"wrapped", fmt.Errorf("refresh: %w", &ResponseError{StatusCode: 400, Message: "invalid grant"}), true},
		{"other 400", &ResponseError{StatusCode: 400, Message: "missing refreshToken"}, false},
		{"wrong status", &ResponseError{StatusCode: 401, Message: "Invalid grant"}, false},
		{"server error", &ResponseError{StatusCode: 500, Message: "refresh token expired"}, false},
		{"not a response", errors.New("invalid grant"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsExpiredGrant(tt.err))
		})
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	req := NewRequest(http.MethodGet, "/")

	assert.Equal(t, FailureNone, Classify(nil))
	assert.Equal(t, FailureTransport, Classify(errors.New("dial tcp: refused")))
	assert.Equal(t, FailureTransport, Classify(&ResponseError{StatusCode: 401}))
	assert.Equal(t, FailureUnauthorized, Classify(&ResponseError{Request: &req, StatusCode: 401}))
	assert.Equal(t, FailureStatus, Classify(&ResponseError{Request: &req, StatusCode: 404}))
	assert.Equal(t, FailureRecovery, Classify(&RecoveryError{
		Stage: StageRefresh,
		Err:   &ResponseError{Request: &req, StatusCode: 500},
	}))

	assert.Equal(t, "recovery", FailureRecovery.String())
	assert.Equal(t, "FailureKind(99)", FailureKind(99).String())
}

func TestRecoveryErrorUnwraps(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	err := fmt.Errorf("badges: %w", &RecoveryError{Stage: StageRegister, Err: cause})

	require.ErrorIs(t, err, cause)
	require.Equal(t, "badges: boom", err.Error())
	require.Equal(t, "refresh failed", (&RecoveryError{Stage: StageRefresh, Err: errors.New("refresh failed")}).Error())
}

func TestStatusCode(t *testing.T) {
	t.Parallel()

	require.Equal(t, 0, StatusCode(errors.New("x")))
	require.Equal(t, 404, StatusCode(fmt.Errorf("wrapped: %w", &ResponseError{StatusCode: 404})))
}
