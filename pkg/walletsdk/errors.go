package walletsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ============================================================================
// Sentinel Errors
// ============================================================================

var (
	// ErrMissingPrivateKey is returned when the SDK is configured without a signing key.
	ErrMissingPrivateKey = errors.New("walletsdk: private key is required")

	// ErrInvalidPrivateKey is returned when the private key is not a hex encoded Ed25519 seed.
	ErrInvalidPrivateKey = errors.New("walletsdk: private key must be a 32 byte hex encoded seed")

	// ErrMissingField is returned by endpoint callers when a required field is empty.
	ErrMissingField = errors.New("walletsdk: missing required field")

	// ErrNotRegistered is returned when an operation needs tokens and none are stored.
	ErrNotRegistered = errors.New("walletsdk: no access token, register first")
)

// Error code used by OAuth2 style servers for an unusable refresh token (RFC 6749).
const ErrorCodeInvalidGrant = "invalid_grant"

// ============================================================================
// ResponseError - a non-2xx answer from the wallet service
// ============================================================================

// ResponseError is returned by a Caller when the service answered with a
// non-2xx status. Request is the descriptor that produced the response, it is
// what allows the Executor to retry. A ResponseError without a Request carries
// no retry context and is never recovered.
type ResponseError struct {
	// Request is the descriptor that was sent, nil when unknown
	Request *Request

	// StatusCode is the HTTP status code of the response
	StatusCode int

	// Message is the human readable message from the body, if any
	Message string

	// Code is the machine readable error code from the body, if any
	Code string

	// Body is the raw response body
	Body []byte
}

// Error implements the error interface.
func (e *ResponseError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("walletsdk: request failed with status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("walletsdk: request failed with status %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// newResponseError builds a ResponseError from a response body. Both the
// wallet service format ({"message": ...}) and the OAuth2 format
// ({"error": ..., "error_description": ...}) are understood.
func newResponseError(req *Request, status int, body []byte) *ResponseError {
	respErr := &ResponseError{
		Request:    req,
		StatusCode: status,
		Body:       body,
	}

	var payload struct {
		Message          string `json:"message"`
		Code             string `json:"code"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return respErr
	}

	switch {
	case payload.Message != "":
		respErr.Message = payload.Message
		respErr.Code = payload.Code
	case payload.Error != "":
		respErr.Message = payload.ErrorDescription
		respErr.Code = payload.Error
	}
	return respErr
}

// ============================================================================
// RecoveryError - the token recovery protocol failed
// ============================================================================

// RecoveryStage names the recovery call that failed.
type RecoveryStage string

const (
	StageRefresh  RecoveryStage = "refresh"
	StageRegister RecoveryStage = "register"
)

// RecoveryError is returned by the Executor when the original call failed with
// 401 and the credential recovery itself failed. Err is the failure of the
// refresh or re-registration call, untouched, so errors.As still finds the
// underlying *ResponseError with its status and message.
type RecoveryError struct {
	Stage RecoveryStage
	Err   error
}

// Error returns the message of the recovery failure unchanged; the stage is
// only carried in Stage.
func (e *RecoveryError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the failure of the recovery call.
func (e *RecoveryError) Unwrap() error { return e.Err }

// ============================================================================
// Classification
// ============================================================================

// FailureKind classifies an error returned by Execute.
type FailureKind int

const (
	// FailureNone means the error was nil.
	FailureNone FailureKind = iota

	// FailureTransport is a network level or malformed failure with no
	// response or no request context attached.
	FailureTransport

	// FailureUnauthorized is a 401 answer.
	FailureUnauthorized

	// FailureStatus is any other non-2xx answer.
	FailureStatus

	// FailureRecovery is a refresh or re-registration failure.
	FailureRecovery
)

func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case FailureTransport:
		return "transport"
	case FailureUnauthorized:
		return "unauthorized"
	case FailureStatus:
		return "status"
	case FailureRecovery:
		return "recovery"
	default:
		return fmt.Sprintf("FailureKind(%d)", int(k))
	}
}

// Classify reports which branch of the failure taxonomy err belongs to.
func Classify(err error) FailureKind {
	if err == nil {
		return FailureNone
	}

	var recErr *RecoveryError
	if errors.As(err, &recErr) {
		return FailureRecovery
	}

	var respErr *ResponseError
	if !errors.As(err, &respErr) || respErr.Request == nil {
		return FailureTransport
	}
	if respErr.StatusCode == http.StatusUnauthorized {
		return FailureUnauthorized
	}
	return FailureStatus
}

// StatusCode returns the HTTP status carried by err, or 0 if there is none.
func StatusCode(err error) int {
	var respErr *ResponseError
	if errors.As(err, &respErr) {
		return respErr.StatusCode
	}
	return 0
}

// IsExpiredGrant reports whether err is a refresh failure meaning the refresh
// token itself can no longer be used: status 400 with an invalid or expired
// grant indication in the message or code.
func IsExpiredGrant(err error) bool {
	var respErr *ResponseError
	if !errors.As(err, &respErr) {
		return false
	}
	if respErr.StatusCode != http.StatusBadRequest {
		return false
	}

	if strings.EqualFold(respErr.Code, ErrorCodeInvalidGrant) {
		return true
	}

	msg := strings.ToLower(respErr.Message)
	switch {
	case strings.Contains(msg, "invalid grant"), strings.Contains(msg, ErrorCodeInvalidGrant):
		return true
	case strings.Contains(msg, "refresh token") && strings.Contains(msg, "expired"):
		return true
	}
	return false
}
