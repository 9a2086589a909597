package walletsdk

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"golang.org/x/sync/singleflight"
)

// executorState is a state of one Execute call.
//
//	initial --401--> recovering --ok--> retrying --> done
//	   |                  |
//	   +--other-----------+--failed--> done
//
// retrying only ever moves to done, which bounds every Execute to one retry.
type executorState int

const (
	stateInitial executorState = iota
	stateRecovering
	stateRetrying
	stateDone
)

func (s executorState) String() string {
	switch s {
	case stateInitial:
		return "initial"
	case stateRecovering:
		return "recovering"
	case stateRetrying:
		return "retrying"
	case stateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Executor sends requests and recovers from a rejected access token by
// refreshing it (or re-registering when the refresh token is expired) and
// retrying the request once.
type Executor struct {
	caller    Caller
	registrar Registrar
	store     *CredentialStore
	logger    *slog.Logger

	// coalesce makes concurrent recoveries that start from the same refresh
	// token share a single refresh.
	coalesce bool
	group    singleflight.Group
}

// NewExecutor creates an Executor. Recoveries are coalesced unless
// coalesce is false.
func NewExecutor(caller Caller, registrar Registrar, store *CredentialStore, logger *slog.Logger, coalesce bool) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		caller:    caller,
		registrar: registrar,
		store:     store,
		logger:    logger,
		coalesce:  coalesce,
	}
}

// execution is the state of one Execute call.
type execution struct {
	state executorState
	req   Request
	token string

	resp *Response
	err  error
}

func (x *execution) finish(resp *Response, err error) {
	x.resp = resp
	x.err = err
	x.state = stateDone
}

// Execute sends req and returns its response. On a 401 it runs the recovery
// protocol and retries req once with only the Authorization header replaced.
// req itself is never modified.
func (e *Executor) Execute(ctx context.Context, req Request) (*Response, error) {
	run := &execution{state: stateInitial, req: req}

	for run.state != stateDone {
		switch run.state {
		case stateInitial:
			e.attempt(ctx, run)
		case stateRecovering:
			e.recover(ctx, run)
		case stateRetrying:
			e.retry(ctx, run)
		}
	}

	return run.resp, run.err
}

func (e *Executor) attempt(ctx context.Context, run *execution) {
	resp, err := e.caller.Call(ctx, run.req)
	if err == nil {
		run.finish(resp, nil)
		return
	}

	var respErr *ResponseError
	if !errors.As(err, &respErr) || respErr.Request == nil {
		run.finish(nil, err)
		return
	}
	if respErr.StatusCode != http.StatusUnauthorized {
		run.finish(nil, err)
		return
	}

	e.logger.DebugContext(ctx, "access token rejected, recovering",
		"method", run.req.Method,
		"url", run.req.URL,
	)
	run.state = stateRecovering
}

func (e *Executor) recover(ctx context.Context, run *execution) {
	refreshToken := e.store.Tokens().RefreshToken

	var (
		token string
		err   error
	)
	if e.coalesce {
		token, err = e.sharedRecovery(ctx, refreshToken)
	} else {
		token, err = e.recoverTokens(ctx, refreshToken)
	}

	if err != nil {
		run.finish(nil, err)
		return
	}

	run.token = token
	run.state = stateRetrying
}

// sharedRecovery joins the recovery in flight for refreshToken, starting one
// if there is none. The recovery itself is detached from ctx: a caller that
// gives up stops waiting but does not fail the others sharing it.
func (e *Executor) sharedRecovery(ctx context.Context, refreshToken string) (string, error) {
	detached := context.WithoutCancel(ctx)
	ch := e.group.DoChan(refreshToken, func() (any, error) {
		return e.recoverTokens(detached, refreshToken)
	})

	select {
	case res := <-ch:
		token, _ := res.Val.(string)
		return token, res.Err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// recoverTokens refreshes the pair, falling back to a full registration when
// the refresh token is expired. It returns the new access token.
func (e *Executor) recoverTokens(ctx context.Context, refreshToken string) (string, error) {
	pair, err := e.registrar.RefreshAuthToken(ctx, refreshToken)
	if err == nil {
		return pair.AccessToken, nil
	}
	if !IsExpiredGrant(err) {
		return "", &RecoveryError{Stage: StageRefresh, Err: err}
	}

	e.logger.DebugContext(ctx, "refresh token expired, registering again")

	registered, err := e.registrar.RegisterTokens(ctx, e.store.PrivateKey())
	if err != nil {
		return "", &RecoveryError{Stage: StageRegister, Err: err}
	}
	return registered.AccessToken, nil
}

func (e *Executor) retry(ctx context.Context, run *execution) {
	e.logger.DebugContext(ctx, "retrying with recovered token",
		"method", run.req.Method,
		"url", run.req.URL,
	)
	run.finish(e.caller.Call(ctx, run.req.WithBearer(run.token)))
}
