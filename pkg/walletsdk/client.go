package walletsdk

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/aussiebroadwan/walletsdk/pkg/slogx"
)

// Config configures a Client. Only APIURL and PrivateKey are required.
type Config struct {
	// APIURL is the base URL of the wallet service
	APIURL string

	// NotificationsURL is the base URL of the notifications service.
	// Defaults to APIURL.
	NotificationsURL string

	// PrivateKey is the hex encoded Ed25519 seed identifying the wallet
	PrivateKey string

	// HTTPClient is used for every call. Defaults to a client with a 10 second
	// timeout whose transport logs each round trip.
	HTTPClient *http.Client

	// Caller replaces the HTTP call primitive entirely. HTTPClient, RateLimit
	// and RateBurst are ignored when it is set.
	Caller Caller

	// Logger defaults to slog.Default()
	Logger *slog.Logger

	// RateLimit is the maximum number of calls per second, 0 disables limiting
	RateLimit float64

	// RateBurst is the limiter burst size (default: 1)
	RateBurst int

	// TokenPersister keeps tokens across restarts, optional
	TokenPersister TokenPersister

	// DisableRecoveryCoalescing lets every concurrent 401 run its own refresh
	DisableRecoveryCoalescing bool
}

// Client is the entry point of the SDK. It is safe for concurrent use.
type Client struct {
	cfg    Config
	logger *slog.Logger

	store        *CredentialStore
	signer       *Signer
	caller       Caller
	registration *Registration
	executor     *Executor

	badges        *Badges
	notifications *Notifications
	connections   *Connections
}

// New creates a Client. It does not contact the service; call Register or
// Restore to obtain tokens.
func New(cfg Config) (*Client, error) {
	cfg.APIURL = strings.TrimSuffix(strings.TrimSpace(cfg.APIURL), "/")
	if cfg.APIURL == "" {
		return nil, errors.New("walletsdk: api url is required")
	}
	cfg.NotificationsURL = strings.TrimSuffix(strings.TrimSpace(cfg.NotificationsURL), "/")
	if cfg.NotificationsURL == "" {
		cfg.NotificationsURL = cfg.APIURL
	}

	signer, err := NewSigner(cfg.PrivateKey)
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	caller := cfg.Caller
	if caller == nil {
		caller = newDefaultCaller(cfg, logger)
	}

	store := NewCredentialStore(cfg.PrivateKey, cfg.TokenPersister, logger)
	registration := NewRegistration(cfg.APIURL, caller, store)

	c := &Client{
		cfg:          cfg,
		logger:       logger,
		store:        store,
		signer:       signer,
		caller:       caller,
		registration: registration,
		executor:     NewExecutor(caller, registration, store, logger, !cfg.DisableRecoveryCoalescing),
	}
	c.badges = &Badges{client: c}
	c.notifications = &Notifications{client: c}
	c.connections = &Connections{client: c}

	return c, nil
}

func newDefaultCaller(cfg Config, logger *slog.Logger) *HTTPCaller {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   defaultHTTPTimeout,
			Transport: slogx.NewTransport(nil, logger),
		}
	}

	caller := NewHTTPCaller(httpClient)
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		caller.Limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return caller
}

// Register performs the full key registration and stores the issued tokens.
func (c *Client) Register(ctx context.Context) (*Registered, error) {
	registered, err := c.registration.RegisterTokens(ctx, c.store.PrivateKey())
	if err != nil {
		return nil, err
	}
	c.logger.InfoContext(ctx, "wallet registered", "wallet_id", registered.WalletID)
	return registered, nil
}

// Restore loads previously persisted tokens. It reports whether any were found.
func (c *Client) Restore(ctx context.Context) (bool, error) {
	return c.store.Load(ctx)
}

// Execute sends req through the token recovering Executor.
func (c *Client) Execute(ctx context.Context, req Request) (*Response, error) {
	return c.executor.Execute(ctx, req)
}

// Credentials returns the credential store of this client.
func (c *Client) Credentials() *CredentialStore { return c.store }

// PublicKey returns the hex public key of the wallet.
func (c *Client) PublicKey() string { return c.signer.PublicKey() }

// TokenClaims decodes the current access token.
func (c *Client) TokenClaims() (*TokenClaims, error) {
	return ParseTokenClaims(c.store.AccessToken())
}

// TokenExpiresIn returns how long the current access token stays valid, or
// 0 when it is expired or carries no expiry.
func (c *Client) TokenExpiresIn(now time.Time) time.Duration {
	claims, err := c.TokenClaims()
	if err != nil || claims.Expiry().IsZero() {
		return 0
	}
	return max(claims.Expiry().Sub(now), 0)
}

func (c *Client) Badges() *Badges               { return c.badges }
func (c *Client) Notifications() *Notifications { return c.notifications }
func (c *Client) Connections() *Connections     { return c.connections }

// NewRequest creates a descriptor for a path of the wallet service carrying
// the current access token.
func (c *Client) NewRequest(method, path string) Request {
	return c.authorized(NewRequest(method, c.apiURL(path)))
}

// Sign adds the X-API-Signature header to req.
func (c *Client) Sign(req Request) (Request, error) {
	return c.signer.Sign(req)
}

func (c *Client) authorized(req Request) Request {
	return req.WithBearer(c.store.AccessToken())
}

func (c *Client) apiURL(path string) string {
	return c.cfg.APIURL + path
}

func (c *Client) notificationsURL(path string) string {
	return c.cfg.NotificationsURL + path
}
