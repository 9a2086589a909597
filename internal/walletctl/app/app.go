package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/walletsdk/internal/tokencache/sqlite"
	"github.com/aussiebroadwan/walletsdk/pkg/cryptox"
	"github.com/aussiebroadwan/walletsdk/pkg/slogx"
	"github.com/aussiebroadwan/walletsdk/pkg/walletsdk"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application holds the SDK client and the token cache of one walletctl run.
type Application struct {
	cfg    Config
	logger *slog.Logger

	cache  *sqlite.Store // nil when TokenDB is not configured
	client *walletsdk.Client

	restored bool
}

// New creates a new Application. Logs are written to logOutput; when a token
// database is configured the cached pair is restored.
func New(ctx context.Context, cfg Config, logOutput io.Writer) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "walletctl",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
			Output:  logOutput,
		}),
	}

	signer, err := walletsdk.NewSigner(cfg.PrivateKey)
	if err != nil {
		return nil, err
	}

	if err := app.initTokenCache(ctx, signer.PublicKey()); err != nil {
		return nil, err
	}

	if err := app.initClient(); err != nil {
		_ = app.Close()
		return nil, err
	}

	if app.cache != nil {
		restored, err := app.client.Restore(ctx)
		if err != nil {
			// A cache we cannot read only costs a registration.
			app.logger.Warn("failed to restore cached tokens", "error", err)
		}
		app.restored = restored
		app.logger.Debug("token cache opened", "path", cfg.TokenDB, "restored", restored)
	}

	return app, nil
}

// initTokenCache opens the SQLite token cache when TokenDB is set.
func (app *Application) initTokenCache(ctx context.Context, publicKey string) error {
	if app.cfg.TokenDB == "" {
		return nil
	}

	master := app.cfg.MasterKey
	if master == "" {
		master = app.cfg.PrivateKey
	}
	sealer, err := cryptox.NewSealer([]byte(master), []byte("walletctl:"+publicKey))
	if err != nil {
		return fmt.Errorf("failed to initialize token sealer: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", app.cfg.TokenDB)
	cache, err := sqlite.Open(dsn, publicKey, sealer)
	if err != nil {
		return fmt.Errorf("failed to open token cache: %w", err)
	}
	if err := cache.Ping(ctx); err != nil {
		_ = cache.Close()
		return fmt.Errorf("token cache unreachable: %w", err)
	}
	app.cache = cache
	return nil
}

func (app *Application) initClient() error {
	cfg := walletsdk.Config{
		APIURL:           app.cfg.APIURL,
		NotificationsURL: app.cfg.NotificationsURL,
		PrivateKey:       app.cfg.PrivateKey,
		HTTPClient: &http.Client{
			Timeout:   app.cfg.HTTPTimeout,
			Transport: slogx.NewTransport(nil, app.logger),
		},
		Logger:    app.logger,
		RateLimit: app.cfg.RateLimit,
		RateBurst: app.cfg.RateBurst,
	}
	if app.cache != nil {
		cfg.TokenPersister = app.cache
	}

	client, err := walletsdk.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create wallet client: %w", err)
	}
	app.client = client
	return nil
}

// Client returns the wallet SDK client.
func (app *Application) Client() *walletsdk.Client { return app.client }

// Logger returns the application logger.
func (app *Application) Logger() *slog.Logger { return app.logger }

// Restored reports whether a cached token pair was loaded at startup.
func (app *Application) Restored() bool { return app.restored }

// EnsureRegistered registers the wallet unless tokens are already held.
func (app *Application) EnsureRegistered(ctx context.Context) error {
	if !app.client.Credentials().Tokens().IsZero() {
		return nil
	}
	_, err := app.client.Register(ctx)
	return err
}

// Forget drops the held token pair, including the cached one.
func (app *Application) Forget(ctx context.Context) {
	app.client.Credentials().Clear(ctx)
	app.restored = false
}

// Close releases the token cache.
func (app *Application) Close() error {
	if app.cache == nil {
		return nil
	}
	if err := app.cache.Close(); err != nil {
		app.logger.Error("error closing token cache", "error", err)
		return err
	}
	return nil
}
