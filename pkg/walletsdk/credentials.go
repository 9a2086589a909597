package walletsdk

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// TokenPair is the OAuth token pair issued by the wallet service. It is always
// replaced as a whole.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// IsZero reports whether no token is set.
func (p TokenPair) IsZero() bool {
	return p.AccessToken == "" && p.RefreshToken == ""
}

// TokenPersister keeps the token pair across process restarts.
// internal/tokencache/sqlite provides a SQLite implementation.
type TokenPersister interface {
	// LoadTokens returns the stored pair and whether one was found.
	LoadTokens(ctx context.Context) (TokenPair, bool, error)

	// SaveTokens replaces the stored pair.
	SaveTokens(ctx context.Context, pair TokenPair) error
}

// CredentialStore holds the signing key and the current token pair of one
// SDK client. Reads are concurrent, writes replace the whole pair under the
// write lock so a reader never sees half of a rotation.
type CredentialStore struct {
	privateKey string

	mu     sync.RWMutex
	tokens TokenPair

	// persistMu orders replacements so the persister always ends up with the
	// pair held in memory. Readers never take it.
	persistMu sync.Mutex

	persister TokenPersister
	logger    *slog.Logger
}

// NewCredentialStore creates a store for privateKey with no tokens.
// persister may be nil.
func NewCredentialStore(privateKey string, persister TokenPersister, logger *slog.Logger) *CredentialStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &CredentialStore{
		privateKey: privateKey,
		persister:  persister,
		logger:     logger,
	}
}

// PrivateKey returns the signing key.
func (s *CredentialStore) PrivateKey() string {
	return s.privateKey
}

// Tokens returns a snapshot of the current pair.
func (s *CredentialStore) Tokens() TokenPair {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens
}

// AccessToken returns the current access token.
func (s *CredentialStore) AccessToken() string {
	return s.Tokens().AccessToken
}

// SetTokens replaces the pair. The in-memory swap is authoritative; a failure
// to persist is logged and does not undo it. Concurrent replacements reach the
// persister in the order they were applied in memory.
func (s *CredentialStore) SetTokens(ctx context.Context, pair TokenPair) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	s.tokens = pair
	s.mu.Unlock()

	if s.persister == nil {
		return
	}
	if err := s.persister.SaveTokens(ctx, pair); err != nil {
		s.logger.Warn("failed to persist token pair", "error", err)
	}
}

// Load restores the pair from the persister, if any. It returns whether a
// pair was restored.
func (s *CredentialStore) Load(ctx context.Context) (bool, error) {
	if s.persister == nil {
		return false, nil
	}

	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	pair, ok, err := s.persister.LoadTokens(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to load token pair: %w", err)
	}
	if !ok {
		return false, nil
	}

	s.mu.Lock()
	s.tokens = pair
	s.mu.Unlock()
	return true, nil
}

// Clear drops the current pair, both in memory and in the persister.
func (s *CredentialStore) Clear(ctx context.Context) {
	s.SetTokens(ctx, TokenPair{})
}
