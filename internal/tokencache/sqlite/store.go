// Package sqlite persists the SDK token pair in a SQLite database so a CLI or
// service restart does not force a new registration. Pairs are sealed with
// cryptox.Sealer and keyed by the fingerprint of the wallet public key, one
// database can hold the tokens of several wallets.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/walletsdk/pkg/cryptox"
	"github.com/aussiebroadwan/walletsdk/pkg/walletsdk"
	_ "modernc.org/sqlite"
)

type Store struct {
	db     *sql.DB
	keyID  string
	sealer *cryptox.Sealer
	now    func() time.Time
}

var _ walletsdk.TokenPersister = (*Store)(nil)

// Open opens (creating if needed) the database at dsn, applies migrations and
// returns a store for the wallet identified by publicKey.
func Open(dsn, publicKey string, sealer *cryptox.Sealer) (*Store, error) {
	if sealer == nil {
		return nil, errors.New("tokencache: sealer is required")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// A single connection serialises writers, SQLite allows one at a time.
	db.SetMaxOpenConns(1)

	s := &Store{
		db:     db,
		keyID:  cryptox.Fingerprint(publicKey),
		sealer: sealer,
		now:    time.Now,
	}
	if err := s.ApplyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("tokencache: failed to apply migrations: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// LoadTokens implements walletsdk.TokenPersister.
func (s *Store) LoadTokens(ctx context.Context) (walletsdk.TokenPair, bool, error) {
	var sealed []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT sealed FROM token_pairs WHERE key_id = ?`, s.keyID,
	).Scan(&sealed)
	if errors.Is(err, sql.ErrNoRows) {
		return walletsdk.TokenPair{}, false, nil
	}
	if err != nil {
		return walletsdk.TokenPair{}, false, err
	}

	plaintext, err := s.sealer.Open(sealed, []byte(s.keyID))
	if err != nil {
		return walletsdk.TokenPair{}, false, err
	}

	var pair walletsdk.TokenPair
	if err := json.Unmarshal(plaintext, &pair); err != nil {
		return walletsdk.TokenPair{}, false, fmt.Errorf("tokencache: corrupt token pair: %w", err)
	}
	return pair, true, nil
}

// SaveTokens implements walletsdk.TokenPersister. Saving an empty pair
// deletes the stored one.
func (s *Store) SaveTokens(ctx context.Context, pair walletsdk.TokenPair) error {
	if pair.IsZero() {
		_, err := s.db.ExecContext(ctx, `DELETE FROM token_pairs WHERE key_id = ?`, s.keyID)
		return err
	}

	plaintext, err := json.Marshal(pair)
	if err != nil {
		return err
	}
	sealed, err := s.sealer.Seal(plaintext, []byte(s.keyID))
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO token_pairs (key_id, sealed, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key_id) DO UPDATE SET sealed = excluded.sealed, updated_at = excluded.updated_at`,
		s.keyID, sealed, s.now().UTC(),
	)
	return err
}

// UpdatedAt returns when the pair of this wallet was last saved.
func (s *Store) UpdatedAt(ctx context.Context) (time.Time, bool, error) {
	var updatedAt time.Time
	err := s.db.QueryRowContext(ctx,
		`SELECT updated_at FROM token_pairs WHERE key_id = ?`, s.keyID,
	).Scan(&updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return updatedAt, true, nil
}
