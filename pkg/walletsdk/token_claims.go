package walletsdk

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is what the SDK reads from an access token. The signature is
// not verified, the service does that; the claims are informational.
type TokenClaims struct {
	jwt.RegisteredClaims

	WalletID string `json:"walletId,omitempty"`
	UserID   string `json:"userId,omitempty"`
}

// ParseTokenClaims decodes the claims of a JWT access token.
func ParseTokenClaims(accessToken string) (*TokenClaims, error) {
	if accessToken == "" {
		return nil, ErrNotRegistered
	}

	claims := &TokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return nil, fmt.Errorf("failed to parse access token: %w", err)
	}
	return claims, nil
}

// Expiry returns the expiry of the token, or the zero time if it has none.
func (c *TokenClaims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// Expired reports whether the token is expired at now.
func (c *TokenClaims) Expired(now time.Time) bool {
	exp := c.Expiry()
	return !exp.IsZero() && !now.Before(exp)
}
