package walletsdk

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/walletsdk/pkg/cryptox"
	"github.com/aussiebroadwan/walletsdk/pkg/idx"
)

// Registrar obtains token pairs from the wallet service. Both operations write
// the resulting pair into the CredentialStore before returning.
type Registrar interface {
	// RefreshAuthToken exchanges a refresh token for a new pair.
	RefreshAuthToken(ctx context.Context, refreshToken string) (TokenPair, error)

	// RegisterTokens performs the full key handshake and issues a new pair.
	RegisterTokens(ctx context.Context, privateKey string) (*Registered, error)
}

// Registered is the outcome of a full registration.
type Registered struct {
	TokenPair

	WalletID string `json:"walletId"`
	UserID   string `json:"userId"`
}

// PKCEChallenge holds the PKCE verifier and challenge pair.
// The verifier is kept secret, the challenge is sent with the auth step.
type PKCEChallenge struct {
	Verifier  string
	Challenge string
	Method    string
}

// GeneratePKCEChallenge creates a new S256 verifier and challenge pair.
func GeneratePKCEChallenge() (*PKCEChallenge, error) {
	verifier, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PKCE verifier: %w", err)
	}

	hash := sha256.Sum256([]byte(verifier))
	return &PKCEChallenge{
		Verifier:  verifier,
		Challenge: base64.RawURLEncoding.EncodeToString(hash[:]),
		Method:    "S256",
	}, nil
}

// Registration is the Registrar talking to the /register endpoints of the
// wallet service through a Caller.
type Registration struct {
	apiURL string
	caller Caller
	store  *CredentialStore
}

// NewRegistration creates a Registrar for the service at apiURL.
func NewRegistration(apiURL string, caller Caller, store *CredentialStore) *Registration {
	return &Registration{
		apiURL: strings.TrimSuffix(apiURL, "/"),
		caller: caller,
		store:  store,
	}
}

type registerKeysRequest struct {
	PublicKey string `json:"publicKey"`
	UUID      string `json:"uuid"`
}

type registerKeysResponse struct {
	ExpiresAt string `json:"expiresAt"`
	Nonce     string `json:"nonce"`
}

type registerAuthRequest struct {
	CodeChallenge string `json:"codeChallenge"`
	Nonce         string `json:"nonce"`
	UUID          string `json:"uuid"`
}

type registerAuthResponse struct {
	AuthorizationCode string `json:"authorizationCode"`
	ExpiresAt         string `json:"expiresAt"`
}

type registerAccessRequest struct {
	AuthorizationCode string `json:"authorizationCode"`
	CodeVerifier      string `json:"codeVerifier"`
	UUID              string `json:"uuid"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// RegisterTokens proves ownership of privateKey and obtains a new token pair.
//
// The handshake is:
//  1. POST /register/keys with the public key, signed, answered with a nonce
//  2. POST /register/auth with the nonce and a PKCE challenge, signed,
//     answered with an authorization code
//  3. POST /register/access with the code and the PKCE verifier, answered
//     with the token pair and the wallet identity
func (r *Registration) RegisterTokens(ctx context.Context, privateKey string) (*Registered, error) {
	signer, err := NewSigner(privateKey)
	if err != nil {
		return nil, err
	}
	regID := idx.New().String()

	var keys registerKeysResponse
	err = r.post(ctx, "/register/keys", signer, registerKeysRequest{
		PublicKey: signer.PublicKey(),
		UUID:      regID,
	}, &keys)
	if err != nil {
		return nil, err
	}

	pkce, err := GeneratePKCEChallenge()
	if err != nil {
		return nil, err
	}

	var auth registerAuthResponse
	err = r.post(ctx, "/register/auth", signer, registerAuthRequest{
		CodeChallenge: pkce.Challenge,
		Nonce:         keys.Nonce,
		UUID:          regID,
	}, &auth)
	if err != nil {
		return nil, err
	}

	var registered Registered
	err = r.post(ctx, "/register/access", nil, registerAccessRequest{
		AuthorizationCode: auth.AuthorizationCode,
		CodeVerifier:      pkce.Verifier,
		UUID:              regID,
	}, &registered)
	if err != nil {
		return nil, err
	}

	r.store.SetTokens(ctx, registered.TokenPair)
	return &registered, nil
}

// RefreshAuthToken exchanges refreshToken for a new pair. The failure of the
// refresh call is returned as is so callers can inspect its status.
func (r *Registration) RefreshAuthToken(ctx context.Context, refreshToken string) (TokenPair, error) {
	var pair TokenPair
	if err := r.post(ctx, "/register/refresh", nil, refreshRequest{RefreshToken: refreshToken}, &pair); err != nil {
		return TokenPair{}, err
	}

	r.store.SetTokens(ctx, pair)
	return pair, nil
}

func (r *Registration) post(ctx context.Context, path string, signer *Signer, body, target any) error {
	req := NewRequest(http.MethodPost, r.apiURL+path).WithJSON(body)
	if signer != nil {
		signed, err := signer.Sign(req)
		if err != nil {
			return err
		}
		req = signed
	}

	resp, err := r.caller.Call(ctx, req)
	if err != nil {
		return err
	}
	return resp.Decode(target)
}
