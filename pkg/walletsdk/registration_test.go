package walletsdk

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGeneratePKCEChallenge(t *testing.T) {
	t.Parallel()

	pkce, err := GeneratePKCEChallenge()
	require.NoError(t, err)
	require.NotEmpty(t, pkce.Verifier)
	require.Equal(t, "S256", pkce.Method)

	hash := sha256.Sum256([]byte(pkce.Verifier))
	require.Equal(t, base64.RawURLEncoding.EncodeToString(hash[:]), pkce.Challenge)

	other, err := GeneratePKCEChallenge()
	require.NoError(t, err)
	require.NotEqual(t, pkce.Verifier, other.Verifier)
}

func TestRegisterTokensHandshake(t *testing.T) {
	t.Parallel()

	caller := newScriptedCaller(t,
		respondJSON(http.StatusOK, registerKeysResponse{Nonce: "n1", ExpiresAt: "2026-01-01T00:00:00Z"}),
		respondJSON(http.StatusOK, registerAuthResponse{AuthorizationCode: "code-1"}),
		respondJSON(http.StatusOK, map[string]string{
			"accessToken":  "a1",
			"refreshToken": "r1",
			"walletId":     "w1",
			"userId":       "u1",
		}),
	)
	persister := &memoryPersister{}
	store := NewCredentialStore(testPrivateKey, persister, discardLogger())
	registration := NewRegistration("https://wallet.example.com/", caller, store)

	registered, err := registration.RegisterTokens(context.Background(), testPrivateKey)
	require.NoError(t, err)
	require.Equal(t, "w1", registered.WalletID)
	require.Equal(t, "u1", registered.UserID)
	require.Equal(t, TokenPair{AccessToken: "a1", RefreshToken: "r1"}, store.Tokens())
	require.Equal(t, store.Tokens(), persister.pair)

	calls := caller.Calls()
	require.Equal(t, []string{"/register/keys", "/register/auth", "/register/access"}, caller.Paths())
	require.Equal(t, "https://wallet.example.com/register/keys", calls[0].URL)

	signer, err := NewSigner(testPrivateKey)
	require.NoError(t, err)

	keys := calls[0].Data().(registerKeysRequest)
	require.Equal(t, signer.PublicKey(), keys.PublicKey)
	require.NotEmpty(t, keys.UUID)
	payload, _ := json.Marshal(keys)
	require.NoError(t, VerifyPayload(signer.PublicKey(), payload, calls[0].Header(HeaderSignature)))

	auth := calls[1].Data().(registerAuthRequest)
	require.Equal(t, "n1", auth.Nonce)
	require.Equal(t, keys.UUID, auth.UUID)
	require.NotEmpty(t, calls[1].Header(HeaderSignature))

	access := calls[2].Data().(registerAccessRequest)
	require.Equal(t, "code-1", access.AuthorizationCode)
	require.Equal(t, keys.UUID, access.UUID)
	require.Empty(t, calls[2].Header(HeaderSignature))

	hash := sha256.Sum256([]byte(access.CodeVerifier))
	require.Equal(t, base64.RawURLEncoding.EncodeToString(hash[:]), auth.CodeChallenge)
}

func TestRegisterTokensStopsOnFailure(t *testing.T) {
	t.Parallel()

	caller := newScriptedCaller(t,
		respondJSON(http.StatusOK, registerKeysResponse{Nonce: "n1"}),
		respondJSON(http.StatusUnauthorized, map[string]string{"message": "Signature not verified"}),
	)
	store := NewCredentialStore(testPrivateKey, nil, discardLogger())
	registration := NewRegistration("https://wallet.example.com", caller, store)

	_, err := registration.RegisterTokens(context.Background(), testPrivateKey)
	require.Equal(t, http.StatusUnauthorized, StatusCode(err))
	require.Len(t, caller.Calls(), 2)
	require.True(t, store.Tokens().IsZero())
}

func TestRegisterTokensRejectsBadKey(t *testing.T) {
	t.Parallel()

	caller := newScriptedCaller(t)
	registration := NewRegistration("https://wallet.example.com", caller, NewCredentialStore("", nil, nil))

	_, err := registration.RegisterTokens(context.Background(), "")
	require.ErrorIs(t, err, ErrMissingPrivateKey)
	require.Empty(t, caller.Calls())
}

func TestRefreshAuthToken(t *testing.T) {
	t.Parallel()

	t.Run("rotates the pair", func(t *testing.T) {
		caller := newScriptedCaller(t,
			respondJSON(http.StatusOK, TokenPair{AccessToken: "a2", RefreshToken: "r2"}),
		)
		store := NewCredentialStore(testPrivateKey, nil, discardLogger())
		store.SetTokens(context.Background(), TokenPair{AccessToken: "a1", RefreshToken: "r1"})

		pair, err := NewRegistration("https://wallet.example.com", caller, store).
			RefreshAuthToken(context.Background(), "r1")
		require.NoError(t, err)
		require.Equal(t, TokenPair{AccessToken: "a2", RefreshToken: "r2"}, pair)
		require.Equal(t, pair, store.Tokens())

		calls := caller.Calls()
		require.Len(t, calls, 1)
		require.Equal(t, http.MethodPost, calls[0].Method)
		require.Equal(t, refreshRequest{RefreshToken: "r1"}, calls[0].Data())
	})

	t.Run("returns the failure unchanged", func(t *testing.T) {
		req := NewRequest(http.MethodPost, "/register/refresh")
		want := newResponseError(&req, http.StatusBadRequest, []byte(`{"message":"Invalid grant"}`))
		caller := newScriptedCaller(t, fail(want))
		store := NewCredentialStore(testPrivateKey, nil, discardLogger())

		_, err := NewRegistration("https://wallet.example.com", caller, store).
			RefreshAuthToken(context.Background(), "r1")
		require.Same(t, want, err)
		require.True(t, store.Tokens().IsZero())
	})
}
