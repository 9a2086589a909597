// Package wallettest runs an in-process fake of the wallet service for tests.
// It implements the registration handshake, token refresh with rotation and
// a few resource endpoints, and records every call it receives.
package wallettest

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aussiebroadwan/walletsdk/pkg/walletsdk"
)

// ExpiredGrantMessage is the refresh failure message for an unusable refresh token.
const ExpiredGrantMessage = "Invalid grant: refresh token has expired"

var hmacKey = []byte("wallettest-signing-key")

type registration struct {
	publicKey string
	nonce     string
	challenge string
	code      string
}

// Server is the fake wallet service. The zero value is not usable, use New.
type Server struct {
	*httptest.Server

	// TokenTTL is the lifetime written into issued access tokens.
	TokenTTL time.Duration

	mu            sync.Mutex
	seq           int
	calls         []string
	registrations map[string]*registration
	access        map[string]string // access token -> wallet id
	refresh       map[string]string // refresh token -> wallet id
	badges        []walletsdk.Badge
	notifications []walletsdk.Notification
	refreshDelay  time.Duration
}

// New starts a fake wallet service. It is closed when the test ends.
func New(t interface{ Cleanup(func()) }) *Server {
	s := &Server{
		TokenTTL:      15 * time.Minute,
		registrations: map[string]*registration{},
		access:        map[string]string{},
		refresh:       map[string]string{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /register/keys", s.handleKeys)
	mux.HandleFunc("POST /register/auth", s.handleAuth)
	mux.HandleFunc("POST /register/access", s.handleAccess)
	mux.HandleFunc("POST /register/refresh", s.handleRefresh)
	mux.HandleFunc("GET /badge/my", s.authenticated(s.handleBadges))
	mux.HandleFunc("GET /notification/list", s.authenticated(s.handleNotifications))
	mux.HandleFunc("POST /connection/invite", s.authenticated(s.handleResult("Connection invitation was successfully sent")))
	mux.HandleFunc("POST /connection/update-identity-keys", s.authenticated(s.handleResult("Updated connections")))

	s.Server = httptest.NewServer(s.record(mux))
	t.Cleanup(s.Close)
	return s
}

// SetBadges sets what /badge/my returns.
func (s *Server) SetBadges(badges []walletsdk.Badge) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.badges = badges
}

// SetNotifications sets what /notification/list returns.
func (s *Server) SetNotifications(notifications []walletsdk.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = notifications
}

// SetRefreshDelay makes /register/refresh wait d before answering.
func (s *Server) SetRefreshDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshDelay = d
}

// RevokeAccessTokens invalidates every issued access token.
func (s *Server) RevokeAccessTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.access)
}

// RevokeRefreshTokens invalidates every issued refresh token.
func (s *Server) RevokeRefreshTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.refresh)
}

// Calls returns "METHOD /path" for every request received, in order.
func (s *Server) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// CallCount returns how many requests hit path.
func (s *Server) CallCount(path string) int {
	n := 0
	for _, call := range s.Calls() {
		if strings.HasSuffix(call, " "+path) {
			n++
		}
	}
	return n
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls = append(s.calls, r.Method+" "+r.URL.Path)
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authenticated(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

		s.mu.Lock()
		_, ok := s.access[token]
		s.mu.Unlock()

		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Signature not verified"})
			return
		}
		next(w, r)
	}
}

func (s *Server) handleKeys(w http.ResponseWriter, r *http.Request) {
	body, payload, ok := readBody[struct {
		PublicKey string `json:"publicKey"`
		UUID      string `json:"uuid"`
	}](w, r)
	if !ok {
		return
	}
	if err := walletsdk.VerifyPayload(payload.PublicKey, body, r.Header.Get(walletsdk.HeaderSignature)); err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Signature not verified"})
		return
	}

	s.mu.Lock()
	s.seq++
	nonce := fmt.Sprintf("nonce-%d", s.seq)
	s.registrations[payload.UUID] = &registration{publicKey: payload.PublicKey, nonce: nonce}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{
		"expiresAt": time.Now().Add(time.Minute).UTC().Format(time.RFC3339),
		"nonce":     nonce,
	})
}

func (s *Server) handleAuth(w http.ResponseWriter, r *http.Request) {
	body, payload, ok := readBody[struct {
		CodeChallenge string `json:"codeChallenge"`
		Nonce         string `json:"nonce"`
		UUID          string `json:"uuid"`
	}](w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	reg, found := s.registrations[payload.UUID]
	if !found || reg.nonce != payload.Nonce {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Unknown registration"})
		return
	}
	if err := walletsdk.VerifyPayload(reg.publicKey, body, r.Header.Get(walletsdk.HeaderSignature)); err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Signature not verified"})
		return
	}

	s.seq++
	reg.challenge = payload.CodeChallenge
	reg.code = fmt.Sprintf("code-%d", s.seq)

	writeJSON(w, http.StatusOK, map[string]string{
		"authorizationCode": reg.code,
		"expiresAt":         time.Now().Add(time.Minute).UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleAccess(w http.ResponseWriter, r *http.Request) {
	_, payload, ok := readBody[struct {
		AuthorizationCode string `json:"authorizationCode"`
		CodeVerifier      string `json:"codeVerifier"`
		UUID              string `json:"uuid"`
	}](w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	reg, found := s.registrations[payload.UUID]
	if !found || reg.code == "" || reg.code != payload.AuthorizationCode {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid authorization code"})
		return
	}
	hash := sha256.Sum256([]byte(payload.CodeVerifier))
	if base64.RawURLEncoding.EncodeToString(hash[:]) != reg.challenge {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid code verifier"})
		return
	}
	delete(s.registrations, payload.UUID)

	walletID := "wallet-" + reg.publicKey[:8]
	pair := s.issueLocked(walletID)
	writeJSON(w, http.StatusOK, map[string]string{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
		"walletId":     walletID,
		"userId":       "user-" + reg.publicKey[:8],
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	_, payload, ok := readBody[struct {
		RefreshToken string `json:"refreshToken"`
	}](w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	delay := s.refreshDelay
	s.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	walletID, found := s.refresh[payload.RefreshToken]
	if !found {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": ExpiredGrantMessage})
		return
	}
	delete(s.refresh, payload.RefreshToken)

	pair := s.issueLocked(walletID)
	writeJSON(w, http.StatusOK, pair)
}

func (s *Server) handleBadges(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("walletId") == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Could not find a Wallet ID to search by."})
		return
	}

	s.mu.Lock()
	badges := s.badges
	s.mu.Unlock()
	if badges == nil {
		badges = []walletsdk.Badge{}
	}
	writeJSON(w, http.StatusOK, badges)
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get(walletsdk.HeaderSignature) == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Signature not verified"})
		return
	}

	s.mu.Lock()
	notifications := s.notifications
	s.mu.Unlock()
	if notifications == nil {
		notifications = []walletsdk.Notification{}
	}
	writeJSON(w, http.StatusOK, notifications)
}

func (s *Server) handleResult(message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(walletsdk.HeaderSignature) == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Signature not verified"})
			return
		}
		writeJSON(w, http.StatusOK, walletsdk.ResultResponse{Result: "success", Message: message})
	}
}

// issueLocked mints a new pair for walletID. s.mu must be held.
func (s *Server) issueLocked(walletID string) walletsdk.TokenPair {
	s.seq++
	now := time.Now()

	claims := walletsdk.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   walletID,
			ID:        fmt.Sprintf("jti-%d", s.seq),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.TokenTTL)),
		},
		WalletID: walletID,
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(hmacKey)
	if err != nil {
		panic(err)
	}
	refresh := fmt.Sprintf("refresh-%d", s.seq)

	s.access[access] = walletID
	s.refresh[refresh] = walletID
	return walletsdk.TokenPair{AccessToken: access, RefreshToken: refresh}
}

// IssueTokens mints a valid pair for walletID without the handshake.
func (s *Server) IssueTokens(walletID string) walletsdk.TokenPair {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueLocked(walletID)
}

func readBody[T any](w http.ResponseWriter, r *http.Request) ([]byte, T, bool) {
	var payload T
	body, err := io.ReadAll(r.Body)
	if err == nil {
		err = json.Unmarshal(body, &payload)
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid body"})
		return nil, payload, false
	}
	return body, payload, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
