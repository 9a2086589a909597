package walletsdk

import (
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// HeaderSignature carries the hex signature of the request payload.
const HeaderSignature = "X-API-Signature"

// Signer proves possession of the wallet private key by signing request
// payloads with Ed25519.
type Signer struct {
	key ed25519.PrivateKey
}

// NewSigner parses a hex encoded 32 byte Ed25519 seed.
func NewSigner(privateKey string) (*Signer, error) {
	privateKey = strings.TrimPrefix(strings.TrimSpace(privateKey), "0x")
	if privateKey == "" {
		return nil, ErrMissingPrivateKey
	}

	seed, err := hex.DecodeString(privateKey)
	if err != nil || len(seed) != ed25519.SeedSize {
		return nil, ErrInvalidPrivateKey
	}

	return &Signer{key: ed25519.NewKeyFromSeed(seed)}, nil
}

// PublicKey returns the hex encoded public key registered with the service.
func (s *Signer) PublicKey() string {
	return hex.EncodeToString(s.key.Public().(ed25519.PublicKey))
}

// SignPayload signs raw bytes and returns the hex signature.
func (s *Signer) SignPayload(payload []byte) (string, error) {
	sig, err := jwt.SigningMethodEdDSA.Sign(string(payload), s.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign payload: %w", err)
	}
	return hex.EncodeToString(sig), nil
}

// Sign returns a copy of req with the X-API-Signature header set. The signed
// payload is the JSON body when there is one, otherwise the sorted, encoded
// query parameters.
func (s *Signer) Sign(req Request) (Request, error) {
	payload, err := signingPayload(req)
	if err != nil {
		return req, err
	}

	sig, err := s.SignPayload(payload)
	if err != nil {
		return req, err
	}
	return req.WithHeader(HeaderSignature, sig), nil
}

// VerifyPayload checks a hex signature against a hex public key.
func VerifyPayload(publicKey string, payload []byte, signature string) error {
	pub, err := hex.DecodeString(publicKey)
	if err != nil || len(pub) != ed25519.PublicKeySize {
		return fmt.Errorf("invalid public key")
	}
	sig, err := hex.DecodeString(signature)
	if err != nil {
		return fmt.Errorf("invalid signature encoding: %w", err)
	}
	return jwt.SigningMethodEdDSA.Verify(string(payload), sig, ed25519.PublicKey(pub))
}

func signingPayload(req Request) ([]byte, error) {
	if data := req.Data(); data != nil {
		payload, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to encode payload for signing: %w", err)
		}
		return payload, nil
	}

	values := url.Values{}
	for key, value := range req.Params() {
		values.Set(key, value)
	}
	return []byte(values.Encode()), nil
}
