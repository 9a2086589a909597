package cryptox

import (
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// Argon2id parameters for deriving a sealing key from a master secret.
const (
	sealKDFTime    = 1
	sealKDFMemory  = 64 * 1024 // 64 MiB
	sealKDFThreads = 4
)

// ErrSealedTooShort is returned when sealed data cannot even hold a nonce.
var ErrSealedTooShort = errors.New("cryptox: sealed data too short")

// Sealer encrypts small secrets (token pairs) at rest with
// XChaCha20-Poly1305. The key is derived from a master secret with Argon2id.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer derives a sealing key from master and salt.
func NewSealer(master, salt []byte) (*Sealer, error) {
	if len(master) == 0 {
		return nil, errors.New("cryptox: master secret is required")
	}

	key := argon2.IDKey(master, salt, sealKDFTime, sealKDFMemory, sealKDFThreads, chacha20poly1305.KeySize)
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("cryptox: failed to create cipher: %w", err)
	}
	return &Sealer{aead: aead}, nil
}

// Seal encrypts plaintext bound to aad.
// The output format is: [24-byte nonce][ciphertext][16-byte tag]
func (s *Sealer) Seal(plaintext, aad []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(plaintext)+s.aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("cryptox: failed to generate nonce: %w", err)
	}
	return s.aead.Seal(nonce, nonce, plaintext, aad), nil
}

// Open decrypts data produced by Seal with the same aad.
func (s *Sealer) Open(sealed, aad []byte) ([]byte, error) {
	nonceSize := s.aead.NonceSize()
	if len(sealed) < nonceSize {
		return nil, ErrSealedTooShort
	}

	plaintext, err := s.aead.Open(nil, sealed[:nonceSize], sealed[nonceSize:], aad)
	if err != nil {
		return nil, fmt.Errorf("cryptox: decryption failed: %w", err)
	}
	return plaintext, nil
}
