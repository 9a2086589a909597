package cryptox

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
)

// GenerateEd25519Seed generates a new Ed25519 key and returns its 32 byte
// seed and public key, both hex encoded. The seed is the form wallets are
// configured with.
func GenerateEd25519Seed() (seed, publicKey string, err error) {
	return generateEd25519Seed(rand.Reader)
}

func generateEd25519Seed(random io.Reader) (string, string, error) {
	pub, priv, err := ed25519.GenerateKey(random)
	if err != nil {
		return "", "", fmt.Errorf("cryptox: failed to generate Ed25519 key: %w", err)
	}
	return hex.EncodeToString(priv.Seed()), hex.EncodeToString(pub), nil
}
