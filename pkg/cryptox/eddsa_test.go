package cryptox

import (
	"bytes"
	"crypto/ed25519"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateEd25519Seed(t *testing.T) {
	seed, pub, err := GenerateEd25519Seed()
	require.NoError(t, err)
	require.Len(t, seed, 2*ed25519.SeedSize)
	require.Len(t, pub, 2*ed25519.PublicKeySize)

	raw, err := hex.DecodeString(seed)
	require.NoError(t, err)
	key := ed25519.NewKeyFromSeed(raw)
	require.Equal(t, pub, hex.EncodeToString(key.Public().(ed25519.PublicKey)))

	other, _, err := GenerateEd25519Seed()
	require.NoError(t, err)
	require.NotEqual(t, seed, other)
}

func TestGenerateEd25519SeedDeterministicReader(t *testing.T) {
	random := bytes.Repeat([]byte{0x42}, ed25519.SeedSize)

	seed, _, err := generateEd25519Seed(bytes.NewReader(random))
	require.NoError(t, err)
	require.Equal(t, hex.EncodeToString(random), seed)
}

func TestGenerateEd25519SeedShortReader(t *testing.T) {
	_, _, err := generateEd25519Seed(bytes.NewReader([]byte{1, 2, 3}))
	require.ErrorContains(t, err, "failed to generate Ed25519 key")
}
