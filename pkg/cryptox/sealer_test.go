package cryptox_test

import (
	"testing"

	"github.com/aussiebroadwan/walletsdk/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestSealOpen(t *testing.T) {
	sealer, err := cryptox.NewSealer([]byte("test-master-key"), []byte("salt-0001"))
	require.NoError(t, err)

	plaintext := []byte(`{"accessToken":"a","refreshToken":"r"}`)
	aad := []byte("key-id")

	sealed1, err := sealer.Seal(plaintext, aad)
	require.NoError(t, err)
	sealed2, err := sealer.Seal(plaintext, aad)
	require.NoError(t, err)
	require.NotEqual(t, sealed1, sealed2, "random nonce should make ciphertexts differ")

	opened, err := sealer.Open(sealed1, aad)
	require.NoError(t, err)
	require.Equal(t, plaintext, opened)
}

func TestOpenRejectsTampering(t *testing.T) {
	sealer, err := cryptox.NewSealer([]byte("test-master-key"), []byte("salt-0001"))
	require.NoError(t, err)

	sealed, err := sealer.Seal([]byte("secret"), []byte("key-a"))
	require.NoError(t, err)

	t.Run("wrong aad", func(t *testing.T) {
		_, err := sealer.Open(sealed, []byte("key-b"))
		require.Error(t, err)
	})

	t.Run("wrong master key", func(t *testing.T) {
		other, err := cryptox.NewSealer([]byte("another-master-key"), []byte("salt-0001"))
		require.NoError(t, err)
		_, err = other.Open(sealed, []byte("key-a"))
		require.Error(t, err)
	})

	t.Run("truncated", func(t *testing.T) {
		_, err := sealer.Open(sealed[:10], []byte("key-a"))
		require.ErrorIs(t, err, cryptox.ErrSealedTooShort)
	})

	t.Run("empty master", func(t *testing.T) {
		_, err := cryptox.NewSealer(nil, []byte("salt"))
		require.Error(t, err)
	})
}
