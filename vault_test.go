package connections

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVault() *EncryptedTokenVault {
	return NewEncryptedTokenVault(
		[]byte("0123456789abcdef0123456789abcdef"),
		[]byte("fedcba9876543210fedcba9876543210"),
	)
}

func TestVault_EncryptDecrypt(t *testing.T) {
	vault := newTestVault()

	ciphertext, err := vault.Encrypt("ya29.a0AfH6-access-token")
	require.NoError(t, err)
	require.NotEmpty(t, ciphertext)
	require.NotContains(t, ciphertext, "access-token")

	plaintext, err := vault.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, "ya29.a0AfH6-access-token", plaintext)
}

func TestVault_EmptyStringPassesThrough(t *testing.T) {
	vault := newTestVault()

	ciphertext, err := vault.Encrypt("")
	require.NoError(t, err)
	assert.Empty(t, ciphertext)

	plaintext, err := vault.Decrypt("")
	require.NoError(t, err)
	assert.Empty(t, plaintext)
}

func TestVault_NonDeterministicCiphertext(t *testing.T) {
	vault := newTestVault()

	first, err := vault.Encrypt("same-token")
	require.NoError(t, err)
	second, err := vault.Encrypt("same-token")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestVault_TamperedCiphertext(t *testing.T) {
	vault := newTestVault()

	ciphertext, err := vault.Encrypt("refresh-token")
	require.NoError(t, err)

	raw, err := base64.URLEncoding.DecodeString(ciphertext)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xff
	tampered := base64.URLEncoding.EncodeToString(raw)

	_, err = vault.Decrypt(tampered)
	assert.ErrorIs(t, err, ErrInvalidCiphertext)
}

func TestVault_GarbageInput(t *testing.T) {
	vault := newTestVault()

	for _, input := range []string{"not base64!!", "YWJj", base64.URLEncoding.EncodeToString([]byte("short"))} {
		_, err := vault.Decrypt(input)
		assert.ErrorIs(t, err, ErrInvalidCiphertext, "input %q", input)
	}
}

func TestVault_WrongHMACKey(t *testing.T) {
	vault := newTestVault()
	other := NewEncryptedTokenVault(
		[]byte("0123456789abcdef0123456789abcdef"),
		[]byte("00000000000000000000000000000000"),
	)

	ciphertext, err := vault.Encrypt("token")
	require.NoError(t, err)

	_, err = other.Decrypt(ciphertext)
	assert.ErrorIs(t, err, ErrInvalidCiphertext)
}
