package connections

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// TokenVault encrypts and decrypts token material at rest. All components go
// through it; plaintext exists only in memory for the duration of the call
// that needs it.
type TokenVault interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// EncryptedTokenVault uses AES-GCM encryption and HMAC-SHA256 signing over
// the ciphertext, base64url encoded.
type EncryptedTokenVault struct {
	encryptionKey []byte
	hmacKey       []byte
}

// NewEncryptedTokenVault creates a vault. The encryption key must be a valid
// AES key length (16, 24 or 32 bytes).
func NewEncryptedTokenVault(encryptionKey, hmacKey []byte) *EncryptedTokenVault {
	return &EncryptedTokenVault{
		encryptionKey: encryptionKey,
		hmacKey:       hmacKey,
	}
}

// Encrypt seals and signs the plaintext. Empty input passes through so absent
// tokens stay absent in storage.
func (v *EncryptedTokenVault) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	block, err := aes.NewCipher(v.encryptionKey)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)

	mac := hmac.New(sha256.New, v.hmacKey)
	mac.Write(ciphertext)
	signature := mac.Sum(nil)

	return base64.URLEncoding.EncodeToString(append(signature, ciphertext...)), nil
}

// Decrypt verifies and opens the ciphertext.
func (v *EncryptedTokenVault) Decrypt(ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", nil
	}

	data, err := base64.URLEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", ErrInvalidCiphertext
	}

	if len(data) < sha256.Size {
		return "", ErrInvalidCiphertext
	}

	signature := data[:sha256.Size]
	sealed := data[sha256.Size:]

	mac := hmac.New(sha256.New, v.hmacKey)
	mac.Write(sealed)
	expectedMAC := mac.Sum(nil)

	if !hmac.Equal(signature, expectedMAC) {
		return "", ErrInvalidCiphertext
	}

	block, err := aes.NewCipher(v.encryptionKey)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("failed to create GCM: %w", err)
	}

	nonceSize := gcm.NonceSize()
	if len(sealed) < nonceSize {
		return "", ErrInvalidCiphertext
	}

	nonce, encrypted := sealed[:nonceSize], sealed[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, encrypted, nil)
	if err != nil {
		return "", ErrInvalidCiphertext
	}

	return string(plaintext), nil
}
