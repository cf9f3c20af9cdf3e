package encrypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
)

// Test Environment Only
const (
	encryptionKey = "Xq2vB8ydRnK4ho7ImWCzEe5T0JPsAf3N" // 32 bytes for AES-256
	pepper        = "kR9mZw2LcQ6Fpv1"
)

// EncryptSecret takes a plaintext credential (SSH password or private key)
// and returns an encrypted, base64-encoded string. Empty input stays empty
// so servers without credentials round-trip unchanged.
func EncryptSecret(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	// Add pepper to the plaintext
	plaintextWithPepper := plaintext + pepper

	// Create a new AES cipher block using the key
	block, err := aes.NewCipher([]byte(encryptionKey))
	if err != nil {
		return "", fmt.Errorf("could not create new cipher: %w", err)
	}

	// Create a new GCM cipher mode
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("could not create GCM: %w", err)
	}

	// Create a new nonce (Number used ONCE)
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("could not create nonce: %w", err)
	}

	// Encrypt and seal the data
	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintextWithPepper), nil)

	// Return base64 encoded string
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// DecryptSecret takes a base64-encoded encrypted string and returns the original plaintext
func DecryptSecret(encryptedBase64 string) (string, error) {
	if encryptedBase64 == "" {
		return "", nil
	}

	// Decode the base64 string
	ciphertext, err := base64.StdEncoding.DecodeString(encryptedBase64)
	if err != nil {
		return "", fmt.Errorf("could not decode base64 string: %w", err)
	}

	// Create a new AES cipher block using the key
	block, err := aes.NewCipher([]byte(encryptionKey))
	if err != nil {
		return "", fmt.Errorf("could not create new cipher: %w", err)
	}

	// Create a new GCM cipher mode
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("could not create GCM: %w", err)
	}

	// Check if the ciphertext is long enough
	nonceSize := gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return "", fmt.Errorf("ciphertext too short")
	}

	// Extract the nonce and ciphertext
	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]

	// Decrypt the data
	plaintextWithPepper, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("could not decrypt: %w", err)
	}

	if len(plaintextWithPepper) < len(pepper) {
		return "", fmt.Errorf("decrypted payload too short")
	}

	// Remove the pepper
	plaintext := string(plaintextWithPepper[:len(plaintextWithPepper)-len(pepper)])

	return plaintext, nil
}
