// Package crypto seals webhook signing secrets before they reach the
// database. Secrets are encrypted with AES-256-GCM under a deployment-wide
// key; deployments without a key keep storing plaintext.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/getevo/evo/v2/lib/settings"
)

// keySetting holds the 32-byte encryption key. Environment deployments
// export APP_ENCRYPTION_KEY; the settings layer folds it in.
const keySetting = "APP.ENCRYPTION_KEY"

const keySize = 32

// KeyConfigured reports whether an encryption key is present. Callers skip
// encryption entirely when it is not.
func KeyConfigured() bool {
	return settings.Get(keySetting).String() != ""
}

func sealer() (cipher.AEAD, error) {
	key := []byte(settings.Get(keySetting).String())
	if len(key) == 0 {
		return nil, fmt.Errorf("%s is not configured", keySetting)
	}
	if len(key) != keySize {
		return nil, fmt.Errorf("%s must be %d bytes for AES-256, got %d", keySetting, keySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// EncryptAES256GCM seals plaintext under the configured key and returns it
// base64-encoded with the nonce prepended.
func EncryptAES256GCM(plaintext string) (string, error) {
	gcm, err := sealer()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("nonce generation failed: %w", err)
	}

	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// DecryptAES256GCM reverses EncryptAES256GCM.
func DecryptAES256GCM(encoded string) (string, error) {
	gcm, err := sealer()
	if err != nil {
		return "", err
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("ciphertext is not valid base64: %w", err)
	}
	if len(data) < gcm.NonceSize() {
		return "", fmt.Errorf("ciphertext shorter than nonce: %d bytes", len(data))
	}

	nonce, sealed := data[:gcm.NonceSize()], data[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("decryption failed: %w", err)
	}
	return string(plaintext), nil
}

// IsEncrypted reports whether data looks like EncryptAES256GCM output.
// Secrets stored before encryption was enabled fail the check and stay
// readable as-is.
func IsEncrypted(data string) bool {
	if data == "" {
		return false
	}
	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return false
	}
	// 12-byte GCM nonce plus at least one sealed byte
	return len(decoded) >= 13
}
