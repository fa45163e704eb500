package fieldcrypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

// MinSecretLength is the shortest secret accepted for key derivation.
const MinSecretLength = 16

const keyInfo = "order-pii-v1"

var (
	// ErrWeakSecret is returned when the configured secret is too short.
	ErrWeakSecret = fmt.Errorf("encryption secret must be at least %d bytes", MinSecretLength)

	// ErrMalformedToken means a stored value is not in nonce:ciphertext form.
	ErrMalformedToken = errors.New("malformed token")

	// ErrDecryptFailed means the token parsed but did not authenticate under the key.
	ErrDecryptFailed = errors.New("authentication failed")
)

// Cipher encrypts individual string fields. Encrypt output is
// "<nonce hex>:<ciphertext hex>"; the empty string maps to itself.
type Cipher interface {
	Encrypt(plaintext string) (string, error)

	// Decrypt returns the plaintext and true, or the token unchanged and
	// false when it cannot be decrypted. It never returns an error so a
	// single bad field does not make a whole record unreadable.
	Decrypt(token string) (string, bool)
}

// FailureHook observes decryption failures. reason is ErrMalformedToken or
// ErrDecryptFailed; the token itself is never passed on.
type FailureHook func(reason error)

// Option configures a Cipher.
type Option func(*gcmCipher)

// WithFailureHook registers a hook that is called on every failed Decrypt.
func WithFailureHook(hook FailureHook) Option {
	return func(c *gcmCipher) {
		c.onFailure = hook
	}
}

type gcmCipher struct {
	aead      cipher.AEAD
	rand      io.Reader
	onFailure FailureHook
}

// NewCipher derives an AES-256 key from secret with HKDF-SHA256 and returns
// an AES-GCM field cipher.
func NewCipher(secret []byte, opts ...Option) (Cipher, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}

	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(keyInfo)), key); err != nil {
		return nil, fmt.Errorf("failed to derive encryption key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create block cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	c := &gcmCipher{
		aead:      aead,
		rand:      rand.Reader,
		onFailure: func(error) {},
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func (c *gcmCipher) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(c.rand, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := c.aead.Seal(nil, nonce, []byte(plaintext), nil)
	return hex.EncodeToString(nonce) + ":" + hex.EncodeToString(sealed), nil
}

func (c *gcmCipher) Decrypt(token string) (string, bool) {
	if token == "" {
		return "", true
	}

	noncePart, sealedPart, ok := strings.Cut(token, ":")
	if !ok {
		return c.fail(token, ErrMalformedToken)
	}

	nonce, err := hex.DecodeString(noncePart)
	if err != nil || len(nonce) != c.aead.NonceSize() {
		return c.fail(token, ErrMalformedToken)
	}

	sealed, err := hex.DecodeString(sealedPart)
	if err != nil || len(sealed) < c.aead.Overhead() {
		return c.fail(token, ErrMalformedToken)
	}

	plaintext, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return c.fail(token, ErrDecryptFailed)
	}

	return string(plaintext), true
}

func (c *gcmCipher) fail(token string, reason error) (string, bool) {
	c.onFailure(reason)
	return token, false
}
