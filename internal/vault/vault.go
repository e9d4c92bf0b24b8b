package vault

import (
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/chacha20poly1305"
)

// Vault encrypts API token secrets at rest and signs operator session
// tokens. Encryption is deterministic: the nonce is derived from the
// plaintext via HMAC, so the same secret always produces the same
// ciphertext and stored values can be matched with a single indexed
// equality lookup. The at-rest encryption is therefore obfuscation keyed
// by the process secret, not a boundary the lookup path relies on.
type Vault struct {
	aead          cipher.AEAD
	nonceKey      []byte
	sessionSecret []byte
	sessionTTL    time.Duration
}

// New builds a Vault from the urlsafe-base64 encoded 32-byte key. Callers
// treat an error here as fatal: nothing can be issued or resolved without
// valid key material.
func New(keyB64, sessionSecret string, sessionTTL time.Duration) (*Vault, error) {
	key, err := base64.URLEncoding.DecodeString(keyB64)
	if err != nil {
		return nil, fmt.Errorf("decode vault key: %w", err)
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("vault key must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	if sessionSecret == "" {
		return nil, fmt.Errorf("session secret is required")
	}

	// Separate key for nonce derivation so the cipher key is never used
	// directly as a MAC key.
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte("nonce-derivation"))

	return &Vault{
		aead:          aead,
		nonceKey:      mac.Sum(nil),
		sessionSecret: []byte(sessionSecret),
		sessionTTL:    sessionTTL,
	}, nil
}

// Encrypt returns the urlsafe-base64 ciphertext of plaintext. Deterministic:
// equal inputs produce equal outputs under the same key.
func (v *Vault) Encrypt(plaintext string) string {
	mac := hmac.New(sha256.New, v.nonceKey)
	mac.Write([]byte(plaintext))
	nonce := mac.Sum(nil)[:v.aead.NonceSize()]

	sealed := v.aead.Seal(nil, nonce, []byte(plaintext), nil)
	return base64.RawURLEncoding.EncodeToString(append(nonce, sealed...))
}

// Decrypt reverses Encrypt. Returns false on any malformed or undecryptable
// input; decryption failure is a recoverable event, not an error the caller
// has to distinguish.
func (v *Vault) Decrypt(ciphertext string) (string, bool) {
	raw, err := base64.RawURLEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", false
	}
	if len(raw) < v.aead.NonceSize() {
		return "", false
	}
	nonce, sealed := raw[:v.aead.NonceSize()], raw[v.aead.NonceSize():]
	plaintext, err := v.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", false
	}
	return string(plaintext), true
}

// SignSession produces a time-bounded HS256 token asserting the given
// identity.
func (v *Vault) SignSession(username string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(v.sessionTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(v.sessionSecret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// VerifySession checks signature and expiry and returns the identity claim.
func (v *Vault) VerifySession(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return v.sessionSecret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return "", fmt.Errorf("parse session token: %w", err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", fmt.Errorf("session token has no subject")
	}
	return claims.Subject, nil
}
