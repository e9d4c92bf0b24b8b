package vault

import (
	"crypto/rand"
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVault(t *testing.T) *Vault {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)

	v, err := New(base64.URLEncoding.EncodeToString(key), "test-session-secret", time.Hour)
	require.NoError(t, err)
	return v
}

func TestNew_InvalidKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{"empty", ""},
		{"not base64", "!!!not-base64!!!"},
		{"too short", base64.URLEncoding.EncodeToString([]byte("short"))},
		{"too long", base64.URLEncoding.EncodeToString(make([]byte, 64))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.key, "secret", time.Hour)
			assert.Error(t, err)
		})
	}
}

func TestNew_MissingSessionSecret(t *testing.T) {
	_, err := New(base64.URLEncoding.EncodeToString(make([]byte, 32)), "", time.Hour)
	assert.Error(t, err)
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	v := newTestVault(t)

	secrets := []string{
		"a",
		"hello world",
		"3oYqHPXbcOv-VN0cWm1Dy9gDi0Y0JvUJ1mE6jT9qR_w",
		"!@#$%^&*()_+-=[]{}|;':\",./<>?",
	}
	for _, s := range secrets {
		ct := v.Encrypt(s)
		got, ok := v.Decrypt(ct)
		require.True(t, ok, "decrypt %q", s)
		assert.Equal(t, s, got)
	}
}

func TestEncrypt_Deterministic(t *testing.T) {
	v := newTestVault(t)
	assert.Equal(t, v.Encrypt("same-secret"), v.Encrypt("same-secret"))
	assert.NotEqual(t, v.Encrypt("secret-a"), v.Encrypt("secret-b"))
}

func TestDecrypt_Garbage(t *testing.T) {
	v := newTestVault(t)

	inputs := []string{
		"",
		"not base64 at all!!!",
		base64.RawURLEncoding.EncodeToString([]byte("short")),
		base64.RawURLEncoding.EncodeToString(make([]byte, 64)), // right shape, wrong content
	}
	for _, in := range inputs {
		_, ok := v.Decrypt(in)
		assert.False(t, ok, "input %q should not decrypt", in)
	}
}

func TestDecrypt_WrongKey(t *testing.T) {
	a := newTestVault(t)
	b := newTestVault(t)

	ct := a.Encrypt("cross-key-secret")
	_, ok := b.Decrypt(ct)
	assert.False(t, ok)
}

func TestSession_RoundTrip(t *testing.T) {
	v := newTestVault(t)

	token, err := v.SignSession("operator")
	require.NoError(t, err)

	username, err := v.VerifySession(token)
	require.NoError(t, err)
	assert.Equal(t, "operator", username)
}

func TestSession_Expired(t *testing.T) {
	key := base64.URLEncoding.EncodeToString(make([]byte, 32))
	v, err := New(key, "secret", -time.Minute)
	require.NoError(t, err)

	token, err := v.SignSession("operator")
	require.NoError(t, err)

	_, err = v.VerifySession(token)
	assert.Error(t, err)
}

func TestSession_Tampered(t *testing.T) {
	v := newTestVault(t)

	token, err := v.SignSession("operator")
	require.NoError(t, err)

	_, err = v.VerifySession(token + "x")
	assert.Error(t, err)

	_, err = v.VerifySession("not-a-jwt")
	assert.Error(t, err)
}
