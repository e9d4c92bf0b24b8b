package core

import (
	"context"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestValidateOrigin(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{"ipv4", "203.0.113.5", true},
		{"ipv4 loopback", "127.0.0.1", true},
		{"ipv6", "2001:db8::1", true},
		{"ipv6 loopback", "::1", true},
		{"simple domain", "example.com", true},
		{"subdomain", "api.shop.example.com", true},
		{"hyphenated", "my-shop.example.com", true},
		{"with whitespace", "  example.com  ", true},
		{"empty", "", false},
		{"single alphabetic label", "localhost", true},
		{"numeric tld", "example.123", false},
		{"one-char tld", "example.c", false},
		{"leading hyphen", "-bad.example.com", false},
		{"trailing hyphen", "bad-.example.com", false},
		{"label too long", strings.Repeat("a", 64) + ".com", false},
		{"total too long", strings.Repeat("abcdefgh.", 30) + "com", false},
		{"empty label", "double..dot.com", false},
		{"underscore", "under_score.com", false},
		{"spaces inside", "exa mple.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateOrigin(tt.value), "value %q", tt.value)
		})
	}
}

func TestAllowlistService_IsAllowed(t *testing.T) {
	db := &mockDB{}
	svc := NewAllowlistService(db)
	ctx := context.Background()

	row := &mockRow{scanFunc: func(dest ...any) error {
		*(dest[0].(*bool)) = true
		return nil
	}}
	db.On("QueryRow", ctx, mock.AnythingOfType("string"), []any{"203.0.113.5", "example.com"}).Return(row)

	allowed, err := svc.IsAllowed(ctx, "203.0.113.5", "example.com")
	require.NoError(t, err)
	assert.True(t, allowed)
	db.AssertExpectations(t)
}

func TestAllowlistService_IsAllowed_NoMatch(t *testing.T) {
	db := &mockDB{}
	svc := NewAllowlistService(db)
	ctx := context.Background()

	row := &mockRow{scanFunc: func(dest ...any) error {
		*(dest[0].(*bool)) = false
		return nil
	}}
	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).Return(row)

	allowed, err := svc.IsAllowed(ctx, "198.51.100.7", "")
	require.NoError(t, err)
	assert.False(t, allowed)
	db.AssertExpectations(t)
}

func TestAllowlistService_Add_Conflict(t *testing.T) {
	db := &mockDB{}
	svc := NewAllowlistService(db)
	ctx := context.Background()

	row := &mockRow{scanFunc: func(dest ...any) error {
		return &pgconn.PgError{Code: "23505"}
	}}
	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).Return(row)

	entry, err := svc.Add(ctx, "example.com", "user-1")
	assert.Nil(t, entry)
	assert.ErrorIs(t, err, ErrConflict)
	db.AssertExpectations(t)
}

func TestAllowlistService_Remove_NotFound(t *testing.T) {
	db := &mockDB{}
	svc := NewAllowlistService(db)
	ctx := context.Background()

	db.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).Return(pgconn.NewCommandTag("DELETE 0"), nil)

	err := svc.Remove(ctx, "missing-id")
	assert.ErrorIs(t, err, ErrNotFound)
	db.AssertExpectations(t)
}
