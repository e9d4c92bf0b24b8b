package core

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/desslyhub/platform/internal/model"
	"github.com/desslyhub/platform/internal/platform"
	"github.com/desslyhub/platform/internal/vault"
)

// APITokenService manages opaque access credentials. Secrets are stored as
// deterministic ciphertext, so Resolve is a single indexed equality lookup
// on the encrypted form of the presented secret.
type APITokenService struct {
	db    DB
	vault *vault.Vault
}

func NewAPITokenService(db DB, v *vault.Vault) *APITokenService {
	return &APITokenService{db: db, vault: v}
}

// newSecret generates a 256-bit urlsafe random secret.
func newSecret() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate token secret: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// Issue creates a token for a user and returns the model along with the raw
// secret. The raw secret is shown to the caller exactly once; only its
// ciphertext is persisted and no read path returns it again.
func (s *APITokenService) Issue(ctx context.Context, name, userID string, accessLevel int, description *string, createdBy string) (*model.APIToken, string, error) {
	rawSecret, err := newSecret()
	if err != nil {
		return nil, "", err
	}

	tok := &model.APIToken{
		ID:          platform.NewID(),
		Name:        name,
		UserID:      userID,
		AccessLevel: accessLevel,
		Description: description,
		CreatedBy:   &createdBy,
	}

	err = s.db.QueryRow(ctx,
		`INSERT INTO api_tokens (id, name, secret, user_id, access_level, description, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at`,
		tok.ID, tok.Name, s.vault.Encrypt(rawSecret), tok.UserID, tok.AccessLevel, tok.Description, tok.CreatedBy,
	).Scan(&tok.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, "", fmt.Errorf("insert api token: %w", ErrConflict)
		}
		return nil, "", fmt.Errorf("insert api token: %w", err)
	}

	return tok, rawSecret, nil
}

// Resolve looks up a token by the raw secret a client presented.
func (s *APITokenService) Resolve(ctx context.Context, rawSecret string) (*model.APIToken, error) {
	var tok model.APIToken
	err := s.db.QueryRow(ctx,
		`SELECT id, name, user_id, access_level, description, created_by, created_at
		 FROM api_tokens WHERE secret = $1`,
		s.vault.Encrypt(rawSecret),
	).Scan(&tok.ID, &tok.Name, &tok.UserID, &tok.AccessLevel, &tok.Description, &tok.CreatedBy, &tok.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("resolve api token: %w", err)
	}
	return &tok, nil
}

// GetByID retrieves a token by its UUID. The secret is not selected.
func (s *APITokenService) GetByID(ctx context.Context, id string) (*model.APIToken, error) {
	var tok model.APIToken
	err := s.db.QueryRow(ctx,
		`SELECT id, name, user_id, access_level, description, created_by, created_at
		 FROM api_tokens WHERE id = $1`, id,
	).Scan(&tok.ID, &tok.Name, &tok.UserID, &tok.AccessLevel, &tok.Description, &tok.CreatedBy, &tok.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get api token %s: %w", id, err)
	}
	return &tok, nil
}

// ListForUser returns all tokens owned by a user.
func (s *APITokenService) ListForUser(ctx context.Context, userID string) ([]model.APIToken, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, name, user_id, access_level, description, created_by, created_at
		 FROM api_tokens WHERE user_id = $1 ORDER BY created_at`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list api tokens: %w", err)
	}
	defer rows.Close()

	var tokens []model.APIToken
	for rows.Next() {
		var tok model.APIToken
		if err := rows.Scan(&tok.ID, &tok.Name, &tok.UserID, &tok.AccessLevel, &tok.Description, &tok.CreatedBy, &tok.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan api token: %w", err)
		}
		tokens = append(tokens, tok)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate api tokens: %w", err)
	}
	return tokens, nil
}

// UpdateToken holds the mutable fields of a token. Nil fields are left
// unchanged. Only a level-2 actor may reach this path.
type UpdateToken struct {
	Name        *string
	Description *string
	AccessLevel *int
}

// Update applies the changes in a single statement so concurrent admin
// actions cannot interleave partial writes.
func (s *APITokenService) Update(ctx context.Context, id string, upd UpdateToken) (*model.APIToken, error) {
	var tok model.APIToken
	err := s.db.QueryRow(ctx,
		`UPDATE api_tokens SET
		   name = COALESCE($2, name),
		   description = COALESCE($3, description),
		   access_level = COALESCE($4, access_level)
		 WHERE id = $1
		 RETURNING id, name, user_id, access_level, description, created_by, created_at`,
		id, upd.Name, upd.Description, upd.AccessLevel,
	).Scan(&tok.ID, &tok.Name, &tok.UserID, &tok.AccessLevel, &tok.Description, &tok.CreatedBy, &tok.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update api token %s: %w", id, err)
	}
	return &tok, nil
}

// Delete removes a token by UUID.
func (s *APITokenService) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM api_tokens WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete api token %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
