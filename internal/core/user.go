package core

import (
	"context"
	"fmt"

	"github.com/desslyhub/platform/internal/model"
	"github.com/desslyhub/platform/internal/platform"
)

// UserService manages the user registry. The registry is append-only: there
// is no delete path in the current scope.
type UserService struct {
	db DB
}

func NewUserService(db DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) Create(ctx context.Context, username string) (*model.User, error) {
	u := &model.User{
		ID:       platform.NewID(),
		Username: username,
	}

	err := s.db.QueryRow(ctx,
		`INSERT INTO users (id, username) VALUES ($1, $2) RETURNING created_at`,
		u.ID, u.Username,
	).Scan(&u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("user %q: %w", username, ErrConflict)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	err := s.db.QueryRow(ctx,
		`SELECT id, username, alias, created_at FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Username, &u.Alias, &u.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return &u, nil
}

func (s *UserService) List(ctx context.Context, offset, limit int) ([]model.User, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, username, alias, created_at FROM users ORDER BY created_at OFFSET $1 LIMIT $2`,
		offset, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Alias, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

// Search matches the query as a substring against username, id, and alias.
func (s *UserService) Search(ctx context.Context, q string, limit int) ([]model.User, error) {
	if q == "" {
		return nil, nil
	}
	pattern := "%" + q + "%"

	rows, err := s.db.Query(ctx,
		`SELECT id, username, alias, created_at FROM users
		 WHERE username LIKE $1 OR id::text LIKE $1 OR alias LIKE $1
		 LIMIT $2`,
		pattern, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Alias, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

// UpdateUsername changes a user's handle. Level-2 only; enforced by the
// caller.
func (s *UserService) UpdateUsername(ctx context.Context, id, username string) (*model.User, error) {
	var u model.User
	err := s.db.QueryRow(ctx,
		`UPDATE users SET username = $2 WHERE id = $1
		 RETURNING id, username, alias, created_at`,
		id, username,
	).Scan(&u.ID, &u.Username, &u.Alias, &u.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("user %q: %w", username, ErrConflict)
		}
		return nil, fmt.Errorf("update user %s: %w", id, err)
	}
	return &u, nil
}
