package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"taskboard/internal/models"
	"taskboard/internal/storage"
)

const userColumns = `id, fullname, email, password_hash, created_at`

func scanUser(row scanner) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Fullname, &u.Email, &u.PasswordHash, &u.CreatedAt)
	return u, err
}

// CreateUser registers a new account. Emails are unique case-insensitively.
func (s *Store) CreateUser(ctx context.Context, fullname, email, passwordHash string) (models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := s.db.ExecContext(ctx, `INSERT INTO users(fullname, email, password_hash) VALUES(?, ?, ?)`,
		strings.TrimSpace(fullname), email, passwordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, fmt.Errorf("email %s: %w", email, storage.ErrConflict)
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.User{}, fmt.Errorf("user id: %w", err)
	}
	return s.GetUser(ctx, id)
}

// GetUser fetches a single user by id.
func (s *Store) GetUser(ctx context.Context, id int64) (models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, notFound("user", id)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// GetUserByEmail fetches a user by login email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, notFound("user", email)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// ResolveUsers returns the subset of ids that belong to existing users, ordered by id.
func (s *Store) ResolveUsers(ctx context.Context, ids []int64) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	marks, args := placeholders(ids)
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users WHERE id IN (`+marks+`) ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("resolve users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// IssueToken stores key for the user unless the user already holds one, and
// returns the key in effect.
func (s *Store) IssueToken(ctx context.Context, userID int64, key string) (string, error) {
	if _, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO auth_tokens(key, user_id) VALUES(?, ?)`, key, userID); err != nil {
		return "", fmt.Errorf("insert token: %w", err)
	}
	var current string
	if err := s.db.QueryRowContext(ctx, `SELECT key FROM auth_tokens WHERE user_id = ?`, userID).Scan(&current); err != nil {
		return "", fmt.Errorf("select token: %w", err)
	}
	return current, nil
}

// UserByToken resolves a token key to its user.
func (s *Store) UserByToken(ctx context.Context, key string) (models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT u.id, u.fullname, u.email, u.password_hash, u.created_at
        FROM auth_tokens t JOIN users u ON u.id = t.user_id WHERE t.key = ?`, key))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, notFound("token", "")
	}
	if err != nil {
		return models.User{}, fmt.Errorf("user by token: %w", err)
	}
	return u, nil
}
