// Package auth registers accounts, verifies credentials and resolves the
// acting user from an opaque token.
package auth

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"taskboard/internal/models"
	"taskboard/internal/service"
	"taskboard/internal/storage"
)

// BcryptCost is the work factor for stored password hashes.
const BcryptCost = 12

// Store is the account persistence the authenticator needs.
type Store interface {
	CreateUser(ctx context.Context, fullname, email, passwordHash string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	IssueToken(ctx context.Context, userID int64, key string) (string, error)
	UserByToken(ctx context.Context, key string) (models.User, error)
}

// Session is returned after registration or login.
type Session struct {
	Token    string `json:"token"`
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	UserID   int64  `json:"user_id"`
}

// Registration holds the sign-up form.
type Registration struct {
	Fullname         string
	Email            string
	Password         string
	RepeatedPassword string
}

// Authenticator issues and resolves tokens.
type Authenticator struct {
	store Store
	cost  int
}

// New creates an Authenticator with the default bcrypt cost.
func New(store Store) *Authenticator {
	return &Authenticator{store: store, cost: BcryptCost}
}

// WithCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func (a *Authenticator) WithCost(cost int) *Authenticator {
	a.cost = cost
	return a
}

// Register creates an account and returns its session.
func (a *Authenticator) Register(ctx context.Context, in Registration) (Session, error) {
	fullname := strings.TrimSpace(in.Fullname)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if fullname == "" {
		return Session{}, service.Invalid(map[string]any{"fullname": "required"}, "fullname is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return Session{}, service.Invalid(map[string]any{"email": in.Email}, "enter a valid email address")
	}
	if in.Password == "" {
		return Session{}, service.Invalid(map[string]any{"password": "required"}, "password is required")
	}
	if in.Password != in.RepeatedPassword {
		return Session{}, service.Invalid(nil, "passwords do not match")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), a.cost)
	if err != nil {
		return Session{}, err
	}
	user, err := a.store.CreateUser(ctx, fullname, email, string(hash))
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return Session{}, service.Invalid(map[string]any{"email": email}, "email already exists")
		}
		return Session{}, err
	}
	return a.session(ctx, user)
}

// Login checks credentials and returns the user's session.
func (a *Authenticator) Login(ctx context.Context, email, password string) (Session, error) {
	user, err := a.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Session{}, service.Invalid(nil, "invalid email or password")
		}
		return Session{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return Session{}, service.Invalid(nil, "invalid email or password")
	}
	return a.session(ctx, user)
}

// Resolve maps a token key to its user.
func (a *Authenticator) Resolve(ctx context.Context, key string) (*models.User, error) {
	if key == "" {
		return nil, service.Unauthenticated()
	}
	user, err := a.store.UserByToken(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, &service.Error{Kind: service.ErrUnauthenticated, Message: "invalid token"}
		}
		return nil, err
	}
	return &user, nil
}

// LookupEmail finds a user by email, for adding members by address.
func (a *Authenticator) LookupEmail(ctx context.Context, email string) (models.UserRef, error) {
	if strings.TrimSpace(email) == "" {
		return models.UserRef{}, service.Invalid(map[string]any{"email": "required"}, "email parameter is missing")
	}
	user, err := a.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.UserRef{}, service.NotFound("email not found")
		}
		return models.UserRef{}, err
	}
	return user.Ref(), nil
}

func (a *Authenticator) session(ctx context.Context, user models.User) (Session, error) {
	key, err := a.store.IssueToken(ctx, user.ID, strings.ReplaceAll(uuid.NewString(), "-", ""))
	if err != nil {
		return Session{}, err
	}
	return Session{Token: key, Fullname: user.Fullname, Email: user.Email, UserID: user.ID}, nil
}

// TokenFromHeader extracts the key from an "Authorization: Token <key>" header.
// "Bearer" is accepted as well.
func TokenFromHeader(header string) string {
	scheme, key, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok {
		return ""
	}
	switch strings.ToLower(scheme) {
	case "token", "bearer":
		return strings.TrimSpace(key)
	}
	return ""
}
