// internal/auth/implementation.go
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"stockroom/internal/storage"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/time/rate"
)

// service implements the Service interface.
type service struct {
	db          *sqlx.DB
	rateLimiter *rate.Limiter
}

// NewService creates an authenticator that allows loginsPerMinute attempts
// per minute, with bursts of the same size.
func NewService(db *sqlx.DB, loginsPerMinute int) Service {
	if loginsPerMinute <= 0 {
		loginsPerMinute = 5
	}
	return &service{
		db:          db,
		rateLimiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(loginsPerMinute)), loginsPerMinute),
	}
}

// Authenticate verifies a user's credentials and returns the user if successful.
func (s *service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	if !s.rateLimiter.Allow() {
		return nil, ErrRateLimited
	}

	cred := &credential{}
	err := s.db.GetContext(ctx, cred, s.db.Rebind(`
		SELECT id, username, role, password_hash, salt
		FROM users
		WHERE username = ?
	`), username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("authentication failed: %w", err)
	}

	ok, err := verifyPassword(password, cred.Salt, cred.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	user := cred.User
	return &user, nil
}

// SeedAdmin creates the administrator account unless a user with that name
// already exists. It reports whether an account was created.
func SeedAdmin(ctx context.Context, db *sqlx.DB, username, password string) (bool, error) {
	var count int
	if err := db.GetContext(ctx, &count, db.Rebind(`SELECT COUNT(*) FROM users WHERE username = ?`), username); err != nil {
		return false, fmt.Errorf("check admin account: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	hash, salt, err := hashPassword(password)
	if err != nil {
		return false, fmt.Errorf("failed to hash password: %w", err)
	}

	_, err = db.ExecContext(ctx, db.Rebind(`
		INSERT INTO users (username, password_hash, salt, role)
		VALUES (?, ?, ?, ?)
	`), username, hash, salt, RoleAdmin)
	if err != nil {
		if storage.IsUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("insert admin account: %w", err)
	}
	return true, nil
}
