// internal/auth/domain.go
package auth

import (
	"errors"
)

const RoleAdmin = "admin"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRateLimited        = errors.New("rate limit exceeded")
	ErrInvalidToken       = errors.New("invalid token")
)

// User is an account allowed to change the inventory.
type User struct {
	ID       int64  `json:"id" db:"id"`
	Username string `json:"username" db:"username"`
	Role     string `json:"role" db:"role"`
}

// credential is the stored password material of a user.
type credential struct {
	User
	PasswordHash string `db:"password_hash"`
	Salt         string `db:"salt"`
}
