// internal/auth/service.go
package auth

import (
	"context"
)

// Service checks login credentials.
type Service interface {
	Authenticate(ctx context.Context, username, password string) (*User, error)
}
