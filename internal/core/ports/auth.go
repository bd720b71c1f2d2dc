package ports

import (
	"context"

	"github.com/avatarctic/docflow/internal/core/domain/auth"
	"github.com/avatarctic/docflow/internal/core/domain/user"
)

// AuthService defines the interface for account and token operations
type AuthService interface {
	Signup(ctx context.Context, req *user.SignupRequest) (*user.User, error)
	Login(ctx context.Context, req *auth.LoginRequest) (*auth.AuthTokens, error)
	ValidateToken(ctx context.Context, token string) (*auth.Claims, error)
	// IsEmailAllowed reports whether email passes the signup allow-list.
	IsEmailAllowed(email string) bool
	AllowedEmails() []string
}
