package auth

import (
	"context"

	"github.com/georgemunganga/printpress-backend/internal/modules/user"
	"github.com/georgemunganga/printpress-backend/internal/server/authctx"
)

// Service defines the interface for authentication-related business logic.
type Service interface {
	Login(ctx context.Context, login, password string) (*LoginResult, error)
	// Authenticate verifies a token and returns the caller, who must still
	// be an active user.
	Authenticate(ctx context.Context, token string) (*authctx.Identity, error)
	Me(ctx context.Context, actor authctx.Identity) (*user.User, error)
	ChangePassword(ctx context.Context, actor authctx.Identity, current, next string) error
	// UpdateProfile changes the caller's own contact details. Role, pay and
	// active state are not reachable from here.
	UpdateProfile(ctx context.Context, actor authctx.Identity, req UpdateProfileRequest) (*user.User, error)
}

// UpdateProfileRequest leaves nil fields unchanged. An empty phone, address
// or user name clears it.
type UpdateProfileRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
	UserName *string `json:"user_name"`
}

type LoginResult struct {
	Token string     `json:"token"`
	User  *user.User `json:"user"`
}

const minPasswordLength = 8
