package auth

import (
	"time"

	"github.com/jecaicedo27/toppingfrozen-backend/pkg/enums"
)

// LoginInput is the credentials payload for the login endpoint.
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResult carries the minted token and the authenticated user.
type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      UserSummary `json:"user"`
}

// UserSummary is the user shape exposed to clients after login.
type UserSummary struct {
	ID       uint64         `json:"id"`
	Username string         `json:"username"`
	FullName string         `json:"fullName"`
	Role     enums.UserRole `json:"role"`
}
