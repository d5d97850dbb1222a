package auth

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/jecaicedo27/toppingfrozen-backend/internal/users"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/auth"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/config"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/errors"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/logger"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/security"
)

// A single message for every credential failure so the endpoint does not
// reveal which usernames exist.
const invalidCredentialsMsg = "invalid username or password"

// ServiceParams groups dependencies for the auth service.
type ServiceParams struct {
	Users  users.Repository
	JWT    config.JWTConfig
	Logger *logger.Logger
	Now    func() time.Time
}

// Service authenticates users and mints access tokens.
type Service struct {
	users  users.Repository
	jwt    config.JWTConfig
	logger *logger.Logger
	now    func() time.Time
}

// NewService builds the auth service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Users == nil {
		return nil, stderrors.New("users repository is required")
	}
	if params.JWT.Secret == "" {
		return nil, stderrors.New("jwt config is required")
	}
	if params.Logger == nil {
		return nil, stderrors.New("logger is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{users: params.Users, jwt: params.JWT, logger: params.Logger, now: now}, nil
}

// Login verifies credentials and returns a signed access token.
func (s *Service) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return nil, errors.New(errors.CodeValidation, "username and password are required")
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeUnauthorized, invalidCredentialsMsg)
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "looking up user")
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "verifying password")
	}
	if !ok {
		ctx = s.logger.WithFields(ctx, map[string]any{"username": username})
		s.logger.Warn(ctx, "login rejected, wrong password")
		return nil, errors.New(errors.CodeUnauthorized, invalidCredentialsMsg)
	}
	if !user.Active {
		return nil, errors.New(errors.CodeForbidden, "account is disabled")
	}

	now := s.now()
	token, err := auth.MintAccessToken(s.jwt, now, auth.AccessTokenPayload{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	})
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "minting access token")
	}

	if err := s.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		// Login already succeeded; a failed stamp is not worth failing it.
		s.logger.Error(ctx, "updating last login", err)
	}

	return &LoginResult{
		Token:     token,
		ExpiresAt: now.Add(time.Duration(s.jwt.ExpirationMinutes) * time.Minute),
		User: UserSummary{
			ID:       user.ID,
			Username: user.Username,
			FullName: user.FullName,
			Role:     user.Role,
		},
	}, nil
}
