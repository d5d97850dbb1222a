package auth

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/jecaicedo27/toppingfrozen-backend/internal/users"
	pkgauth "github.com/jecaicedo27/toppingfrozen-backend/pkg/auth"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/config"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/db/models"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/enums"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/errors"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/logger"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/security"
)

var testJWT = config.JWTConfig{
	Secret:            "test-signing-secret-0123456789abcdef",
	Issuer:            "toppingfrozen",
	ExpirationMinutes: 30,
}

type stubUsersRepo struct {
	users.Repository

	findByUsername func(ctx context.Context, username string) (*models.User, error)
	touched        []uint64
}

func (s *stubUsersRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findByUsername(ctx, username)
}

func (s *stubUsersRepo) TouchLastLogin(ctx context.Context, id uint64, at time.Time) error {
	s.touched = append(s.touched, id)
	return nil
}

func hashFor(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{
		ArgonMemoryKB:    32768,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	})
	require.NoError(t, err)
	return hash
}

func newAuthService(t *testing.T, repo *stubUsersRepo) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Users:  repo,
		JWT:    testJWT,
		Logger: logger.New(logger.Options{Level: zerolog.ErrorLevel}),
		Now:    func() time.Time { return time.Date(2025, 7, 10, 9, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	return svc
}

func activeUser(t *testing.T) *models.User {
	return &models.User{
		ID:           7,
		Username:     "cartera1",
		PasswordHash: hashFor(t, "s3cret-pass"),
		FullName:     "Maria Cartera",
		Role:         enums.UserRoleCartera,
		Active:       true,
	}
}

func TestLoginMintsToken(t *testing.T) {
	user := activeUser(t)
	repo := &stubUsersRepo{
		findByUsername: func(ctx context.Context, username string) (*models.User, error) {
			require.Equal(t, "cartera1", username)
			return user, nil
		},
	}
	svc := newAuthService(t, repo)

	result, err := svc.Login(context.Background(), LoginInput{Username: "cartera1", Password: "s3cret-pass"})
	require.NoError(t, err)
	require.Equal(t, uint64(7), result.User.ID)
	require.Equal(t, enums.UserRoleCartera, result.User.Role)
	require.Equal(t, []uint64{7}, repo.touched)

	claims, err := pkgauth.ParseAccessToken(testJWT, result.Token)
	require.NoError(t, err)
	require.Equal(t, uint64(7), claims.UserID)
	require.Equal(t, enums.UserRoleCartera, claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	user := activeUser(t)
	repo := &stubUsersRepo{
		findByUsername: func(ctx context.Context, username string) (*models.User, error) {
			return user, nil
		},
	}
	svc := newAuthService(t, repo)

	_, err := svc.Login(context.Background(), LoginInput{Username: "cartera1", Password: "wrong"})
	require.Error(t, err)
	appErr := errors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, errors.CodeUnauthorized, appErr.Code())
	require.Empty(t, repo.touched)
}

func TestLoginUnknownUserSameError(t *testing.T) {
	repo := &stubUsersRepo{
		findByUsername: func(ctx context.Context, username string) (*models.User, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc := newAuthService(t, repo)

	_, err := svc.Login(context.Background(), LoginInput{Username: "ghost", Password: "whatever"})
	require.Error(t, err)
	appErr := errors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, errors.CodeUnauthorized, appErr.Code())
	require.Equal(t, invalidCredentialsMsg, appErr.Message())
}

func TestLoginDisabledAccount(t *testing.T) {
	user := activeUser(t)
	user.Active = false
	repo := &stubUsersRepo{
		findByUsername: func(ctx context.Context, username string) (*models.User, error) {
			return user, nil
		},
	}
	svc := newAuthService(t, repo)

	_, err := svc.Login(context.Background(), LoginInput{Username: "cartera1", Password: "s3cret-pass"})
	require.Error(t, err)
	appErr := errors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, errors.CodeForbidden, appErr.Code())
}

func TestLoginMissingFields(t *testing.T) {
	svc := newAuthService(t, &stubUsersRepo{
		findByUsername: func(ctx context.Context, username string) (*models.User, error) {
			t.Fatal("lookup must not run for blank input")
			return nil, nil
		},
	})

	_, err := svc.Login(context.Background(), LoginInput{Username: "", Password: ""})
	require.Error(t, err)
	appErr := errors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, errors.CodeValidation, appErr.Code())
}
