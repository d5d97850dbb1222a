package siigo

import (
	"context"
	stderrors "errors"
	"strconv"
	"strings"

	"github.com/jecaicedo27/toppingfrozen-backend/pkg/errors"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/logger"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/secrets"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/siigo"
)

// connectionTester is the slice of the SIIGO client the admin service needs.
type connectionTester interface {
	InvalidateToken()
	TestConnection(ctx context.Context) siigo.ConnectionStatus
}

// UpdateCredentialsInput carries new SIIGO API credentials.
type UpdateCredentialsInput struct {
	Username  string `json:"username" validate:"required"`
	AccessKey string `json:"accessKey" validate:"required"`
}

// Settings is the admin view of the integration. The access key is never
// returned, only whether one is stored.
type Settings struct {
	Configured bool   `json:"configured"`
	Enabled    bool   `json:"enabled"`
	Username   string `json:"username,omitempty"`
}

// AdminServiceParams groups dependencies for the SIIGO admin service.
type AdminServiceParams struct {
	Store  *secrets.Store
	Client connectionTester
	Logger *logger.Logger
}

// AdminService manages SIIGO credentials and the enabled flag.
type AdminService struct {
	store  *secrets.Store
	client connectionTester
	logger *logger.Logger
}

// NewAdminService builds the SIIGO admin service.
func NewAdminService(params AdminServiceParams) (*AdminService, error) {
	if params.Store == nil {
		return nil, stderrors.New("secrets store is required")
	}
	if params.Client == nil {
		return nil, stderrors.New("siigo client is required")
	}
	if params.Logger == nil {
		return nil, stderrors.New("logger is required")
	}
	return &AdminService{store: params.Store, client: params.Client, logger: params.Logger}, nil
}

// Settings reports the current integration state without exposing the key.
func (s *AdminService) Settings(ctx context.Context) (*Settings, error) {
	username, err := s.readKey(ctx, keyUsername)
	if err != nil {
		return nil, err
	}
	accessKey, err := s.readKey(ctx, keyAccessKey)
	if err != nil {
		return nil, err
	}
	enabled, err := s.readKey(ctx, keyEnabled)
	if err != nil {
		return nil, err
	}
	return &Settings{
		Configured: username != "" && accessKey != "",
		Enabled:    enabled == "true",
		Username:   username,
	}, nil
}

// UpdateCredentials stores new credentials and drops the cached token so the
// next SIIGO call authenticates with them.
func (s *AdminService) UpdateCredentials(ctx context.Context, input UpdateCredentialsInput) error {
	username := strings.TrimSpace(input.Username)
	accessKey := strings.TrimSpace(input.AccessKey)
	if username == "" || accessKey == "" {
		return errors.New(errors.CodeValidation, "username and access key are required")
	}

	if err := s.store.Set(ctx, keyUsername, username, false); err != nil {
		return err
	}
	if err := s.store.Set(ctx, keyAccessKey, accessKey, true); err != nil {
		return err
	}
	s.client.InvalidateToken()
	s.logger.Info(ctx, "siigo credentials updated")
	return nil
}

// SetEnabled flips the integration on or off.
func (s *AdminService) SetEnabled(ctx context.Context, enabled bool) error {
	if enabled {
		settings, err := s.Settings(ctx)
		if err != nil {
			return err
		}
		if !settings.Configured {
			return errors.New(errors.CodeStateConflict, "cannot enable SIIGO without stored credentials")
		}
	}
	if err := s.store.Set(ctx, keyEnabled, strconv.FormatBool(enabled), false); err != nil {
		return err
	}
	s.client.InvalidateToken()
	ctx = s.logger.WithFields(ctx, map[string]any{"enabled": enabled})
	s.logger.Info(ctx, "siigo integration toggled")
	return nil
}

// DeleteCredentials removes the stored credentials and disables the
// integration.
func (s *AdminService) DeleteCredentials(ctx context.Context) error {
	if err := s.store.Delete(ctx, keyUsername); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, keyAccessKey); err != nil {
		return err
	}
	if err := s.store.Set(ctx, keyEnabled, "false", false); err != nil {
		return err
	}
	s.client.InvalidateToken()
	s.logger.Info(ctx, "siigo credentials deleted")
	return nil
}

// TestConnection authenticates against SIIGO with the stored credentials.
func (s *AdminService) TestConnection(ctx context.Context) siigo.ConnectionStatus {
	return s.client.TestConnection(ctx)
}

func (s *AdminService) readKey(ctx context.Context, key string) (string, error) {
	value, err := s.store.Get(ctx, key)
	if err != nil {
		if appErr := errors.As(err); appErr != nil && appErr.Code() == errors.CodeNotFound {
			return "", nil
		}
		return "", err
	}
	return value, nil
}
