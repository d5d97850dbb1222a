package siigo

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/jecaicedo27/toppingfrozen-backend/pkg/errors"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/logger"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/siigo"
)

type stubTester struct {
	invalidations int
	status        siigo.ConnectionStatus
}

func (s *stubTester) InvalidateToken() { s.invalidations++ }

func (s *stubTester) TestConnection(ctx context.Context) siigo.ConnectionStatus {
	return s.status
}

func newAdminService(t *testing.T, tester *stubTester) *AdminService {
	t.Helper()
	svc, err := NewAdminService(AdminServiceParams{
		Store:  newTestSecrets(t),
		Client: tester,
		Logger: logger.New(logger.Options{Level: zerolog.ErrorLevel}),
	})
	require.NoError(t, err)
	return svc
}

func TestUpdateCredentialsInvalidatesToken(t *testing.T) {
	tester := &stubTester{}
	svc := newAdminService(t, tester)
	ctx := context.Background()

	err := svc.UpdateCredentials(ctx, UpdateCredentialsInput{
		Username:  "facturacion@example.com",
		AccessKey: "super-secret",
	})
	require.NoError(t, err)
	require.Equal(t, 1, tester.invalidations)

	settings, err := svc.Settings(ctx)
	require.NoError(t, err)
	require.True(t, settings.Configured)
	require.False(t, settings.Enabled)
	require.Equal(t, "facturacion@example.com", settings.Username)
}

func TestUpdateCredentialsRejectsBlank(t *testing.T) {
	svc := newAdminService(t, &stubTester{})

	err := svc.UpdateCredentials(context.Background(), UpdateCredentialsInput{Username: "  "})
	require.Error(t, err)
	appErr := errors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, errors.CodeValidation, appErr.Code())
}

func TestEnableRequiresStoredCredentials(t *testing.T) {
	svc := newAdminService(t, &stubTester{})
	ctx := context.Background()

	err := svc.SetEnabled(ctx, true)
	require.Error(t, err)
	appErr := errors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, errors.CodeStateConflict, appErr.Code())

	require.NoError(t, svc.UpdateCredentials(ctx, UpdateCredentialsInput{
		Username:  "facturacion@example.com",
		AccessKey: "super-secret",
	}))
	require.NoError(t, svc.SetEnabled(ctx, true))

	settings, err := svc.Settings(ctx)
	require.NoError(t, err)
	require.True(t, settings.Enabled)
}

func TestDeleteCredentialsDisablesIntegration(t *testing.T) {
	tester := &stubTester{}
	svc := newAdminService(t, tester)
	ctx := context.Background()

	require.NoError(t, svc.UpdateCredentials(ctx, UpdateCredentialsInput{
		Username:  "facturacion@example.com",
		AccessKey: "super-secret",
	}))
	require.NoError(t, svc.SetEnabled(ctx, true))

	require.NoError(t, svc.DeleteCredentials(ctx))

	settings, err := svc.Settings(ctx)
	require.NoError(t, err)
	require.False(t, settings.Configured)
	require.False(t, settings.Enabled)
	require.Empty(t, settings.Username)
}

func TestAdminTestConnection(t *testing.T) {
	tester := &stubTester{status: siigo.ConnectionStatus{Connected: true, Message: "authenticated"}}
	svc := newAdminService(t, tester)

	status := svc.TestConnection(context.Background())
	require.True(t, status.Connected)
	require.Equal(t, "authenticated", status.Message)
}
