package siigo

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/jecaicedo27/toppingfrozen-backend/pkg/errors"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/secrets"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/siigo"
)

// system_config keys holding the SIIGO integration state. The access key is
// stored encrypted, the rest in plain text.
const (
	keyUsername  = "siigo_username"
	keyAccessKey = "siigo_access_key"
	keyEnabled   = "siigo_enabled"
)

// CredentialsSource resolves SIIGO credentials from the config store at call
// time, so admin updates apply without restarting the API.
type CredentialsSource struct {
	store *secrets.Store
}

// NewCredentialsSource builds a store-backed credentials provider.
func NewCredentialsSource(store *secrets.Store) (*CredentialsSource, error) {
	if store == nil {
		return nil, stderrors.New("secrets store is required")
	}
	return &CredentialsSource{store: store}, nil
}

// SiigoCredentials returns the stored credentials. A disabled or unconfigured
// integration yields empty credentials, which the client reports as not
// configured.
func (s *CredentialsSource) SiigoCredentials(ctx context.Context) (siigo.Credentials, error) {
	enabled, err := s.readKey(ctx, keyEnabled)
	if err != nil {
		return siigo.Credentials{}, err
	}
	if enabled != "true" {
		return siigo.Credentials{}, nil
	}

	username, err := s.readKey(ctx, keyUsername)
	if err != nil {
		return siigo.Credentials{}, err
	}
	accessKey, err := s.readKey(ctx, keyAccessKey)
	if err != nil {
		return siigo.Credentials{}, err
	}
	return siigo.Credentials{
		Username:  strings.TrimSpace(username),
		AccessKey: strings.TrimSpace(accessKey),
	}, nil
}

func (s *CredentialsSource) readKey(ctx context.Context, key string) (string, error) {
	value, err := s.store.Get(ctx, key)
	if err != nil {
		if appErr := errors.As(err); appErr != nil && appErr.Code() == errors.CodeNotFound {
			return "", nil
		}
		return "", err
	}
	return value, nil
}
