package secrets

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jecaicedo27/toppingfrozen-backend/pkg/db/models"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/errors"
)

// Store persists configuration values. Sensitive keys are sealed with the
// cipher before they reach the database.
type Store struct {
	db     *gorm.DB
	cipher *Cipher
}

func NewStore(db *gorm.DB, cipher *Cipher) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	if cipher == nil {
		return nil, fmt.Errorf("cipher is required")
	}
	return &Store{db: db, cipher: cipher}, nil
}

// Get returns the plaintext value for key, decrypting when the row is sensitive.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New(errors.CodeValidation, "config key is required")
	}

	var row models.SystemConfig
	err := s.db.WithContext(ctx).Where("config_key = ?", key).First(&row).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return "", errors.New(errors.CodeNotFound, fmt.Sprintf("config key %q not found", key))
	}
	if err != nil {
		return "", errors.Wrap(errors.CodeInternal, err, "loading config value")
	}

	if !row.IsSensitive {
		return row.ConfigValue, nil
	}
	plaintext, err := s.cipher.Decrypt(row.ConfigValue)
	if err != nil {
		return "", errors.Wrap(errors.CodeInternal, err, "decrypting config value")
	}
	return plaintext, nil
}

// Set upserts the value for key. Sensitive values are encrypted at rest.
func (s *Store) Set(ctx context.Context, key, value string, sensitive bool) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New(errors.CodeValidation, "config key is required")
	}

	stored := value
	if sensitive {
		sealed, err := s.cipher.Encrypt(value)
		if err != nil {
			return errors.Wrap(errors.CodeInternal, err, "encrypting config value")
		}
		stored = sealed
	}

	row := models.SystemConfig{
		ConfigKey:   key,
		ConfigValue: stored,
		DataType:    "string",
		IsSensitive: sensitive,
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "config_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"config_value", "is_sensitive", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "storing config value")
	}
	return nil
}

// Delete removes the row for key. Missing keys are not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New(errors.CodeValidation, "config key is required")
	}
	err := s.db.WithContext(ctx).Where("config_key = ?", key).Delete(&models.SystemConfig{}).Error
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "deleting config value")
	}
	return nil
}
