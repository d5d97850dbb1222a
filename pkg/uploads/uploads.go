// Package uploads stores evidence photos on local disk. Files are renamed to
// uuid-based names and content-sniffed so a mislabeled upload cannot smuggle
// a non-image through the evidence endpoints.
package uploads

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/jecaicedo27/toppingfrozen-backend/pkg/config"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/errors"
)

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// Saver writes uploaded files under a configured directory.
type Saver struct {
	dir      string
	maxBytes int64
}

func NewSaver(cfg config.UploadsConfig) (*Saver, error) {
	dir := strings.TrimSpace(cfg.Dir)
	if dir == "" {
		return nil, fmt.Errorf("uploads directory is required")
	}
	if cfg.MaxUploadMB <= 0 {
		return nil, fmt.Errorf("max upload size must be positive")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating uploads directory: %w", err)
	}
	return &Saver{dir: dir, maxBytes: int64(cfg.MaxUploadMB) << 20}, nil
}

// Dir returns the root directory files are stored under.
func (s *Saver) Dir() string {
	return s.dir
}

// SaveImage persists a multipart image upload and returns the stored filename.
func (s *Saver) SaveImage(header *multipart.FileHeader) (string, error) {
	if header == nil {
		return "", errors.New(errors.CodeValidation, "file is required")
	}
	if header.Size > s.maxBytes {
		return "", errors.New(errors.CodeValidation,
			fmt.Sprintf("file exceeds the %d MB limit", s.maxBytes>>20))
	}

	file, err := header.Open()
	if err != nil {
		return "", errors.Wrap(errors.CodeValidation, err, "opening upload")
	}
	defer file.Close()

	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		return "", errors.Wrap(errors.CodeValidation, err, "sniffing upload type")
	}
	ext, ok := allowedImageTypes[mtype.String()]
	if !ok {
		return "", errors.New(errors.CodeValidation,
			fmt.Sprintf("unsupported file type %s, expected an image", mtype.String()))
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", errors.Wrap(errors.CodeInternal, err, "rewinding upload")
	}

	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", errors.Wrap(errors.CodeInternal, err, "creating evidence file")
	}
	defer dst.Close()

	if _, err := io.Copy(dst, io.LimitReader(file, s.maxBytes+1)); err != nil {
		return "", errors.Wrap(errors.CodeInternal, err, "writing evidence file")
	}
	return name, nil
}

// Remove deletes a previously stored file. Missing files are ignored.
func (s *Saver) Remove(name string) error {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "" || name == "." {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
