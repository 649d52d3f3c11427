package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"storefront/internal/domain"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var _ domain.FileStorage = (*LocalStorage)(nil)

// LocalStorage keeps uploads under a root directory, one sub-folder per kind.
type LocalStorage struct {
	root     string
	maxBytes int64
	log      *logrus.Logger
}

func NewLocalStorage(root string, maxBytes int64, logger *logrus.Logger) (*LocalStorage, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("could not resolve upload dir %s: %w", root, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("could not create upload dir %s: %w", abs, err)
	}
	return &LocalStorage{root: abs, maxBytes: maxBytes, log: logger}, nil
}

func (s *LocalStorage) Save(ctx context.Context, folder string, r io.Reader, allowed []string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("could not read upload: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: uploaded file is empty", domain.ErrInvalidInput)
	}
	if int64(len(data)) > s.maxBytes {
		return "", fmt.Errorf("%w: file exceeds the %d byte limit", domain.ErrInvalidInput, s.maxBytes)
	}

	mtype := mimetype.Detect(data)
	if !mimetype.EqualsAny(mtype.String(), allowed...) {
		s.log.Warnf("Storage: Rejected upload of type %s for folder %s", mtype.String(), folder)
		return "", fmt.Errorf("%w: unsupported file type %s", domain.ErrInvalidInput, mtype.String())
	}

	dir := filepath.Join(s.root, filepath.Clean("/"+folder))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("could not create folder %s: %w", folder, err)
	}

	name := uuid.NewString() + mtype.Extension()
	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("could not create temp file: %w", err)
	}
	if _, err := io.Copy(tmp, bytes.NewReader(data)); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("could not write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("could not write upload: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(dir, name)); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("could not store upload: %w", err)
	}

	rel := filepath.ToSlash(filepath.Join(strings.Trim(filepath.Clean("/"+folder), "/"), name))
	s.log.Infof("Storage: Stored %s (%d bytes, %s)", rel, len(data), mtype.String())
	return rel, nil
}

// Delete removes a stored file. A file that is already gone is not an error.
func (s *LocalStorage) Delete(ctx context.Context, path string) error {
	if path == "" {
		return nil
	}
	full, err := s.Resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("could not delete %s: %w", path, err)
	}
	s.log.Infof("Storage: Deleted %s", path)
	return nil
}

func (s *LocalStorage) Resolve(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("file %w", domain.ErrNotFound)
	}
	full := filepath.Join(s.root, filepath.Clean("/"+path))
	if !strings.HasPrefix(full, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: path %q escapes the upload dir", domain.ErrInvalidInput, path)
	}
	return full, nil
}
