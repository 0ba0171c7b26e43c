package storage

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// LocalStore keeps objects on disk under BasePath and serves them below PublicURL.
type LocalStore struct {
	BasePath  string
	PublicURL string
}

func NewLocalStore(basePath, publicURL string) (*LocalStore, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, err
	}
	return &LocalStore{BasePath: basePath, PublicURL: publicURL}, nil
}

func (s *LocalStore) Put(_ context.Context, key string, body []byte, _ string) (string, error) {
	cleaned, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	target := filepath.Join(s.BasePath, filepath.FromSlash(cleaned))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return "", err
	}
	if _, err := tmp.Write(body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", err
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		_ = os.Remove(tmp.Name())
		return "", err
	}
	return s.URL(cleaned), nil
}

func (s *LocalStore) Delete(_ context.Context, key string) error {
	if key == "" {
		return nil
	}
	cleaned, err := cleanKey(key)
	if err != nil {
		return err
	}
	err = os.Remove(filepath.Join(s.BasePath, filepath.FromSlash(cleaned)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (s *LocalStore) URL(key string) string {
	return joinURL(s.PublicURL, key)
}

// Exists reports whether an object is present on disk.
func (s *LocalStore) Exists(key string) bool {
	cleaned, err := cleanKey(key)
	if err != nil {
		return false
	}
	_, err = os.Stat(filepath.Join(s.BasePath, filepath.FromSlash(cleaned)))
	return err == nil
}
