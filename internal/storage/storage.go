package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"infogrid-backend-go/internal/config"

	"github.com/google/uuid"
)

const (
	PrefixNews    = "news"
	PrefixEvents  = "events"
	PrefixPosters = "posters"
	PrefixQRCodes = "qrcodes"
)

var ErrInvalidKey = errors.New("invalid object key")

// ObjectStore holds uploaded images. Read URLs are public; writes go through the backend.
// Delete of a missing object is not an error.
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// New picks the backend named by cfg.StorageDriver.
func New(cfg config.Config) (ObjectStore, error) {
	switch cfg.StorageDriver {
	case "", "local":
		return NewLocalStore(cfg.MediaStoragePath, cfg.MediaPublicURL)
	case "s3", "r2":
		return NewS3Store(cfg.S3)
	case "oss":
		return NewOSSStore(cfg.OSS)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// NewKey builds "<prefix>/<uuid>.<ext>".
func NewKey(prefix, ext string) string {
	ext = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
	if len(ext) > 5 || strings.ContainsAny(ext, `/\.`) {
		ext = ""
	}
	key := prefix + "/" + uuid.NewString()
	if ext != "" {
		key += "." + ext
	}
	return key
}

// ExtOf returns the lowercased extension of a filename without the dot.
func ExtOf(filename string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
}

func cleanKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, `\`) {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean(key)
	if cleaned != key || cleaned == "." || strings.HasPrefix(cleaned, "../") || cleaned == ".." {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}
