package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"infogrid-backend-go/internal/config"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
)

// OSSStore writes to an Aliyun OSS bucket.
type OSSStore struct {
	bucket    *oss.Bucket
	publicURL string
}

func NewOSSStore(cfg config.OSSConfig) (*OSSStore, error) {
	if cfg.Endpoint == "" || cfg.AccessKeyID == "" || cfg.AccessKeySecret == "" || cfg.Bucket == "" {
		return nil, errors.New("missing env: OSS_ENDPOINT/OSS_ACCESS_KEY_ID/OSS_ACCESS_KEY_SECRET/OSS_BUCKET")
	}
	client, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("oss.New: %w", err)
	}
	bucket, err := client.Bucket(cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("client.Bucket: %w", err)
	}
	publicURL := cfg.PublicURL
	if publicURL == "" {
		publicURL = "https://" + cfg.Bucket + "." + cfg.Endpoint
	}
	return &OSSStore{bucket: bucket, publicURL: publicURL}, nil
}

func (s *OSSStore) Put(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	cleaned, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	err = s.bucket.PutObject(cleaned, bytes.NewReader(body),
		oss.WithContext(ctx),
		oss.ContentType(contentType),
		oss.ContentDisposition("inline"),
		oss.CacheControl("public, max-age=31536000, immutable"),
	)
	if err != nil {
		return "", err
	}
	return s.URL(cleaned), nil
}

func (s *OSSStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	err := s.bucket.DeleteObject(key, oss.WithContext(ctx))
	if e, ok := err.(oss.ServiceError); ok && e.StatusCode == 404 {
		return nil
	}
	return err
}

func (s *OSSStore) URL(key string) string {
	return joinURL(s.publicURL, key)
}
