package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"pipi/internal/config"
)

type ObjectStore struct {
	client *minio.Client
	cfg    config.StorageConfig
	useSSL bool
	host   string
}

func NewObjectStore(cfg config.StorageConfig) (*ObjectStore, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("storage endpoint is empty")
	}

	endpoint := cfg.Endpoint
	useSSL := cfg.UseSSL

	if strings.HasPrefix(endpoint, "http") {
		u, err := url.Parse(endpoint)
		if err != nil {
			return nil, fmt.Errorf("parse endpoint: %w", err)
		}
		endpoint = u.Host
		useSSL = u.Scheme == "https"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}

	return &ObjectStore{
		client: client,
		cfg:    cfg,
		useSSL: useSSL,
		host:   endpoint,
	}, nil
}

func (s *ObjectStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.cfg.Bucket)
	if err != nil {
		return fmt.Errorf("bucket exists %s: %w", s.cfg.Bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.cfg.Bucket, minio.MakeBucketOptions{Region: s.cfg.Region}); err != nil {
			return fmt.Errorf("create bucket %s: %w", s.cfg.Bucket, err)
		}
	}
	return nil
}

// PutFile uploads a local file under key.
func (s *ObjectStore) PutFile(ctx context.Context, key string, filePath string, contentType string) error {
	_, err := s.client.FPutObject(ctx, s.cfg.Bucket, key, filePath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("put object: %w", err)
	}
	return nil
}

// PublicURL is the address browsers use for key. It prefers the configured
// public URL (CDN or proxy) over the API endpoint.
func (s *ObjectStore) PublicURL(key string) string {
	return publicURL(s.cfg.PublicURL, s.host, s.useSSL, s.cfg.Bucket, key)
}

func publicURL(public, host string, useSSL bool, bucket, key string) string {
	base := strings.TrimSuffix(public, "/")
	if base == "" {
		scheme := "http"
		if useSSL {
			scheme = "https"
		}
		base = fmt.Sprintf("%s://%s", scheme, host)
	}
	return fmt.Sprintf("%s/%s/%s", base, bucket, strings.TrimPrefix(key, "/"))
}
