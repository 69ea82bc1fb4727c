package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/url"
	"path"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Uploader stores binary assets (guide photos, licenses, testimonial
// videos, package images) and returns a public URL.
type Uploader interface {
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) (publicURL string, err error)
}

// Config carries the connection settings for an S3-compatible store.
type Config struct {
	Endpoint  string
	PublicURL string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Client serves one bucket. The bucket is created lazily on first upload and
// opened up for public reads so stored asset URLs can be embedded as-is.
type Client struct {
	cfg    Config
	client *minio.Client
	logger *slog.Logger

	initOnce sync.Once
	initErr  error
}

func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	cfg.Endpoint = strings.TrimSpace(cfg.Endpoint)
	cfg.Bucket = strings.TrimSpace(cfg.Bucket)
	switch {
	case cfg.Endpoint == "":
		return nil, errors.New("s3: endpoint is required")
	case cfg.Bucket == "":
		return nil, errors.New("s3: bucket is required")
	}
	if cfg.PublicURL = strings.TrimRight(strings.TrimSpace(cfg.PublicURL), "/"); cfg.PublicURL == "" {
		cfg.PublicURL = strings.TrimRight(cfg.Endpoint, "/")
	}

	mc, err := minio.New(hostOf(cfg.Endpoint), &minio.Options{
		Creds:  credentials.NewStaticV4(strings.TrimSpace(cfg.AccessKey), strings.TrimSpace(cfg.SecretKey), ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("s3: create client: %w", err)
	}
	return &Client{cfg: cfg, client: mc, logger: logger}, nil
}

func (c *Client) Upload(ctx context.Context, key string, reader io.Reader, contentType string) (string, error) {
	if reader == nil {
		return "", errors.New("s3: reader is required")
	}
	key = sanitizeKey(key)
	if key == "" {
		return "", errors.New("s3: object key is required")
	}
	if err := c.ensureBucket(ctx); err != nil {
		return "", err
	}

	if contentType == "" {
		contentType = guessContentType(key)
	}
	_, err := c.client.PutObject(ctx, c.cfg.Bucket, key, reader, -1, minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: "public, max-age=86400",
	})
	if err != nil {
		return "", fmt.Errorf("s3: put object %s: %w", key, err)
	}

	publicURL := fmt.Sprintf("%s/%s/%s", c.cfg.PublicURL, c.cfg.Bucket, key)
	if c.logger != nil {
		c.logger.Info("asset uploaded", "bucket", c.cfg.Bucket, "key", key, "content_type", contentType)
	}
	return publicURL, nil
}

func (c *Client) ensureBucket(ctx context.Context) error {
	c.initOnce.Do(func() { c.initErr = c.initBucket(ctx) })
	return c.initErr
}

func (c *Client) initBucket(ctx context.Context) error {
	exists, err := c.client.BucketExists(ctx, c.cfg.Bucket)
	if err != nil {
		return fmt.Errorf("s3: check bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := c.client.MakeBucket(ctx, c.cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("s3: create bucket: %w", err)
	}
	policy := fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`, c.cfg.Bucket)
	if err := c.client.SetBucketPolicy(ctx, c.cfg.Bucket, policy); err != nil {
		return fmt.Errorf("s3: set bucket policy: %w", err)
	}
	return nil
}

// sanitizeKey normalizes an object key: no leading slash, no path escapes,
// spaces collapsed so URLs stay copy-pasteable.
func sanitizeKey(key string) string {
	key = strings.ReplaceAll(strings.TrimSpace(key), " ", "-")
	key = path.Clean("/" + key)
	return strings.TrimPrefix(key, "/")
}

func guessContentType(key string) string {
	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func hostOf(endpoint string) string {
	if parsed, err := url.Parse(endpoint); err == nil && parsed.Host != "" {
		return parsed.Host
	}
	return endpoint
}

// NoopUploader fails fast when object storage is not configured.
type NoopUploader struct{}

func (NoopUploader) Upload(_ context.Context, _ string, _ io.Reader, _ string) (string, error) {
	return "", errors.New("object storage is not configured")
}

var _ Uploader = (*Client)(nil)
var _ Uploader = NoopUploader{}
