package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// UploadExpiry is how long a signed upload URL stays valid.
const UploadExpiry = 60 * time.Second

// ErrUnsupportedType is returned for content types outside the image allow-list.
var ErrUnsupportedType = errors.New("unsupported content type")

var extensionsByType = map[string]string{
	"image/jpeg":    "jpg",
	"image/png":     "png",
	"image/gif":     "gif",
	"image/webp":    "webp",
	"image/svg+xml": "svg",
	"image/avif":    "avif",
}

// UploadTicket is what a client needs to PUT a file directly to object storage.
type UploadTicket struct {
	UploadURL        string `json:"uploadUrl"`
	Key              string `json:"key"`
	PublicURL        string `json:"publicUrl"`
	ExpiresInSeconds int    `json:"expiresInSeconds"`
}

// MinIOStorage is a thin wrapper around the minio client used by services.
type MinIOStorage struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewMinIOStorage creates the client without touching the network. Call
// EnsureBucket once at startup to create the bucket.
func NewMinIOStorage(cfg *MinIOConfig) (*MinIOStorage, error) {
	if cfg == nil || cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio config missing")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new: %w", err)
	}
	public := cfg.PublicURL
	if public == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		public = scheme + "://" + cfg.Endpoint + "/" + cfg.Bucket
	}
	return &MinIOStorage{client: mc, bucket: cfg.Bucket, publicURL: strings.TrimRight(public, "/")}, nil
}

// EnsureBucket creates the bucket if it does not exist (idempotent).
func (s *MinIOStorage) EnsureBucket(ctx context.Context) error {
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		// ignore "already exists" style errors
		exist, xerr := s.client.BucketExists(ctx, s.bucket)
		if xerr != nil || !exist {
			return fmt.Errorf("minio bucket ensure: %w", err)
		}
	}
	return nil
}

// SignUpload returns a presigned PUT URL for a new object. When key is empty a
// random key under uploads/ is generated; the extension comes from the
// explicit argument or, failing that, from the content type.
func (s *MinIOStorage) SignUpload(ctx context.Context, contentType, extension, key string) (*UploadTicket, error) {
	ext, ok := extensionsByType[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, contentType)
	}
	if e := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(extension)), "."); e != "" {
		ext = e
	}
	key = cleanKey(key)
	if key == "" {
		key = "uploads/" + uuid.NewString() + "." + ext
	}
	u, err := s.client.PresignedPutObject(ctx, s.bucket, key, UploadExpiry)
	if err != nil {
		return nil, fmt.Errorf("presign upload: %w", err)
	}
	return &UploadTicket{
		UploadURL:        u.String(),
		Key:              key,
		PublicURL:        s.publicURL + "/" + key,
		ExpiresInSeconds: int(UploadExpiry / time.Second),
	}, nil
}

// cleanKey keeps caller-chosen keys inside the bucket namespace.
func cleanKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	key = strings.TrimPrefix(path.Clean("/"+key), "/")
	if key == "." {
		return ""
	}
	return key
}
