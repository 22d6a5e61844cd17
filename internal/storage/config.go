package storage

import (
	"os"
	"strings"
)

// MinIOConfig holds MinIO connection configuration
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	Region    string
	// PublicURL is the base URL browsers use to read uploaded objects,
	// e.g. https://cdn.example.org/impact. Empty means scheme://endpoint/bucket.
	PublicURL string
}

// LoadMinIOConfig loads MinIO config from environment
func LoadMinIOConfig() *MinIOConfig {
	useSSL := false
	if os.Getenv("MINIO_USE_SSL") == "true" {
		useSSL = true
	}
	return &MinIOConfig{
		Endpoint:  os.Getenv("MINIO_ENDPOINT"),
		AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		SecretKey: os.Getenv("MINIO_SECRET_KEY"),
		UseSSL:    useSSL,
		Bucket:    getEnv("MINIO_BUCKET", "impact"),
		Region:    getEnv("MINIO_REGION", "us-east-1"),
		PublicURL: strings.TrimRight(os.Getenv("MINIO_PUBLIC_URL"), "/"),
	}
}

// Configured reports whether enough settings are present to sign uploads.
func (c *MinIOConfig) Configured() bool {
	return c != nil && c.Endpoint != "" && c.AccessKey != "" && c.SecretKey != ""
}

func getEnv(k, d string) string {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	return v
}
