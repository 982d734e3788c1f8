/*
Package storage stores avatar images in S3-compatible object storage.
*/
package storage

import (
	"context"
	"io"
	"net/url"
	"strings"
	"time"
)

// ServiceConfig holds the configuration required to connect to the storage service.
type ServiceConfig struct {
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string

	// S3PublicBaseURL is the public origin objects are served from (bucket CDN or custom domain).
	// When empty, object URLs are presigned for PresignTTL.
	S3PublicBaseURL string
	PresignTTL      time.Duration
}

// StorageService defines the public interface for the file storage service.
type StorageService interface {
	// Upload writes body under key.
	Upload(ctx context.Context, key string, contentType string, body io.Reader) error

	// Delete removes the file specified by the given key.
	Delete(ctx context.Context, key string) error

	// URL returns the address clients use to read key.
	URL(ctx context.Context, key string) (string, error)
}

// NewStorageService is the factory function for StorageService.
func NewStorageService(cfg ServiceConfig) (StorageService, error) {
	// Currently, only S3 compatible implementations are supported.
	return newS3Client(cfg)
}

// publicURL joins base and key, escaping each key segment.
func publicURL(base, key string) string {
	segments := strings.Split(strings.TrimLeft(key, "/"), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.TrimRight(base, "/") + "/" + strings.Join(segments, "/")
}
