package document

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectStoreConfig points at an S3-compatible endpoint.
type ObjectStoreConfig struct {
	Endpoint  string `json:"endpoint"`
	AccessKey string `json:"access_key"`
	SecretKey string `json:"secret_key"`
	UseSSL    bool   `json:"use_ssl"`
}

// ObjectSource fetches upload candidates from object storage.
type ObjectSource struct {
	client  *minio.Client
	maxSize int64
}

func NewObjectSource(cfg ObjectStoreConfig) (*ObjectSource, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client: %w", err)
	}
	return &ObjectSource{client: client, maxSize: MaxFileSize}, nil
}

// ObjectScheme prefixes references understood by ParseObjectRef.
const ObjectScheme = "minio://"

// ParseObjectRef splits "minio://bucket/key" (scheme optional) into its parts.
func ParseObjectRef(ref string) (bucket, key string, err error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(ref), ObjectScheme)
	bucket, key, ok := strings.Cut(trimmed, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid object reference %q, expected bucket/key", ref)
	}
	return bucket, key, nil
}

// Fetch stats the object and downloads it only when it fits the upload limit.
// Oversized objects come back without Data so the gate rejects them by size.
func (s *ObjectSource) Fetch(ctx context.Context, ref string) (File, error) {
	bucket, key, err := ParseObjectRef(ref)
	if err != nil {
		return File{}, err
	}

	info, err := s.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return File{}, fmt.Errorf("failed to stat %s/%s: %w", bucket, key, err)
	}
	f := File{
		Name:         path.Base(key),
		DeclaredType: info.ContentType,
		Size:         info.Size,
	}
	if info.Size > s.maxSize {
		return f, nil
	}

	obj, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return File{}, fmt.Errorf("failed to get %s/%s: %w", bucket, key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(io.LimitReader(obj, s.maxSize+1))
	if err != nil {
		return File{}, fmt.Errorf("failed to read %s/%s: %w", bucket, key, err)
	}
	f.Data = data
	f.Size = int64(len(data))
	return f, nil
}
