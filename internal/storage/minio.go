package storage

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/sir_venger/missionfiles/internal/config"
)

// Minio читает объекты из S3-совместимого MinIO.
type Minio struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewMinio создаёт клиента по endpoint и статическим ключам из конфигурации.
func NewMinio(cfg config.StorageConfig) (*Minio, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio: new client %q: %w", cfg.Endpoint, err)
	}

	return &Minio{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// Open проверяет объект через StatObject; minio.Object подгружает байты только при чтении.
func (m *Minio) Open(ctx context.Context, name string) (File, error) {
	cleaned, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	key := objectKey(m.prefix, cleaned)
	if strings.HasSuffix(key, "/") {
		return nil, notFound(name)
	}

	st, err := m.client.StatObject(ctx, m.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isMinioNotFound(err) {
			return nil, notFound(name)
		}
		return nil, fmt.Errorf("minio: stat %q: %w", key, err)
	}

	obj, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("minio: get %q: %w", key, err)
	}

	return &minioFile{Object: obj, key: key, size: st.Size}, nil
}

func isMinioNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.StatusCode == http.StatusNotFound || resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket"
}

type minioFile struct {
	*minio.Object
	key  string
	size int64
}

func (f *minioFile) Name() string { return f.key }

func (f *minioFile) Size() int64 { return f.size }

var _ Storage = (*Minio)(nil)
