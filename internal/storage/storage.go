// Package storage открывает файлы записей миссий на локальном диске, в S3 или MinIO
// и отдаёт их как seekable-дескрипторы с известным размером.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/sir_venger/missionfiles/internal/config"
	"github.com/sir_venger/missionfiles/internal/models"
)

const (
	BackendLocal = "local"
	BackendS3    = "s3"
	BackendMinio = "minio"
)

// File описывает открытый файл: чтение, позиционирование, размер и имя.
type File interface {
	io.ReadSeekCloser
	Size() int64
	Name() string
}

// Storage открывает файлы по относительному пути.
type Storage interface {
	Open(ctx context.Context, name string) (File, error)
}

// New выбирает реализацию хранилища по конфигурации.
func New(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch cfg.Backend {
	case BackendLocal, "":
		return NewLocalDir(cfg.Root), nil
	case BackendS3:
		return NewS3FromConfig(ctx, cfg)
	case BackendMinio:
		return NewMinio(cfg)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// cleanName нормализует путь из URL и запрещает выход за корень хранилища.
func cleanName(name string) (string, error) {
	cleaned := path.Clean("/" + strings.TrimSpace(name))
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" || cleaned == "." {
		return "", fmt.Errorf("%w: %q", models.ErrNotFound, name)
	}
	for _, seg := range strings.Split(name, "/") {
		if seg == ".." {
			return "", fmt.Errorf("%w: %q", models.ErrNotFound, name)
		}
	}
	return cleaned, nil
}

func notFound(name string) error {
	return fmt.Errorf("%w: %s", models.ErrNotFound, name)
}

func objectKey(prefix, name string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}
