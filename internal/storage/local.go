package storage

import (
	"context"
	"fmt"
	"os"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

// Local хранит файлы в billy-файловой системе (на диске это каталог MEDIA_ROOT).
type Local struct {
	fs billy.Filesystem
}

// NewLocal оборачивает произвольную billy.Filesystem, например memfs в тестах.
func NewLocal(fs billy.Filesystem) *Local {
	return &Local{fs: fs}
}

// NewLocalDir создаёт хранилище поверх каталога root.
func NewLocalDir(root string) *Local {
	return NewLocal(osfs.New(root))
}

// Open открывает обычный файл; каталоги и отсутствующие пути дают models.ErrNotFound.
func (l *Local) Open(_ context.Context, name string) (File, error) {
	cleaned, err := cleanName(name)
	if err != nil {
		return nil, err
	}

	info, err := l.fs.Stat(cleaned)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound(name)
		}
		return nil, fmt.Errorf("local: stat %q: %w", cleaned, err)
	}
	if !info.Mode().IsRegular() {
		return nil, notFound(name)
	}

	f, err := l.fs.Open(cleaned)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound(name)
		}
		return nil, fmt.Errorf("local: open %q: %w", cleaned, err)
	}

	return &localFile{File: f, size: info.Size()}, nil
}

type localFile struct {
	billy.File
	size int64
}

func (f *localFile) Size() int64 { return f.size }

var _ Storage = (*Local)(nil)
