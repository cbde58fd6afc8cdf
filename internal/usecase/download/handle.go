package download

import (
	"errors"
	"io"
	"sync"

	"github.com/gabriel-vasile/mimetype"

	"github.com/sir_venger/missionfiles/internal/storage"
)

const sniffLen = 3072

// trackedFile отражает открытый файл в метрике open_handles.
type trackedFile struct {
	storage.File
	once    sync.Once
	onClose func()
	err     error
}

func (s *Downloads) track(f storage.File) *trackedFile {
	s.Metrics.HandleOpened()
	return &trackedFile{File: f, onClose: s.Metrics.HandleClosed}
}

func (f *trackedFile) Close() error {
	f.once.Do(func() {
		f.err = f.File.Close()
		f.onClose()
	})
	return f.err
}

// detectContentType определяет тип по первым байтам файла, при неудаче возвращает application/octet-stream.
func detectContentType(f io.ReadSeeker) string {
	const fallback = "application/octet-stream"

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return fallback
	}
	mt, err := mimetype.DetectReader(io.LimitReader(f, sniffLen))
	if err != nil && !errors.Is(err, io.EOF) {
		return fallback
	}
	if mt == nil {
		return fallback
	}
	return mt.String()
}
