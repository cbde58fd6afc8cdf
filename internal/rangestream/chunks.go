// Package rangestream строит ответы 200/206 поверх открытого файла и лениво отдаёт его байты
// фиксированными чанками: целиком, одним диапазоном или multipart/byteranges.
package rangestream

import (
	"fmt"
	"io"
	"iter"
	"sync"

	"github.com/sir_venger/missionfiles/internal/byterange"
)

// DefaultChunkSize используется, если размер чанка не задан.
const DefaultChunkSize int64 = 64 << 10

// Handle: открытый файл, из которого читаются диапазоны.
type Handle interface {
	io.ReadSeekCloser
	Size() int64
	Name() string
}

// Chunks возвращает ленивую последовательность чанков интервала iv.
// Все чанки, кроме последнего, имеют размер chunkSize; пустых чанков не бывает.
// При closeOnFinish файл закрывается и после последнего чанка, и при ошибке,
// и когда потребитель прекратил итерацию раньше.
func Chunks(h Handle, iv byterange.Interval, chunkSize int64, closeOnFinish bool) iter.Seq2[[]byte, error] {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	return func(yield func([]byte, error) bool) {
		if closeOnFinish {
			defer h.Close()
		}

		if _, err := h.Seek(iv.Start, io.SeekStart); err != nil {
			yield(nil, fmt.Errorf("seek %q to %d: %w", h.Name(), iv.Start, err))
			return
		}

		for remaining := iv.Len(); remaining > 0; {
			buf := make([]byte, min(chunkSize, remaining))
			if _, err := io.ReadFull(h, buf); err != nil {
				yield(nil, fmt.Errorf("read %q at %d: %w", h.Name(), iv.End-remaining, err))
				return
			}
			remaining -= int64(len(buf))

			if !yield(buf, nil) {
				return
			}
		}
	}
}

// onceHandle гарантирует ровно один Close нижележащего файла.
type onceHandle struct {
	Handle
	once sync.Once
	err  error
}

func guard(h Handle) *onceHandle {
	if g, ok := h.(*onceHandle); ok {
		return g
	}
	return &onceHandle{Handle: h}
}

func (g *onceHandle) Close() error {
	g.once.Do(func() {
		g.err = g.Handle.Close()
	})
	return g.err
}
