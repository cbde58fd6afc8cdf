package rangestream

import (
	"fmt"
	"iter"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/sir_venger/missionfiles/internal/byterange"
)

const (
	octetStream    = "application/octet-stream"
	boundaryLength = 13
)

// Responder собирает ответы для целого файла, одного и нескольких диапазонов.
type Responder struct {
	// ChunkSize задаёт размер одного чтения из файла.
	ChunkSize int64
	// Boundary генерирует разделитель multipart-ответа; nil означает NewBoundary.
	Boundary func() string
}

// NewBoundary возвращает 13 случайных символов [0-9a-f] из UUID v4.
func NewBoundary() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:boundaryLength]
}

func (p Responder) chunkSize() int64 {
	if p.ChunkSize <= 0 {
		return DefaultChunkSize
	}
	return p.ChunkSize
}

func (p Responder) boundary() string {
	if p.Boundary == nil {
		return NewBoundary()
	}
	return p.Boundary()
}

// Whole отдаёт весь файл со статусом 200 как вложение.
func (p Responder) Whole(h Handle) *Response {
	g := guard(h)
	size := g.Size()
	iv := byterange.Interval{Start: 0, End: size}

	resp := newResponse(KindWhole, http.StatusOK, size, g, Chunks(g, iv, p.chunkSize(), true))
	resp.Header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", path.Base(g.Name())))
	resp.Header.Set("Accept-Ranges", "bytes")

	return resp
}

// Single отдаёт один диапазон со статусом 206.
func (p Responder) Single(h Handle, iv byterange.Interval) *Response {
	g := guard(h)

	resp := newResponse(KindSingle, http.StatusPartialContent, iv.Len(), g, Chunks(g, iv, p.chunkSize(), true))
	resp.Header.Set("Content-Type", octetStream)
	resp.Header.Set("Content-Range", iv.ContentRange(g.Size()))

	return resp
}

// Multipart отдаёт несколько диапазонов одним multipart/byteranges ответом.
// Части идут в порядке запроса; файл общий для всех частей и закрывается только
// после завершающего разделителя.
func (p Responder) Multipart(h Handle, ivs []byterange.Interval) *Response {
	g := guard(h)
	size := g.Size()
	boundary := p.boundary()

	headers := make([][]byte, len(ivs))
	trailer := []byte("\r\n--" + boundary + "--\r\n")

	// Content-Length считается заранее: рамки частей + данные + завершающий разделитель.
	length := int64(len(trailer))
	for i, iv := range ivs {
		headers[i] = partHeader(boundary, iv, size)
		length += int64(len(headers[i])) + iv.Len()
	}

	resp := newResponse(KindMultipart, http.StatusPartialContent, length, g, p.multipartBody(g, ivs, headers, trailer))
	resp.Header.Set("Content-Type", "multipart/byteranges; boundary="+boundary)

	return resp
}

func (p Responder) multipartBody(h *onceHandle, ivs []byterange.Interval, headers [][]byte, trailer []byte) iter.Seq2[[]byte, error] {
	chunkSize := p.chunkSize()

	return func(yield func([]byte, error) bool) {
		defer h.Close()

		for i, iv := range ivs {
			if !yield(headers[i], nil) {
				return
			}
			for chunk, err := range Chunks(h, iv, chunkSize, false) {
				if err != nil {
					yield(nil, err)
					return
				}
				if !yield(chunk, nil) {
					return
				}
			}
		}

		yield(trailer, nil)
	}
}

func partHeader(boundary string, iv byterange.Interval, size int64) []byte {
	return []byte("\r\n--" + boundary + "\r\n" +
		"Content-Type: " + octetStream + "\r\n" +
		"Content-Range: " + iv.ContentRange(size) + "\r\n" +
		"\r\n")
}
