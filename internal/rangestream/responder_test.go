package rangestream

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/sir_venger/missionfiles/internal/byterange"
)

func fixedBoundary() string { return "3d6b6a416f9b5" }

func TestNewBoundary_Shape(t *testing.T) {
	for i := 0; i < 100; i++ {
		b := NewBoundary()
		require.Len(t, b, 13)
		for _, c := range b {
			require.True(t, (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z'), "unexpected %q in %q", c, b)
		}
	}
	assert.NotEqual(t, NewBoundary(), NewBoundary())
}

func TestResponder_Whole(t *testing.T) {
	h := newMemHandle(fixture)
	resp := Responder{ChunkSize: 5}.Whole(h)

	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, KindWhole, resp.Kind)
	assert.Equal(t, `attachment; filename="file.test"`, resp.Header.Get("Content-Disposition"))
	assert.Equal(t, "bytes", resp.Header.Get("Accept-Ranges"))
	assert.Equal(t, "11", resp.Header.Get("Content-Length"))

	assert.Equal(t, []string{"12345", "67890", "1"}, collect(t, resp.Body()))
	assert.Equal(t, 1, h.closes)

	require.NoError(t, resp.Close())
	assert.Equal(t, 1, h.closes)
}

func TestResponder_WholeEmptyFile(t *testing.T) {
	h := newMemHandle("")
	resp := Responder{}.Whole(h)

	assert.Empty(t, collect(t, resp.Body()))
	assert.Equal(t, "0", resp.Header.Get("Content-Length"))
	assert.Equal(t, 1, h.closes)
}

func TestResponder_Single(t *testing.T) {
	cases := []struct {
		iv           byterange.Interval
		body         string
		contentRange string
	}{
		{byterange.Interval{Start: 0, End: 6}, "123456", "bytes 0-5/11"},
		{byterange.Interval{Start: 6, End: 11}, "78901", "bytes 6-10/11"},
		{byterange.Interval{Start: 5, End: 11}, "678901", "bytes 5-10/11"},
		{byterange.Interval{Start: 0, End: 1}, "1", "bytes 0-0/11"},
	}

	for _, tc := range cases {
		t.Run(tc.contentRange, func(t *testing.T) {
			h := newMemHandle(fixture)
			resp := Responder{ChunkSize: 5}.Single(h, tc.iv)

			assert.Equal(t, http.StatusPartialContent, resp.Status)
			assert.Equal(t, "application/octet-stream", resp.Header.Get("Content-Type"))
			assert.Equal(t, tc.contentRange, resp.Header.Get("Content-Range"))
			assert.Equal(t, strconv.Itoa(len(tc.body)), resp.Header.Get("Content-Length"))
			assert.Empty(t, resp.Header.Get("Content-Disposition"))

			assert.Equal(t, tc.body, strings.Join(collect(t, resp.Body()), ""))
			assert.Equal(t, 1, h.closes)
		})
	}
}

func TestResponder_MultipartChunkLayout(t *testing.T) {
	h := newMemHandle(fixture)
	p := Responder{ChunkSize: 5, Boundary: fixedBoundary}
	resp := p.Multipart(h, []byterange.Interval{{Start: 6, End: 11}, {Start: 4, End: 10}})

	assert.Equal(t, http.StatusPartialContent, resp.Status)
	assert.Equal(t, "multipart/byteranges; boundary=3d6b6a416f9b5", resp.Header.Get("Content-Type"))

	got := collect(t, resp.Body())
	want := []string{
		"\r\n--3d6b6a416f9b5\r\nContent-Type: application/octet-stream\r\nContent-Range: bytes 6-10/11\r\n\r\n",
		"78901",
		"\r\n--3d6b6a416f9b5\r\nContent-Type: application/octet-stream\r\nContent-Range: bytes 4-9/11\r\n\r\n",
		"56789",
		"0",
		"\r\n--3d6b6a416f9b5--\r\n",
	}
	assert.Equal(t, want, got)
	assert.Equal(t, 1, h.closes)

	var total int
	for _, s := range got {
		total += len(s)
	}
	assert.Equal(t, int64(total), resp.Length)
	assert.Equal(t, strconv.Itoa(total), resp.Header.Get("Content-Length"))
}

func TestResponder_MultipartParsesAsMIME(t *testing.T) {
	content := strings.Repeat("abcdefghij", 50)
	h := newMemHandle(content)
	ivs := []byterange.Interval{{Start: 400, End: 500}, {Start: 0, End: 3}, {Start: 1, End: 2}, {Start: 0, End: 3}}
	resp := Responder{ChunkSize: 7}.Multipart(h, ivs)

	var body bytes.Buffer
	for chunk, err := range resp.Body() {
		require.NoError(t, err)
		body.Write(chunk)
	}
	require.Equal(t, resp.Length, int64(body.Len()))

	_, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	require.NoError(t, err)

	mr := multipart.NewReader(&body, params["boundary"])
	for i, iv := range ivs {
		part, err := mr.NextPart()
		require.NoError(t, err, "part %d", i)
		assert.Equal(t, iv.ContentRange(int64(len(content))), part.Header.Get("Content-Range"))
		data, err := io.ReadAll(part)
		require.NoError(t, err)
		assert.Equal(t, content[iv.Start:iv.End], string(data))
	}
	_, err = mr.NextPart()
	assert.ErrorIs(t, err, io.EOF)
}

func TestResponder_MultipartClosesAfterTrailerOnly(t *testing.T) {
	h := newMemHandle(fixture)
	resp := Responder{ChunkSize: 5, Boundary: fixedBoundary}.Multipart(h, []byterange.Interval{{Start: 0, End: 2}, {Start: 3, End: 4}})

	var items int
	for chunk := range resp.Body() {
		items++
		if !bytes.HasSuffix(chunk, []byte("--\r\n")) {
			assert.Zero(t, h.closes, "closed before trailer at item %d", items)
		}
	}
	assert.Equal(t, 1, h.closes)
}

func TestResponder_MultipartTeardownCloses(t *testing.T) {
	h := newMemHandle(fixture)
	resp := Responder{ChunkSize: 1}.Multipart(h, []byterange.Interval{{Start: 0, End: 5}, {Start: 5, End: 11}})

	var seen int
	for range resp.Body() {
		seen++
		if seen == 3 {
			break
		}
	}
	assert.Equal(t, 1, h.closes)

	require.NoError(t, resp.Close())
	assert.Equal(t, 1, h.closes)
}

func TestResponse_CloseWithoutStreaming(t *testing.T) {
	h := newMemHandle(fixture)
	resp := Responder{}.Single(h, byterange.Interval{Start: 0, End: 1})

	require.NoError(t, resp.Close())
	require.NoError(t, resp.Close())
	assert.Equal(t, 1, h.closes)
}

func TestResponse_Inline(t *testing.T) {
	whole := Responder{}.Whole(newMemHandle(fixture))
	whole.Inline("video/mp4")
	assert.Empty(t, whole.Header.Get("Content-Disposition"))
	assert.Equal(t, "video/mp4", whole.Header.Get("Content-Type"))

	multi := Responder{Boundary: fixedBoundary}.Multipart(newMemHandle(fixture), []byterange.Interval{{Start: 0, End: 1}, {Start: 2, End: 3}})
	multi.Inline("video/mp4")
	assert.Equal(t, "multipart/byteranges; boundary=3d6b6a416f9b5", multi.Header.Get("Content-Type"))
}

func TestResponse_Send(t *testing.T) {
	h := newMemHandle(fixture)
	resp := Responder{ChunkSize: 5}.Single(h, byterange.Interval{Start: 0, End: 6})

	rec := httptest.NewRecorder()
	n, err := resp.Send(context.Background(), rec, NewLimiter(1<<20, 5))
	require.NoError(t, err)

	assert.Equal(t, int64(6), n)
	assert.Equal(t, http.StatusPartialContent, rec.Code)
	assert.Equal(t, "123456", rec.Body.String())
	assert.Equal(t, "bytes 0-5/11", rec.Header().Get("Content-Range"))
	assert.Equal(t, 1, h.closes)
}

func TestResponse_SendCancelled(t *testing.T) {
	h := newMemHandle(fixture)
	resp := Responder{ChunkSize: 2}.Whole(h)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := httptest.NewRecorder()
	n, err := resp.Send(ctx, rec, nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, n)
	assert.Equal(t, 1, h.closes)
}

type failingWriter struct {
	*httptest.ResponseRecorder
	after int
}

func (f *failingWriter) Write(p []byte) (int, error) {
	if f.after <= 0 {
		return 0, errors.New("broken pipe")
	}
	f.after--
	return f.ResponseRecorder.Write(p)
}

func TestResponse_SendWriteErrorReleasesHandle(t *testing.T) {
	h := newMemHandle(fixture)
	resp := Responder{ChunkSize: 2}.Multipart(h, []byterange.Interval{{Start: 0, End: 4}, {Start: 6, End: 11}})

	w := &failingWriter{ResponseRecorder: httptest.NewRecorder(), after: 2}
	_, err := resp.Send(context.Background(), w, nil)
	require.Error(t, err)
	assert.Equal(t, 1, h.closes)
}

func TestNewLimiter(t *testing.T) {
	assert.Nil(t, NewLimiter(0, 5))
	l := NewLimiter(10, 64)
	require.NotNil(t, l)
	assert.Equal(t, 64, l.Burst())
}

func TestResponse_SendMultipartWithSmallBurst(t *testing.T) {
	h := newMemHandle(fixture)
	resp := Responder{ChunkSize: 5, Boundary: fixedBoundary}.Multipart(h, []byterange.Interval{{Start: 6, End: 11}, {Start: 4, End: 10}})

	// заголовок части длиннее burst, ожидание должно идти порциями
	rec := httptest.NewRecorder()
	n, err := resp.Send(context.Background(), rec, rate.NewLimiter(1e9, 8))
	require.NoError(t, err)
	assert.Equal(t, resp.Length, n)
	assert.Equal(t, 1, h.closes)
}
