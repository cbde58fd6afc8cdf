package rangestream

import (
	"bytes"
	"errors"
	"io"
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sir_venger/missionfiles/internal/byterange"
)

const fixture = "12345678901"

type memHandle struct {
	*bytes.Reader
	name    string
	closes  int
	readErr error
}

func newMemHandle(content string) *memHandle {
	return &memHandle{Reader: bytes.NewReader([]byte(content)), name: "path/to/file.test"}
}

func (m *memHandle) Name() string { return m.name }

func (m *memHandle) Close() error {
	m.closes++
	return nil
}

func (m *memHandle) Read(p []byte) (int, error) {
	if m.readErr != nil {
		return 0, m.readErr
	}
	return m.Reader.Read(p)
}

func collect(t *testing.T, seq iter.Seq2[[]byte, error]) []string {
	t.Helper()
	var out []string
	for chunk, err := range seq {
		require.NoError(t, err)
		out = append(out, string(chunk))
	}
	return out
}

func TestChunks_SplitsByChunkSize(t *testing.T) {
	h := newMemHandle(fixture)

	got := collect(t, Chunks(h, byterange.Interval{Start: 4, End: 10}, 5, false))
	assert.Equal(t, []string{"56789", "0"}, got)
	assert.Zero(t, h.closes)

	got = collect(t, Chunks(h, byterange.Interval{Start: 6, End: 11}, 5, false))
	assert.Equal(t, []string{"78901"}, got)
}

func TestChunks_NoEmptyChunks(t *testing.T) {
	h := newMemHandle(fixture)

	for size := int64(1); size <= 12; size++ {
		var total int
		for chunk, err := range Chunks(h, byterange.Interval{Start: 0, End: 11}, size, false) {
			require.NoError(t, err)
			require.NotEmpty(t, chunk)
			require.LessOrEqual(t, int64(len(chunk)), size)
			total += len(chunk)
		}
		assert.Equal(t, 11, total, "chunk size %d", size)
	}
}

func TestChunks_ClosesOnFinish(t *testing.T) {
	h := newMemHandle(fixture)

	got := collect(t, Chunks(h, byterange.Interval{Start: 0, End: 11}, 4, true))
	assert.Equal(t, []string{"1234", "5678", "901"}, got)
	assert.Equal(t, 1, h.closes)
}

func TestChunks_ClosesWhenConsumerStops(t *testing.T) {
	h := newMemHandle(fixture)

	for range Chunks(h, byterange.Interval{Start: 0, End: 11}, 2, true) {
		break
	}
	assert.Equal(t, 1, h.closes)
}

func TestChunks_ReadErrorClosesAndReports(t *testing.T) {
	h := newMemHandle(fixture)
	h.readErr = errors.New("storage went away")

	var gotErr error
	for _, err := range Chunks(h, byterange.Interval{Start: 0, End: 11}, 4, true) {
		gotErr = err
	}
	require.ErrorIs(t, gotErr, h.readErr)
	assert.Equal(t, 1, h.closes)
}

func TestChunks_ShortFileIsAnError(t *testing.T) {
	h := newMemHandle("123")

	var gotErr error
	for _, err := range Chunks(h, byterange.Interval{Start: 0, End: 10}, 4, false) {
		gotErr = err
	}
	require.ErrorIs(t, gotErr, io.ErrUnexpectedEOF)
}

func TestGuard_ClosesOnce(t *testing.T) {
	h := newMemHandle(fixture)
	g := guard(h)

	require.NoError(t, g.Close())
	require.NoError(t, g.Close())
	assert.Same(t, g, guard(g))
	assert.Equal(t, 1, h.closes)
}
