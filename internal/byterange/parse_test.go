package byterange

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sir_venger/missionfiles/internal/models"
)

func TestParse_Forms(t *testing.T) {
	const size = 11

	cases := []struct {
		name   string
		header string
		want   []Interval
	}{
		{"start and end", "bytes=0-5", []Interval{{0, 6}}},
		{"first byte only", "bytes=0-0", []Interval{{0, 1}}},
		{"open end", "bytes=5-", []Interval{{5, 11}}},
		{"suffix", "bytes=-5", []Interval{{6, 11}}},
		{"suffix larger than file", "bytes=-100", []Interval{{0, 11}}},
		{"suffix equal to file", "bytes=-11", []Interval{{0, 11}}},
		{"last byte", "bytes=10-10", []Interval{{10, 11}}},
		{"multi keeps order", "bytes=6-,4-9", []Interval{{6, 11}, {4, 10}}},
		{"overlapping kept", "bytes=0-3,2-5,0-3", []Interval{{0, 4}, {2, 6}, {0, 4}}},
		{"spaces after comma", "bytes=0-1, 3-4 ,  -2", []Interval{{0, 2}, {3, 5}, {9, 11}}},
		{"empty specs skipped", "bytes=,0-1,,", []Interval{{0, 2}}},
		{"suffix beyond int64 clamps", "bytes=-99999999999999999999", []Interval{{0, 11}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.header, size)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	headers := []string{
		"garbage",
		"",
		"items=0-5",
		"bytes=",
		"bytes=,",
		"bytes=5",
		"bytes=a-b",
		"bytes=1-a",
		"bytes=-x",
		"bytes=5-3",
		"bytes=+1-2",
		"bytes=--5",
		"bytes=0-5,oops",
	}

	for _, h := range headers {
		t.Run(h, func(t *testing.T) {
			_, err := Parse(h, 11)
			require.ErrorIs(t, err, models.ErrMalformedRange)
		})
	}
}

func TestParse_Unsatisfiable(t *testing.T) {
	cases := []struct {
		header string
		size   int64
	}{
		{"bytes=0-100", 11},
		{"bytes=11-", 11},
		{"bytes=11-11", 11},
		{"bytes=-0", 11},
		{"bytes=-5", 0},
		{"bytes=0-", 0},
		{"bytes=0-9223372036854775807", 11},
		{"bytes=0-9223372036854775808", 11},
		{"bytes=99999999999999999999-", 11},
		{"bytes=99999999999999999999-99999999999999999999", 11},
	}

	for _, tc := range cases {
		t.Run(tc.header, func(t *testing.T) {
			_, err := Parse(tc.header, tc.size)
			require.ErrorIs(t, err, models.ErrUnsatisfiableRange)
		})
	}
}

func TestParse_OneBadIntervalRejectsAll(t *testing.T) {
	_, err := Parse("bytes=0-1,2-3,5-200", 11)
	require.ErrorIs(t, err, models.ErrUnsatisfiableRange)

	_, err = Parse("bytes=20-,0-1", 11)
	require.ErrorIs(t, err, models.ErrUnsatisfiableRange)
}

func TestParse_UnsatisfiableNamesSpec(t *testing.T) {
	_, err := Parse("bytes=0-1,11-", 11)
	require.ErrorIs(t, err, models.ErrUnsatisfiableRange)
	assert.Contains(t, err.Error(), `"11-" outside of 11 bytes`)

	_, err = Parse("bytes=0-9223372036854775807", 11)
	require.ErrorIs(t, err, models.ErrUnsatisfiableRange)
	assert.Contains(t, err.Error(), `"0-9223372036854775807"`)
}

func TestInterval_ContentRange(t *testing.T) {
	iv := Interval{Start: 0, End: 6}
	assert.Equal(t, int64(6), iv.Len())
	assert.Equal(t, "bytes 0-5/11", iv.ContentRange(11))
}
