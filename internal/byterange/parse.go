// Package byterange разбирает заголовок Range (RFC 7233, единица bytes) в полуоткрытые интервалы.
package byterange

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/sir_venger/missionfiles/internal/models"
)

const unitPrefix = "bytes="

// Interval — байты [Start, End) файла известного размера.
type Interval struct {
	Start int64
	End   int64
}

// Len возвращает длину интервала в байтах.
func (iv Interval) Len() int64 {
	return iv.End - iv.Start
}

// ContentRange форматирует интервал для заголовка Content-Range (границы на проводе включительные).
func (iv Interval) ContentRange(size int64) string {
	return fmt.Sprintf("bytes %d-%d/%d", iv.Start, iv.End-1, size)
}

func (iv Interval) valid(size int64) bool {
	return iv.Start >= 0 && iv.Start < iv.End && iv.End <= size
}

// HasUnit проверяет, что заголовок начинается с "bytes=".
func HasUnit(header string) bool {
	return strings.HasPrefix(header, unitPrefix)
}

// Parse разбирает значение заголовка Range для файла размером size.
// Синтаксические ошибки и пустой список дают models.ErrMalformedRange.
// Если хотя бы один интервал выходит за границы файла, весь запрос отклоняется
// с models.ErrUnsatisfiableRange. Порядок интервалов сохраняется, пересечения не склеиваются.
func Parse(header string, size int64) ([]Interval, error) {
	if !HasUnit(header) {
		return nil, fmt.Errorf("%w: missing %q unit in %q", models.ErrMalformedRange, unitPrefix, header)
	}

	specs := strings.Split(header[len(unitPrefix):], ",")
	out := make([]Interval, 0, len(specs))
	raw := make([]string, 0, len(specs))
	for _, spec := range specs {
		spec = strings.TrimSpace(spec)
		if spec == "" {
			continue
		}
		iv, err := parseSpec(spec, size)
		if err != nil {
			return nil, err
		}
		out = append(out, iv)
		raw = append(raw, spec)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no ranges in %q", models.ErrMalformedRange, header)
	}

	// Границы проверяем только после разбора всего списка.
	for i, iv := range out {
		if !iv.valid(size) {
			return nil, fmt.Errorf("%w: %q outside of %d bytes", models.ErrUnsatisfiableRange, raw[i], size)
		}
	}

	return out, nil
}

func parseSpec(spec string, size int64) (Interval, error) {
	first, last, ok := strings.Cut(spec, "-")
	if !ok {
		return Interval{}, fmt.Errorf("%w: %q has no dash", models.ErrMalformedRange, spec)
	}
	first = strings.TrimSpace(first)
	last = strings.TrimSpace(last)

	// -suffix: последние N байт, N больше размера файла означает весь файл.
	if first == "" {
		suffix, err := parsePos(last)
		if err != nil {
			return Interval{}, fmt.Errorf("%w: bad suffix length in %q", models.ErrMalformedRange, spec)
		}
		return Interval{Start: max(size-suffix, 0), End: size}, nil
	}

	start, err := parsePos(first)
	if err != nil {
		return Interval{}, fmt.Errorf("%w: bad first byte in %q", models.ErrMalformedRange, spec)
	}

	if last == "" {
		return Interval{Start: start, End: size}, nil
	}

	end, err := parsePos(last)
	if err != nil {
		return Interval{}, fmt.Errorf("%w: bad last byte in %q", models.ErrMalformedRange, spec)
	}
	if end < start {
		return Interval{}, fmt.Errorf("%w: last byte precedes first byte in %q", models.ErrMalformedRange, spec)
	}
	if end == math.MaxInt64 {
		return Interval{Start: start, End: end}, nil
	}

	return Interval{Start: start, End: end + 1}, nil
}

// parsePos принимает только неотрицательные десятичные числа без знака.
// Число больше int64 насыщается до math.MaxInt64.
func parsePos(s string) (int64, error) {
	if s == "" || s[0] == '+' || s[0] == '-' {
		return 0, strconv.ErrSyntax
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if errors.Is(err, strconv.ErrRange) {
		return math.MaxInt64, nil
	}
	return n, err
}
