package rangestream

import (
	"context"
	"iter"
	"net/http"
	"strconv"

	"golang.org/x/time/rate"
)

// Kind различает вид ответа для логов и метрик.
type Kind string

const (
	KindWhole     Kind = "whole"
	KindSingle    Kind = "single"
	KindMultipart Kind = "multipart"
)

// Response описывает готовый к отправке ответ: статус, заголовки и ленивое тело.
// Файл принадлежит ответу и освобождается через Close или по окончании тела.
type Response struct {
	Status int
	Header http.Header
	Length int64
	Kind   Kind

	body   iter.Seq2[[]byte, error]
	handle *onceHandle
}

func newResponse(kind Kind, status int, length int64, h *onceHandle, body iter.Seq2[[]byte, error]) *Response {
	hdr := make(http.Header)
	hdr.Set("Content-Length", strconv.FormatInt(length, 10))

	return &Response{
		Status: status,
		Header: hdr,
		Length: length,
		Kind:   kind,
		body:   body,
		handle: h,
	}
}

// Body возвращает последовательность байтов тела. Потребляется один раз.
func (r *Response) Body() iter.Seq2[[]byte, error] {
	return r.body
}

// Close освобождает файл, если тело ещё не сделало этого. Повторные вызовы безопасны.
func (r *Response) Close() error {
	return r.handle.Close()
}

// Inline превращает ответ во встраиваемый: без Content-Disposition и, кроме multipart,
// с переданным Content-Type.
func (r *Response) Inline(contentType string) {
	r.Header.Del("Content-Disposition")
	if contentType != "" && r.Kind != KindMultipart {
		r.Header.Set("Content-Type", contentType)
	}
}

// Send пишет заголовки и тело в w, опционально ограничивая скорость limiter'ом.
// Отмена ctx (клиент отключился) или ошибка записи прерывают поток; файл закрывается в любом случае.
func (r *Response) Send(ctx context.Context, w http.ResponseWriter, limiter *rate.Limiter) (int64, error) {
	defer r.Close()

	dst := w.Header()
	for k, v := range r.Header {
		dst[k] = v
	}
	w.WriteHeader(r.Status)

	var sent int64
	for chunk, err := range r.body {
		if err != nil {
			return sent, err
		}
		if err = ctx.Err(); err != nil {
			return sent, err
		}
		if limiter != nil {
			if err = waitN(ctx, limiter, len(chunk)); err != nil {
				return sent, err
			}
		}

		n, err := w.Write(chunk)
		sent += int64(n)
		if err != nil {
			return sent, err
		}
	}

	return sent, nil
}

// waitN ждёт разрешения на n байт порциями не больше burst: заголовки частей multipart
// могут быть длиннее чанка.
func waitN(ctx context.Context, l *rate.Limiter, n int) error {
	for n > 0 {
		k := min(n, l.Burst())
		if err := l.WaitN(ctx, k); err != nil {
			return err
		}
		n -= k
	}
	return nil
}

// NewLimiter создаёт ограничитель на bytesPerSecond байт в секунду с запасом не меньше чанка.
// Неположительное значение означает отсутствие ограничения.
func NewLimiter(bytesPerSecond, chunkSize int64) *rate.Limiter {
	if bytesPerSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(bytesPerSecond), int(max(bytesPerSecond, chunkSize)))
}
