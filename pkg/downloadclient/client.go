// Package downloadclient реализует HTTP-клиент сервиса выдачи записей миссий.
package downloadclient

import (
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
)

const (
	downloadPathFormat = "%s/file/download/%s"
	streamPathFormat   = "%s/file/stream/%s"
	errorBodyLimit     = 4 << 10
)

type Request struct {
	Path      string
	SessionID string
	// Range: значение заголовка Range, например "bytes=0-99,-10".
	Range string
	// Inline запрашивает /file/stream вместо /file/download.
	Inline bool
}

// StatusError описывает ответ сервиса с кодом вне 2xx.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("download failed: %s", e.Status)
	}
	return fmt.Sprintf("download failed: %s: %s", e.Status, e.Body)
}

// Response: успешный ответ. Тело читает вызывающий и обязан закрыть.
type Response struct {
	StatusCode    int
	Header        http.Header
	ContentLength int64
	Body          io.ReadCloser
}

// Part: одна часть ответа, байты и заголовок Content-Range (пусто для целого файла).
type Part struct {
	ContentRange string
	Data         []byte
}

type Client struct {
	baseURL  string
	http     *http.Client
	progress io.Writer
}

type Option func(*Client)

// WithHTTPClient подменяет http.Client (таймауты, транспорт).
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// WithProgress включает индикатор выполнения, который рисуется в w.
func WithProgress(w io.Writer) Option {
	return func(cl *Client) { cl.progress = w }
}

// New создаёт клиента к сервису по адресу baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get запрашивает файл или его диапазоны.
func (c *Client) Get(ctx context.Context, req Request) (*Response, error) {
	format := downloadPathFormat
	if req.Inline {
		format = streamPathFormat
	}
	u := fmt.Sprintf(format, c.baseURL, escapePath(req.Path))
	if req.SessionID != "" {
		u += "?" + url.Values{"sessionid": {req.SessionID}}.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	if req.Range != "" {
		httpReq.Header.Set("Range", req.Range)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		defer resp.Body.Close()
		b, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(b)),
		}
	}

	body := resp.Body
	if c.progress != nil {
		bar := newProgressBar(c.progress, fmt.Sprintf("Downloading %s", req.Path), resp.ContentLength)
		bar.render(true)
		body = newProgressReadCloser(resp.Body, bar)
	}

	return &Response{
		StatusCode:    resp.StatusCode,
		Header:        resp.Header,
		ContentLength: resp.ContentLength,
		Body:          body,
	}, nil
}

// Parts читает всё тело и раскладывает его по частям.
// multipart/byteranges даёт по части на диапазон, остальные ответы дают одну часть.
func (r *Response) Parts() ([]Part, error) {
	defer r.Body.Close()

	mt, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mt != "multipart/byteranges" {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, err
		}
		return []Part{{ContentRange: r.Header.Get("Content-Range"), Data: data}}, nil
	}

	var parts []Part
	mr := multipart.NewReader(r.Body, params["boundary"])
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			return parts, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read part %d: %w", len(parts), err)
		}
		data, err := io.ReadAll(p)
		if err != nil {
			return nil, fmt.Errorf("read part %d: %w", len(parts), err)
		}
		parts = append(parts, Part{ContentRange: p.Header.Get("Content-Range"), Data: data})
	}
}

func escapePath(p string) string {
	segs := strings.Split(strings.TrimLeft(p, "/"), "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}
