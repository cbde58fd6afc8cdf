package resthttp

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"

	"github.com/sir_venger/missionfiles/internal/rangestream"
	"github.com/sir_venger/missionfiles/internal/usecase/download"
	"github.com/sir_venger/missionfiles/pkg/httperrors"
)

const errorKind = "error"

// getDownload отдаёт файл как вложение.
func (s *Server) getDownload(w http.ResponseWriter, r *http.Request) {
	s.serveFile(w, r, false)
}

// getStream отдаёт файл для встраивания в страницу (видео, картинки в плеере миссии).
func (s *Server) getStream(w http.ResponseWriter, r *http.Request) {
	allowFraming(w)
	s.serveFile(w, r, true)
}

func (s *Server) serveFile(w http.ResponseWriter, r *http.Request, inline bool) {
	req := download.Request{
		Path:      chi.URLParam(r, "*"),
		SessionID: sessionID(r),
		Inline:    inline,
	}
	if vals, ok := r.Header["Range"]; ok && len(vals) > 0 {
		req.Range = vals[0]
		req.HasRange = true
	}

	resp, err := s.Downloads.Prepare(r.Context(), req)
	if err != nil {
		status := httperrors.Write(w, err)
		s.Metrics.ObserveResponse(errorKind, status, 0)

		ev := s.Log.Info()
		if status >= http.StatusInternalServerError {
			ev = s.Log.Error()
		}
		ev.Err(err).Str("path", req.Path).Str("range", req.Range).Int("status", status).Msg("file request rejected")
		return
	}

	limiter := s.limiter()
	sent, err := resp.Send(r.Context(), w, limiter)
	s.Metrics.ObserveResponse(string(resp.Kind), resp.Status, sent)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			s.Log.Debug().Str("path", req.Path).Int64("sent", sent).Msg("client went away")
			return
		}
		s.Log.Error().Err(err).Str("path", req.Path).Int64("sent", sent).Int64("length", resp.Length).Msg("stream aborted")
	}
}

// limiter ограничивает скорость одной отдачи, nil означает без ограничения.
func (s *Server) limiter() *rate.Limiter {
	if s.Cfg == nil {
		return nil
	}
	return rangestream.NewLimiter(s.Cfg.MaxBytesPerSecond, s.Cfg.ChunkSize)
}

// sessionID берётся из query-параметра sessionid, иначе из одноимённой cookie.
func sessionID(r *http.Request) string {
	if v := r.URL.Query().Get(sessionParam); v != "" {
		return v
	}
	if c, err := r.Cookie(sessionParam); err == nil {
		return c.Value
	}
	return ""
}
