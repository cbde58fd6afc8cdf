package download

import (
	"context"
	"fmt"
	"strings"

	"github.com/sir_venger/missionfiles/internal/byterange"
	"github.com/sir_venger/missionfiles/internal/models"
	"github.com/sir_venger/missionfiles/internal/rangestream"
)

// Prepare проверяет доступ, открывает файл и строит ответ по заголовку Range.
// При ошибке файл уже закрыт; при успехе им владеет возвращённый ответ.
func (s *Downloads) Prepare(ctx context.Context, req Request) (*rangestream.Response, error) {
	if err := s.authorize(ctx, req.SessionID); err != nil {
		return nil, err
	}

	f, err := s.Storage.Open(ctx, req.Path)
	if err != nil {
		return nil, err
	}
	h := s.track(f)

	var contentType string
	if req.Inline {
		contentType = detectContentType(h)
	}

	resp, err := s.respond(h, req)
	if err != nil {
		_ = h.Close()
		return nil, err
	}
	if req.Inline {
		resp.Inline(contentType)
	}

	s.Log.Debug().
		Str("path", req.Path).
		Str("range", req.Range).
		Str("kind", string(resp.Kind)).
		Int64("length", resp.Length).
		Msg("response prepared")

	return resp, nil
}

func (s *Downloads) respond(h rangestream.Handle, req Request) (*rangestream.Response, error) {
	if !req.HasRange {
		return s.Responder.Whole(h), nil
	}

	ivs, err := byterange.Parse(req.Range, h.Size())
	if err != nil {
		return nil, err
	}
	if len(ivs) == 1 {
		return s.Responder.Single(h, ivs[0]), nil
	}
	return s.Responder.Multipart(h, ivs), nil
}

// authorize пропускает всех в debug-режиме, иначе требует живую сессию пользователя.
func (s *Downloads) authorize(ctx context.Context, sessionID string) error {
	if s.Debug {
		return nil
	}
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("%w: no session", models.ErrForbidden)
	}
	if s.Sessions == nil {
		return fmt.Errorf("%w: no session resolver", models.ErrForbidden)
	}

	id, err := s.Sessions.Resolve(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("%w: %w", models.ErrForbidden, err)
	}

	s.Log.Debug().Int64("user_id", id.UserID).Str("username", id.Username).Msg("session resolved")
	return nil
}
