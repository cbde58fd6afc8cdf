package resthttp

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/sir_venger/missionfiles/internal/config"
	"github.com/sir_venger/missionfiles/internal/logging"
	"github.com/sir_venger/missionfiles/internal/metrics"
	"github.com/sir_venger/missionfiles/internal/rangestream"
	"github.com/sir_venger/missionfiles/internal/repo/session"
	"github.com/sir_venger/missionfiles/internal/storage"
	"github.com/sir_venger/missionfiles/internal/usecase/download"
)

const sessionParam = "sessionid"

type Server struct {
	Downloads download.Service
	Cfg       *config.Config
	Log       zerolog.Logger
	Metrics   *metrics.Metrics
	Gatherer  prometheus.Gatherer

	closers []func()
}

// NewServer собирает хранилище, сессии и сервис скачивания по конфигурации.
// Вне debug-режима сессии читаются из Postgres по session_dsn.
func NewServer(ctx context.Context, cfg *config.Config, log zerolog.Logger) (http.Handler, *Server, error) {
	if cfg.Debug {
		log.Warn().Msg("debug mode: session checks disabled")
		return NewServerWithSessions(ctx, cfg, log, nil)
	}

	pg, err := session.NewPGStore(ctx, cfg.SessionDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sessions: %w", err)
	}

	h, srv, err := NewServerWithSessions(ctx, cfg, log, pg)
	if err != nil {
		pg.Close()
		return nil, nil, err
	}
	srv.closers = append(srv.closers, pg.Close)
	return h, srv, nil
}

// NewServerWithSessions собирает сервер с заданным источником сессий (например, session.MemoryStore).
func NewServerWithSessions(ctx context.Context, cfg *config.Config, log zerolog.Logger, sessions session.Resolver) (http.Handler, *Server, error) {
	st, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return nil, nil, fmt.Errorf("storage: %w", err)
	}

	srv := &Server{Cfg: cfg, Log: log}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	srv.Metrics = metrics.New(reg)
	srv.Gatherer = reg

	srv.Downloads = download.New(download.Deps{
		Storage:   st,
		Sessions:  sessions,
		Responder: rangestream.Responder{ChunkSize: cfg.ChunkSize},
		Metrics:   srv.Metrics,
		Log:       logging.Component(log, "download"),
		Debug:     cfg.Debug,
	})

	return srv.Routes(), srv, nil
}

// Routes возвращает роутер сервиса.
func (s *Server) Routes() http.Handler {
	rtr := chi.NewRouter()
	rtr.Use(middleware.RequestID)
	rtr.Use(s.accessLog)
	rtr.Use(middleware.Recoverer)
	rtr.Use(frameGuard)

	rtr.Get("/file/download/*", s.getDownload)
	rtr.Get("/file/stream/*", s.getStream)
	rtr.Get("/health", s.health)
	if s.Gatherer != nil {
		rtr.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	}

	return rtr
}

// Close освобождает подключения к хранилищу сессий.
func (s *Server) Close() {
	for _, c := range s.closers {
		c()
	}
}
