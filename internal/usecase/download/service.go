package download

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/sir_venger/missionfiles/internal/metrics"
	"github.com/sir_venger/missionfiles/internal/rangestream"
	"github.com/sir_venger/missionfiles/internal/repo/session"
	"github.com/sir_venger/missionfiles/internal/storage"
)

type (
	// Request содержит всё, что нужно от HTTP-запроса для выдачи файла.
	Request struct {
		Path      string
		SessionID string
		// Range учитывается только при HasRange.
		Range    string
		HasRange bool
		// Inline: отдача для встраивания (stream) вместо вложения (download).
		Inline bool
	}

	// Service готовит ответы на скачивание записей.
	Service interface {
		Prepare(ctx context.Context, req Request) (*rangestream.Response, error)
	}
)

type Deps struct {
	Storage   storage.Storage
	Sessions  session.Resolver
	Responder rangestream.Responder
	Metrics   *metrics.Metrics
	Log       zerolog.Logger
	// Debug отключает проверку сессии.
	Debug bool
}

type Downloads struct {
	Deps
}

// New конструирует сервис скачивания с заданными зависимостями.
func New(deps Deps) *Downloads {
	return &Downloads{Deps: deps}
}

var _ Service = (*Downloads)(nil)
