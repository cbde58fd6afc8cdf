// Package session проверяет сессионные ключи пользователей, которым разрешено скачивать записи.
package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sir_venger/missionfiles/internal/models"
)

// Resolver превращает ключ сессии в пользователя.
type Resolver interface {
	Resolve(ctx context.Context, sessionKey string) (models.Identity, error)
}

const (
	sessionsTable = "sessions"
	memoryDSN     = "memory://"
)

// PGStore читает сессии из Postgres.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore создаёт пул подключений к Postgres.
func NewPGStore(ctx context.Context, dsn string) (*PGStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("session dsn is empty")
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}

	return &PGStore{pool: pool}, nil
}

// Close освобождает подключения пула.
func (s *PGStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// IsMemoryDSN сообщает, что вместо Postgres нужно in-memory хранилище.
func IsMemoryDSN(dsn string) bool {
	return strings.HasPrefix(strings.TrimSpace(dsn), memoryDSN)
}
