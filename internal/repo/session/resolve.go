package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/sir_venger/missionfiles/internal/models"
)

// Resolve ищет живую сессию по ключу; просроченные сессии считаются отсутствующими.
func (s *PGStore) Resolve(ctx context.Context, sessionKey string) (models.Identity, error) {
	if strings.TrimSpace(sessionKey) == "" {
		return models.Identity{}, models.ErrSessionNotFound
	}

	sqlStr, args, err := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Select("user_id", "COALESCE(username, '')").
		From(sessionsTable).
		Where(sq.Eq{"session_key": sessionKey}).
		Where("expire_date > now()").
		Limit(1).
		ToSql()
	if err != nil {
		return models.Identity{}, fmt.Errorf("build select: %w", err)
	}

	var (
		userID   *int64
		username string
	)
	if err = s.pool.QueryRow(ctx, sqlStr, args...).Scan(&userID, &username); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Identity{}, models.ErrSessionNotFound
		}
		return models.Identity{}, fmt.Errorf("scan session row: %w", err)
	}
	if userID == nil {
		return models.Identity{}, models.ErrAnonymousSession
	}

	return models.Identity{SessionKey: sessionKey, UserID: *userID, Username: username}, nil
}

var _ Resolver = (*PGStore)(nil)
