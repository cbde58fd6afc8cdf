package session

import (
	"context"
	"sync"
	"time"

	"github.com/sir_venger/missionfiles/internal/models"
)

type memorySession struct {
	identity models.Identity
	expires  time.Time
}

// MemoryStore хранит сессии только в оперативной памяти; удобно для тестов.
type MemoryStore struct {
	mu       sync.RWMutex
	now      func() time.Time
	sessions map[string]memorySession
}

// NewMemoryStore создаёт пустое in-memory хранилище.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now, sessions: map[string]memorySession{}}
}

// Put регистрирует сессию. UserID == 0 означает анонимную сессию.
func (s *MemoryStore) Put(id models.Identity, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id.SessionKey] = memorySession{identity: id, expires: s.now().Add(ttl)}
}

// Delete удаляет сессию (logout).
func (s *MemoryStore) Delete(sessionKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionKey)
}

func (s *MemoryStore) Resolve(_ context.Context, sessionKey string) (models.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ms, ok := s.sessions[sessionKey]
	if !ok || sessionKey == "" || !s.now().Before(ms.expires) {
		return models.Identity{}, models.ErrSessionNotFound
	}
	if ms.identity.UserID == 0 {
		return models.Identity{}, models.ErrAnonymousSession
	}
	return ms.identity, nil
}

var _ Resolver = (*MemoryStore)(nil)
