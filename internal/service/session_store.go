package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/eduportal-api/internal/models"
)

// Session is the server side record behind an issued token.
type Session struct {
	ID        string      `json:"id"`
	UserID    string      `json:"user_id"`
	Name      string      `json:"name"`
	Role      models.Role `json:"role"`
	IssuedAt  time.Time   `json:"issued_at"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// SessionStore persists open sessions until logout or expiry.
type SessionStore interface {
	Open(ctx context.Context, session Session) error
	Get(ctx context.Context, id string) (Session, error)
	Revoke(ctx context.Context, id string) error
}

type redisSessionStore struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// NewRedisSessionStore stores sessions in Redis under prefix.
func NewRedisSessionStore(client *redis.Client, prefix string) SessionStore {
	return &redisSessionStore{client: client, prefix: prefix + ":session:", now: time.Now}
}

func (s *redisSessionStore) Open(ctx context.Context, session Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	ttl := session.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return ErrSessionNotFound
	}
	return s.client.Set(ctx, s.prefix+session.ID, payload, ttl).Err()
}

func (s *redisSessionStore) Get(ctx context.Context, id string) (Session, error) {
	value, err := s.client.Get(ctx, s.prefix+id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Session{}, ErrSessionNotFound
		}
		return Session{}, err
	}

	var session Session
	if err := json.Unmarshal([]byte(value), &session); err != nil {
		return Session{}, ErrSessionNotFound
	}
	return session, nil
}

func (s *redisSessionStore) Revoke(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.prefix+id).Err()
}

type memorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	now      func() time.Time
}

// NewMemorySessionStore keeps sessions in process memory.
func NewMemorySessionStore() SessionStore {
	return &memorySessionStore{sessions: make(map[string]Session), now: time.Now}
}

func (s *memorySessionStore) Open(_ context.Context, session Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return nil
}

func (s *memorySessionStore) Get(_ context.Context, id string) (Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return Session{}, ErrSessionNotFound
	}
	if s.now().After(session.ExpiresAt) {
		_ = s.Revoke(context.Background(), id)
		return Session{}, ErrSessionNotFound
	}
	return session, nil
}

func (s *memorySessionStore) Revoke(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}
