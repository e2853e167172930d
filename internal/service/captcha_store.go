package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// CaptchaStore keeps expected answers for issued challenges. Take removes the challenge so each
// one can be answered at most once.
type CaptchaStore interface {
	Save(ctx context.Context, id string, expected int, ttl time.Duration) error
	Take(ctx context.Context, id string) (int, bool, error)
}

type redisCaptchaStore struct {
	client *redis.Client
	prefix string
}

// NewRedisCaptchaStore stores challenges in Redis under prefix.
func NewRedisCaptchaStore(client *redis.Client, prefix string) CaptchaStore {
	return &redisCaptchaStore{client: client, prefix: prefix + ":captcha:"}
}

func (s *redisCaptchaStore) Save(ctx context.Context, id string, expected int, ttl time.Duration) error {
	return s.client.Set(ctx, s.prefix+id, strconv.Itoa(expected), ttl).Err()
}

func (s *redisCaptchaStore) Take(ctx context.Context, id string) (int, bool, error) {
	value, err := s.client.GetDel(ctx, s.prefix+id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, err
	}

	expected, err := strconv.Atoi(value)
	if err != nil {
		return 0, false, nil
	}
	return expected, true, nil
}

type memoryCaptchaStore struct {
	mu      sync.Mutex
	entries map[string]captchaEntry
	now     func() time.Time
}

type captchaEntry struct {
	expected  int
	expiresAt time.Time
}

// NewMemoryCaptchaStore keeps challenges in process memory. Used when Redis is not configured.
func NewMemoryCaptchaStore() CaptchaStore {
	return &memoryCaptchaStore{entries: make(map[string]captchaEntry), now: time.Now}
}

func (s *memoryCaptchaStore) Save(_ context.Context, id string, expected int, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, key)
		}
	}
	s.entries[id] = captchaEntry{expected: expected, expiresAt: now.Add(ttl)}
	return nil
}

func (s *memoryCaptchaStore) Take(_ context.Context, id string) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		return 0, false, nil
	}
	delete(s.entries, id)

	if s.now().After(entry.expiresAt) {
		return 0, false, nil
	}
	return entry.expected, true, nil
}
