package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

const (
	idempotencyLockPrefix   = "idemp:"
	idempotencyResultPrefix = "idemp:map:"
	defaultIdempotencyTTL   = 24 * time.Hour
)

const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

// IdempotencyStore remembers the outcome of a keyed request so a retry
// returns the first result instead of repeating the write.
type IdempotencyStore interface {
	// Reserve claims scope/key. ok is false when another request holds it.
	Reserve(ctx context.Context, scope, key string) (token string, ok bool, err error)
	Release(ctx context.Context, scope, key, token string) error
	Remember(ctx context.Context, scope, key, value string) error
	Recall(ctx context.Context, scope, key string) (string, bool, error)
}

func NewIdempotencyStore(client *redis.Client) IdempotencyStore {
	if client == nil {
		return NewMemoryIdempotencyStore()
	}
	return &redisIdempotencyStore{
		client: client,
		script: redis.NewScript(releaseScript),
		ttl:    defaultIdempotencyTTL,
	}
}

type redisIdempotencyStore struct {
	client *redis.Client
	script *redis.Script
	ttl    time.Duration
}

func (s *redisIdempotencyStore) Reserve(ctx context.Context, scope, key string) (string, bool, error) {
	token := uuid.NewString()
	ok, err := s.client.SetNX(ctx, idempotencyLockPrefix+scope+":"+key, token, s.ttl).Result()
	if err != nil {
		return "", false, err
	}
	return token, ok, nil
}

func (s *redisIdempotencyStore) Release(ctx context.Context, scope, key, token string) error {
	if token == "" {
		return nil
	}
	return s.script.Run(ctx, s.client, []string{idempotencyLockPrefix + scope + ":" + key}, token).Err()
}

func (s *redisIdempotencyStore) Remember(ctx context.Context, scope, key, value string) error {
	return s.client.Set(ctx, idempotencyResultPrefix+scope+":"+key, value, s.ttl).Err()
}

func (s *redisIdempotencyStore) Recall(ctx context.Context, scope, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, idempotencyResultPrefix+scope+":"+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

type memoryLock struct {
	token     string
	expiresAt time.Time
}

// memoryIdempotencyStore mirrors the redis store in process. Locks expire
// like the SETNX keys so an unreleased key cannot block forever.
type memoryIdempotencyStore struct {
	mu      sync.Mutex
	locks   map[string]memoryLock
	results Cache[string, string]
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryIdempotencyStore() IdempotencyStore {
	return &memoryIdempotencyStore{
		locks:   make(map[string]memoryLock),
		results: NewTTLCache[string, string](),
		ttl:     defaultIdempotencyTTL,
		now:     time.Now,
	}
}

func (s *memoryIdempotencyStore) Reserve(_ context.Context, scope, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, lock := range s.locks {
		if !now.Before(lock.expiresAt) {
			delete(s.locks, k)
		}
	}

	k := scope + ":" + key
	if _, held := s.locks[k]; held {
		return "", false, nil
	}
	token := uuid.NewString()
	s.locks[k] = memoryLock{token: token, expiresAt: now.Add(s.ttl)}
	return token, true, nil
}

func (s *memoryIdempotencyStore) Release(_ context.Context, scope, key, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := scope + ":" + key
	if lock, held := s.locks[k]; held && lock.token == token {
		delete(s.locks, k)
	}
	return nil
}

func (s *memoryIdempotencyStore) Remember(_ context.Context, scope, key, value string) error {
	s.results.Set(scope+":"+key, value, defaultIdempotencyTTL)
	return nil
}

func (s *memoryIdempotencyStore) Recall(_ context.Context, scope, key string) (string, bool, error) {
	value, ok := s.results.Get(scope + ":" + key)
	return value, ok, nil
}
