package sessions

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mmdatafocus/shop_backend/config"
	"github.com/redis/go-redis/v9"
)

var ErrSessionNotFound = errors.New("session not found")

const keyPrefix = "Session:"

type Store interface {
	Load(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, sess *Session) error
	Destroy(ctx context.Context, id string) error
}

// Lifespan is read from SESSION_LIFESPAN_HOURS, two weeks by default.
func Lifespan() time.Duration {
	return time.Duration(config.IntFromEnv("SESSION_LIFESPAN_HOURS", 336)) * time.Hour
}

type RedisStore struct {
	client   *redis.Client
	lifespan time.Duration
}

func NewRedisStore(client *redis.Client, lifespan time.Duration) *RedisStore {
	return &RedisStore{client: client, lifespan: lifespan}
}

func (r *RedisStore) Load(ctx context.Context, id string) (*Session, error) {
	data, err := r.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	} else if err != nil {
		return nil, err
	}
	return decode(id, data)
}

func (r *RedisStore) Save(ctx context.Context, sess *Session) error {
	data, err := sess.encode()
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, keyPrefix+sess.ID, data, r.lifespan).Err(); err != nil {
		return err
	}
	sess.saved()
	return nil
}

func (r *RedisStore) Destroy(ctx context.Context, id string) error {
	return r.client.Del(ctx, keyPrefix+id).Err()
}

type memoryEntry struct {
	data    []byte
	expires time.Time
}

// MemoryStore keeps sessions in process memory; sessions do not survive a restart.
type MemoryStore struct {
	mu       sync.Mutex
	entries  map[string]memoryEntry
	lifespan time.Duration
}

func NewMemoryStore(lifespan time.Duration) *MemoryStore {
	return &MemoryStore{entries: map[string]memoryEntry{}, lifespan: lifespan}
}

func (m *MemoryStore) Load(ctx context.Context, id string) (*Session, error) {
	m.mu.Lock()
	entry, ok := m.entries[id]
	if ok && time.Now().After(entry.expires) {
		delete(m.entries, id)
		ok = false
	}
	m.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return decode(id, entry.data)
}

func (m *MemoryStore) Save(ctx context.Context, sess *Session) error {
	data, err := sess.encode()
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.entries[sess.ID] = memoryEntry{data: data, expires: time.Now().Add(m.lifespan)}
	m.mu.Unlock()
	sess.saved()
	return nil
}

func (m *MemoryStore) Destroy(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}

// DefaultStore uses Redis once it is connected and process memory until then.
type DefaultStore struct {
	memory *MemoryStore
}

func NewStore() *DefaultStore {
	return &DefaultStore{memory: NewMemoryStore(Lifespan())}
}

func (d *DefaultStore) current() Store {
	if client := config.GetRedisDB(); client != nil {
		return NewRedisStore(client, Lifespan())
	}
	return d.memory
}

func (d *DefaultStore) Load(ctx context.Context, id string) (*Session, error) {
	return d.current().Load(ctx, id)
}

func (d *DefaultStore) Save(ctx context.Context, sess *Session) error {
	return d.current().Save(ctx, sess)
}

func (d *DefaultStore) Destroy(ctx context.Context, id string) error {
	return d.current().Destroy(ctx, id)
}
