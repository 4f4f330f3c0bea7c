package kv

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const valkeyDialTimeout = 5 * time.Second

// ValkeyStore backs Store with a Valkey/Redis server. This is the backend
// for multi-instance deployments, where every server must agree on which
// OAuth state nonces are still live and which have been consumed.
type ValkeyStore struct {
	client *redis.Client
}

// ValkeyConfig is the connection surface exposed through REDIS_* env vars.
type ValkeyConfig struct {
	Addr     string // host:port
	Password string // optional
	DB       int    // database number
}

// NewValkeyStore connects and pings the server so a bad address fails at
// startup rather than on the first OAuth login.
func NewValkeyStore(cfg ValkeyConfig) (*ValkeyStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), valkeyDialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &ValkeyStore{client: client}, nil
}

func (s *ValkeyStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *ValkeyStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return val, nil
}

func (s *ValkeyStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

// SetNX is atomic on the server, so it is safe as a cross-instance
// consumed-marker even with concurrent callbacks for the same state.
func (s *ValkeyStore) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, key, value, ttl).Result()
}

func (s *ValkeyStore) Close() error {
	return s.client.Close()
}

var _ Store = (*ValkeyStore)(nil)
