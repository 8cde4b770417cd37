package plancache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configures the Redis plan cache.
type RedisConfig struct {
	Address  string
	Password string
	Database int

	// Prefix is prepended to every plan key.
	Prefix string

	// Timeout bounds each Redis call.
	Timeout time.Duration
}

// Redis stores plans in Redis so any server instance can execute them.
type Redis struct {
	cfg    RedisConfig
	client *redis.Client
}

// NewRedis connects to Redis and verifies the connection.
func NewRedis(ctx context.Context, cfg RedisConfig) (*Redis, error) {
	if cfg.Prefix == "" {
		cfg.Prefix = "virex:plans:"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.Database,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &Redis{cfg: cfg, client: client}, nil
}

func (r *Redis) key(id string) string {
	return r.cfg.Prefix + id
}

// Put stores plan with an expiry.
func (r *Redis) Put(ctx context.Context, id string, plan []byte, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	if ttl < 0 {
		ttl = 0
	}
	if err := r.client.Set(ctx, r.key(id), plan, ttl).Err(); err != nil {
		return fmt.Errorf("store plan %s: %w", id, err)
	}
	return nil
}

// Get loads a plan.
func (r *Redis) Get(ctx context.Context, id string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load plan %s: %w", id, err)
	}
	return data, nil
}

// Delete removes a plan.
func (r *Redis) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()
	return r.client.Del(ctx, r.key(id)).Err()
}

// Close releases the Redis connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}
