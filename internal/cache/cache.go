// Package cache stores rendered surfaces keyed by input content and writer
// configuration, so unchanged assemblies are not re-emitted across builds.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/surfacegen/genapi/internal/codegen"
	genapierrors "github.com/surfacegen/genapi/internal/errors"
)

// DefaultTTL bounds how long a rendered surface is kept
const DefaultTTL = 7 * 24 * time.Hour

// DefaultPrefix namespaces genapi keys in a shared Redis
const DefaultPrefix = "genapi:surface:"

// ErrMiss is returned by Get when no entry exists for a key
var ErrMiss = errors.New("cache miss")

// Entry is one cached emission
type Entry struct {
	Surface     string                     `json:"surface"`
	Summary     codegen.Summary            `json:"summary"`
	Version     string                     `json:"version,omitempty"`
	Diagnostics genapierrors.DiagnosticList `json:"diagnostics,omitempty"`
}

// Cache stores entries
type Cache interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Set(ctx context.Context, key string, entry *Entry) error
}

// Key derives a cache key from the input hash and every setting that
// affects the output. parts must be stable across runs.
func Key(inputHash string, parts ...any) (string, error) {
	settings, err := json.Marshal(parts)
	if err != nil {
		return "", fmt.Errorf("failed to encode cache key: %w", err)
	}
	h := sha256.New()
	h.Write([]byte(inputHash))
	h.Write([]byte{0})
	h.Write(settings)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	// Addr is the Redis server address (host:port)
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

// RedisCache implements Cache on Redis
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache connects to Redis and verifies the connection
func NewRedisCache(ctx context.Context, cfg RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	return NewRedisCacheWithClient(client, cfg.Prefix, cfg.TTL), nil
}

// NewRedisCacheWithClient wraps an existing client
func NewRedisCacheWithClient(client *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{client: client, prefix: prefix, ttl: ttl}
}

// Get implements Cache
func (c *RedisCache) Get(ctx context.Context, key string) (*Entry, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("corrupt cache entry %s: %w", key, err)
	}
	return &entry, nil
}

// Set implements Cache
func (c *RedisCache) Set(ctx context.Context, key string, entry *Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}
	return c.client.Set(ctx, c.prefix+key, data, c.ttl).Err()
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}
