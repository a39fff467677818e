// Package distributed implements cache.Provider on top of Redis, for
// sharing cached state across multiple codelens processes.
package distributed

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/codelens-dev/codelens/internal/cache"
)

// Config controls the Redis connection.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// Store is a cache.Provider backed by a Redis client. Keys are prefixed
// "cache:<namespace>:<key>" so a namespace clear can SCAN+DEL just its own
// slice of the keyspace without touching anything else sharing the
// instance.
type Store struct {
	client *redis.Client
}

// New connects to Redis and verifies reachability with a PING.
func New(ctx context.Context, cfg Config) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Addr, err)
	}

	return &Store{client: client}, nil
}

func keyFor(ns cache.Namespace, key string) string {
	return fmt.Sprintf("cache:%s:%s", ns, key)
}

func (s *Store) Get(ctx context.Context, ns cache.Namespace, key string) ([]byte, bool, error) {
	raw, err := s.client.Get(ctx, keyFor(ns, key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	return raw, true, nil
}

func (s *Store) Set(ctx context.Context, ns cache.Namespace, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, keyFor(ns, key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, ns cache.Namespace, key string) error {
	if err := s.client.Del(ctx, keyFor(ns, key)).Err(); err != nil {
		return fmt.Errorf("redis delete: %w", err)
	}
	return nil
}

// ClearNamespace scans for all keys under ns and deletes them in batches,
// since Redis has no native "delete by prefix" and KEYS would block the
// server on a large keyspace.
func (s *Store) ClearNamespace(ctx context.Context, ns cache.Namespace) error {
	pattern := keyFor(ns, "*")
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, 500).Result()
		if err != nil {
			return fmt.Errorf("redis scan: %w", err)
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis delete batch: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// Stats returns best-effort counters for ns. Redis's own INFO command
// reports hits and misses server-wide rather than per key prefix, so those
// two fields reflect the whole shared keyspace; TotalEntries is the one
// number Stats can scope to ns, via a key-count SCAN.
func (s *Store) Stats(ctx context.Context, ns cache.Namespace) (cache.Stats, error) {
	info, err := s.client.Info(ctx, "stats").Result()
	if err != nil {
		return cache.Stats{}, fmt.Errorf("redis info: %w", err)
	}
	hits, misses := parseHitsAndMisses(info)

	var total int64
	var cursor uint64
	pattern := keyFor(ns, "*")
	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, 500).Result()
		if err != nil {
			return cache.Stats{}, fmt.Errorf("redis scan: %w", err)
		}
		total += int64(len(keys))
		cursor = next
		if cursor == 0 {
			break
		}
	}

	var hitRatio float64
	if sum := hits + misses; sum > 0 {
		hitRatio = float64(hits) / float64(sum)
	}
	return cache.Stats{TotalEntries: total, Hits: hits, Misses: misses, HitRatio: hitRatio}, nil
}

func (s *Store) HealthCheck(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func parseHitsAndMisses(info string) (hits, misses int64) {
	for _, line := range strings.Split(info, "\n") {
		line = strings.TrimSuffix(line, "\r")
		switch {
		case strings.HasPrefix(line, "keyspace_hits:"):
			hits, _ = strconv.ParseInt(strings.TrimPrefix(line, "keyspace_hits:"), 10, 64)
		case strings.HasPrefix(line, "keyspace_misses:"):
			misses, _ = strconv.ParseInt(strings.TrimPrefix(line, "keyspace_misses:"), 10, 64)
		}
	}
	return hits, misses
}
