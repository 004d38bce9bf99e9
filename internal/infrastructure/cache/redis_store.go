package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	CacheVersion = "v1"

	assistantKey  = "framelink:support:" + CacheVersion + ":assistant_id"
	assistantLock = "framelink:support:" + CacheVersion + ":assistant_lock"
	lockTTL       = 30 * time.Second
)

var compareAndDelete = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// AssistantStore shares the assistant id between replicas through Redis.
type AssistantStore struct {
	client redis.UniversalClient
	rs     *redsync.Redsync
	log    zerolog.Logger
}

// NewAssistantStore connects to redisURL, which may list several comma separated addresses.
func NewAssistantStore(ctx context.Context, redisURL string, log zerolog.Logger) (*AssistantStore, error) {
	if redisURL == "" {
		return nil, fmt.Errorf("Redis URL must be provided")
	}

	opts, err := buildUniversalOptions(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	logger := log.With().Str("component", "assistant-store").Logger()
	if len(opts.Addrs) > 1 && opts.DB != 0 {
		logger.Warn().Msg("Ignoring non-zero DB when using Redis Cluster configuration")
		opts.DB = 0
	}

	client := redis.NewUniversalClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info().Msg("connected to Redis for assistant handle")
	return &AssistantStore{
		client: client,
		rs:     redsync.New(goredis.NewPool(client)),
		log:    logger,
	}, nil
}

func buildUniversalOptions(raw string) (*redis.UniversalOptions, error) {
	opts := &redis.UniversalOptions{}

	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !strings.Contains(part, "://") {
			opts.Addrs = append(opts.Addrs, part)
			continue
		}

		parsed, err := redis.ParseURL(part)
		if err != nil {
			return nil, err
		}
		opts.Addrs = append(opts.Addrs, parsed.Addr)
		if opts.Username == "" {
			opts.Username = parsed.Username
		}
		if opts.Password == "" {
			opts.Password = parsed.Password
		}
		if opts.DB == 0 {
			opts.DB = parsed.DB
		}
		if opts.TLSConfig == nil {
			opts.TLSConfig = parsed.TLSConfig
		}
	}

	if len(opts.Addrs) == 0 {
		return nil, fmt.Errorf("no Redis addresses provided")
	}
	return opts, nil
}

func (s *AssistantStore) Get(ctx context.Context) (string, error) {
	val, err := s.client.Get(ctx, assistantKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get assistant id: %w", err)
	}
	return val, nil
}

func (s *AssistantStore) Set(ctx context.Context, id string) error {
	return s.client.Set(ctx, assistantKey, id, 0).Err()
}

func (s *AssistantStore) CompareAndClear(ctx context.Context, id string) error {
	return compareAndDelete.Run(ctx, s.client, []string{assistantKey}, id).Err()
}

// WithLock runs fn while holding the cluster-wide creation lock.
func (s *AssistantStore) WithLock(ctx context.Context, fn func(ctx context.Context) error) error {
	mutex := s.rs.NewMutex(assistantLock, redsync.WithExpiry(lockTTL))
	if err := mutex.LockContext(ctx); err != nil {
		return fmt.Errorf("acquire assistant lock: %w", err)
	}
	defer func() {
		if _, err := mutex.UnlockContext(context.WithoutCancel(ctx)); err != nil {
			s.log.Error().Err(err).Msg("Failed to unlock mutex")
		}
	}()
	return fn(ctx)
}

func (s *AssistantStore) HealthCheck(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *AssistantStore) Close() error {
	return s.client.Close()
}
