package redis

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/LavaJover/festival-order-service/internal/config"
	"github.com/LavaJover/festival-order-service/internal/domain"
)

const leasePrefix = "festival:lease:"

// releaseScript deletes the key only while it still holds our token, so an
// expired lease taken over by another replica is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func NewClient(cfg config.RedisService) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func Ping(ctx context.Context, rdb *redis.Client) error {
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

type RedisPassLease struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisPassLease(rdb *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisPassLease {
	return &RedisPassLease{rdb: rdb, ttl: ttl, logger: logger}
}

func (l *RedisPassLease) TryAcquire(ctx context.Context, name string) (func(), bool, error) {
	key := leasePrefix + name
	token := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil || !ok {
		return func() {}, false, err
	}
	release := func() {
		// the caller's ctx may already be cancelled at shutdown
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(rctx, l.rdb, []string{key}, token).Err(); err != nil {
			l.logger.Warn("failed to release lease", "lease", name, "error", err)
		}
	}
	return release, true, nil
}

// LocalPassLease serializes passes inside one process when redis is not
// configured.
type LocalPassLease struct {
	mu   sync.Mutex
	held map[string]bool
}

func NewLocalPassLease() *LocalPassLease {
	return &LocalPassLease{held: make(map[string]bool)}
}

func (l *LocalPassLease) TryAcquire(_ context.Context, name string) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[name] {
		return func() {}, false, nil
	}
	l.held[name] = true
	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, name)
			l.mu.Unlock()
		})
	}, true, nil
}

var (
	_ domain.PassLease = (*RedisPassLease)(nil)
	_ domain.PassLease = (*LocalPassLease)(nil)
)
