package stats

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sluice-go/sluice/pkg/gate"
)

const (
	defaultRedisPrefix      = "sluice:stats"
	defaultRedisBucketTTL   = 24 * time.Hour
	defaultRedisDialTimeout = 5 * time.Second
)

// RedisConfig describes the connection for a RedisStore.
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	Prefix      string
	BucketTTL   time.Duration
	DialTimeout time.Duration
}

// RedisStore aggregates admission outcomes in Redis: a cumulative hash of
// totals plus per-minute buckets with a TTL, written through a pipeline.
// Useful when several sluice servers should report into one place; the
// gates themselves stay strictly per-process.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration

	closeOnce sync.Once
	closeErr  error
}

// NewRedisStore connects and verifies the server with a ping.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("stats: redis addr is required")
	}
	if cfg.Prefix == "" {
		cfg.Prefix = defaultRedisPrefix
	}
	if cfg.BucketTTL <= 0 {
		cfg.BucketTTL = defaultRedisBucketTTL
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = defaultRedisDialTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("stats: redis ping failed: %w", err)
	}

	return &RedisStore{
		client: client,
		prefix: cfg.Prefix,
		ttl:    cfg.BucketTTL,
	}, nil
}

func (s *RedisStore) Record(ctx context.Context, ev gate.Event) error {
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	field := string(ev.Kind)

	pipe := s.client.Pipeline()
	pipe.HIncrBy(ctx, s.prefix+":total", field, 1)

	bucketKey := fmt.Sprintf("%s:minute:%s", s.prefix, at.UTC().Format("200601021504"))
	pipe.HIncrBy(ctx, bucketKey, field, 1)
	pipe.Expire(ctx, bucketKey, s.ttl)

	if ev.MaxRequests > 0 {
		pipe.HIncrBy(ctx, s.prefix+":limit:"+limitKey(ev), field, 1)
	}

	_, err := pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("stats: recording to redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Totals(ctx context.Context) (Counters, error) {
	fields, err := s.client.HGetAll(ctx, s.prefix+":total").Result()
	if err != nil {
		return Counters{}, fmt.Errorf("stats: reading totals: %w", err)
	}

	var c Counters
	for field, raw := range fields {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Counters{}, fmt.Errorf("stats: parsing counter %q: %w", field, err)
		}
		switch gate.EventKind(field) {
		case gate.EventAdmitted:
			c.Admitted = n
		case gate.EventDelayed:
			c.Delayed = n
		case gate.EventRejected:
			c.Rejected = n
		}
	}
	return c, nil
}

// Close releases the Redis connection. Idempotent.
func (s *RedisStore) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.client.Close()
	})
	return s.closeErr
}

var _ Store = (*RedisStore)(nil)
