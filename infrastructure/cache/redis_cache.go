package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"job-board/infrastructure/logger"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const DefaultURL = "redis://localhost:6379"

var (
	ErrClosed  = errors.New("cache: adapter closed")
	ErrBackoff = errors.New("cache: waiting before next connect attempt")
)

// Observer receives one call per cache operation. result is one of
// hit, miss, ok or error.
type Observer interface {
	ObserveCacheOperation(operation, result string, elapsed time.Duration)
}

type Options struct {
	URL            string
	ConnectTimeout time.Duration
	OpTimeout      time.Duration
	RetryBackoff   time.Duration
	ScanCount      int64
}

func (o Options) withDefaults() Options {
	if o.URL == "" {
		o.URL = DefaultURL
	}
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = 10 * time.Second
	}
	if o.OpTimeout <= 0 {
		o.OpTimeout = time.Second
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 5 * time.Second
	}
	if o.ScanCount <= 0 {
		o.ScanCount = 100
	}
	return o
}

// RedisCache is a lazily connected, best-effort key-value cache. The first
// operation dials Redis; concurrent callers share that single attempt.
type RedisCache struct {
	opts     Options
	observer Observer
	now      func() time.Time

	mu          sync.RWMutex
	client      *redis.Client
	lastFailure time.Time
	closed      bool

	connecting singleflight.Group
}

func NewRedisCache(opts Options, observer Observer) *RedisCache {
	return &RedisCache{
		opts:     opts.withDefaults(),
		observer: observer,
		now:      time.Now,
	}
}

// ParseAddress accepts either host:port or a redis:// / rediss:// URL.
func ParseAddress(addr string) (*redis.Options, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		addr = DefaultURL
	}
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		return redis.ParseURL(addr)
	}
	return &redis.Options{Addr: addr}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, c.opts.OpTimeout)
	defer cancel()

	client, err := c.conn(ctx)
	if err != nil {
		c.fail("get", key, err, start)
		return nil, false
	}
	val, err := client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.observe("get", "miss", start)
		return nil, false
	}
	if err != nil {
		c.fail("get", key, err, start)
		return nil, false
	}
	c.observe("get", "hit", start)
	return val, true
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) bool {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, c.opts.OpTimeout)
	defer cancel()

	client, err := c.conn(ctx)
	if err != nil {
		c.fail("set", key, err, start)
		return false
	}
	if err := client.Set(ctx, key, value, ttl).Err(); err != nil {
		c.fail("set", key, err, start)
		return false
	}
	c.observe("set", "ok", start)
	return true
}

func (c *RedisCache) Delete(ctx context.Context, keys ...string) bool {
	if len(keys) == 0 {
		return true
	}
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, c.opts.OpTimeout)
	defer cancel()

	client, err := c.conn(ctx)
	if err != nil {
		c.fail("delete", strings.Join(keys, ","), err, start)
		return false
	}
	if err := client.Del(ctx, keys...).Err(); err != nil {
		c.fail("delete", strings.Join(keys, ","), err, start)
		return false
	}
	c.observe("delete", "ok", start)
	return true
}

// DeletePattern collects the keys matching pattern with SCAN MATCH, then
// deletes them in batches of ScanCount. OpTimeout bounds every round trip;
// ctx bounds the whole walk. It returns the number of keys removed.
func (c *RedisCache) DeletePattern(ctx context.Context, pattern string) (int64, bool) {
	start := time.Now()
	dialCtx, cancel := context.WithTimeout(ctx, c.opts.OpTimeout)
	client, err := c.conn(dialCtx)
	cancel()
	if err != nil {
		c.fail("delete_pattern", pattern, err, start)
		return 0, false
	}

	var (
		matched []string
		cursor  uint64
	)
	for {
		var keys []string
		err := c.roundTrip(ctx, func(ctx context.Context) error {
			var err error
			keys, cursor, err = client.Scan(ctx, cursor, pattern, c.opts.ScanCount).Result()
			return err
		})
		if err != nil {
			c.fail("delete_pattern", pattern, err, start)
			return 0, false
		}
		matched = append(matched, keys...)
		if cursor == 0 {
			break
		}
	}

	var deleted int64
	for len(matched) > 0 {
		n := min(int64(len(matched)), c.opts.ScanCount)
		batch := matched[:n]
		matched = matched[n:]
		err := c.roundTrip(ctx, func(ctx context.Context) error {
			n, err := client.Del(ctx, batch...).Result()
			deleted += n
			return err
		})
		if err != nil {
			c.fail("delete_pattern", pattern, err, start)
			return deleted, false
		}
	}
	c.observe("delete_pattern", "ok", start)
	return deleted, true
}

func (c *RedisCache) roundTrip(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, c.opts.OpTimeout)
	defer cancel()
	return fn(ctx)
}

func (c *RedisCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.client == nil {
		return nil
	}
	err := c.client.Close()
	c.client = nil
	return err
}

func (c *RedisCache) conn(ctx context.Context) (*redis.Client, error) {
	c.mu.RLock()
	client, closed, lastFailure := c.client, c.closed, c.lastFailure
	c.mu.RUnlock()

	if closed {
		return nil, ErrClosed
	}
	if client != nil {
		return client, nil
	}
	if !lastFailure.IsZero() && c.now().Sub(lastFailure) < c.opts.RetryBackoff {
		return nil, ErrBackoff
	}

	// The dial runs detached from ctx so a short operation timeout does not
	// abort a connect that other callers are waiting on.
	ch := c.connecting.DoChan("connect", func() (interface{}, error) {
		return c.connect()
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*redis.Client), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *RedisCache) connect() (*redis.Client, error) {
	c.mu.RLock()
	if c.client != nil {
		client := c.client
		c.mu.RUnlock()
		return client, nil
	}
	c.mu.RUnlock()

	opt, err := ParseAddress(c.opts.URL)
	if err != nil {
		c.markFailure()
		return nil, fmt.Errorf("parse redis address: %w", err)
	}
	opt.DialTimeout = c.opts.ConnectTimeout

	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), c.opts.ConnectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		c.markFailure()
		return nil, fmt.Errorf("connect redis %s: %w", opt.Addr, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		_ = client.Close()
		return nil, ErrClosed
	}
	c.client = client
	c.lastFailure = time.Time{}
	logger.GetLogger().WithField("addr", opt.Addr).Info("Redis connected")
	return client, nil
}

func (c *RedisCache) markFailure() {
	c.mu.Lock()
	c.lastFailure = c.now()
	c.mu.Unlock()
}

func (c *RedisCache) fail(operation, key string, err error, start time.Time) {
	logger.GetLogger().WithFields(map[string]interface{}{
		"operation": operation,
		"key":       key,
		"error":     err,
	}).Warn("Cache operation failed, treating as miss")
	c.observe(operation, "error", start)
}

func (c *RedisCache) observe(operation, result string, start time.Time) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveCacheOperation(operation, result, time.Since(start))
}
