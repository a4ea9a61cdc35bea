package ephemeral

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/offlinefeed/internal/common"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const keyPrefix = "offlinefeed:session:"

// DefaultSessionTTL bounds how long an abandoned session's keys survive.
const DefaultSessionTTL = 12 * time.Hour

// Redis is a Store backed by a shared Redis instance. Every key is scoped to
// one session id, so a new session starts empty even though the server
// outlives the process.
type Redis struct {
	client  *redis.Client
	session string
	ttl     time.Duration
}

// NewRedis scopes client to a fresh random session.
func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Redis{client: client, session: uuid.NewString(), ttl: ttl}
}

// NewRedisFromURL parses a redis:// URL and pings the server.
func NewRedisFromURL(ctx context.Context, rawURL string, ttl time.Duration) (*Redis, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return NewRedis(client, ttl), nil
}

// Session returns the session id that scopes this store's keys.
func (r *Redis) Session() string { return r.session }

// Close closes the underlying client.
func (r *Redis) Close() error { return r.client.Close() }

func (r *Redis) prefix() string { return keyPrefix + r.session + ":" }

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, r.prefix()+key, value, r.ttl).Err()
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := r.client.Get(ctx, r.prefix()+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, common.ErrNotFound
	}
	return v, err
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.prefix()+key).Err()
}

// Keys scans rather than using KEYS so a large shared instance is not
// blocked.
func (r *Redis) Keys(ctx context.Context) ([]string, error) {
	full, err := r.scan(ctx)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(full))
	for _, k := range full {
		keys = append(keys, strings.TrimPrefix(k, r.prefix()))
	}
	sort.Strings(keys)
	return keys, nil
}

func (r *Redis) Size(ctx context.Context) (int64, error) {
	full, err := r.scan(ctx)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, k := range full {
		n, err := r.client.StrLen(ctx, k).Result()
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

func (r *Redis) Clear(ctx context.Context) error {
	full, err := r.scan(ctx)
	if err != nil || len(full) == 0 {
		return err
	}
	return r.client.Del(ctx, full...).Err()
}

func (r *Redis) scan(ctx context.Context) ([]string, error) {
	var (
		out    []string
		cursor uint64
	)
	for {
		keys, next, err := r.client.Scan(ctx, cursor, r.prefix()+"*", 100).Result()
		if err != nil {
			return nil, err
		}
		out = append(out, keys...)
		if next == 0 {
			return out, nil
		}
		cursor = next
	}
}
