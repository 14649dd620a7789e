package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisPrefix  = "botanize:quota:"
	redisCommandTimeout = 500 * time.Millisecond
	// Keys outlive a day so a stale date stamp is still readable on the next visit.
	redisKeyTTL = 72 * time.Hour
)

// KEYS[1] count, KEYS[2] date; ARGV[1] today, ARGV[2] limit, ARGV[3] ttl seconds.
const redisConsumeScript = `
local count = 0
if redis.call("GET", KEYS[2]) == ARGV[1] then
  count = tonumber(redis.call("GET", KEYS[1])) or 0
  if count < 0 then
    count = 0
  end
  count = math.floor(count)
end
local accepted = 0
if count < tonumber(ARGV[2]) then
  count = count + 1
  accepted = 1
end
redis.call("SET", KEYS[1], count, "EX", ARGV[3])
redis.call("SET", KEYS[2], ARGV[1], "EX", ARGV[3])
return {count, accepted}
`

type redisCommander interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// RedisStore keeps quota values in Redis so several processes share one count.
// Consume runs as a server-side script, so concurrent answers from different
// hosts are counted exactly once.
type RedisStore struct {
	client redisCommander
	closer func() error
	prefix string
}

var (
	_ Backend = (*RedisStore)(nil)
	_ Counter = (*RedisStore)(nil)
)

// RedisOptions configures NewRedisStore.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// NewRedisStore connects to Redis. The connection is lazy; the first command dials.
func NewRedisStore(opts RedisOptions) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return newRedisStore(client, client.Close, opts.Prefix)
}

func newRedisStore(client redisCommander, closer func() error, prefix string) *RedisStore {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{client: client, closer: closer, prefix: prefix}
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, redisCommandTimeout)
	defer cancel()
	value, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %q: %w", key, err)
	}
	return value, true, nil
}

// Set implements Store.
func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	ctx, cancel := context.WithTimeout(ctx, redisCommandTimeout)
	defer cancel()
	if err := s.client.Set(ctx, s.prefix+key, value, redisKeyTTL).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

// Consume implements Counter.
func (s *RedisStore) Consume(ctx context.Context, req ConsumeRequest) (int, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, redisCommandTimeout)
	defer cancel()
	keys := []string{s.prefix + req.CountKey, s.prefix + req.DateKey}
	result, err := s.client.Eval(ctx, redisConsumeScript, keys,
		req.Today, req.Limit, int(redisKeyTTL.Seconds())).Int64Slice()
	if err != nil {
		return 0, false, fmt.Errorf("redis consume %q: %w", req.CountKey, err)
	}
	if len(result) != 2 {
		return 0, false, fmt.Errorf("redis consume %q: unexpected reply %v", req.CountKey, result)
	}
	return int(result[0]), result[1] == 1, nil
}

// Close releases the Redis connection pool.
func (s *RedisStore) Close() error {
	if s == nil || s.closer == nil {
		return nil
	}
	return s.closer()
}
