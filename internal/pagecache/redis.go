package pagecache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const generationPrefix = "pagegen:"

func generationKey(path string) string {
	return generationPrefix + path
}

// setIfGeneration writes KEYS[2] only while KEYS[1] still holds ARGV[1].
// A missing generation counts as 0. ARGV[3] is the lifetime in
// milliseconds, 0 for none.
var setIfGeneration = redis.NewScript(`
local current = redis.call('GET', KEYS[1]) or '0'
if current ~= ARGV[1] then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
else
	redis.call('SET', KEYS[2], ARGV[2])
end
return 1
`)

// Redis is a Cache shared between processes through a Redis server
type Redis struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedis creates a Redis backed cache
func NewRedis(rdb *redis.Client, ttl time.Duration) *Redis {
	return &Redis{rdb: rdb, ttl: ttl}
}

// Get implements Cache
func (c *Redis) Get(ctx context.Context, path, identity string) ([]byte, bool, error) {
	b, err := c.rdb.Get(ctx, key(path, identity)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

// Generation implements Cache
func (c *Redis) Generation(ctx context.Context, path string) (uint64, error) {
	gen, err := c.rdb.Get(ctx, generationKey(path)).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// Set implements Cache
func (c *Redis) Set(ctx context.Context, path, identity string, gen uint64, body []byte) (bool, error) {
	keys := []string{generationKey(path), key(path, identity)}
	stored, err := setIfGeneration.Run(ctx, c.rdb, keys,
		strconv.FormatUint(gen, 10), body, c.ttl.Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return stored == 1, nil
}

// InvalidatePath implements Cache. The generation moves first so a fill
// racing with the scan cannot store a page behind it.
func (c *Redis) InvalidatePath(ctx context.Context, path string) error {
	if err := c.rdb.Incr(ctx, generationKey(path)).Err(); err != nil {
		return err
	}

	iter := c.rdb.Scan(ctx, 0, pathPrefix(path)+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
