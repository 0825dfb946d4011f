package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// slidingWindowScript keeps one sorted set per key, scored by attempt time in
// microseconds. Trimming, counting and recording run inside a single script so
// the check and the increment are atomic on the Redis side.
//
// KEYS[1] = key
// ARGV[1] = now (unix micros), ARGV[2] = window (micros), ARGV[3] = limit, ARGV[4] = member
// Returns {admitted (0|1), count, oldest (unix micros)}
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
local admitted = 0
if count < limit then
	redis.call('ZADD', key, now, ARGV[4])
	count = count + 1
	admitted = 1
end
redis.call('PEXPIRE', key, math.ceil(window / 1000))

local oldest = now
local first = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
if first[2] then
	oldest = tonumber(first[2])
end
return {admitted, count, oldest}
`)

// RedisStore is a Store backed by Redis sorted sets
type RedisStore struct {
	client redis.Scripter
}

// NewRedisStore creates a RedisStore over client
func NewRedisStore(client redis.Scripter) *RedisStore {
	return &RedisStore{client: client}
}

// Hit implements Store with one script round trip
func (s *RedisStore) Hit(ctx context.Context, key string, limit int, window time.Duration, now time.Time) (Result, error) {
	nowMicros := now.UnixMicro()
	member := strconv.FormatInt(nowMicros, 10) + "-" + uuid.NewString()

	vals, err := slidingWindowScript.Run(ctx, s.client, []string{key},
		nowMicros, window.Microseconds(), limit, member,
	).Int64Slice()
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if len(vals) != 3 {
		return Result{}, fmt.Errorf("%w: unexpected script reply of %d values", ErrStoreUnavailable, len(vals))
	}

	return Result{
		Admitted: vals[0] == 1,
		Count:    int(vals[1]),
		Oldest:   time.UnixMicro(vals[2]),
	}, nil
}
