package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

// RedisStore is a SnapshotStore backed by Redis, letting multiple desk
// processes share one snapshot namespace. Payloads are msgpack-encoded
// rather than JSON: this backend sits on the hot path for frequently
// rewritten keys (tariff index, funding regime) where encode/decode cost is
// paid on every ingest tick.
type RedisStore struct {
	client *redis.Client
	ctx    context.Context
}

// NewRedisStore wraps an already-configured redis.Client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, ctx: context.Background()}
}

func (r *RedisStore) Set(key string, value interface{}, ttl time.Duration) {
	data, err := msgpack.Marshal(value)
	if err != nil {
		return
	}
	r.client.Set(r.ctx, key, data, ttl)
}

func (r *RedisStore) Get(key string) (interface{}, bool) {
	data, err := r.client.Get(r.ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var v interface{}
	if err := msgpack.Unmarshal(data, &v); err != nil {
		return nil, false
	}
	return v, true
}

func (r *RedisStore) SetIfAbsent(key string, value interface{}, ttl time.Duration) bool {
	data, err := msgpack.Marshal(value)
	if err != nil {
		return false
	}
	ok, err := r.client.SetNX(r.ctx, key, data, ttl).Result()
	if err != nil {
		return false
	}
	return ok
}

func (r *RedisStore) Delete(key string) {
	r.client.Del(r.ctx, key)
}
