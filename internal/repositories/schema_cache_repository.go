package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// SchemaCacheRepository caches generated schema text in Redis, keyed by the
// fingerprint of the graph it was generated from.
type SchemaCacheRepository struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewSchemaCacheRepository(rdb redis.Cmdable, ttl time.Duration) *SchemaCacheRepository {
	return &SchemaCacheRepository{rdb: rdb, ttl: ttl}
}

func schemaKey(fingerprint string) string {
	return "schema:" + fingerprint
}

// Get returns the cached schema text. ok is false on a cache miss.
func (r *SchemaCacheRepository) Get(ctx context.Context, fingerprint string) (code string, ok bool, err error) {
	code, err = r.rdb.Get(ctx, schemaKey(fingerprint)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return code, true, nil
}

func (r *SchemaCacheRepository) Set(ctx context.Context, fingerprint, code string) error {
	return r.rdb.Set(ctx, schemaKey(fingerprint), code, r.ttl).Err()
}

func (r *SchemaCacheRepository) Delete(ctx context.Context, fingerprint string) error {
	return r.rdb.Del(ctx, schemaKey(fingerprint)).Err()
}
