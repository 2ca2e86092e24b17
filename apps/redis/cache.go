package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/getevo/evo/v2/lib/log"
)

// SchemaCacheTTL bounds how stale a cached schema view can get if an
// invalidation is lost.
const SchemaCacheTTL = 15 * time.Minute

// FetchJSON loads a cached JSON value into dest. Returns false on a miss,
// a decode failure or when Redis is unavailable; callers fall through to
// the database in all three cases.
func FetchJSON(key string, dest any) bool {
	if Client == nil {
		return false
	}

	opCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	payload, err := Client.Get(opCtx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		log.Warning("Dropping undecodable cache entry %s: %v", key, err)
		Client.Del(ctx, key)
		return false
	}
	return true
}

// CacheJSON stores a value as JSON with a TTL. Failures only cost a cache
// miss later, so they are logged and swallowed.
func CacheJSON(key string, value any, ttl time.Duration) {
	if Client == nil {
		return
	}

	payload, err := json.Marshal(value)
	if err != nil {
		log.Warning("Cache encode failed for %s: %v", key, err)
		return
	}

	opCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := Client.Set(opCtx, key, payload, ttl).Err(); err != nil {
		log.Debug("Cache write failed for %s: %v", key, err)
	}
}

// Invalidate removes cache entries. A no-op when Redis is unavailable.
func Invalidate(keys ...string) {
	if Client == nil || len(keys) == 0 {
		return
	}

	opCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := Client.Del(opCtx, keys...).Err(); err != nil {
		log.Debug("Cache invalidation failed for %v: %v", keys, err)
	}
}
