package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Cache keys. Site stats and the keyword ranking are the hot read paths;
// both are cheap to rebuild so TTLs stay short.
const (
	SiteStatsKey         = "stats:site"
	PopularKeywordsKey   = "search:popular:%d"
	UserProfileKeyPrefix = "profile:%s"
)

const (
	SiteStatsTTL       = 1 * time.Minute
	PopularKeywordsTTL = 5 * time.Minute
	UserProfileTTL     = 5 * time.Minute
)

func PopularKeywordsKeyFor(limit int) string {
	return fmt.Sprintf(PopularKeywordsKey, limit)
}

func UserProfileKey(username string) string {
	return fmt.Sprintf(UserProfileKeyPrefix, username)
}

// GetJSON loads key into dest. Returns false on miss, unmarshal failure or
// when no Redis is configured; the caller then rebuilds from the database.
func GetJSON(ctx context.Context, key string, dest any) bool {
	if client == nil {
		return false
	}
	payload, err := client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(payload, dest) == nil
}

// SetJSON stores value under key with a TTL. Failures are swallowed; the
// cache is an optimization, never a source of truth.
func SetJSON(ctx context.Context, key string, value any, ttl time.Duration) {
	if client == nil {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	client.Set(ctx, key, payload, ttl)
}

// Invalidate removes the given keys.
func Invalidate(ctx context.Context, keys ...string) {
	if client == nil || len(keys) == 0 {
		return
	}
	client.Del(ctx, keys...)
}

// InvalidateProfile drops the cached public profile for a username.
func InvalidateProfile(ctx context.Context, username string) {
	Invalidate(ctx, UserProfileKey(username))
}
