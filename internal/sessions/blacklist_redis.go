package sessions

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// package-level Redis client used for the session-credential blacklist (optional)
var blacklistClient *redis.Client

// SetBlacklistClient configures the Redis client used for blacklist operations.
// Safe to call with nil to disable blacklist features.
func SetBlacklistClient(c *redis.Client) {
	blacklistClient = c
}

// BlacklistAccessToken stores the given session credential in the Redis
// blacklist for its remaining validity window. Logout revokes a credential
// before its exp claim would; validation consults this list first.
// If no Redis client is configured, this is a no-op and returns nil.
func BlacklistAccessToken(ctx context.Context, token string, ttl time.Duration) error {
	if blacklistClient == nil {
		return nil
	}
	key := "blacklist:session:" + token
	return blacklistClient.Set(ctx, key, "1", ttl).Err()
}

// IsAccessTokenBlacklisted returns true when the credential exists in the
// Redis blacklist. If no Redis client is configured, returns (false, nil).
func IsAccessTokenBlacklisted(ctx context.Context, token string) (bool, error) {
	if blacklistClient == nil {
		return false, nil
	}
	key := "blacklist:session:" + token
	exists, err := blacklistClient.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}
