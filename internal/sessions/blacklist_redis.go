package sessions

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
)

// Blacklist records revoked access tokens in Redis until they expire.
// A nil *Blacklist or one without a client is a no-op that revokes nothing.
type Blacklist struct {
	client *redis.Client
	prefix string
}

// NewBlacklist creates a Redis-backed blacklist. Safe to call with nil.
func NewBlacklist(client *redis.Client) *Blacklist {
	return &Blacklist{client: client, prefix: "blacklist:access:"}
}

// keys hold a digest so raw bearer tokens never sit in Redis
func (b *Blacklist) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return b.prefix + hex.EncodeToString(sum[:])
}

// Revoke stores the token with the given TTL (normally its remaining lifetime).
func (b *Blacklist) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if b == nil || b.client == nil || ttl <= 0 {
		return nil
	}
	return b.client.Set(ctx, b.key(token), "1", ttl).Err()
}

// IsRevoked reports whether the token was revoked and has not yet expired.
func (b *Blacklist) IsRevoked(ctx context.Context, token string) (bool, error) {
	if b == nil || b.client == nil {
		return false, nil
	}
	exists, err := b.client.Exists(ctx, b.key(token)).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}

// Enabled reports whether revocations are persisted anywhere.
func (b *Blacklist) Enabled() bool { return b != nil && b.client != nil }
