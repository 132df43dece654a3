// Package cache stores computed scenario heights so repeated lines can skip
// simulation.
//
// Three backends implement [Cache]:
//   - [NullCache]: never stores anything (the default)
//   - [FileCache]: JSON entry files under a local directory, for CLI use
//   - [RedisCache]: a shared Redis instance, for the HTTP API or several hosts
//
// Keys come from a [Keyer] so that callers never build key strings by hand:
//
//	k := cache.NewDefaultKeyer()
//	key := k.HeightKey("fail", "Q0,I2")
//	data, hit, err := c.Get(ctx, key)
package cache

import (
	"context"
	"time"
)

// TTLHeight is the default lifetime of a cached height. Heights are a pure
// function of the line and policy, so the TTL only bounds storage growth.
const TTLHeight = 7 * 24 * time.Hour

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the value for key. hit is false on a miss or expired entry.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)

	// Set stores data under key. A ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Name identifies the backend in logs ("none", "file", "redis").
	Name() string

	// Close releases backend resources.
	Close() error
}

// Keyer builds cache keys.
type Keyer interface {
	// HeightKey returns the key for the height of one scenario line parsed
	// under the named invalid-token policy.
	HeightKey(policy, line string) string
}

// DefaultKeyer is the standard Keyer.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// HeightKey hashes policy and line into "height:<sha256>".
func (DefaultKeyer) HeightKey(policy, line string) string {
	return heightKey(policy, line)
}
