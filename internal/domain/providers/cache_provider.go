package providers

import "context"

// CacheProvider defines the caching operations used by the page cache
// and rate limiting. Implementations must be safe for concurrent use.
type CacheProvider interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, expirationSeconds int) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
