package middleware_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/habitat-inmuebles/habitat-web/internal/api/middleware"
)

type memoryCache struct {
	entries map[string][]byte
	sets    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (c *memoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	if value, ok := c.entries[key]; ok {
		return value, nil
	}
	return nil, fmt.Errorf("key not found: %s", key)
}

func (c *memoryCache) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	c.entries[key] = value
	c.sets++
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	delete(c.entries, key)
	return nil
}

func (c *memoryCache) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := c.entries[key]
	return ok, nil
}

func cachedHandler(cache *memoryCache, hits *int) http.Handler {
	m := middleware.NewCacheMiddleware(cache)
	return m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hits++
		fmt.Fprintf(w, "render %d", *hits)
	}))
}

func TestCacheMiddleware_ServesListFromCache(t *testing.T) {
	cache := newMemoryCache()
	hits := 0
	handler := cachedHandler(cache, &hits)

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest("GET", "/properties", nil))
	second := httptest.NewRecorder()
	handler.ServeHTTP(second, httptest.NewRequest("GET", "/properties", nil))

	assert.Equal(t, 1, hits)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
}

func TestCacheMiddleware_DetailPagesAreNeverCached(t *testing.T) {
	cache := newMemoryCache()
	hits := 0
	handler := cachedHandler(cache, &hits)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/properties/7", nil))
		assert.Empty(t, w.Header().Get("X-Cache"))
	}

	// Every detail view must reach the handler: it is where click
	// tracking fires.
	assert.Equal(t, 2, hits)
	assert.Zero(t, cache.sets)
}

func TestCacheMiddleware_PendingFlashBypassesCache(t *testing.T) {
	cache := newMemoryCache()
	hits := 0
	handler := cachedHandler(cache, &hits)

	withFlash := httptest.NewRequest("GET", "/", nil)
	withFlash.AddCookie(&http.Cookie{Name: "habitat_flash", Value: "eyJsZXZlbCI6InN1Y2Nlc3MifQ=="})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, withFlash)

	// The personalized render is neither served from nor stored in
	// the shared cache.
	assert.Equal(t, 1, hits)
	assert.Zero(t, cache.sets)
	assert.Empty(t, w.Header().Get("X-Cache"))

	// A clean request afterwards fills the cache normally.
	clean := httptest.NewRecorder()
	handler.ServeHTTP(clean, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, "MISS", clean.Header().Get("X-Cache"))
	assert.Equal(t, 1, cache.sets)
}
