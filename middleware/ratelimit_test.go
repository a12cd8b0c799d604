package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yshengliao/turbohttp/core/types"
)

func newIPRequest(ip string) *types.Request {
	raw := httptest.NewRequest(http.MethodGet, "/books", nil)
	raw.RemoteAddr = ip + ":1234"
	return types.NewRequest(raw)
}

func TestMemoryStore_Allow(t *testing.T) {
	store := NewMemoryStore(1, 2)
	defer store.Stop()

	assert.True(t, store.Allow("a"))
	assert.True(t, store.Allow("a"))
	assert.False(t, store.Allow("a"))

	// keys are independent
	assert.True(t, store.Allow("b"))
	assert.Equal(t, 2, store.Size())

	store.Reset("a")
	assert.Equal(t, 1, store.Size())
	assert.True(t, store.Allow("a"))
}

func TestMemoryStore_Cleanup(t *testing.T) {
	store := NewMemoryStoreWithConfig(&MemoryStoreConfig{
		Rate:            10,
		Burst:           20,
		CleanupInterval: 20 * time.Millisecond,
		TTL:             50 * time.Millisecond,
	})
	defer store.Stop()

	for _, key := range []string{"key1", "key2", "key3"} {
		require.True(t, store.Allow(key))
	}
	assert.Equal(t, 3, store.Size())

	assert.Eventually(t, func() bool { return store.Size() == 0 }, time.Second, 10*time.Millisecond)
}

func TestMemoryStore_StopIsIdempotent(t *testing.T) {
	store := NewMemoryStore(1, 1)
	assert.NotPanics(t, func() {
		store.Stop()
		store.Stop()
	})
}

func TestMemoryStore_Concurrent(t *testing.T) {
	store := NewMemoryStore(1000, 1000)
	defer store.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				store.Allow(fmt.Sprintf("key-%d", i%5))
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 5, store.Size())
}

func TestRateLimit_RejectsOverBurst(t *testing.T) {
	store := NewMemoryStore(1, 1)
	defer store.Stop()
	mw := RateLimit(&RateLimitConfig{Store: store, RetryAfter: 3})

	resp := runChain(t, newIPRequest("10.0.0.1"), mw)
	assert.Equal(t, http.StatusOK, resp.StatusCode())

	resp = runChain(t, newIPRequest("10.0.0.1"), mw)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode())
	text, _ := resp.Text()
	assert.Equal(t, "Too Many Requests", text)
	assert.Equal(t, "3", resp.Header().Get("Retry-After"))

	// another client is unaffected
	resp = runChain(t, newIPRequest("10.0.0.2"), mw)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
}

func TestRateLimit_Skipper(t *testing.T) {
	store := NewMemoryStore(1, 1)
	defer store.Stop()
	mw := RateLimit(&RateLimitConfig{
		Store:   store,
		Skipper: func(*types.Request) bool { return true },
	})

	for i := 0; i < 5; i++ {
		resp := runChain(t, newIPRequest("10.0.0.1"), mw)
		assert.Equal(t, http.StatusOK, resp.StatusCode())
	}
	assert.Equal(t, 0, store.Size())
}

func TestRateLimitByPath(t *testing.T) {
	config := DefaultRateLimitConfig()
	store := NewMemoryStore(1, 1)
	defer store.Stop()
	config.Store = store
	mw := RateLimit(config)

	runChain(t, newIPRequest("10.0.0.1"), mw)
	resp := runChain(t, newIPRequest("10.0.0.1"), mw)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode())

	byPath := RateLimitByPath(1, 1).(*rateLimit)
	defer byPath.config.Store.(*MemoryStore).Stop()
	assert.Equal(t, "10.0.0.1:/books", byPath.config.KeyFunc(newIPRequest("10.0.0.1")))
}
