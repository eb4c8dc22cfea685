package fallback

import (
	"testing"
	"time"

	"github.com/LerianStudio/lib-resilience/resilience/log"
	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_PutAndGet(t *testing.T) {
	mock := clock.NewMock()
	cache := NewCache(4, &log.NoneLogger{}).WithClock(mock)

	cache.Put("accounts/42", map[string]string{"name": "primary"})

	entry, err := cache.Get("accounts/42")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"name": "primary"}, entry.Value)
	assert.Equal(t, mock.Now(), entry.CachedAt)
}

func TestCache_MissIsTyped(t *testing.T) {
	cache := NewCache(4, &log.NoneLogger{})

	_, err := cache.Get("never-stored")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestCache_OverwriteRefreshesCachedAt(t *testing.T) {
	mock := clock.NewMock()
	cache := NewCache(4, &log.NoneLogger{}).WithClock(mock)

	cache.Put("accounts/42", "v1")

	mock.Add(time.Minute)

	cache.Put("accounts/42", "v2")

	entry, err := cache.Get("accounts/42")
	require.NoError(t, err)
	assert.Equal(t, "v2", entry.Value)
	assert.Equal(t, mock.Now(), entry.CachedAt)
	assert.Equal(t, 1, cache.Len())
}

func TestCache_LRUEviction(t *testing.T) {
	cache := NewCache(2, &log.NoneLogger{})

	cache.Put("a", 1)
	cache.Put("b", 2)

	// Touch "a" so "b" becomes the least recently used entry.
	_, err := cache.Get("a")
	require.NoError(t, err)

	cache.Put("c", 3)

	_, err = cache.Get("b")
	assert.ErrorIs(t, err, ErrCacheMiss)

	_, err = cache.Get("a")
	assert.NoError(t, err)
	_, err = cache.Get("c")
	assert.NoError(t, err)
}

func TestCache_NoSelfExpiry(t *testing.T) {
	mock := clock.NewMock()
	cache := NewCache(4, &log.NoneLogger{}).WithClock(mock)

	cache.Put("accounts/42", "stale-but-served")

	storedAt := mock.Now()

	mock.Add(48 * time.Hour)

	// The cache never hides age; the caller decides whether staleness is
	// acceptable.
	entry, err := cache.Get("accounts/42")
	require.NoError(t, err)
	assert.Equal(t, "stale-but-served", entry.Value)
	assert.Equal(t, storedAt, entry.CachedAt)
}

func TestCache_DefaultCapacity(t *testing.T) {
	cache := NewCache(0, nil)

	cache.Put("a", 1)
	assert.Equal(t, 1, cache.Len())
}
