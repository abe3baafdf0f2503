package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// This test requires a running memcached instance
// If memcached is not available, the test will be skipped
func TestMemcacheService(t *testing.T) {
	mc := NewMemcacheService("localhost:11211")

	if err := mc.Ping(); err != nil {
		t.Skip("Memcached is not available, skipping test")
	}

	err := mc.Set("amazon_rate_limited_test", []byte("300"), 2*time.Second)
	assert.NoError(t, err)

	value, err := mc.Get("amazon_rate_limited_test")
	assert.NoError(t, err)
	assert.Equal(t, "300", string(value))

	err = mc.Delete("amazon_rate_limited_test")
	assert.NoError(t, err)

	_, err = mc.Get("amazon_rate_limited_test")
	assert.ErrorIs(t, err, ErrMiss)

	// deleting twice is fine
	assert.NoError(t, mc.Delete("amazon_rate_limited_test"))
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_, err := c.Get("flipkart_rate_limited")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, c.Set("flipkart_rate_limited", []byte("300"), 5*time.Minute))

	value, err := c.Get("flipkart_rate_limited")
	require.NoError(t, err)
	assert.Equal(t, "300", string(value))

	now = now.Add(5 * time.Minute)
	_, err = c.Get("flipkart_rate_limited")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, c.Set("sticky", []byte("1"), 0))
	now = now.Add(24 * time.Hour)
	_, err = c.Get("sticky")
	assert.NoError(t, err)

	require.NoError(t, c.Delete("sticky"))
	_, err = c.Get("sticky")
	assert.ErrorIs(t, err, ErrMiss)
}
