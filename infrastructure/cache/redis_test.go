package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisStore_InvalidURL(t *testing.T) {
	// Given a malformed connection URL.
	store, err := NewRedisStore("not-a-redis-url", "")

	// Then construction fails before any connection is attempted.
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid Redis URL")
	assert.Nil(t, store)
}

func TestNewRedisStore_ValidURL(t *testing.T) {
	// Given a well-formed connection URL.
	store, err := NewRedisStore("redis://localhost:6379/0", "")

	// Then the store is built lazily without dialing the server.
	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, DefaultKeyPrefix, store.keyPrefix)
	require.NoError(t, store.Close())
}

func TestNewRedisStore_CustomKeyPrefix(t *testing.T) {
	// Given a caller-supplied namespace.
	store, err := NewRedisStore("redis://localhost:6379/1", "demo:")
	require.NoError(t, err)
	defer store.Close()

	// Then keys are built under that namespace.
	assert.Equal(t, "demo:llm:abc", store.key("llm:abc"))
}
