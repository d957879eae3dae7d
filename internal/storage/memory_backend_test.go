package storage_test

import (
	"context"
	"strings"
	"testing"

	"github.com/2beens/fitportal/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestMemoryBackend_BasicOps(t *testing.T) {
	ctx := context.Background()
	b := storage.NewMemoryBackend(0)

	value, found, err := b.Get(ctx, "fp_users_v1")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, value)

	raw := []byte(`[{"id":"u1"}]`)
	require.NoError(t, b.Set(ctx, "fp_users_v1", raw))

	// stored values are copies
	raw[0] = 'X'
	value, found, err = b.Get(ctx, "fp_users_v1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[{"id":"u1"}]`, string(value))
	value[0] = 'Y'
	value, _, _ = b.Get(ctx, "fp_users_v1")
	assert.Equal(t, `[{"id":"u1"}]`, string(value))

	require.NoError(t, b.Remove(ctx, "fp_users_v1"))
	require.NoError(t, b.Remove(ctx, "fp_users_v1"))
	_, found, err = b.Get(ctx, "fp_users_v1")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, int64(0), b.Usage())
}

func TestMemoryBackend_InvalidKey(t *testing.T) {
	ctx := context.Background()
	b := storage.NewMemoryBackend(0)

	for _, key := range []string{"", "../users", "a/b", ".hidden", "with space"} {
		assert.ErrorIs(t, b.Set(ctx, key, []byte("1")), storage.ErrInvalidKey, key)
		_, _, err := b.Get(ctx, key)
		assert.ErrorIs(t, err, storage.ErrInvalidKey, key)
		assert.ErrorIs(t, b.Remove(ctx, key), storage.ErrInvalidKey, key)
	}
}

func TestMemoryBackend_Quota(t *testing.T) {
	ctx := context.Background()
	b := storage.NewMemoryBackend(20)

	require.NoError(t, b.Set(ctx, "k", []byte(strings.Repeat("a", 10))))
	assert.Equal(t, int64(11), b.Usage())

	err := b.Set(ctx, "k2", []byte(strings.Repeat("b", 10)))
	assert.ErrorIs(t, err, storage.ErrStorageQuotaExceeded)
	_, found, err := b.Get(ctx, "k2")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, int64(11), b.Usage())

	// replacing a value only counts the new size
	require.NoError(t, b.Set(ctx, "k", []byte(strings.Repeat("c", 19))))
	assert.Equal(t, int64(20), b.Usage())

	err = b.Set(ctx, "k", []byte(strings.Repeat("d", 20)))
	assert.ErrorIs(t, err, storage.ErrStorageQuotaExceeded)
	value, _, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("c", 19), string(value))
}
