package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreSetGetDel(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore("storefront")

	require.NoError(t, s.Set(ctx, "k", "v", 0))

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	require.NoError(t, s.Del(ctx, "k", "missing"))

	got, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMemoryStoreTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, time.June, 9, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStoreAt("storefront", func() time.Time { return now })

	require.NoError(t, s.Set(ctx, "k", "v", 5*time.Minute))

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	now = now.Add(5*time.Minute + time.Second)

	got, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Empty(t, got, "entry should have expired")
}

func TestGenerateKey(t *testing.T) {
	s := NewMemoryStore("storefront")
	assert.Equal(t, "storefront:pending-items:abc", s.GenerateKey("pending-items", "abc"))
}
