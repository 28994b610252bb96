package memory

import (
	"context"
	"testing"
	"time"

	"millionaire-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlashStorePopsOnce(t *testing.T) {
	ctx := context.Background()
	store := NewFlashStore(time.Minute)

	require.NoError(t, store.Push(ctx, "sid", domain.Flash{Kind: domain.FlashAlert, Message: "first"}))
	require.NoError(t, store.Push(ctx, "sid", domain.Flash{Kind: domain.FlashNotice, Message: "second"}))

	flashes, err := store.Pop(ctx, "sid")
	require.NoError(t, err)
	require.Len(t, flashes, 2)
	assert.Equal(t, "first", flashes[0].Message)

	flashes, err = store.Pop(ctx, "sid")
	require.NoError(t, err)
	assert.Empty(t, flashes)
}

func TestFlashStoreExpires(t *testing.T) {
	ctx := context.Background()
	store := NewFlashStore(time.Minute)
	now := time.Now()
	store.clock = func() time.Time { return now }

	require.NoError(t, store.Push(ctx, "sid", domain.Flash{Kind: domain.FlashAlert, Message: "stale"}))
	now = now.Add(2 * time.Minute)

	flashes, err := store.Pop(ctx, "sid")
	require.NoError(t, err)
	assert.Empty(t, flashes)
}
