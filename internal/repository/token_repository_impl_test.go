package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryTokenRepository(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	repo := &memoryTokenRepository{now: func() time.Time { return now }, tokens: map[string]time.Time{}}

	require.NoError(t, repo.Store(ctx, "access", "doc1", "a1", time.Minute))
	require.NoError(t, repo.Store(ctx, "refresh", "doc1", "r1", time.Hour))
	require.NoError(t, repo.Store(ctx, "access", "doc10", "a2", time.Minute))

	ok, err := repo.Exists(ctx, "access", "doc1", "a1")
	require.NoError(t, err)
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	ok, _ = repo.Exists(ctx, "access", "doc1", "a1")
	assert.False(t, ok, "expired")

	require.NoError(t, repo.DeleteAll(ctx, "doc1"))
	ok, _ = repo.Exists(ctx, "refresh", "doc1", "r1")
	assert.False(t, ok)

	now = now.Add(-2 * time.Minute)
	ok, _ = repo.Exists(ctx, "access", "doc10", "a2")
	assert.True(t, ok, "other users keep their tokens")

	require.NoError(t, repo.Delete(ctx, "access", "doc10", "a2"))
	ok, _ = repo.Exists(ctx, "access", "doc10", "a2")
	assert.False(t, ok)
}
