package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuard_ClaimOnceWithinTTL(t *testing.T) {
	mr, rdb := newRedis(t)
	g := NewGuard(rdb, 10*time.Minute, "idem:loans")
	ctx := context.Background()

	ok, err := g.Claim(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, mr.Exists("idem:loans:abc"))

	ok, err = g.Claim(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, ok)

	mr.FastForward(11 * time.Minute)
	ok, err = g.Claim(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGuard_Release(t *testing.T) {
	_, rdb := newRedis(t)
	g := NewGuard(rdb, time.Minute, "idem")
	ctx := context.Background()

	_, err := g.Claim(ctx, "k")
	require.NoError(t, err)
	require.NoError(t, g.Release(ctx, "k"))

	ok, err := g.Claim(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGuard_DisabledAlwaysClaims(t *testing.T) {
	var g *Guard
	ok, err := g.Claim(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, g.Release(context.Background(), "k"))
}
