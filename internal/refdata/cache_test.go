package refdata

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestCacheRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewCache(client, time.Minute)
	ctx := context.Background()

	_, ok, err := cache.GetSnapshot(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	seed := Seed()
	require.NoError(t, cache.SetSnapshot(ctx, seed))

	got, ok, err := cache.GetSnapshot(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got.Tiers, len(seed.Tiers))
	require.Len(t, got.Rates, len(seed.Rates))

	country, found := got.Country("CA")
	require.True(t, found)
	require.Equal(t, "CAD", country.CurrencyCode)
	require.True(t, country.BaseTaxRate.Equal(seed.Countries["CA"].BaseTaxRate))
}

func TestCacheDisabledWithoutClient(t *testing.T) {
	cache := NewCache(nil, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.SetSnapshot(ctx, Seed()))
	_, ok, err := cache.GetSnapshot(ctx)
	require.NoError(t, err)
	require.False(t, ok)
}
