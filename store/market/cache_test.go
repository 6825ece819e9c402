package market

import (
	"context"
	"testing"

	"creditagency/core"
	"creditagency/store/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheReadyMarkets(t *testing.T) {
	ctx := context.Background()
	backend := memory.New().Markets()
	store := Cache(backend, 16)

	token := core.NativeToken("x")
	require.Nil(t, store.Create(ctx, &core.Market{Token: token, State: core.MarketStateInstantiating}))

	// instantiating records are never cached
	m, err := store.Find(ctx, token)
	require.Nil(t, err)
	require.NotNil(t, m)
	assert.Equal(t, core.MarketStateInstantiating, m.State)

	require.Nil(t, store.Update(ctx, &core.Market{Token: token, State: core.MarketStateReady, Address: "market-x"}))

	m, err = store.Find(ctx, token)
	require.Nil(t, err)
	assert.True(t, m.IsReady())

	// served from the cache once ready
	require.Nil(t, backend.Delete(ctx, token))
	m, err = store.Find(ctx, token)
	require.Nil(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "market-x", m.Address)

	m, err = store.FindByAddress(ctx, "market-x")
	require.Nil(t, err)
	require.NotNil(t, m)

	require.Nil(t, store.Delete(ctx, token))
	m, err = store.Find(ctx, token)
	require.Nil(t, err)
	assert.Nil(t, m)
}
