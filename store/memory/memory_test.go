package memory

import (
	"context"
	"errors"
	"testing"

	"creditagency/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTxRollback(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.Nil(t, s.Memberships().Add(ctx, "alice", "m1"))

	boom := errors.New("boom")
	err := s.Tx(ctx, func(ctx context.Context) error {
		require.Nil(t, s.Memberships().Add(ctx, "alice", "m2"))
		require.Nil(t, s.Memberships().Remove(ctx, "alice", "m1"))
		require.Nil(t, s.Markets().Create(ctx, &core.Market{Token: core.NativeToken("x")}))
		require.Nil(t, s.Transactions().Create(ctx, &core.Transaction{TraceID: "t1"}))

		// nested calls join the outer transaction
		return s.Tx(ctx, func(ctx context.Context) error { return boom })
	})
	assert.Equal(t, boom, err)

	markets, err := s.Memberships().Markets(ctx, "alice")
	require.Nil(t, err)
	assert.Equal(t, []string{"m1"}, markets)

	market, err := s.Markets().Find(ctx, core.NativeToken("x"))
	require.Nil(t, err)
	assert.Nil(t, market)

	txs, err := s.Transactions().List(ctx, 0, 10)
	require.Nil(t, err)
	assert.Empty(t, txs)
}

func TestMarkets(t *testing.T) {
	ctx := context.Background()
	s := New()
	markets := s.Markets()

	for _, token := range []core.Token{core.ContractToken("a"), core.NativeToken("b"), core.NativeToken("a")} {
		require.Nil(t, markets.Create(ctx, &core.Market{Token: token}))
	}

	require.Nil(t, markets.Update(ctx, &core.Market{Token: core.NativeToken("b"), State: core.MarketStateReady, Address: "mb"}))
	require.Nil(t, markets.Update(ctx, &core.Market{Token: core.ContractToken("a"), State: core.MarketStateReady, Address: "mca"}))

	list, err := markets.List(ctx, nil, 10)
	require.Nil(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "mb", list[0].Address)
	assert.Equal(t, "mca", list[1].Address)

	after := core.NativeToken("b")
	list, err = markets.List(ctx, &after, 10)
	require.Nil(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "mca", list[0].Address)

	all, err := markets.All(ctx)
	require.Nil(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, core.NativeToken("a"), all[0].Token)

	m, err := markets.FindByAddress(ctx, "mb")
	require.Nil(t, err)
	assert.Equal(t, core.NativeToken("b"), m.Token)

	require.Nil(t, markets.Delete(ctx, core.NativeToken("b")))
	m, err = markets.FindByAddress(ctx, "mb")
	require.Nil(t, err)
	assert.Nil(t, m)
}

func TestInstantiations(t *testing.T) {
	ctx := context.Background()
	s := New()

	inst := &core.Instantiation{Token: core.NativeToken("x")}
	require.Nil(t, s.Instantiations().Create(ctx, inst))
	assert.EqualValues(t, 1, inst.ID)

	taken, err := s.Instantiations().Take(ctx, inst.ID)
	require.Nil(t, err)
	assert.Equal(t, core.NativeToken("x"), taken.Token)

	taken, err = s.Instantiations().Take(ctx, inst.ID)
	require.Nil(t, err)
	assert.Nil(t, taken)
}

func TestMembershipAccounts(t *testing.T) {
	ctx := context.Background()
	s := New()
	members := s.Memberships()

	require.Nil(t, members.Add(ctx, "carol", "m1"))
	require.Nil(t, members.Add(ctx, "alice", "m1"))
	require.Nil(t, members.Add(ctx, "bob", "m2"))
	require.Nil(t, members.Remove(ctx, "bob", "m2"))

	accounts, err := members.Accounts(ctx, "", 10)
	require.Nil(t, err)
	assert.Equal(t, []string{"alice", "carol"}, accounts)

	accounts, err = members.Accounts(ctx, "alice", 10)
	require.Nil(t, err)
	assert.Equal(t, []string{"carol"}, accounts)
}

func TestConfigurationMissing(t *testing.T) {
	_, err := New().Configurations().Find(context.Background())
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
}

func TestTransactionsByAccount(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.Nil(t, s.Transactions().Create(ctx, &core.Transaction{TraceID: "1", Account: "alice"}))
	require.Nil(t, s.Transactions().Create(ctx, &core.Transaction{TraceID: "2", Account: "bob"}))
	require.Nil(t, s.Transactions().Create(ctx, &core.Transaction{TraceID: "1", Account: "alice"}))

	txs, err := s.Transactions().ListByAccount(ctx, "alice", 0, 10)
	require.Nil(t, err)
	require.Len(t, txs, 1)

	txs, err = s.Transactions().List(ctx, 1, 10)
	require.Nil(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "bob", txs[0].Account)
}
