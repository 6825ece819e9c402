package ledger

import (
	"context"
	"sync"
	"testing"

	"creditagency/core"
	"creditagency/service/oracle"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const agencyAddress = "credit-agency"

var (
	common = core.NativeToken("common")
	tokenX = core.NativeToken("x")
	tokenY = core.ContractToken("y")
)

func coin(token core.Token, amount int64) core.Coin {
	return core.NewCoin(token, decimal.NewFromInt(amount))
}

func newHub(t *testing.T) (*Hub, string) {
	o := oracle.NewStatic(
		oracle.Rate{From: tokenX, To: common, Rate: decimal.NewFromInt(2)},
		oracle.Rate{From: tokenY, To: tokenX, Rate: decimal.NewFromInt(3)},
	)
	h := New(agencyAddress, o)

	_, err := h.Execute(context.Background(), []*core.MarketMsg{
		core.NewInstantiateMsg(agencyAddress, &core.InstantiateMarket{
			ID:               1,
			CodeID:           9,
			Spec:             core.MarketSpec{Token: tokenX, CollateralRatio: decimal.RequireFromString("0.5")},
			CommonToken:      common,
			BorrowLimitRatio: decimal.RequireFromString("0.5"),
		}),
	})
	require.Nil(t, err)

	address, ok := h.MarketAddress(tokenX)
	require.True(t, ok)
	return h, address
}

func TestInstantiateReplies(t *testing.T) {
	ctx := context.Background()
	h, address := newHub(t)

	h.FailInstantiation(tokenY, "no code")
	_, err := h.Execute(ctx, []*core.MarketMsg{
		core.NewInstantiateMsg(agencyAddress, &core.InstantiateMarket{ID: 2, Spec: core.MarketSpec{Token: tokenY}}),
	})
	require.Nil(t, err)

	replies, err := h.Pending(ctx, 0)
	require.Nil(t, err)
	require.Len(t, replies, 2)
	assert.Equal(t, address, replies[0].Address)
	assert.Equal(t, "no code", replies[1].Error)

	require.Nil(t, h.Ack(ctx, 1))
	replies, err = h.Pending(ctx, 10)
	require.Nil(t, err)
	require.Len(t, replies, 1)
	assert.EqualValues(t, 2, replies[0].ID)

	_, ok := h.MarketAddress(tokenY)
	assert.False(t, ok)
}

func TestCreditLine(t *testing.T) {
	ctx := context.Background()
	h, address := newHub(t)

	h.Fund("alice", coin(tokenX, 101))
	require.Nil(t, h.Deposit(ctx, "alice", coin(tokenX, 101)))

	v, err := h.CreditLine(ctx, address, "alice")
	require.Nil(t, err)
	assert.Equal(t, "101", v.Collateral.String())
	assert.Equal(t, "50", v.CreditLine.String())
	assert.Equal(t, "25", v.BorrowLimit.String())
	assert.Equal(t, "0", v.Debt.String())

	rate, err := h.PriceLocalPerCommon(ctx, address)
	require.Nil(t, err)
	assert.Equal(t, "2", rate.String())

	cfg, err := h.Configuration(ctx, address)
	require.Nil(t, err)
	assert.EqualValues(t, 9, cfg.CodeID)
	assert.Equal(t, common, cfg.CommonToken)

	_, err = h.CreditLine(ctx, "market-unknown", "alice")
	assert.ErrorIs(t, err, core.ErrMarketNotFound)
}

func TestDepositWithoutMarket(t *testing.T) {
	h, _ := newHub(t)
	h.Fund("alice", coin(tokenY, 10))

	err := h.Deposit(context.Background(), "alice", coin(tokenY, 10))
	assert.ErrorIs(t, err, core.ErrNoMarket)
	assert.Equal(t, "10", h.Balance("alice", tokenY).String())
}

func TestDepositInsufficientFunds(t *testing.T) {
	h, _ := newHub(t)

	err := h.Deposit(context.Background(), "alice", coin(tokenX, 10))
	assert.ErrorIs(t, err, core.ErrInsufficientFunds)
}

func TestExecuteAgencyOnly(t *testing.T) {
	h, address := newHub(t)

	_, err := h.Execute(context.Background(), []*core.MarketMsg{
		core.NewSetCommonTokenMsg(address, "alice", tokenY),
	})
	assert.ErrorIs(t, err, core.ErrUnauthorized)
}

func TestExecuteAtomic(t *testing.T) {
	ctx := context.Background()
	h, address := newHub(t)

	h.Fund("alice", coin(tokenX, 100))
	require.Nil(t, h.Deposit(ctx, "alice", coin(tokenX, 100)))

	// the second command fails, the first is reverted
	_, err := h.Execute(ctx, []*core.MarketMsg{
		core.NewTransferCollateralMsg(address, agencyAddress, "alice", "bob", decimal.NewFromInt(50), decimal.NewFromInt(1)),
		core.NewTransferCollateralMsg(address, agencyAddress, "alice", "bob", decimal.NewFromInt(500), decimal.NewFromInt(1)),
	})
	assert.ErrorIs(t, err, core.ErrInsufficientTokens)

	balance, err := h.TokensBalance(ctx, address, "alice")
	require.Nil(t, err)
	assert.Equal(t, "100", balance.Collateral.Amount.String())

	entries, err := h.Execute(ctx, []*core.MarketMsg{
		core.NewTransferCollateralMsg(address, agencyAddress, "alice", "bob", decimal.NewFromInt(50), decimal.RequireFromString("0.5")),
	})
	require.Nil(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, core.MarketEntry{Market: address, Account: "bob"}, *entries[0])

	// 50 common / (2 * 0.5)
	balance, err = h.TokensBalance(ctx, address, "bob")
	require.Nil(t, err)
	assert.Equal(t, "50", balance.Collateral.Amount.String())
}

func TestSwapWithdrawFrom(t *testing.T) {
	ctx := context.Background()
	h, address := newHub(t)

	h.Fund("alice", coin(tokenX, 100))
	require.Nil(t, h.Deposit(ctx, "alice", coin(tokenX, 100)))

	// 1 y costs 3 x
	_, err := h.Execute(ctx, []*core.MarketMsg{
		core.NewSwapWithdrawFromMsg(address, agencyAddress, "alice", agencyAddress, coin(tokenX, 20), coin(tokenY, 7)),
	})
	assert.ErrorIs(t, err, core.ErrSellLimitExceeded)

	_, err = h.Execute(ctx, []*core.MarketMsg{
		core.NewSwapWithdrawFromMsg(address, agencyAddress, "alice", agencyAddress, coin(tokenX, 21), coin(tokenY, 7)),
	})
	require.Nil(t, err)
	assert.Equal(t, "7", h.Balance(agencyAddress, tokenY).String())

	balance, err := h.TokensBalance(ctx, address, "alice")
	require.Nil(t, err)
	assert.Equal(t, "79", balance.Collateral.Amount.String())

	// same token, no conversion
	_, err = h.Execute(ctx, []*core.MarketMsg{
		core.NewSwapWithdrawFromMsg(address, agencyAddress, "alice", "bob", coin(tokenX, 79), coin(tokenX, 79)),
	})
	require.Nil(t, err)
	assert.Equal(t, "79", h.Balance("bob", tokenX).String())
}

func TestRepayOnBehalf(t *testing.T) {
	ctx := context.Background()
	h, address := newHub(t)

	h.Fund("alice", coin(tokenX, 100))
	require.Nil(t, h.Deposit(ctx, "alice", coin(tokenX, 100)))
	require.Nil(t, h.Borrow(ctx, "alice", coin(tokenX, 20)))

	h.Fund("bob", coin(tokenX, 30), coin(tokenY, 30))

	_, err := h.Execute(ctx, []*core.MarketMsg{core.NewRepayOnBehalfMsg(address, "bob", "alice", coin(tokenY, 10))})
	assert.ErrorIs(t, err, core.ErrTokenMismatch)

	_, err = h.Execute(ctx, []*core.MarketMsg{core.NewRepayOnBehalfMsg(address, "bob", "alice", coin(tokenX, 21))})
	assert.ErrorIs(t, err, core.ErrRepayExceedsDebt)

	_, err = h.Execute(ctx, []*core.MarketMsg{core.NewRepayOnBehalfMsg(address, "bob", "alice", coin(tokenX, 20))})
	require.Nil(t, err)
	assert.Equal(t, "10", h.Balance("bob", tokenX).String())

	balance, err := h.TokensBalance(ctx, address, "alice")
	require.Nil(t, err)
	assert.True(t, balance.Debt.IsZero())
}

func TestWithdraw(t *testing.T) {
	ctx := context.Background()
	h, _ := newHub(t)

	h.Fund("alice", coin(tokenX, 100))
	require.Nil(t, h.Deposit(ctx, "alice", coin(tokenX, 100)))

	err := h.Withdraw(ctx, "alice", coin(tokenX, 101))
	assert.ErrorIs(t, err, core.ErrInsufficientTokens)

	require.Nil(t, h.Withdraw(ctx, "alice", coin(tokenX, 60)))
	assert.Equal(t, "60", h.Balance("alice", tokenX).String())
}

func TestMigrate(t *testing.T) {
	ctx := context.Background()
	h, address := newHub(t)

	_, err := h.Execute(ctx, []*core.MarketMsg{core.NewMigrateMsg(address, agencyAddress, 12, []byte(`{}`))})
	require.Nil(t, err)

	cfg, err := h.Configuration(ctx, address)
	require.Nil(t, err)
	assert.EqualValues(t, 12, cfg.CodeID)

	_, err = h.Execute(ctx, []*core.MarketMsg{core.NewMigrateMsg("market-unknown", agencyAddress, 12, nil)})
	assert.ErrorIs(t, err, core.ErrMarketNotFound)
}

// limitAgency allows debt worth up to limit common tokens on a single market
type limitAgency struct {
	core.AgencyService
	hub    *Hub
	market string
	limit  decimal.Decimal
}

func (a *limitAgency) EnterMarket(ctx context.Context, market, account string) error {
	return nil
}

func (a *limitAgency) TotalCreditLine(ctx context.Context, account string) (*core.CreditLineValues, error) {
	v, err := a.hub.CreditLine(ctx, a.market, account)
	if err != nil {
		return nil, err
	}

	return &core.CreditLineValues{
		Collateral:  decimal.Zero,
		CreditLine:  a.limit,
		BorrowLimit: a.limit,
		Debt:        v.Debt.Mul(decimal.NewFromInt(2)),
	}, nil
}

func TestConcurrentBorrowsStayWithinLimit(t *testing.T) {
	ctx := context.Background()
	h, address := newHub(t)
	h.Bind(&limitAgency{hub: h, market: address, limit: decimal.NewFromInt(100)})

	h.Fund("lender", coin(tokenX, 1000))
	require.Nil(t, h.Deposit(ctx, "lender", coin(tokenX, 1000)))

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := h.Borrow(ctx, "alice", coin(tokenX, 10)); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, core.ErrBorrowLimitExceeded)
			}
		}()
	}
	wg.Wait()

	// 10 x is worth 20 common
	assert.Equal(t, 5, ok)
	v, err := h.CreditLine(ctx, address, "alice")
	require.Nil(t, err)
	assert.Equal(t, "50", v.Debt.String())
}
