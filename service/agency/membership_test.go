package agency_test

import (
	"testing"

	"creditagency/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoMarketsEntered(t *testing.T) {
	s := newSuite(t)
	s.market(t, tokenX, "0.5", "2")

	assertCreditLine(t, s.creditLine(t, debtor), "0", "0", "0", "0")

	markets, err := s.agency.ListEnteredMarkets(s.ctx, debtor, "", 0)
	require.Nil(t, err)
	assert.Empty(t, markets)
}

func TestExitMarketNotMember(t *testing.T) {
	s := newSuite(t)
	x := s.market(t, tokenX, "0.5", "2")

	err := s.agency.ExitMarket(s.ctx, debtor, x)
	var notMember *core.NotMemberError
	require.ErrorAs(t, err, &notMember)
	assert.Equal(t, x, notMember.Market)
	assert.ErrorIs(t, err, core.ErrNotMember)

	markets, err := s.agency.ListEnteredMarkets(s.ctx, debtor, "", 0)
	require.Nil(t, err)
	assert.Empty(t, markets)
}

func TestEnterMarketByDeposit(t *testing.T) {
	s := newSuite(t)
	x := s.market(t, tokenX, "0.5", "2")

	s.deposit(t, debtor, coin(tokenX, 500))
	s.deposit(t, debtor, coin(tokenX, 100))

	on, err := s.agency.IsOnMarket(s.ctx, debtor, x)
	require.Nil(t, err)
	assert.True(t, on)

	markets, err := s.agency.ListEnteredMarkets(s.ctx, debtor, "", 0)
	require.Nil(t, err)
	assert.Equal(t, []string{x}, markets)

	// idempotent enter logs once
	var enters int
	for _, tx := range s.transactions(t) {
		if tx.Action == core.ActionTypeEnterMarket {
			enters++
		}
	}
	assert.Equal(t, 1, enters)
}

func TestEnterMarketRequiresMarket(t *testing.T) {
	s := newSuite(t)
	x := s.market(t, tokenX, "0.5", "2")

	err := s.agency.EnterMarket(s.ctx, "impostor", debtor)
	assert.ErrorIs(t, err, core.ErrUnauthorized)

	require.Nil(t, s.agency.EnterMarket(s.ctx, x, debtor))
	require.Nil(t, s.agency.EnterMarket(s.ctx, x, debtor))

	on, err := s.agency.IsOnMarket(s.ctx, debtor, "impostor")
	require.Nil(t, err)
	assert.False(t, on)
}

func TestListEnteredMarkets(t *testing.T) {
	s := newSuite(t)
	x := s.market(t, tokenX, "0.5", "1")
	y := s.market(t, tokenY, "0.5", "1")
	z := s.market(t, tokenZ, "0.5", "1")

	for _, address := range []string{z, x, y} {
		require.Nil(t, s.agency.EnterMarket(s.ctx, address, debtor))
	}

	// ordered by market address
	all, err := s.agency.ListEnteredMarkets(s.ctx, debtor, "", 0)
	require.Nil(t, err)
	require.Equal(t, []string{y, x, z}, all)

	page, err := s.agency.ListEnteredMarkets(s.ctx, debtor, "", 2)
	require.Nil(t, err)
	assert.Equal(t, []string{y, x}, page)

	page, err = s.agency.ListEnteredMarkets(s.ctx, debtor, page[1], 2)
	require.Nil(t, err)
	assert.Equal(t, []string{z}, page)
}

func TestExitMarket(t *testing.T) {
	s := newSuite(t)
	x := s.market(t, tokenX, "0.8", "1")
	y := s.market(t, tokenY, "0.8", "1")

	s.deposit(t, lender, coin(tokenY, 1000))
	s.deposit(t, debtor, coin(tokenX, 500))
	s.deposit(t, debtor, coin(tokenY, 100))
	require.Nil(t, s.hub.Borrow(s.ctx, debtor, coin(tokenY, 300)))

	assertCreditLine(t, s.creditLine(t, debtor), "600", "480", "480", "300")

	// debt on the market itself
	err := s.agency.ExitMarket(s.ctx, debtor, y)
	var debtRemaining *core.DebtRemainingError
	require.ErrorAs(t, err, &debtRemaining)
	assert.Equal(t, y, debtRemaining.Market)
	assert.Equal(t, tokenY, debtRemaining.Debt.Token)
	assert.Equal(t, "300", debtRemaining.Debt.Amount.String())

	// remaining credit line too small
	err = s.agency.ExitMarket(s.ctx, debtor, x)
	var under *core.UndercollateralizedExitError
	require.ErrorAs(t, err, &under)
	assert.Equal(t, "300", under.Debt.String())
	assert.Equal(t, "80", under.CreditLine.String())
	assert.Equal(t, "100", under.Collateral.String())

	markets, err := s.agency.ListEnteredMarkets(s.ctx, debtor, "", 0)
	require.Nil(t, err)
	assert.Equal(t, []string{y, x}, markets)

	require.Nil(t, s.hub.Repay(s.ctx, debtor, coin(tokenY, 300)))
	require.Nil(t, s.agency.ExitMarket(s.ctx, debtor, y))

	markets, err = s.agency.ListEnteredMarkets(s.ctx, debtor, "", 0)
	require.Nil(t, err)
	assert.Equal(t, []string{x}, markets)
	assertCreditLine(t, s.creditLine(t, debtor), "500", "400", "400", "0")
}

func TestExitMarketWithoutDebt(t *testing.T) {
	s := newSuite(t)
	x := s.market(t, tokenX, "0.5", "2")
	s.deposit(t, debtor, coin(tokenX, 500))

	require.Nil(t, s.agency.ExitMarket(s.ctx, debtor, x))

	on, err := s.agency.IsOnMarket(s.ctx, debtor, x)
	require.Nil(t, err)
	assert.False(t, on)
	assertCreditLine(t, s.creditLine(t, debtor), "0", "0", "0", "0")
}

func TestExitMarketAtCreditLine(t *testing.T) {
	s := newSuite(t)
	s.market(t, tokenX, "0.8", "1")
	y := s.market(t, tokenY, "0.8", "1")
	s.market(t, tokenZ, "0.8", "1")

	s.deposit(t, lender, coin(tokenZ, 1000))
	s.deposit(t, debtor, coin(tokenX, 500))
	s.deposit(t, debtor, coin(tokenY, 100))
	require.Nil(t, s.hub.Borrow(s.ctx, debtor, coin(tokenZ, 400)))

	// debt equal to the remaining credit line is sound
	require.Nil(t, s.agency.ExitMarket(s.ctx, debtor, y))
	assertCreditLine(t, s.creditLine(t, debtor), "500", "400", "400", "400")

	liquidatable, err := s.agency.IsLiquidatable(s.ctx, debtor)
	require.Nil(t, err)
	assert.False(t, liquidatable)
}
