package agency_test

import (
	"testing"

	"creditagency/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// borrowed: debtor holds 500 x as collateral and owes 300 y
func borrowed(t *testing.T) (s *suite, x, y string) {
	s = newSuite(t)
	x = s.market(t, tokenX, "0.8", "1")
	y = s.market(t, tokenY, "0.8", "1")
	s.oracle.Set(tokenY, tokenX, dec("1"))

	s.deposit(t, lender, coin(tokenY, 1000))
	s.deposit(t, debtor, coin(tokenX, 500))
	require.Nil(t, s.hub.Borrow(s.ctx, debtor, coin(tokenY, 300)))
	return s, x, y
}

func TestRepayWithCollateral(t *testing.T) {
	s, x, y := borrowed(t)

	require.Nil(t, s.agency.RepayWithCollateral(s.ctx, debtor, coin(tokenX, 200), coin(tokenY, 150)))

	balance, err := s.hub.TokensBalance(s.ctx, x, debtor)
	require.Nil(t, err)
	assert.Equal(t, "350", balance.Collateral.Amount.String())

	balance, err = s.hub.TokensBalance(s.ctx, y, debtor)
	require.Nil(t, err)
	assert.Equal(t, "150", balance.Debt.Amount.String())

	assertCreditLine(t, s.creditLine(t, debtor), "350", "280", "280", "150")
	assert.True(t, s.hub.Balance(agencyAddress, tokenY).IsZero())
}

func TestRepayWithCollateralUndercollateralized(t *testing.T) {
	s, _, y := borrowed(t)

	// credit line 400 - 480*0.8 = 16, debt 300 - 10 = 290
	err := s.agency.RepayWithCollateral(s.ctx, debtor, coin(tokenX, 480), coin(tokenY, 10))
	assert.ErrorIs(t, err, core.ErrRepaymentWouldUndercollateralize)

	balance, err := s.hub.TokensBalance(s.ctx, y, debtor)
	require.Nil(t, err)
	assert.Equal(t, "300", balance.Debt.Amount.String())
}

func TestRepayWithCollateralUnderflow(t *testing.T) {
	s, _, _ := borrowed(t)

	err := s.agency.RepayWithCollateral(s.ctx, debtor, coin(tokenX, 10), coin(tokenY, 1000))
	assert.ErrorIs(t, err, core.ErrUnderflow)

	err = s.agency.RepayWithCollateral(s.ctx, debtor, coin(tokenX, 600), coin(tokenY, 10))
	assert.ErrorIs(t, err, core.ErrUnderflow)
}

func TestRepayWithCollateralNotMember(t *testing.T) {
	s, x, _ := borrowed(t)
	z := s.market(t, tokenZ, "0.8", "1")

	err := s.agency.RepayWithCollateral(s.ctx, debtor, coin(tokenZ, 10), coin(tokenY, 10))
	var notMember *core.NotMemberError
	require.ErrorAs(t, err, &notMember)
	assert.Equal(t, z, notMember.Market)

	err = s.agency.RepayWithCollateral(s.ctx, lender, coin(tokenY, 10), coin(tokenX, 10))
	require.ErrorAs(t, err, &notMember)
	assert.Equal(t, lender, notMember.Account)
	assert.Equal(t, x, notMember.Market)
}

func TestRepayWithCollateralNoMarket(t *testing.T) {
	s, _, _ := borrowed(t)

	err := s.agency.RepayWithCollateral(s.ctx, debtor, coin(core.NativeToken("unknown"), 10), coin(tokenY, 10))
	assert.ErrorIs(t, err, core.ErrNoMarket)
}

func TestRepayWithCollateralSellLimit(t *testing.T) {
	s, x, _ := borrowed(t)

	err := s.agency.RepayWithCollateral(s.ctx, debtor, coin(tokenX, 100), coin(tokenY, 150))
	assert.ErrorIs(t, err, core.ErrSellLimitExceeded)

	balance, err := s.hub.TokensBalance(s.ctx, x, debtor)
	require.Nil(t, err)
	assert.Equal(t, "500", balance.Collateral.Amount.String())
	assert.True(t, s.hub.Balance(agencyAddress, tokenY).IsZero())
}

func TestRepayWithCollateralZeroAmount(t *testing.T) {
	s, _, y := borrowed(t)

	err := s.agency.RepayWithCollateral(s.ctx, debtor, coin(tokenX, 10), coin(tokenY, 0))
	assert.ErrorIs(t, err, core.ErrInvalidAmount)

	balance, err := s.hub.TokensBalance(s.ctx, y, debtor)
	require.Nil(t, err)
	assert.Equal(t, "300", balance.Debt.Amount.String())
}
