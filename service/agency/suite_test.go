package agency_test

import (
	"context"
	"testing"

	"creditagency/core"
	"creditagency/service/agency"
	"creditagency/service/ledger"
	"creditagency/service/oracle"
	"creditagency/store/memory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const (
	governance    = "governance"
	agencyAddress = "credit-agency"
	debtor        = "debtor"
	lender        = "lender"
	liquidator    = "liquidator"
)

var (
	commonToken = core.NativeToken("common")
	tokenX      = core.NativeToken("x")
	tokenY      = core.ContractToken("y")
	tokenZ      = core.NativeToken("z")
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func coin(token core.Token, amount int64) core.Coin {
	return core.NewCoin(token, decimal.NewFromInt(amount))
}

type suite struct {
	ctx    context.Context
	store  *memory.Store
	oracle *oracle.Static
	hub    *ledger.Hub
	agency core.AgencyService
}

func newSuite(t *testing.T) *suite {
	ctx := context.Background()
	store := memory.New()
	o := oracle.NewStatic()
	hub := ledger.New(agencyAddress, o)

	s := &suite{
		ctx:    ctx,
		store:  store,
		oracle: o,
		hub:    hub,
		agency: agency.New(
			agency.Config{Address: agencyAddress},
			store,
			store.Configurations(),
			store.Markets(),
			store.Instantiations(),
			store.Memberships(),
			store.Transactions(),
			hub,
			hub,
		),
	}
	hub.Bind(s.agency)

	require.Nil(t, s.agency.Init(ctx, &core.Configuration{
		Governance:       governance,
		MarketTemplateID: 1,
		TokenTemplateID:  2,
		RewardToken:      core.NativeToken("reward"),
		CommonToken:      commonToken,
		LiquidationPrice: dec("0.92"),
		BorrowLimitRatio: dec("1"),
	}))

	return s
}

func marketSpec(token core.Token, collateralRatio string) *core.MarketSpec {
	return &core.MarketSpec{
		Name:            "market " + token.Denom,
		Symbol:          token.Denom,
		Decimals:        9,
		Token:           token,
		CollateralRatio: dec(collateralRatio),
		PriceOracle:     "oracle",
		ReserveFactor:   dec("0.1"),
	}
}

// deliver applies every pending instantiation acknowledgement, returning the last error
func (s *suite) deliver(t *testing.T) error {
	replies, err := s.hub.Pending(s.ctx, 0)
	require.Nil(t, err)

	var last error
	for _, reply := range replies {
		if err := s.agency.HandleInstantiated(s.ctx, reply); err != nil {
			last = err
		}
		require.Nil(t, s.hub.Ack(s.ctx, reply.ID))
	}

	return last
}

// market creates a ready market trading token worth rate common tokens
func (s *suite) market(t *testing.T, token core.Token, collateralRatio, rate string) string {
	s.oracle.Set(token, commonToken, dec(rate))

	_, err := s.agency.CreateMarket(s.ctx, governance, marketSpec(token, collateralRatio))
	require.Nil(t, err)
	require.Nil(t, s.deliver(t))

	address, ok := s.hub.MarketAddress(token)
	require.True(t, ok)
	return address
}

func (s *suite) creditLine(t *testing.T, account string) *core.CreditLineValues {
	v, err := s.agency.TotalCreditLine(s.ctx, account)
	require.Nil(t, err)
	return v
}

func (s *suite) deposit(t *testing.T, account string, c core.Coin) {
	s.hub.Fund(account, c)
	require.Nil(t, s.hub.Deposit(s.ctx, account, c))
}

func (s *suite) transactions(t *testing.T) []*core.Transaction {
	txs, err := s.store.Transactions().List(s.ctx, 0, 1000)
	require.Nil(t, err)
	return txs
}

func assertCreditLine(t *testing.T, v *core.CreditLineValues, collateral, creditLine, borrowLimit, debt string) {
	t.Helper()
	require.Equal(t, collateral, v.Collateral.String(), "collateral")
	require.Equal(t, creditLine, v.CreditLine.String(), "credit line")
	require.Equal(t, borrowLimit, v.BorrowLimit.String(), "borrow limit")
	require.Equal(t, debt, v.Debt.String(), "debt")
}
