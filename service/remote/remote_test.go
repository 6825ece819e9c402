package remote_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"creditagency/core"
	"creditagency/handler/auth"
	"creditagency/handler/gateway"
	"creditagency/service/ledger"
	"creditagency/service/oracle"
	"creditagency/service/remote"

	"github.com/go-chi/chi"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const agencyAddress = "credit-agency"

var (
	common = core.NativeToken("common")
	tokenX = core.NativeToken("x")
)

var authenticator = auth.New(auth.Config{Secret: "secret", Issuer: "agency", TTL: time.Hour})

func tokenFor(subject string) remote.TokenSource {
	return func(context.Context) (string, error) {
		return authenticator.Issue(subject)
	}
}

// newServer gateway over a fresh hub, behind bearer authentication
func newServer(t *testing.T) (string, *ledger.Hub) {
	hub := ledger.New(agencyAddress, oracle.NewStatic(
		oracle.Rate{From: tokenX, To: common, Rate: decimal.RequireFromString("1.5")},
	))

	r := chi.NewRouter()
	r.Use(auth.HandleAuthentication(authenticator))
	r.Mount("/", gateway.Handle(hub))

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return srv.URL, hub
}

func newClient(t *testing.T) (*remote.Client, *ledger.Hub) {
	endpoint, hub := newServer(t)
	return remote.New(endpoint, time.Second, tokenFor(agencyAddress)), hub
}

func instantiate(t *testing.T, c *remote.Client) string {
	ctx := context.Background()

	entries, err := c.Execute(ctx, []*core.MarketMsg{
		core.NewInstantiateMsg(agencyAddress, &core.InstantiateMarket{
			ID:               7,
			CodeID:           3,
			Spec:             core.MarketSpec{Token: tokenX, CollateralRatio: decimal.RequireFromString("0.5")},
			CommonToken:      common,
			BorrowLimitRatio: decimal.NewFromInt(1),
		}),
	})
	require.Nil(t, err)
	assert.Empty(t, entries)

	replies, err := c.Pending(ctx, 10)
	require.Nil(t, err)
	require.Len(t, replies, 1)
	assert.EqualValues(t, 7, replies[0].ID)
	address := replies[0].Address
	require.NotEmpty(t, address)

	require.Nil(t, c.Ack(ctx, 7))
	replies, err = c.Pending(ctx, 10)
	require.Nil(t, err)
	assert.Empty(t, replies)

	return address
}

func TestQueries(t *testing.T) {
	ctx := context.Background()
	c, _ := newClient(t)
	market := instantiate(t, c)

	cfg, err := c.Configuration(ctx, market)
	require.Nil(t, err)
	assert.Equal(t, tokenX, cfg.Token)
	assert.Equal(t, common, cfg.CommonToken)
	assert.EqualValues(t, 3, cfg.CodeID)
	assert.Equal(t, "0.5", cfg.CollateralRatio.String())

	rate, err := c.PriceLocalPerCommon(ctx, market)
	require.Nil(t, err)
	assert.Equal(t, "1.5", rate.String())

	v, err := c.CreditLine(ctx, market, "alice")
	require.Nil(t, err)
	assert.True(t, v.Collateral.IsZero())
	assert.True(t, v.Debt.IsZero())

	balance, err := c.TokensBalance(ctx, market, "alice")
	require.Nil(t, err)
	assert.Equal(t, tokenX, balance.Collateral.Token)
}

func TestErrorCodes(t *testing.T) {
	ctx := context.Background()
	c, _ := newClient(t)

	_, err := c.CreditLine(ctx, "market-unknown", "alice")
	assert.ErrorIs(t, err, core.ErrMarketNotFound)

	_, err = c.Execute(ctx, []*core.MarketMsg{
		core.NewSetCommonTokenMsg("market-native-x", "alice", common),
	})
	assert.ErrorIs(t, err, core.ErrMarketNotFound)
}

func TestCallerIdentity(t *testing.T) {
	ctx := context.Background()
	endpoint, hub := newServer(t)
	agency := remote.New(endpoint, time.Second, tokenFor(agencyAddress))
	market := instantiate(t, agency)

	hub.Fund("alice", core.NewCoin(tokenX, decimal.NewFromInt(100)))
	require.Nil(t, hub.Deposit(ctx, "alice", core.NewCoin(tokenX, decimal.NewFromInt(100))))

	anonymous := remote.New(endpoint, time.Second, remote.StaticToken(""))
	_, err := anonymous.CreditLine(ctx, market, "alice")
	var coded *core.CodedError
	require.ErrorAs(t, err, &coded)
	assert.EqualValues(t, http.StatusUnauthorized, coded.ErrCode)

	// the sender in the body is replaced by the caller
	mallory := remote.New(endpoint, time.Second, tokenFor("mallory"))
	_, err = mallory.Execute(ctx, []*core.MarketMsg{
		core.NewTransferCollateralMsg(market, agencyAddress, "alice", "mallory", decimal.NewFromInt(30), decimal.NewFromInt(1)),
	})
	assert.ErrorIs(t, err, core.ErrUnauthorized)

	_, err = mallory.Pending(ctx, 10)
	assert.ErrorIs(t, err, core.ErrUnauthorized)
	assert.ErrorIs(t, mallory.Ack(ctx, 7), core.ErrUnauthorized)

	balance, err := agency.TokensBalance(ctx, market, "alice")
	require.Nil(t, err)
	assert.Equal(t, "100", balance.Collateral.Amount.String())
}

func TestExecuteTransfer(t *testing.T) {
	ctx := context.Background()
	c, hub := newClient(t)
	market := instantiate(t, c)

	hub.Fund("alice", core.NewCoin(tokenX, decimal.NewFromInt(100)))
	require.Nil(t, hub.Deposit(ctx, "alice", core.NewCoin(tokenX, decimal.NewFromInt(100))))

	// 30 common / (1.5 * 1)
	entries, err := c.Execute(ctx, []*core.MarketMsg{
		core.NewTransferCollateralMsg(market, agencyAddress, "alice", "bob", decimal.NewFromInt(30), decimal.NewFromInt(1)),
	})
	require.Nil(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "bob", entries[0].Account)

	balance, err := c.TokensBalance(ctx, market, "bob")
	require.Nil(t, err)
	assert.Equal(t, "20", balance.Collateral.Amount.String())
}
