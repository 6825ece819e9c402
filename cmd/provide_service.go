package cmd

import (
	"context"
	"fmt"

	"creditagency/config"
	"creditagency/core"
	"creditagency/handler/auth"
	"creditagency/service/agency"
	"creditagency/service/ledger"
	"creditagency/service/oracle"
	"creditagency/service/remote"

	"github.com/fox-one/pkg/store/db"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// markets collaborators of the agency, hub is set when markets run in process
type markets struct {
	client   core.MarketClient
	executor core.MarketExecutor
	feed     core.InstantiationFeed
	hub      *ledger.Hub
}

func provideOracle(prices []config.Price) (*oracle.Static, error) {
	rates := make([]oracle.Rate, 0, len(prices))
	for _, p := range prices {
		from, err := core.ParseToken(p.From)
		if err != nil {
			return nil, errors.Wrap(err, "price from")
		}

		to, err := core.ParseToken(p.To)
		if err != nil {
			return nil, errors.Wrap(err, "price to")
		}

		rate, err := decimal.NewFromString(p.Rate)
		if err != nil {
			return nil, errors.Wrapf(err, "price %s/%s", p.From, p.To)
		}

		rates = append(rates, oracle.Rate{From: from, To: to, Rate: rate})
	}

	return oracle.NewStatic(rates...), nil
}

func provideMarkets() (*markets, error) {
	switch cfg.Markets.Mode {
	case config.MarketsModeLocal:
		o, err := provideOracle(cfg.Markets.Prices)
		if err != nil {
			return nil, err
		}

		hub := ledger.New(cfg.Agency.Address, o)
		return &markets{client: hub, executor: hub, feed: hub, hub: hub}, nil
	case config.MarketsModeRemote:
		c := remote.New(cfg.Markets.Endpoint, cfg.Markets.Timeout, provideGatewayToken())
		return &markets{client: c, executor: c, feed: c}, nil
	default:
		return nil, fmt.Errorf("unknown markets mode %q", cfg.Markets.Mode)
	}
}

// provideGatewayToken configured token, or tokens signed for the agency address with the
// shared auth secret
func provideGatewayToken() remote.TokenSource {
	if cfg.Markets.Token != "" {
		return remote.StaticToken(cfg.Markets.Token)
	}

	authenticator := provideAuthenticator()
	return func(context.Context) (string, error) {
		return authenticator.Issue(cfg.Agency.Address)
	}
}

func provideAgency(database *db.DB, m *markets) core.AgencyService {
	s := agency.New(
		agency.Config{Address: cfg.Agency.Address},
		provideTransactor(database),
		provideConfigurationStore(database),
		provideMarketStore(database),
		provideInstantiationStore(database),
		provideMembershipStore(database),
		provideTransactionStore(database),
		m.client,
		m.executor,
	)

	if m.hub != nil {
		m.hub.Bind(s)
	}

	return s
}

func provideAuthenticator() *auth.Authenticator {
	return auth.New(auth.Config{
		Secret: cfg.Auth.Secret,
		Issuer: cfg.Auth.Issuer,
		TTL:    cfg.Auth.TTL,
	})
}
