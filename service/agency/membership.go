package agency

import (
	"context"

	"creditagency/core"

	"github.com/fox-one/pkg/logger"
)

// EnterMarket is accepted only from a ready market of the registry
func (s *service) EnterMarket(ctx context.Context, market, account string) error {
	return s.apply(ctx, func(ctx context.Context, b *batch) error {
		m, err := s.markets.FindByAddress(ctx, market)
		if err != nil {
			logger.FromContext(ctx).WithError(err).Errorln("markets.FindByAddress")
			return err
		}

		if m == nil {
			return core.ErrUnauthorized
		}

		return s.enter(ctx, b, market, account)
	})
}

func (s *service) enter(ctx context.Context, b *batch, market, account string) error {
	b.member(market, account)

	on, err := s.memberships.Has(ctx, account, market)
	if err != nil {
		logger.FromContext(ctx).WithError(err).Errorln("memberships.Has")
		return err
	}

	if on {
		return nil
	}

	if err := s.memberships.Add(ctx, account, market); err != nil {
		logger.FromContext(ctx).WithError(err).Errorln("memberships.Add")
		return err
	}

	t := b.log(core.ActionTypeEnterMarket, market, account)
	t.Market = market
	return nil
}

func (s *service) ExitMarket(ctx context.Context, account, market string) error {
	log := logger.FromContext(ctx).WithField("account", account).WithField("market", market)

	return s.apply(ctx, func(ctx context.Context, b *batch) error {
		markets, err := s.memberships.Markets(ctx, account)
		if err != nil {
			log.WithError(err).Errorln("memberships.Markets")
			return err
		}

		remaining := make([]string, 0, len(markets))
		for _, m := range markets {
			if m != market {
				remaining = append(remaining, m)
			}
		}

		if len(remaining) == len(markets) {
			return &core.NotMemberError{Account: account, Market: market}
		}

		local, err := s.marketz.CreditLine(ctx, market, account)
		if err != nil {
			return err
		}

		if !local.Debt.IsZero() {
			cfg, err := s.marketz.Configuration(ctx, market)
			if err != nil {
				return err
			}

			return &core.DebtRemainingError{
				Account: account,
				Market:  market,
				Debt:    core.NewCoin(cfg.Token, local.Debt),
			}
		}

		total, err := s.aggregate(ctx, account, remaining)
		if err != nil {
			return err
		}

		if total.CreditLine.LessThan(total.Debt) {
			return &core.UndercollateralizedExitError{
				Debt:       total.Debt,
				CreditLine: total.CreditLine,
				Collateral: total.Collateral,
			}
		}

		if err := s.memberships.Remove(ctx, account, market); err != nil {
			log.WithError(err).Errorln("memberships.Remove")
			return err
		}

		t := b.log(core.ActionTypeExitMarket, account, account)
		t.Market = market
		return nil
	})
}

func (s *service) ListEnteredMarkets(ctx context.Context, account, after string, limit int) ([]string, error) {
	markets, err := s.memberships.Markets(ctx, account)
	if err != nil {
		return nil, err
	}

	list := make([]string, 0, len(markets))
	for _, m := range markets {
		if after != "" && m <= after {
			continue
		}

		if limit > 0 && len(list) >= limit {
			break
		}

		list = append(list, m)
	}

	return list, nil
}

func (s *service) IsOnMarket(ctx context.Context, account, market string) (bool, error) {
	return s.memberships.Has(ctx, account, market)
}
