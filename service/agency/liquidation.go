package agency

import (
	"context"

	"creditagency/core"
	"creditagency/pkg/number"

	"github.com/fox-one/pkg/logger"
)

func (s *service) IsLiquidatable(ctx context.Context, account string) (bool, error) {
	total, err := s.TotalCreditLine(ctx, account)
	if err != nil {
		return false, err
	}

	return total.IsLiquidatable(), nil
}

func (s *service) Liquidate(ctx context.Context, liquidator, account string, funds []core.Coin, collateral core.Token) error {
	log := logger.FromContext(ctx).WithField("account", account).WithField("liquidator", liquidator)

	if len(funds) != 1 {
		return core.ErrMultipleDenomsSent
	}
	repay := funds[0]
	if err := number.ValidAmount(repay.Amount); err != nil {
		return err
	}

	// nothing to repay
	if repay.Amount.IsZero() {
		return core.ErrInvalidAmount
	}

	return s.apply(ctx, func(ctx context.Context, b *batch) error {
		cfg, err := s.configs.Find(ctx)
		if err != nil {
			log.WithError(err).Errorln("configs.Find")
			return err
		}

		total, err := s.TotalCreditLine(ctx, account)
		if err != nil {
			return err
		}

		if !total.IsLiquidatable() {
			return core.ErrLiquidationNotAllowed
		}

		debtMarket, err := s.readyMarket(ctx, repay.Token)
		if err != nil {
			return err
		}

		collateralMarket, err := s.readyMarket(ctx, collateral)
		if err != nil {
			return err
		}

		b.send(core.NewRepayOnBehalfMsg(debtMarket, liquidator, account, repay))

		rate, err := s.marketz.PriceLocalPerCommon(ctx, debtMarket)
		if err != nil {
			return err
		}

		amount, err := number.MulFloor(repay.Amount, rate)
		if err != nil {
			return err
		}

		// the liquidator receives collateral in the collateral market
		if err := s.enter(ctx, b, collateralMarket, liquidator); err != nil {
			return err
		}

		b.send(core.NewTransferCollateralMsg(
			collateralMarket,
			s.cfg.Address,
			account,
			liquidator,
			amount,
			cfg.LiquidationPrice,
		))

		t := b.log(core.ActionTypeLiquidate, liquidator, account)
		t.Market = debtMarket
		t.Asset = repay.Token.String()
		t.Amount = repay.Amount
		t.Data = core.NewTransactionExtra().
			Put("collateral_market", collateralMarket).
			Put("common_amount", amount).
			Put("liquidation_price", cfg.LiquidationPrice).
			Put("debt", total.Debt).
			Put("credit_line", total.CreditLine).
			Format()

		log.WithField("common_amount", amount).Infoln("liquidate")
		return nil
	})
}

// Liquidation lists non zero debt and collateral balances of the account
func (s *service) Liquidation(ctx context.Context, account string) (*core.Liquidation, error) {
	markets, err := s.memberships.Markets(ctx, account)
	if err != nil {
		return nil, err
	}

	total, err := s.aggregate(ctx, account, markets)
	if err != nil {
		return nil, err
	}

	view := &core.Liquidation{
		CanLiquidate: total.IsLiquidatable(),
		Debt:         []*core.MarketCoin{},
		Collateral:   []*core.MarketCoin{},
	}

	for _, market := range markets {
		balance, err := s.marketz.TokensBalance(ctx, market, account)
		if err != nil {
			return nil, err
		}

		if !balance.Debt.IsZero() {
			view.Debt = append(view.Debt, &core.MarketCoin{Market: market, Coin: balance.Debt})
		}

		if !balance.Collateral.IsZero() {
			view.Collateral = append(view.Collateral, &core.MarketCoin{Market: market, Coin: balance.Collateral})
		}
	}

	return view, nil
}
