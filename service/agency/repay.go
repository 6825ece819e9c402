package agency

import (
	"context"

	"creditagency/core"
	"creditagency/pkg/number"

	"github.com/fox-one/pkg/logger"
)

// RepayWithCollateral admits the repayment with a simulated solvency check on current rates
func (s *service) RepayWithCollateral(ctx context.Context, sender string, maxCollateral, amountToRepay core.Coin) error {
	log := logger.FromContext(ctx).WithField("sender", sender)

	if err := number.ValidAmount(maxCollateral.Amount); err != nil {
		return err
	}
	if err := number.ValidAmount(amountToRepay.Amount); err != nil {
		return err
	}

	if amountToRepay.Amount.IsZero() {
		return core.ErrInvalidAmount
	}

	return s.apply(ctx, func(ctx context.Context, b *batch) error {
		collateralMarket, err := s.readyMarket(ctx, maxCollateral.Token)
		if err != nil {
			return err
		}

		debtMarket, err := s.readyMarket(ctx, amountToRepay.Token)
		if err != nil {
			return err
		}

		for _, market := range []string{collateralMarket, debtMarket} {
			on, err := s.memberships.Has(ctx, sender, market)
			if err != nil {
				log.WithError(err).Errorln("memberships.Has")
				return err
			}

			if !on {
				return &core.NotMemberError{Account: sender, Market: market}
			}
		}

		tcr, err := s.TotalCreditLine(ctx, sender)
		if err != nil {
			return err
		}

		collateralRate, err := s.marketz.PriceLocalPerCommon(ctx, collateralMarket)
		if err != nil {
			return err
		}

		debtRate, err := s.marketz.PriceLocalPerCommon(ctx, debtMarket)
		if err != nil {
			return err
		}

		collateralValue, err := number.MulFloor(maxCollateral.Amount, collateralRate)
		if err != nil {
			return err
		}

		repayValue, err := number.MulFloor(amountToRepay.Amount, debtRate)
		if err != nil {
			return err
		}

		marketCfg, err := s.marketz.Configuration(ctx, collateralMarket)
		if err != nil {
			return err
		}

		creditLine, err := number.CheckedSub(tcr.CreditLine, collateralValue.Mul(marketCfg.CollateralRatio).Floor())
		if err != nil {
			return err
		}

		debt, err := number.CheckedSub(tcr.Debt, repayValue)
		if err != nil {
			return err
		}

		if debt.GreaterThan(creditLine) {
			return core.ErrRepaymentWouldUndercollateralize
		}

		b.send(
			core.NewSwapWithdrawFromMsg(collateralMarket, s.cfg.Address, sender, s.cfg.Address, maxCollateral, amountToRepay),
			core.NewRepayOnBehalfMsg(debtMarket, s.cfg.Address, sender, amountToRepay),
		)

		t := b.log(core.ActionTypeRepayWithCollateral, sender, sender)
		t.Market = debtMarket
		t.Asset = amountToRepay.Token.String()
		t.Amount = amountToRepay.Amount
		t.Data = core.NewTransactionExtra().
			Put("collateral_market", collateralMarket).
			Put("max_collateral", maxCollateral.Amount).
			Put("simulated_credit_line", creditLine).
			Put("simulated_debt", debt).
			Format()
		return nil
	})
}
