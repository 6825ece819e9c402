package agency

import (
	"context"

	"creditagency/core"
	"creditagency/pkg/number"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

// toCommon converts local credit line values with common = floor(local * rate)
func toCommon(local *core.CreditLineValues, rate decimal.Decimal) (*core.CreditLineValues, error) {
	var (
		v   core.CreditLineValues
		err error
	)

	if v.Collateral, err = number.MulFloor(local.Collateral, rate); err != nil {
		return nil, err
	}
	if v.CreditLine, err = number.MulFloor(local.CreditLine, rate); err != nil {
		return nil, err
	}
	if v.BorrowLimit, err = number.MulFloor(local.BorrowLimit, rate); err != nil {
		return nil, err
	}
	if v.Debt, err = number.MulFloor(local.Debt, rate); err != nil {
		return nil, err
	}

	return &v, nil
}

func sumCreditLines(a, b *core.CreditLineValues) (*core.CreditLineValues, error) {
	var (
		v   core.CreditLineValues
		err error
	)

	if v.Collateral, err = number.CheckedAdd(a.Collateral, b.Collateral); err != nil {
		return nil, err
	}
	if v.CreditLine, err = number.CheckedAdd(a.CreditLine, b.CreditLine); err != nil {
		return nil, err
	}
	if v.BorrowLimit, err = number.CheckedAdd(a.BorrowLimit, b.BorrowLimit); err != nil {
		return nil, err
	}
	if v.Debt, err = number.CheckedAdd(a.Debt, b.Debt); err != nil {
		return nil, err
	}

	return &v, nil
}

// marketCreditLine credit line of account on market in common units
func (s *service) marketCreditLine(ctx context.Context, market, account string) (*core.CreditLineValues, error) {
	local, err := s.marketz.CreditLine(ctx, market, account)
	if err != nil {
		return nil, err
	}

	rate, err := s.marketz.PriceLocalPerCommon(ctx, market)
	if err != nil {
		return nil, err
	}

	return toCommon(local, rate)
}

// aggregate queries every market live, rates are never cached
func (s *service) aggregate(ctx context.Context, account string, markets []string) (*core.CreditLineValues, error) {
	total := core.ZeroCreditLine()

	for _, market := range markets {
		v, err := s.marketCreditLine(ctx, market, account)
		if err != nil {
			logger.FromContext(ctx).WithError(err).WithField("market", market).Infoln("query credit line")
			return nil, err
		}

		if total, err = sumCreditLines(total, v); err != nil {
			return nil, err
		}
	}

	return total, nil
}

func (s *service) TotalCreditLine(ctx context.Context, account string) (*core.CreditLineValues, error) {
	markets, err := s.memberships.Markets(ctx, account)
	if err != nil {
		return nil, err
	}

	return s.aggregate(ctx, account, markets)
}
