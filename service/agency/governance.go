package agency

import (
	"context"

	"creditagency/core"

	"github.com/fox-one/pkg/logger"
)

// AdjustCommonToken switches the valuation unit and tells every ready market
func (s *service) AdjustCommonToken(ctx context.Context, sender string, token core.Token) error {
	if token.IsZero() {
		return core.ErrInvalidArgument
	}

	return s.apply(ctx, func(ctx context.Context, b *batch) error {
		cfg, err := s.governance(ctx, sender)
		if err != nil {
			return err
		}

		from := cfg.CommonToken
		cfg.CommonToken = token
		if err := s.configs.Save(ctx, cfg); err != nil {
			logger.FromContext(ctx).WithError(err).Errorln("configs.Save")
			return err
		}

		markets, err := s.markets.All(ctx)
		if err != nil {
			logger.FromContext(ctx).WithError(err).Errorln("markets.All")
			return err
		}

		for _, market := range markets {
			if market.IsReady() {
				b.send(core.NewSetCommonTokenMsg(market.Address, s.cfg.Address, token))
			}
		}

		t := b.log(core.ActionTypeAdjustCommonToken, sender, "")
		t.Asset = token.String()
		t.Data = core.NewTransactionExtra().Put("from", from.String()).Format()
		return nil
	})
}
