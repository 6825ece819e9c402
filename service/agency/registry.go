package agency

import (
	"context"
	"encoding/json"

	"creditagency/core"

	"github.com/asaskevich/govalidator"
	"github.com/fox-one/pkg/logger"
)

const (
	defaultMarketsLimit = 10
	maxMarketsLimit     = 30
)

func (s *service) governance(ctx context.Context, sender string) (*core.Configuration, error) {
	cfg, err := s.configs.Find(ctx)
	if err != nil {
		logger.FromContext(ctx).WithError(err).Errorln("configs.Find")
		return nil, err
	}

	if !cfg.IsGovernance(sender) {
		return nil, core.ErrUnauthorized
	}

	return cfg, nil
}

func (s *service) CreateMarket(ctx context.Context, sender string, spec *core.MarketSpec) (uint64, error) {
	log := logger.FromContext(ctx).WithField("token", spec.Token.String())

	if _, err := govalidator.ValidateStruct(spec); err != nil || spec.Token.IsZero() {
		return 0, core.ErrInvalidArgument
	}

	var correlationID uint64
	err := s.apply(ctx, func(ctx context.Context, b *batch) error {
		cfg, err := s.governance(ctx, sender)
		if err != nil {
			return err
		}

		if spec.CollateralRatio.GreaterThanOrEqual(cfg.LiquidationPrice) {
			return core.ErrCollateralConfigInvalid
		}

		existing, err := s.markets.Find(ctx, spec.Token)
		if err != nil {
			log.WithError(err).Errorln("markets.Find")
			return err
		}

		if existing != nil {
			if existing.State == core.MarketStateReady {
				return core.ErrMarketAlreadyExists
			}

			return core.ErrMarketCreating
		}

		market := &core.Market{
			Token: spec.Token,
			State: core.MarketStateInstantiating,
			Spec:  spec.Format(),
		}
		if err := s.markets.Create(ctx, market); err != nil {
			log.WithError(err).Errorln("markets.Create")
			return err
		}

		inst := &core.Instantiation{Token: spec.Token}
		if err := s.instantiations.Create(ctx, inst); err != nil {
			log.WithError(err).Errorln("instantiations.Create")
			return err
		}
		correlationID = inst.ID

		b.send(core.NewInstantiateMsg(s.cfg.Address, &core.InstantiateMarket{
			ID:               inst.ID,
			CodeID:           cfg.MarketTemplateID,
			Spec:             *spec,
			RewardToken:      cfg.RewardToken,
			CommonToken:      cfg.CommonToken,
			TokenTemplateID:  cfg.TokenTemplateID,
			Governance:       cfg.Governance,
			BorrowLimitRatio: cfg.BorrowLimitRatio,
		}))

		t := b.log(core.ActionTypeCreateMarket, sender, "")
		t.Asset = spec.Token.String()
		t.Data = core.NewTransactionExtra().
			Put("id", inst.ID).
			Put("spec", spec).
			Format()
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.WithField("id", correlationID).Infoln("market instantiating")
	return correlationID, nil
}

func (s *service) HandleInstantiated(ctx context.Context, reply *core.InstantiateReply) error {
	log := logger.FromContext(ctx).WithField("id", reply.ID)

	var failure error
	err := s.apply(ctx, func(ctx context.Context, b *batch) error {
		inst, err := s.instantiations.Take(ctx, reply.ID)
		if err != nil {
			log.WithError(err).Errorln("instantiations.Take")
			return err
		}

		if inst == nil {
			return core.ErrUnknownInstantiation
		}

		market, err := s.markets.Find(ctx, inst.Token)
		if err != nil {
			log.WithError(err).Errorln("markets.Find")
			return err
		}

		if market == nil || market.State != core.MarketStateInstantiating {
			return core.ErrUnknownInstantiation
		}

		if reply.Error != "" || reply.Address == "" {
			detail := reply.Error
			if detail == "" {
				detail = "empty market address"
			}

			// release the asset so it can be created again
			if err := s.markets.Delete(ctx, inst.Token); err != nil {
				log.WithError(err).Errorln("markets.Delete")
				return err
			}

			t := b.log(core.ActionTypeMarketFailed, "", "")
			t.Asset = inst.Token.String()
			t.Data = core.NewTransactionExtra().Put("id", reply.ID).Put("error", detail).Format()

			failure = &core.InstantiationFailedError{ID: reply.ID, Detail: detail}
			return nil
		}

		market.State = core.MarketStateReady
		market.Address = reply.Address
		if err := s.markets.Update(ctx, market); err != nil {
			log.WithError(err).Errorln("markets.Update")
			return err
		}

		t := b.log(core.ActionTypeMarketReady, "", "")
		t.Asset = inst.Token.String()
		t.Market = reply.Address
		t.Data = core.NewTransactionExtra().Put("id", reply.ID).Format()
		return nil
	})
	if err != nil {
		return err
	}

	if failure != nil {
		log.WithError(failure).Infoln("market instantiation failed")
		return failure
	}

	log.WithField("address", reply.Address).Infoln("market ready")
	return nil
}

func (s *service) Market(ctx context.Context, token core.Token) (*core.Market, error) {
	market, err := s.markets.Find(ctx, token)
	if err != nil {
		return nil, err
	}

	if market == nil {
		return nil, core.ErrNoMarket
	}

	if !market.IsReady() {
		return nil, core.ErrMarketCreating
	}

	return market, nil
}

// readyMarket address of the ready market trading token
func (s *service) readyMarket(ctx context.Context, token core.Token) (string, error) {
	market, err := s.Market(ctx, token)
	if err != nil {
		return "", err
	}

	return market.Address, nil
}

func (s *service) ListMarkets(ctx context.Context, after *core.Token, limit int) ([]*core.Market, error) {
	if limit <= 0 {
		limit = defaultMarketsLimit
	} else if limit > maxMarketsLimit {
		limit = maxMarketsLimit
	}

	return s.markets.List(ctx, after, limit)
}

func (s *service) AdjustMarketTemplate(ctx context.Context, sender string, codeID uint64) error {
	return s.apply(ctx, func(ctx context.Context, b *batch) error {
		cfg, err := s.governance(ctx, sender)
		if err != nil {
			return err
		}

		from := cfg.MarketTemplateID
		cfg.MarketTemplateID = codeID
		if err := s.configs.Save(ctx, cfg); err != nil {
			logger.FromContext(ctx).WithError(err).Errorln("configs.Save")
			return err
		}

		t := b.log(core.ActionTypeAdjustMarketTemplate, sender, "")
		t.Data = core.NewTransactionExtra().Put("from", from).Put("to", codeID).Format()
		return nil
	})
}

func (s *service) AdjustTokenTemplate(ctx context.Context, sender string, codeID uint64) error {
	return s.apply(ctx, func(ctx context.Context, b *batch) error {
		cfg, err := s.governance(ctx, sender)
		if err != nil {
			return err
		}

		from := cfg.TokenTemplateID
		cfg.TokenTemplateID = codeID
		if err := s.configs.Save(ctx, cfg); err != nil {
			logger.FromContext(ctx).WithError(err).Errorln("configs.Save")
			return err
		}

		t := b.log(core.ActionTypeAdjustTokenTemplate, sender, "")
		t.Data = core.NewTransactionExtra().Put("from", from).Put("to", codeID).Format()
		return nil
	})
}

func (s *service) MigrateMarket(ctx context.Context, sender, address string, migration json.RawMessage) error {
	return s.apply(ctx, func(ctx context.Context, b *batch) error {
		cfg, err := s.governance(ctx, sender)
		if err != nil {
			return err
		}

		market, err := s.markets.FindByAddress(ctx, address)
		if err != nil {
			logger.FromContext(ctx).WithError(err).Errorln("markets.FindByAddress")
			return err
		}

		if market == nil {
			return core.ErrMarketNotFound
		}

		b.send(core.NewMigrateMsg(address, s.cfg.Address, cfg.MarketTemplateID, migration))

		t := b.log(core.ActionTypeMigrateMarket, sender, "")
		t.Market = address
		t.Asset = market.Token.String()
		t.Data = core.NewTransactionExtra().Put("code_id", cfg.MarketTemplateID).Format()
		return nil
	})
}
