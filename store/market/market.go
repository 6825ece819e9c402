package market

import (
	"context"

	"creditagency/core"
	"creditagency/store/session"

	"github.com/fox-one/pkg/store"
	"github.com/fox-one/pkg/store/db"
	"github.com/pkg/errors"
)

type marketStore struct {
	db *db.DB
}

// New new market store
func New(db *db.DB) core.MarketStore {
	return &marketStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Market{})
		if err := tx.AutoMigrate(core.Market{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *marketStore) Create(ctx context.Context, market *core.Market) error {
	market.TokenKind = market.Token.Kind
	market.Denom = market.Token.Denom
	if err := session.DB(ctx, s.db).Update().Create(market).Error; err != nil {
		return errors.Wrap(err, "markets.Create")
	}

	return nil
}

func (s *marketStore) Update(ctx context.Context, market *core.Market) error {
	err := session.DB(ctx, s.db).Update().Model(core.Market{}).
		Where("token_kind = ? AND denom = ?", market.Token.Kind, market.Token.Denom).
		Updates(map[string]interface{}{
			"state":   market.State,
			"address": market.Address,
		}).Error
	if err != nil {
		return errors.Wrap(err, "markets.Update")
	}

	return nil
}

func (s *marketStore) Delete(ctx context.Context, token core.Token) error {
	err := session.DB(ctx, s.db).Update().
		Where("token_kind = ? AND denom = ?", token.Kind, token.Denom).
		Delete(core.Market{}).Error
	if err != nil {
		return errors.Wrap(err, "markets.Delete")
	}

	return nil
}

func (s *marketStore) Find(ctx context.Context, token core.Token) (*core.Market, error) {
	var market core.Market
	err := session.DB(ctx, s.db).View().
		Where("token_kind = ? AND denom = ?", token.Kind, token.Denom).
		First(&market).Error
	if store.IsErrNotFound(err) {
		return nil, nil
	} else if err != nil {
		return nil, errors.Wrap(err, "markets.Find")
	}

	return afterFind(&market), nil
}

func (s *marketStore) FindByAddress(ctx context.Context, address string) (*core.Market, error) {
	var market core.Market
	err := session.DB(ctx, s.db).View().
		Where("state = ? AND address = ?", core.MarketStateReady, address).
		First(&market).Error
	if store.IsErrNotFound(err) {
		return nil, nil
	} else if err != nil {
		return nil, errors.Wrap(err, "markets.FindByAddress")
	}

	return afterFind(&market), nil
}

func (s *marketStore) List(ctx context.Context, after *core.Token, limit int) ([]*core.Market, error) {
	query := session.DB(ctx, s.db).View().Where("state = ?", core.MarketStateReady)
	if after != nil {
		query = query.Where("token_kind > ? OR (token_kind = ? AND denom > ?)", after.Kind, after.Kind, after.Denom)
	}

	var markets []*core.Market
	if err := query.Order("token_kind, denom").Limit(limit).Find(&markets).Error; err != nil {
		return nil, errors.Wrap(err, "markets.List")
	}

	for _, m := range markets {
		afterFind(m)
	}

	return markets, nil
}

func (s *marketStore) All(ctx context.Context) ([]*core.Market, error) {
	var markets []*core.Market
	if err := session.DB(ctx, s.db).View().Order("token_kind, denom").Find(&markets).Error; err != nil {
		return nil, errors.Wrap(err, "markets.All")
	}

	for _, m := range markets {
		afterFind(m)
	}

	return markets, nil
}

func afterFind(market *core.Market) *core.Market {
	market.Token = core.Token{Kind: market.TokenKind, Denom: market.Denom}
	return market
}
