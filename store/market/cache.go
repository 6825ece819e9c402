package market

import (
	"context"
	"fmt"

	"creditagency/core"
	"creditagency/store/session"

	"github.com/bluele/gcache"
	"golang.org/x/sync/singleflight"
)

// Cache caches ready markets, a ready market keeps its token and address for the lifetime of the agency
func Cache(store core.MarketStore, size int) core.MarketStore {
	return &cacheMarketStore{
		MarketStore: store,
		cache:       gcache.New(size).LRU().Build(),
		sf:          &singleflight.Group{},
	}
}

type cacheMarketStore struct {
	core.MarketStore
	cache gcache.Cache
	sf    *singleflight.Group
}

func (s *cacheMarketStore) Find(ctx context.Context, token core.Token) (*core.Market, error) {
	if session.InTx(ctx) {
		return s.MarketStore.Find(ctx, token)
	}

	key := s.tokenKey(token)
	if v, err := s.cache.Get(key); err == nil {
		if market, ok := v.(*core.Market); ok {
			return market, nil
		}
	}

	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		return s.MarketStore.Find(ctx, token)
	})
	if err != nil {
		return nil, err
	}

	market, _ := v.(*core.Market)
	s.cacheMarket(market)
	return market, nil
}

func (s *cacheMarketStore) FindByAddress(ctx context.Context, address string) (*core.Market, error) {
	if session.InTx(ctx) {
		return s.MarketStore.FindByAddress(ctx, address)
	}

	key := s.addressKey(address)
	if v, err := s.cache.Get(key); err == nil {
		if market, ok := v.(*core.Market); ok {
			return market, nil
		}
	}

	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		return s.MarketStore.FindByAddress(ctx, address)
	})
	if err != nil {
		return nil, err
	}

	market, _ := v.(*core.Market)
	s.cacheMarket(market)
	return market, nil
}

func (s *cacheMarketStore) Delete(ctx context.Context, token core.Token) error {
	s.cache.Remove(s.tokenKey(token))
	return s.MarketStore.Delete(ctx, token)
}

func (s *cacheMarketStore) cacheMarket(market *core.Market) {
	if market == nil || !market.IsReady() {
		return
	}

	s.cache.Set(s.tokenKey(market.Token), market)
	s.cache.Set(s.addressKey(market.Address), market)
}

func (s *cacheMarketStore) tokenKey(token core.Token) string {
	return fmt.Sprintf("market:token:%s", token)
}

func (s *cacheMarketStore) addressKey(address string) string {
	return fmt.Sprintf("market:address:%s", address)
}
