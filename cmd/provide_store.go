package cmd

import (
	"creditagency/core"
	"creditagency/store/configuration"
	"creditagency/store/instantiation"
	"creditagency/store/market"
	"creditagency/store/membership"
	"creditagency/store/session"
	"creditagency/store/transaction"

	"github.com/fox-one/pkg/property"
	"github.com/fox-one/pkg/store/db"
	propertystore "github.com/fox-one/pkg/store/property"
)

func provideDatabase() *db.DB {
	return db.MustOpen(cfg.DB)
}

func provideTransactor(database *db.DB) core.Transactor {
	return session.New(database)
}

func providePropertyStore(database *db.DB) property.Store {
	return propertystore.New(database)
}

func provideConfigurationStore(database *db.DB) core.ConfigurationStore {
	return configuration.New(database)
}

func provideMarketStore(database *db.DB) core.MarketStore {
	return market.Cache(market.New(database), cfg.Markets.CacheSize)
}

func provideInstantiationStore(database *db.DB) core.InstantiationStore {
	return instantiation.New(database)
}

func provideMembershipStore(database *db.DB) core.MembershipStore {
	return membership.New(database)
}

func provideTransactionStore(database *db.DB) core.TransactionStore {
	return transaction.New(database)
}
