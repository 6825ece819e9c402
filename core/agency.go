package core

import (
	"context"
	"encoding/json"
)

// AgencyService credit agency operations
type AgencyService interface {
	// Init stores the initial configuration, once
	Init(ctx context.Context, cfg *Configuration) error

	// governance

	CreateMarket(ctx context.Context, sender string, spec *MarketSpec) (uint64, error)
	AdjustMarketTemplate(ctx context.Context, sender string, id uint64) error
	AdjustTokenTemplate(ctx context.Context, sender string, id uint64) error
	AdjustCommonToken(ctx context.Context, sender string, token Token) error
	MigrateMarket(ctx context.Context, sender, market string, migration json.RawMessage) error

	// HandleInstantiated applies a market instantiation acknowledgement
	HandleInstantiated(ctx context.Context, reply *InstantiateReply) error

	// EnterMarket is called by a market on behalf of account
	EnterMarket(ctx context.Context, market, account string) error
	ExitMarket(ctx context.Context, account, market string) error
	Liquidate(ctx context.Context, liquidator, account string, funds []Coin, collateral Token) error
	RepayWithCollateral(ctx context.Context, sender string, maxCollateral, amountToRepay Coin) error

	// queries

	Configuration(ctx context.Context) (*Configuration, error)
	Market(ctx context.Context, token Token) (*Market, error)
	ListMarkets(ctx context.Context, after *Token, limit int) ([]*Market, error)
	TotalCreditLine(ctx context.Context, account string) (*CreditLineValues, error)
	IsLiquidatable(ctx context.Context, account string) (bool, error)
	ListEnteredMarkets(ctx context.Context, account, after string, limit int) ([]string, error)
	IsOnMarket(ctx context.Context, account, market string) (bool, error)
	Liquidation(ctx context.Context, account string) (*Liquidation, error)
}
