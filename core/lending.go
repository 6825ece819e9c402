package core

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// MarketConfiguration configuration reported by a market
type MarketConfiguration struct {
	Token            Token           `json:"token"`
	CommonToken      Token           `json:"common_token"`
	CollateralRatio  decimal.Decimal `json:"collateral_ratio"`
	BorrowLimitRatio decimal.Decimal `json:"borrow_limit_ratio"`
	TokenTemplateID  uint64          `json:"token_template_id"`
	CodeID           uint64          `json:"code_id"`
	Governance       string          `json:"governance"`
}

// MarketClient queries a market by address
type MarketClient interface {
	// CreditLine of the account in market local units
	CreditLine(ctx context.Context, market, account string) (*CreditLineValues, error)
	TokensBalance(ctx context.Context, market, account string) (*TokensBalance, error)
	// PriceLocalPerCommon common = local * rate
	PriceLocalPerCommon(ctx context.Context, market string) (decimal.Decimal, error)
	Configuration(ctx context.Context, market string) (*MarketConfiguration, error)
}

// MarketEntry a market reports that it started tracking an account
type MarketEntry struct {
	Market  string `json:"market"`
	Account string `json:"account"`
}

// MarketExecutor applies a batch of market commands atomically
type MarketExecutor interface {
	Execute(ctx context.Context, msgs []*MarketMsg) ([]*MarketEntry, error)
}

// PriceOracle bilateral exchange rates, amount_to = amount_from * rate
type PriceOracle interface {
	Rate(ctx context.Context, from, to Token) (decimal.Decimal, error)
}

// MarketMsgType market command type
type MarketMsgType int

const (
	_ MarketMsgType = iota
	// MarketMsgInstantiate create a market from a code template
	MarketMsgInstantiate
	// MarketMsgRepayOnBehalf repay debt of an account with attached funds
	MarketMsgRepayOnBehalf
	// MarketMsgTransferCollateral move collateral worth a common amount between accounts
	MarketMsgTransferCollateral
	// MarketMsgSwapWithdrawFrom withdraw collateral, swap it and deliver the bought coin
	MarketMsgSwapWithdrawFrom
	// MarketMsgSetCommonToken change the common token of a market
	MarketMsgSetCommonToken
	// MarketMsgMigrate move a market to another code template
	MarketMsgMigrate
)

var marketMsgNames = map[MarketMsgType]string{
	MarketMsgInstantiate:        "instantiate",
	MarketMsgRepayOnBehalf:      "repay_on_behalf",
	MarketMsgTransferCollateral: "transfer_collateral",
	MarketMsgSwapWithdrawFrom:   "swap_withdraw_from",
	MarketMsgSetCommonToken:     "set_common_token",
	MarketMsgMigrate:            "migrate",
}

func (t MarketMsgType) String() string {
	if name, ok := marketMsgNames[t]; ok {
		return name
	}

	return "unknown"
}

// InstantiateMarket parameters a market is instantiated with
type InstantiateMarket struct {
	ID               uint64          `json:"id"`
	CodeID           uint64          `json:"code_id"`
	Spec             MarketSpec      `json:"spec"`
	RewardToken      Token           `json:"reward_token"`
	CommonToken      Token           `json:"common_token"`
	TokenTemplateID  uint64          `json:"token_template_id"`
	Governance       string          `json:"governance"`
	BorrowLimitRatio decimal.Decimal `json:"borrow_limit_ratio"`
}

// MarketMsg command sent to a market
type MarketMsg struct {
	Type   MarketMsgType `json:"type"`
	Market string        `json:"market,omitempty"`
	// identity issuing the command, attached funds are taken from it
	Sender      string `json:"sender,omitempty"`
	Account     string `json:"account,omitempty"`
	Destination string `json:"destination,omitempty"`
	// repay funds or the coin to buy
	Funds *Coin `json:"funds,omitempty"`
	// most collateral a swap may sell
	SellLimit        *Coin              `json:"sell_limit,omitempty"`
	CommonAmount     decimal.Decimal    `json:"common_amount,omitempty"`
	LiquidationPrice decimal.Decimal    `json:"liquidation_price,omitempty"`
	CommonToken      *Token             `json:"common_token,omitempty"`
	Instantiate      *InstantiateMarket `json:"instantiate,omitempty"`
	CodeID           uint64             `json:"code_id,omitempty"`
	Migration        json.RawMessage    `json:"migration,omitempty"`
}

// NewInstantiateMsg instantiate market command
func NewInstantiateMsg(sender string, req *InstantiateMarket) *MarketMsg {
	return &MarketMsg{
		Type:        MarketMsgInstantiate,
		Sender:      sender,
		Instantiate: req,
	}
}

// NewRepayOnBehalfMsg repay debt of account on market with funds owned by sender
func NewRepayOnBehalfMsg(market, sender, account string, funds Coin) *MarketMsg {
	return &MarketMsg{
		Type:    MarketMsgRepayOnBehalf,
		Market:  market,
		Sender:  sender,
		Account: account,
		Funds:   &funds,
	}
}

// NewTransferCollateralMsg transfer collateral worth amount of common token from source to destination
func NewTransferCollateralMsg(market, sender, source, destination string, amount, liquidationPrice decimal.Decimal) *MarketMsg {
	return &MarketMsg{
		Type:             MarketMsgTransferCollateral,
		Market:           market,
		Sender:           sender,
		Account:          source,
		Destination:      destination,
		CommonAmount:     amount,
		LiquidationPrice: liquidationPrice,
	}
}

// NewSwapWithdrawFromMsg withdraw at most sellLimit collateral of account, swap to buy and send it to destination
func NewSwapWithdrawFromMsg(market, sender, account, destination string, sellLimit, buy Coin) *MarketMsg {
	return &MarketMsg{
		Type:        MarketMsgSwapWithdrawFrom,
		Market:      market,
		Sender:      sender,
		Account:     account,
		Destination: destination,
		SellLimit:   &sellLimit,
		Funds:       &buy,
	}
}

// NewSetCommonTokenMsg set common token command
func NewSetCommonTokenMsg(market, sender string, token Token) *MarketMsg {
	return &MarketMsg{
		Type:        MarketMsgSetCommonToken,
		Market:      market,
		Sender:      sender,
		CommonToken: &token,
	}
}

// NewMigrateMsg migrate market command
func NewMigrateMsg(market, sender string, codeID uint64, migration json.RawMessage) *MarketMsg {
	return &MarketMsg{
		Type:      MarketMsgMigrate,
		Market:    market,
		Sender:    sender,
		CodeID:    codeID,
		Migration: migration,
	}
}
