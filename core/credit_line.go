package core

import "github.com/shopspring/decimal"

// CreditLineValues collateral, credit line, borrow limit and debt of an account
//
// Values returned by a market are in market local units, aggregated values are in common token units.
type CreditLineValues struct {
	Collateral  decimal.Decimal `json:"collateral"`
	CreditLine  decimal.Decimal `json:"credit_line"`
	BorrowLimit decimal.Decimal `json:"borrow_limit"`
	Debt        decimal.Decimal `json:"debt"`
}

// ZeroCreditLine all zero values
func ZeroCreditLine() *CreditLineValues {
	return &CreditLineValues{
		Collateral:  decimal.Zero,
		CreditLine:  decimal.Zero,
		BorrowLimit: decimal.Zero,
		Debt:        decimal.Zero,
	}
}

// IsLiquidatable debt strictly above credit line
func (c *CreditLineValues) IsLiquidatable() bool {
	return c.Debt.GreaterThan(c.CreditLine)
}

// TokensBalance collateral and debt of an account on a market, in market local units
type TokensBalance struct {
	Collateral Coin `json:"collateral"`
	Debt       Coin `json:"debt"`
}

// MarketCoin coin held on a market
type MarketCoin struct {
	Market string `json:"market"`
	Coin   Coin   `json:"coin"`
}

// Liquidation liquidation overview of an account
type Liquidation struct {
	CanLiquidate bool          `json:"can_liquidate"`
	Debt         []*MarketCoin `json:"debt"`
	Collateral   []*MarketCoin `json:"collateral"`
}
