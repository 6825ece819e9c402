package views

import (
	"creditagency/core"
)

// CreditLine credit line of an account in common token coins
type CreditLine struct {
	Collateral  core.Coin `json:"collateral"`
	CreditLine  core.Coin `json:"credit_line"`
	BorrowLimit core.Coin `json:"borrow_limit"`
	Debt        core.Coin `json:"debt"`
}

// CreditLineView attach the common token to the values
func CreditLineView(v *core.CreditLineValues, common core.Token) CreditLine {
	return CreditLine{
		Collateral:  core.NewCoin(common, v.Collateral),
		CreditLine:  core.NewCoin(common, v.CreditLine),
		BorrowLimit: core.NewCoin(common, v.BorrowLimit),
		Debt:        core.NewCoin(common, v.Debt),
	}
}

// EnteredMarkets entered markets page
type EnteredMarkets struct {
	Account string   `json:"account"`
	Markets []string `json:"markets"`
}
