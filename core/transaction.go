package core

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"
)

// ActionType agency action
type ActionType int

const (
	_ ActionType = iota
	// ActionTypeCreateMarket create market requested
	ActionTypeCreateMarket
	// ActionTypeMarketReady market instantiated
	ActionTypeMarketReady
	// ActionTypeMarketFailed market instantiation failed
	ActionTypeMarketFailed
	// ActionTypeEnterMarket account entered market
	ActionTypeEnterMarket
	// ActionTypeExitMarket account exited market
	ActionTypeExitMarket
	// ActionTypeLiquidate account liquidated
	ActionTypeLiquidate
	// ActionTypeRepayWithCollateral debt repaid with collateral
	ActionTypeRepayWithCollateral
	// ActionTypeAdjustMarketTemplate market template changed
	ActionTypeAdjustMarketTemplate
	// ActionTypeAdjustTokenTemplate token template changed
	ActionTypeAdjustTokenTemplate
	// ActionTypeAdjustCommonToken common token changed
	ActionTypeAdjustCommonToken
	// ActionTypeMigrateMarket market migrated
	ActionTypeMigrateMarket
)

var actionNames = map[ActionType]string{
	ActionTypeCreateMarket:         "create_market",
	ActionTypeMarketReady:          "market_ready",
	ActionTypeMarketFailed:         "market_failed",
	ActionTypeEnterMarket:          "enter_market",
	ActionTypeExitMarket:           "exit_market",
	ActionTypeLiquidate:            "liquidate",
	ActionTypeRepayWithCollateral:  "repay_with_collateral",
	ActionTypeAdjustMarketTemplate: "adjust_market_template",
	ActionTypeAdjustTokenTemplate:  "adjust_token_template",
	ActionTypeAdjustCommonToken:    "adjust_common_token",
	ActionTypeMigrateMarket:        "migrate_market",
}

func (a ActionType) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}

	return "unknown"
}

// MarshalJSON action as name
func (a ActionType) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// TransactionExtraData extra data
type TransactionExtraData map[string]interface{}

// NewTransactionExtra new transaction extra instance
func NewTransactionExtra() TransactionExtraData {
	return make(TransactionExtraData)
}

// Put put data
func (t TransactionExtraData) Put(key string, value interface{}) TransactionExtraData {
	t[key] = value
	return t
}

// Format format as []byte by default
func (t TransactionExtraData) Format() []byte {
	bs, e := json.Marshal(t)
	if e != nil {
		return []byte("{}")
	}

	return bs
}

// Transaction committed agency action
type Transaction struct {
	ID        int64           `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id,omitempty"`
	Action    ActionType      `json:"action,omitempty"`
	TraceID   string          `sql:"size:36;unique_index:idx_transactions_trace_id" json:"trace_id,omitempty"`
	Sender    string          `sql:"size:128" json:"sender,omitempty"`
	Account   string          `sql:"size:128;index:idx_transactions_account" json:"account,omitempty"`
	Market    string          `sql:"size:128" json:"market,omitempty"`
	Asset     string          `sql:"size:160" json:"asset,omitempty"`
	Amount    decimal.Decimal `sql:"type:decimal(40,0)" json:"amount"`
	Data      types.JSONText  `sql:"type:TEXT" json:"data,omitempty"`
	CreatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP;index:idx_transactions_created_at" json:"created_at"`
}

// TransactionStore transaction store interface
type TransactionStore interface {
	Create(ctx context.Context, transaction *Transaction) error
	// List transactions with id greater than fromID
	List(ctx context.Context, fromID int64, limit int) ([]*Transaction, error)
	ListByAccount(ctx context.Context, account string, fromID int64, limit int) ([]*Transaction, error)
}
