package core

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"
)

// MarketState market lifecycle state
type MarketState int

const (
	// MarketStateInstantiating instantiation in flight, no address known yet
	MarketStateInstantiating MarketState = iota
	// MarketStateReady terminal, the market is usable
	MarketStateReady
)

func (s MarketState) String() string {
	switch s {
	case MarketStateInstantiating:
		return "instantiating"
	case MarketStateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Market registry record of a market
type Market struct {
	ID        uint64      `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"-"`
	Token     Token       `sql:"-" json:"token"`
	TokenKind TokenKind   `sql:"unique_index:idx_markets_token" json:"-"`
	Denom     string      `sql:"size:128;unique_index:idx_markets_token" json:"-"`
	State     MarketState `json:"state"`
	Address   string      `sql:"size:128;index:idx_markets_address" json:"address,omitempty"`
	// creation spec as submitted by governance
	Spec      types.JSONText `sql:"type:TEXT" json:"spec,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// IsReady market is usable
func (m *Market) IsReady() bool {
	return m.State == MarketStateReady && m.Address != ""
}

// Interest interest rate curve, passed through to the market untouched
type Interest struct {
	Base  decimal.Decimal `json:"base"`
	Slope decimal.Decimal `json:"slope"`
}

// MarketSpec parameters of a market to create
type MarketSpec struct {
	Name                 string           `json:"name" valid:"required"`
	Symbol               string           `json:"symbol" valid:"required"`
	Decimals             uint8            `json:"decimals"`
	Token                Token            `json:"token"`
	MarketCap            *decimal.Decimal `json:"market_cap,omitempty"`
	InterestRate         Interest         `json:"interest_rate"`
	InterestChargePeriod uint64           `json:"interest_charge_period"`
	CollateralRatio      decimal.Decimal  `json:"collateral_ratio"`
	PriceOracle          string           `json:"price_oracle"`
	ReserveFactor        decimal.Decimal  `json:"reserve_factor"`
}

// Format spec as json
func (s *MarketSpec) Format() []byte {
	bs, err := json.Marshal(s)
	if err != nil {
		return []byte("{}")
	}

	return bs
}

// MarketStore market registry store interface
type MarketStore interface {
	Create(ctx context.Context, market *Market) error
	Update(ctx context.Context, market *Market) error
	Delete(ctx context.Context, token Token) error
	// Find returns nil without error when no record exists
	Find(ctx context.Context, token Token) (*Market, error)
	// FindByAddress returns nil without error when no ready market has the address
	FindByAddress(ctx context.Context, address string) (*Market, error)
	// List ready markets ordered by token, after the cursor
	List(ctx context.Context, after *Token, limit int) ([]*Market, error)
	// All markets in any state ordered by token
	All(ctx context.Context) ([]*Market, error)
}
