package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Configuration credit agency configuration, a singleton mutated only by governance
type Configuration struct {
	ID uint `sql:"PRIMARY_KEY" json:"-"`
	// principal allowed to mutate the configuration and migrate markets
	Governance string `sql:"size:128" json:"governance"`
	// code template used to instantiate markets
	MarketTemplateID uint64 `json:"market_template_id"`
	// code template markets use for their tokens
	TokenTemplateID uint64 `json:"token_template_id"`
	// asset distributed as yield to depositors
	RewardToken Token `sql:"-" json:"reward_token"`
	// valuation unit shared by all markets
	CommonToken      Token           `sql:"-" json:"common_token"`
	RewardTokenKey   string          `sql:"size:160" json:"-"`
	CommonTokenKey   string          `sql:"size:160" json:"-"`
	LiquidationPrice decimal.Decimal `sql:"type:decimal(20,18)" json:"liquidation_price"`
	// caps the usable part of the credit line
	BorrowLimitRatio decimal.Decimal `sql:"type:decimal(20,18)" json:"borrow_limit_ratio"`
	CreatedAt        time.Time       `json:"-"`
	UpdatedAt        time.Time       `json:"-"`
}

// IsGovernance check if the principal is the governance identity
func (c *Configuration) IsGovernance(principal string) bool {
	return principal != "" && c.Governance == principal
}

// ConfigurationStore configuration store interface
type ConfigurationStore interface {
	// Find returns ErrInvalidConfig when the agency was never initialized
	Find(ctx context.Context) (*Configuration, error)
	Save(ctx context.Context, cfg *Configuration) error
}
