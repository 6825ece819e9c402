package core

import (
	"context"
	"time"
)

// Membership account participating in a market
type Membership struct {
	ID        uint64    `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"-"`
	Account   string    `sql:"size:128;unique_index:idx_memberships_account_market" json:"account"`
	Market    string    `sql:"size:128;unique_index:idx_memberships_account_market" json:"market"`
	CreatedAt time.Time `json:"created_at"`
}

// MembershipStore entered markets store interface
type MembershipStore interface {
	// Add is idempotent
	Add(ctx context.Context, account, market string) error
	Remove(ctx context.Context, account, market string) error
	// Markets entered by the account ordered by market address
	Markets(ctx context.Context, account string) ([]string, error)
	Has(ctx context.Context, account, market string) (bool, error)
	// Accounts with at least one membership ordered by account, after the cursor
	Accounts(ctx context.Context, after string, limit int) ([]string, error)
}
