package views

import (
	"time"

	"creditagency/core"

	"github.com/jmoiron/sqlx/types"
)

// Market market view
type Market struct {
	Token     core.Token     `json:"token"`
	State     string         `json:"state"`
	Address   string         `json:"address,omitempty"`
	Spec      types.JSONText `json:"spec,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// MarketView convert market
func MarketView(m *core.Market) Market {
	return Market{
		Token:     m.Token,
		State:     m.State.String(),
		Address:   m.Address,
		Spec:      m.Spec,
		CreatedAt: m.CreatedAt,
	}
}

// Markets market list view with the cursor of the next page
type Markets struct {
	Markets []Market    `json:"markets"`
	Next    *core.Token `json:"next,omitempty"`
}
