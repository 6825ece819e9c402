package oracle

import (
	"context"
	"sync"

	"creditagency/core"

	"github.com/shopspring/decimal"
)

type pair struct {
	from, to core.Token
}

// Static price oracle backed by a configured rate table
type Static struct {
	mu    sync.RWMutex
	rates map[pair]decimal.Decimal
}

// Rate configured entry, amount of To = amount of From * Rate
type Rate struct {
	From core.Token      `json:"from"`
	To   core.Token      `json:"to"`
	Rate decimal.Decimal `json:"rate"`
}

// NewStatic new static oracle
func NewStatic(rates ...Rate) *Static {
	o := &Static{rates: map[pair]decimal.Decimal{}}
	for _, r := range rates {
		o.Set(r.From, r.To, r.Rate)
	}

	return o
}

// Set rate from -> to, replaces the inverse entry
func (o *Static) Set(from, to core.Token, rate decimal.Decimal) {
	o.mu.Lock()
	defer o.mu.Unlock()

	delete(o.rates, pair{from: to, to: from})
	o.rates[pair{from: from, to: to}] = rate
}

// Rate a token is worth 1 of itself, inverse entries are used when no direct rate exists
func (o *Static) Rate(_ context.Context, from, to core.Token) (decimal.Decimal, error) {
	if from == to {
		return decimal.NewFromInt(1), nil
	}

	o.mu.RLock()
	defer o.mu.RUnlock()

	if rate, ok := o.rates[pair{from: from, to: to}]; ok {
		return rate, nil
	}

	if rate, ok := o.rates[pair{from: to, to: from}]; ok && rate.IsPositive() {
		return decimal.NewFromInt(1).DivRound(rate, 18), nil
	}

	return decimal.Zero, core.ErrPriceNotFound
}
