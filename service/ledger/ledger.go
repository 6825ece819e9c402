// Package ledger is an in-process reference implementation of the markets the agency drives.
//
// Every market keeps a collateral and a debt ledger for one token, accounts keep bank
// balances of plain tokens. Interest is never charged and swaps execute at the oracle rate.
package ledger

import (
	"context"
	"sync"

	"creditagency/core"

	"github.com/shopspring/decimal"
)

type market struct {
	address          string
	token            core.Token
	commonToken      core.Token
	collateralRatio  decimal.Decimal
	borrowLimitRatio decimal.Decimal
	tokenTemplateID  uint64
	codeID           uint64
	governance       string
	migration        []byte

	// tokens held by the market
	cash       decimal.Decimal
	collateral map[string]decimal.Decimal
	debt       map[string]decimal.Decimal
}

func (m *market) clone() *market {
	c := *m
	c.collateral = cloneBalances(m.collateral)
	c.debt = cloneBalances(m.debt)
	return &c
}

func cloneBalances(b map[string]decimal.Decimal) map[string]decimal.Decimal {
	c := make(map[string]decimal.Decimal, len(b))
	for k, v := range b {
		c[k] = v
	}

	return c
}

// Hub hosts every reference market
type Hub struct {
	mu sync.RWMutex
	// user actions run one at a time, so a limit checked against the agency still holds
	// when the action is applied
	acting sync.Mutex

	agency  core.AgencyService
	address string
	oracle  core.PriceOracle

	markets  map[string]*market
	byToken  map[core.Token]string
	banks    map[string]map[core.Token]decimal.Decimal
	replies  []*core.InstantiateReply
	failures map[core.Token]string
}

// New new hub, agencyAddress is the identity allowed to send agency only commands
func New(agencyAddress string, oracle core.PriceOracle) *Hub {
	return &Hub{
		address:  agencyAddress,
		oracle:   oracle,
		markets:  map[string]*market{},
		byToken:  map[core.Token]string{},
		banks:    map[string]map[core.Token]decimal.Decimal{},
		failures: map[core.Token]string{},
	}
}

// AgencyAddress identity allowed to send agency only commands
func (h *Hub) AgencyAddress() string {
	return h.address
}

// Bind the agency markets report entered accounts to
func (h *Hub) Bind(agency core.AgencyService) {
	h.mu.Lock()
	h.agency = agency
	h.mu.Unlock()
}

// FailInstantiation makes the next instantiation of token fail with detail
func (h *Hub) FailInstantiation(token core.Token, detail string) {
	h.mu.Lock()
	h.failures[token] = detail
	h.mu.Unlock()
}

// Fund credits tokens to the bank balance of account
func (h *Hub) Fund(account string, coins ...core.Coin) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, coin := range coins {
		h.credit(account, coin)
	}
}

// Balance bank balance of account
func (h *Hub) Balance(account string, token core.Token) decimal.Decimal {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.banks[account][token]
}

// MarketAddress address of the market trading token
func (h *Hub) MarketAddress(token core.Token) (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	address, ok := h.byToken[token]
	return address, ok
}

func (h *Hub) credit(account string, coin core.Coin) {
	bank, ok := h.banks[account]
	if !ok {
		bank = map[core.Token]decimal.Decimal{}
		h.banks[account] = bank
	}

	bank[coin.Token] = bank[coin.Token].Add(coin.Amount)
}

func (h *Hub) debit(account string, coin core.Coin) error {
	balance := h.banks[account][coin.Token]
	if balance.LessThan(coin.Amount) {
		return core.ErrInsufficientFunds
	}

	h.banks[account][coin.Token] = balance.Sub(coin.Amount)
	return nil
}

func (h *Hub) market(address string) (*market, error) {
	m, ok := h.markets[address]
	if !ok {
		return nil, core.ErrMarketNotFound
	}

	return m, nil
}

func (h *Hub) CreditLine(ctx context.Context, address, account string) (*core.CreditLineValues, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	m, err := h.market(address)
	if err != nil {
		return nil, err
	}

	collateral := m.collateral[account]
	creditLine := collateral.Mul(m.collateralRatio).Floor()

	return &core.CreditLineValues{
		Collateral:  collateral,
		CreditLine:  creditLine,
		BorrowLimit: creditLine.Mul(m.borrowLimitRatio).Floor(),
		Debt:        m.debt[account],
	}, nil
}

func (h *Hub) TokensBalance(ctx context.Context, address, account string) (*core.TokensBalance, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	m, err := h.market(address)
	if err != nil {
		return nil, err
	}

	return &core.TokensBalance{
		Collateral: core.NewCoin(m.token, m.collateral[account]),
		Debt:       core.NewCoin(m.token, m.debt[account]),
	}, nil
}

func (h *Hub) PriceLocalPerCommon(ctx context.Context, address string) (decimal.Decimal, error) {
	h.mu.RLock()
	m, err := h.market(address)
	if err != nil {
		h.mu.RUnlock()
		return decimal.Zero, err
	}
	token, common := m.token, m.commonToken
	h.mu.RUnlock()

	return h.oracle.Rate(ctx, token, common)
}

func (h *Hub) Configuration(ctx context.Context, address string) (*core.MarketConfiguration, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	m, err := h.market(address)
	if err != nil {
		return nil, err
	}

	return &core.MarketConfiguration{
		Token:            m.token,
		CommonToken:      m.commonToken,
		CollateralRatio:  m.collateralRatio,
		BorrowLimitRatio: m.borrowLimitRatio,
		TokenTemplateID:  m.tokenTemplateID,
		CodeID:           m.codeID,
		Governance:       m.governance,
	}, nil
}

// Pending instantiation acknowledgements not acked yet
func (h *Hub) Pending(_ context.Context, limit int) ([]*core.InstantiateReply, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	replies := h.replies
	if limit > 0 && len(replies) > limit {
		replies = replies[:limit]
	}

	out := make([]*core.InstantiateReply, len(replies))
	copy(out, replies)
	return out, nil
}

func (h *Hub) Ack(_ context.Context, id uint64) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for idx, r := range h.replies {
		if r.ID == id {
			h.replies = append(h.replies[:idx], h.replies[idx+1:]...)
			break
		}
	}

	return nil
}
