package ledger

import (
	"context"
	"fmt"
	"strings"

	"creditagency/core"
	"creditagency/pkg/number"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

type snapshot struct {
	markets  map[string]*market
	byToken  map[core.Token]string
	banks    map[string]map[core.Token]decimal.Decimal
	replies  []*core.InstantiateReply
	failures map[core.Token]string
}

func (h *Hub) snapshot() *snapshot {
	s := &snapshot{
		markets:  make(map[string]*market, len(h.markets)),
		byToken:  make(map[core.Token]string, len(h.byToken)),
		banks:    make(map[string]map[core.Token]decimal.Decimal, len(h.banks)),
		replies:  append([]*core.InstantiateReply(nil), h.replies...),
		failures: make(map[core.Token]string, len(h.failures)),
	}

	for k, m := range h.markets {
		s.markets[k] = m.clone()
	}
	for k, v := range h.byToken {
		s.byToken[k] = v
	}
	for account, bank := range h.banks {
		b := make(map[core.Token]decimal.Decimal, len(bank))
		for k, v := range bank {
			b[k] = v
		}
		s.banks[account] = b
	}
	for k, v := range h.failures {
		s.failures[k] = v
	}

	return s
}

func (h *Hub) restore(s *snapshot) {
	h.markets = s.markets
	h.byToken = s.byToken
	h.banks = s.banks
	h.replies = s.replies
	h.failures = s.failures
}

// Execute applies all msgs or none of them
func (h *Hub) Execute(ctx context.Context, msgs []*core.MarketMsg) ([]*core.MarketEntry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	snap := h.snapshot()

	var entries []*core.MarketEntry
	for _, msg := range msgs {
		entry, err := h.execute(ctx, msg)
		if err != nil {
			logger.FromContext(ctx).WithError(err).WithField("msg", msg.Type.String()).Infoln("market command failed")
			h.restore(snap)
			return nil, err
		}

		if entry != nil {
			entries = append(entries, entry)
		}
	}

	return entries, nil
}

func (h *Hub) execute(ctx context.Context, msg *core.MarketMsg) (*core.MarketEntry, error) {
	if msg.Type == core.MarketMsgRepayOnBehalf {
		return nil, h.repayOnBehalf(msg)
	}

	// every other command is agency only
	if msg.Sender != h.address {
		return nil, core.ErrUnauthorized
	}

	switch msg.Type {
	case core.MarketMsgInstantiate:
		return nil, h.instantiate(msg.Instantiate)
	case core.MarketMsgTransferCollateral:
		return h.transferCollateral(ctx, msg)
	case core.MarketMsgSwapWithdrawFrom:
		return nil, h.swapWithdrawFrom(ctx, msg)
	case core.MarketMsgSetCommonToken:
		m, err := h.market(msg.Market)
		if err != nil {
			return nil, err
		}

		m.commonToken = *msg.CommonToken
		return nil, nil
	case core.MarketMsgMigrate:
		m, err := h.market(msg.Market)
		if err != nil {
			return nil, err
		}

		m.codeID = msg.CodeID
		m.migration = msg.Migration
		return nil, nil
	default:
		return nil, core.ErrInvalidArgument
	}
}

func marketAddress(token core.Token) string {
	return fmt.Sprintf("market-%s-%s", token.Kind, strings.ToLower(token.Denom))
}

func (h *Hub) instantiate(req *core.InstantiateMarket) error {
	if req == nil {
		return core.ErrInvalidArgument
	}

	token := req.Spec.Token
	if detail, ok := h.failures[token]; ok {
		delete(h.failures, token)
		h.replies = append(h.replies, &core.InstantiateReply{ID: req.ID, Error: detail})
		return nil
	}

	address := marketAddress(token)
	if _, ok := h.markets[address]; ok {
		h.replies = append(h.replies, &core.InstantiateReply{ID: req.ID, Error: "market address taken"})
		return nil
	}

	h.markets[address] = &market{
		address:          address,
		token:            token,
		commonToken:      req.CommonToken,
		collateralRatio:  req.Spec.CollateralRatio,
		borrowLimitRatio: req.BorrowLimitRatio,
		tokenTemplateID:  req.TokenTemplateID,
		codeID:           req.CodeID,
		governance:       req.Governance,
		cash:             decimal.Zero,
		collateral:       map[string]decimal.Decimal{},
		debt:             map[string]decimal.Decimal{},
	}
	h.byToken[token] = address
	h.replies = append(h.replies, &core.InstantiateReply{ID: req.ID, Address: address})
	return nil
}

func (h *Hub) repayOnBehalf(msg *core.MarketMsg) error {
	m, err := h.market(msg.Market)
	if err != nil {
		return err
	}

	if msg.Funds == nil || msg.Funds.Token != m.token {
		return core.ErrTokenMismatch
	}

	debt := m.debt[msg.Account]
	if msg.Funds.Amount.GreaterThan(debt) {
		return core.ErrRepayExceedsDebt
	}

	if err := h.debit(msg.Sender, *msg.Funds); err != nil {
		return err
	}

	m.debt[msg.Account] = debt.Sub(msg.Funds.Amount)
	m.cash = m.cash.Add(msg.Funds.Amount)
	return nil
}

// transferCollateral moves collateral worth amount/liquidation_price common tokens
func (h *Hub) transferCollateral(ctx context.Context, msg *core.MarketMsg) (*core.MarketEntry, error) {
	m, err := h.market(msg.Market)
	if err != nil {
		return nil, err
	}

	rate, err := h.oracle.Rate(ctx, m.token, m.commonToken)
	if err != nil {
		return nil, err
	}

	local, err := number.DivFloor(msg.CommonAmount, rate.Mul(msg.LiquidationPrice))
	if err != nil {
		return nil, err
	}

	available := m.collateral[msg.Account]
	if available.LessThan(local) {
		return nil, &core.InsufficientTokensError{Available: available, Needed: local}
	}

	m.collateral[msg.Account] = available.Sub(local)
	m.collateral[msg.Destination] = m.collateral[msg.Destination].Add(local)

	return &core.MarketEntry{Market: m.address, Account: msg.Destination}, nil
}

// swapWithdrawFrom sells collateral of the account to buy exactly Funds for the destination
func (h *Hub) swapWithdrawFrom(ctx context.Context, msg *core.MarketMsg) error {
	m, err := h.market(msg.Market)
	if err != nil {
		return err
	}

	if msg.SellLimit == nil || msg.Funds == nil || msg.SellLimit.Token != m.token {
		return core.ErrTokenMismatch
	}

	sell := msg.Funds.Amount
	if msg.Funds.Token != m.token {
		rate, err := h.oracle.Rate(ctx, msg.Funds.Token, m.token)
		if err != nil {
			return err
		}

		sell = msg.Funds.Amount.Mul(rate).Ceil()
	}

	if sell.GreaterThan(msg.SellLimit.Amount) {
		return core.ErrSellLimitExceeded
	}

	available := m.collateral[msg.Account]
	if available.LessThan(sell) {
		return &core.InsufficientTokensError{Available: available, Needed: sell}
	}

	if m.cash.LessThan(sell) {
		return &core.InsufficientTokensError{Available: m.cash, Needed: sell}
	}

	m.collateral[msg.Account] = available.Sub(sell)
	m.cash = m.cash.Sub(sell)
	h.credit(msg.Destination, *msg.Funds)
	return nil
}
