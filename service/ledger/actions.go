package ledger

import (
	"context"

	"creditagency/core"
	"creditagency/pkg/number"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

func (h *Hub) tokenMarket(token core.Token) (*market, error) {
	address, ok := h.byToken[token]
	if !ok {
		return nil, core.ErrNoMarket
	}

	return h.market(address)
}

// enter reports account to the agency, undo reverts the action when the agency refuses
func (h *Hub) enter(ctx context.Context, token core.Token, account string, undo func(m *market)) error {
	h.mu.RLock()
	agency := h.agency
	h.mu.RUnlock()

	if agency == nil {
		return nil
	}

	h.mu.RLock()
	address := h.byToken[token]
	h.mu.RUnlock()

	if err := agency.EnterMarket(ctx, address, account); err != nil {
		logger.FromContext(ctx).WithError(err).Errorln("agency.EnterMarket")

		h.mu.Lock()
		if m, e := h.tokenMarket(token); e == nil {
			undo(m)
		}
		h.mu.Unlock()
		return err
	}

	return nil
}

// Deposit moves coin from the bank of account into collateral
func (h *Hub) Deposit(ctx context.Context, account string, coin core.Coin) error {
	if err := number.ValidAmount(coin.Amount); err != nil {
		return err
	}

	h.acting.Lock()
	defer h.acting.Unlock()

	h.mu.Lock()
	m, err := h.tokenMarket(coin.Token)
	if err == nil {
		err = h.debit(account, coin)
	}
	if err != nil {
		h.mu.Unlock()
		return err
	}

	m.collateral[account] = m.collateral[account].Add(coin.Amount)
	m.cash = m.cash.Add(coin.Amount)
	h.mu.Unlock()

	return h.enter(ctx, coin.Token, account, func(m *market) {
		m.collateral[account] = m.collateral[account].Sub(coin.Amount)
		m.cash = m.cash.Sub(coin.Amount)
		h.credit(account, coin)
	})
}

// Borrow lends coin to account within the borrow limit the agency reports
func (h *Hub) Borrow(ctx context.Context, account string, coin core.Coin) error {
	if err := number.ValidAmount(coin.Amount); err != nil {
		return err
	}

	h.acting.Lock()
	defer h.acting.Unlock()

	h.mu.RLock()
	agency := h.agency
	m, err := h.tokenMarket(coin.Token)
	h.mu.RUnlock()
	if err != nil {
		return err
	}

	if agency != nil {
		total, err := agency.TotalCreditLine(ctx, account)
		if err != nil {
			return err
		}

		rate, err := h.PriceLocalPerCommon(ctx, m.address)
		if err != nil {
			return err
		}

		value, err := number.MulFloor(coin.Amount, rate)
		if err != nil {
			return err
		}

		if total.Debt.Add(value).GreaterThan(total.BorrowLimit) {
			return core.ErrBorrowLimitExceeded
		}
	}

	h.mu.Lock()
	if m, err = h.tokenMarket(coin.Token); err != nil {
		h.mu.Unlock()
		return err
	}

	if m.cash.LessThan(coin.Amount) {
		h.mu.Unlock()
		return &core.InsufficientTokensError{Available: m.cash, Needed: coin.Amount}
	}

	m.cash = m.cash.Sub(coin.Amount)
	m.debt[account] = m.debt[account].Add(coin.Amount)
	h.credit(account, coin)
	h.mu.Unlock()

	return h.enter(ctx, coin.Token, account, func(m *market) {
		m.cash = m.cash.Add(coin.Amount)
		m.debt[account] = m.debt[account].Sub(coin.Amount)
		h.banks[account][coin.Token] = h.banks[account][coin.Token].Sub(coin.Amount)
	})
}

// Repay pays back debt of account from its bank
func (h *Hub) Repay(ctx context.Context, account string, coin core.Coin) error {
	if err := number.ValidAmount(coin.Amount); err != nil {
		return err
	}

	h.acting.Lock()
	defer h.acting.Unlock()

	h.mu.Lock()
	defer h.mu.Unlock()

	m, err := h.tokenMarket(coin.Token)
	if err != nil {
		return err
	}

	return h.repayOnBehalf(&core.MarketMsg{
		Market:  m.address,
		Sender:  account,
		Account: account,
		Funds:   &coin,
	})
}

// Withdraw takes collateral back into the bank while the account stays within its credit line
func (h *Hub) Withdraw(ctx context.Context, account string, coin core.Coin) error {
	if err := number.ValidAmount(coin.Amount); err != nil {
		return err
	}

	h.acting.Lock()
	defer h.acting.Unlock()

	h.mu.RLock()
	agency := h.agency
	m, err := h.tokenMarket(coin.Token)
	h.mu.RUnlock()
	if err != nil {
		return err
	}

	if agency != nil {
		total, err := agency.TotalCreditLine(ctx, account)
		if err != nil {
			return err
		}

		rate, err := h.PriceLocalPerCommon(ctx, m.address)
		if err != nil {
			return err
		}

		h.mu.RLock()
		ratio := m.collateralRatio
		h.mu.RUnlock()

		lost := coin.Amount.Mul(rate).Mul(ratio).Floor()
		if total.CreditLine.Sub(lost).LessThan(total.Debt) {
			return &core.UndercollateralizedExitError{
				Debt:       total.Debt,
				CreditLine: decimal.Max(total.CreditLine.Sub(lost), decimal.Zero),
				Collateral: total.Collateral,
			}
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if m, err = h.tokenMarket(coin.Token); err != nil {
		return err
	}

	available := m.collateral[account]
	if available.LessThan(coin.Amount) {
		return &core.InsufficientTokensError{Available: available, Needed: coin.Amount}
	}

	if m.cash.LessThan(coin.Amount) {
		return &core.InsufficientTokensError{Available: m.cash, Needed: coin.Amount}
	}

	m.collateral[account] = available.Sub(coin.Amount)
	m.cash = m.cash.Sub(coin.Amount)
	h.credit(account, coin)
	return nil
}
