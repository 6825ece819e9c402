package core

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// ErrorCode int
type ErrorCode int

const (
	// ErrUnknown unkown
	ErrUnknown ErrorCode = 100000
	// ErrUnauthorized caller is not allowed to perform the operation
	ErrUnauthorized ErrorCode = 100001
	// ErrInvalidArgument invalid argument
	ErrInvalidArgument ErrorCode = 100002
	// ErrInvalidConfig invalid agency configuration
	ErrInvalidConfig ErrorCode = 100003

	// ErrNoMarket no market for the token
	ErrNoMarket ErrorCode = 100100
	// ErrMarketCreating market is still instantiating
	ErrMarketCreating ErrorCode = 100101
	// ErrMarketAlreadyExists market already created
	ErrMarketAlreadyExists ErrorCode = 100102
	// ErrCollateralConfigInvalid collateral ratio not below liquidation price
	ErrCollateralConfigInvalid ErrorCode = 100103
	// ErrInstantiationFailed market instantiation failed
	ErrInstantiationFailed ErrorCode = 100104
	// ErrUnknownInstantiation acknowledgement for an unknown correlation id
	ErrUnknownInstantiation ErrorCode = 100105
	// ErrMarketNotFound address is not a ready market
	ErrMarketNotFound ErrorCode = 100106

	// ErrNotMember account did not enter the market
	ErrNotMember ErrorCode = 100200
	// ErrDebtRemaining account still has debt on the market
	ErrDebtRemaining ErrorCode = 100201
	// ErrMultipleDenomsSent liquidation requires exactly one coin
	ErrMultipleDenomsSent ErrorCode = 100202

	// ErrLiquidationNotAllowed account debt does not exceed its credit line
	ErrLiquidationNotAllowed ErrorCode = 100300
	// ErrUndercollateralizedExit exit would leave debt above credit line
	ErrUndercollateralizedExit ErrorCode = 100301
	// ErrRepaymentWouldUndercollateralize simulated repayment leaves debt above credit line
	ErrRepaymentWouldUndercollateralize ErrorCode = 100302

	// ErrOverflow checked addition overflow
	ErrOverflow ErrorCode = 100400
	// ErrUnderflow checked subtraction underflow
	ErrUnderflow ErrorCode = 100401
	// ErrInvalidAmount negative or fractional amount
	ErrInvalidAmount ErrorCode = 100402

	// ErrInsufficientTokens not enough collateral to transfer or withdraw
	ErrInsufficientTokens ErrorCode = 100500
	// ErrInsufficientFunds not enough funds attached
	ErrInsufficientFunds ErrorCode = 100501
	// ErrRepayExceedsDebt repayment larger than outstanding debt
	ErrRepayExceedsDebt ErrorCode = 100502
	// ErrBorrowLimitExceeded borrow above the credit agency borrow limit
	ErrBorrowLimitExceeded ErrorCode = 100503
	// ErrTokenMismatch coin does not match the market token
	ErrTokenMismatch ErrorCode = 100504
	// ErrSellLimitExceeded swap needs more collateral than allowed
	ErrSellLimitExceeded ErrorCode = 100505
	// ErrPriceNotFound oracle has no rate for the pair
	ErrPriceNotFound ErrorCode = 100506
)

var errorMessages = map[ErrorCode]string{
	ErrUnknown:                          "unknown error",
	ErrUnauthorized:                     "unauthorized",
	ErrInvalidArgument:                  "invalid argument",
	ErrInvalidConfig:                    "invalid configuration",
	ErrNoMarket:                         "no market",
	ErrMarketCreating:                   "market still instantiating",
	ErrMarketAlreadyExists:              "market already exists",
	ErrCollateralConfigInvalid:          "collateral ratio must be lower than liquidation price",
	ErrInstantiationFailed:              "market instantiation failed",
	ErrUnknownInstantiation:             "unknown instantiation id",
	ErrMarketNotFound:                   "market not found",
	ErrNotMember:                        "account is not on market",
	ErrDebtRemaining:                    "debt remaining on market",
	ErrMultipleDenomsSent:               "liquidation requires exactly one coin",
	ErrLiquidationNotAllowed:            "liquidation not allowed",
	ErrUndercollateralizedExit:          "not enough collateral to exit market",
	ErrRepaymentWouldUndercollateralize: "repaying loan using collateral failed",
	ErrOverflow:                         "overflow",
	ErrUnderflow:                        "underflow",
	ErrInvalidAmount:                    "invalid amount",
	ErrInsufficientTokens:               "insufficient tokens",
	ErrInsufficientFunds:                "insufficient funds",
	ErrRepayExceedsDebt:                 "repay amount exceeds debt",
	ErrBorrowLimitExceeded:              "borrow limit exceeded",
	ErrTokenMismatch:                    "token mismatch",
	ErrSellLimitExceeded:                "sell limit exceeded",
	ErrPriceNotFound:                    "price not found",
}

func (e ErrorCode) String() string {
	return strconv.Itoa(int(e))
}

func (e ErrorCode) Error() string {
	if msg, ok := errorMessages[e]; ok {
		return msg
	}

	return e.String()
}

// Code int value
func (e ErrorCode) Code() int {
	return int(e)
}

// NotMemberError account is not on market
type NotMemberError struct {
	Account string
	Market  string
}

func (e *NotMemberError) Error() string {
	return fmt.Sprintf("account %s is not on market %s", e.Account, e.Market)
}

func (e *NotMemberError) Unwrap() error { return ErrNotMember }

// DebtRemainingError market cannot be exited while borrowed from
type DebtRemainingError struct {
	Account string
	Market  string
	Debt    Coin
}

func (e *DebtRemainingError) Error() string {
	return fmt.Sprintf("account %s has debt %s on market %s", e.Account, e.Debt, e.Market)
}

func (e *DebtRemainingError) Unwrap() error { return ErrDebtRemaining }

// UndercollateralizedExitError exiting would leave debt above credit line
type UndercollateralizedExitError struct {
	Debt       decimal.Decimal
	CreditLine decimal.Decimal
	Collateral decimal.Decimal
}

func (e *UndercollateralizedExitError) Error() string {
	return fmt.Sprintf("not enough collateral to exit market: debt %s, credit line %s, collateral %s",
		e.Debt, e.CreditLine, e.Collateral)
}

func (e *UndercollateralizedExitError) Unwrap() error { return ErrUndercollateralizedExit }

// InstantiationFailedError market instantiation acknowledgement carried an error
type InstantiationFailedError struct {
	ID     uint64
	Detail string
}

func (e *InstantiationFailedError) Error() string {
	return fmt.Sprintf("market instantiation %d failed: %s", e.ID, e.Detail)
}

func (e *InstantiationFailedError) Unwrap() error { return ErrInstantiationFailed }

// InsufficientTokensError not enough transferable tokens
type InsufficientTokensError struct {
	Available decimal.Decimal
	Needed    decimal.Decimal
}

func (e *InsufficientTokensError) Error() string {
	return fmt.Sprintf("insufficient tokens: available %s, needed %s", e.Available, e.Needed)
}

func (e *InsufficientTokensError) Unwrap() error { return ErrInsufficientTokens }

// CodedError error carrying a code and a message, used for errors decoded from the wire
type CodedError struct {
	ErrCode ErrorCode
	Msg     string
}

func (e *CodedError) Error() string {
	if e.Msg == "" {
		return e.ErrCode.Error()
	}

	return e.Msg
}

func (e *CodedError) Unwrap() error { return e.ErrCode }
