package codes

import (
	"errors"
	"strconv"

	"creditagency/core"

	"github.com/twitchtv/twirp"
)

const (
	// CustomCodeKey code key
	CustomCodeKey = "custom_code"
)

var twirpCodes = map[core.ErrorCode]twirp.ErrorCode{
	core.ErrUnauthorized:       twirp.PermissionDenied,
	core.ErrInvalidArgument:    twirp.InvalidArgument,
	core.ErrInvalidAmount:      twirp.InvalidArgument,
	core.ErrMultipleDenomsSent: twirp.InvalidArgument,
	core.ErrTokenMismatch:      twirp.InvalidArgument,

	core.ErrNoMarket:       twirp.NotFound,
	core.ErrMarketNotFound: twirp.NotFound,

	core.ErrUnknownInstantiation: twirp.NotFound,

	core.ErrInvalidConfig:                    twirp.FailedPrecondition,
	core.ErrMarketCreating:                   twirp.FailedPrecondition,
	core.ErrMarketAlreadyExists:              twirp.FailedPrecondition,
	core.ErrCollateralConfigInvalid:          twirp.FailedPrecondition,
	core.ErrInstantiationFailed:              twirp.FailedPrecondition,
	core.ErrNotMember:                        twirp.FailedPrecondition,
	core.ErrDebtRemaining:                    twirp.FailedPrecondition,
	core.ErrLiquidationNotAllowed:            twirp.FailedPrecondition,
	core.ErrUndercollateralizedExit:          twirp.FailedPrecondition,
	core.ErrRepaymentWouldUndercollateralize: twirp.FailedPrecondition,
	core.ErrInsufficientTokens:               twirp.FailedPrecondition,
	core.ErrInsufficientFunds:                twirp.FailedPrecondition,
	core.ErrRepayExceedsDebt:                 twirp.FailedPrecondition,
	core.ErrBorrowLimitExceeded:              twirp.FailedPrecondition,
	core.ErrSellLimitExceeded:                twirp.FailedPrecondition,
	core.ErrPriceNotFound:                    twirp.FailedPrecondition,
}

// With with specified error
func With(err error, code int) error {
	twerr, ok := err.(twirp.Error)
	if !ok {
		twerr = twirp.InternalErrorWith(err)
	}

	return twerr.WithMeta(CustomCodeKey, strconv.Itoa(code))
}

// From twirp error carrying the agency error code of err
func From(err error) twirp.Error {
	var twerr twirp.Error
	if errors.As(err, &twerr) {
		return twerr
	}

	var code core.ErrorCode
	if !errors.As(err, &code) {
		return twirp.InternalErrorWith(err).WithMeta(CustomCodeKey, core.ErrUnknown.String())
	}

	tc, ok := twirpCodes[code]
	if !ok {
		tc = twirp.Internal
	}

	return twirp.NewError(tc, err.Error()).WithMeta(CustomCodeKey, code.String())
}

// Get custom code of twerr, falls back to the http status
func Get(twerr twirp.Error) int {
	if v := twerr.Meta(CustomCodeKey); v != "" {
		if code, err := strconv.Atoi(v); err == nil {
			return code
		}
	}

	return twirp.ServerHTTPStatusFromErrorCode(twerr.Code())
}
