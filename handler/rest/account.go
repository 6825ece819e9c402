package rest

import (
	"net/http"

	"creditagency/core"
	"creditagency/handler/param"
	"creditagency/handler/render"
	"creditagency/handler/views"

	"github.com/go-chi/chi"
)

func creditLineHandler(agency core.AgencyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		cfg, err := agency.Configuration(ctx)
		if err != nil {
			render.Error(w, err)
			return
		}

		values, err := agency.TotalCreditLine(ctx, chi.URLParam(r, "account"))
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.CreditLineView(values, cfg.CommonToken))
	}
}

func enteredMarketsHandler(agency core.AgencyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			After string `json:"after"`
			Limit int    `json:"limit"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		account := chi.URLParam(r, "account")
		markets, err := agency.ListEnteredMarkets(r.Context(), account, params.After, params.Limit)
		if err != nil {
			render.Error(w, err)
			return
		}

		if markets == nil {
			markets = []string{}
		}

		render.JSON(w, views.EnteredMarkets{Account: account, Markets: markets})
	}
}

func isOnMarketHandler(agency core.AgencyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ok, err := agency.IsOnMarket(r.Context(), chi.URLParam(r, "account"), chi.URLParam(r, "market"))
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, render.H{"entered": ok})
	}
}

func liquidationHandler(agency core.AgencyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := agency.Liquidation(r.Context(), chi.URLParam(r, "account"))
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, view)
	}
}

// enterMarketHandler the caller is the market entering account
func enterMarketHandler(agency core.AgencyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			Account string `json:"account" valid:"required"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		if err := agency.EnterMarket(r.Context(), caller(r), params.Account); err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.Done("enter_market"))
	}
}

func exitMarketHandler(agency core.AgencyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			Market string `json:"market" valid:"required"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		if err := agency.ExitMarket(r.Context(), caller(r), params.Market); err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.Done("exit_market"))
	}
}

func liquidateHandler(agency core.AgencyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			Account         string      `json:"account" valid:"required"`
			Funds           []core.Coin `json:"funds"`
			CollateralDenom core.Token  `json:"collateral_denom"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		if err := agency.Liquidate(r.Context(), caller(r), params.Account, params.Funds, params.CollateralDenom); err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.Done("liquidate"))
	}
}

func repayWithCollateralHandler(agency core.AgencyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			MaxCollateral core.Coin `json:"max_collateral"`
			AmountToRepay core.Coin `json:"amount_to_repay"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		if err := agency.RepayWithCollateral(r.Context(), caller(r), params.MaxCollateral, params.AmountToRepay); err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.Done("repay_with_collateral"))
	}
}
