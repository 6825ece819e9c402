package rest

import (
	"encoding/json"
	"net/http"

	"creditagency/core"
	"creditagency/handler/param"
	"creditagency/handler/render"
	"creditagency/handler/views"
)

func configHandler(agency core.AgencyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg, err := agency.Configuration(r.Context())
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, cfg)
	}
}

func listMarketsHandler(agency core.AgencyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			After string `json:"after"`
			Limit int    `json:"limit"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		var after *core.Token
		if params.After != "" {
			token, err := core.ParseToken(params.After)
			if err != nil {
				render.BadRequest(w, err)
				return
			}
			after = &token
		}

		markets, err := agency.ListMarkets(r.Context(), after, params.Limit)
		if err != nil {
			render.Error(w, err)
			return
		}

		view := views.Markets{Markets: make([]views.Market, 0, len(markets))}
		for _, m := range markets {
			view.Markets = append(view.Markets, views.MarketView(m))
		}
		if len(markets) > 0 {
			view.Next = &markets[len(markets)-1].Token
		}

		render.JSON(w, view)
	}
}

func marketHandler(agency core.AgencyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := tokenParam(r)
		if err != nil {
			render.Error(w, err)
			return
		}

		market, err := agency.Market(r.Context(), token)
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.MarketView(market))
	}
}

func createMarketHandler(agency core.AgencyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var spec core.MarketSpec
		if err := param.Binding(r, &spec); err != nil {
			render.BadRequest(w, err)
			return
		}

		id, err := agency.CreateMarket(r.Context(), caller(r), &spec)
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, render.H{"id": id})
	}
}

func migrateMarketHandler(agency core.AgencyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			Market    string          `json:"market" valid:"required"`
			Migration json.RawMessage `json:"migration"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		if err := agency.MigrateMarket(r.Context(), caller(r), params.Market, params.Migration); err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.Done("migrate_market"))
	}
}

type templateParams struct {
	ID uint64 `json:"id"`
}

func adjustMarketTemplateHandler(agency core.AgencyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params templateParams
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		if err := agency.AdjustMarketTemplate(r.Context(), caller(r), params.ID); err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.Done("adjust_market_template"))
	}
}

func adjustTokenTemplateHandler(agency core.AgencyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params templateParams
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		if err := agency.AdjustTokenTemplate(r.Context(), caller(r), params.ID); err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.Done("adjust_token_template"))
	}
}

func adjustCommonTokenHandler(agency core.AgencyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			Token core.Token `json:"token"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		if err := agency.AdjustCommonToken(r.Context(), caller(r), params.Token); err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.Done("adjust_common_token"))
	}
}
