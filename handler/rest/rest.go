package rest

import (
	"errors"
	"net/http"

	"creditagency/core"
	"creditagency/handler/auth"
	"creditagency/handler/render"
	"creditagency/handler/request"

	"github.com/go-chi/chi"
	"github.com/twitchtv/twirp"
)

// Handle handle rest api request
func Handle(agency core.AgencyService, transactions core.TransactionStore) http.Handler {
	router := chi.NewRouter()

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.NotFoundRequest(w, errors.New("not found"))
	})

	router.Get("/config", configHandler(agency))
	router.Get("/markets", listMarketsHandler(agency))
	router.Get("/markets/{token}", marketHandler(agency))
	router.Get("/accounts/{account}/credit-line", creditLineHandler(agency))
	router.Get("/accounts/{account}/markets", enteredMarketsHandler(agency))
	router.Get("/accounts/{account}/markets/{market}", isOnMarketHandler(agency))
	router.Get("/accounts/{account}/liquidation", liquidationHandler(agency))
	router.Get("/transactions", transactionsHandler(transactions))

	router.Group(func(r chi.Router) {
		r.Use(auth.LoginRequired)

		r.Post("/markets", createMarketHandler(agency))
		r.Post("/markets/migrate", migrateMarketHandler(agency))
		r.Put("/config/market-template", adjustMarketTemplateHandler(agency))
		r.Put("/config/token-template", adjustTokenTemplateHandler(agency))
		r.Put("/config/common-token", adjustCommonTokenHandler(agency))

		r.Post("/enter", enterMarketHandler(agency))
		r.Post("/exit", exitMarketHandler(agency))
		r.Post("/liquidate", liquidateHandler(agency))
		r.Post("/repay-with-collateral", repayWithCollateralHandler(agency))
	})

	return router
}

func caller(r *http.Request) string {
	c, _ := request.Caller(r.Context())
	return c
}

func tokenParam(r *http.Request) (core.Token, error) {
	token, err := core.ParseToken(chi.URLParam(r, "token"))
	if err != nil {
		return core.Token{}, twirp.InvalidArgumentError("token", err.Error())
	}

	return token, nil
}
