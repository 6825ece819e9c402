package rest

import (
	"net/http"

	"creditagency/core"
	"creditagency/handler/param"
	"creditagency/handler/render"
)

func transactionsHandler(transactions core.TransactionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			Account string `json:"account"`
			From    int64  `json:"from"`
			Limit   int    `json:"limit"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		if params.Limit <= 0 || params.Limit > 500 {
			params.Limit = 500
		}

		items, err := transactions.ListByAccount(r.Context(), params.Account, params.From, params.Limit)
		if err != nil {
			render.Error(w, err)
			return
		}

		if items == nil {
			items = []*core.Transaction{}
		}

		render.JSON(w, render.H{"transactions": items})
	}
}
