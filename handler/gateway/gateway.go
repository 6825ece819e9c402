// Package gateway serves markets over http, the counterpart of service/remote.
//
// Every route needs an authenticated caller. Commands are sent as the caller, agency
// only commands and the instantiation feed are reserved to the agency identity of the hub.
package gateway

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"creditagency/core"
	"creditagency/handler/auth"
	"creditagency/handler/param"
	"creditagency/handler/render"
	"creditagency/handler/request"
	"creditagency/handler/views"

	"github.com/go-chi/chi"
)

// Hub markets served by the gateway
type Hub interface {
	core.MarketClient
	core.MarketExecutor
	core.InstantiationFeed
	// AgencyAddress identity allowed to send agency only commands
	AgencyAddress() string
}

// Ledger user facing market actions, optional
type Ledger interface {
	Deposit(ctx context.Context, account string, coin core.Coin) error
	Borrow(ctx context.Context, account string, coin core.Coin) error
	Repay(ctx context.Context, account string, coin core.Coin) error
	Withdraw(ctx context.Context, account string, coin core.Coin) error
}

// Handle gateway routes, ledger actions are mounted when hub implements Ledger.
// Callers are read from the request context, see auth.HandleAuthentication.
func Handle(hub Hub) http.Handler {
	r := chi.NewRouter()
	r.Use(auth.LoginRequired)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.NotFoundRequest(w, errors.New("not found"))
	})

	r.Route("/markets/{market}", func(r chi.Router) {
		r.Get("/credit-line/{account}", creditLine(hub))
		r.Get("/balances/{account}", balances(hub))
		r.Get("/price", price(hub))
		r.Get("/config", configuration(hub))
	})
	r.Post("/execute", execute(hub))

	r.Group(func(r chi.Router) {
		r.Use(agencyOnly(hub.AgencyAddress()))
		r.Get("/instantiations", pending(hub))
		r.Delete("/instantiations/{id}", ack(hub))
	})

	if l, ok := hub.(Ledger); ok {
		r.Post("/deposit", action("deposit", l.Deposit))
		r.Post("/borrow", action("borrow", l.Borrow))
		r.Post("/repay", action("repay", l.Repay))
		r.Post("/withdraw", action("withdraw", l.Withdraw))
	}

	return r
}

func caller(r *http.Request) string {
	c, _ := request.Caller(r.Context())
	return c
}

func agencyOnly(agency string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if caller(r) != agency {
				render.Error(w, core.ErrUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func creditLine(hub Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := hub.CreditLine(r.Context(), chi.URLParam(r, "market"), chi.URLParam(r, "account"))
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, v)
	}
}

func balances(hub Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := hub.TokensBalance(r.Context(), chi.URLParam(r, "market"), chi.URLParam(r, "account"))
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, v)
	}
}

func price(hub Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rate, err := hub.PriceLocalPerCommon(r.Context(), chi.URLParam(r, "market"))
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, render.H{"rate": rate})
	}
}

func configuration(hub Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg, err := hub.Configuration(r.Context(), chi.URLParam(r, "market"))
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, cfg)
	}
}

func execute(hub Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Msgs []*core.MarketMsg `json:"msgs"`
		}
		if err := param.Binding(r, &body); err != nil {
			render.BadRequest(w, err)
			return
		}

		sender := caller(r)
		for _, msg := range body.Msgs {
			if msg == nil {
				render.BadRequest(w, errors.New("empty market command"))
				return
			}

			if msg.Type != core.MarketMsgRepayOnBehalf && sender != hub.AgencyAddress() {
				render.Error(w, core.ErrUnauthorized)
				return
			}

			msg.Sender = sender
		}

		entries, err := hub.Execute(r.Context(), body.Msgs)
		if err != nil {
			render.Error(w, err)
			return
		}

		if entries == nil {
			entries = []*core.MarketEntry{}
		}

		render.JSON(w, render.H{"entries": entries})
	}
}

func pending(hub Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			Limit int `json:"limit"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		replies, err := hub.Pending(r.Context(), params.Limit)
		if err != nil {
			render.Error(w, err)
			return
		}

		if replies == nil {
			replies = []*core.InstantiateReply{}
		}

		render.JSON(w, replies)
	}
}

func ack(hub Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		if err := hub.Ack(r.Context(), id); err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.Done("ack"))
	}
}

func action(name string, fn func(ctx context.Context, account string, coin core.Coin) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Coin core.Coin `json:"coin"`
		}
		if err := param.Binding(r, &body); err != nil {
			render.BadRequest(w, err)
			return
		}

		// the caller acts on its own account only
		if err := fn(r.Context(), caller(r), body.Coin); err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.Done(name))
	}
}
