package handler

import (
	"context"
	"net/http"

	"creditagency/core"
	"creditagency/handler/auth"
	"creditagency/handler/gateway"
	"creditagency/handler/hc"
	"creditagency/handler/metrics"
	"creditagency/handler/render"
	"creditagency/handler/rest"

	"github.com/fox-one/pkg/logger"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/rs/cors"
	"github.com/twitchtv/twirp"
)

// Server server
type Server struct {
	agency       core.AgencyService
	transactions core.TransactionStore
	auth         *auth.Authenticator
	metrics      *metrics.Metrics
	// markets served in process, nil when markets are remote
	hub     gateway.Hub
	version string
}

// New new server function
func New(
	agency core.AgencyService,
	transactions core.TransactionStore,
	authenticator *auth.Authenticator,
	m *metrics.Metrics,
	hub gateway.Hub,
	version string,
) Server {
	return Server{
		agency:       agency,
		transactions: transactions,
		auth:         authenticator,
		metrics:      m,
		hub:          hub,
		version:      version,
	}
}

// Handler root handler with hc, metrics, the rest api and the market gateway
func (s Server) Handler() http.Handler {
	mux := chi.NewMux()
	mux.Use(middleware.Recoverer)
	mux.Use(middleware.StripSlashes)
	mux.Use(cors.AllowAll().Handler)
	mux.Use(logger.WithRequestID)
	mux.Use(middleware.Logger)
	mux.Use(s.metrics.Middleware)

	mux.Mount("/hc", hc.Handle(s.version, func(ctx context.Context) error {
		_, err := s.agency.Configuration(ctx)
		return err
	}))
	mux.Mount("/metrics", s.metrics.Handler())
	mux.Mount("/api", s.HandleRestAPI())

	if s.hub != nil {
		mux.Mount("/gateway", s.HandleGateway())
	}

	return mux
}

// HandleRestAPI handle restful apis
func (s Server) HandleRestAPI() http.Handler {
	r := chi.NewRouter()
	r.Use(auth.HandleAuthentication(s.auth))
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.Error(w, twirp.NotFoundError("not found"))
	})

	r.Mount("/", rest.Handle(s.agency, s.transactions))
	return r
}

// HandleGateway serve the in process markets to authenticated callers
func (s Server) HandleGateway() http.Handler {
	r := chi.NewRouter()
	r.Use(auth.HandleAuthentication(s.auth))
	r.Mount("/", gateway.Handle(s.hub))
	return r
}
