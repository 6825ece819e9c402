package hc

import (
	"context"
	"net/http"
	"time"

	"creditagency/handler/render"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
)

// Check reports whether a dependency is reachable
type Check func(ctx context.Context) error

// Handle handle hc request, a failing check turns the response into 503
func Handle(ver string, checks ...Check) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.NoCache)
	r.Handle("/", handle(ver, checks))
	return r
}

func handle(version string, checks []Check) http.HandlerFunc {
	b := time.Now()
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status := "ok"
		for _, check := range checks {
			if err := check(ctx); err != nil {
				status = err.Error()
				break
			}
		}

		uptime := time.Since(b).Truncate(time.Millisecond)
		body := render.H{
			"uptime":  uptime.String(),
			"version": version,
			"status":  status,
		}

		if status != "ok" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			render.Write(w, body)
			return
		}

		render.JSON(w, body)
	}
}
