package api

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
)

// NewRouter builds the chi router. Health is unauthenticated; everything
// else requires the bearer token. Requests are limited to 60 per minute per IP.
func NewRouter(handlers *Handlers, token string, store Pinger, log *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(httprate.LimitByIP(60, time.Minute))

	r.Get("/api/v1/health", HealthHandlerFunc(store, log))

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(token))
		r.Use(LimitBody(maxBodyBytes))

		r.Get("/api/v1/session", handlers.GetSession)
		r.Put("/api/v1/search", handlers.PutSearch)
		r.Post("/api/v1/selection", handlers.PostSelection)
		r.Delete("/api/v1/selection", handlers.DeleteSelection)
		r.Get("/api/v1/weather", handlers.GetWeather)
		r.Post("/api/v1/places", handlers.PostPlaces)
		r.Delete("/api/v1/places", handlers.DeletePlaces)
		r.Post("/api/v1/places/edit", handlers.PostEdit)
		r.Delete("/api/v1/places/edit", handlers.DeleteEdit)
		r.Delete("/api/v1/toast", handlers.DeleteToast)
	})

	return r
}
