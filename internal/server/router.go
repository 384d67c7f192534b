package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/georgemunganga/printpress-backend/internal/config"
)

const loginRatePerMinute = 10

// Routes is implemented by every module handler.
type Routes interface {
	RegisterRoutes(r chi.Router)
}

// Handlers groups the route sets by the access they need.
type Handlers struct {
	Health HealthHandler
	// Public is mounted without authentication and under the login limit.
	Public interface{ RegisterPublicRoutes(r chi.Router) }
	// Realtime authenticates on its own and is exempt from the request timeout.
	Realtime Routes
	// Protected requires a valid bearer token.
	Protected []Routes
}

// NewRouter wires HTTP routes and middleware.
func NewRouter(cfg config.Config, logger *slog.Logger, auth Authenticator, h Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(NewLoggerMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	h.Health.RegisterRoutes(r)
	r.Method("GET", "/metrics", promhttp.Handler())
	if h.Realtime != nil {
		h.Realtime.RegisterRoutes(r)
	}

	r.Group(func(api chi.Router) {
		api.Use(middleware.Timeout(60 * time.Second))
		api.Use(httprate.LimitByIP(cfg.RateLimitPerMinute, time.Minute))

		if h.Public != nil {
			api.Group(func(pub chi.Router) {
				pub.Use(httprate.LimitByIP(loginRatePerMinute, time.Minute))
				h.Public.RegisterPublicRoutes(pub)
			})
		}

		api.Group(func(pr chi.Router) {
			pr.Use(AuthMiddleware(auth))
			for _, routes := range h.Protected {
				routes.RegisterRoutes(pr)
			}
		})
	})

	return r
}
