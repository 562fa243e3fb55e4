package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/baharkarakas/hbnb-api/internal/api/handlers"
	"github.com/baharkarakas/hbnb-api/internal/api/httpx"
	"github.com/baharkarakas/hbnb-api/internal/auth"
	"github.com/baharkarakas/hbnb-api/internal/config"
	"github.com/baharkarakas/hbnb-api/internal/metrics"
	"github.com/baharkarakas/hbnb-api/internal/middleware"
	"github.com/baharkarakas/hbnb-api/internal/services"
)

type RouterDeps struct {
	Cfg     config.Config
	Log     *slog.Logger
	Catalog *services.Catalog
	Tokens  *auth.TokenManager
	Limiter *middleware.RateLimiter // nil disables rate limiting
}

func NewRouter(d RouterDeps) http.Handler {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	authMW := middleware.NewAuthMiddleware(d.Tokens)
	ah := handlers.NewAuthHandler(d.Tokens, d.Catalog)
	ch := handlers.NewCatalogHandler(d.Catalog)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Logging(d.Log), middleware.Recover, middleware.HTTPMetrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.Cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteError(w, http.StatusNotFound, "not_found", "route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed", nil)
	})

	// health & metrics
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(authMW.Authenticate, middleware.RateLimit(d.Limiter))

		// ---------- auth ----------
		r.Post("/auth/login", ah.Login)
		r.Post("/auth/refresh", ah.Refresh)
		r.With(middleware.RequireAuth).Get("/auth/me", ah.Me)

		// ---------- users ----------
		r.Get("/users", ch.ListUsers)
		r.Get("/users/{id}", ch.GetUser)
		r.With(middleware.RequireAdmin).Post("/users", ch.CreateUser)
		r.With(middleware.RequireAuth).Put("/users/{id}", ch.UpdateUser)

		// ---------- places ----------
		r.Get("/places", ch.ListPlaces)
		r.Get("/places/{id}", ch.GetPlace)
		r.Get("/places/{id}/reviews", ch.ListPlaceReviews)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Post("/places", ch.CreatePlace)
			r.Put("/places/{id}", ch.UpdatePlace)
			r.Delete("/places/{id}", ch.DeletePlace)
		})

		// ---------- reviews ----------
		r.Get("/reviews", ch.ListReviews)
		r.Get("/reviews/{id}", ch.GetReview)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Post("/reviews", ch.CreateReview)
			r.Put("/reviews/{id}", ch.UpdateReview)
			r.Delete("/reviews/{id}", ch.DeleteReview)
		})

		// ---------- amenities ----------
		r.Get("/amenities", ch.ListAmenities)
		r.Get("/amenities/{id}", ch.GetAmenity)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Post("/amenities", ch.CreateAmenity)
			r.Put("/amenities/{id}", ch.UpdateAmenity)
		})

		// ---------- audit ----------
		r.With(middleware.RequireAdmin).Get("/audit-logs", ch.ListAuditLogs)
	})
	return r
}
