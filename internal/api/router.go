package api

import (
	"database/sql"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/skycast-dev/skycast-be/internal/api/handlers"
	"github.com/skycast-dev/skycast-be/internal/auth"
	"github.com/skycast-dev/skycast-be/internal/services"
)

// NewRouter creates and configures a new Chi router. Everything under
// /users and /events sits behind the token verifier; auth and health
// endpoints are public.
func NewRouter(
	db *sql.DB,
	userService services.UserServiceProvider,
	eventService services.EventServiceProvider,
	issuer *auth.TokenIssuer,
	verifier *auth.TokenVerifier,
	allowedOrigin string,
) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{allowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, eventService, issuer)
	userHandler := handlers.NewUserHandler(userService)
	eventHandler := handlers.NewEventHandler(eventService)
	healthHandler := handlers.NewHealthHandler(db)

	// API versioning
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.Check)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})

		// Protected endpoints
		r.Group(func(r chi.Router) {
			r.Use(verifier.Middleware())

			r.Route("/users", func(r chi.Router) {
				r.Get("/", userHandler.List)
				r.Get("/me", userHandler.GetMe)
			})
			r.Get("/events", eventHandler.GetRecent)
		})
	})

	return r
}
