package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dreamlister/dreamlister-api/internal/api"
	apiMiddleware "github.com/dreamlister/dreamlister-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware. Returns the configured router.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(apiMiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(app.userStore, app.jwtService, app.hasher)
	itemHandler := api.NewItemHandler(app.itemStore)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	// Authentication endpoints (public). The original wire contract uses
	// PUT /auth for login and POST /auth for registration.
	r.Put("/auth", authHandler.Login)
	r.Post("/auth", authHandler.Register)

	// Item endpoints, all scoped to the authenticated username.
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Get("/items", itemHandler.List)
		r.Post("/item", itemHandler.Create)
		r.Get("/item/{id}", itemHandler.Get)
		r.Put("/item/{id}", itemHandler.Update)
		r.Delete("/item/{id}", itemHandler.Delete)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
