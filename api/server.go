/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request
  2. Logging:    zerolog request logger + access line (logging.Middleware)
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for the admin frontend

ROUTE GROUPS:
  /healthz                               Liveness (pings the store)
  /api/properties/*                      Properties
  /api/properties/{pid}/room-types/*     Room types
  /api/properties/{pid}/rules/*          Pricing rules
  /api/properties/{pid}/quote            Nightly quote
  /api/properties/{pid}/stay-quote       Stay quote
  /api/scenarios/*                       Demo scenarios

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/warp/rate-engine/logging"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	Logger      zerolog.Logger
	CORSOrigins []string
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(logging.Middleware(opts.Logger)...)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/properties", func(r chi.Router) {
			r.Get("/", h.ListProperties)
			r.Post("/", h.CreateProperty)

			r.Route("/{pid}", func(r chi.Router) {
				r.Get("/", h.GetProperty)
				r.Get("/quote", h.GetQuote)
				r.Get("/stay-quote", h.GetStayQuote)

				// Room type routes
				r.Route("/room-types", func(r chi.Router) {
					r.Get("/", h.ListRoomTypes)
					r.Post("/", h.CreateRoomType)
					r.Get("/{id}", h.GetRoomType)
					r.Put("/{id}", h.UpdateRoomType)
					r.Delete("/{id}", h.DeleteRoomType)
				})

				// Rule routes
				r.Route("/rules", func(r chi.Router) {
					r.Get("/", h.ListRules)
					r.Post("/", h.CreateRule)
					r.Get("/{id}", h.GetRule)
					r.Put("/{id}", h.UpdateRule)
					r.Delete("/{id}", h.DeleteRule)
					r.Post("/{id}/activate", h.ActivateRule)
					r.Post("/{id}/deactivate", h.DeactivateRule)
				})
			})
		})

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	return r
}
