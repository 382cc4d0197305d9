// Package router assembles the HTTP surface of the calendar service.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sofia-praxis/dental-calendar/internal/appointments"
	"github.com/sofia-praxis/dental-calendar/internal/assistant"
	"github.com/sofia-praxis/dental-calendar/internal/availability"
	"github.com/sofia-praxis/dental-calendar/internal/demo"
	"github.com/sofia-praxis/dental-calendar/internal/events"
	httpmiddleware "github.com/sofia-praxis/dental-calendar/internal/http/middleware"
	"github.com/sofia-praxis/dental-calendar/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger              *logging.Logger
	AppointmentsHandler *appointments.Handler
	AvailabilityHandler *availability.Handler
	AssistantHandler    *assistant.Handler
	Hub                 *events.Hub
	MetricsHandler      http.Handler
	CORSAllowedOrigins  []string

	// Demo seeding (optional, config-gated; never mounted in production)
	DemoSeeder *demo.Seeder
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", handleHealth)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// Calendar UI endpoints
	r.Route("/appointments", func(r chi.Router) {
		r.Get("/", cfg.AppointmentsHandler.List)
		r.Post("/", cfg.AppointmentsHandler.Create)
		r.Put("/{id}", cfg.AppointmentsHandler.Update)
		r.Delete("/{id}", cfg.AppointmentsHandler.Delete)
	})

	r.Route("/availability", func(r chi.Router) {
		r.Get("/next", cfg.AvailabilityHandler.Next)
		r.Get("/suggestions", cfg.AvailabilityHandler.Suggestions)
		r.Get("/{date}", cfg.AvailabilityHandler.CheckDate)
	})

	// Voice assistant endpoints
	r.Route("/assistant", func(r chi.Router) {
		r.Post("/book", cfg.AssistantHandler.Book)
		r.Get("/today", cfg.AssistantHandler.Today)
		r.Get("/week", cfg.AssistantHandler.Week)
		r.Get("/upcoming", cfg.AssistantHandler.Upcoming)
		r.Get("/patient/{phone}", cfg.AssistantHandler.Patient)
	})

	// Live event channel for calendar viewers
	if cfg.Hub != nil {
		r.Get("/events/ws", cfg.Hub.HandleWebSocket)
	}

	if cfg.DemoSeeder != nil {
		r.Mount("/demo", cfg.DemoSeeder.Routes())
	}

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	appointments.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
