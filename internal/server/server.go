// Package server wires the HTTP API: registration, login, reminder
// CRUD, adherence history, and the Twilio voice webhooks.
package server

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"carecall/internal/config"
	"carecall/internal/ivr"
	"carecall/internal/session"
	"carecall/internal/store"
)

// Server holds the HTTP surface's dependencies.
type Server struct {
	cfg      *config.Config
	store    *store.Store
	sessions session.Store
	ivr      *ivr.Responder
	logger   *log.Logger
	router   *chi.Mux
}

// New creates a Server with all routes registered.
func New(cfg *config.Config, st *store.Store, sessions session.Store, responder *ivr.Responder, logger *log.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		store:    st,
		sessions: sessions,
		ivr:      responder,
		logger:   logger,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	s.router.Use(chimiddleware.Recoverer)

	s.router.Post("/register", s.handleRegister)
	s.router.Post("/login", s.handleLogin)

	s.router.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Post("/add-medicine", s.handleAddMedicine)
		r.Post("/add-water", s.handleAddWater)
		r.Get("/my-reminders", s.handleMyReminders)
		r.Get("/my-adherence", s.handleMyAdherence)
		r.Post("/logout", s.handleLogout)
	})

	// Twilio fetches these; they answer with TwiML, not JSON.
	s.router.Post("/voice", s.handleVoice)
	s.router.Post("/gather", s.handleGather)

	// Localized audio assets referenced by the Kannada prompts.
	fileServer := http.StripPrefix("/static/", http.FileServer(http.Dir(s.cfg.StaticDir)))
	s.router.Get("/static/*", fileServer.ServeHTTP)
}
