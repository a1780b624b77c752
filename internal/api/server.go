package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"vehiclerules/internal/auth"
	"vehiclerules/internal/store"
	"vehiclerules/internal/telemetry"
	"vehiclerules/internal/validation"
)

// Server wires the HTTP layer: the public validate endpoint and the
// admin-guarded rule catalog endpoints.
type Server struct {
	store          store.Store
	validator      *validation.Service
	admin          auth.Admin
	rateLimitPerIP int
	defaultActor   string
}

// Options configures a Server.
type Options struct {
	Store          store.Store
	Validator      *validation.Service
	Admin          auth.Admin
	RateLimitPerIP int
	DefaultActor   string
}

// NewServer creates an API server.
func NewServer(opts Options) *Server {
	if opts.RateLimitPerIP <= 0 {
		opts.RateLimitPerIP = 100
	}
	return &Server{
		store:          opts.Store,
		validator:      opts.Validator,
		admin:          opts.Admin,
		rateLimitPerIP: opts.RateLimitPerIP,
		defaultActor:   opts.DefaultActor,
	}
}

// Router builds the chi router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(telemetry.Middleware)
	r.Use(middleware.Timeout(10 * time.Second))

	// health
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// public: validation, rate limited per client IP
	r.Group(func(r chi.Router) {
		r.Use(httprate.LimitByIP(s.rateLimitPerIP, time.Minute))
		r.Post("/v1/validate", s.handleValidate)
	})

	// admin (protected): rule catalog
	r.Group(func(r chi.Router) {
		r.Use(s.admin.Middleware(authError))
		r.Put("/v1/rules", s.handleUpsertRule)
		r.Get("/v1/rules", s.handleListRules)
		r.Get("/v1/rules/{id}", s.handleGetRule)
		r.Delete("/v1/rules/{id}", s.handleDeleteRule)
	})

	return r
}

func authError(w http.ResponseWriter, r *http.Request, status int, message string) {
	code := ErrCodeUnauthorized
	if status == http.StatusForbidden {
		code = ErrCodeForbidden
	}
	writeErrorResponse(w, r, status, NewErrorResponse(status, code, message))
}
