package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/saintsjh/PortfolioWebsite/internal/input"
	"github.com/saintsjh/PortfolioWebsite/internal/layout"
	"github.com/saintsjh/PortfolioWebsite/internal/lifecycle"
	"github.com/saintsjh/PortfolioWebsite/internal/worker"
)

// Controller is the lifecycle surface used by the API.
// Tests substitute a fake; production passes *lifecycle.Controller.
type Controller interface {
	Status() lifecycle.Status
	Frame() *lifecycle.Frame
	ActivatePhysics() error
	StopPhysics()
	SetViewport(vp layout.Viewport)
	Tracker() *input.Tracker
}

// RouterConfig contains all dependencies needed to construct the HTTP router.
//
//	router := api.NewRouter(api.RouterConfig{
//	    Controller:      ctrl,
//	    RateLimitConfig: &api.RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000},
//	})
//	ts := httptest.NewServer(router)
type RouterConfig struct {
	// Controller drives the character simulation (required)
	Controller Controller

	// Field configures the workers behind frame renders and field sessions.
	// The zero value uses worker.DefaultOptions.
	Field worker.Options

	// RateLimiter is an optional pre-configured rate limiter.
	// If nil, a new one will be created using RateLimitConfig.
	RateLimiter *IPRateLimiter

	// RateLimitConfig is used only when RateLimiter is nil.
	RateLimitConfig *RateLimitConfig

	// CORSOrigins lists allowed CORS origins. Nil allows localhost only.
	CORSOrigins []string

	// DisableLogging disables the request logger middleware (useful for benchmarks).
	DisableLogging bool
}

type routerHandlers struct {
	ctrl  Controller
	field worker.Options
}

// NewRouter constructs the HTTP router with all middleware and REST
// routes. It starts no goroutines besides the rate limiter's cleanup and
// opens no listeners.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	// Rate limiting before CORS to reject early
	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rateLimitCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rateLimitCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewIPRateLimiter(rateLimitCfg)
	}
	r.Use(rateLimiter.Middleware)

	corsOrigins := cfg.CORSOrigins
	if corsOrigins == nil {
		corsOrigins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	field := cfg.Field
	if field.Params.SubSteps == 0 {
		field = worker.DefaultOptions()
	}
	h := &routerHandlers{ctrl: cfg.Controller, field: field}

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", h.handleGetState)
		r.Get("/bodies", h.handleGetBodies)
		r.Put("/viewport", h.handlePutViewport)

		r.Post("/physics/activate", h.handleActivate)
		r.Post("/physics/stop", h.handleStop)

		r.Get("/field/frame.png", h.handleFieldFrame)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"status": "ok"})
	})

	return r
}
