package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/saintsjh/PortfolioWebsite/internal/worker"
)

// ServerConfig configures the full server.
type ServerConfig struct {
	FPS              int
	Field            worker.Options
	AllowedOrigins   []string
	RateLimit        RateLimitConfig
	MaxClients       int
	MaxFieldSessions int
	DisableLogging   bool

	// NewView builds the simulation for each /ws/characters viewer. The
	// route is not served when it is nil.
	NewView ViewFactory
}

// Server is the HTTP API server with per-viewer character sessions and
// field worker sessions. The REST routes drive one designated view.
type Server struct {
	router      *chi.Mux
	characters  *CharacterSessions
	field       *FieldSessions
	rateLimiter *IPRateLimiter
	httpServer  *http.Server
}

// NewServer creates the server. ctrl is the view behind the REST routes;
// each WebSocket viewer gets its own from cfg.NewView.
func NewServer(ctrl Controller, cfg ServerConfig) *Server {
	if cfg.FPS <= 0 {
		cfg.FPS = 60
	}
	if cfg.Field.Params.SubSteps == 0 {
		cfg.Field = worker.DefaultOptions()
	}
	if cfg.RateLimit.RequestsPerSecond <= 0 {
		cfg.RateLimit = DefaultRateLimitConfig
	}
	if cfg.MaxClients <= 0 {
		cfg.MaxClients = 200
	}
	if cfg.MaxFieldSessions <= 0 {
		cfg.MaxFieldSessions = 32
	}
	origins := NewOriginChecker(cfg.AllowedOrigins)

	s := &Server{
		field:       NewFieldSessions(cfg.Field, origins, cfg.MaxFieldSessions, cfg.RateLimit),
		rateLimiter: NewIPRateLimiter(cfg.RateLimit),
	}
	if cfg.NewView != nil {
		s.characters = NewCharacterSessions(cfg.NewView, origins, cfg.MaxClients, cfg.FPS, cfg.RateLimit)
	}
	s.router = NewRouter(RouterConfig{
		Controller:     ctrl,
		Field:          cfg.Field,
		RateLimiter:    s.rateLimiter,
		CORSOrigins:    cfg.AllowedOrigins,
		DisableLogging: cfg.DisableLogging,
	})
	s.setupWebSocketRoutes()
	return s
}

// setupWebSocketRoutes adds the routes that need the session instances.
func (s *Server) setupWebSocketRoutes() {
	if s.characters != nil {
		s.router.Get("/ws/characters", s.characters.HandleWebSocket)
	}
	s.router.Get("/ws/field", s.field.HandleWebSocket)
}

// Start serves HTTP until Stop. It returns nil after a clean shutdown.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Printf("🌐 API server starting on %s", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Router returns the HTTP handler for use with httptest.
func (s *Server) Router() http.Handler {
	return s.router
}

// Characters returns the character session handler, or nil when no view
// factory was configured.
func (s *Server) Characters() *CharacterSessions {
	return s.characters
}

// FieldSessions returns the field session handler.
func (s *Server) FieldSessions() *FieldSessions {
	return s.field
}

// Stop shuts the server down gracefully: listeners first, then viewers,
// then field workers.
func (s *Server) Stop(ctx context.Context) error {
	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}
	if s.characters != nil {
		s.characters.Close()
	}
	s.field.Close()
	s.rateLimiter.Stop()

	done := make(chan struct{})
	go func() {
		if s.characters != nil {
			s.characters.Wait()
		}
		s.field.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		log.Println("⚠️ Sessions still running at shutdown")
	}
	log.Println("🛑 API server stopped")
	return err
}
