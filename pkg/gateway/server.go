package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/manusawe00z/go-bot/pkg/config"
	"github.com/manusawe00z/go-bot/pkg/logger"
	"github.com/manusawe00z/go-bot/pkg/publish"
)

// Server exposes the publisher over HTTP alongside a health check.
type Server struct {
	cfg      config.ServerConfig
	language string
	version  string
	pub      *publish.Publisher
	log      *logger.Logger
	limiter  *rate.Limiter
	server   *http.Server
	addr     string
}

// NewServer creates a new Gateway HTTP server. language is used for
// requests that do not name one.
func NewServer(cfg config.ServerConfig, language, version string, pub *publish.Publisher, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	s := &Server{
		cfg:      cfg,
		language: language,
		version:  version,
		pub:      pub,
		log:      log,
	}
	if rpm := cfg.RequestsPerMinute; rpm > 0 {
		s.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), rpm)
	}
	return s
}

// Handler returns the routed handler; Start serves it.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /v1/speech", s.authMiddleware(s.rateLimit(s.handleSpeech)))
	return mux
}

// Start binds the configured address and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	s.addr = ln.Addr().String()
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		s.log.InfoCF("gateway", "HTTP server starting", map[string]any{"addr": s.addr})
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.ErrorCF("gateway", "HTTP server error", map[string]any{"error": err.Error()})
		}
	}()

	return nil
}

// Addr is the bound address once Start has returned.
func (s *Server) Addr() string {
	return s.addr
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	s.log.InfoC("gateway", "Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
