package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Server wraps the http.Server and its middleware chain.
type Server struct {
	server *http.Server
	config ServerConfig
	log    *zap.Logger
}

// ServerConfig holds the listener settings.
type ServerConfig struct {
	Port           int
	Timeout        time.Duration
	AllowedOrigins []string
}

// DefaultServerConfig returns the standard listener settings. Training large
// datasets runs inside a request, so the write timeout is generous.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:           8080,
		Timeout:        120 * time.Second,
		AllowedOrigins: []string{"*"},
	}
}

// NewServer builds the server around an App.
func NewServer(config ServerConfig, app *App) *Server {
	mux := http.NewServeMux()
	RegisterHandlers(mux, app)

	chain := Chain(
		RecoveryMiddleware(app.Log),
		LoggingMiddleware(app.Log),
		CORSMiddleware(config.AllowedOrigins),
	)

	return &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", config.Port),
			Handler:      chain(mux),
			ReadTimeout:  config.Timeout,
			WriteTimeout: config.Timeout,
			IdleTimeout:  120 * time.Second,
		},
		config: config,
		log:    app.Log,
	}
}

// Start runs the listener until Stop or failure.
func (s *Server) Start() error {
	s.log.Info("starting http server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Stop shuts the server down, letting in-flight requests finish.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}
