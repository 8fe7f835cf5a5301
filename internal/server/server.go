package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/n0call/b2fd/internal/config"
	"github.com/n0call/b2fd/internal/logging"
)

// Server accepts connections on the configured listen address and
// dispatches them to a ConnectionHandler.
type Server struct {
	cfg     *config.Config
	logger  *slog.Logger
	handler ConnectionHandler
	limiter *ConnectionLimiter

	mu       sync.Mutex
	listener *Listener
}

// Config holds configuration for creating a new Server.
type Config struct {
	Cfg    *config.Config
	Logger *slog.Logger
}

// New creates a new Server with the given configuration.
func New(sc Config) (*Server, error) {
	logger := sc.Logger
	if logger == nil {
		logger = logging.NewLogger(sc.Cfg.LogLevel)
	}

	return &Server{
		cfg:     sc.Cfg,
		logger:  logger,
		limiter: NewConnectionLimiter(sc.Cfg.Limits.MaxConnections),
	}, nil
}

// SetHandler sets the connection handler. Must be called before Run.
func (s *Server) SetHandler(handler ConnectionHandler) {
	s.handler = handler
}

// Run starts the listener and blocks until the context is cancelled or
// the listener fails (for example, when the address cannot be bound).
// Handlers receive a context carrying the server's logger.
func (s *Server) Run(ctx context.Context) error {
	s.mu.Lock()

	if s.handler == nil {
		s.handler = s.defaultHandler
	}

	listener := NewListener(ListenerConfig{
		Address:      s.cfg.Listen,
		LineTimeout:  s.cfg.Timeouts.LineTimeout(),
		BatchTimeout: s.cfg.Timeouts.BatchTimeout(),
		Limiter:      s.limiter,
		Logger:       s.logger,
		Handler:      s.handler,
	})
	s.listener = listener

	s.mu.Unlock()

	s.logger.Info("starting server",
		slog.String("hostname", s.cfg.Hostname),
		slog.String("address", s.cfg.Listen),
	)

	listenCtx := logging.NewContext(ctx, s.logger)

	errChan := make(chan error, 1)
	go func() {
		if err := listener.Start(listenCtx); err != nil && err != context.Canceled {
			errChan <- fmt.Errorf("listener %s: %w", listener.Address(), err)
			return
		}
		errChan <- nil
	}()

	var err error
	select {
	case <-ctx.Done():
		s.logger.Info("server shutting down")
		err = <-errChan
	case err = <-errChan:
	}

	s.logger.Info("server stopped")

	if err != nil {
		return err
	}
	return ctx.Err()
}

// Shutdown gracefully stops the server by closing its listener.
func (s *Server) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		_ = s.listener.Close()
	}
}

// Logger returns the server's logger.
func (s *Server) Logger() *slog.Logger {
	return s.logger
}

// Config returns the server's configuration.
func (s *Server) Config() *config.Config {
	return s.cfg
}

// defaultHandler is a placeholder handler used when no handler has been
// configured. It logs and closes the connection.
func (s *Server) defaultHandler(ctx context.Context, conn *Connection) {
	logger := logging.FromContext(ctx)
	logger.Info("connection handler not implemented - closing connection")
}
