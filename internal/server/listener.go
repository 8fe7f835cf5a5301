package server

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"time"
)

// ConnectionHandler processes a single accepted connection. It must return
// once the session is complete; the listener closes the connection
// afterward.
type ConnectionHandler func(ctx context.Context, conn *Connection)

// ListenerConfig holds the parameters for a single Listener.
type ListenerConfig struct {
	Address      string
	LineTimeout  time.Duration
	BatchTimeout time.Duration
	Limiter      *ConnectionLimiter
	Logger       *slog.Logger
	Handler      ConnectionHandler
}

// Listener accepts TCP connections on a single address and dispatches them
// to the configured handler, one goroutine per connection.
type Listener struct {
	cfg ListenerConfig

	mu sync.Mutex
	ln net.Listener
}

// NewListener creates a Listener from cfg. The underlying socket is not
// opened until Start is called.
func NewListener(cfg ListenerConfig) *Listener {
	return &Listener{cfg: cfg}
}

// Address returns the configured listen address.
func (l *Listener) Address() string {
	return l.cfg.Address
}

// Start opens the listening socket and accepts connections until ctx is
// canceled or Close is called.
func (l *Listener) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", l.cfg.Address)
	if err != nil {
		return err
	}

	l.mu.Lock()
	l.ln = ln
	l.mu.Unlock()

	go func() {
		<-ctx.Done()
		_ = l.Close()
	}()

	l.cfg.Logger.Info("listener started", slog.String("address", l.cfg.Address))

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		if l.cfg.Limiter != nil && !l.cfg.Limiter.TryAcquire() {
			l.cfg.Logger.Warn("connection limit reached, rejecting",
				slog.String("remote_addr", conn.RemoteAddr().String()))
			_ = conn.Close()
			continue
		}

		wg.Add(1)
		go func(nc net.Conn) {
			defer wg.Done()
			if l.cfg.Limiter != nil {
				defer l.cfg.Limiter.Release()
			}
			defer nc.Close()

			c := NewConnection(ConnectionConfig{
				Conn:         nc,
				LineTimeout:  l.cfg.LineTimeout,
				BatchTimeout: l.cfg.BatchTimeout,
			})
			l.cfg.Handler(ctx, c)
		}(conn)
	}
}

// Close closes the listening socket, causing Start to return.
func (l *Listener) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ln == nil {
		return nil
	}
	return l.ln.Close()
}
