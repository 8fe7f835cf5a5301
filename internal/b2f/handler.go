package b2f

import (
	"context"
	"log/slog"

	"github.com/n0call/b2fd/internal/logging"
	"github.com/n0call/b2fd/internal/mailbox"
	"github.com/n0call/b2fd/internal/metrics"
	"github.com/n0call/b2fd/internal/server"
	"github.com/n0call/b2fd/internal/users"
)

// Handler builds a server.ConnectionHandler that runs the B2F session
// engine over each accepted connection. users and store are shared,
// read-only across every session; collector may be nil, in which case
// metrics are discarded. keepRawFrames is forwarded to every session's
// Config.KeepRawFrames.
func Handler(hostname string, userDir *users.Directory, store *mailbox.Store, collector metrics.Collector, keepRawFrames bool) server.ConnectionHandler {
	if collector == nil {
		collector = &metrics.NoopCollector{}
	}

	return func(ctx context.Context, conn *server.Connection) {
		logger := logging.FromContext(ctx).With(slog.String("remote_addr", conn.RemoteAddr()))

		sess := NewSession(conn, Config{
			Hostname:      hostname,
			Users:         userDir,
			Mailbox:       store,
			Logger:        logger,
			Metrics:       collector,
			KeepRawFrames: keepRawFrames,
		})

		logger.Info("session started")
		sess.Run(ctx)
	}
}
