package b2f

import (
	"log/slog"
	"time"

	"github.com/n0call/b2fd/internal/mailbox"
	"github.com/n0call/b2fd/internal/metrics"
	"github.com/n0call/b2fd/internal/server"
	"github.com/n0call/b2fd/internal/users"
)

// maxConsecutiveUnknowns bounds how many unrecognized COMMAND-state
// lines a session tolerates before giving up on the peer.
const maxConsecutiveUnknowns = 3

// Session drives one accepted connection through the B2F state
// machine. It owns its connection, its proposal queue, and its
// reassembly state exclusively — nothing here is shared with any other
// session.
type Session struct {
	conn          *server.Connection
	logger        *slog.Logger
	metrics       metrics.Collector
	users         *users.Directory
	mailbox       *mailbox.Store
	hostname      string
	keepRawFrames bool

	state      State
	callsign   string
	sid        SID
	proposals  []Proposal
	batchStart time.Time

	consecutiveUnknowns int
}

// Config bundles the dependencies a Session needs beyond the raw
// connection: the shared, read-only user directory and mailbox store,
// plus the logger and metrics collector for this connection.
type Config struct {
	Hostname string
	Users    *users.Directory
	Mailbox  *mailbox.Store
	Logger   *slog.Logger
	Metrics  metrics.Collector

	// KeepRawFrames, when true, makes an accepted batch's raw B2 frame
	// bytes available to the mailbox store alongside the decoded
	// headers/body/attachments.
	KeepRawFrames bool
}

// NewSession constructs a Session bound to conn.
func NewSession(conn *server.Connection, cfg Config) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	collector := cfg.Metrics
	if collector == nil {
		collector = &metrics.NoopCollector{}
	}

	return &Session{
		conn:          conn,
		logger:        logger,
		metrics:       collector,
		users:         cfg.Users,
		mailbox:       cfg.Mailbox,
		hostname:      cfg.Hostname,
		keepRawFrames: cfg.KeepRawFrames,
		state:         StateConnected,
	}
}

// State returns the session's current state.
func (s *Session) State() State {
	return s.state
}
