// Package metrics provides interfaces and implementations for collecting
// B2F forwarding server metrics. This package defines the Collector
// interface for recording metrics and the Server interface for exposing
// them over HTTP.
package metrics

import "context"

// Collector defines the interface for recording B2F server metrics.
type Collector interface {
	// Connection metrics
	ConnectionOpened()
	ConnectionClosed()

	// AuthAttempt records a login attempt for the given callsign.
	AuthAttempt(callsign string, success bool)

	// ProposalReceived records an inbound message proposal.
	ProposalReceived()

	// MessageAccepted records a message that was fully received,
	// decompressed, and persisted to the mailbox.
	MessageAccepted(sizeBytes int64)

	// MessageRejected records a message rejected during transfer, tagged
	// with the reason (e.g. "Checksum", "SizeMismatch", "decompress").
	MessageRejected(reason string)

	// BatchDuration records the wall-clock duration of a RECEIVING-state
	// batch transfer, from the first FC proposal to the final FQ/FF reply.
	BatchDuration(seconds float64)
}

// Server defines the interface for a metrics HTTP server.
type Server interface {
	// Start begins serving metrics. It blocks until the context is canceled
	// or an error occurs.
	Start(ctx context.Context) error

	// Shutdown gracefully stops the metrics server.
	Shutdown(ctx context.Context) error
}
