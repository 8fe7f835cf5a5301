package b2f

import "errors"

// Session-level error kinds, matching the error taxonomy the protocol
// distinguishes for logging and NAK reason selection. TransportError
// and StoreError are not sentinel values here: transport errors are
// whatever the underlying net.Conn returns, and store errors are
// logged by internal/mailbox without ever reaching the session.
var (
	// ErrFormat covers malformed input lines: an empty callsign, a bad FC
	// line, or too many unrecognized COMMAND lines in a row. A malformed
	// SID line is ignored rather than reported with it.
	ErrFormat = errors.New("b2f: malformed protocol line")

	// ErrAuth is returned when a callsign is unknown or its password
	// does not match.
	ErrAuth = errors.New("b2f: authentication failed")

	// ErrDecompress is returned when the lzhuf codec rejects a
	// reassembled compressed payload.
	ErrDecompress = errors.New("b2f: decompression failed")
)
