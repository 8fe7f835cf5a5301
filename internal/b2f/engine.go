// Package b2f implements the Winlink B2F session state machine: the
// callsign/password login dialog, the FC/F>/FF command exchange, and
// the RECEIVING-state batch walk that ties the frame parser, the lzhuf
// codec, the mail extractor, and the mailbox store together.
package b2f

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/n0call/b2fd/internal/frame"
	"github.com/n0call/b2fd/internal/lzhuf"
	"github.com/n0call/b2fd/internal/mail"
)

// stateHandler executes one state's action and returns the next state.
// A returned error only ever causes a transition toward StateClosing;
// handlers are responsible for sending any NAK/response line first.
type stateHandler func(ctx context.Context, s *Session) (State, error)

var dispatch = map[State]stateHandler{
	StateConnected:       handleConnected,
	StateCallsignEntry:   handleCallsignEntry,
	StatePassword:        handlePassword,
	StateLoginOK:         handleLoginOK,
	StateCommand:         handleCommand,
	StateProposalPending: handleCommand,
	StateReceiving:       handleReceiving,
}

// Run drives the session to completion, dispatching state by state
// until StateClosing is reached, then closes the connection.
func (s *Session) Run(ctx context.Context) {
	s.metrics.ConnectionOpened()
	defer s.metrics.ConnectionClosed()

	for s.state != StateClosing {
		handler, ok := dispatch[s.state]
		if !ok {
			s.logger.Error("no handler registered for state", slog.String("state", s.state.String()))
			return
		}

		next, err := handler(ctx, s)
		if err != nil {
			s.logger.Debug("session ending", slog.String("state", s.state.String()), slog.Any("error", err))
		}
		s.state = next
	}

	s.logger.Info("session closed", slog.String("callsign", s.callsign))
}

func handleConnected(ctx context.Context, s *Session) (State, error) {
	if err := s.conn.SendLine("Callsign :"); err != nil {
		return StateClosing, err
	}
	return StateCallsignEntry, nil
}

func handleCallsignEntry(ctx context.Context, s *Session) (State, error) {
	line, err := s.conn.ReadLine(ctx)
	if err != nil {
		return StateClosing, err
	}
	if strings.TrimSpace(line) == "" {
		return StateClosing, fmt.Errorf("%w: empty callsign", ErrFormat)
	}

	s.callsign = strings.TrimSpace(line)
	return StatePassword, nil
}

func handlePassword(ctx context.Context, s *Session) (State, error) {
	// Some clients expect the forwarding timestamp immediately after
	// the callsign, ahead of the password prompt.
	fw := fmt.Sprintf(";FW:%s", time.Now().UTC().Format("20060102150405"))
	if err := s.conn.SendLine(fw); err != nil {
		return StateClosing, err
	}
	if err := s.conn.SendLine("Password :"); err != nil {
		return StateClosing, err
	}

	line, err := s.conn.ReadLine(ctx)
	if err != nil {
		return StateClosing, err
	}

	ok := s.users != nil && s.users.Authenticate(s.callsign, line)
	s.metrics.AuthAttempt(s.callsign, ok)
	if !ok {
		s.logger.Info("login rejected", slog.String("callsign", s.callsign))
		if err := s.conn.SendLine(";NAK"); err != nil {
			return StateClosing, err
		}
		return StateClosing, ErrAuth
	}

	s.logger.Info("login accepted", slog.String("callsign", s.callsign))
	return StateLoginOK, nil
}

func handleLoginOK(ctx context.Context, s *Session) (State, error) {
	for _, line := range []string{"[AREDN_BRIDGE-1.0-B2F$]", ";PQ: 00000001", "CMS>"} {
		if err := s.conn.SendLine(line); err != nil {
			return StateClosing, err
		}
	}
	return StateCommand, nil
}

// handleCommand implements the COMMAND / PROPOSAL_PENDING dispatch
// table. Both states accept the same set of lines; the only
// difference is whether a proposal queue has already been started,
// which is tracked by s.proposals rather than by two distinct
// handlers.
func handleCommand(ctx context.Context, s *Session) (State, error) {
	line, err := s.conn.ReadLine(ctx)
	if err != nil {
		return StateClosing, err
	}

	switch {
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		s.consecutiveUnknowns = 0
		if sid, ok := ParseSID(line); ok {
			s.sid = sid
			s.logger.Debug("peer SID", slog.String("author", sid.Author), slog.String("version", sid.Version), slog.String("features", sid.Features))
		}
		return currentQueueState(s), nil

	case strings.HasPrefix(line, ";FW:"):
		s.consecutiveUnknowns = 0
		s.logger.Debug("forwarding hint", slog.String("line", line))
		return currentQueueState(s), nil

	case strings.HasPrefix(line, ";PQ:"), strings.HasPrefix(line, ";PM:"), strings.HasPrefix(line, "; "):
		s.consecutiveUnknowns = 0
		return currentQueueState(s), nil

	case strings.HasPrefix(line, "FC "):
		s.consecutiveUnknowns = 0
		prop, err := ParseProposal(line)
		if err != nil {
			s.logger.Warn("malformed proposal line", slog.String("line", line))
			return currentQueueState(s), nil
		}
		if len(s.proposals) == 0 {
			s.batchStart = time.Now()
		}
		s.proposals = append(s.proposals, prop)
		s.metrics.ProposalReceived()
		return StateProposalPending, nil

	case strings.HasPrefix(line, "F>"):
		s.consecutiveUnknowns = 0
		if len(s.proposals) == 0 {
			// No proposals were queued; there is nothing to answer.
			// The protocol defines no response for this case.
			return currentQueueState(s), nil
		}
		answer := strings.Repeat("Y", len(s.proposals))
		if err := s.conn.SendLine("FS " + answer); err != nil {
			return StateClosing, err
		}
		return StateReceiving, nil

	case strings.HasPrefix(line, "FF"):
		if err := s.conn.SendLine("FQ"); err != nil {
			return StateClosing, err
		}
		return StateClosing, nil

	case line == "EXIT":
		return StateClosing, nil

	default:
		s.consecutiveUnknowns++
		if err := s.conn.SendLine(";NAK: Unknown"); err != nil {
			return StateClosing, err
		}
		if s.consecutiveUnknowns >= maxConsecutiveUnknowns {
			return StateClosing, fmt.Errorf("%w: too many unrecognized lines", ErrFormat)
		}
		return currentQueueState(s), nil
	}
}

func currentQueueState(s *Session) State {
	if len(s.proposals) > 0 {
		return StateProposalPending
	}
	return StateCommand
}

// handleReceiving reads the concatenated B2 frames for every queued
// proposal, in enqueued order, and persists each successfully decoded
// message. Any parse/size/checksum/decompress failure NAKs and ends
// the session; the protocol defines no retransmit primitive.
func handleReceiving(ctx context.Context, s *Session) (State, error) {
	var buf []byte

	for _, prop := range s.proposals {
		fr, consumed, err := readFrame(ctx, s, &buf, prop)
		if err != nil {
			reason := nakReason(err)
			s.logger.Warn("receiving batch failed", slog.String("mid", prop.MID), slog.String("reason", reason), slog.Any("error", err))
			s.metrics.MessageRejected(reason)
			_ = s.conn.SendLine(";NAK: " + reason)
			return StateClosing, err
		}
		raw := buf[:consumed]
		buf = buf[consumed:]

		decompressed, err := lzhuf.Decompress(fr.Compressed)
		if err != nil {
			s.logger.Warn("decompression failed", slog.String("mid", prop.MID), slog.Any("error", err))
			s.metrics.MessageRejected("decompress")
			_ = s.conn.SendLine(";NAK: Decompress")
			return StateClosing, fmt.Errorf("%w: %v", ErrDecompress, err)
		}

		msg := mail.Extract(decompressed, prop.MID)
		s.metrics.MessageAccepted(int64(len(decompressed)))

		if s.mailbox != nil {
			prefix := fmt.Sprintf("%s-%s", time.Now().UTC().Format("20060102150405"), msg.MessageID)
			var rawFrame []byte
			if s.keepRawFrames {
				rawFrame = raw
			}
			s.mailbox.Save(prefix, msg, rawFrame)
		}
	}

	s.proposals = nil
	if err := s.conn.SendLine("FF"); err != nil {
		return StateClosing, err
	}
	if !s.batchStart.IsZero() {
		s.metrics.BatchDuration(time.Since(s.batchStart).Seconds())
		s.batchStart = time.Time{}
	}
	return StateCommand, nil
}

// maxFrameOverhead bounds how many bytes beyond a proposal's announced
// compressed size a frame's SOH/STX/EOT envelope may add, to keep the
// truncation-retry loop below from growing without limit on a
// misbehaving peer.
const maxFrameOverhead = 512

// readFrame accumulates bytes from the connection into *buf, one at a
// time, until frame.Parse succeeds or reports a non-truncation error.
// Re-parsing the whole accumulated buffer on every new byte is simple
// and, at B2F message sizes, cheap; the alternative (incremental
// parsing) would need to duplicate the frame package's state machine.
func readFrame(ctx context.Context, s *Session, buf *[]byte, prop Proposal) (frame.Frame, int, error) {
	fp := frame.Proposal{CompressedSize: prop.CompressedSize, UncompressedSize: prop.UncompressedSize}
	limit := prop.CompressedSize + maxFrameOverhead

	for {
		fr, next, err := frame.Parse(*buf, fp)
		if err == nil {
			return fr, next, nil
		}
		if !errors.Is(err, frame.ErrTruncated) {
			return frame.Frame{}, 0, err
		}
		if len(*buf) > limit {
			return frame.Frame{}, 0, fmt.Errorf("%w: frame exceeded expected size", frame.ErrFormat)
		}

		b, readErr := s.conn.ReadByte(ctx)
		if readErr != nil {
			return frame.Frame{}, 0, readErr
		}
		*buf = append(*buf, b)
	}
}

func nakReason(err error) string {
	switch {
	case isTimeout(err):
		return "Timeout"
	case errors.Is(err, frame.ErrChecksum):
		return "Checksum"
	case errors.Is(err, frame.ErrSizeMismatch):
		return "SizeMismatch"
	case errors.Is(err, frame.ErrFormat), errors.Is(err, frame.ErrTruncated):
		return "Format"
	default:
		return "Unknown"
	}
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
