package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"
)

// ErrLineTooLong is returned by ReadLine when a CR-terminated line exceeds
// maxLineLength without a terminator being seen.
var ErrLineTooLong = errors.New("server: line exceeds maximum length")

const maxLineLength = 4096

// Connection wraps a single accepted TCP connection and provides the
// CR-terminated line transport the B2F dialog runs over, plus raw byte
// reads for the binary batch that follows a proposal exchange.
//
// B2F lines are terminated by a bare CR, never CRLF, and a read must not
// consume bytes past the terminating CR — the bytes immediately following
// belong to the next protocol element (which may be binary), not to the
// line. Connection reads lines with its own byte-at-a-time loop rather
// than bufio.Reader.ReadString, and every read (ReadLine, ReadByte,
// ReadExact) goes through one shared bufio.Reader. That reader has
// bufio's minimum buffer of 16 bytes, so it can fetch up to 16 bytes
// from the socket past a CR; those bytes stay buffered and are returned
// by the next read on the same Connection.
type Connection struct {
	conn         net.Conn
	reader       *bufio.Reader
	lineTimeout  time.Duration
	batchTimeout time.Duration
	closed       bool
}

// ConnectionConfig holds the parameters for constructing a Connection.
type ConnectionConfig struct {
	Conn         net.Conn
	LineTimeout  time.Duration
	BatchTimeout time.Duration
}

// NewConnection wraps conn with the B2F line/byte transport.
func NewConnection(cc ConnectionConfig) *Connection {
	return &Connection{
		conn:         cc.Conn,
		reader:       bufio.NewReaderSize(cc.Conn, 1),
		lineTimeout:  cc.LineTimeout,
		batchTimeout: cc.BatchTimeout,
	}
}

// RemoteAddr returns the string form of the peer address.
func (c *Connection) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

// Close closes the underlying connection.
func (c *Connection) Close() error {
	c.closed = true
	return c.conn.Close()
}

// IsClosed reports whether Close has been called.
func (c *Connection) IsClosed() bool {
	return c.closed
}

// ReadLine reads bytes up to and including the next CR, applying the
// configured line idle timeout to the whole read, and returns the line
// with the trailing CR stripped. Bytes after the CR that the shared
// reader has already fetched are not returned here; they are left for
// the next read on this Connection.
func (c *Connection) ReadLine(ctx context.Context) (string, error) {
	if err := c.resetLineDeadline(ctx); err != nil {
		return "", err
	}

	buf := make([]byte, 0, 128)
	for {
		if len(buf) >= maxLineLength {
			return "", ErrLineTooLong
		}
		b, err := c.reader.ReadByte()
		if err != nil {
			return "", err
		}
		if b == '\r' {
			return string(buf), nil
		}
		buf = append(buf, b)
	}
}

// SendLine writes s followed by a bare CR.
func (c *Connection) SendLine(s string) error {
	_, err := fmt.Fprintf(c.conn, "%s\r", s)
	return err
}

// ReadExact reads exactly n bytes, applying the batch idle timeout.
func (c *Connection) ReadExact(ctx context.Context, n int) ([]byte, error) {
	if err := c.resetBatchDeadline(ctx); err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(c.reader, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// ReadByte reads a single byte, applying the batch idle timeout. Used by
// the session engine to accumulate a B2 frame one byte at a time until
// the frame parser accepts it.
func (c *Connection) ReadByte(ctx context.Context) (byte, error) {
	if err := c.resetBatchDeadline(ctx); err != nil {
		return 0, err
	}
	return c.reader.ReadByte()
}

// Write writes raw bytes to the connection, bypassing line framing. Used
// for sending B2 compressed frames.
func (c *Connection) Write(p []byte) (int, error) {
	return c.conn.Write(p)
}

func (c *Connection) resetLineDeadline(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.lineTimeout <= 0 {
		return c.conn.SetReadDeadline(time.Time{})
	}
	return c.conn.SetReadDeadline(time.Now().Add(c.lineTimeout))
}

func (c *Connection) resetBatchDeadline(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.batchTimeout <= 0 {
		return c.conn.SetReadDeadline(time.Time{})
	}
	return c.conn.SetReadDeadline(time.Now().Add(c.batchTimeout))
}
