// Package mail extracts headers, body, and attachments from the
// decompressed payload carried inside a B2 compressed message. The
// header set is B2F-specific (not RFC 5322), so this is a small
// purpose-built scanner rather than a wrapper over net/mail.
package mail

import (
	"strconv"
	"strings"
	"time"
)

const (
	crlf     = "\r\n"
	blankSep = crlf + crlf
)

// Position is a decoded X-Location header, in decimal degrees.
type Position struct {
	Latitude  float64
	Longitude float64
}

// Attachment is one File: entry and the bytes consumed for it.
// Truncated is set when the payload ran out before the declared size
// could be fully consumed; Data then holds whatever bytes were
// available.
type Attachment struct {
	Filename  string
	Size      int
	Data      []byte
	Truncated bool
}

// DecodedMessage is the result of extracting one decompressed B2
// message payload.
type DecodedMessage struct {
	RawHeaders  string
	Body        string
	MessageID   string
	Date        time.Time
	Sender      string
	Recipient   string
	Subject     string
	Position    Position
	Attachments []Attachment
}

// Metadata is the JSON-serializable summary of a DecodedMessage for
// downstream tools; it is not part of the wire format.
type Metadata struct {
	MessageID string   `json:"message_id"`
	Date      string   `json:"date"`
	Sender    string   `json:"sender"`
	Recipient string   `json:"recipient"`
	Subject   string   `json:"subject"`
	Position  Position `json:"position"`
}

// Metadata builds the downstream JSON summary of m.
func (m DecodedMessage) Metadata() Metadata {
	return Metadata{
		MessageID: m.MessageID,
		Date:      m.Date.UTC().Format(time.RFC3339),
		Sender:    m.Sender,
		Recipient: m.Recipient,
		Subject:   m.Subject,
		Position:  m.Position,
	}
}

type fileHeader struct {
	size     int
	filename string
}

// Extract decodes a B2 message payload. fallbackMessageID is used as
// the message id when the payload carries no Mid: header. Extract
// never fails: missing or malformed mandatory headers fall back to
// their documented defaults rather than aborting the extraction, since
// a partially-readable message is still worth persisting.
func Extract(payload []byte, fallbackMessageID string) DecodedMessage {
	msg := DecodedMessage{
		MessageID: fallbackMessageID,
		Date:      time.Unix(0, 0).UTC(),
		Sender:    "",
		Recipient: "",
	}

	headerBlock, rest, ok := splitHeaders(payload)
	msg.RawHeaders = headerBlock
	if !ok {
		return msg
	}

	var bodyLen int
	var files []fileHeader

	for _, line := range strings.Split(headerBlock, crlf) {
		name, value, ok := splitHeaderLine(line)
		if !ok {
			continue
		}

		switch name {
		case "Body":
			if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
				bodyLen = n
			}
		case "Date":
			if t, err := time.Parse("2006/01/02 15:04", strings.TrimSpace(value)); err == nil {
				msg.Date = t.UTC()
			}
		case "From":
			msg.Sender = strings.TrimSpace(value)
		case "To":
			msg.Recipient = strings.TrimSpace(value)
		case "Subject":
			msg.Subject = strings.TrimSpace(value)
		case "Mid":
			msg.MessageID = strings.TrimSpace(value)
		case "X-Location":
			msg.Position = parsePosition(value)
		case "File":
			if fh, ok := parseFileHeader(value); ok {
				files = append(files, fh)
			}
		}
	}

	cursor := rest

	if bodyLen > 0 {
		n := bodyLen
		if n > len(cursor) {
			n = len(cursor)
		}
		msg.Body = string(cursor[:n])
		cursor = cursor[n:]
		cursor = skipCRLF(cursor)
	}

	msg.Attachments = make([]Attachment, len(files))
	for i, fh := range files {
		msg.Attachments[i].Filename = fh.filename
		msg.Attachments[i].Size = fh.size

		if fh.size > len(cursor) {
			msg.Attachments[i].Data = cursor
			msg.Attachments[i].Truncated = true
			cursor = nil
			break
		}

		msg.Attachments[i].Data = cursor[:fh.size]
		cursor = skipCRLF(cursor[fh.size:])
	}

	return msg
}

// splitHeaders separates the ASCII header block from the remaining
// body+attachment bytes at the first blank line. ok is false when no
// blank line terminator was found, in which case the whole payload is
// treated as the header block.
func splitHeaders(payload []byte) (headers string, rest []byte, ok bool) {
	idx := strings.Index(string(payload), blankSep)
	if idx < 0 {
		return string(payload), nil, false
	}
	return string(payload[:idx]), payload[idx+len(blankSep):], true
}

func skipCRLF(b []byte) []byte {
	if len(b) >= 2 && b[0] == '\r' && b[1] == '\n' {
		return b[2:]
	}
	return b
}

// splitHeaderLine splits a "Name: value" line. Unknown header names
// are reported with ok == true as well so callers can choose to ignore
// them; RawHeaders already preserves the original text regardless.
func splitHeaderLine(line string) (name, value string, ok bool) {
	colon := strings.Index(line, ":")
	if colon < 0 {
		return "", "", false
	}
	name = line[:colon]
	value = strings.TrimPrefix(line[colon+1:], " ")
	return name, value, true
}

func parseFileHeader(value string) (fileHeader, bool) {
	parts := strings.SplitN(strings.TrimSpace(value), " ", 2)
	if len(parts) != 2 {
		return fileHeader{}, false
	}
	size, err := strconv.Atoi(parts[0])
	if err != nil {
		return fileHeader{}, false
	}
	return fileHeader{size: size, filename: parts[1]}, true
}

// parsePosition parses "lat[N|S], lon[E|W] (source)" into decimal
// degrees, flipping sign for S and W per the convention used
// throughout Winlink position reporting.
func parsePosition(value string) Position {
	fields := strings.Fields(strings.ReplaceAll(value, ",", ""))
	if len(fields) < 2 {
		return Position{}
	}

	lat, latOK := parseSignedCoordinate(fields[0], 'N', 'S')
	lon, lonOK := parseSignedCoordinate(fields[1], 'E', 'W')
	if !latOK || !lonOK {
		return Position{}
	}
	return Position{Latitude: lat, Longitude: lon}
}

func parseSignedCoordinate(field string, positive, negative byte) (float64, bool) {
	if field == "" {
		return 0, false
	}
	suffix := field[len(field)-1]
	if suffix != positive && suffix != negative {
		return 0, false
	}
	magnitude, err := strconv.ParseFloat(field[:len(field)-1], 64)
	if err != nil {
		return 0, false
	}
	if suffix == negative {
		magnitude = -magnitude
	}
	return magnitude, true
}
