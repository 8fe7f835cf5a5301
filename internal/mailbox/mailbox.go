// Package mailbox persists extracted B2 messages as a flat set of
// artifact files under a root directory: one file for the raw headers,
// one for the body (if any), and one per attachment.
package mailbox

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/n0call/b2fd/internal/mail"
)

// Store writes accepted messages to a root directory on disk.
type Store struct {
	root   string
	logger *slog.Logger
}

// New returns a Store rooted at root, creating the directory if it does
// not already exist.
func New(root string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("mailbox: create root %q: %w", root, err)
	}
	return &Store{root: root, logger: logger}, nil
}

// Save writes the headers, body, and attachments of msg as separate
// artifact files named with the prefix. Creation is best-effort: a
// failure writing one artifact is logged and does not stop the others
// from being attempted, since losing one attachment should not also
// cost the headers and body.
//
// raw carries the untouched SOH/STX/EOT frame bytes the message was
// decoded from; when non-empty it is written as "<prefix>.b2f", an
// audit copy a caller can replay through internal/frame independently
// of the parsed artifacts. Callers that do not want this audit copy
// (keep_raw_frames disabled) pass nil.
func (s *Store) Save(prefix string, msg mail.DecodedMessage, raw []byte) {
	s.writeArtifact(prefix+"-headers.txt", []byte(msg.RawHeaders))

	if len(msg.Body) > 0 {
		s.writeArtifact(prefix+"-body.txt", []byte(msg.Body))
	}

	for _, att := range msg.Attachments {
		if att.Truncated {
			s.logger.Warn("attachment truncated, saving partial data",
				slog.String("filename", att.Filename), slog.Int("declared_size", att.Size), slog.Int("available", len(att.Data)))
		}
		s.writeArtifact(prefix+"-"+att.Filename, att.Data)
	}

	if len(raw) > 0 {
		s.writeArtifact(prefix+".b2f", raw)
	}
}

func (s *Store) writeArtifact(name string, data []byte) {
	path, err := s.uniquePath(name)
	if err != nil {
		s.logger.Error("mailbox artifact not written", slog.String("name", name), slog.Any("error", err))
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		s.logger.Error("mailbox artifact not written", slog.String("path", path), slog.Any("error", err))
		return
	}
	s.logger.Debug("mailbox artifact written", slog.String("path", path), slog.Int("bytes", len(data)))
}

// uniquePath returns a path under the store root that does not
// currently exist, inserting a numeric suffix "-1", "-2", … before the
// file's extension when name is already taken, so an existing artifact
// is never silently overwritten.
func (s *Store) uniquePath(name string) (string, error) {
	candidate := filepath.Join(s.root, name)
	if _, err := os.Stat(candidate); os.IsNotExist(err) {
		return candidate, nil
	}

	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)

	for n := 1; n < 10000; n++ {
		candidate = filepath.Join(s.root, base+"-"+strconv.Itoa(n)+ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no available numeric suffix for %q after 10000 attempts", name)
}
