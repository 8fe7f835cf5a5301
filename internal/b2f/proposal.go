package b2f

import (
	"fmt"
	"strconv"
	"strings"
)

// Proposal is one `FC` line: a message the peer wants to send, pending
// our answer in the `FS` line and transfer during RECEIVING.
type Proposal struct {
	Kind             string // message kind, e.g. "EM" — meaning unspecified by the protocol
	MID              string // message id, up to 12 printable characters
	UncompressedSize int
	CompressedSize   int

	// Flag is the trailing status_flag field of the FC line. Its
	// meaning is left opaque by the protocol (see design notes); it is
	// carried through unmodified and never interpreted.
	Flag string
}

// ParseProposal parses a line of the form
// "FC <kind> <mid> <uncompressed> <compressed> <flag>".
func ParseProposal(line string) (Proposal, error) {
	fields := strings.Fields(line)
	if len(fields) != 6 || fields[0] != "FC" {
		return Proposal{}, fmt.Errorf("%w: proposal line %q", ErrFormat, line)
	}

	uncompressed, err := strconv.Atoi(fields[3])
	if err != nil {
		return Proposal{}, fmt.Errorf("%w: uncompressed size %q: %v", ErrFormat, fields[3], err)
	}
	compressed, err := strconv.Atoi(fields[4])
	if err != nil {
		return Proposal{}, fmt.Errorf("%w: compressed size %q: %v", ErrFormat, fields[4], err)
	}

	return Proposal{
		Kind:             fields[1],
		MID:              fields[2],
		UncompressedSize: uncompressed,
		CompressedSize:   compressed,
		Flag:             fields[5],
	}, nil
}
