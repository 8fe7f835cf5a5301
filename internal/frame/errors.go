package frame

import "errors"

// Parsing errors for B2 compressed-message frames.
var (
	// ErrFormat is returned when the frame does not start with SOH or its
	// header structure (subject/offset NUL terminators, STX/EOT markers)
	// is malformed.
	ErrFormat = errors.New("frame: malformed B2 frame")

	// ErrChecksum is returned when the transmitted checksum byte does not
	// match the computed two's-complement sum of the compressed data.
	ErrChecksum = errors.New("frame: checksum mismatch")

	// ErrSizeMismatch is returned when the assembled compressed buffer's
	// length, or the decompressed-size field embedded within it, disagrees
	// with the sizes the proposal line announced.
	ErrSizeMismatch = errors.New("frame: size mismatch")

	// ErrTruncated is returned when the buffer runs out before a complete
	// frame (STX block, EOT, or checksum byte) could be read.
	ErrTruncated = errors.New("frame: truncated before EOT")
)
