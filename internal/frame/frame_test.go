package frame

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

// buildCompressed returns a fake lzhuf-framed buffer of the given
// total length whose bytes [2:6] encode uncompressedSize, as a real
// lzhuf stream's size header would.
func buildCompressed(total int, uncompressedSize int) []byte {
	data := make([]byte, total)
	for i := range data {
		data[i] = byte(i*7 + 1)
	}
	binary.LittleEndian.PutUint32(data[2:6], uint32(uncompressedSize))
	return data
}

// buildFrame assembles a wire-format B2 frame around compressed,
// splitting the compressed payload across the given block sizes (which
// must sum to len(compressed) when offset == 0, or len(compressed)-6
// when offset != 0, since the first 6 bytes travel as lead-bytes).
func buildFrame(subject string, offset int, compressed []byte, blockSizes []int) []byte {
	var buf bytes.Buffer

	offsetText := itoa(offset)
	headerLen := len(subject) + len(offsetText) + 2

	buf.WriteByte(soh)
	buf.WriteByte(byte(headerLen))
	buf.WriteString(subject)
	buf.WriteByte(nul)
	buf.WriteString(offsetText)
	buf.WriteByte(nul)

	remaining := compressed
	if offset != 0 {
		buf.WriteByte(stx)
		buf.WriteByte(leadBytesMarker)
		buf.Write(compressed[:leadByteCount])
		remaining = compressed[leadByteCount:]
	}

	pos := 0
	for _, n := range blockSizes {
		buf.WriteByte(stx)
		buf.WriteByte(byte(n))
		buf.Write(remaining[pos : pos+n])
		pos += n
	}

	buf.WriteByte(eot)
	buf.WriteByte(checksumOf(compressed))

	return buf.Bytes()
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

func TestParseSingleBlockFrame(t *testing.T) {
	compressed := buildCompressed(20, 500)
	raw := buildFrame("RE: test", 0, compressed, []int{20})

	f, next, err := Parse(raw, Proposal{CompressedSize: 20, UncompressedSize: 500})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if f.Subject != "RE: test" {
		t.Errorf("Subject = %q, want %q", f.Subject, "RE: test")
	}
	if f.Offset != 0 {
		t.Errorf("Offset = %d, want 0", f.Offset)
	}
	if !bytes.Equal(f.Compressed, compressed) {
		t.Errorf("Compressed mismatch: got %v, want %v", f.Compressed, compressed)
	}
	if next != len(raw) {
		t.Errorf("next = %d, want %d (entire buffer consumed)", next, len(raw))
	}
}

func TestParseMultipleBlocks(t *testing.T) {
	compressed := buildCompressed(30, 1000)
	raw := buildFrame("multi-block", 0, compressed, []int{10, 10, 10})

	f, _, err := Parse(raw, Proposal{CompressedSize: 30, UncompressedSize: 1000})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !bytes.Equal(f.Compressed, compressed) {
		t.Error("compressed payload mismatch across multiple STX blocks")
	}
}

func TestParseZeroLengthBlockIsLegal(t *testing.T) {
	compressed := buildCompressed(10, 50)
	raw := buildFrame("zero-block", 0, compressed, []int{0, 10})

	f, _, err := Parse(raw, Proposal{CompressedSize: 10, UncompressedSize: 50})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !bytes.Equal(f.Compressed, compressed) {
		t.Error("compressed payload mismatch with leading zero-length block")
	}
}

func TestParseWithOffsetAndLeadBytes(t *testing.T) {
	compressed := buildCompressed(16, 2000)
	raw := buildFrame("resumed", 10, compressed, []int{10})

	f, _, err := Parse(raw, Proposal{CompressedSize: 16, UncompressedSize: 2000})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if f.Offset != 10 {
		t.Errorf("Offset = %d, want 10", f.Offset)
	}
	if !bytes.Equal(f.Compressed, compressed) {
		t.Error("compressed payload mismatch when lead-bytes are present")
	}
}

func TestParseTwoFramesInOneBuffer(t *testing.T) {
	c1 := buildCompressed(10, 100)
	c2 := buildCompressed(12, 200)
	raw1 := buildFrame("first", 0, c1, []int{10})
	raw2 := buildFrame("second", 0, c2, []int{12})

	batch := append(append([]byte{}, raw1...), raw2...)

	f1, next, err := Parse(batch, Proposal{CompressedSize: 10, UncompressedSize: 100})
	if err != nil {
		t.Fatalf("first Parse() error = %v", err)
	}
	if next != len(raw1) {
		t.Fatalf("next = %d, want %d", next, len(raw1))
	}

	f2, next2, err := Parse(batch[next:], Proposal{CompressedSize: 12, UncompressedSize: 200})
	if err != nil {
		t.Fatalf("second Parse() error = %v", err)
	}
	if f2.Subject != "second" {
		t.Errorf("second frame subject = %q, want %q", f2.Subject, "second")
	}
	if !bytes.Equal(f1.Compressed, c1) || !bytes.Equal(f2.Compressed, c2) {
		t.Error("compressed payload mismatch across batch")
	}
	if next+next2 != len(batch) {
		t.Errorf("combined index %d does not reach end of batch %d", next+next2, len(batch))
	}
}

func TestParseRejectsMissingSOH(t *testing.T) {
	raw := buildFrame("bad", 0, buildCompressed(10, 1), []int{10})
	raw[0] = 0x99

	_, _, err := Parse(raw, Proposal{CompressedSize: 10, UncompressedSize: 1})
	if !errors.Is(err, ErrFormat) {
		t.Errorf("error = %v, want ErrFormat", err)
	}
}

func TestParseRejectsChecksumMismatch(t *testing.T) {
	compressed := buildCompressed(10, 1)
	raw := buildFrame("bad-checksum", 0, compressed, []int{10})
	raw[len(raw)-1] ^= 0xFF

	_, _, err := Parse(raw, Proposal{CompressedSize: 10, UncompressedSize: 1})
	if !errors.Is(err, ErrChecksum) {
		t.Errorf("error = %v, want ErrChecksum", err)
	}
}

func TestParseRejectsCompressedSizeMismatch(t *testing.T) {
	compressed := buildCompressed(10, 1)
	raw := buildFrame("size-mismatch", 0, compressed, []int{10})

	_, _, err := Parse(raw, Proposal{CompressedSize: 999, UncompressedSize: 1})
	if !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("error = %v, want ErrSizeMismatch", err)
	}
}

func TestParseRejectsUncompressedSizeMismatch(t *testing.T) {
	compressed := buildCompressed(10, 1)
	raw := buildFrame("uncompressed-size-mismatch", 0, compressed, []int{10})

	_, _, err := Parse(raw, Proposal{CompressedSize: 10, UncompressedSize: 9999})
	if !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("error = %v, want ErrSizeMismatch", err)
	}
}

func TestParseAcceptsMaximumBlockLength(t *testing.T) {
	compressed := buildCompressed(250, 10)
	raw := buildFrame("max-block", 0, compressed, []int{250})

	f, _, err := Parse(raw, Proposal{CompressedSize: 250, UncompressedSize: 10})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !bytes.Equal(f.Compressed, compressed) {
		t.Error("compressed payload mismatch at the maximum legal block length")
	}
}

func TestParseRejectsBlockLengthOver250(t *testing.T) {
	compressed := buildCompressed(251, 10)
	raw := buildFrame("oversize-block", 0, compressed, []int{251})

	_, _, err := Parse(raw, Proposal{CompressedSize: 251, UncompressedSize: 10})
	if !errors.Is(err, ErrFormat) {
		t.Errorf("error = %v, want ErrFormat", err)
	}
}

func TestParseRejectsTruncatedBuffer(t *testing.T) {
	compressed := buildCompressed(10, 1)
	raw := buildFrame("truncated", 0, compressed, []int{10})
	raw = raw[:len(raw)-3] // cut off the last data byte, EOT and checksum

	_, _, err := Parse(raw, Proposal{CompressedSize: 10, UncompressedSize: 1})
	if !errors.Is(err, ErrTruncated) {
		t.Errorf("error = %v, want ErrTruncated", err)
	}
}

func TestParseRejectsHeaderLengthMismatch(t *testing.T) {
	raw := buildFrame("ok", 0, buildCompressed(10, 1), []int{10})
	raw[1] = 0xFF // corrupt the declared header length byte

	_, _, err := Parse(raw, Proposal{CompressedSize: 10, UncompressedSize: 1})
	if !errors.Is(err, ErrFormat) {
		t.Errorf("error = %v, want ErrFormat", err)
	}
}
