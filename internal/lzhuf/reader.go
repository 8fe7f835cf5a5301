package lzhuf

import (
	"encoding/binary"
	"io"
)

// A Reader is an io.ReadCloser that decompresses lzhuf data read from an
// underlying reader.
//
// lzhuf streams carry a 4-byte little-endian uncompressed size, and in B2
// mode a 2-byte little-endian checksum ahead of it. The Reader treats
// data returned by Read as tentative until Close confirms the size (and,
// in B2 mode, the checksum) matched.
type Reader struct {
	br    *bitReader
	codec *charCodec

	crc16 bool
	crcw  *crcWriter

	header struct {
		crc  crc16
		size int32
	}

	window  []byte
	pos     int32
	ring    int
	pending []byte // match bytes decoded but not yet returned to the caller
	err     error
}

// NewB2Reader creates a new Reader expecting the extended FBB B2 format
// used by Winlink, which prefixes the stream with a checksum of the
// compressed data.
func NewB2Reader(r io.Reader) (*Reader, error) { return NewReader(r, true) }

// NewReader creates a new Reader reading the given reader. If crc16 is
// true, the Reader expects and verifies a checksum of the compressed
// data (as per FBB B2).
func NewReader(r io.Reader, useCRC bool) (*Reader, error) {
	d := &Reader{
		codec:  newCharCodec(),
		crc16:  useCRC,
		crcw:   newCRCWriter(),
		window: make([]byte, windowSize),
	}
	d.ring = windowSize - lookaheadSize
	for i := 0; i < d.ring; i++ {
		d.window[i] = ' '
	}

	if d.crc16 {
		if err := binary.Read(r, binary.LittleEndian, &d.header.crc); err != nil {
			return nil, err
		}
	}

	r = io.TeeReader(r, d.crcw)
	d.br = newBitReader(r)

	if err := binary.Read(r, binary.LittleEndian, &d.header.size); err != nil {
		return nil, err
	}
	return d, nil
}

// Read decodes uncompressed data into p.
func (d *Reader) Read(p []byte) (int, error) {
	if d.err != nil {
		return 0, d.err
	}

	n := 0

	if len(d.pending) > 0 {
		n = copy(p, d.pending)
		d.pending = d.pending[n:]
		if n == len(p) {
			return n, nil
		}
	}

	if d.pos >= d.header.size && len(d.pending) == 0 && n == 0 {
		return 0, io.EOF
	}

	for n < len(p) && d.pos < d.header.size {
		symbol := d.codec.decode(d.br)
		if d.br.Err() != nil && d.br.Err() != io.EOF {
			d.err = d.br.Err()
			return n, d.err
		}

		if symbol < literalCount {
			b := byte(symbol)
			d.window[d.ring] = b
			d.advance()
			p[n] = b
			n++
			continue
		}

		length := symbolToLength(symbol)
		distance := decodePosition(d.br)
		src := (d.ring - distance - 1) & (windowSize - 1)
		for k := 0; k < length; k++ {
			b := d.window[(src+k)&(windowSize-1)]
			d.window[d.ring] = b
			d.advance()
			if n < len(p) {
				p[n] = b
				n++
			} else {
				d.pending = append(d.pending, b)
			}
		}
	}

	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

func (d *Reader) advance() {
	d.ring = (d.ring + 1) & (windowSize - 1)
	d.pos++
}

// Close confirms the decoded stream matched its declared size and (in B2
// mode) checksum.
func (d *Reader) Close() error {
	switch {
	case d.err != nil && d.err != io.EOF:
		return d.err
	case d.pos != d.header.size:
		return ErrChecksum
	case d.crc16 && d.header.crc != d.crcw.Sum():
		return ErrChecksum
	default:
		return nil
	}
}
