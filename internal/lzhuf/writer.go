package lzhuf

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
)

// A Writer is an io.WriteCloser. Writes to a Writer are buffered and
// compressed as a whole when Close is called.
type Writer struct {
	w     *bufio.Writer
	raw   bytes.Buffer
	crc16 bool
	err   error
}

// NewB2Writer returns a new Writer using the extended FBB B2 format used
// by Winlink, which prefixes the stream with a checksum of the
// compressed data.
func NewB2Writer(w io.Writer) *Writer { return NewWriter(w, true) }

// NewWriter returns a new Writer. Writes to the returned writer are
// compressed and written to w when Close is called. If useCRC is true,
// the header is prepended with a checksum of the compressed data (as per
// FBB B2).
func NewWriter(w io.Writer, useCRC bool) *Writer {
	return &Writer{w: bufio.NewWriter(w), crc16: useCRC}
}

// Write buffers p for compression at Close.
func (z *Writer) Write(p []byte) (int, error) {
	if z.err != nil {
		return 0, z.err
	}
	return z.raw.Write(p)
}

// Close compresses the buffered data and flushes the framed result to
// the underlying writer.
func (z *Writer) Close() error {
	if z.err != nil {
		return z.err
	}

	data := z.raw.Bytes()
	compressed := compress(data)

	var sizeBytes bytes.Buffer
	binary.Write(&sizeBytes, binary.LittleEndian, int32(len(data)))

	if z.crc16 {
		sum := crc16Of(append(append([]byte{}, sizeBytes.Bytes()...), compressed...))
		if err := binary.Write(z.w, binary.LittleEndian, sum); err != nil {
			return err
		}
	}

	if _, err := z.w.Write(sizeBytes.Bytes()); err != nil {
		return err
	}
	if _, err := z.w.Write(compressed); err != nil {
		return err
	}
	return z.w.Flush()
}

const maxChainPerKey = 128

// compress runs a single-pass LZSS match search over data, encoding the
// literal/match symbol stream with the adaptive Huffman model.
func compress(data []byte) []byte {
	var buf bytes.Buffer
	bw := newBitWriter(&buf)
	codec := newCharCodec()

	index := make(map[[3]byte][]int)

	i := 0
	for i < len(data) {
		length, distance := findMatch(data, i, index)
		if length >= threshold+1 {
			codec.encode(bw, lengthToSymbol(length))
			encodePosition(bw, distance-1)
			indexRange(data, index, i, length)
			i += length
			continue
		}

		codec.encode(bw, int(data[i]))
		indexRange(data, index, i, 1)
		i++
	}

	bw.Flush()
	return buf.Bytes()
}

func indexRange(data []byte, index map[[3]byte][]int, start, n int) {
	for p := start; p < start+n; p++ {
		if p+3 > len(data) {
			break
		}
		var key [3]byte
		copy(key[:], data[p:p+3])
		list := index[key]
		if len(list) >= maxChainPerKey {
			list = list[1:]
		}
		index[key] = append(list, p)
	}
}

// findMatch looks for the longest match starting at pos within the last
// windowSize bytes, capped at lookaheadSize. It returns the match length
// (0 if none found worth encoding) and the 1-based distance back to the
// match's start.
func findMatch(data []byte, pos int, index map[[3]byte][]int) (int, int) {
	if pos+3 > len(data) {
		return 0, 0
	}

	var key [3]byte
	copy(key[:], data[pos:pos+3])
	candidates := index[key]

	maxLen := lookaheadSize
	if pos+maxLen > len(data) {
		maxLen = len(data) - pos
	}

	bestLen, bestDist := 0, 0
	for k := len(candidates) - 1; k >= 0; k-- {
		cand := candidates[k]
		dist := pos - cand
		if dist <= 0 || dist > windowSize {
			continue
		}

		l := matchLength(data, cand, pos, maxLen)
		if l > bestLen {
			bestLen = l
			bestDist = dist
			if bestLen == maxLen {
				break
			}
		}
	}

	return bestLen, bestDist
}

func matchLength(data []byte, a, b, maxLen int) int {
	n := 0
	for n < maxLen && data[a+n] == data[b+n] {
		n++
	}
	return n
}
