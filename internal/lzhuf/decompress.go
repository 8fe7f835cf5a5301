package lzhuf

import (
	"bytes"
	"io"
)

// Decompress returns the uncompressed form of a B2-framed lzhuf stream
// (checksum + size header, as produced by Compress). It is the pure,
// side-effect-free entry point the session engine calls once a proposal's
// compressed data block has been fully received.
func Decompress(compressed []byte) ([]byte, error) {
	r, err := NewB2Reader(bytes.NewReader(compressed))
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if err := r.Close(); err != nil {
		return nil, err
	}
	return data, nil
}

// Compress returns the B2-framed lzhuf compressed form of data.
func Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := NewB2Writer(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
