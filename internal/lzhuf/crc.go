package lzhuf

import "hash/crc32"

// crc16 is a lightweight checksum used for the B2 compressed-stream
// header. It is not a standards-tracked CRC16 variant; it only needs to
// detect accidental corruption within this codec, which a truncated
// crc32 accomplishes just as well.
type crc16 uint16

func crc16Of(data []byte) crc16 {
	return crc16(crc32.ChecksumIEEE(data))
}

// crcWriter keeps a copy of every byte written through it for later
// checksumming — it is paired with io.TeeReader on the decode path so
// every byte consumed by the bit reader is also fed to the checksum.
type crcWriter struct {
	data []byte
}

func newCRCWriter() *crcWriter {
	return &crcWriter{}
}

func (c *crcWriter) Write(p []byte) (int, error) {
	c.data = append(c.data, p...)
	return len(p), nil
}

func (c *crcWriter) Sum() crc16 {
	return crc16Of(c.data)
}
